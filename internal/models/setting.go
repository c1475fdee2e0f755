package models

// Setting is a single mutable configuration row (base URI, current admin).
type Setting struct {
	Key   string `json:"key" gorm:"column:key;primaryKey;size:64"`
	Value string `json:"value" gorm:"column:value"`
}

// Setting keys.
const (
	SettingBaseURI = "base_uri"
	SettingAdmin   = "admin_address"
)
