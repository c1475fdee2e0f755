package models

// Ownership is the authoritative issuance record for one token id. A row
// exists iff the token has been issued; issuance is terminal, rows are never
// deleted or rewritten.
type Ownership struct {
	// TokenID is the issued token id. Not a foreign key into the catalog:
	// admin mints may issue ids that were never catalogued.
	TokenID uint64 `json:"token_id" gorm:"column:token_id;primaryKey;autoIncrement:false"`
	// Owner is the address the token was issued to.
	Owner string `json:"owner" gorm:"column:owner;not null;index"`
	// MintedBy is the caller that triggered the issuance.
	MintedBy string `json:"minted_by" gorm:"column:minted_by"`
	// AdminMint marks fee-free issuance by the admin.
	AdminMint bool `json:"admin_mint" gorm:"column:admin_mint"`
	// MintedAt is the unix timestamp of issuance.
	MintedAt int64 `json:"minted_at" gorm:"column:minted_at;index"`
}
