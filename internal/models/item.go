package models

import (
	"math/big"
	"strings"
)

// ItemRecord is one catalog entry describing the purchase terms for a single
// token id. Ids are dense and sequential, assigned at creation starting at 0.
// Records are never deleted.
type ItemRecord struct {
	// TokenID is the sequential identifier assigned at creation.
	TokenID uint64 `json:"token_id" gorm:"column:token_id;primaryKey;autoIncrement:false"`
	// Receiver is the address that receives the principal payment.
	// Not validated on write, the zero address is permitted.
	Receiver string `json:"receiver" gorm:"column:receiver;not null"`
	// PaymentToken is the payment token contract address, or empty / the
	// zero address for native XCB.
	PaymentToken string `json:"payment_token" gorm:"column:payment_token"`
	// Price is the principal amount in the smallest denomination, as a
	// base-10 string. Excludes the fee.
	Price string `json:"price" gorm:"column:price;not null"`
	// URI is the per-item metadata override. Empty means "base URI + id".
	URI string `json:"uri" gorm:"column:uri"`
	// CreatedAt is the unix timestamp of catalog insertion.
	CreatedAt int64 `json:"created_at" gorm:"column:created_at"`
	// UpdatedAt is the unix timestamp of the last terms amendment.
	UpdatedAt int64 `json:"updated_at" gorm:"column:updated_at"`
}

// TokenTerms are the admin-supplied purchase terms for addToken/updateToken.
type TokenTerms struct {
	Receiver     string   `json:"receiver"`
	PaymentToken string   `json:"payment_token"`
	Price        *big.Int `json:"price"`
}

// TokenInfo is the public read model for one catalog entry: the stored terms
// plus the fee derived from the current price and the issuance state.
type TokenInfo struct {
	TokenID      uint64   `json:"token_id"`
	Receiver     string   `json:"receiver"`
	PaymentToken string   `json:"payment_token"`
	Price        *big.Int `json:"price"`
	Fee          *big.Int `json:"fee"`
	Issued       bool     `json:"issued"`
	Owner        string   `json:"owner,omitempty"`
}

// IsNativePayment reports whether a payment token address means native XCB.
// Empty and the all-zero address are both accepted as the native sentinel.
func IsNativePayment(paymentToken string) bool {
	s := strings.TrimPrefix(strings.TrimPrefix(paymentToken, "0x"), "0X")
	return strings.Trim(s, "0") == ""
}
