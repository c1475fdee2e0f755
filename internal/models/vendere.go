package models

import "math/big"

// VendereI is the issuance engine surface. Caller identity is an explicit
// argument on every operation; admin-only operations compare it against the
// current admin address.
type VendereI interface {
	// Catalog
	AddToken(caller string, terms TokenTerms) (uint64, error)
	UpdateToken(caller string, tokenID uint64, terms TokenTerms) error
	GetTokenInfo(tokenID uint64) (*TokenInfo, error)
	ListTokens() ([]*TokenInfo, error)

	// Issuance
	Mint(caller, recipient string, tokenID uint64, value *big.Int) error
	AdminMint(caller, recipient string, tokenID uint64) error
	OwnerOf(tokenID uint64) (string, error)

	// Metadata
	TokenURI(tokenID uint64) (string, error)
	SetBaseURI(caller, uri string) error
	UpdateTokenURI(caller string, tokenID uint64, uri string) error

	// Access guard
	Admin() string
	TransferAdmin(caller, newAdmin string) error

	// Payment token double and audit reads
	DepositToken(token, holder string, amount *big.Int) error
	ApproveToken(token, owner, spender string, amount *big.Int) error
	GetFunds(address string) (*Funds, error)
	ListPayments() ([]*Payment, error)
}

// Funds is the balances read model for one address.
type Funds struct {
	Address string              `json:"address"`
	Native  *big.Int            `json:"native"`
	Tokens  map[string]*big.Int `json:"tokens"`
}

// APIServer serves the HTTP API.
type APIServer interface {
	Start()
	Shutdown() error
}
