package models

import "math/big"

// Repository is the persistence interface for the catalog, the ownership
// ledger, the fund ledgers, settings and the payment audit trail.
//
// Transaction runs fn against a transactional view of the repository: if fn
// returns an error every change made through that view is rolled back. Mint
// runs entirely inside one transaction, which is what gives the engine its
// all-or-nothing semantics.
type Repository interface {
	Close() error
	Transaction(fn func(Repository) error) error

	// Catalog
	CountItems() (uint64, error)
	AddItem(item *ItemRecord) error
	GetItem(tokenID uint64) (*ItemRecord, error)
	ListItems() ([]*ItemRecord, error)
	UpdateItem(item *ItemRecord) error

	// Ownership ledger
	HasOwner(tokenID uint64) (bool, error)
	GetOwnership(tokenID uint64) (*Ownership, error)
	AddOwnership(ownership *Ownership) error

	// Settings
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error

	// Native fund book
	GetNativeBalance(address string) (*big.Int, error)
	CreditNative(address string, amount *big.Int) error

	// Payment token ledger
	GetTokenBalance(token, holder string) (*big.Int, error)
	SetTokenBalance(token, holder string, amount *big.Int) error
	ListTokenBalances(holder string) ([]*TokenBalance, error)
	GetTokenAllowance(token, owner, spender string) (*big.Int, error)
	SetTokenAllowance(token, owner, spender string, amount *big.Int) error

	// Payment audit trail
	AddPayment(payment *Payment) error
	ListPayments() ([]*Payment, error)
	GetPaymentsByToken(tokenID uint64) ([]*Payment, error)
}
