package models

import "errors"

// Error taxonomy for the issuance engine. Handlers map these to HTTP
// statuses, callers match with errors.Is.
var (
	// ErrInvalidItem is returned when a token id was never created in the catalog.
	ErrInvalidItem = errors.New("invalid token")
	// ErrAlreadyIssued is returned when the token id already has an owner.
	ErrAlreadyIssued = errors.New("token already minted")
	// ErrIncorrectPrice is returned when the attached native value does not
	// exactly equal price + fee.
	ErrIncorrectPrice = errors.New("incorrect token price")
	// ErrInsufficientFunds is returned when the buyer's payment token balance
	// or allowance does not cover price + fee.
	ErrInsufficientFunds = errors.New("insufficient payment token balance or allowance")
	// ErrUnauthorized is returned when an admin-only operation is called by
	// anyone other than the current admin.
	ErrUnauthorized = errors.New("caller is not the admin")
)
