package models

// Payment is the audit record for one paid mint. Admin mints move no funds
// and record no payment.
type Payment struct {
	// ID is the unique identifier for the payment.
	ID int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// TokenID is the token the payment bought.
	TokenID uint64 `json:"token_id" gorm:"column:token_id;index"`
	// Buyer is the caller that paid.
	Buyer string `json:"buyer" gorm:"column:buyer;index"`
	// Recipient is the address the token was issued to.
	Recipient string `json:"recipient" gorm:"column:recipient"`
	// Receiver is the address that received the principal.
	Receiver string `json:"receiver" gorm:"column:receiver"`
	// Currency is "XCB" for native payments, otherwise the token contract address.
	Currency string `json:"currency" gorm:"column:currency"`
	// Price is the principal amount, base-10 string.
	Price string `json:"price" gorm:"column:price"`
	// Fee is the fee amount sent to the fee receiver, base-10 string.
	Fee string `json:"fee" gorm:"column:fee"`
	// Timestamp is the unix timestamp of the purchase.
	Timestamp int64 `json:"timestamp" gorm:"column:timestamp;index"`
}
