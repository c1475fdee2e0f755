package models

import "fmt"

// NotificationService announces issuance events to the configured ops
// channels. Delivery is best effort and never affects the mint itself.
type NotificationService interface {
	SendIssuance(notice *IssuanceNotice)
}

// IssuanceNotice describes one successful issuance.
type IssuanceNotice struct {
	TokenID   uint64 `json:"token_id"`
	Owner     string `json:"owner"`
	Buyer     string `json:"buyer"`
	Currency  string `json:"currency"`
	Price     string `json:"price"`
	Fee       string `json:"fee"`
	AdminMint bool   `json:"admin_mint"`
}

func (n *IssuanceNotice) String() string {
	if n.AdminMint {
		return fmt.Sprintf("Token %d issued to %s by admin, no payment", n.TokenID, n.Owner)
	}
	return fmt.Sprintf("Token %d issued to %s, paid %s + %s fee in %s", n.TokenID, n.Owner, n.Price, n.Fee, n.Currency)
}
