package models

// NativeBalance tracks native XCB credited to an address by the fund
// distributor (receivers and the fee receiver). Amounts are base-10 strings
// in the smallest denomination.
type NativeBalance struct {
	Address string `json:"address" gorm:"column:address;primaryKey"`
	Amount  string `json:"amount" gorm:"column:amount;not null"`
}

// TokenBalance is one holder's balance in one payment token. The payment
// token ledger is held authoritatively by the service; it exists to settle
// token-paid purchases.
type TokenBalance struct {
	ID     int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Token  string `json:"token" gorm:"column:token;uniqueIndex:idx_token_holder"`
	Holder string `json:"holder" gorm:"column:holder;uniqueIndex:idx_token_holder"`
	Amount string `json:"amount" gorm:"column:amount;not null"`
}

// TokenAllowance is a pre-approved pull amount: owner lets spender move up to
// Amount of Token on their behalf. The mint path draws the full price + fee
// from the allowance granted to the service address.
type TokenAllowance struct {
	ID      int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Token   string `json:"token" gorm:"column:token;uniqueIndex:idx_token_owner_spender"`
	Owner   string `json:"owner" gorm:"column:owner;uniqueIndex:idx_token_owner_spender"`
	Spender string `json:"spender" gorm:"column:spender;uniqueIndex:idx_token_owner_spender"`
	Amount  string `json:"amount" gorm:"column:amount;not null"`
}
