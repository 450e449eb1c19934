package models

import "time"

// TransactionType distinguishes spending from top-ups.
type TransactionType string

// Transaction types. Purchases are stored with negative amounts.
const (
	TransactionPurchase TransactionType = "PURCHASE"
	TransactionRecharge TransactionType = "RECHARGE"
)

// Transaction is an append-only ledger row.
type Transaction struct {
	ID          string          `db:"id" json:"id"`
	MemberID    string          `db:"member_id" json:"member_id"`
	Type        TransactionType `db:"type" json:"type"`
	AmountCents int64           `db:"amount_cents" json:"amount_cents"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// LedgerEntry is the result of one atomic balance mutation.
type LedgerEntry struct {
	Transaction Transaction `json:"transaction"`
	Member      Member      `json:"member"`
}
