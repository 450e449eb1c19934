package models

import "time"

// MembershipTier is the member level derived from cumulative purchase spend.
type MembershipTier string

// Membership tiers, lowest first.
const (
	TierBasic   MembershipTier = "BASIC"
	TierGold    MembershipTier = "GOLD"
	TierDiamond MembershipTier = "DIAMOND"
)

// Member is a registered gym member. Balance and Tier are owned by the ledger.
type Member struct {
	ID           string         `db:"id" json:"id"`
	FirstName    string         `db:"first_name" json:"first_name"`
	LastName     string         `db:"last_name" json:"last_name"`
	Phone        string         `db:"phone" json:"phone"`
	Email        string         `db:"email" json:"email"`
	Tier         MembershipTier `db:"tier" json:"tier"`
	BalanceCents int64          `db:"balance_cents" json:"balance_cents"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name for display.
func (m Member) FullName() string {
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// MemberDeletion summarises what a member removal cascaded into.
type MemberDeletion struct {
	MemberID          string   `json:"member_id"`
	UnenrolledClasses []string `json:"unenrolled_classes"`
	SettledLoans      []string `json:"settled_loans"`
}

// Pagination holds paging metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
