package models

import "time"

// RentalItem is lendable equipment. QuantityInStock never goes negative.
type RentalItem struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	QuantityInStock int       `db:"quantity_in_stock" json:"quantity_in_stock"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// RentalLogEntry records one checkout. Only Returned and ReturnedAt change after insert.
type RentalLogEntry struct {
	ID               string     `db:"id" json:"id"`
	MemberID         string     `db:"member_id" json:"member_id"`
	ItemID           string     `db:"item_id" json:"item_id"`
	CheckoutTime     time.Time  `db:"checkout_time" json:"checkout_time"`
	QuantityBorrowed int        `db:"quantity_borrowed" json:"quantity_borrowed"`
	Returned         bool       `db:"returned" json:"returned"`
	ReturnedAt       *time.Time `db:"returned_at" json:"returned_at,omitempty"`
}

// OutstandingLoan aggregates a member's unreturned quantity for one item.
type OutstandingLoan struct {
	ItemID   string `db:"item_id" json:"item_id"`
	ItemName string `db:"item_name" json:"item_name"`
	Quantity int    `db:"quantity" json:"quantity"`
}
