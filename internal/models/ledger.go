package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryDirection indicates whether a ledger entry records money in or out.
type EntryDirection string

const (
	EntryDirectionIncome  EntryDirection = "income"
	EntryDirectionExpense EntryDirection = "expense"
)

// LedgerEntry is an immutable financial fact. Entries created through
// document confirmation mirror the document's frozen amounts; the store is
// insert-only.
type LedgerEntry struct {
	EntryID    string           `json:"entryID"`
	DocumentID *string          `json:"documentID,omitempty"`
	VendorID   *string          `json:"vendorID,omitempty"`
	CategoryID *string          `json:"categoryID,omitempty"`
	Direction  EntryDirection   `json:"direction"`
	Amount     decimal.Decimal  `json:"amount"`
	TaxAmount  *decimal.Decimal `json:"taxAmount,omitempty"`
	Currency   string           `json:"currency"`
	EntryDate  time.Time        `json:"entryDate"`
	Notes      *string          `json:"notes,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Category classifies ledger entries.
type Category struct {
	CategoryID string    `json:"categoryID"`
	ParentID   *string   `json:"parentID,omitempty"`
	Name       string    `json:"name"`
	Icon       *string   `json:"icon,omitempty"`
	Color      *string   `json:"color,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
