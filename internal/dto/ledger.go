package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

// CreateLedgerEntryRequest creates a manual entry not backed by a document.
type CreateLedgerEntryRequest struct {
	VendorID   *string          `json:"vendorID,omitempty"`
	CategoryID *string          `json:"categoryID,omitempty"`
	Direction  string           `json:"direction" binding:"required,oneof=income expense"`
	Amount     decimal.Decimal  `json:"amount" binding:"required"`
	TaxAmount  *decimal.Decimal `json:"taxAmount,omitempty"`
	Currency   string           `json:"currency" binding:"required,len=3"`
	EntryDate  *string          `json:"entryDate,omitempty"` // DocDateFormat
	Notes      *string          `json:"notes,omitempty"`
}

// LedgerEntryResponse is the entry read projection.
type LedgerEntryResponse struct {
	EntryID    string                `json:"entryID"`
	DocumentID *string               `json:"documentID,omitempty"`
	VendorID   *string               `json:"vendorID,omitempty"`
	CategoryID *string               `json:"categoryID,omitempty"`
	Direction  models.EntryDirection `json:"direction"`
	Amount     decimal.Decimal       `json:"amount"`
	TaxAmount  *decimal.Decimal      `json:"taxAmount,omitempty"`
	Currency   string                `json:"currency"`
	EntryDate  time.Time             `json:"entryDate"`
	Notes      *string               `json:"notes,omitempty"`
	CreatedAt  time.Time             `json:"createdAt"`
}

// ToLedgerEntryResponse maps the model to its read projection.
func ToLedgerEntryResponse(e models.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		EntryID:    e.EntryID,
		DocumentID: e.DocumentID,
		VendorID:   e.VendorID,
		CategoryID: e.CategoryID,
		Direction:  e.Direction,
		Amount:     e.Amount,
		TaxAmount:  e.TaxAmount,
		Currency:   e.Currency,
		EntryDate:  e.EntryDate,
		Notes:      e.Notes,
		CreatedAt:  e.CreatedAt,
	}
}

// CreateCategoryRequest creates or renames a category.
type CreateCategoryRequest struct {
	Name     string  `json:"name" binding:"required,min=1,max=100"`
	Icon     *string `json:"icon,omitempty" binding:"omitempty,max=50"`
	Color    *string `json:"color,omitempty" binding:"omitempty,max=7"`
	ParentID *string `json:"parentID,omitempty"`
}

// CategoryResponse is the category read projection.
type CategoryResponse struct {
	CategoryID string    `json:"categoryID"`
	ParentID   *string   `json:"parentID,omitempty"`
	Name       string    `json:"name"`
	Icon       *string   `json:"icon,omitempty"`
	Color      *string   `json:"color,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ToCategoryResponse maps the model to its read projection.
func ToCategoryResponse(c models.Category) CategoryResponse {
	return CategoryResponse{
		CategoryID: c.CategoryID,
		ParentID:   c.ParentID,
		Name:       c.Name,
		Icon:       c.Icon,
		Color:      c.Color,
		CreatedAt:  c.CreatedAt,
	}
}
