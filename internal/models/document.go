package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentStatus indicates where a document sits in its lifecycle.
type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusPosted    DocumentStatus = "posted"
	DocumentStatusCancelled DocumentStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed from the status.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusPosted || s == DocumentStatusCancelled
}

// DocumentType classifies the source artifact.
type DocumentType string

const (
	DocumentTypeReceipt DocumentType = "receipt"
	DocumentTypeInvoice DocumentType = "invoice"
	DocumentTypeOther   DocumentType = "other"
)

// Document represents one uploaded receipt/invoice artifact and its extracted
// interpretation. Optional fields are pointers; nil means unresolved, never a
// sentinel value.
type Document struct {
	DocumentID string         `json:"documentID"`
	Status     DocumentStatus `json:"status"`
	DocType    DocumentType   `json:"docType"`

	DocDate  *time.Time `json:"docDate,omitempty"`
	DocNo    *string    `json:"docNo,omitempty"`
	VendorID *string    `json:"vendorID,omitempty"`

	TotalGross *decimal.Decimal `json:"totalGross,omitempty"`
	TotalTax   *decimal.Decimal `json:"totalTax,omitempty"`
	// TotalNet is derived as gross - tax when both are present; it is never
	// trusted directly from OCR.
	TotalNet *decimal.Decimal `json:"totalNet,omitempty"`
	Currency string           `json:"currency"`

	// RawOCRText is immutable once set; retained for audit and re-extraction.
	RawOCRText      *string `json:"rawOCRText,omitempty"`
	ConfidenceScore *int    `json:"confidenceScore,omitempty"`

	ImageRef    *string `json:"imageRef,omitempty"`
	ImageSHA256 *string `json:"imageSHA256,omitempty"`
	Notes       *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
