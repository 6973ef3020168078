package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

// DocDateFormat is the wire format for document dates.
const DocDateFormat = "2006-01-02"

// UploadDocumentResponse is returned synchronously from an accepted upload;
// extraction continues in the background.
type UploadDocumentResponse struct {
	DocumentID string                `json:"documentID"`
	Status     models.DocumentStatus `json:"status"`
}

// UpdateDocumentRequest carries a PATCH-style partial update of a draft.
// Absent fields are left untouched.
type UpdateDocumentRequest struct {
	DocType    *string          `json:"docType,omitempty"`
	DocDate    *string          `json:"docDate,omitempty"` // DocDateFormat
	DocNo      *string          `json:"docNo,omitempty"`
	VendorID   *string          `json:"vendorID,omitempty"`
	TotalGross *decimal.Decimal `json:"totalGross,omitempty"`
	TotalTax   *decimal.Decimal `json:"totalTax,omitempty"`
	Currency   *string          `json:"currency,omitempty" binding:"omitempty,len=3"`
	Notes      *string          `json:"notes,omitempty"`
}

// ConfirmDocumentRequest carries the final field values for draft -> posted.
// Presence of vendorID and docDate is validated by the service so the caller
// gets the lifecycle error, not a binding error.
type ConfirmDocumentRequest struct {
	VendorID   *string          `json:"vendorID,omitempty"`
	DocDate    *string          `json:"docDate,omitempty"` // DocDateFormat
	TotalGross *decimal.Decimal `json:"totalGross,omitempty"`
	TotalTax   *decimal.Decimal `json:"totalTax,omitempty"`
	CategoryID *string          `json:"categoryID,omitempty"`
	Direction  *string          `json:"direction,omitempty" binding:"omitempty,oneof=income expense"`
	Notes      *string          `json:"notes,omitempty"`
}

// DocumentResponse is the read projection of a document.
type DocumentResponse struct {
	DocumentID      string                `json:"documentID"`
	Status          models.DocumentStatus `json:"status"`
	DocType         models.DocumentType   `json:"docType"`
	DocDate         *string               `json:"docDate,omitempty"`
	DocNo           *string               `json:"docNo,omitempty"`
	VendorID        *string               `json:"vendorID,omitempty"`
	TotalGross      *decimal.Decimal      `json:"totalGross,omitempty"`
	TotalTax        *decimal.Decimal      `json:"totalTax,omitempty"`
	TotalNet        *decimal.Decimal      `json:"totalNet,omitempty"`
	Currency        string                `json:"currency"`
	RawOCRText      *string               `json:"rawOCRText,omitempty"`
	ConfidenceScore *int                  `json:"confidenceScore,omitempty"`
	ImageRef        *string               `json:"imageRef,omitempty"`
	Notes           *string               `json:"notes,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// ToDocumentResponse maps the model to its read projection.
func ToDocumentResponse(doc models.Document) DocumentResponse {
	resp := DocumentResponse{
		DocumentID:      doc.DocumentID,
		Status:          doc.Status,
		DocType:         doc.DocType,
		DocNo:           doc.DocNo,
		VendorID:        doc.VendorID,
		TotalGross:      doc.TotalGross,
		TotalTax:        doc.TotalTax,
		TotalNet:        doc.TotalNet,
		Currency:        doc.Currency,
		RawOCRText:      doc.RawOCRText,
		ConfidenceScore: doc.ConfidenceScore,
		ImageRef:        doc.ImageRef,
		Notes:           doc.Notes,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
	if doc.DocDate != nil {
		formatted := doc.DocDate.Format(DocDateFormat)
		resp.DocDate = &formatted
	}
	return resp
}
