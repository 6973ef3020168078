package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field names used as keys in the per-field confidence map.
const (
	FieldVendorName = "vendor_name"
	FieldTaxID      = "tax_id"
	FieldDocDate    = "doc_date"
	FieldDocNo      = "doc_no"
	FieldTotalGross = "total_gross"
	FieldTotalTax   = "total_tax"
	FieldCurrency   = "currency"
)

// ExtractionResult holds the candidate fields parsed from raw OCR text.
// A nil field with confidence 0 means no extractable signal; values are never
// fabricated.
type ExtractionResult struct {
	VendorName *string
	TaxID      *string
	DocDate    *time.Time
	DocNo      *string
	TotalGross *decimal.Decimal
	TotalTax   *decimal.Decimal
	TotalNet   *decimal.Decimal
	Currency   string

	// FieldConfidences maps Field* keys to [0,1] extraction confidence.
	FieldConfidences map[string]float64
}

// MeanFieldConfidence averages the per-field confidences over the fixed field
// set, counting absent fields as zero.
func (r ExtractionResult) MeanFieldConfidence() float64 {
	fields := []string{FieldVendorName, FieldTaxID, FieldDocDate, FieldDocNo, FieldTotalGross, FieldTotalTax}
	if len(fields) == 0 {
		return 0
	}
	var sum float64
	for _, f := range fields {
		sum += r.FieldConfidences[f]
	}
	return sum / float64(len(fields))
}
