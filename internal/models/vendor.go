package models

import "time"

// Vendor is a resolved counterparty. Vendors are only ever created or
// referenced by the pipeline, never deleted.
type Vendor struct {
	VendorID    string `json:"vendorID"`
	DisplayName string `json:"displayName"`
	// NormalizedName is the matching key; unique within the registry.
	NormalizedName string  `json:"normalizedName"`
	TaxID          *string `json:"taxID,omitempty"` // VKN, 10-11 digits
	Phone          *string `json:"phone,omitempty"`
	Address        *string `json:"address,omitempty"`
	Notes          *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// VendorUsage pairs a vendor with its ledger-entry association count, used to
// break ties between equally scoring fuzzy matches.
type VendorUsage struct {
	Vendor
	EntryCount int `json:"entryCount"`
}
