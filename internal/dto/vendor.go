package dto

import (
	"time"

	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

// CreateVendorRequest creates a vendor directly through the registry surface.
type CreateVendorRequest struct {
	DisplayName string  `json:"displayName" binding:"required,min=1,max=255"`
	TaxID       *string `json:"taxID,omitempty" binding:"omitempty,numeric,min=10,max=11"`
	Phone       *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Address     *string `json:"address,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// UpdateVendorRequest carries a partial vendor update.
type UpdateVendorRequest struct {
	DisplayName *string `json:"displayName,omitempty" binding:"omitempty,min=1,max=255"`
	TaxID       *string `json:"taxID,omitempty" binding:"omitempty,numeric,min=10,max=11"`
	Phone       *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Address     *string `json:"address,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// VendorResponse is the vendor read projection.
type VendorResponse struct {
	VendorID    string    `json:"vendorID"`
	DisplayName string    `json:"displayName"`
	TaxID       *string   `json:"taxID,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Address     *string   `json:"address,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToVendorResponse maps the model to its read projection.
func ToVendorResponse(v models.Vendor) VendorResponse {
	return VendorResponse{
		VendorID:    v.VendorID,
		DisplayName: v.DisplayName,
		TaxID:       v.TaxID,
		Phone:       v.Phone,
		Address:     v.Address,
		Notes:       v.Notes,
		CreatedAt:   v.CreatedAt,
	}
}
