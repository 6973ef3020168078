package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/muhasebe-app/muhasebe_backend/internal/core/ports"
	"github.com/muhasebe-app/muhasebe_backend/internal/dto"
	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

// VendorService is the registry's direct CRUD surface, used when vendors are
// managed by hand rather than resolved from extractions.
type VendorService struct {
	vendorRepo ports.VendorRepository
}

// NewVendorService creates a VendorService.
func NewVendorService(vendorRepo ports.VendorRepository) *VendorService {
	return &VendorService{vendorRepo: vendorRepo}
}

var _ ports.VendorSvcFacade = (*VendorService)(nil)

// CreateVendor inserts a vendor. The normalized name is derived here, never
// accepted from the caller; a duplicate normalized name surfaces as
// ErrDuplicate.
func (s *VendorService) CreateVendor(ctx context.Context, req dto.CreateVendorRequest) (*models.Vendor, error) {
	vendor := models.Vendor{
		VendorID:       uuid.NewString(),
		DisplayName:    req.DisplayName,
		NormalizedName: NormalizeVendorName(req.DisplayName),
		TaxID:          req.TaxID,
		Phone:          req.Phone,
		Address:        req.Address,
		Notes:          req.Notes,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.vendorRepo.SaveVendor(ctx, vendor); err != nil {
		return nil, fmt.Errorf("failed to create vendor %q: %w", req.DisplayName, err)
	}
	return &vendor, nil
}

// GetVendor returns one vendor by id.
func (s *VendorService) GetVendor(ctx context.Context, vendorID string) (*models.Vendor, error) {
	vendor, err := s.vendorRepo.FindVendorByID(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find vendor %s: %w", vendorID, err)
	}
	return vendor, nil
}

// ListVendors returns vendors, optionally filtered by a display-name search
// term.
func (s *VendorService) ListVendors(ctx context.Context, search string, limit, offset int) ([]models.Vendor, error) {
	vendors, err := s.vendorRepo.ListVendors(ctx, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	if vendors == nil {
		vendors = []models.Vendor{}
	}
	return vendors, nil
}

// UpdateVendor applies a partial update. Renaming re-derives the normalized
// name so matching stays consistent with the display name.
func (s *VendorService) UpdateVendor(ctx context.Context, vendorID string, req dto.UpdateVendorRequest) (*models.Vendor, error) {
	vendor, err := s.vendorRepo.FindVendorByID(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find vendor %s: %w", vendorID, err)
	}

	if req.DisplayName != nil {
		vendor.DisplayName = *req.DisplayName
		vendor.NormalizedName = NormalizeVendorName(*req.DisplayName)
	}
	if req.TaxID != nil {
		vendor.TaxID = req.TaxID
	}
	if req.Phone != nil {
		vendor.Phone = req.Phone
	}
	if req.Address != nil {
		vendor.Address = req.Address
	}
	if req.Notes != nil {
		vendor.Notes = req.Notes
	}

	if err := s.vendorRepo.UpdateVendor(ctx, *vendor); err != nil {
		return nil, fmt.Errorf("failed to update vendor %s: %w", vendorID, err)
	}
	return vendor, nil
}
