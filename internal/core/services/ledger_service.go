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

// LedgerService covers the ledger read side, manual entries that are not
// backed by a document, and category maintenance. Document-backed entries are
// created only through document confirmation; entries are never updated or
// deleted once written.
type LedgerService struct {
	ledgerRepo   ports.LedgerRepository
	categoryRepo ports.CategoryRepository
}

// NewLedgerService creates a LedgerService.
func NewLedgerService(ledgerRepo ports.LedgerRepository, categoryRepo ports.CategoryRepository) *LedgerService {
	return &LedgerService{ledgerRepo: ledgerRepo, categoryRepo: categoryRepo}
}

var _ ports.LedgerSvcFacade = (*LedgerService)(nil)

// CreateManualEntry records a financial fact entered by hand. It defaults the
// entry date to today when none is given.
func (s *LedgerService) CreateManualEntry(ctx context.Context, req dto.CreateLedgerEntryRequest) (*models.LedgerEntry, error) {
	now := time.Now().UTC()
	entryDate := now.Truncate(24 * time.Hour)
	if req.EntryDate != nil && *req.EntryDate != "" {
		parsed, err := parseDocDate(*req.EntryDate)
		if err != nil {
			return nil, err
		}
		entryDate = parsed
	}

	entry := models.LedgerEntry{
		EntryID:    uuid.NewString(),
		VendorID:   req.VendorID,
		CategoryID: req.CategoryID,
		Direction:  models.EntryDirection(req.Direction),
		Amount:     req.Amount,
		TaxAmount:  req.TaxAmount,
		Currency:   req.Currency,
		EntryDate:  entryDate,
		Notes:      req.Notes,
		CreatedAt:  now,
	}
	if err := s.ledgerRepo.SaveEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save ledger entry: %w", err)
	}
	return &entry, nil
}

// GetEntry returns one entry by id.
func (s *LedgerService) GetEntry(ctx context.Context, entryID string) (*models.LedgerEntry, error) {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger entry %s: %w", entryID, err)
	}
	return entry, nil
}

// GetEntryForDocument returns the entry created by confirming a document.
func (s *LedgerService) GetEntryForDocument(ctx context.Context, documentID string) (*models.LedgerEntry, error) {
	entry, err := s.ledgerRepo.FindEntryByDocumentID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger entry for document %s: %w", documentID, err)
	}
	return entry, nil
}

// ListEntries returns entries matching the filter.
func (s *LedgerService) ListEntries(ctx context.Context, filter ports.LedgerFilter) ([]models.LedgerEntry, error) {
	entries, err := s.ledgerRepo.ListEntries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	return entries, nil
}

// CreateCategory inserts a category.
func (s *LedgerService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*models.Category, error) {
	category := models.Category{
		CategoryID: uuid.NewString(),
		ParentID:   req.ParentID,
		Name:       req.Name,
		Icon:       req.Icon,
		Color:      req.Color,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category %q: %w", req.Name, err)
	}
	return &category, nil
}

// ListCategories returns all categories.
func (s *LedgerService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categoryRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// UpdateCategory replaces a category's mutable fields.
func (s *LedgerService) UpdateCategory(ctx context.Context, categoryID string, req dto.CreateCategoryRequest) (*models.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find category %s: %w", categoryID, err)
	}

	category.Name = req.Name
	category.Icon = req.Icon
	category.Color = req.Color
	category.ParentID = req.ParentID

	if err := s.categoryRepo.UpdateCategory(ctx, *category); err != nil {
		return nil, fmt.Errorf("failed to update category %s: %w", categoryID, err)
	}
	return category, nil
}
