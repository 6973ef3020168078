package ports

import (
	"context"
	"time"

	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

// DocumentRepository defines persistence operations for documents.
//
// The mutating calls guard on status in the WHERE clause so the mutability
// rules hold even under concurrent writers: UpdateDraftFields and
// UpdateExtraction return apperrors.ErrDocumentLocked when the document is no
// longer a draft; ConfirmDocument and CancelDocument return
// apperrors.ErrInvalidStateTransition.
type DocumentRepository interface {
	SaveDocument(ctx context.Context, doc models.Document) error
	FindDocumentByID(ctx context.Context, documentID string) (*models.Document, error)
	ListDocuments(ctx context.Context, status *models.DocumentStatus, limit, offset int) ([]models.Document, error)

	// UpdateDraftFields persists user edits to a draft's extracted fields.
	UpdateDraftFields(ctx context.Context, doc models.Document) error

	// UpdateExtraction persists pipeline output (raw text, fields, confidence)
	// onto a draft.
	UpdateExtraction(ctx context.Context, doc models.Document) error

	// ConfirmDocument atomically flips draft to posted and inserts the ledger
	// entry in one transaction; both succeed or neither does.
	ConfirmDocument(ctx context.Context, doc models.Document, entry models.LedgerEntry) error

	CancelDocument(ctx context.Context, documentID string, now time.Time) error
}

// VendorRepository defines persistence operations for the vendor registry.
// SaveVendor returns apperrors.ErrDuplicate when the normalized name is
// already taken; the resolver re-reads the winner's row on that signal.
type VendorRepository interface {
	SaveVendor(ctx context.Context, vendor models.Vendor) error
	FindVendorByID(ctx context.Context, vendorID string) (*models.Vendor, error)
	FindVendorByNormalizedName(ctx context.Context, normalizedName string) (*models.Vendor, error)
	FindVendorByTaxID(ctx context.Context, taxID string) (*models.Vendor, error)
	ListVendors(ctx context.Context, search string, limit, offset int) ([]models.Vendor, error)
	// ListVendorUsage returns every vendor with its ledger-entry count.
	ListVendorUsage(ctx context.Context) ([]models.VendorUsage, error)
	UpdateVendor(ctx context.Context, vendor models.Vendor) error
}

// LedgerFilter narrows ledger entry listings.
type LedgerFilter struct {
	Direction  *models.EntryDirection
	VendorID   *string
	CategoryID *string
	Limit      int
	Offset     int
}

// LedgerRepository defines persistence for ledger entries. The store is
// insert-only; entries are never updated or deleted.
type LedgerRepository interface {
	SaveEntry(ctx context.Context, entry models.LedgerEntry) error
	FindEntryByID(ctx context.Context, entryID string) (*models.LedgerEntry, error)
	FindEntryByDocumentID(ctx context.Context, documentID string) (*models.LedgerEntry, error)
	ListEntries(ctx context.Context, filter LedgerFilter) ([]models.LedgerEntry, error)
}

// CategoryRepository defines persistence for entry categories.
type CategoryRepository interface {
	SaveCategory(ctx context.Context, category models.Category) error
	FindCategoryByID(ctx context.Context, categoryID string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, category models.Category) error
}
