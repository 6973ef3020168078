package ports

import (
	"context"

	"github.com/muhasebe-app/muhasebe_backend/internal/dto"
	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

// IngestionSvcFacade is the handler-facing surface of the ingestion gateway.
type IngestionSvcFacade interface {
	// IngestDocument validates and persists an upload, creates the draft and
	// enqueues extraction. It returns the draft immediately; extraction runs
	// asynchronously.
	IngestDocument(ctx context.Context, content []byte, mediaType string) (*models.Document, error)

	// RequeueExtraction schedules extraction again for an existing draft.
	RequeueExtraction(ctx context.Context, documentID string) error
}

// DocumentSvcFacade is the handler-facing surface of the document lifecycle.
type DocumentSvcFacade interface {
	GetDocument(ctx context.Context, documentID string) (*models.Document, error)
	ListDocuments(ctx context.Context, status *models.DocumentStatus, limit, offset int) ([]models.Document, error)
	UpdateDraft(ctx context.Context, documentID string, req dto.UpdateDocumentRequest) (*models.Document, error)
	ConfirmDocument(ctx context.Context, documentID string, req dto.ConfirmDocumentRequest) (*models.Document, error)
	CancelDocument(ctx context.Context, documentID string) error
}

// VendorSvcFacade is the handler-facing surface of the vendor registry.
type VendorSvcFacade interface {
	CreateVendor(ctx context.Context, req dto.CreateVendorRequest) (*models.Vendor, error)
	GetVendor(ctx context.Context, vendorID string) (*models.Vendor, error)
	ListVendors(ctx context.Context, search string, limit, offset int) ([]models.Vendor, error)
	UpdateVendor(ctx context.Context, vendorID string, req dto.UpdateVendorRequest) (*models.Vendor, error)
}

// LedgerSvcFacade is the handler-facing surface of the ledger read side plus
// manual entry creation and category maintenance.
type LedgerSvcFacade interface {
	CreateManualEntry(ctx context.Context, req dto.CreateLedgerEntryRequest) (*models.LedgerEntry, error)
	GetEntry(ctx context.Context, entryID string) (*models.LedgerEntry, error)
	GetEntryForDocument(ctx context.Context, documentID string) (*models.LedgerEntry, error)
	ListEntries(ctx context.Context, filter LedgerFilter) ([]models.LedgerEntry, error)

	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, categoryID string, req dto.CreateCategoryRequest) (*models.Category, error)
}
