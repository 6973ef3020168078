package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/muhasebe-app/muhasebe_backend/internal/apperrors"
	"github.com/muhasebe-app/muhasebe_backend/internal/core/ports"
	"github.com/muhasebe-app/muhasebe_backend/internal/dto"
	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

// DocumentService owns the document state machine: draft -> posted and
// draft -> cancelled, with posted and cancelled terminal. Field edits are
// allowed only while the document is a draft.
type DocumentService struct {
	docRepo ports.DocumentRepository
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(docRepo ports.DocumentRepository) *DocumentService {
	return &DocumentService{docRepo: docRepo}
}

var _ ports.DocumentSvcFacade = (*DocumentService)(nil)

// GetDocument returns the full document projection.
func (s *DocumentService) GetDocument(ctx context.Context, documentID string) (*models.Document, error) {
	doc, err := s.docRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document %s: %w", documentID, err)
	}
	return doc, nil
}

// ListDocuments returns documents, optionally filtered by status.
func (s *DocumentService) ListDocuments(ctx context.Context, status *models.DocumentStatus, limit, offset int) ([]models.Document, error) {
	docs, err := s.docRepo.ListDocuments(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs, nil
}

// UpdateDraft applies a partial field update to a draft. Editing a posted or
// cancelled document fails with ErrDocumentLocked.
func (s *DocumentService) UpdateDraft(ctx context.Context, documentID string, req dto.UpdateDocumentRequest) (*models.Document, error) {
	doc, err := s.docRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document %s: %w", documentID, err)
	}
	if doc.Status != models.DocumentStatusDraft {
		return nil, fmt.Errorf("%w: document %s is %s", apperrors.ErrDocumentLocked, documentID, doc.Status)
	}

	if req.DocType != nil {
		docType := models.DocumentType(*req.DocType)
		switch docType {
		case models.DocumentTypeReceipt, models.DocumentTypeInvoice, models.DocumentTypeOther:
			doc.DocType = docType
		default:
			return nil, fmt.Errorf("%w: unknown doc type %q", apperrors.ErrValidation, *req.DocType)
		}
	}
	if req.DocDate != nil {
		docDate, err := parseDocDate(*req.DocDate)
		if err != nil {
			return nil, err
		}
		doc.DocDate = &docDate
	}
	if req.DocNo != nil {
		doc.DocNo = req.DocNo
	}
	if req.VendorID != nil {
		doc.VendorID = req.VendorID
	}
	if req.TotalGross != nil {
		doc.TotalGross = req.TotalGross
	}
	if req.TotalTax != nil {
		doc.TotalTax = req.TotalTax
	}
	if req.Currency != nil {
		doc.Currency = *req.Currency
	}
	if req.Notes != nil {
		doc.Notes = req.Notes
	}

	// Net is always derived, never accepted from the caller.
	doc.TotalNet = deriveNet(doc.TotalGross, doc.TotalTax)
	doc.UpdatedAt = time.Now().UTC()

	if err := s.docRepo.UpdateDraftFields(ctx, *doc); err != nil {
		return nil, fmt.Errorf("failed to update draft %s: %w", documentID, err)
	}
	return doc, nil
}

// ConfirmDocument finalizes a draft: it overwrites the document's fields with
// the supplied values, freezes them, and atomically creates exactly one
// ledger entry mirroring the frozen amounts. Confirming anything but a draft
// fails with ErrInvalidStateTransition; confirmation is deliberately not
// idempotent, since a second confirmation would imply a second financial
// fact.
func (s *DocumentService) ConfirmDocument(ctx context.Context, documentID string, req dto.ConfirmDocumentRequest) (*models.Document, error) {
	if req.VendorID == nil || *req.VendorID == "" || req.DocDate == nil || *req.DocDate == "" {
		return nil, fmt.Errorf("%w: vendorID and docDate are required to confirm", apperrors.ErrIncompleteDocument)
	}
	docDate, err := parseDocDate(*req.DocDate)
	if err != nil {
		return nil, err
	}

	doc, err := s.docRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document %s: %w", documentID, err)
	}
	if doc.Status != models.DocumentStatusDraft {
		return nil, fmt.Errorf("%w: document %s is %s", apperrors.ErrInvalidStateTransition, documentID, doc.Status)
	}

	now := time.Now().UTC()
	doc.VendorID = req.VendorID
	doc.DocDate = &docDate
	if req.TotalGross != nil {
		doc.TotalGross = req.TotalGross
	}
	if req.TotalTax != nil {
		doc.TotalTax = req.TotalTax
	}
	if req.Notes != nil {
		doc.Notes = req.Notes
	}
	doc.TotalNet = deriveNet(doc.TotalGross, doc.TotalTax)
	doc.Status = models.DocumentStatusPosted
	doc.UpdatedAt = now

	direction := models.EntryDirectionExpense
	if req.Direction != nil {
		direction = models.EntryDirection(*req.Direction)
	}
	amount := decimal.Zero
	if doc.TotalGross != nil {
		amount = *doc.TotalGross
	}

	entry := models.LedgerEntry{
		EntryID:    uuid.NewString(),
		DocumentID: &doc.DocumentID,
		VendorID:   doc.VendorID,
		CategoryID: req.CategoryID,
		Direction:  direction,
		Amount:     amount,
		TaxAmount:  doc.TotalTax,
		Currency:   doc.Currency,
		EntryDate:  docDate,
		CreatedAt:  now,
	}

	if err := s.docRepo.ConfirmDocument(ctx, *doc, entry); err != nil {
		return nil, fmt.Errorf("failed to confirm document %s: %w", documentID, err)
	}
	return doc, nil
}

// CancelDocument discards a draft. The original artifact and raw OCR text are
// retained for audit; no ledger entry is created.
func (s *DocumentService) CancelDocument(ctx context.Context, documentID string) error {
	if err := s.docRepo.CancelDocument(ctx, documentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to cancel document %s: %w", documentID, err)
	}
	return nil
}

func parseDocDate(value string) (time.Time, error) {
	docDate, err := time.Parse(dto.DocDateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, want %s", apperrors.ErrValidation, value, dto.DocDateFormat)
	}
	return docDate, nil
}

func deriveNet(gross, tax *decimal.Decimal) *decimal.Decimal {
	if gross == nil || tax == nil {
		return nil
	}
	net := gross.Sub(*tax)
	return &net
}
