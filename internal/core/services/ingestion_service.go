package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/muhasebe-app/muhasebe_backend/internal/apperrors"
	"github.com/muhasebe-app/muhasebe_backend/internal/core/ports"
	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

// Media types accepted at the ingestion boundary.
var acceptedMediaTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"application/pdf": {},
}

// IngestionService is the single entry point for new documents. It validates
// the upload, stores the artifact, creates the draft and hands the document to
// the extraction queue. The caller gets the draft id back immediately;
// extraction runs asynchronously.
type IngestionService struct {
	logger        *slog.Logger
	docRepo       ports.DocumentRepository
	store         ports.ArtifactStore
	queue         ports.ExtractionQueue
	maxUploadSize int64
	currency      string
}

// NewIngestionService creates an IngestionService.
func NewIngestionService(logger *slog.Logger, docRepo ports.DocumentRepository, store ports.ArtifactStore, queue ports.ExtractionQueue, maxUploadSize int64, defaultCurrency string) *IngestionService {
	return &IngestionService{
		logger:        logger,
		docRepo:       docRepo,
		store:         store,
		queue:         queue,
		maxUploadSize: maxUploadSize,
		currency:      defaultCurrency,
	}
}

var _ ports.IngestionSvcFacade = (*IngestionService)(nil)

// IngestDocument accepts a raw upload and returns the created draft. The
// artifact is persisted before the draft row is written, so a stored document
// always has a retrievable image. Enqueue failure does not lose the upload:
// the draft stays in the store with no confidence score.
func (s *IngestionService) IngestDocument(ctx context.Context, content []byte, mediaType string) (*models.Document, error) {
	mediaType = normalizeMediaType(mediaType)
	if _, ok := acceptedMediaTypes[mediaType]; !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedMediaType, mediaType)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty upload", apperrors.ErrValidation)
	}
	if int64(len(content)) > s.maxUploadSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", apperrors.ErrPayloadTooLarge, len(content), s.maxUploadSize)
	}

	ref, sha, err := s.store.Save(content, mediaType)
	if err != nil {
		return nil, fmt.Errorf("failed to store artifact: %w", err)
	}

	now := time.Now().UTC()
	doc := models.Document{
		DocumentID:  uuid.NewString(),
		Status:      models.DocumentStatusDraft,
		DocType:     guessDocType(mediaType),
		Currency:    s.currency,
		ImageRef:    &ref,
		ImageSHA256: &sha,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.docRepo.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	if err := s.queue.Enqueue(doc.DocumentID); err != nil {
		// The draft is already persisted; the user can fill it in manually.
		s.logger.WarnContext(ctx, "failed to enqueue extraction",
			"documentId", doc.DocumentID, "error", err)
	} else {
		s.logger.InfoContext(ctx, "document ingested",
			"documentId", doc.DocumentID, "mediaType", mediaType, "bytes", len(content))
	}

	return &doc, nil
}

// RequeueExtraction schedules extraction again for an existing draft, e.g.
// after the recognizer was unavailable at upload time. Posted and cancelled
// documents are refused; a task already running for the document surfaces as
// ErrExtractionInFlight.
func (s *IngestionService) RequeueExtraction(ctx context.Context, documentID string) error {
	doc, err := s.docRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to find document %s: %w", documentID, err)
	}
	if doc.Status != models.DocumentStatusDraft {
		return fmt.Errorf("%w: cannot re-extract a %s document", apperrors.ErrInvalidStateTransition, doc.Status)
	}

	if err := s.queue.Enqueue(documentID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "extraction re-enqueued", "documentId", documentID)
	return nil
}

// normalizeMediaType lowercases and strips any parameters, e.g.
// "image/jpeg; charset=binary" -> "image/jpeg".
func normalizeMediaType(mediaType string) string {
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// guessDocType picks the initial doc type before any extraction has run.
// Scanned PDFs are overwhelmingly invoices; camera uploads are receipts.
func guessDocType(mediaType string) models.DocumentType {
	if mediaType == "application/pdf" {
		return models.DocumentTypeInvoice
	}
	return models.DocumentTypeReceipt
}
