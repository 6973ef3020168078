package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/muhasebe-app/muhasebe_backend/internal/apperrors"
	"github.com/muhasebe-app/muhasebe_backend/internal/core/ports"
	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

// ExtractionWorker runs the asynchronous pipeline for a queued document:
// recognize text, extract fields, resolve the vendor, aggregate confidence
// and write everything back onto the draft. Failures never lose the upload;
// the worst outcome is a draft with confidence 0 that the user fills in by
// hand.
type ExtractionWorker struct {
	logger     *slog.Logger
	docRepo    ports.DocumentRepository
	store      ports.ArtifactStore
	recognizer ports.TextRecognizer
	extractor  *ExtractionService
	resolver   *VendorResolver

	timeout    time.Duration
	maxRetries int

	tasks chan string
	wg    sync.WaitGroup

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewExtractionWorker creates a worker with a bounded task queue.
func NewExtractionWorker(logger *slog.Logger, docRepo ports.DocumentRepository, store ports.ArtifactStore, recognizer ports.TextRecognizer, extractor *ExtractionService, resolver *VendorResolver, timeout time.Duration, maxRetries, queueSize int) *ExtractionWorker {
	return &ExtractionWorker{
		logger:     logger,
		docRepo:    docRepo,
		store:      store,
		recognizer: recognizer,
		extractor:  extractor,
		resolver:   resolver,
		timeout:    timeout,
		maxRetries: maxRetries,
		tasks:      make(chan string, queueSize),
		inFlight:   make(map[string]struct{}),
	}
}

var _ ports.ExtractionQueue = (*ExtractionWorker)(nil)

// Enqueue schedules extraction for a document. A document already queued or
// running is rejected with ErrExtractionInFlight so the pipeline never runs
// twice concurrently for the same id.
func (w *ExtractionWorker) Enqueue(documentID string) error {
	w.mu.Lock()
	if _, ok := w.inFlight[documentID]; ok {
		w.mu.Unlock()
		return fmt.Errorf("%w: document %s", apperrors.ErrExtractionInFlight, documentID)
	}
	w.inFlight[documentID] = struct{}{}
	w.mu.Unlock()

	select {
	case w.tasks <- documentID:
		return nil
	default:
		w.release(documentID)
		return fmt.Errorf("extraction queue is full, document %s not scheduled", documentID)
	}
}

// Start launches the worker goroutines. They drain the queue until ctx is
// cancelled; Wait blocks until all of them have returned.
func (w *ExtractionWorker) Start(ctx context.Context, workers int) {
	for i := 0; i < workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case documentID := <-w.tasks:
					w.process(ctx, documentID)
				}
			}
		}()
	}
}

// Wait blocks until every worker goroutine has stopped.
func (w *ExtractionWorker) Wait() {
	w.wg.Wait()
}

func (w *ExtractionWorker) release(documentID string) {
	w.mu.Lock()
	delete(w.inFlight, documentID)
	w.mu.Unlock()
}

func (w *ExtractionWorker) process(ctx context.Context, documentID string) {
	defer w.release(documentID)

	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	logger := w.logger.With("documentId", documentID)

	doc, err := w.docRepo.FindDocumentByID(runCtx, documentID)
	if err != nil {
		logger.ErrorContext(runCtx, "failed to load document for extraction", "error", err)
		return
	}
	if doc.Status != models.DocumentStatusDraft {
		logger.InfoContext(runCtx, "skipping extraction, document no longer a draft", "status", doc.Status)
		return
	}
	if doc.ImageRef == nil {
		logger.WarnContext(runCtx, "document has no stored artifact, marking low confidence")
		w.markLowConfidence(ctx, doc)
		return
	}

	content, err := w.store.Read(*doc.ImageRef)
	if err != nil {
		logger.ErrorContext(runCtx, "failed to read stored artifact", "error", err)
		w.markLowConfidence(ctx, doc)
		return
	}

	result, err := w.recognize(runCtx, content, mediaTypeFromRef(*doc.ImageRef))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrOCRTimeout) || errors.Is(err, context.DeadlineExceeded):
			logger.WarnContext(ctx, "text recognition timed out", "timeout", w.timeout)
		default:
			logger.WarnContext(ctx, "text recognition failed", "error", err)
		}
		w.markLowConfidence(ctx, doc)
		return
	}

	extraction := w.extractor.Extract(result.Text)

	resolution := VendorResolution{MatchType: MatchUnresolved}
	if extraction.VendorName != nil || extraction.TaxID != nil {
		candidate := ""
		if extraction.VendorName != nil {
			candidate = *extraction.VendorName
		}
		resolution, err = w.resolver.Resolve(runCtx, candidate, extraction.TaxID)
		if err != nil {
			// A registry failure downgrades the vendor signal, nothing more.
			logger.WarnContext(runCtx, "vendor resolution failed", "error", err)
			resolution = VendorResolution{MatchType: MatchUnresolved}
		}
	}

	score := AggregateConfidence(result.Quality, extraction.MeanFieldConfidence(), resolution)

	doc.RawOCRText = &result.Text
	doc.ConfidenceScore = &score
	doc.VendorID = resolution.VendorID
	if extraction.DocDate != nil {
		doc.DocDate = extraction.DocDate
	}
	if extraction.DocNo != nil {
		doc.DocNo = extraction.DocNo
	}
	if extraction.TotalGross != nil {
		doc.TotalGross = extraction.TotalGross
	}
	if extraction.TotalTax != nil {
		doc.TotalTax = extraction.TotalTax
	}
	if extraction.TotalNet != nil {
		doc.TotalNet = extraction.TotalNet
	}
	if extraction.Currency != "" {
		doc.Currency = extraction.Currency
	}
	doc.UpdatedAt = time.Now().UTC()

	if err := w.docRepo.UpdateExtraction(ctx, *doc); err != nil {
		if errors.Is(err, apperrors.ErrDocumentLocked) {
			// Confirmed or cancelled while we were working; their fields win.
			logger.InfoContext(ctx, "extraction result dropped, document left draft state")
			return
		}
		logger.ErrorContext(ctx, "failed to persist extraction result", "error", err)
		return
	}

	logger.InfoContext(ctx, "extraction completed",
		"confidence", score,
		"vendorMatch", resolution.MatchType,
		"textLength", len(result.Text))
}

// recognize calls the recognizer with retries. Deadline errors are terminal:
// retrying inside an already-expired context is pointless.
func (w *ExtractionWorker) recognize(ctx context.Context, content []byte, mediaType string) (ports.RecognitionResult, error) {
	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		result, err := w.recognizer.RecognizeText(ctx, content, mediaType)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, apperrors.ErrOCRTimeout) || ctx.Err() != nil {
			break
		}
		w.logger.WarnContext(ctx, "text recognition attempt failed",
			"attempt", attempt+1, "error", err)
	}
	return ports.RecognitionResult{}, lastErr
}

// markLowConfidence stamps confidence 0 onto the draft so it surfaces in the
// review queue instead of disappearing.
func (w *ExtractionWorker) markLowConfidence(ctx context.Context, doc *models.Document) {
	zero := 0
	doc.ConfidenceScore = &zero
	doc.UpdatedAt = time.Now().UTC()
	if err := w.docRepo.UpdateExtraction(ctx, *doc); err != nil && !errors.Is(err, apperrors.ErrDocumentLocked) {
		w.logger.ErrorContext(ctx, "failed to mark document low confidence",
			"documentId", doc.DocumentID, "error", err)
	}
}

// mediaTypeFromRef recovers the media type from the artifact reference's file
// extension; the store names artifacts by digest plus extension.
func mediaTypeFromRef(ref string) string {
	switch {
	case strings.HasSuffix(ref, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(ref, ".png"):
		return "image/png"
	case strings.HasSuffix(ref, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
