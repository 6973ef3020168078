package services_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muhasebe-app/muhasebe_backend/internal/apperrors"
	"github.com/muhasebe-app/muhasebe_backend/internal/core/ports"
	"github.com/muhasebe-app/muhasebe_backend/internal/core/services"
	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

func newWorkerFixture(timeout time.Duration, retries int) (*services.ExtractionWorker, *MockDocumentRepository, *MockArtifactStore, *MockTextRecognizer, *MockVendorRepository) {
	repo := new(MockDocumentRepository)
	store := new(MockArtifactStore)
	recognizer := new(MockTextRecognizer)
	vendorRepo := new(MockVendorRepository)

	extractor := services.NewExtractionService("TRY", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	resolver := services.NewVendorResolver(vendorRepo, 0.85)
	worker := services.NewExtractionWorker(slog.Default(), repo, store, recognizer, extractor, resolver, timeout, retries, 8)
	return worker, repo, store, recognizer, vendorRepo
}

func imageDraft(id string) *models.Document {
	doc := draftDocument(id)
	ref := "artifact.jpg"
	doc.ImageRef = &ref
	return doc
}

func TestEnqueue_RejectsDuplicateInFlight(t *testing.T) {
	worker, _, _, _, _ := newWorkerFixture(time.Second, 0)

	require.NoError(t, worker.Enqueue("doc-1"))
	err := worker.Enqueue("doc-1")
	assert.ErrorIs(t, err, apperrors.ErrExtractionInFlight)

	// A different document is unaffected.
	require.NoError(t, worker.Enqueue("doc-2"))
}

func TestWorker_SuccessfulExtractionUpdatesDraft(t *testing.T) {
	worker, repo, store, recognizer, vendorRepo := newWorkerFixture(5*time.Second, 0)

	done := make(chan struct{})
	repo.On("FindDocumentByID", mock.Anything, "doc-1").Return(imageDraft("doc-1"), nil).Once()
	store.On("Read", "artifact.jpg").Return([]byte("img"), nil).Once()
	recognizer.On("RecognizeText", mock.Anything, []byte("img"), "image/jpeg").
		Return(ports.RecognitionResult{Text: "MİGROS TİCARET A.Ş.\n15.08.2023\nTOPLAM *118,00\nKDV 18,00\n"}, nil).Once()
	vendorRepo.On("FindVendorByNormalizedName", mock.Anything, "migros").
		Return(&models.Vendor{VendorID: "v-1", NormalizedName: "migros"}, nil).Once()
	repo.On("UpdateExtraction", mock.Anything, mock.MatchedBy(func(d models.Document) bool {
		return d.DocumentID == "doc-1" &&
			d.RawOCRText != nil &&
			d.ConfidenceScore != nil && *d.ConfidenceScore > 0 &&
			d.VendorID != nil && *d.VendorID == "v-1" &&
			d.TotalGross != nil
	})).Run(func(mock.Arguments) { close(done) }).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx, 1)

	require.NoError(t, worker.Enqueue("doc-1"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("extraction did not complete")
	}

	cancel()
	worker.Wait()
	repo.AssertExpectations(t)
}

func TestWorker_RecognizerFailureMarksZeroConfidence(t *testing.T) {
	worker, repo, store, recognizer, _ := newWorkerFixture(5*time.Second, 1)

	done := make(chan struct{})
	repo.On("FindDocumentByID", mock.Anything, "doc-1").Return(imageDraft("doc-1"), nil).Once()
	store.On("Read", "artifact.jpg").Return([]byte("img"), nil).Once()
	// Both the first attempt and the retry fail.
	recognizer.On("RecognizeText", mock.Anything, mock.Anything, mock.Anything).
		Return(ports.RecognitionResult{}, apperrors.ErrOCRUnavailable).Twice()
	repo.On("UpdateExtraction", mock.Anything, mock.MatchedBy(func(d models.Document) bool {
		return d.ConfidenceScore != nil && *d.ConfidenceScore == 0
	})).Run(func(mock.Arguments) { close(done) }).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx, 1)

	require.NoError(t, worker.Enqueue("doc-1"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("low-confidence mark did not happen")
	}

	cancel()
	worker.Wait()
	recognizer.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestWorker_SkipsNonDraftDocuments(t *testing.T) {
	worker, repo, store, recognizer, _ := newWorkerFixture(5*time.Second, 0)

	var once sync.Once
	done := make(chan struct{})
	posted := imageDraft("doc-1")
	posted.Status = models.DocumentStatusPosted
	repo.On("FindDocumentByID", mock.Anything, "doc-1").
		Run(func(mock.Arguments) { once.Do(func() { close(done) }) }).
		Return(posted, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx, 1)

	require.NoError(t, worker.Enqueue("doc-1"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("document was never looked up")
	}

	cancel()
	worker.Wait()
	store.AssertNotCalled(t, "Read", mock.Anything)
	recognizer.AssertNotCalled(t, "RecognizeText", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateExtraction", mock.Anything, mock.Anything)
}

func TestWorker_InFlightReleasedAfterProcessing(t *testing.T) {
	worker, repo, _, _, _ := newWorkerFixture(5*time.Second, 0)

	processed := make(chan struct{}, 2)
	repo.On("FindDocumentByID", mock.Anything, "doc-1").
		Run(func(mock.Arguments) { processed <- struct{}{} }).
		Return(nil, apperrors.ErrNotFound).Twice()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx, 1)

	require.NoError(t, worker.Enqueue("doc-1"))
	select {
	case <-processed:
	case <-time.After(2 * time.Second):
		t.Fatal("first task never ran")
	}

	// Re-submission after completion must be accepted again.
	require.Eventually(t, func() bool {
		return worker.Enqueue("doc-1") == nil
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case <-processed:
	case <-time.After(2 * time.Second):
		t.Fatal("second task never ran")
	}

	cancel()
	worker.Wait()
}
