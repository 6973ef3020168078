package services_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muhasebe-app/muhasebe_backend/internal/apperrors"
	"github.com/muhasebe-app/muhasebe_backend/internal/core/services"
	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

const testMaxUpload = int64(1024)

func newIngestionFixture() (*services.IngestionService, *MockDocumentRepository, *MockArtifactStore, *MockExtractionQueue) {
	repo := new(MockDocumentRepository)
	store := new(MockArtifactStore)
	queue := new(MockExtractionQueue)
	svc := services.NewIngestionService(slog.Default(), repo, store, queue, testMaxUpload, "TRY")
	return svc, repo, store, queue
}

func TestIngestDocument_HappyPath(t *testing.T) {
	svc, repo, store, queue := newIngestionFixture()

	content := []byte("fake-jpeg-bytes")
	store.On("Save", content, "image/jpeg").Return("abc123.jpg", "abc123", nil).Once()
	repo.On("SaveDocument", mock.Anything, mock.MatchedBy(func(d models.Document) bool {
		return d.Status == models.DocumentStatusDraft &&
			d.DocType == models.DocumentTypeReceipt &&
			d.Currency == "TRY" &&
			d.ImageRef != nil && *d.ImageRef == "abc123.jpg" &&
			d.ImageSHA256 != nil && *d.ImageSHA256 == "abc123" &&
			d.ConfidenceScore == nil
	})).Return(nil).Once()
	queue.On("Enqueue", mock.AnythingOfType("string")).Return(nil).Once()

	doc, err := svc.IngestDocument(context.Background(), content, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusDraft, doc.Status)
	assert.NotEmpty(t, doc.DocumentID)

	repo.AssertExpectations(t)
	store.AssertExpectations(t)
	queue.AssertExpectations(t)
}

func TestIngestDocument_MediaTypeParametersAreStripped(t *testing.T) {
	svc, repo, store, queue := newIngestionFixture()

	content := []byte("pdf-bytes")
	store.On("Save", content, "application/pdf").Return("ref.pdf", "digest", nil).Once()
	repo.On("SaveDocument", mock.Anything, mock.MatchedBy(func(d models.Document) bool {
		return d.DocType == models.DocumentTypeInvoice
	})).Return(nil).Once()
	queue.On("Enqueue", mock.AnythingOfType("string")).Return(nil).Once()

	_, err := svc.IngestDocument(context.Background(), content, "Application/PDF; charset=binary")
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestIngestDocument_UnsupportedMediaType(t *testing.T) {
	svc, repo, store, queue := newIngestionFixture()

	_, err := svc.IngestDocument(context.Background(), []byte("gif-bytes"), "image/gif")
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedMediaType)

	// Nothing may be persisted for a rejected upload.
	repo.AssertNotCalled(t, "SaveDocument", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	queue.AssertNotCalled(t, "Enqueue", mock.Anything)
}

func TestIngestDocument_PayloadTooLarge(t *testing.T) {
	svc, repo, store, _ := newIngestionFixture()

	oversized := make([]byte, testMaxUpload+1)
	_, err := svc.IngestDocument(context.Background(), oversized, "image/png")
	assert.ErrorIs(t, err, apperrors.ErrPayloadTooLarge)

	repo.AssertNotCalled(t, "SaveDocument", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIngestDocument_EmptyUpload(t *testing.T) {
	svc, _, store, _ := newIngestionFixture()

	_, err := svc.IngestDocument(context.Background(), nil, "image/png")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIngestDocument_EnqueueFailureKeepsDraft(t *testing.T) {
	svc, repo, store, queue := newIngestionFixture()

	content := []byte("webp-bytes")
	store.On("Save", content, "image/webp").Return("ref.webp", "digest", nil).Once()
	repo.On("SaveDocument", mock.Anything, mock.Anything).Return(nil).Once()
	queue.On("Enqueue", mock.AnythingOfType("string")).Return(assert.AnError).Once()

	// The upload is never lost to a queue failure; the draft simply stays
	// unscored.
	doc, err := svc.IngestDocument(context.Background(), content, "image/webp")
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusDraft, doc.Status)
	repo.AssertExpectations(t)
}

func TestRequeueExtraction_EnqueuesDraft(t *testing.T) {
	svc, repo, _, queue := newIngestionFixture()

	repo.On("FindDocumentByID", mock.Anything, "doc-1").
		Return(&models.Document{DocumentID: "doc-1", Status: models.DocumentStatusDraft}, nil).Once()
	queue.On("Enqueue", "doc-1").Return(nil).Once()

	require.NoError(t, svc.RequeueExtraction(context.Background(), "doc-1"))
	queue.AssertExpectations(t)
}

func TestRequeueExtraction_RefusesPostedDocument(t *testing.T) {
	svc, repo, _, queue := newIngestionFixture()

	repo.On("FindDocumentByID", mock.Anything, "doc-1").
		Return(&models.Document{DocumentID: "doc-1", Status: models.DocumentStatusPosted}, nil).Once()

	err := svc.RequeueExtraction(context.Background(), "doc-1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
	queue.AssertNotCalled(t, "Enqueue", mock.Anything)
}

func TestRequeueExtraction_InFlightPropagates(t *testing.T) {
	svc, repo, _, queue := newIngestionFixture()

	repo.On("FindDocumentByID", mock.Anything, "doc-1").
		Return(&models.Document{DocumentID: "doc-1", Status: models.DocumentStatusDraft}, nil).Once()
	queue.On("Enqueue", "doc-1").Return(apperrors.ErrExtractionInFlight).Once()

	err := svc.RequeueExtraction(context.Background(), "doc-1")
	assert.ErrorIs(t, err, apperrors.ErrExtractionInFlight)
}
