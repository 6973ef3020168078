package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/muhasebe-app/muhasebe_backend/internal/apperrors"
	"github.com/muhasebe-app/muhasebe_backend/internal/core/ports"
	"github.com/muhasebe-app/muhasebe_backend/internal/dto"
	"github.com/muhasebe-app/muhasebe_backend/internal/middleware"
	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

// documentHandler handles HTTP requests related to documents.
type documentHandler struct {
	ingestionService ports.IngestionSvcFacade
	documentService  ports.DocumentSvcFacade
	maxUploadSize    int64
}

// newDocumentHandler creates a new documentHandler.
func newDocumentHandler(is ports.IngestionSvcFacade, ds ports.DocumentSvcFacade, maxUploadSize int64) *documentHandler {
	return &documentHandler{
		ingestionService: is,
		documentService:  ds,
		maxUploadSize:    maxUploadSize,
	}
}

// registerDocumentRoutes registers routes related to documents.
func registerDocumentRoutes(rg *gin.RouterGroup, is ports.IngestionSvcFacade, ds ports.DocumentSvcFacade, maxUploadSize int64, uploadLimiter gin.HandlerFunc) {
	h := newDocumentHandler(is, ds, maxUploadSize)

	documents := rg.Group("/documents")
	{
		if uploadLimiter != nil {
			documents.POST("", uploadLimiter, h.uploadDocument)
		} else {
			documents.POST("", h.uploadDocument)
		}
		documents.GET("", h.listDocuments)
		documents.GET("/drafts", h.listDrafts)
		documents.GET("/:id", h.getDocument)
		documents.PATCH("/:id", h.updateDocument)
		documents.POST("/:id/confirm", h.confirmDocument)
		documents.POST("/:id/cancel", h.cancelDocument)
		documents.POST("/:id/extract", h.retryExtraction)
	}
}

// uploadDocument godoc
// @Summary Upload a receipt or invoice
// @Description Accepts a scanned artifact, creates a draft document and schedules extraction
// @Tags documents
// @Accept  multipart/form-data
// @Produce  json
// @Param   file formData file true "Receipt or invoice image/PDF"
// @Success 201 {object} dto.UploadDocumentResponse
// @Failure 400 {object} map[string]string "Missing or unreadable file"
// @Failure 413 {object} map[string]string "File too large"
// @Failure 415 {object} map[string]string "Unsupported media type"
// @Router /documents [post]
func (h *documentHandler) uploadDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+4096)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Warn("Upload rejected, no file in form", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "A 'file' form field is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Failed to read uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	mediaType := fileHeader.Header.Get("Content-Type")
	doc, err := h.ingestionService.IngestDocument(c.Request.Context(), content, mediaType)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnsupportedMediaType):
			logger.Warn("Upload rejected, unsupported media type", slog.String("mediaType", mediaType))
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Unsupported media type. Accepted: JPEG, PNG, WebP, PDF"})
		case errors.Is(err, apperrors.ErrPayloadTooLarge):
			logger.Warn("Upload rejected, payload too large", slog.Int("bytes", len(content)))
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Uploaded file exceeds the size limit"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to ingest document", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest document"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.UploadDocumentResponse{DocumentID: doc.DocumentID, Status: doc.Status})
}

// getDocument godoc
// @Summary Get a document
// @Description Retrieves the full document projection including raw OCR text and confidence
// @Tags documents
// @Produce  json
// @Param   id path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 404 {object} map[string]string "Document not found"
// @Router /documents/{id} [get]
func (h *documentHandler) getDocument(c *gin.Context) {
	documentID := c.Param("id")
	doc, err := h.documentService.GetDocument(c.Request.Context(), documentID)
	if err != nil {
		h.respondError(c, err, "Failed to get document")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(*doc))
}

// listDocuments godoc
// @Summary List documents
// @Description Lists documents newest first, optionally filtered by status
// @Tags documents
// @Produce  json
// @Param   status query string false "Filter by status (draft, posted, cancelled)"
// @Param   limit query int false "Page size (default 50)"
// @Param   offset query int false "Page offset"
// @Success 200 {array} dto.DocumentResponse
// @Router /documents [get]
func (h *documentHandler) listDocuments(c *gin.Context) {
	var status *models.DocumentStatus
	if raw := c.Query("status"); raw != "" {
		parsed := models.DocumentStatus(raw)
		switch parsed {
		case models.DocumentStatusDraft, models.DocumentStatusPosted, models.DocumentStatusCancelled:
			status = &parsed
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
	}
	h.respondDocumentList(c, status)
}

// listDrafts godoc
// @Summary List draft documents
// @Description Lists the documents awaiting review, newest first
// @Tags documents
// @Produce  json
// @Param   limit query int false "Page size (default 50)"
// @Param   offset query int false "Page offset"
// @Success 200 {array} dto.DocumentResponse
// @Router /documents/drafts [get]
func (h *documentHandler) listDrafts(c *gin.Context) {
	draft := models.DocumentStatusDraft
	h.respondDocumentList(c, &draft)
}

func (h *documentHandler) respondDocumentList(c *gin.Context, status *models.DocumentStatus) {
	limit, offset := paginationParams(c)
	docs, err := h.documentService.ListDocuments(c.Request.Context(), status, limit, offset)
	if err != nil {
		h.respondError(c, err, "Failed to list documents")
		return
	}
	responses := make([]dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, dto.ToDocumentResponse(doc))
	}
	c.JSON(http.StatusOK, responses)
}

// updateDocument godoc
// @Summary Update a draft document
// @Description Applies a partial field update; only drafts are editable
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   id path string true "Document ID"
// @Param   document body dto.UpdateDocumentRequest true "Fields to update"
// @Success 200 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 409 {object} map[string]string "Document is no longer editable"
// @Router /documents/{id} [patch]
func (h *documentHandler) updateDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	documentID := c.Param("id")

	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	doc, err := h.documentService.UpdateDraft(c.Request.Context(), documentID, req)
	if err != nil {
		h.respondError(c, err, "Failed to update document")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(*doc))
}

// confirmDocument godoc
// @Summary Confirm a draft document
// @Description Posts the draft and creates its ledger entry atomically
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   id path string true "Document ID"
// @Param   confirmation body dto.ConfirmDocumentRequest true "Final field values"
// @Success 200 {object} dto.DocumentResponse
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 409 {object} map[string]string "Document is not a draft"
// @Failure 422 {object} map[string]string "Required fields missing"
// @Router /documents/{id}/confirm [post]
func (h *documentHandler) confirmDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	documentID := c.Param("id")

	var req dto.ConfirmDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ConfirmDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	doc, err := h.documentService.ConfirmDocument(c.Request.Context(), documentID, req)
	if err != nil {
		h.respondError(c, err, "Failed to confirm document")
		return
	}

	logger.Info("Document confirmed", slog.String("document_id", documentID))
	c.JSON(http.StatusOK, dto.ToDocumentResponse(*doc))
}

// cancelDocument godoc
// @Summary Cancel a draft document
// @Description Discards the draft; the artifact is kept, no ledger entry is created
// @Tags documents
// @Produce  json
// @Param   id path string true "Document ID"
// @Success 204 "Cancelled"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 409 {object} map[string]string "Document is not a draft"
// @Router /documents/{id}/cancel [post]
func (h *documentHandler) cancelDocument(c *gin.Context) {
	documentID := c.Param("id")
	if err := h.documentService.CancelDocument(c.Request.Context(), documentID); err != nil {
		h.respondError(c, err, "Failed to cancel document")
		return
	}
	c.Status(http.StatusNoContent)
}

// retryExtraction godoc
// @Summary Re-run extraction for a draft document
// @Description Enqueues the draft for extraction again, e.g. after a recognizer outage
// @Tags documents
// @Produce  json
// @Param   id path string true "Document ID"
// @Success 202 {object} map[string]string "Extraction scheduled"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 409 {object} map[string]string "Not a draft, or extraction already running"
// @Router /documents/{id}/extract [post]
func (h *documentHandler) retryExtraction(c *gin.Context) {
	documentID := c.Param("id")
	if err := h.ingestionService.RequeueExtraction(c.Request.Context(), documentID); err != nil {
		h.respondError(c, err, "Failed to schedule extraction")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"documentID": documentID, "status": "extraction scheduled"})
}

// respondError maps service errors onto HTTP statuses.
func (h *documentHandler) respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
	case errors.Is(err, apperrors.ErrIncompleteDocument):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidStateTransition), errors.Is(err, apperrors.ErrDocumentLocked),
		errors.Is(err, apperrors.ErrExtractionInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// paginationParams reads limit/offset query params with sane bounds.
func paginationParams(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
