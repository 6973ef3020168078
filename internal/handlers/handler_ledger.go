package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muhasebe-app/muhasebe_backend/internal/apperrors"
	"github.com/muhasebe-app/muhasebe_backend/internal/core/ports"
	"github.com/muhasebe-app/muhasebe_backend/internal/dto"
	"github.com/muhasebe-app/muhasebe_backend/internal/middleware"
	"github.com/muhasebe-app/muhasebe_backend/internal/models"
)

// ledgerHandler handles HTTP requests related to ledger entries and
// categories.
type ledgerHandler struct {
	ledgerService ports.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ls ports.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers routes related to the ledger.
func registerLedgerRoutes(rg *gin.RouterGroup, ls ports.LedgerSvcFacade) {
	h := newLedgerHandler(ls)

	entries := rg.Group("/ledger/entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:id", h.getEntry)
	}

	rg.GET("/documents/:id/entry", h.getEntryForDocument)

	categories := rg.Group("/categories")
	{
		categories.POST("", h.createCategory)
		categories.GET("", h.listCategories)
		categories.PUT("/:id", h.updateCategory)
	}
}

// createEntry godoc
// @Summary Create a manual ledger entry
// @Description Records a financial fact not backed by a scanned document
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateLedgerEntryRequest true "Entry details"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /ledger/entries [post]
func (h *ledgerHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateLedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	entry, err := h.ledgerService.CreateManualEntry(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Failed to create ledger entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToLedgerEntryResponse(*entry))
}

// getEntry godoc
// @Summary Get a ledger entry
// @Tags ledger
// @Produce  json
// @Param   id path string true "Entry ID"
// @Success 200 {object} dto.LedgerEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /ledger/entries/{id} [get]
func (h *ledgerHandler) getEntry(c *gin.Context) {
	entry, err := h.ledgerService.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to get ledger entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerEntryResponse(*entry))
}

// getEntryForDocument godoc
// @Summary Get the ledger entry posted for a document
// @Tags ledger
// @Produce  json
// @Param   id path string true "Document ID"
// @Success 200 {object} dto.LedgerEntryResponse
// @Failure 404 {object} map[string]string "No entry for this document"
// @Router /documents/{id}/entry [get]
func (h *ledgerHandler) getEntryForDocument(c *gin.Context) {
	entry, err := h.ledgerService.GetEntryForDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to get ledger entry for document")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerEntryResponse(*entry))
}

// listEntries godoc
// @Summary List ledger entries
// @Description Lists entries newest first, narrowed by optional filters
// @Tags ledger
// @Produce  json
// @Param   direction query string false "Filter by direction (income, expense)"
// @Param   vendorID query string false "Filter by vendor"
// @Param   categoryID query string false "Filter by category"
// @Param   limit query int false "Page size (default 50)"
// @Param   offset query int false "Page offset"
// @Success 200 {array} dto.LedgerEntryResponse
// @Router /ledger/entries [get]
func (h *ledgerHandler) listEntries(c *gin.Context) {
	limit, offset := paginationParams(c)
	filter := ports.LedgerFilter{Limit: limit, Offset: offset}

	if raw := c.Query("direction"); raw != "" {
		direction := models.EntryDirection(raw)
		if direction != models.EntryDirectionIncome && direction != models.EntryDirectionExpense {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid direction filter"})
			return
		}
		filter.Direction = &direction
	}
	if vendorID := c.Query("vendorID"); vendorID != "" {
		filter.VendorID = &vendorID
	}
	if categoryID := c.Query("categoryID"); categoryID != "" {
		filter.CategoryID = &categoryID
	}

	entries, err := h.ledgerService.ListEntries(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, "Failed to list ledger entries")
		return
	}
	responses := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.ToLedgerEntryResponse(entry))
	}
	c.JSON(http.StatusOK, responses)
}

// createCategory godoc
// @Summary Create a category
// @Tags categories
// @Accept  json
// @Produce  json
// @Param   category body dto.CreateCategoryRequest true "Category details"
// @Success 201 {object} dto.CategoryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /categories [post]
func (h *ledgerHandler) createCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCategory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	category, err := h.ledgerService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Failed to create category")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCategoryResponse(*category))
}

// listCategories godoc
// @Summary List categories
// @Tags categories
// @Produce  json
// @Success 200 {array} dto.CategoryResponse
// @Router /categories [get]
func (h *ledgerHandler) listCategories(c *gin.Context) {
	categories, err := h.ledgerService.ListCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to list categories")
		return
	}
	responses := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		responses = append(responses, dto.ToCategoryResponse(category))
	}
	c.JSON(http.StatusOK, responses)
}

// updateCategory godoc
// @Summary Update a category
// @Tags categories
// @Accept  json
// @Produce  json
// @Param   id path string true "Category ID"
// @Param   category body dto.CreateCategoryRequest true "Replacement values"
// @Success 200 {object} dto.CategoryResponse
// @Failure 404 {object} map[string]string "Category not found"
// @Router /categories/{id} [put]
func (h *ledgerHandler) updateCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateCategory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	category, err := h.ledgerService.UpdateCategory(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err, "Failed to update category")
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryResponse(*category))
}

func (h *ledgerHandler) respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
