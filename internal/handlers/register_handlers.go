package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/muhasebe-app/muhasebe_backend/internal/core/ports"
	"github.com/muhasebe-app/muhasebe_backend/internal/platform/config"
)

// Services bundles the facades the HTTP layer depends on.
type Services struct {
	Ingestion ports.IngestionSvcFacade
	Document  ports.DocumentSvcFacade
	Vendor    ports.VendorSvcFacade
	Ledger    ports.LedgerSvcFacade
}

// RegisterRoutes sets up all application routes, injecting dependencies
// through the facade interfaces. uploadLimiter, when non-nil, is applied to
// the upload endpoint only.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services Services, uploadLimiter gin.HandlerFunc) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/", getHome)

	v1 := r.Group("/api/v1")

	registerDocumentRoutes(v1, services.Ingestion, services.Document, cfg.MaxUploadSize, uploadLimiter)
	registerVendorRoutes(v1, services.Vendor)
	registerLedgerRoutes(v1, services.Ledger)
}
