package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/muhasebe-app/muhasebe_backend/internal/adapters/database/pgsql"
	"github.com/muhasebe-app/muhasebe_backend/internal/adapters/ocr"
	"github.com/muhasebe-app/muhasebe_backend/internal/adapters/storage"
	"github.com/muhasebe-app/muhasebe_backend/internal/core/services"
	"github.com/muhasebe-app/muhasebe_backend/internal/handlers"
	"github.com/muhasebe-app/muhasebe_backend/internal/middleware"
	"github.com/muhasebe-app/muhasebe_backend/internal/platform/config"
	"github.com/muhasebe-app/muhasebe_backend/pkg/database"
)

// @title Muhasebe Backend API
// @version 1.0
// @description Receipt and invoice ingestion backend: OCR extraction, vendor resolution and an immutable ledger.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	artifactStore, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize artifact store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Repositories
	documentRepo := pgsql.NewPgxDocumentRepository(dbPool)
	vendorRepo := pgsql.NewPgxVendorRepository(dbPool)
	ledgerRepo := pgsql.NewPgxLedgerRepository(dbPool)
	categoryRepo := pgsql.NewPgxCategoryRepository(dbPool)

	// Extraction pipeline
	recognizer := ocr.NewAzureRecognizer(cfg.AzureCVEndpoint, cfg.AzureCVKey)
	extractor := services.NewExtractionService(cfg.DefaultCurrency, cfg.DocDateEpoch)
	resolver := services.NewVendorResolver(vendorRepo, cfg.VendorMatchThreshold)
	worker := services.NewExtractionWorker(logger, documentRepo, artifactStore, recognizer, extractor, resolver, cfg.OCRTimeout, cfg.OCRMaxRetries, cfg.ExtractionQueueSize)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	worker.Start(workerCtx, cfg.ExtractionWorkers)
	logger.Info("Extraction workers started", slog.Int("workers", cfg.ExtractionWorkers))

	// Services
	ingestionService := services.NewIngestionService(logger, documentRepo, artifactStore, worker, cfg.MaxUploadSize, cfg.DefaultCurrency)
	documentService := services.NewDocumentService(documentRepo)
	vendorService := services.NewVendorService(vendorRepo)
	ledgerService := services.NewLedgerService(ledgerRepo, categoryRepo)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	uploadLimiter := middleware.RateLimit(limiter.New(
		memorystore.NewStore(),
		limiter.Rate{Period: time.Minute, Limit: cfg.UploadRPM},
	))

	handlers.RegisterRoutes(r, cfg, handlers.Services{
		Ingestion: ingestionService,
		Document:  documentService,
		Vendor:    vendorService,
		Ledger:    ledgerService,
	}, uploadLimiter)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending SQL migrations through a temporary
// database/sql connection using the pgx stdlib driver.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
