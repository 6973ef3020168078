package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// File storage
	UploadDir     string
	MaxUploadSize int64

	// OCR adapter
	AzureCVEndpoint string
	AzureCVKey      string
	OCRTimeout      time.Duration
	OCRMaxRetries   int

	// Extraction pipeline
	ExtractionWorkers    int
	ExtractionQueueSize  int
	DefaultCurrency      string
	DocDateEpoch         time.Time
	VendorMatchThreshold float64

	// HTTP surface
	AllowedOrigins []string
	UploadRPM      int64
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("MAX_UPLOAD_SIZE", int64(10*1024*1024))
	viper.SetDefault("AZURE_CV_ENDPOINT", "")
	viper.SetDefault("AZURE_CV_KEY", "")
	viper.SetDefault("OCR_TIMEOUT", "120s")
	viper.SetDefault("OCR_MAX_RETRIES", 2)
	viper.SetDefault("EXTRACTION_WORKERS", 2)
	viper.SetDefault("EXTRACTION_QUEUE_SIZE", 64)
	viper.SetDefault("DEFAULT_CURRENCY", "TRY")
	viper.SetDefault("DOC_DATE_EPOCH", "2000-01-01")
	viper.SetDefault("VENDOR_MATCH_THRESHOLD", 0.85)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("UPLOAD_RPM", int64(30))

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.UploadDir = viper.GetString("UPLOAD_DIR")
	cfg.MaxUploadSize = viper.GetInt64("MAX_UPLOAD_SIZE")

	cfg.AzureCVEndpoint = viper.GetString("AZURE_CV_ENDPOINT")
	cfg.AzureCVKey = viper.GetString("AZURE_CV_KEY")
	if cfg.AzureCVEndpoint == "" || cfg.AzureCVKey == "" {
		log.Println("Warning: AZURE_CV_ENDPOINT/AZURE_CV_KEY not set. OCR will fail and drafts will route to manual review.")
	}

	ocrTimeoutStr := viper.GetString("OCR_TIMEOUT")
	ocrTimeout, err := time.ParseDuration(ocrTimeoutStr)
	if err != nil {
		ocrTimeout = 120 * time.Second
		if ocrTimeoutStr != "" {
			log.Printf("Warning: Invalid value for OCR_TIMEOUT ('%s'). Defaulting to %s.\n", ocrTimeoutStr, ocrTimeout.String())
		}
	}
	cfg.OCRTimeout = ocrTimeout
	cfg.OCRMaxRetries = viper.GetInt("OCR_MAX_RETRIES")

	cfg.ExtractionWorkers = viper.GetInt("EXTRACTION_WORKERS")
	if cfg.ExtractionWorkers < 1 {
		cfg.ExtractionWorkers = 1
	}
	cfg.ExtractionQueueSize = viper.GetInt("EXTRACTION_QUEUE_SIZE")
	if cfg.ExtractionQueueSize < 1 {
		cfg.ExtractionQueueSize = 64
	}

	cfg.DefaultCurrency = strings.ToUpper(viper.GetString("DEFAULT_CURRENCY"))

	epochStr := viper.GetString("DOC_DATE_EPOCH")
	epoch, err := time.Parse("2006-01-02", epochStr)
	if err != nil {
		epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		log.Printf("Warning: Invalid value for DOC_DATE_EPOCH ('%s'). Defaulting to %s.\n", epochStr, epoch.Format("2006-01-02"))
	}
	cfg.DocDateEpoch = epoch

	cfg.VendorMatchThreshold = viper.GetFloat64("VENDOR_MATCH_THRESHOLD")
	if cfg.VendorMatchThreshold <= 0 || cfg.VendorMatchThreshold > 1 {
		log.Printf("Warning: VENDOR_MATCH_THRESHOLD out of (0,1]. Defaulting to 0.85.\n")
		cfg.VendorMatchThreshold = 0.85
	}

	for _, origin := range strings.Split(viper.GetString("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	cfg.UploadRPM = viper.GetInt64("UPLOAD_RPM")

	return cfg, nil
}
