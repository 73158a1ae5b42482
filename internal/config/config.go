package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/goes-imagery/internal/imagery"
	"github.com/i474232898/goes-imagery/internal/imagery/providers"
)

var validate = validator.New()

type AppConfig struct {
	// Worldview Snapshots endpoint and per-request timeout.
	WVSBaseURL  string        `validate:"required,url"`
	HTTPTimeout time.Duration `validate:"gt=0"`

	// OutputFile is the PNG written by the snapshot command and the scheduler.
	OutputFile string `validate:"required"`

	// ScheduleProduct is refreshed every FetchInterval. A zero interval
	// disables the scheduler.
	ScheduleProduct imagery.Product
	FetchInterval   time.Duration `validate:"gte=0"`

	FigureDPI float64 `validate:"gt=0,lte=600"`

	// Run history retention.
	RunHistory int           `validate:"gte=0"` // max number of runs per product (0 = unlimited)
	RunMaxAge  time.Duration `validate:"gte=0"` // max age of runs (0 = unlimited)

	Port string `validate:"required,numeric"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json console"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	cfg := &AppConfig{}

	cfg.WVSBaseURL = getenvDefault("WVS_BASE_URL", providers.DefaultWVSBaseURL)

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.OutputFile = getenvDefault("OUTPUT_FILE", "goes_snapshot.png")

	product, err := imagery.ParseProduct(getenvDefault("SCHEDULE_PRODUCT", "infrared"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_PRODUCT: %w", err)
	}
	cfg.ScheduleProduct = product

	// Scheduler interval: default 10 minutes, the imagery cadence.
	interval, err := time.ParseDuration(getenvDefault("FETCH_INTERVAL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	dpi, err := strconv.ParseFloat(getenvDefault("FIGURE_DPI", "100"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid FIGURE_DPI: %w", err)
	}
	cfg.FigureDPI = dpi

	cfg.RunHistory = getenvInt("RUN_HISTORY", 144) // 24h at 10-minute intervals

	maxAge, err := time.ParseDuration(getenvDefault("RUN_MAX_AGE", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_MAX_AGE: %w", err)
	}
	cfg.RunMaxAge = maxAge

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "console")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// SnapshotConfig is the subset read by the one-shot snapshot command.
type SnapshotConfig struct {
	OutputFile  string        `validate:"required"`
	HTTPTimeout time.Duration `validate:"gt=0"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json console"`
}

// LoadSnapshot reads only the variables the snapshot command uses, so
// server-only settings cannot abort a snapshot run.
func LoadSnapshot() (*SnapshotConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	cfg := &SnapshotConfig{
		OutputFile: getenvDefault("OUTPUT_FILE", "goes_snapshot.png"),
		LogLevel:   getenvDefault("LOG_LEVEL", "info"),
		LogFormat:  getenvDefault("LOG_FORMAT", "console"),
	}

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
