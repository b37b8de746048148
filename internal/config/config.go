package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL string
	HTTPPort    string
	AdminAPIKey string

	// Calculator selects the best-path strategy: "floyd-warshall" or "noop".
	Calculator        string
	RecomputeInterval time.Duration
	// PriceChangeTolerance is in parts per million of the stored total cost.
	PriceChangeTolerance uint64

	CryptoCompareURL            string
	CryptoCompareAPIKey         string
	CryptoCompareRPS            float64
	CryptoCompareRetryMax       int
	CryptoCompareRetryBaseDelay time.Duration

	XLSXExportPath        string
	GoogleSpreadsheetID   string
	GoogleCredentialsJSON string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		DatabaseURL: envOrDefaultWarn("DATABASE_URL", ""),
		HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey: envOrDefault("ADMIN_API_KEY", ""),

		Calculator:           envOrDefault("CALCULATOR", "floyd-warshall"),
		RecomputeInterval:    envOrDefaultDuration("RECOMPUTE_INTERVAL", time.Minute),
		PriceChangeTolerance: envOrDefaultUint("PRICE_CHANGE_TOLERANCE", 1000),

		CryptoCompareURL:            envOrDefault("CRYPTOCOMPARE_URL", "https://min-api.cryptocompare.com"),
		CryptoCompareAPIKey:         envOrDefault("CRYPTOCOMPARE_API_KEY", ""),
		CryptoCompareRPS:            envOrDefaultFloat("CRYPTOCOMPARE_RPS", 5),
		CryptoCompareRetryMax:       envOrDefaultInt("CRYPTOCOMPARE_RETRY_MAX", 3),
		CryptoCompareRetryBaseDelay: envOrDefaultDuration("CRYPTOCOMPARE_RETRY_BASE_DELAY", time.Second),

		XLSXExportPath:        envOrDefault("XLSX_EXPORT_PATH", ""),
		GoogleSpreadsheetID:   envOrDefault("GOOGLE_SPREADSHEET_ID", ""),
		GoogleCredentialsJSON: envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultUint(key string, defaultVal uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			slog.Warn("invalid unsigned integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			slog.Warn("invalid float env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return f
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
