package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL          string
	AssetAPIURL          string
	BalanceAPIURL        string
	MarketAPIURL         string
	EarnAPIURL           string
	Network              string
	Accounts             []string
	MarketTTL            time.Duration
	MarketRefreshEvery   time.Duration
	MarketRatePerSecond  float64
	MarketRetryMax       int
	MarketRetryBaseDelay time.Duration
	BalanceRetryMax      int
	BalanceRetryDelay    time.Duration
	SnapshotEvery        time.Duration
	HTTPPort             string
	AdminAPIKey          string
	SpreadsheetID        string
	GoogleCredentials    string
	XLSXPath             string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		DatabaseURL:          envOrDefaultWarn("DATABASE_URL", ""),
		AssetAPIURL:          envOrDefault("ASSET_API_URL", "https://assets.earnview.io"),
		BalanceAPIURL:        envOrDefault("BALANCE_API_URL", "https://balances.earnview.io"),
		MarketAPIURL:         envOrDefault("MARKET_API_URL", "https://api.coingecko.com/api/v3"),
		EarnAPIURL:           envOrDefault("EARN_API_URL", "https://earn.earnview.io"),
		Network:              envOrDefault("NETWORK", "mainnet"),
		Accounts:             envOrDefaultList("ACCOUNTS"),
		MarketTTL:            envOrDefaultDuration("MARKET_TTL", 15*time.Minute),
		MarketRefreshEvery:   envOrDefaultDuration("MARKET_REFRESH_INTERVAL", 5*time.Minute),
		MarketRatePerSecond:  envOrDefaultFloat("MARKET_RATE_PER_SECOND", 0.5),
		MarketRetryMax:       envOrDefaultInt("MARKET_RETRY_MAX", 5),
		MarketRetryBaseDelay: envOrDefaultDuration("MARKET_RETRY_BASE_DELAY", 6*time.Second),
		BalanceRetryMax:      envOrDefaultInt("BALANCE_RETRY_MAX", 3),
		BalanceRetryDelay:    envOrDefaultDuration("BALANCE_RETRY_BASE_DELAY", 2*time.Second),
		SnapshotEvery:        envOrDefaultDuration("SNAPSHOT_INTERVAL", 24*time.Hour),
		HTTPPort:             envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:          envOrDefault("ADMIN_API_KEY", ""),
		SpreadsheetID:        envOrDefault("SHEETS_SPREADSHEET_ID", ""),
		GoogleCredentials:    envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
		XLSXPath:             envOrDefault("XLSX_PATH", "portfolio_report.xlsx"),
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

func envOrDefaultList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
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
