package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	EtherscanURL        string
	EtherscanAPIKey     string
	DexScreenerURL      string
	EtherscanRetryMax   int
	EtherscanRetryDelay time.Duration
	FetchConcurrency    int
	HTTPTimeout         time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		EtherscanURL:        envOrDefault("ETHERSCAN_URL", "https://api.etherscan.io/api"),
		EtherscanAPIKey:     envOrDefaultWarn("ETHERSCAN_API_KEY", ""),
		DexScreenerURL:      envOrDefault("DEXSCREENER_URL", "https://api.dexscreener.com"),
		EtherscanRetryMax:   envOrDefaultInt("ETHERSCAN_RETRY_MAX", 5),
		EtherscanRetryDelay: envOrDefaultDuration("ETHERSCAN_RETRY_BASE_DELAY", 2*time.Second),
		FetchConcurrency:    envOrDefaultInt("FETCH_CONCURRENCY", 4),
		HTTPTimeout:         envOrDefaultDuration("HTTP_TIMEOUT", 30*time.Second),
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
