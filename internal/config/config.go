// Package config provides application configuration management.
// It loads settings from an optional .env file and environment variables,
// applies defaults, and validates them for the selected chat platform.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported chat platforms.
const (
	PlatformTelegram = "telegram"
	PlatformLINE     = "line"
)

// Defaults shared with tests and the healthcheck binary.
const (
	DefaultPort             = "10000"
	DefaultCatalogPath      = "books.xlsx"
	DefaultResultLimit      = 3
	DefaultScoreThreshold   = 50
	DefaultHowToDownloadURL = "https://t.me/StudyRatna_2/42"
	DefaultCommunityURL     = "https://t.me/PrepLibrary_Discussion"

	// MaxResultLimit caps SEARCH_RESULT_LIMIT. LINE accepts at most 5 messages
	// per reply, and a longer list stops being a "top matches" answer.
	MaxResultLimit = 5
)

// Config holds all application configuration
type Config struct {
	// Transport
	Platform            string
	TelegramToken       string
	TelegramPollTimeout time.Duration
	LineChannelToken    string
	LineChannelSecret   string

	// Server
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Catalog and search
	CatalogPath          string
	SearchResultLimit    int
	SearchScoreThreshold int // keep results scoring strictly above this

	// Static reply links
	HowToDownloadURL string
	CommunityURL     string

	// Metrics Basic Auth (empty password = no auth)
	MetricsUsername string
	MetricsPassword string

	// Sentry via Better Stack Errors (empty token = disabled)
	SentryToken       string
	SentryHost        string
	SentryEnvironment string

	// Better Stack Logs (empty token = disabled)
	BetterStackToken    string
	BetterStackEndpoint string

	// R2 catalog source (all fields required to enable)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2CatalogKey      string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Platform:            strings.ToLower(getEnv(EnvPlatform, PlatformTelegram)),
		TelegramToken:       getEnv(EnvTelegramToken, getEnv(EnvLegacyToken, "")),
		TelegramPollTimeout: getDurationEnv(EnvTelegramPollTimeout, DefaultTelegramPollTimeout),
		LineChannelToken:    getEnv(EnvLineChannelToken, ""),
		LineChannelSecret:   getEnv(EnvLineChannelSecret, ""),

		Port:            getEnv(EnvPort, DefaultPort),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, 30*time.Second),

		CatalogPath:          getEnv(EnvCatalogPath, DefaultCatalogPath),
		SearchResultLimit:    getIntEnv(EnvSearchResultLimit, DefaultResultLimit),
		SearchScoreThreshold: getIntEnv(EnvSearchScoreThreshold, DefaultScoreThreshold),

		HowToDownloadURL: getEnv(EnvHowToDownloadURL, DefaultHowToDownloadURL),
		CommunityURL:     getEnv(EnvCommunityURL, DefaultCommunityURL),

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		SentryToken:       getEnv(EnvSentryToken, ""),
		SentryHost:        getEnv(EnvSentryHost, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),

		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		R2AccountID:       getEnv(EnvR2AccountID, ""),
		R2AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
		R2SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
		R2BucketName:      getEnv(EnvR2BucketName, ""),
		R2CatalogKey:      getEnv(EnvR2CatalogKey, ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable for the selected platform.
func (c *Config) Validate() error {
	var errs []error

	switch c.Platform {
	case PlatformTelegram:
		if c.TelegramToken == "" {
			errs = append(errs, fmt.Errorf("%s (or %s) is required for platform %q", EnvTelegramToken, EnvLegacyToken, c.Platform))
		}
		if c.TelegramPollTimeout < time.Second {
			errs = append(errs, fmt.Errorf("%s must be at least 1s, got %v", EnvTelegramPollTimeout, c.TelegramPollTimeout))
		}
	case PlatformLINE:
		if c.LineChannelToken == "" {
			errs = append(errs, fmt.Errorf("%s is required for platform %q", EnvLineChannelToken, c.Platform))
		}
		if c.LineChannelSecret == "" {
			errs = append(errs, fmt.Errorf("%s is required for platform %q", EnvLineChannelSecret, c.Platform))
		}
	default:
		errs = append(errs, fmt.Errorf("%s must be %q or %q, got %q", EnvPlatform, PlatformTelegram, PlatformLINE, c.Platform))
	}

	if c.Port == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPort))
	}
	if c.CatalogPath == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvCatalogPath))
	}
	if c.SearchResultLimit < 1 || c.SearchResultLimit > MaxResultLimit {
		errs = append(errs, fmt.Errorf("%s must be between 1 and %d, got %d", EnvSearchResultLimit, MaxResultLimit, c.SearchResultLimit))
	}
	if c.SearchScoreThreshold < 0 || c.SearchScoreThreshold > 99 {
		errs = append(errs, fmt.Errorf("%s must be between 0 and 99, got %d", EnvSearchScoreThreshold, c.SearchScoreThreshold))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvShutdownTimeout, c.ShutdownTimeout))
	}
	if c.SentryToken != "" && c.SentryHost == "" {
		errs = append(errs, fmt.Errorf("%s is required when %s is set", EnvSentryHost, EnvSentryToken))
	}

	return errors.Join(errs...)
}

// R2Enabled reports whether every R2 setting needed to fetch the catalog is present.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2CatalogKey != ""
}

// R2Endpoint returns the S3-compatible endpoint for the configured account.
func (c *Config) R2Endpoint() string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2AccountID)
}

// MetricsAuthEnabled reports whether /metrics requires Basic Auth.
func (c *Config) MetricsAuthEnabled() bool {
	return c.MetricsPassword != ""
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return duration
		}
	}
	return defaultValue
}
