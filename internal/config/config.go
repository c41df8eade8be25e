// Package config provides application configuration management.
// It loads settings from environment variables (optionally seeded from a .env
// file) and applies defaults for the server, the library backend and
// observability.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultLibraryAPIURL is used when LIBRARY_API_URL is unset.
const DefaultLibraryAPIURL = "https://api.library.example.com"

// DefaultAuthTargetPage is the CX page resource the webhook redirects to when
// an account action needs a signed-in patron.
const DefaultAuthTargetPage = "Authentication"

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	ServerName      string
	Environment     string

	// Library backend
	Library LibraryConfig

	// Dialogue Configuration
	WebhookTimeout time.Duration
	AuthTargetPage string // targetPage value sent with login redirects
	DebugErrors    bool   // expose diagnostic text in error envelopes

	// Metrics Authentication
	MetricsUsername string // Username for /metrics Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics Basic Auth (empty = no auth)

	// Sentry (Better Stack Errors)
	SentryToken      string
	SentryHost       string
	SentrySampleRate float64
	SentryRelease    string

	// Better Stack Logs
	BetterStackToken    string
	BetterStackEndpoint string
}

// LibraryConfig configures the library REST client.
type LibraryConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	RateRPS    float64 // outbound requests per second, 0 = unlimited
	Offline    bool    // USE_MOCK_DATA; also forced when APIKey is empty
}

// UseOffline reports whether the client should skip the network entirely.
// A missing API key degrades to offline data instead of failing startup.
func (l LibraryConfig) UseOffline() bool {
	return l.Offline || l.APIKey == ""
}

// Load reads configuration from environment variables.
// It attempts to load .env file first, then reads from env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv(EnvPort, "8080"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),
		ServerName:      getEnv(EnvServerName, "library-assistant"),
		Environment:     getEnv(EnvEnvironment, "production"),

		Library: LibraryConfig{
			BaseURL:    strings.TrimRight(getEnv(EnvLibraryAPIURL, DefaultLibraryAPIURL), "/"),
			APIKey:     getEnv(EnvLibraryAPIKey, ""),
			Timeout:    getDurationEnv(EnvLibraryAPITimeout, LibraryRequest),
			MaxRetries: getIntEnv(EnvLibraryAPIMaxRetries, 1),
			RateRPS:    getFloatEnv(EnvLibraryAPIRateRPS, 20.0),
			Offline:    getBoolEnv(EnvUseMockData, false),
		},

		WebhookTimeout: getDurationEnv(EnvWebhookTimeout, WebhookProcessing),
		AuthTargetPage: getEnv(EnvAuthTargetPage, DefaultAuthTargetPage),
		DebugErrors:    getBoolEnv(EnvDebugErrors, false),

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		SentryToken:      getEnv(EnvSentryToken, ""),
		SentryHost:       getEnv(EnvSentryHost, ""),
		SentrySampleRate: getFloatEnv(EnvSentrySampleRate, 1.0),
		SentryRelease:    getEnv(EnvSentryRelease, ""),

		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPort))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvShutdownTimeout, c.ShutdownTimeout))
	}
	if c.WebhookTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvWebhookTimeout, c.WebhookTimeout))
	}
	if c.AuthTargetPage == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvAuthTargetPage))
	}
	if err := c.Library.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("library config: %w", err))
	}
	if c.SentryToken != "" && c.SentryHost == "" {
		errs = append(errs, fmt.Errorf("%s is required when %s is set", EnvSentryHost, EnvSentryToken))
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", EnvSentrySampleRate, c.SentrySampleRate))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the library backend settings.
// An empty API key is not an error; the client runs offline instead.
func (l LibraryConfig) Validate() error {
	var errs []error

	if l.BaseURL == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvLibraryAPIURL))
	} else if u, err := url.Parse(l.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", EnvLibraryAPIURL, l.BaseURL))
	}
	if l.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvLibraryAPITimeout, l.Timeout))
	}
	if l.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvLibraryAPIMaxRetries, l.MaxRetries))
	}
	if l.RateRPS < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %v", EnvLibraryAPIRateRPS, l.RateRPS))
	}

	return errors.Join(errs...)
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv accepts anything strconv.ParseBool does
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
