// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "PORT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
	EnvServerName      = "SERVER_NAME"
	EnvEnvironment     = "APP_ENV"

	// Library backend
	EnvLibraryAPIURL        = "LIBRARY_API_URL"
	EnvLibraryAPIKey        = "LIBRARY_API_KEY"
	EnvLibraryAPITimeout    = "LIBRARY_API_TIMEOUT"
	EnvLibraryAPIMaxRetries = "LIBRARY_API_MAX_RETRIES"
	EnvLibraryAPIRateRPS    = "LIBRARY_API_RATE_RPS"
	EnvUseMockData          = "USE_MOCK_DATA"

	// Dialogue
	EnvWebhookTimeout = "WEBHOOK_TIMEOUT"
	EnvAuthTargetPage = "AUTH_TARGET_PAGE"
	EnvDebugErrors    = "DEBUG_ERRORS"

	// Sentry Feature
	EnvSentryToken      = "SENTRY_TOKEN"
	EnvSentryHost       = "SENTRY_HOST"
	EnvSentrySampleRate = "SENTRY_SAMPLE_RATE"
	EnvSentryRelease    = "SENTRY_RELEASE"

	// Better Stack Feature
	EnvBetterStackToken    = "BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsUsername = "METRICS_USERNAME"
	EnvMetricsPassword = "METRICS_PASSWORD"
)
