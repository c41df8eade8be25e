// Package config provides centralized timeout constants for the application.
//
// Dialogflow CX waits at most 30 seconds for a webhook by default (the agent
// can lower it to 5s). Everything below is sized so a full turn, including one
// backend retry and the offline fallback, fits well inside that window.
package config

import "time"

// Webhook timeouts
const (
	// WebhookProcessing bounds routing, backend calls and rendering for one turn.
	WebhookProcessing = 25 * time.Second

	// WebhookHTTPRead is the HTTP server read timeout. CX payloads are small.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite must cover WebhookProcessing plus serialization.
	WebhookHTTPWrite = 30 * time.Second

	// WebhookHTTPIdle is the idle timeout for keep-alive connections.
	WebhookHTTPIdle = 120 * time.Second
)

// Library backend timeouts
const (
	// LibraryRequest is the per-request timeout for the library REST API.
	LibraryRequest = 10 * time.Second

	// LibraryRetryWaitMin is the first backoff step between retries.
	LibraryRetryWaitMin = 250 * time.Millisecond

	// LibraryRetryWaitMax caps the exponential backoff.
	LibraryRetryWaitMax = 2 * time.Second
)

// Process lifecycle
const (
	// GracefulShutdown is the default budget for draining in-flight requests.
	GracefulShutdown = 15 * time.Second

	// SentryFlush is how long shutdown waits for buffered error reports.
	SentryFlush = 2 * time.Second
)
