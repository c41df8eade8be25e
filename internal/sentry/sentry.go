// Package sentry initializes the Sentry SDK against Better Stack Errors and
// reports faults that the webhook recovers from.
package sentry

import (
	"context"
	"fmt"
	"time"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/ctxutil"
	"github.com/getsentry/sentry-go"
)

// Config holds Sentry configuration for Better Stack integration.
type Config struct {
	// Token is the Better Stack Errors application token.
	Token string

	// Host is the ingesting host (e.g. "errors.betterstack.com").
	Host string

	Environment string
	Release     string
	ServerName  string

	// SampleRate controls error sampling (0.0-1.0, default 1.0).
	SampleRate float64

	Debug bool
}

// DSN builds https://TOKEN@HOST/1. Better Stack ignores the project ID but
// the SDK requires one.
func (c Config) DSN() string {
	return fmt.Sprintf("https://%s@%s/1", c.Token, c.Host)
}

// Initialize sets up the Sentry SDK.
// An empty Token disables reporting and returns nil.
func Initialize(cfg Config) error {
	if cfg.Token == "" {
		return nil
	}
	if cfg.Host == "" {
		return fmt.Errorf("sentry host is required when token is provided")
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN(),
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		ServerName:       cfg.ServerName,
		SampleRate:       sampleRate,
		Debug:            cfg.Debug,
		AttachStacktrace: true,
	})
}

// Flush waits for buffered events to be sent to the server.
// Returns true if all events were sent within the timeout.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// IsEnabled returns true if Sentry is initialized and active.
func IsEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureException reports err using the hub attached to ctx (set by the
// sentrygin middleware) or the global hub. Tracing values from ctx become tags.
func CaptureException(ctx context.Context, err error) {
	if err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		if requestID, ok := ctxutil.GetRequestID(ctx); ok && requestID != "" {
			scope.SetTag("request_id", requestID)
		}
		if handler := ctxutil.GetHandler(ctx); handler != "" {
			scope.SetTag("handler", handler)
		}
		if sessionID := ctxutil.GetSessionID(ctx); sessionID != "" {
			scope.SetContext("dialogflow", sentry.Context{"session": sessionID})
		}
		hub.CaptureException(err)
	})
}
