// Package metrics defines the Prometheus collectors for the fulfillment
// webhook and the library backend client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Route sources recorded on webhook metrics.
const (
	SourceTag     = "tag"
	SourceFlow    = "flow"
	SourceIntent  = "intent"
	SourceDefault = "default"
	SourceInvalid = "invalid"
)

// Backend call outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeFallback = "fallback"
	OutcomeOffline  = "offline"
)

// Metrics holds all Prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Webhook metrics
	WebhookRequestsTotal   *prometheus.CounterVec
	WebhookDurationSeconds *prometheus.HistogramVec
	PanicsRecoveredTotal   *prometheus.CounterVec

	// Dialogue metrics
	AuthRedirectsTotal *prometheus.CounterVec
	ResumesTotal       *prometheus.CounterVec

	// Library backend metrics
	BackendRequestsTotal   *prometheus.CounterVec
	BackendDurationSeconds *prometheus.HistogramVec
	SingleflightDedupTotal *prometheus.CounterVec
	RateLimiterWaitSeconds prometheus.Histogram
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		WebhookRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_webhook_requests_total",
				Help: "Total webhook turns by route source, handler and status",
			},
			[]string{"source", "handler", "status"}, // status: success, error
		),

		WebhookDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "library_webhook_duration_seconds",
				Help:    "Webhook turn duration in seconds by handler",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"handler"},
		),

		PanicsRecoveredTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_handler_panics_total",
				Help: "Total handler panics recovered at the webhook boundary",
			},
			[]string{"handler"},
		),

		AuthRedirectsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_auth_redirects_total",
				Help: "Total login redirects by the tag that required a patron",
			},
			[]string{"pending_tag"},
		),

		ResumesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_smart_resumes_total",
				Help: "Total account actions resumed after a successful login",
			},
			[]string{"pending_tag"},
		),

		BackendRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_backend_requests_total",
				Help: "Total library API calls by operation and outcome",
			},
			[]string{"operation", "outcome"}, // outcome: success, error, fallback, offline
		),

		BackendDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "library_backend_duration_seconds",
				Help:    "Library API call duration in seconds by operation",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}, // 10s matches the request timeout
			},
			[]string{"operation"},
		),

		SingleflightDedupTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_singleflight_dedup_total",
				Help: "Total library reads that joined an identical in-flight call",
			},
			[]string{"operation"},
		),

		RateLimiterWaitSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "library_rate_limiter_wait_seconds",
				Help:    "Time spent waiting for an outbound request token",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
	}
}

// RecordWebhook records one webhook turn.
func (m *Metrics) RecordWebhook(source, handler, status string, duration float64) {
	if m == nil {
		return
	}
	m.WebhookRequestsTotal.WithLabelValues(source, handler, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(handler).Observe(duration)
}

// RecordPanic records a recovered handler panic.
func (m *Metrics) RecordPanic(handler string) {
	if m == nil {
		return
	}
	m.PanicsRecoveredTotal.WithLabelValues(handler).Inc()
}

// RecordAuthRedirect records a login gate redirect.
func (m *Metrics) RecordAuthRedirect(pendingTag string) {
	if m == nil {
		return
	}
	m.AuthRedirectsTotal.WithLabelValues(pendingTag).Inc()
}

// RecordResume records a smart resume after login.
func (m *Metrics) RecordResume(pendingTag string) {
	if m == nil {
		return
	}
	m.ResumesTotal.WithLabelValues(pendingTag).Inc()
}

// RecordBackend records a library API call.
func (m *Metrics) RecordBackend(operation, outcome string, duration float64) {
	if m == nil {
		return
	}
	m.BackendRequestsTotal.WithLabelValues(operation, outcome).Inc()
	if outcome != OutcomeOffline {
		m.BackendDurationSeconds.WithLabelValues(operation).Observe(duration)
	}
}

// RecordSingleflightDedup records a read that shared another call's result.
func (m *Metrics) RecordSingleflightDedup(operation string) {
	if m == nil {
		return
	}
	m.SingleflightDedupTotal.WithLabelValues(operation).Inc()
}

// RecordRateLimiterWait records time blocked on the outbound limiter.
func (m *Metrics) RecordRateLimiterWait(seconds float64) {
	if m == nil {
		return
	}
	m.RateLimiterWaitSeconds.Observe(seconds)
}
