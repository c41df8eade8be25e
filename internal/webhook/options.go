package webhook

import (
	"time"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/logger"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/metrics"
)

// HandlerOption is a functional option for configuring Handler.
type HandlerOption func(*Handler)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.logger = log
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithTimeout bounds the processing of one turn.
func WithTimeout(timeout time.Duration) HandlerOption {
	return func(h *Handler) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// WithAuthTargetPage sets the targetPage sent with login redirects.
func WithAuthTargetPage(page string) HandlerOption {
	return func(h *Handler) {
		if page != "" {
			h.authTargetPage = page
		}
	}
}

// WithDiagnosticErrors embeds raw error text in error envelopes.
// Only for development agents.
func WithDiagnosticErrors(enabled bool) HandlerOption {
	return func(h *Handler) {
		h.diagnostic = enabled
	}
}
