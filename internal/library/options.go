package library

import (
	"net/http"
	"time"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/logger"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/metrics"
)

// Option configures a Client.
type Option func(*Client)

// WithMetrics records backend calls.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the client logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithClock overrides time.Now for offline due dates.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTransport replaces the base transport under the retry layer.
// Tests use it to point at an in-process server.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}
