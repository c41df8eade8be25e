// Package library is the typed client for the library REST API.
//
// Every operation degrades to deterministic offline data when the client is
// configured offline, when the API key is missing, or when a call fails at
// the transport level or with a non-2xx status. Callers only ever observe
// business results, never network errors. Authenticate is the exception: it
// uses offline credentials only when the client is configured offline.
package library

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/config"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/errors"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/logger"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/metrics"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/storage"
)

// Operation names used in logs and metrics.
const (
	OpSearchBooks        = "search_books"
	OpGetBook            = "get_book"
	OpAuthenticate       = "authenticate"
	OpGetAccount         = "get_account"
	OpCheckouts          = "get_checkouts"
	OpHolds              = "get_holds"
	OpFines              = "get_fines"
	OpRenewBook          = "renew_book"
	OpPlaceHold          = "place_hold"
	OpPayFine            = "pay_fine"
	OpAvailableRooms     = "get_available_rooms"
	OpBookRoom           = "book_room"
	OpEquipmentAvailable = "check_equipment"
	OpReserveEquipment   = "reserve_equipment"
	OpUpcomingEvents     = "get_upcoming_events"
	OpRegisterEvent      = "register_event"
)

// Client talks to the library API with offline fallback.
type Client struct {
	cfg       config.LibraryConfig
	http      *resty.Client
	store     *storage.DB
	limiter   *rate.Limiter
	group     singleflight.Group
	metrics   *metrics.Metrics
	logger    *logger.Logger
	now       func() time.Time
	transport http.RoundTripper
}

// NewClient builds a client. store serves the offline data and must not be nil.
func NewClient(cfg config.LibraryConfig, store *storage.DB, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		store:  store,
		logger: logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithModule("library")

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = max(cfg.MaxRetries, 0)
	retryClient.RetryWaitMin = config.LibraryRetryWaitMin
	retryClient.RetryWaitMax = config.LibraryRetryWaitMax
	retryClient.Logger = c.logger.Logger
	if c.transport != nil {
		retryClient.HTTPClient.Transport = c.transport
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.LibraryRequest
	}

	c.http = resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetLogger(c.logger)
	if cfg.APIKey != "" {
		c.http.SetAuthToken(cfg.APIKey)
	}

	if cfg.RateRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateRPS), max(int(cfg.RateRPS), 1))
	} else {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
	}

	if cfg.UseOffline() {
		c.logger.Info("Library client running on offline data", "base_url", cfg.BaseURL)
	}
	return c
}

// Offline reports whether the client skips the network.
func (c *Client) Offline() bool {
	return c.cfg.UseOffline()
}

// call runs fetch against the API, or offline when the client is offline or
// fetch fails. Offline lookups ignore ctx cancellation so an expired turn
// still gets an answer.
func call[T any](ctx context.Context, c *Client, op string, fetch, offline func(context.Context) (T, error)) T {
	if c.cfg.UseOffline() {
		c.metrics.RecordBackend(op, metrics.OutcomeOffline, 0)
		return runOffline(ctx, c, op, offline)
	}

	start := time.Now()
	v, err := fetch(ctx)
	duration := time.Since(start).Seconds()
	if err != nil {
		c.logger.WarnContext(ctx, "Library API call failed, using offline data",
			"operation", op,
			"error", err,
		)
		c.metrics.RecordBackend(op, metrics.OutcomeFallback, duration)
		return runOffline(ctx, c, op, offline)
	}

	c.metrics.RecordBackend(op, metrics.OutcomeSuccess, duration)
	return v
}

func runOffline[T any](ctx context.Context, c *Client, op string, offline func(context.Context) (T, error)) T {
	v, err := offline(context.WithoutCancel(ctx))
	if err != nil {
		c.logger.ErrorContext(ctx, "Offline data lookup failed", "operation", op, "error", err)
		c.metrics.RecordBackend(op, metrics.OutcomeError, 0)
		var zero T
		return zero
	}
	return v
}

// shared collapses identical in-flight reads into one request.
func shared[T any](c *Client, op, key string, fetch func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		v, err, dup := c.group.Do(key, func() (any, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			return fetch(ctx)
		})
		if dup {
			c.metrics.RecordSingleflightDedup(op)
		}
		if err != nil {
			var zero T
			return zero, err
		}
		return v.(T), nil
	}
}

// do executes one request, decoding a 2xx JSON body into result.
func (c *Client) do(ctx context.Context, op, method, path string, result any, configure func(*resty.Request)) error {
	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.NewBackendError(op, 0, err)
	}
	c.metrics.RecordRateLimiterWait(time.Since(waitStart).Seconds())

	req := c.http.R().SetContext(ctx).SetResult(result)
	if configure != nil {
		configure(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return errors.NewBackendError(op, 0, err)
	}
	if !resp.IsSuccess() {
		return errors.NewBackendError(op, resp.StatusCode(), nil)
	}
	return nil
}

func (c *Client) get(ctx context.Context, op, path string, query map[string]string, result any) error {
	return c.do(ctx, op, resty.MethodGet, path, result, func(r *resty.Request) {
		if len(query) > 0 {
			r.SetQueryParams(query)
		}
	})
}

// getResource fetches one templated resource. Path parameters are escaped
// so an id cannot add segments or a query.
func (c *Client) getResource(ctx context.Context, op, path string, ids map[string]string, result any) error {
	return c.do(ctx, op, resty.MethodGet, path, result, func(r *resty.Request) {
		r.SetPathParams(ids)
	})
}

func (c *Client) post(ctx context.Context, op, path string, body, result any) error {
	return c.do(ctx, op, resty.MethodPost, path, result, func(r *resty.Request) {
		r.SetBody(body)
	})
}

// cacheKey identifies a GET for singleflight.
func cacheKey(path string, query map[string]string) string {
	if len(query) == 0 {
		return path
	}
	values := make(url.Values, len(query))
	for k, v := range query {
		values.Set(k, v)
	}
	return path + "?" + values.Encode()
}

// resourceKey identifies a templated GET for singleflight.
func resourceKey(path string, ids map[string]string) string {
	for k, v := range ids {
		path = strings.ReplaceAll(path, "{"+k+"}", url.PathEscape(v))
	}
	return path
}

func nonEmpty(pairs ...string) map[string]string {
	out := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			out[pairs[i]] = pairs[i+1]
		}
	}
	return out
}

// isAuthRejection reports a credential rejection, which is a business answer
// rather than an outage.
func isAuthRejection(err error) bool {
	var be *errors.BackendError
	if !stderrors.As(err, &be) {
		return false
	}
	return be.StatusCode == http.StatusUnauthorized || be.StatusCode == http.StatusForbidden
}
