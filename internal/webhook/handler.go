// Package webhook is the Dialogflow CX fulfillment entry point: it decodes
// the envelope, routes the turn behind a panic boundary, merges session
// parameters and renders the response envelope.
package webhook

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/bot"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/config"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/ctxutil"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/cxutil"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/errors"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/logger"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/metrics"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/sentry"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/session"
)

// MaxBodyBytes caps the accepted request body.
const MaxBodyBytes = 1 << 20

// Router is what the webhook needs from the routing engine.
type Router interface {
	Resolve(req *bot.Request) bot.Decision
	Execute(ctx context.Context, req *bot.Request, d bot.Decision) *bot.Result
}

// Handler fulfills CX webhook calls. It keeps no conversation state.
type Handler struct {
	router         Router
	logger         *logger.Logger
	metrics        *metrics.Metrics
	timeout        time.Duration
	authTargetPage string
	diagnostic     bool
}

// NewHandler creates a webhook handler.
func NewHandler(router Router, opts ...HandlerOption) *Handler {
	h := &Handler{
		router:         router,
		logger:         logger.Discard(),
		timeout:        config.WebhookProcessing,
		authTargetPage: config.DefaultAuthTargetPage,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.WithModule("webhook")
	return h
}

// Handle is the gin handler for the fulfillment endpoint. CX treats any
// non-200 as a webhook failure, so every outcome is answered with 200.
func (h *Handler) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	var wr cxutil.WebhookRequest
	if err := c.ShouldBindJSON(&wr); err != nil {
		err = fmt.Errorf("%w: %w", errors.ErrMalformedRequest, err)
		h.logger.WithError(err).WarnContext(ctx, "Rejecting webhook body")
		h.metrics.RecordWebhook(metrics.SourceInvalid, "", "error", 0)
		c.JSON(http.StatusOK, cxutil.ErrorResponse(err, h.diagnostic))
		return
	}

	c.JSON(http.StatusOK, h.Process(ctx, &wr))
}

// Process fulfills one decoded turn and always returns a response.
func (h *Handler) Process(ctx context.Context, wr *cxutil.WebhookRequest) (resp *cxutil.WebhookResponse) {
	start := time.Now()

	if err := validate(wr); err != nil {
		h.logger.WithError(err).WarnContext(ctx, "Rejecting webhook request")
		h.metrics.RecordWebhook(metrics.SourceInvalid, "", "error", 0)
		return cxutil.ErrorResponse(err, h.diagnostic)
	}

	req := NewRequest(wr)
	reqCtx := ctxutil.WithSessionID(ctx, req.SessionID)

	// Detached from the caller; only the turn timeout bounds backend work.
	procCtx, cancel := context.WithTimeout(ctxutil.PreserveTracing(reqCtx), h.timeout)
	defer cancel()

	d := h.router.Resolve(req)
	if req.Tag != "" && d.Source != metrics.SourceTag {
		h.logger.WithError(fmt.Errorf("%w: %q", errors.ErrUnknownTag, req.Tag)).
			WarnContext(reqCtx, "Ignoring fulfillment tag", "routed_by", d.Source)
	}
	status := "success"

	defer func() {
		if r := recover(); r != nil {
			status = "error"
			err := fmt.Errorf("%w: %v", errors.ErrHandlerPanic, r)
			h.logger.WithError(err).ErrorContext(procCtx, "Recovered handler panic",
				"handler", d.Tag,
				"stack", string(debug.Stack()),
			)
			sentry.CaptureException(ctxutil.WithHandler(reqCtx, d.Tag), err)
			h.metrics.RecordPanic(d.Tag)
			resp = cxutil.ErrorResponse(err, h.diagnostic)
		}
		h.metrics.RecordWebhook(d.Source, d.Tag, status, time.Since(start).Seconds())
	}()

	res := h.router.Execute(procCtx, req, d)
	if res == nil {
		res = bot.Text(bot.DefaultMessage)
	}

	resp = h.render(wr, req, res)

	h.logger.InfoContext(procCtx, "Turn fulfilled",
		"source", d.Source,
		"handler", d.Tag,
		"redirect", res.Redirect,
		"updates", len(res.Updates),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp
}

// render merges the session once and builds the outbound envelope.
func (h *Handler) render(wr *cxutil.WebhookRequest, req *bot.Request, res *bot.Result) *cxutil.WebhookResponse {
	merged := session.Merge(req.Session, res.Updates)

	resp := &cxutil.WebhookResponse{
		FulfillmentResponse: &cxutil.FulfillmentResponse{
			Messages: res.Messages(req.LanguageCode),
		},
	}

	switch res.Redirect {
	case "":
	case bot.FlowAuthentication:
		merged[session.KeyLoginRequired] = true
		resp.TargetPage = h.authTargetPage
	default:
		resp.TargetPage = res.Redirect
	}

	info := &cxutil.SessionInfo{Parameters: merged}
	if wr.SessionInfo != nil {
		info.Session = wr.SessionInfo.Session
	}
	resp.SessionInfo = info
	return resp
}
