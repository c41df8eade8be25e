package bot

import (
	"context"
	"strings"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/ctxutil"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/logger"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/metrics"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/session"
)

// Flow display names the router treats specially.
const (
	FlowAuthentication    = "Authentication"
	FlowAccountManagement = "Account Management"
)

// LoginPrompt opens the Authentication flow after a gate redirect.
const LoginPrompt = "Please log in to continue. What is your library card number or user ID?"

// Decision is the outcome of routing: which handler runs and which signal
// selected it.
type Decision struct {
	Source string // metrics.Source*
	Tag    string
}

// Router dispatches turns to handlers. It holds no conversation state; the
// tables are built once and only read afterwards.
type Router struct {
	handlers map[string]HandlerFunc
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

// NewRouter wraps every non-nil handler with the middlewares, outermost first.
func NewRouter(h Handlers, log *logger.Logger, m *metrics.Metrics, middlewares ...Middleware) *Router {
	if log == nil {
		log = logger.Discard()
	}
	handlers := make(map[string]HandlerFunc)
	for tag, fn := range h.byTag() {
		if fn != nil {
			handlers[tag] = Chain(tag, fn, middlewares...)
		}
	}
	return &Router{
		handlers: handlers,
		logger:   log.WithModule("router"),
		metrics:  m,
	}
}

// Resolve picks the handler for req: tag, then flow, then intent keywords,
// then default. It is a pure function of req.
func (r *Router) Resolve(req *Request) Decision {
	if tag := strings.TrimSpace(req.Tag); tag != "" {
		if _, ok := gatedParams[tag]; ok || isKnownTag(tag) {
			return Decision{Source: metrics.SourceTag, Tag: tag}
		}
	}

	switch flow := req.FlowName(); flow {
	case "":
	case FlowAccountManagement:
		tag, ok := firstMatch(accountRules, req.Intent)
		if !ok {
			tag = TagAccountInfo
		}
		return Decision{Source: metrics.SourceFlow, Tag: tag}
	default:
		if tag, ok := flowTags[flow]; ok {
			return Decision{Source: metrics.SourceFlow, Tag: tag}
		}
	}

	if tag, ok := firstMatch(intentRules, req.Intent); ok {
		return Decision{Source: metrics.SourceIntent, Tag: tag}
	}
	return Decision{Source: metrics.SourceDefault, Tag: TagDefault}
}

// Route resolves req, applies the login gate and runs the handler.
func (r *Router) Route(ctx context.Context, req *Request) (*Result, Decision) {
	d := r.Resolve(req)
	return r.Execute(ctx, req, d), d
}

// Execute applies the login gate to a resolved decision and runs the handler.
func (r *Router) Execute(ctx context.Context, req *Request, d Decision) *Result {
	ctx = ctxutil.WithHandler(ctx, d.Tag)

	if RequiresLogin(d.Tag) && req.UserID() == "" {
		r.logger.InfoContext(ctx, "Account action needs login, redirecting",
			"pending_tag", d.Tag,
			"source", d.Source,
		)
		r.metrics.RecordAuthRedirect(d.Tag)
		return LoginRedirect(req, d.Tag)
	}

	r.logger.DebugContext(ctx, "Routing turn",
		"source", d.Source,
		"flow", req.Flow,
		"intent", req.Intent,
		"tag", req.Tag,
	)
	return r.Dispatch(ctx, d.Tag, req)
}

// Dispatch runs the handler bound to tag, falling back to the default
// handler for unbound tags.
func (r *Router) Dispatch(ctx context.Context, tag string, req *Request) *Result {
	fn, ok := r.handlers[tag]
	if !ok {
		fn, ok = r.handlers[TagDefault]
	}
	if !ok {
		return Text(DefaultMessage)
	}
	if res := fn(ctx, req); res != nil {
		return res
	}
	return Text(DefaultMessage)
}

// LoginRedirect builds the detour result for a gated tag. Only the tag's
// declared parameters are carried so the action can resume after login.
func LoginRedirect(req *Request, tag string) *Result {
	updates := session.Params{
		session.KeyPendingTag:    tag,
		session.KeyLoginRequired: true,
	}
	for _, key := range CarriedParams(tag) {
		if v, ok := req.Lookup(key); ok {
			updates[key] = v
			continue
		}
		// A selection only names the item on the turn it was made.
		for _, alias := range carryAliases[key] {
			if req.Params.Present(alias) {
				updates[key] = req.Params[alias]
				break
			}
		}
	}
	return &Result{
		Message:  LoginPrompt,
		Updates:  updates,
		Redirect: FlowAuthentication,
	}
}

// DefaultMessage is the capability menu used when nothing else applies.
const DefaultMessage = "I can help you search the catalog, manage your account, book study rooms, " +
	"reserve equipment and register for events. What would you like to do?"

func isKnownTag(tag string) bool {
	switch tag {
	case TagSearchBooks, TagBookDetails, TagBookRoom, TagReserveEquipment,
		TagRegisterEvent, TagAuthenticate, TagHelp, TagDefault:
		return true
	}
	return false
}
