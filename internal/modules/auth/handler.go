// Package auth implements patron login and the resume of account actions
// that were interrupted by the login gate.
package auth

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/bot"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/library"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/logger"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/metrics"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/modules/account"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/session"
)

// ModuleName is the module identifier used in logs.
const ModuleName = "auth"

// Patron-facing texts.
const (
	AskUserID        = "Please enter your library card number or user ID."
	AskPassword      = "Thanks. Now please enter your password."
	CredentialsError = "Sorry, that card number and password didn't match our records. Please try again."
	LoginUnavailable = "Sorry, I can't sign you in right now. Please try again in a few minutes."
)

// Backend is the slice of the library client this module needs.
type Backend interface {
	Authenticate(ctx context.Context, userID, password string) library.AuthResult
	GetAccount(ctx context.Context, userID string) *library.Account
}

// Handler serves login turns and owns the resume registry.
type Handler struct {
	backend Backend
	logger  *logger.Logger
	metrics *metrics.Metrics
	resume  map[string]bot.HandlerFunc
}

// NewHandler creates an auth handler with an empty resume registry.
func NewHandler(backend Backend, log *logger.Logger, m *metrics.Metrics) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		backend: backend,
		logger:  log.WithModule(ModuleName),
		metrics: m,
		resume:  make(map[string]bot.HandlerFunc),
	}
}

// Register binds a pending tag to the handler that resumes it after login.
// Registration happens during wiring, before the first request.
func (h *Handler) Register(tag string, fn bot.HandlerFunc) {
	h.resume[tag] = fn
}

// Resumable returns the registered pending tags, sorted.
func (h *Handler) Resumable() []string {
	return slices.Sorted(maps.Keys(h.resume))
}

// Login asks for the identifier, then the password, then authenticates.
// On success it either resumes the pending action or shows the dashboard.
func (h *Handler) Login(ctx context.Context, req *bot.Request) *bot.Result {
	p := ParseLoginParams(req)
	if p.UserID == "" {
		return bot.Prompt(AskUserID)
	}
	if p.Password == "" {
		return bot.Prompt(AskPassword)
	}

	auth := h.backend.Authenticate(ctx, p.UserID, p.Password)
	if !auth.Success {
		h.logger.InfoContext(ctx, "Login rejected", "user_id", p.UserID, "reason", auth.Message)
		message := CredentialsError
		if auth.Unavailable {
			message = LoginUnavailable
		}
		return &bot.Result{
			Message: message,
			Updates: session.Params{
				session.KeyAuthenticated: false,
				session.KeyUserID:        nil,
				session.KeyPassword:      nil,
			},
		}
	}

	userID := auth.UserID
	if userID == "" {
		userID = p.UserID
	}
	updates := session.Params{
		session.KeyUserID:        userID,
		session.KeyAuthenticated: true,
		session.KeyPassword:      nil,
		session.KeyLoginRequired: false,
	}

	acct := h.backend.GetAccount(ctx, userID)
	name := auth.Name
	if acct != nil && acct.Name != "" {
		name = acct.Name
	}
	if name != "" {
		updates[session.KeyUserName] = name
	}
	welcome := "Welcome back!"
	if name != "" {
		welcome = fmt.Sprintf("Welcome back, %s!", name)
	}

	if pending := req.String(session.KeyPendingTag); pending != "" {
		updates[session.KeyPendingTag] = nil
		if res := h.resumePending(ctx, req, pending, userID); res != nil {
			res.Message = welcome + " " + res.Message
			return res.WithUpdates(updates)
		}
	}

	h.logger.InfoContext(ctx, "Patron logged in", "user_id", userID)
	if acct == nil {
		return bot.Text(welcome+" You're now logged in.", "My account", "Search books").
			WithUpdates(updates)
	}
	return bot.Text(welcome+" Here's your account dashboard.", "My checkouts", "My holds", "Search books").
		WithCard(account.AccountCard(*acct)).
		WithUpdates(updates)
}

// resumePending re-runs the action named by the pending tag for the freshly
// authenticated patron. Current-turn values win over the session, and the
// identity always comes from the login. It returns nil when nothing is
// registered for the tag.
func (h *Handler) resumePending(ctx context.Context, req *bot.Request, tag, userID string) *bot.Result {
	fn, ok := h.resume[tag]
	if !ok {
		h.logger.WarnContext(ctx, "No resume handler for pending tag", "pending_tag", tag)
		return nil
	}

	params := req.Merged()
	params[session.KeyUserID] = userID

	h.logger.InfoContext(ctx, "Resuming action after login", "pending_tag", tag, "user_id", userID)
	h.metrics.RecordResume(tag)

	return fn(ctx, req.WithParams(params))
}
