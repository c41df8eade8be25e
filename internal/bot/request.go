package bot

import (
	"strings"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/session"
)

// Request is one fulfillment turn. Params holds the values extracted this
// turn; Session holds the parameters CX persisted from earlier turns.
type Request struct {
	Flow         string
	Page         string
	Intent       string
	Tag          string
	Params       session.Params
	Session      session.Params
	SessionID    string
	LanguageCode string
}

// Lookup returns the first key with a non-empty value, preferring the
// current turn over the session for each key in order.
func (r *Request) Lookup(keys ...string) (any, bool) {
	for _, key := range keys {
		if r.Params.Present(key) {
			return r.Params[key], true
		}
		if r.Session.Present(key) {
			return r.Session[key], true
		}
	}
	return nil, false
}

// String is Lookup rendered as a trimmed string.
func (r *Request) String(keys ...string) string {
	v, ok := r.Lookup(keys...)
	if !ok {
		return ""
	}
	return session.ToString(v)
}

// Float is Lookup interpreted as a number.
func (r *Request) Float(keys ...string) (float64, bool) {
	for _, key := range keys {
		if f, ok := r.Params.Float(key); ok {
			return f, true
		}
		if f, ok := r.Session.Float(key); ok {
			return f, true
		}
	}
	return 0, false
}

// UserID is the signed-in patron, if any.
func (r *Request) UserID() string {
	return r.String(session.KeyUserID)
}

// Merged returns session ∪ current-turn parameters, current turn winning.
func (r *Request) Merged() session.Params {
	return session.Merge(r.Session, r.Params)
}

// WithParams returns a copy of r whose current-turn parameters are params.
// The session is shared; handlers never mutate it.
func (r *Request) WithParams(params session.Params) *Request {
	next := *r
	next.Params = params
	return &next
}

// FlowName strips the optional " Flow" suffix from the flow display name.
func (r *Request) FlowName() string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(r.Flow), " Flow"))
}
