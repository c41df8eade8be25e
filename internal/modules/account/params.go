package account

import (
	"strings"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/bot"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/cxutil"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/session"
)

// Account actions.
const (
	ActionView  = "view"
	ActionPay   = "pay"
	ActionPlace = "place"
)

// bookID reads the named book. A list tap only counts on the turn it
// happened; CX keeps selected_item_id in the session afterwards.
func bookID(req *bot.Request) string {
	if id := req.String("book_id"); id != "" {
		return id
	}
	return req.Params.String(cxutil.SelectedItemKey)
}

// RenewParams name the checkout to renew. An empty BookID means "ask".
type RenewParams struct {
	UserID string
	BookID string
}

// ParseRenewParams reads renewal slots.
func ParseRenewParams(req *bot.Request) RenewParams {
	return RenewParams{
		UserID: req.UserID(),
		BookID: bookID(req),
	}
}

// HoldParams name the book to hold and whether the patron only wants to look.
type HoldParams struct {
	UserID string
	BookID string
	Action string
}

// ParseHoldParams reads hold slots. The action is read from the current turn
// only. An explicit "place hold" turn falls back to the book last shown by
// the catalog.
func ParseHoldParams(req *bot.Request) HoldParams {
	p := HoldParams{
		UserID: req.UserID(),
		BookID: bookID(req),
		Action: normalizeAction(firstNonEmpty(req.Params.String("action"), req.Params.String("hold_action"))),
	}
	if p.Action == "" && strings.Contains(strings.ToLower(req.Intent), ActionPlace) {
		p.Action = ActionPlace
	}
	if p.BookID == "" && p.Action == ActionPlace {
		p.BookID = req.String(session.KeySelectedBookID)
	}
	return p
}

// Place reports whether the turn asks to place a hold: a book is named and
// the patron did not explicitly ask to view.
func (p HoldParams) Place() bool {
	return p.BookID != "" && p.Action != ActionView
}

// FineParams select between viewing and paying fines.
type FineParams struct {
	UserID    string
	Action    string
	FineID    string
	Amount    float64
	HasAmount bool
}

// ParseFineParams reads fine slots. The action comes from the current turn or
// the intent; a payment only continues across turns while the session marks
// one as pending, so leftover slots never replay a payment.
func ParseFineParams(req *bot.Request) FineParams {
	p := FineParams{
		UserID: req.UserID(),
		Action: normalizeAction(firstNonEmpty(req.Params.String("action"), req.Params.String("fine_action"))),
		FineID: req.String("fine_id"),
	}
	if p.Action == "" && strings.Contains(strings.ToLower(req.Intent), ActionPay) {
		p.Action = ActionPay
	}
	if p.Action == "" && req.Session.Bool(session.KeyPaymentPending) {
		p.Action = ActionPay
	}
	if p.Action == "" {
		p.Action = ActionView
	}
	p.Amount, p.HasAmount = req.Float("amount")
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalizeAction maps spoken variants onto view or pay.
func normalizeAction(action string) string {
	switch a := strings.ToLower(strings.TrimSpace(action)); a {
	case "":
		return ""
	case "view", "list", "show", "check", "see":
		return ActionView
	case "pay", "payment", "settle":
		return ActionPay
	case "place", "hold", "reserve", "request":
		return ActionPlace
	default:
		return a
	}
}
