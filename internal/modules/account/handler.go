// Package account implements the patron account actions: profile,
// checkouts, renewals, holds and fines. Every action needs a signed-in patron.
package account

import (
	"context"
	"fmt"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/bot"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/cxutil"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/library"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/logger"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/session"
)

// ModuleName is the module identifier used in logs.
const ModuleName = "account"

// Backend is the slice of the library client this module needs.
type Backend interface {
	GetAccount(ctx context.Context, userID string) *library.Account
	Checkouts(ctx context.Context, userID string) []library.Checkout
	Holds(ctx context.Context, userID string) []library.Hold
	Fines(ctx context.Context, userID string) []library.Fine
	RenewBook(ctx context.Context, userID, bookID string) library.ActionResult
	PlaceHold(ctx context.Context, userID, bookID string) library.ActionResult
	PayFine(ctx context.Context, userID, fineID string, amount float64) library.ActionResult
}

// Handler serves account turns.
type Handler struct {
	backend Backend
	logger  *logger.Logger
}

// NewHandler creates an account handler.
func NewHandler(backend Backend, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		backend: backend,
		logger:  log.WithModule(ModuleName),
	}
}

// Info renders the account summary card.
func (h *Handler) Info(ctx context.Context, req *bot.Request) *bot.Result {
	userID := req.UserID()
	if userID == "" {
		return bot.LoginRedirect(req, bot.TagAccountInfo)
	}

	acct := h.backend.GetAccount(ctx, userID)
	if acct == nil {
		h.logger.WarnContext(ctx, "Account not returned", "user_id", userID)
		return bot.Text("Sorry, I couldn't load your account right now. Please try again.")
	}

	return bot.Text(
		fmt.Sprintf("Here's your account summary, %s.", acct.Name),
		"My checkouts", "My holds", "My fines",
	).
		WithCard(AccountCard(*acct)).
		WithUpdates(session.Params{session.KeyUserName: acct.Name})
}

// AccountCard renders the patron summary with navigation buttons.
func AccountCard(a library.Account) cxutil.Card {
	return cxutil.Card{
		Title: a.Name,
		Subtitle: fmt.Sprintf("Member ID %s | %s | Status: %s | Checkouts: %d | Holds: %d",
			a.MemberID, a.Email, a.Status, a.CheckoutCount, a.HoldCount),
		Buttons: []cxutil.Button{
			{Text: "View Checkouts", Postback: "#account-checkouts"},
			{Text: "View Holds", Postback: "#account-holds"},
			{Text: "View Fines", Postback: "#account-fines"},
		},
	}
}

// Checkouts lists borrowed items with due dates.
func (h *Handler) Checkouts(ctx context.Context, req *bot.Request) *bot.Result {
	userID := req.UserID()
	if userID == "" {
		return bot.LoginRedirect(req, bot.TagCheckouts)
	}

	checkouts := h.backend.Checkouts(ctx, userID)
	if len(checkouts) == 0 {
		return bot.Text("You don't have any books checked out right now.", "Search books")
	}

	return bot.Text(
		fmt.Sprintf("You have %s checked out.", plural(len(checkouts), "book")),
		"Renew a book", "My holds",
	).
		WithList(cxutil.ToListItems(checkouts, checkoutListItem)).
		WithUpdates(session.Params{session.KeyCheckouts: checkoutCache(checkouts)})
}

// Renew extends a checkout, or lists the renewable ones when no book is named.
func (h *Handler) Renew(ctx context.Context, req *bot.Request) *bot.Result {
	p := ParseRenewParams(req)
	if p.UserID == "" {
		return bot.LoginRedirect(req, bot.TagRenew)
	}

	if p.BookID == "" {
		var renewable []library.Checkout
		for _, c := range h.backend.Checkouts(ctx, p.UserID) {
			if c.Renewable {
				renewable = append(renewable, c)
			}
		}
		if len(renewable) == 0 {
			return bot.Text("None of your current checkouts can be renewed right now.", "My checkouts")
		}
		return bot.Prompt("Which book would you like to renew?").
			WithList(cxutil.ToListItems(renewable, checkoutListItem)).
			WithUpdates(session.Params{session.KeyCheckouts: checkoutCache(renewable)})
	}

	res := h.backend.RenewBook(ctx, p.UserID, p.BookID)
	if !res.Success {
		h.logger.InfoContext(ctx, "Renewal rejected", "book_id", p.BookID, "reason", res.Message)
		return bot.Failure("renew that book", res.Reason()).
			WithUpdates(session.Params{"book_id": nil})
	}

	return bot.Text(
		fmt.Sprintf("%s has been renewed. The new due date is %s.", titleOr(res.Title, "Your book"), res.NewDueDate),
		"My checkouts",
	).WithUpdates(session.Params{"book_id": nil})
}

// Holds places a hold when a book is named, otherwise lists current holds.
func (h *Handler) Holds(ctx context.Context, req *bot.Request) *bot.Result {
	p := ParseHoldParams(req)
	if p.UserID == "" {
		return bot.LoginRedirect(req, bot.TagHolds)
	}

	if p.Place() {
		res := h.backend.PlaceHold(ctx, p.UserID, p.BookID)
		if !res.Success {
			h.logger.InfoContext(ctx, "Hold rejected", "book_id", p.BookID, "reason", res.Message)
			return bot.Failure("place that hold", res.Reason()).
				WithUpdates(session.Params{"book_id": nil, "action": nil})
		}
		return bot.Text(
			fmt.Sprintf("A hold has been placed on %s. We'll notify you when it's ready for pickup.",
				titleOr(res.Title, "that book")),
			"My holds", "Search books",
		).WithUpdates(session.Params{"book_id": nil, "action": nil})
	}

	clear := session.Params{"book_id": nil, "action": nil}
	holds := h.backend.Holds(ctx, p.UserID)
	if len(holds) == 0 {
		return bot.Text("You don't have any holds right now.", "Search books").WithUpdates(clear)
	}

	return bot.Text(fmt.Sprintf("You have %s.", plural(len(holds), "hold")), "Search books").
		WithList(cxutil.ToListItems(holds, func(hold library.Hold) cxutil.ListItem {
			return cxutil.ListItem{
				ID:       hold.BookID,
				Title:    hold.Title,
				Subtitle: fmt.Sprintf("Position %d in queue", hold.Position),
				ImageURL: hold.CoverImage,
			}
		})).
		WithUpdates(clear).
		WithUpdates(session.Params{session.KeyHolds: holdCache(holds)})
}

// Fines lists outstanding fines with a total, or pays one.
func (h *Handler) Fines(ctx context.Context, req *bot.Request) *bot.Result {
	p := ParseFineParams(req)
	if p.UserID == "" {
		return bot.LoginRedirect(req, bot.TagFines)
	}

	if p.Action == ActionPay {
		return h.payFine(ctx, p)
	}

	fines := h.backend.Fines(ctx, p.UserID)
	if len(fines) == 0 {
		return bot.Text("Good news! You don't have any outstanding fines.").WithUpdates(clearPayment())
	}

	var total float64
	for _, f := range fines {
		total += f.Amount
	}

	return bot.Text(
		fmt.Sprintf("You have %s totaling %s.", plural(len(fines), "outstanding fine"), cxutil.FormatCurrency(total)),
		"Pay fine",
	).
		WithList(cxutil.ToListItems(fines, func(f library.Fine) cxutil.ListItem {
			subtitle := cxutil.FormatCurrency(f.Amount)
			if f.DueDate != "" {
				subtitle += " due " + f.DueDate
			}
			return cxutil.ListItem{ID: f.ID, Title: f.Description, Subtitle: subtitle}
		})).
		WithUpdates(clearPayment()).
		WithUpdates(session.Params{session.KeyFines: fineCache(fines)})
}

// clearPayment drops a finished or abandoned payment so it cannot replay on
// a later turn.
func clearPayment() session.Params {
	return session.Params{"fine_id": nil, "amount": nil, "action": nil, session.KeyPaymentPending: nil}
}

func (h *Handler) payFine(ctx context.Context, p FineParams) *bot.Result {
	if p.FineID == "" {
		return bot.Prompt("Which fine would you like to pay?", "View fines").
			WithUpdates(session.Params{session.KeyPaymentPending: true})
	}
	if !p.HasAmount {
		return bot.Prompt(fmt.Sprintf("How much would you like to pay toward fine %s?", p.FineID)).
			WithUpdates(session.Params{session.KeyPaymentPending: true, "fine_id": p.FineID})
	}

	res := h.backend.PayFine(ctx, p.UserID, p.FineID, p.Amount)
	if !res.Success {
		h.logger.InfoContext(ctx, "Fine payment rejected", "fine_id", p.FineID, "reason", res.Message)
		return bot.Failure("process that payment", res.Reason()).WithUpdates(clearPayment())
	}

	amount := res.Amount
	if amount == 0 {
		amount = p.Amount
	}
	return bot.Text(
		fmt.Sprintf("Payment of %s received for fine %s. Transaction ID: %s.",
			cxutil.FormatCurrency(amount), p.FineID, res.TransactionID),
		"View fines",
	).WithUpdates(clearPayment())
}

func checkoutListItem(c library.Checkout) cxutil.ListItem {
	return cxutil.ListItem{
		ID:       c.BookID,
		Title:    c.Title,
		Subtitle: "Due " + c.DueDate,
		ImageURL: c.CoverImage,
	}
}

// Session caches keep only what a follow-up turn needs to refer back.

func checkoutCache(checkouts []library.Checkout) []map[string]any {
	out := make([]map[string]any, len(checkouts))
	for i, c := range checkouts {
		out[i] = map[string]any{"book_id": c.BookID, "title": c.Title, "due_date": c.DueDate, "renewable": c.Renewable}
	}
	return out
}

func holdCache(holds []library.Hold) []map[string]any {
	out := make([]map[string]any, len(holds))
	for i, h := range holds {
		out[i] = map[string]any{"book_id": h.BookID, "title": h.Title, "position": h.Position}
	}
	return out
}

func fineCache(fines []library.Fine) []map[string]any {
	out := make([]map[string]any, len(fines))
	for i, f := range fines {
		out[i] = map[string]any{"fine_id": f.ID, "description": f.Description, "amount": f.Amount}
	}
	return out
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func titleOr(title, fallback string) string {
	if title == "" {
		return fallback
	}
	return title
}
