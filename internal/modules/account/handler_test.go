package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/bot"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/library"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/session"
)

type call struct {
	op     string
	userID string
	id     string
	amount float64
}

type stubBackend struct {
	account   *library.Account
	checkouts []library.Checkout
	holds     []library.Hold
	fines     []library.Fine
	action    library.ActionResult
	calls     []call
}

func (s *stubBackend) GetAccount(_ context.Context, userID string) *library.Account {
	s.calls = append(s.calls, call{op: "account", userID: userID})
	return s.account
}

func (s *stubBackend) Checkouts(_ context.Context, userID string) []library.Checkout {
	s.calls = append(s.calls, call{op: "checkouts", userID: userID})
	return s.checkouts
}

func (s *stubBackend) Holds(_ context.Context, userID string) []library.Hold {
	s.calls = append(s.calls, call{op: "holds", userID: userID})
	return s.holds
}

func (s *stubBackend) Fines(_ context.Context, userID string) []library.Fine {
	s.calls = append(s.calls, call{op: "fines", userID: userID})
	return s.fines
}

func (s *stubBackend) RenewBook(_ context.Context, userID, bookID string) library.ActionResult {
	s.calls = append(s.calls, call{op: "renew", userID: userID, id: bookID})
	return s.action
}

func (s *stubBackend) PlaceHold(_ context.Context, userID, bookID string) library.ActionResult {
	s.calls = append(s.calls, call{op: "hold", userID: userID, id: bookID})
	return s.action
}

func (s *stubBackend) PayFine(_ context.Context, userID, fineID string, amount float64) library.ActionResult {
	s.calls = append(s.calls, call{op: "pay", userID: userID, id: fineID, amount: amount})
	return s.action
}

func signedIn(params session.Params) *bot.Request {
	return &bot.Request{
		Params:  params,
		Session: session.Params{session.KeyUserID: "user123"},
	}
}

func TestInfo(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{account: &library.Account{
		UserID: "user123", Name: "John Doe", Email: "john.doe@example.com",
		MemberID: "M123456", Status: "Active", CheckoutCount: 3, HoldCount: 1,
	}}
	h := NewHandler(backend, nil)

	res := h.Info(context.Background(), signedIn(nil))

	require.NotNil(t, res.Rich)
	assert.Equal(t, bot.RichCard, res.Rich.Kind)
	assert.Equal(t, "John Doe", res.Rich.Card.Title)
	assert.Contains(t, res.Rich.Card.Subtitle, "M123456")
	assert.Contains(t, res.Rich.Card.Subtitle, "Checkouts: 3")
	assert.Len(t, res.Rich.Card.Buttons, 3)
	assert.Equal(t, "John Doe", res.Updates[session.KeyUserName])
}

func TestInfo_BackendMiss(t *testing.T) {
	t.Parallel()

	h := NewHandler(&stubBackend{}, nil)
	res := h.Info(context.Background(), signedIn(nil))

	assert.Contains(t, res.Message, "Sorry")
	assert.Nil(t, res.Rich)
}

func TestAnonymousRequestsRedirect(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	h := NewHandler(backend, nil)
	ctx := context.Background()

	for name, fn := range map[string]bot.HandlerFunc{
		bot.TagAccountInfo: h.Info,
		bot.TagCheckouts:   h.Checkouts,
		bot.TagRenew:       h.Renew,
		bot.TagHolds:       h.Holds,
		bot.TagFines:       h.Fines,
	} {
		res := fn(ctx, &bot.Request{})
		assert.Equal(t, bot.FlowAuthentication, res.Redirect, name)
		assert.Equal(t, name, res.Updates[session.KeyPendingTag], name)
	}
	assert.Empty(t, backend.calls)
}

func TestCheckouts(t *testing.T) {
	t.Parallel()

	t.Run("none", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(&stubBackend{}, nil)
		res := h.Checkouts(context.Background(), signedIn(nil))
		assert.Contains(t, res.Message, "don't have any books")
		assert.Nil(t, res.Rich)
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(&stubBackend{checkouts: []library.Checkout{
			{ID: "1", BookID: "1", Title: "The Great Gatsby", DueDate: "2026-10-24", Renewable: true},
		}}, nil)
		res := h.Checkouts(context.Background(), signedIn(nil))
		assert.Equal(t, "You have 1 book checked out.", res.Message)
		require.NotNil(t, res.Rich)
		require.Len(t, res.Rich.Items, 1)
		assert.Equal(t, "Due 2026-10-24", res.Rich.Items[0].Subtitle)
		assert.Contains(t, res.Updates, session.KeyCheckouts)
	})
}

func TestRenew(t *testing.T) {
	t.Parallel()

	checkouts := []library.Checkout{
		{BookID: "1", Title: "The Great Gatsby", DueDate: "2026-10-24", Renewable: true},
		{BookID: "2", Title: "Dune", DueDate: "2026-10-20", Renewable: false},
	}

	t.Run("no book lists renewable only", func(t *testing.T) {
		t.Parallel()
		backend := &stubBackend{checkouts: checkouts}
		h := NewHandler(backend, nil)

		res := h.Renew(context.Background(), signedIn(nil))

		assert.Equal(t, "Which book would you like to renew?", res.Message)
		require.NotNil(t, res.Rich)
		require.Len(t, res.Rich.Items, 1)
		assert.Equal(t, "1", res.Rich.Items[0].ID)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		backend := &stubBackend{action: library.ActionResult{Success: true, Title: "The Great Gatsby", NewDueDate: "2026-11-07"}}
		h := NewHandler(backend, nil)

		res := h.Renew(context.Background(), signedIn(session.Params{"book_id": "1"}))

		assert.Equal(t, "The Great Gatsby has been renewed. The new due date is 2026-11-07.", res.Message)
		assert.Contains(t, res.Updates, "book_id")
		assert.Nil(t, res.Updates["book_id"])
		assert.Equal(t, []call{{op: "renew", userID: "user123", id: "1"}}, backend.calls)
	})

	t.Run("failure with reason", func(t *testing.T) {
		t.Parallel()
		backend := &stubBackend{action: library.ActionResult{Success: false, Message: "Maximum renewals reached."}}
		h := NewHandler(backend, nil)

		res := h.Renew(context.Background(), signedIn(session.Params{"book_id": "1"}))

		assert.Equal(t, "Sorry, I couldn't renew that book. Maximum renewals reached.", res.Message)
	})

	t.Run("failure without reason", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(&stubBackend{}, nil)
		res := h.Renew(context.Background(), signedIn(session.Params{"book_id": "1"}))
		assert.Contains(t, res.Message, "Please try again.")
	})
}

func TestHolds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   session.Params
		wantOp   string
		contains string
	}{
		{"book id places hold", session.Params{"book_id": "5"}, "hold", "A hold has been placed on The Hobbit"},
		{"selection places hold", session.Params{"selected_item_id": "5"}, "hold", "notify you"},
		{"view action lists holds", session.Params{"book_id": "5", "action": "view"}, "holds", "You have 1 hold."},
		{"no book lists holds", nil, "holds", "Position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			backend := &stubBackend{
				action: library.ActionResult{Success: true, Title: "The Hobbit", HoldID: "hold123"},
				holds:  []library.Hold{{BookID: "2", Title: "To Kill a Mockingbird", Position: 3}},
			}
			h := NewHandler(backend, nil)

			res := h.Holds(context.Background(), signedIn(tt.params))

			require.Len(t, backend.calls, 1)
			assert.Equal(t, tt.wantOp, backend.calls[0].op)
			text := res.Message
			if res.Rich != nil && len(res.Rich.Items) > 0 {
				text += " " + res.Rich.Items[0].Subtitle
			}
			assert.Contains(t, text, tt.contains)
		})
	}
}

func TestHolds_SessionLeftoversDoNotPlaceHolds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		intent  string
		session session.Params
		want    []call
	}{
		{
			name:    "earlier list tap",
			session: session.Params{"selected_item_id": "3"},
			want:    []call{{op: "holds", userID: "user123"}},
		},
		{
			name:    "book shown earlier, patron asks to view",
			intent:  "ViewHolds",
			session: session.Params{session.KeySelectedBookID: "3"},
			want:    []call{{op: "holds", userID: "user123"}},
		},
		{
			name:    "leftover place action",
			session: session.Params{"action": "place", session.KeySelectedBookID: "3"},
			want:    []call{{op: "holds", userID: "user123"}},
		},
		{
			name:    "book shown earlier, patron asks to place",
			intent:  "PlaceHold",
			session: session.Params{session.KeySelectedBookID: "3"},
			want:    []call{{op: "hold", userID: "user123", id: "3"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			backend := &stubBackend{action: library.ActionResult{Success: true, Title: "1984"}}
			h := NewHandler(backend, nil)

			sess := session.Params{session.KeyUserID: "user123"}
			for k, v := range tt.session {
				sess[k] = v
			}
			h.Holds(context.Background(), &bot.Request{Intent: tt.intent, Session: sess})

			assert.Equal(t, tt.want, backend.calls)
		})
	}
}

func TestHolds_ClearsActionSlots(t *testing.T) {
	t.Parallel()

	t.Run("after listing", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(&stubBackend{}, nil)
		res := h.Holds(context.Background(), signedIn(session.Params{"book_id": "5", "action": "view"}))
		assert.Equal(t, "You don't have any holds right now.", res.Message)
		assert.Contains(t, res.Updates, "action")
		assert.Nil(t, res.Updates["action"])
		assert.Nil(t, res.Updates["book_id"])
	})

	t.Run("after rejection", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(&stubBackend{action: library.ActionResult{Message: "Hold limit reached."}}, nil)
		res := h.Holds(context.Background(), signedIn(session.Params{"book_id": "5"}))
		assert.Equal(t, "Sorry, I couldn't place that hold. Hold limit reached.", res.Message)
		assert.Contains(t, res.Updates, "book_id")
		assert.Nil(t, res.Updates["book_id"])
	})
}

func TestRenew_RejectionClearsBook(t *testing.T) {
	t.Parallel()
	h := NewHandler(&stubBackend{}, nil)

	res := h.Renew(context.Background(), signedIn(session.Params{"book_id": "1"}))

	assert.Contains(t, res.Updates, "book_id")
	assert.Nil(t, res.Updates["book_id"])
}

func TestRenew_StaleSelectionIsNotRenewed(t *testing.T) {
	t.Parallel()
	backend := &stubBackend{checkouts: []library.Checkout{{BookID: "1", Title: "Dune", Renewable: true}}}
	h := NewHandler(backend, nil)

	req := &bot.Request{Session: session.Params{session.KeyUserID: "user123", "selected_item_id": "1"}}
	res := h.Renew(context.Background(), req)

	assert.Equal(t, "Which book would you like to renew?", res.Message)
	assert.Equal(t, []call{{op: "checkouts", userID: "user123"}}, backend.calls)
}

func TestFines(t *testing.T) {
	t.Parallel()

	fines := []library.Fine{
		{ID: "fine1", Description: "Overdue: The Great Gatsby", Amount: 2.50, DueDate: "2024-01-15"},
		{ID: "fine2", Description: "Damaged cover", Amount: 5},
	}

	t.Run("view lists with total", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(&stubBackend{fines: fines}, nil)

		res := h.Fines(context.Background(), signedIn(nil))

		assert.Equal(t, "You have 2 outstanding fines totaling $7.50.", res.Message)
		require.NotNil(t, res.Rich)
		assert.Equal(t, "$2.50 due 2024-01-15", res.Rich.Items[0].Subtitle)
	})

	t.Run("no fines", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(&stubBackend{}, nil)
		res := h.Fines(context.Background(), signedIn(nil))
		assert.Contains(t, res.Message, "Good news")
	})

	t.Run("pay asks for fine id", func(t *testing.T) {
		t.Parallel()
		backend := &stubBackend{}
		h := NewHandler(backend, nil)
		res := h.Fines(context.Background(), signedIn(session.Params{"action": "pay"}))
		assert.Equal(t, "Which fine would you like to pay?", res.Message)
		assert.Empty(t, backend.calls)
	})

	t.Run("pay asks for amount", func(t *testing.T) {
		t.Parallel()
		backend := &stubBackend{}
		h := NewHandler(backend, nil)
		req := signedIn(session.Params{"fine_id": "fine1"})
		req.Intent = "PayFine"
		res := h.Fines(context.Background(), req)
		assert.Equal(t, "How much would you like to pay toward fine fine1?", res.Message)
		assert.Empty(t, backend.calls)
	})

	t.Run("pay prompt marks the payment pending", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(&stubBackend{}, nil)
		req := signedIn(session.Params{"fine_id": "fine1"})
		req.Intent = "PayFine"
		res := h.Fines(context.Background(), req)
		assert.Equal(t, true, res.Updates[session.KeyPaymentPending])
		assert.Equal(t, "fine1", res.Updates["fine_id"])
	})

	t.Run("pending payment continues with the amount", func(t *testing.T) {
		t.Parallel()
		backend := &stubBackend{action: library.ActionResult{Success: true, TransactionID: "TXN123"}}
		h := NewHandler(backend, nil)

		res := h.Fines(context.Background(), &bot.Request{
			Params:  session.Params{"amount": 2.5},
			Session: session.Params{session.KeyUserID: "user123", session.KeyPaymentPending: true, "fine_id": "fine1"},
		})

		assert.Equal(t, "Payment of $2.50 received for fine fine1. Transaction ID: TXN123.", res.Message)
		assert.Equal(t, []call{{op: "pay", userID: "user123", id: "fine1", amount: 2.5}}, backend.calls)
	})

	t.Run("leftover pay slots only list fines", func(t *testing.T) {
		t.Parallel()
		backend := &stubBackend{fines: fines}
		h := NewHandler(backend, nil)

		res := h.Fines(context.Background(), &bot.Request{Session: session.Params{
			session.KeyUserID: "user123", "action": "pay", "fine_id": "fine1", "amount": 2.5,
		}})

		assert.Equal(t, "You have 2 outstanding fines totaling $7.50.", res.Message)
		assert.Equal(t, []call{{op: "fines", userID: "user123"}}, backend.calls)
	})

	t.Run("rejected payment does not replay", func(t *testing.T) {
		t.Parallel()
		backend := &stubBackend{fines: fines, action: library.ActionResult{Message: "Card declined."}}
		h := NewHandler(backend, nil)

		first := signedIn(session.Params{"action": "pay", "fine_id": "fine1", "amount": 2.5})
		res := h.Fines(context.Background(), first)
		assert.Equal(t, "Sorry, I couldn't process that payment. Card declined.", res.Message)

		next := &bot.Request{Session: session.Merge(session.Merge(first.Session, first.Params), res.Updates)}
		res = h.Fines(context.Background(), next)

		assert.Equal(t, "You have 2 outstanding fines totaling $7.50.", res.Message)
		assert.Equal(t, []call{
			{op: "pay", userID: "user123", id: "fine1", amount: 2.5},
			{op: "fines", userID: "user123"},
		}, backend.calls)
	})

	t.Run("viewing clears a pending payment", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(&stubBackend{fines: fines}, nil)
		res := h.Fines(context.Background(), signedIn(session.Params{"action": "view", "fine_id": "fine1"}))
		for _, key := range []string{"action", "fine_id", "amount", session.KeyPaymentPending} {
			assert.Contains(t, res.Updates, key)
			assert.Nil(t, res.Updates[key], key)
		}
	})

	t.Run("pay succeeds", func(t *testing.T) {
		t.Parallel()
		backend := &stubBackend{action: library.ActionResult{Success: true, TransactionID: "TXN123", Amount: 2.5}}
		h := NewHandler(backend, nil)

		res := h.Fines(context.Background(), signedIn(session.Params{"action": "pay", "fine_id": "fine1", "amount": 2.5}))

		assert.Equal(t, "Payment of $2.50 received for fine fine1. Transaction ID: TXN123.", res.Message)
		assert.Equal(t, []call{{op: "pay", userID: "user123", id: "fine1", amount: 2.5}}, backend.calls)
	})
}

func TestNormalizeAction(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ActionView, normalizeAction(" Show "))
	assert.Equal(t, ActionPay, normalizeAction("payment"))
	assert.Equal(t, "", normalizeAction(""))
	assert.Equal(t, ActionPlace, normalizeAction("Hold"))
	assert.Equal(t, "cancel", normalizeAction("Cancel"))
}
