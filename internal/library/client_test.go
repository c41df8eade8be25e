package library

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/config"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/metrics"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/storage"
)

var fixedNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(context.Background(), fixedNow)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func onlineConfig(baseURL string) config.LibraryConfig {
	return config.LibraryConfig{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Timeout:    2 * time.Second,
		MaxRetries: 0,
	}
}

func newTestClient(t *testing.T, cfg config.LibraryConfig) (*Client, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	c := NewClient(cfg, newStore(t),
		WithMetrics(m),
		WithClock(func() time.Time { return fixedNow }),
	)
	return c, m
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func backendCount(m *metrics.Metrics, op, outcome string) float64 {
	return testutil.ToFloat64(m.BackendRequestsTotal.WithLabelValues(op, outcome))
}

func TestClient_OfflineWithoutAPIKey(t *testing.T) {
	t.Parallel()

	c, m := newTestClient(t, config.LibraryConfig{BaseURL: "http://127.0.0.1:1"})
	require.True(t, c.Offline())

	books := c.SearchBooks(context.Background(), BookQuery{Title: "hobbit"})
	require.Len(t, books, 1)
	assert.Equal(t, "The Hobbit", books[0].Title)
	assert.InDelta(t, 1, backendCount(m, OpSearchBooks, metrics.OutcomeOffline), 0)
}

func TestClient_SearchBooksOnline(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/search", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "Dune", r.URL.Query().Get("title"))
		assert.False(t, r.URL.Query().Has("author"), "empty filters are not sent")
		writeJSON(t, w, map[string]any{
			"books": []map[string]any{{"id": "b-1", "title": "Dune", "author": "Frank Herbert"}},
		})
	}))
	defer srv.Close()

	c, m := newTestClient(t, onlineConfig(srv.URL))

	books := c.SearchBooks(context.Background(), BookQuery{Title: "Dune"})
	require.Len(t, books, 1)
	assert.Equal(t, "b-1", books[0].ID)
	assert.InDelta(t, 1, backendCount(m, OpSearchBooks, metrics.OutcomeSuccess), 0)
}

func TestClient_FallbackOnServerError(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, m := newTestClient(t, onlineConfig(srv.URL))

	checkouts := c.Checkouts(context.Background(), "user123")
	require.Len(t, checkouts, 1)
	assert.Equal(t, "The Great Gatsby", checkouts[0].Title)
	assert.Equal(t, "2026-10-24", checkouts[0].DueDate)
	assert.Equal(t, int32(1), hits.Load())
	assert.InDelta(t, 1, backendCount(m, OpCheckouts, metrics.OutcomeFallback), 0)
}

func TestClient_FallbackOnUnreachableBackend(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	c, _ := newTestClient(t, onlineConfig(baseURL))
	ctx := context.Background()

	tests := []struct {
		name  string
		check func(t *testing.T)
	}{
		{"renew", func(t *testing.T) {
			res := c.RenewBook(ctx, "user123", "1")
			assert.True(t, res.Success)
			assert.Equal(t, "The Great Gatsby", res.Title)
			assert.Equal(t, "2026-11-07", res.NewDueDate)
		}},
		{"hold", func(t *testing.T) {
			res := c.PlaceHold(ctx, "user123", "5")
			assert.True(t, res.Success)
			assert.Equal(t, "hold123", res.HoldID)
			assert.Equal(t, "The Hobbit", res.Title)
		}},
		{"pay fine", func(t *testing.T) {
			res := c.PayFine(ctx, "user123", "fine1", 2.5)
			assert.Equal(t, "TXN123", res.TransactionID)
			assert.InDelta(t, 2.5, res.Amount, 0.001)
		}},
		{"rooms", func(t *testing.T) {
			rooms := c.AvailableRooms(ctx, RoomQuery{Date: "2026-10-20", Time: "14:00", Duration: "2 hours"})
			assert.Len(t, rooms, 2)
		}},
		{"book room", func(t *testing.T) {
			res := c.BookRoom(ctx, RoomBooking{UserID: "user123", RoomID: "room2"})
			assert.Equal(t, "BOOK123", res.ConfirmationID)
			assert.Equal(t, "Study Room B", res.RoomName)
		}},
		{"equipment", func(t *testing.T) {
			req := EquipmentRequest{Type: "projector", Date: "2026-10-20", Duration: "1 day"}
			assert.True(t, c.EquipmentAvailable(ctx, req))
			res := c.ReserveEquipment(ctx, req)
			assert.Equal(t, "EQ123", res.ConfirmationID)
			assert.Equal(t, "projector", res.EquipmentType)
		}},
		{"events", func(t *testing.T) {
			events := c.UpcomingEvents(ctx)
			require.Len(t, events, 1)
			assert.Equal(t, "2026-10-20", events[0].Date)
			res := c.RegisterEvent(ctx, "user123", events[0].ID)
			assert.Equal(t, "EVENT123", res.ConfirmationID)
			assert.Equal(t, "Book Club Meeting", res.EventTitle)
		}},
		{"account", func(t *testing.T) {
			acct := c.GetAccount(ctx, "user42")
			require.NotNil(t, acct)
			assert.Equal(t, "user42", acct.UserID)
			assert.Equal(t, "M123456", acct.MemberID)
		}},
		{"unknown book", func(t *testing.T) {
			assert.Nil(t, c.GetBook(ctx, "does-not-exist"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t)
		})
	}
}

func TestClient_AuthenticateRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, m := newTestClient(t, onlineConfig(srv.URL))

	res := c.Authenticate(context.Background(), "user123", "wrong")
	assert.False(t, res.Success, "a credential rejection must not fall back to offline success")
	assert.InDelta(t, 1, backendCount(m, OpAuthenticate, metrics.OutcomeSuccess), 0)
}

func TestClient_AuthenticateDoesNotFallBackOnline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"unreachable", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var srv *httptest.Server
			if tt.handler != nil {
				srv = httptest.NewServer(tt.handler)
				defer srv.Close()
			} else {
				srv = httptest.NewServer(http.NotFoundHandler())
				srv.Close()
			}

			c, m := newTestClient(t, onlineConfig(srv.URL))

			res := c.Authenticate(context.Background(), "anyone", "anything")
			assert.False(t, res.Success)
			assert.True(t, res.Unavailable)
			assert.Equal(t, AuthUnavailableMessage, res.Message)
			assert.InDelta(t, 1, backendCount(m, OpAuthenticate, metrics.OutcomeError), 0)
			assert.InDelta(t, 0, backendCount(m, OpAuthenticate, metrics.OutcomeFallback), 0)
		})
	}
}

func TestClient_EscapesIDsInPaths(t *testing.T) {
	t.Parallel()

	var paths []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.EscapedPath())
		mu.Unlock()
		assert.Empty(t, r.URL.RawQuery, "an id must not inject a query")
		writeJSON(t, w, map[string]any{})
	}))
	defer srv.Close()

	c, _ := newTestClient(t, onlineConfig(srv.URL))
	ctx := context.Background()

	c.GetAccount(ctx, "u1/fines?admin=1")
	c.Checkouts(ctx, "u1/../u2")
	c.GetBook(ctx, "1/../../users/u2")

	assert.Equal(t, []string{
		"/users/u1%2Ffines%3Fadmin=1",
		"/users/u1%2F..%2Fu2/checkouts",
		"/books/1%2F..%2F..%2Fusers%2Fu2",
	}, paths)
}

func TestClient_PostsJSONBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "/fines/pay", r.URL.Path)
		assert.Equal(t, "user123", body["user_id"])
		assert.Equal(t, "fine9", body["fine_id"])
		assert.InDelta(t, 4.75, body["amount"], 0.001)
		writeJSON(t, w, map[string]any{"success": false, "message": "Card declined"})
	}))
	defer srv.Close()

	c, _ := newTestClient(t, onlineConfig(srv.URL))

	res := c.PayFine(context.Background(), "user123", "fine9", 4.75)
	assert.False(t, res.Success)
	assert.Equal(t, "Card declined", res.Reason())
}

func TestActionResult_Reason(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Please try again.", ActionResult{}.Reason())
	assert.Equal(t, "Not renewable", ActionResult{Message: "Not renewable"}.Reason())
}

func TestOfflineAuth(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, config.LibraryConfig{Offline: true, APIKey: "k"})
	ctx := context.Background()

	ok := c.Authenticate(ctx, "user123", "secret")
	assert.True(t, ok.Success)
	assert.Equal(t, "John Doe", ok.Name)

	denied := c.Authenticate(ctx, "user123", "")
	assert.False(t, denied.Success)
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/books/1", cacheKey("/books/1", nil))
	assert.Equal(t, "/books/search?author=Lee&title=Mockingbird",
		cacheKey("/books/search", map[string]string{"title": "Mockingbird", "author": "Lee"}))
}

func TestResourceKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/users/user123/holds", resourceKey("/users/{userID}/holds", map[string]string{"userID": "user123"}))
	assert.Equal(t, "/books/a%2Fb", resourceKey("/books/{bookID}", map[string]string{"bookID": "a/b"}))
}
