package library

import (
	"context"
	"strings"
	"time"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/metrics"
)

// SearchBooks returns catalog entries matching every non-empty field of q.
func (c *Client) SearchBooks(ctx context.Context, q BookQuery) []Book {
	query := nonEmpty(
		"title", q.Title,
		"author", q.Author,
		"isbn", q.ISBN,
		"genre", q.Genre,
		"subject", q.Subject,
	)
	const path = "/books/search"

	return call(ctx, c, OpSearchBooks,
		shared(c, OpSearchBooks, cacheKey(path, query), func(ctx context.Context) ([]Book, error) {
			var env booksEnvelope
			err := c.get(ctx, OpSearchBooks, path, query, &env)
			return env.Books, err
		}),
		func(ctx context.Context) ([]Book, error) {
			return c.offlineSearch(ctx, q)
		},
	)
}

// GetBook returns one catalog entry, or nil when it does not exist.
func (c *Client) GetBook(ctx context.Context, id string) *Book {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	const path = "/books/{bookID}"
	ids := map[string]string{"bookID": id}

	return call(ctx, c, OpGetBook,
		shared(c, OpGetBook, resourceKey(path, ids), func(ctx context.Context) (*Book, error) {
			var env bookEnvelope
			err := c.getResource(ctx, OpGetBook, path, ids, &env)
			return env.Book, err
		}),
		func(ctx context.Context) (*Book, error) {
			return c.offlineBook(ctx, id)
		},
	)
}

// Authenticate checks patron credentials. Offline credentials are accepted
// only when the client is configured offline. Online, a 401 or 403 is a
// rejection and an outage signs nobody in.
func (c *Client) Authenticate(ctx context.Context, userID, password string) AuthResult {
	if c.cfg.UseOffline() {
		c.metrics.RecordBackend(OpAuthenticate, metrics.OutcomeOffline, 0)
		return c.offlineAuth(userID, password)
	}

	body := map[string]string{"user_id": userID, "password": password}
	start := time.Now()
	var res AuthResult
	err := c.post(ctx, OpAuthenticate, "/auth/login", body, &res)
	duration := time.Since(start).Seconds()

	switch {
	case err == nil:
	case isAuthRejection(err):
		res = AuthResult{Success: false, Message: "Invalid credentials"}
	default:
		c.logger.WarnContext(ctx, "Library API unavailable, refusing sign-in",
			"operation", OpAuthenticate,
			"error", err,
		)
		c.metrics.RecordBackend(OpAuthenticate, metrics.OutcomeError, duration)
		return AuthResult{Success: false, Message: AuthUnavailableMessage, Unavailable: true}
	}

	c.metrics.RecordBackend(OpAuthenticate, metrics.OutcomeSuccess, duration)
	return res
}

// GetAccount returns the patron profile.
func (c *Client) GetAccount(ctx context.Context, userID string) *Account {
	const path = "/users/{userID}"
	ids := map[string]string{"userID": userID}

	return call(ctx, c, OpGetAccount,
		shared(c, OpGetAccount, resourceKey(path, ids), func(ctx context.Context) (*Account, error) {
			var env accountEnvelope
			err := c.getResource(ctx, OpGetAccount, path, ids, &env)
			return env.User, err
		}),
		func(context.Context) (*Account, error) {
			return c.offlineAccount(userID), nil
		},
	)
}

// Checkouts lists the patron's borrowed items.
func (c *Client) Checkouts(ctx context.Context, userID string) []Checkout {
	const path = "/users/{userID}/checkouts"
	ids := map[string]string{"userID": userID}

	return call(ctx, c, OpCheckouts,
		shared(c, OpCheckouts, resourceKey(path, ids), func(ctx context.Context) ([]Checkout, error) {
			var env checkoutsEnvelope
			err := c.getResource(ctx, OpCheckouts, path, ids, &env)
			return env.Checkouts, err
		}),
		func(context.Context) ([]Checkout, error) {
			return c.offlineCheckouts(), nil
		},
	)
}

// Holds lists the patron's queued holds.
func (c *Client) Holds(ctx context.Context, userID string) []Hold {
	const path = "/users/{userID}/holds"
	ids := map[string]string{"userID": userID}

	return call(ctx, c, OpHolds,
		shared(c, OpHolds, resourceKey(path, ids), func(ctx context.Context) ([]Hold, error) {
			var env holdsEnvelope
			err := c.getResource(ctx, OpHolds, path, ids, &env)
			return env.Holds, err
		}),
		func(context.Context) ([]Hold, error) {
			return c.offlineHolds(), nil
		},
	)
}

// Fines lists the patron's outstanding fines.
func (c *Client) Fines(ctx context.Context, userID string) []Fine {
	const path = "/users/{userID}/fines"
	ids := map[string]string{"userID": userID}

	return call(ctx, c, OpFines,
		shared(c, OpFines, resourceKey(path, ids), func(ctx context.Context) ([]Fine, error) {
			var env finesEnvelope
			err := c.getResource(ctx, OpFines, path, ids, &env)
			return env.Fines, err
		}),
		func(context.Context) ([]Fine, error) {
			return c.offlineFines(), nil
		},
	)
}

// RenewBook extends a checkout.
func (c *Client) RenewBook(ctx context.Context, userID, bookID string) ActionResult {
	body := map[string]string{"user_id": userID, "book_id": bookID}

	return call(ctx, c, OpRenewBook,
		func(ctx context.Context) (ActionResult, error) {
			var res ActionResult
			err := c.post(ctx, OpRenewBook, "/checkouts/renew", body, &res)
			return res, err
		},
		func(ctx context.Context) (ActionResult, error) {
			return c.offlineRenew(ctx, bookID), nil
		},
	)
}

// PlaceHold queues the patron for a book.
func (c *Client) PlaceHold(ctx context.Context, userID, bookID string) ActionResult {
	body := map[string]string{"user_id": userID, "book_id": bookID}

	return call(ctx, c, OpPlaceHold,
		func(ctx context.Context) (ActionResult, error) {
			var res ActionResult
			err := c.post(ctx, OpPlaceHold, "/holds", body, &res)
			return res, err
		},
		func(ctx context.Context) (ActionResult, error) {
			return c.offlineHold(ctx, bookID), nil
		},
	)
}

// PayFine settles a fine.
func (c *Client) PayFine(ctx context.Context, userID, fineID string, amount float64) ActionResult {
	body := map[string]any{"user_id": userID, "fine_id": fineID, "amount": amount}

	return call(ctx, c, OpPayFine,
		func(ctx context.Context) (ActionResult, error) {
			var res ActionResult
			err := c.post(ctx, OpPayFine, "/fines/pay", body, &res)
			return res, err
		},
		func(context.Context) (ActionResult, error) {
			return ActionResult{Success: true, TransactionID: "TXN123", Amount: amount}, nil
		},
	)
}

// AvailableRooms lists rooms free for the slot.
func (c *Client) AvailableRooms(ctx context.Context, q RoomQuery) []Room {
	query := nonEmpty("date", q.Date, "time", q.Time, "duration", q.Duration)
	const path = "/rooms/available"

	return call(ctx, c, OpAvailableRooms,
		shared(c, OpAvailableRooms, cacheKey(path, query), func(ctx context.Context) ([]Room, error) {
			var env roomsEnvelope
			err := c.get(ctx, OpAvailableRooms, path, query, &env)
			return env.Rooms, err
		}),
		func(ctx context.Context) ([]Room, error) {
			return c.store.ListRooms(ctx)
		},
	)
}

// BookRoom reserves a room.
func (c *Client) BookRoom(ctx context.Context, b RoomBooking) ActionResult {
	return call(ctx, c, OpBookRoom,
		func(ctx context.Context) (ActionResult, error) {
			var res ActionResult
			err := c.post(ctx, OpBookRoom, "/rooms/book", b, &res)
			return res, err
		},
		func(ctx context.Context) (ActionResult, error) {
			return c.offlineRoomBooking(ctx, b.RoomID), nil
		},
	)
}

// EquipmentAvailable reports whether the equipment can be reserved.
func (c *Client) EquipmentAvailable(ctx context.Context, r EquipmentRequest) bool {
	query := nonEmpty("equipment_type", r.Type, "date", r.Date, "duration", r.Duration)
	const path = "/equipment/availability"

	return call(ctx, c, OpEquipmentAvailable,
		shared(c, OpEquipmentAvailable, cacheKey(path, query), func(ctx context.Context) (bool, error) {
			var env availabilityEnvelope
			err := c.get(ctx, OpEquipmentAvailable, path, query, &env)
			return env.Available, err
		}),
		func(context.Context) (bool, error) {
			return true, nil
		},
	)
}

// ReserveEquipment reserves equipment for the patron.
func (c *Client) ReserveEquipment(ctx context.Context, r EquipmentRequest) ActionResult {
	return call(ctx, c, OpReserveEquipment,
		func(ctx context.Context) (ActionResult, error) {
			var res ActionResult
			err := c.post(ctx, OpReserveEquipment, "/equipment/reserve", r, &res)
			return res, err
		},
		func(context.Context) (ActionResult, error) {
			kind := r.Type
			if kind == "" {
				kind = "laptop"
			}
			return ActionResult{Success: true, ConfirmationID: "EQ123", EquipmentType: kind}, nil
		},
	)
}

// UpcomingEvents lists events from today on.
func (c *Client) UpcomingEvents(ctx context.Context) []Event {
	const path = "/events/upcoming"

	return call(ctx, c, OpUpcomingEvents,
		shared(c, OpUpcomingEvents, path, func(ctx context.Context) ([]Event, error) {
			var env eventsEnvelope
			err := c.get(ctx, OpUpcomingEvents, path, nil, &env)
			return env.Events, err
		}),
		func(ctx context.Context) ([]Event, error) {
			return c.store.ListEvents(ctx, c.today())
		},
	)
}

// RegisterEvent signs the patron up for an event.
func (c *Client) RegisterEvent(ctx context.Context, userID, eventID string) ActionResult {
	body := map[string]string{"user_id": userID, "event_id": eventID}

	return call(ctx, c, OpRegisterEvent,
		func(ctx context.Context) (ActionResult, error) {
			var res ActionResult
			err := c.post(ctx, OpRegisterEvent, "/events/register", body, &res)
			return res, err
		},
		func(ctx context.Context) (ActionResult, error) {
			return c.offlineRegistration(ctx, eventID), nil
		},
	)
}
