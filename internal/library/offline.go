package library

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/storage"
)

// Demo patron returned by offline account calls.
const (
	offlinePatronName  = "John Doe"
	offlinePatronEmail = "john.doe@example.com"
	offlineMemberID    = "M123456"
)

// Fixed confirmation identifiers keep offline replies deterministic.
const (
	offlineHoldID         = "hold123"
	offlineRoomBookingID  = "BOOK123"
	offlineRegistrationID = "EVENT123"
	offlineDefaultRoom    = "Study Room A"
	offlineDefaultEvent   = "Book Club Meeting"
)

const (
	offlineLoanDays    = 7
	offlineRenewalDays = 21
)

func (c *Client) today() string {
	return c.now().Format(time.DateOnly)
}

func (c *Client) daysFromNow(days int) string {
	return c.now().AddDate(0, 0, days).Format(time.DateOnly)
}

func (c *Client) offlineSearch(ctx context.Context, q BookQuery) ([]Book, error) {
	return c.store.SearchBooks(ctx, q)
}

func (c *Client) offlineBook(ctx context.Context, id string) (*Book, error) {
	book, err := c.store.GetBook(ctx, id)
	if stderrors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return book, err
}

// offlineAuth accepts any non-empty credential pair.
func (c *Client) offlineAuth(userID, password string) AuthResult {
	if userID == "" || password == "" {
		return AuthResult{Success: false, Message: "Invalid credentials"}
	}
	return AuthResult{
		Success: true,
		UserID:  userID,
		Name:    offlinePatronName,
		Email:   offlinePatronEmail,
	}
}

func (c *Client) offlineAccount(userID string) *Account {
	return &Account{
		UserID:        userID,
		Name:          offlinePatronName,
		Email:         offlinePatronEmail,
		MemberID:      offlineMemberID,
		Status:        "Active",
		CheckoutCount: 3,
		HoldCount:     1,
	}
}

func (c *Client) offlineCheckouts() []Checkout {
	return []Checkout{{
		ID:         "1",
		BookID:     "1",
		Title:      "The Great Gatsby",
		DueDate:    c.daysFromNow(offlineLoanDays),
		Renewable:  true,
		CoverImage: "https://example.com/covers/gatsby.jpg",
	}}
}

func (c *Client) offlineHolds() []Hold {
	return []Hold{{
		ID:         "1",
		BookID:     "2",
		Title:      "To Kill a Mockingbird",
		Position:   3,
		CoverImage: "https://example.com/covers/mockingbird.jpg",
	}}
}

func (c *Client) offlineFines() []Fine {
	return []Fine{{
		ID:          "fine1",
		Description: "Overdue: The Great Gatsby",
		Amount:      2.50,
		DueDate:     "2024-01-15",
	}}
}

func (c *Client) offlineRenew(ctx context.Context, bookID string) ActionResult {
	return ActionResult{
		Success:    true,
		Title:      c.bookTitle(ctx, bookID),
		NewDueDate: c.daysFromNow(offlineRenewalDays),
	}
}

func (c *Client) offlineHold(ctx context.Context, bookID string) ActionResult {
	return ActionResult{
		Success: true,
		HoldID:  offlineHoldID,
		Title:   c.bookTitle(ctx, bookID),
	}
}

func (c *Client) offlineRoomBooking(ctx context.Context, roomID string) ActionResult {
	name := offlineDefaultRoom
	if rooms, err := c.store.ListRooms(ctx); err == nil {
		for _, r := range rooms {
			if r.ID == roomID || r.Name == roomID {
				name = r.Name
				break
			}
		}
	}
	return ActionResult{Success: true, ConfirmationID: offlineRoomBookingID, RoomName: name}
}

func (c *Client) offlineRegistration(ctx context.Context, eventID string) ActionResult {
	title := offlineDefaultEvent
	if events, err := c.store.ListEvents(ctx, ""); err == nil {
		for _, e := range events {
			if e.ID == eventID {
				title = e.Title
				break
			}
		}
	}
	return ActionResult{Success: true, ConfirmationID: offlineRegistrationID, EventTitle: title}
}

// bookTitle resolves a catalog title, falling back to the id itself.
func (c *Client) bookTitle(ctx context.Context, bookID string) string {
	book, err := c.offlineBook(ctx, bookID)
	if err != nil || book == nil {
		return bookID
	}
	return book.Title
}
