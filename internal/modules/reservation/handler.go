// Package reservation implements study room booking, equipment reservation
// and event registration.
package reservation

import (
	"context"
	"fmt"
	"strings"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/bot"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/cxutil"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/library"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/logger"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/session"
)

// ModuleName is the module identifier used in logs.
const ModuleName = "reservation"

// RoomPrompt asks for the whole slot at once.
const RoomPrompt = "When would you like to book a study room? Please tell me the date, start time and how long you need it."

// Backend is the slice of the library client this module needs.
type Backend interface {
	AvailableRooms(ctx context.Context, q library.RoomQuery) []library.Room
	BookRoom(ctx context.Context, b library.RoomBooking) library.ActionResult
	EquipmentAvailable(ctx context.Context, r library.EquipmentRequest) bool
	ReserveEquipment(ctx context.Context, r library.EquipmentRequest) library.ActionResult
	UpcomingEvents(ctx context.Context) []library.Event
	RegisterEvent(ctx context.Context, userID, eventID string) library.ActionResult
}

// Handler serves reservation turns.
type Handler struct {
	backend Backend
	logger  *logger.Logger
}

// NewHandler creates a reservation handler.
func NewHandler(backend Backend, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		backend: backend,
		logger:  log.WithModule(ModuleName),
	}
}

// BookRoom checks availability for the slot, then books the chosen room or
// lists the free ones. Browsing is anonymous; booking needs a patron.
func (h *Handler) BookRoom(ctx context.Context, req *bot.Request) *bot.Result {
	p := ParseRoomParams(req)
	if !p.Complete() {
		return bot.Prompt(RoomPrompt)
	}

	rooms := h.backend.AvailableRooms(ctx, p.Query())
	if len(rooms) == 0 {
		return bot.Text(
			fmt.Sprintf("Sorry, no study rooms are available on %s at %s for %s.", p.Date, p.Time, p.Duration),
			"Try another time", "Try another date",
		)
	}

	if p.RoomID != "" {
		if p.UserID == "" {
			return bot.LoginRedirect(req, bot.TagBookRoom)
		}
		res := h.backend.BookRoom(ctx, library.RoomBooking{
			UserID:   p.UserID,
			RoomID:   p.RoomID,
			Date:     p.Date,
			Time:     p.Time,
			Duration: p.Duration,
		})
		if !res.Success {
			h.logger.InfoContext(ctx, "Room booking rejected", "room_id", p.RoomID, "reason", res.Message)
			return bot.Failure("book that room", res.Reason()).
				WithUpdates(session.Params{"room_id": nil})
		}
		return bot.Text(
			fmt.Sprintf("Your room is booked! %s on %s at %s for %s. Confirmation ID: %s.",
				nonEmpty(res.RoomName, "Your study room"), p.Date, p.Time, p.Duration, res.ConfirmationID),
		).WithUpdates(session.Params{"room_id": nil, session.KeyAvailableRooms: nil})
	}

	cache := make([]map[string]any, len(rooms))
	for i, r := range rooms {
		cache[i] = map[string]any{"id": r.ID, "room_name": r.Name, "capacity": r.Capacity}
	}

	return bot.Text(
		fmt.Sprintf("I found %d available %s on %s at %s. Which one would you like?",
			len(rooms), pluralNoun(len(rooms), "room"), p.Date, p.Time),
	).
		WithList(cxutil.ToListItems(rooms, func(r library.Room) cxutil.ListItem {
			subtitle := fmt.Sprintf("Capacity %d", r.Capacity)
			if len(r.Amenities) > 0 {
				subtitle += " | " + strings.Join(r.Amenities, ", ")
			}
			return cxutil.ListItem{ID: r.ID, Title: r.Name, Subtitle: subtitle}
		})).
		WithUpdates(session.Params{session.KeyAvailableRooms: cache})
}

// ReserveEquipment asks for the type, then the date, then checks
// availability and reserves.
func (h *Handler) ReserveEquipment(ctx context.Context, req *bot.Request) *bot.Result {
	p := ParseEquipmentParams(req)
	if p.Type == "" {
		return bot.Prompt("What type of equipment would you like to reserve?", "Laptop", "Projector", "Camera")
	}
	if p.Date == "" {
		return bot.Prompt(fmt.Sprintf("What date do you need the %s?", p.Type))
	}

	if !h.backend.EquipmentAvailable(ctx, p.Request()) {
		return bot.Text(
			fmt.Sprintf("Sorry, no %s is available on %s. Would you like to try a different date?", p.Type, p.Date),
			"Try another date",
		)
	}

	res := h.backend.ReserveEquipment(ctx, p.Request())
	if !res.Success {
		h.logger.InfoContext(ctx, "Equipment reservation rejected", "equipment_type", p.Type, "reason", res.Message)
		return bot.Failure("reserve the "+p.Type, res.Reason())
	}

	return bot.Text(fmt.Sprintf("Your %s is reserved for %s (%s). Confirmation ID: %s.",
		nonEmpty(res.EquipmentType, p.Type), p.Date, p.Duration, res.ConfirmationID))
}

// RegisterEvent lists upcoming events, or registers a signed-in patron for
// the chosen one.
func (h *Handler) RegisterEvent(ctx context.Context, req *bot.Request) *bot.Result {
	p := ParseEventParams(req)

	if p.EventID == "" {
		events := h.backend.UpcomingEvents(ctx)
		if len(events) == 0 {
			return bot.Text("There are no upcoming events right now. Check back soon!")
		}

		cache := make([]map[string]any, len(events))
		for i, e := range events {
			cache[i] = map[string]any{"id": e.ID, "title": e.Title, "date": e.Date}
		}

		return bot.Text("Here are the upcoming events. Which one would you like to register for?").
			WithList(cxutil.ToListItems(events, func(e library.Event) cxutil.ListItem {
				when := e.Date
				if e.Time != "" {
					when += " at " + e.Time
				}
				return cxutil.ListItem{ID: e.ID, Title: e.Title, Subtitle: when, ImageURL: e.ImageURL}
			})).
			WithUpdates(session.Params{session.KeyUpcomingEvents: cache})
	}

	if p.UserID == "" {
		return bot.LoginRedirect(req, bot.TagRegisterEvent)
	}

	res := h.backend.RegisterEvent(ctx, p.UserID, p.EventID)
	if !res.Success {
		h.logger.InfoContext(ctx, "Event registration rejected", "event_id", p.EventID, "reason", res.Message)
		return bot.Failure("register you for that event", res.Reason()).
			WithUpdates(session.Params{"event_id": nil})
	}

	return bot.Text(
		fmt.Sprintf("You're registered for %s! Confirmation ID: %s.", nonEmpty(res.EventTitle, "the event"), res.ConfirmationID),
	).WithUpdates(session.Params{"event_id": nil})
}

func nonEmpty(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func pluralNoun(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}
