package reservation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/bot"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/library"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/session"
)

type stubBackend struct {
	rooms      []library.Room
	available  bool
	events     []library.Event
	action     library.ActionResult
	roomQuery  []library.RoomQuery
	bookings   []library.RoomBooking
	equipment  []library.EquipmentRequest
	registered []string
}

func (s *stubBackend) AvailableRooms(_ context.Context, q library.RoomQuery) []library.Room {
	s.roomQuery = append(s.roomQuery, q)
	return s.rooms
}

func (s *stubBackend) BookRoom(_ context.Context, b library.RoomBooking) library.ActionResult {
	s.bookings = append(s.bookings, b)
	return s.action
}

func (s *stubBackend) EquipmentAvailable(_ context.Context, r library.EquipmentRequest) bool {
	s.equipment = append(s.equipment, r)
	return s.available
}

func (s *stubBackend) ReserveEquipment(_ context.Context, r library.EquipmentRequest) library.ActionResult {
	s.equipment = append(s.equipment, r)
	return s.action
}

func (s *stubBackend) UpcomingEvents(context.Context) []library.Event {
	return s.events
}

func (s *stubBackend) RegisterEvent(_ context.Context, _, eventID string) library.ActionResult {
	s.registered = append(s.registered, eventID)
	return s.action
}

var testRooms = []library.Room{
	{ID: "room1", Name: "Study Room A", Capacity: 4, Amenities: []string{"Whiteboard", "Projector"}},
	{ID: "room2", Name: "Study Room B", Capacity: 6},
}

func TestBookRoom_IncompleteSlotPromptsOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params session.Params
	}{
		{"nothing", nil},
		{"missing duration", session.Params{"date": "2026-10-20", "time": "14:00"}},
		{"missing date", session.Params{"time": "14:00", "duration": "2 hours"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			backend := &stubBackend{rooms: testRooms}
			h := NewHandler(backend, nil)

			res := h.BookRoom(context.Background(), &bot.Request{Params: tt.params})

			assert.Equal(t, RoomPrompt, res.Message)
			assert.Nil(t, res.Rich)
			assert.Empty(t, res.Updates)
			assert.Empty(t, backend.roomQuery, "no availability check for an incomplete slot")
		})
	}
}

func TestBookRoom_ListsAvailableRooms(t *testing.T) {
	t.Parallel()
	backend := &stubBackend{rooms: testRooms}
	h := NewHandler(backend, nil)

	res := h.BookRoom(context.Background(), &bot.Request{
		Params: session.Params{"date": "2026-10-20", "time": "14:00", "duration": "2 hours"},
	})

	assert.Equal(t, "I found 2 available rooms on 2026-10-20 at 14:00. Which one would you like?", res.Message)
	require.NotNil(t, res.Rich)
	assert.Equal(t, bot.RichList, res.Rich.Kind)
	assert.Equal(t, "Capacity 4 | Whiteboard, Projector", res.Rich.Items[0].Subtitle)
	assert.Contains(t, res.Updates, session.KeyAvailableRooms)
	assert.Equal(t, []library.RoomQuery{{Date: "2026-10-20", Time: "14:00", Duration: "2 hours"}}, backend.roomQuery)
}

func TestBookRoom_NoRooms(t *testing.T) {
	t.Parallel()
	h := NewHandler(&stubBackend{}, nil)

	res := h.BookRoom(context.Background(), &bot.Request{
		Params: session.Params{"date": "2026-10-20", "time": "14:00", "duration": "2 hours"},
	})

	assert.Contains(t, res.Message, "Sorry, no study rooms")
	assert.NotEmpty(t, res.Suggestions)
}

func TestBookRoom_BooksChosenRoom(t *testing.T) {
	t.Parallel()
	backend := &stubBackend{
		rooms:  testRooms,
		action: library.ActionResult{Success: true, ConfirmationID: "BOOK123", RoomName: "Study Room B"},
	}
	h := NewHandler(backend, nil)

	res := h.BookRoom(context.Background(), &bot.Request{
		Params:  session.Params{"selected_item_id": "room2"},
		Session: session.Params{"user_id": "user123", "date": "2026-10-20", "time": "14:00", "duration": "2 hours"},
	})

	assert.Equal(t, "Your room is booked! Study Room B on 2026-10-20 at 14:00 for 2 hours. Confirmation ID: BOOK123.", res.Message)
	require.Len(t, backend.bookings, 1)
	assert.Equal(t, library.RoomBooking{
		UserID: "user123", RoomID: "room2", Date: "2026-10-20", Time: "14:00", Duration: "2 hours",
	}, backend.bookings[0])
}

func TestBookRoom_AnonymousPatronSignsInBeforeBooking(t *testing.T) {
	t.Parallel()
	backend := &stubBackend{rooms: testRooms}
	h := NewHandler(backend, nil)

	res := h.BookRoom(context.Background(), &bot.Request{
		Params:  session.Params{"selected_item_id": "room2"},
		Session: session.Params{"date": "2026-10-20", "time": "14:00", "duration": "2 hours"},
	})

	assert.Equal(t, bot.FlowAuthentication, res.Redirect)
	assert.Empty(t, backend.bookings)
	assert.Equal(t, session.Params{
		session.KeyPendingTag:    bot.TagBookRoom,
		session.KeyLoginRequired: true,
		"room_id":                "room2",
		"date":                   "2026-10-20",
		"time":                   "14:00",
		"duration":               "2 hours",
	}, res.Updates)
}

func TestBookRoom_AnonymousPatronCanBrowse(t *testing.T) {
	t.Parallel()
	h := NewHandler(&stubBackend{rooms: testRooms}, nil)

	res := h.BookRoom(context.Background(), &bot.Request{
		Params: session.Params{"date": "2026-10-20", "time": "14:00", "duration": "2 hours"},
	})

	assert.Empty(t, res.Redirect)
	require.NotNil(t, res.Rich)
}

func TestBookRoom_StaleSelectionIgnored(t *testing.T) {
	t.Parallel()
	backend := &stubBackend{rooms: testRooms}
	h := NewHandler(backend, nil)

	h.BookRoom(context.Background(), &bot.Request{
		Params:  session.Params{"date": "2026-10-20", "time": "14:00", "duration": "1 hour"},
		Session: session.Params{"selected_item_id": "5"},
	})

	assert.Empty(t, backend.bookings)
}

func TestReserveEquipment(t *testing.T) {
	t.Parallel()

	t.Run("asks for type first", func(t *testing.T) {
		t.Parallel()
		backend := &stubBackend{}
		res := NewHandler(backend, nil).ReserveEquipment(context.Background(), &bot.Request{
			Params: session.Params{"date": "2026-10-20"},
		})
		assert.Contains(t, res.Message, "What type of equipment")
		assert.Empty(t, backend.equipment)
	})

	t.Run("then asks for date", func(t *testing.T) {
		t.Parallel()
		res := NewHandler(&stubBackend{}, nil).ReserveEquipment(context.Background(), &bot.Request{
			Params: session.Params{"equipment_type": "laptop"},
		})
		assert.Equal(t, "What date do you need the laptop?", res.Message)
	})

	t.Run("unavailable suggests another date", func(t *testing.T) {
		t.Parallel()
		res := NewHandler(&stubBackend{available: false}, nil).ReserveEquipment(context.Background(), &bot.Request{
			Params: session.Params{"equipment_type": "camera", "date": "2026-10-20"},
		})
		assert.Contains(t, res.Message, "different date")
	})

	t.Run("reserves with default duration", func(t *testing.T) {
		t.Parallel()
		backend := &stubBackend{
			available: true,
			action:    library.ActionResult{Success: true, ConfirmationID: "EQ123", EquipmentType: "projector"},
		}
		res := NewHandler(backend, nil).ReserveEquipment(context.Background(), &bot.Request{
			Params: session.Params{"equipment_type": "projector", "date": "2026-10-20"},
		})
		assert.Equal(t, "Your projector is reserved for 2026-10-20 (1 day). Confirmation ID: EQ123.", res.Message)
		require.Len(t, backend.equipment, 2)
		assert.Equal(t, DefaultEquipmentDuration, backend.equipment[1].Duration)
	})
}

func TestRegisterEvent(t *testing.T) {
	t.Parallel()

	events := []library.Event{{ID: "event1", Title: "Book Club Meeting", Date: "2026-10-20", Time: "6:00 PM"}}

	t.Run("lists events", func(t *testing.T) {
		t.Parallel()
		res := NewHandler(&stubBackend{events: events}, nil).RegisterEvent(context.Background(), &bot.Request{})
		require.NotNil(t, res.Rich)
		assert.Equal(t, "2026-10-20 at 6:00 PM", res.Rich.Items[0].Subtitle)
		assert.Contains(t, res.Updates, session.KeyUpcomingEvents)
	})

	t.Run("no events", func(t *testing.T) {
		t.Parallel()
		res := NewHandler(&stubBackend{}, nil).RegisterEvent(context.Background(), &bot.Request{})
		assert.Contains(t, res.Message, "no upcoming events")
	})

	t.Run("registers", func(t *testing.T) {
		t.Parallel()
		backend := &stubBackend{action: library.ActionResult{Success: true, ConfirmationID: "EVENT123", EventTitle: "Book Club Meeting"}}
		res := NewHandler(backend, nil).RegisterEvent(context.Background(), &bot.Request{
			Params:  session.Params{"event_id": "event1"},
			Session: session.Params{"user_id": "user123"},
		})
		assert.Equal(t, "You're registered for Book Club Meeting! Confirmation ID: EVENT123.", res.Message)
		assert.Equal(t, []string{"event1"}, backend.registered)
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()
		backend := &stubBackend{action: library.ActionResult{Message: "Event is full."}}
		res := NewHandler(backend, nil).RegisterEvent(context.Background(), &bot.Request{
			Params:  session.Params{"selected_item_id": "event1"},
			Session: session.Params{"user_id": "user123"},
		})
		assert.Equal(t, "Sorry, I couldn't register you for that event. Event is full.", res.Message)
	})

	t.Run("anonymous patron signs in first", func(t *testing.T) {
		t.Parallel()
		backend := &stubBackend{events: events}
		res := NewHandler(backend, nil).RegisterEvent(context.Background(), &bot.Request{
			Params: session.Params{"selected_item_id": "event1"},
		})
		assert.Equal(t, bot.FlowAuthentication, res.Redirect)
		assert.Equal(t, bot.TagRegisterEvent, res.Updates[session.KeyPendingTag])
		assert.Equal(t, "event1", res.Updates["event_id"])
		assert.Empty(t, backend.registered)
	})
}
