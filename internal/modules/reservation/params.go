package reservation

import (
	"github.com/bansi-007/dialogflow-cx-usecase/internal/bot"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/cxutil"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/library"
)

// DefaultEquipmentDuration applies when the patron names no duration.
const DefaultEquipmentDuration = "1 day"

// RoomParams describe a study room request. Date, time and duration are
// all required; RoomID is set once the patron picks a room.
type RoomParams struct {
	UserID   string
	Date     string
	Time     string
	Duration string
	RoomID   string
}

// ParseRoomParams reads room slots. A list selection counts only on the
// turn it was made.
func ParseRoomParams(req *bot.Request) RoomParams {
	return RoomParams{
		UserID:   req.UserID(),
		Date:     req.String("date"),
		Time:     req.String("time"),
		Duration: req.String("duration"),
		RoomID:   firstNonEmpty(req.String("room_id", "room_name"), req.Params.String(cxutil.SelectedItemKey)),
	}
}

// Complete reports whether the slot is fully specified.
func (p RoomParams) Complete() bool {
	return p.Date != "" && p.Time != "" && p.Duration != ""
}

// Query converts the slot to an availability query.
func (p RoomParams) Query() library.RoomQuery {
	return library.RoomQuery{Date: p.Date, Time: p.Time, Duration: p.Duration}
}

// EquipmentParams describe an equipment reservation.
type EquipmentParams struct {
	UserID   string
	Type     string
	Date     string
	Duration string
}

// ParseEquipmentParams reads equipment slots.
func ParseEquipmentParams(req *bot.Request) EquipmentParams {
	p := EquipmentParams{
		UserID:   req.UserID(),
		Type:     req.String("equipment_type", "equipment"),
		Date:     req.String("date"),
		Duration: req.String("duration"),
	}
	if p.Duration == "" {
		p.Duration = DefaultEquipmentDuration
	}
	return p
}

// Request converts the params to a backend request.
func (p EquipmentParams) Request() library.EquipmentRequest {
	return library.EquipmentRequest{UserID: p.UserID, Type: p.Type, Date: p.Date, Duration: p.Duration}
}

// EventParams name the event to register for. An empty EventID means "list".
type EventParams struct {
	UserID  string
	EventID string
}

// ParseEventParams reads event slots.
func ParseEventParams(req *bot.Request) EventParams {
	return EventParams{
		UserID:  req.UserID(),
		EventID: firstNonEmpty(req.String("event_id"), req.Params.String(cxutil.SelectedItemKey)),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
