// Package bot routes Dialogflow CX fulfillment turns to domain handlers.
//
// A turn is resolved by fulfillment tag first, then by the active flow, then
// by keyword rules over the intent display name, and finally falls through to
// the default handler. Account actions pass through a login gate that detours
// anonymous patrons to the Authentication flow.
package bot

import "context"

// Fulfillment tags. Handler names in logs and metrics use the same strings.
const (
	TagSearchBooks      = "search-books"
	TagBookDetails      = "book-details"
	TagAccountInfo      = "account-info"
	TagCheckouts        = "account-checkouts"
	TagRenew            = "account-renew"
	TagHolds            = "account-holds"
	TagFines            = "account-fines"
	TagBookRoom         = "book-room"
	TagReserveEquipment = "reserve-equipment"
	TagRegisterEvent    = "register-event"
	TagAuthenticate     = "authenticate"
	TagHelp             = "help"
	TagDefault          = "default"
)

// HandlerFunc fulfills one turn. It must always return a result; missing
// slots are prompts, not errors.
type HandlerFunc func(ctx context.Context, req *Request) *Result

// Handlers binds every fulfillment tag to its implementation.
type Handlers struct {
	SearchBooks      HandlerFunc
	BookDetails      HandlerFunc
	AccountInfo      HandlerFunc
	Checkouts        HandlerFunc
	Renew            HandlerFunc
	Holds            HandlerFunc
	Fines            HandlerFunc
	BookRoom         HandlerFunc
	ReserveEquipment HandlerFunc
	RegisterEvent    HandlerFunc
	Authenticate     HandlerFunc
	Help             HandlerFunc
	Default          HandlerFunc
}

func (h Handlers) byTag() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		TagSearchBooks:      h.SearchBooks,
		TagBookDetails:      h.BookDetails,
		TagAccountInfo:      h.AccountInfo,
		TagCheckouts:        h.Checkouts,
		TagRenew:            h.Renew,
		TagHolds:            h.Holds,
		TagFines:            h.Fines,
		TagBookRoom:         h.BookRoom,
		TagReserveEquipment: h.ReserveEquipment,
		TagRegisterEvent:    h.RegisterEvent,
		TagAuthenticate:     h.Authenticate,
		TagHelp:             h.Help,
		TagDefault:          h.Default,
	}
}

// gatedParams lists, per account tag, the parameters carried across the
// login detour so the action can resume afterwards.
var gatedParams = map[string][]string{
	TagAccountInfo: nil,
	TagCheckouts:   nil,
	TagRenew:       {"book_id"},
	TagHolds:       {"book_id", "action"},
	TagFines:       {"fine_id", "amount", "action"},
}

// commitParams lists tags that are open to anonymous patrons until they
// commit a booking. The handler asks for login at that step and these
// parameters are carried across the detour.
var commitParams = map[string][]string{
	TagBookRoom:      {"room_id", "date", "time", "duration"},
	TagRegisterEvent: {"event_id"},
}

// carryAliases lets a carried parameter be filled from the list selection
// that named it.
var carryAliases = map[string][]string{
	"book_id":  {"selected_item_id"},
	"room_id":  {"room_name", "selected_item_id"},
	"event_id": {"selected_item_id"},
}

// RequiresLogin reports whether tag is behind the login gate.
func RequiresLogin(tag string) bool {
	_, ok := gatedParams[tag]
	return ok
}

// CarriedParams returns the parameters preserved for tag during a detour.
func CarriedParams(tag string) []string {
	if keys, ok := gatedParams[tag]; ok {
		return keys
	}
	return commitParams[tag]
}
