// Package session models Dialogflow CX session parameters: the contract keys
// this service reads and writes, typed accessors, and the merge rule applied
// once per turn.
package session

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// Contract keys.
const (
	KeyUserID        = "user_id"
	KeyUserName      = "user_name"
	KeyAuthenticated = "authenticated"
	KeyPendingTag    = "pending_tag"
	KeyLoginRequired = "login_required"
	KeyPassword      = "password"

	KeySearchResults  = "search_results"
	KeySelectedBookID = "selected_book_id"
	KeyCheckouts      = "checkouts"
	KeyHolds          = "holds"
	KeyFines          = "fines"
	KeyAvailableRooms = "available_rooms"
	KeyUpcomingEvents = "upcoming_events"
	KeyPaymentPending = "payment_pending"
)

// Params is a parameter mapping. A key present with a nil value is an
// explicit clear; an absent key leaves the session value untouched.
type Params map[string]any

// Merge returns session ∪ updates with updates winning on collision.
// Nil values from updates are kept so the platform clears those keys.
// Neither input is modified.
func Merge(session, updates Params) Params {
	merged := make(Params, len(session)+len(updates))
	maps.Copy(merged, session)
	maps.Copy(merged, updates)
	return merged
}

// Clone returns a shallow copy.
func (p Params) Clone() Params {
	if p == nil {
		return Params{}
	}
	return maps.Clone(p)
}

// Set stores value under key, creating the map if needed, and returns it.
func (p Params) Set(key string, value any) Params {
	if p == nil {
		p = Params{}
	}
	p[key] = value
	return p
}

// Present reports whether key holds a non-empty value. Nil, empty strings
// and empty lists count as absent.
func (p Params) Present(key string) bool {
	v, ok := p[key]
	return ok && !isEmpty(v)
}

// String returns the value at key rendered as a trimmed string.
func (p Params) String(key string) string {
	v, ok := p[key]
	if !ok || isEmpty(v) {
		return ""
	}
	return ToString(v)
}

// Bool interprets the value at key as a boolean.
func (p Params) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	case float64:
		return v != 0
	}
	return false
}

// Float interprets the value at key as a number.
func (p Params) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(v), "$"), 64)
		return f, err == nil
	case map[string]any:
		// @sys.unit-currency resolves to {"amount": 2.5, "currency": "USD"}
		if amount, ok := v["amount"].(float64); ok {
			return amount, true
		}
	}
	return 0, false
}

// ToString renders a parameter value. CX sends whole numbers as float64 and
// some system entities as objects; both are flattened here.
func ToString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		if len(t) == 0 {
			return ""
		}
		return ToString(t[0])
	case map[string]any:
		return formatStructured(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// formatStructured flattens @sys.date / @sys.time / @sys.duration objects.
func formatStructured(m map[string]any) string {
	if y, ok := m["year"].(float64); ok {
		month, _ := m["month"].(float64)
		day, _ := m["day"].(float64)
		return fmt.Sprintf("%04d-%02d-%02d", int(y), int(month), int(day))
	}
	if h, ok := m["hours"].(float64); ok {
		minutes, _ := m["minutes"].(float64)
		return fmt.Sprintf("%02d:%02d", int(h), int(minutes))
	}
	if amount, ok := m["amount"].(float64); ok {
		if unit, ok := m["unit"].(string); ok && unit != "" {
			return strconv.FormatFloat(amount, 'f', -1, 64) + " " + unit
		}
		return strconv.FormatFloat(amount, 'f', -1, 64)
	}
	return ""
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
