package library

import "github.com/bansi-007/dialogflow-cx-usecase/internal/storage"

// Catalog records are owned by the offline store and shared with the API
// decoder; the JSON tags on the storage types follow the REST payloads.
type (
	Book      = storage.Book
	BookQuery = storage.BookQuery
	Room      = storage.Room
	Event     = storage.Event
)

// Account is a patron profile summary.
type Account struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	MemberID      string `json:"member_id"`
	Status        string `json:"status"`
	CheckoutCount int    `json:"checkout_count"`
	HoldCount     int    `json:"hold_count"`
}

// Checkout is a borrowed item.
type Checkout struct {
	ID         string `json:"id"`
	BookID     string `json:"book_id"`
	Title      string `json:"title"`
	DueDate    string `json:"due_date"`
	Renewable  bool   `json:"renewable"`
	CoverImage string `json:"cover_image,omitempty"`
}

// Hold is a queued reservation for a book.
type Hold struct {
	ID         string `json:"id"`
	BookID     string `json:"book_id"`
	Title      string `json:"title"`
	Position   int    `json:"position"`
	CoverImage string `json:"cover_image,omitempty"`
}

// Fine is an outstanding charge.
type Fine struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"due_date,omitempty"`
}

// AuthUnavailableMessage explains a sign-in refused because the API is down.
const AuthUnavailableMessage = "Sign-in is temporarily unavailable"

// AuthResult is the outcome of a login attempt. Unavailable marks a refusal
// caused by an outage rather than by the credentials.
type AuthResult struct {
	Success     bool   `json:"success"`
	UserID      string `json:"user_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Message     string `json:"message,omitempty"`
	Unavailable bool   `json:"-"`
}

// ActionResult is the outcome of a mutating call. Which identifier fields
// are set depends on the operation.
type ActionResult struct {
	Success        bool    `json:"success"`
	Message        string  `json:"message,omitempty"`
	ConfirmationID string  `json:"confirmation_id,omitempty"`
	TransactionID  string  `json:"transaction_id,omitempty"`
	HoldID         string  `json:"hold_id,omitempty"`
	Title          string  `json:"title,omitempty"`
	NewDueDate     string  `json:"new_due_date,omitempty"`
	RoomName       string  `json:"room_name,omitempty"`
	EventTitle     string  `json:"event_title,omitempty"`
	EquipmentType  string  `json:"equipment_type,omitempty"`
	Amount         float64 `json:"amount,omitempty"`
}

// Reason returns the backend-supplied failure reason, or a retry prompt.
func (r ActionResult) Reason() string {
	if r.Message != "" {
		return r.Message
	}
	return "Please try again."
}

// RoomQuery asks for rooms free at a slot.
type RoomQuery struct {
	Date     string
	Time     string
	Duration string
}

// RoomBooking books one room for a slot.
type RoomBooking struct {
	UserID   string `json:"user_id"`
	RoomID   string `json:"room_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Duration string `json:"duration"`
}

// EquipmentRequest checks or reserves a piece of equipment.
type EquipmentRequest struct {
	UserID   string `json:"user_id,omitempty"`
	Type     string `json:"equipment_type"`
	Date     string `json:"date"`
	Duration string `json:"duration"`
}

// Response envelopes used by the REST API.
type (
	booksEnvelope struct {
		Books []Book `json:"books"`
	}
	bookEnvelope struct {
		Book *Book `json:"book"`
	}
	accountEnvelope struct {
		User *Account `json:"user"`
	}
	checkoutsEnvelope struct {
		Checkouts []Checkout `json:"checkouts"`
	}
	holdsEnvelope struct {
		Holds []Hold `json:"holds"`
	}
	finesEnvelope struct {
		Fines []Fine `json:"fines"`
	}
	roomsEnvelope struct {
		Rooms []Room `json:"rooms"`
	}
	availabilityEnvelope struct {
		Available bool `json:"available"`
	}
	eventsEnvelope struct {
		Events []Event `json:"events"`
	}
)
