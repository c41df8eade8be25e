package storage

import "github.com/bansi-007/dialogflow-cx-usecase/internal/errors"

// ErrNotFound is returned when a resource is not in the offline store.
var ErrNotFound = errors.ErrNotFound

// Book is a catalog item. JSON tags follow the library REST API.
type Book struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	ISBN         string `json:"isbn"`
	Genre        string `json:"genre"`
	Availability string `json:"availability"`
	CoverImage   string `json:"cover_image,omitempty"`
}

// Available reports whether the book can be borrowed right now.
func (b Book) Available() bool {
	return b.Availability == "Available"
}

// BookQuery filters a catalog search. Non-empty fields are ANDed.
type BookQuery struct {
	Title   string `json:"title,omitempty"`
	Author  string `json:"author,omitempty"`
	ISBN    string `json:"isbn,omitempty"`
	Genre   string `json:"genre,omitempty"`
	Subject string `json:"subject,omitempty"`
}

// IsEmpty reports whether no filter is set.
func (q BookQuery) IsEmpty() bool {
	return q.Title == "" && q.Author == "" && q.ISBN == "" && q.Genre == "" && q.Subject == ""
}

// Room is a bookable study room.
type Room struct {
	ID        string   `json:"id"`
	Name      string   `json:"room_name"`
	Capacity  int      `json:"capacity"`
	Amenities []string `json:"amenities,omitempty"`
}

// Event is an upcoming library event.
type Event struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}
