package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

var catalogBooks = []Book{
	{ID: "1", Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", ISBN: "9780743273565", Genre: "Fiction", Availability: "Available", CoverImage: "https://example.com/gatsby.jpg"},
	{ID: "2", Title: "To Kill a Mockingbird", Author: "Harper Lee", ISBN: "9780061120084", Genre: "Fiction", Availability: "Available", CoverImage: "https://example.com/mockingbird.jpg"},
	{ID: "3", Title: "Harry Potter and the Sorcerer's Stone", Author: "J.K. Rowling", ISBN: "9780590353427", Genre: "Fantasy", Availability: "Checked Out", CoverImage: "https://example.com/hp1.jpg"},
	{ID: "4", Title: "Harry Potter and the Chamber of Secrets", Author: "J.K. Rowling", ISBN: "9780439064873", Genre: "Fantasy", Availability: "Available", CoverImage: "https://example.com/hp2.jpg"},
	{ID: "5", Title: "The Hobbit", Author: "J.R.R. Tolkien", ISBN: "9780547928227", Genre: "Fantasy", Availability: "Available", CoverImage: "https://example.com/hobbit.jpg"},
	{ID: "6", Title: "1984", Author: "George Orwell", ISBN: "9780451524935", Genre: "Dystopian", Availability: "Available", CoverImage: "https://example.com/1984.jpg"},
	{ID: "7", Title: "Pride and Prejudice", Author: "Jane Austen", ISBN: "9780141439518", Genre: "Romance", Availability: "Available", CoverImage: "https://example.com/pride.jpg"},
	{ID: "8", Title: "Python Crash Course", Author: "Eric Matthes", ISBN: "9781593279288", Genre: "Technology", Availability: "Available", CoverImage: "https://example.com/python.jpg"},
	{ID: "9", Title: "Introduction to Algorithms", Author: "Thomas H. Cormen", ISBN: "9780262033848", Genre: "Technology", Availability: "Reference Only", CoverImage: "https://example.com/algo.jpg"},
	{ID: "10", Title: "Dune", Author: "Frank Herbert", ISBN: "9780441172719", Genre: "Sci-Fi", Availability: "Checked Out", CoverImage: "https://example.com/dune.jpg"},
}

var catalogRooms = []Room{
	{ID: "room1", Name: "Study Room A", Capacity: 4, Amenities: []string{"Whiteboard", "Projector"}},
	{ID: "room2", Name: "Study Room B", Capacity: 6, Amenities: []string{"Whiteboard"}},
}

// catalogEvents holds day offsets from the seeding time.
var catalogEvents = []struct {
	Event
	inDays int
}{
	{Event: Event{ID: "event1", Title: "Book Club Meeting", Time: "6:00 PM", ImageURL: "https://example.com/events/bookclub.jpg"}, inDays: 3},
}

// Seed replaces the catalog with the built-in demo data in one transaction.
func (db *DB) Seed(ctx context.Context, now time.Time) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"books", "rooms", "events"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, b := range catalogBooks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO books (id, title, author, isbn, genre, availability, cover_image,
				title_folded, author_folded, genre_folded, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.Title, b.Author, b.ISBN, b.Genre, b.Availability, b.CoverImage,
			fold(b.Title), fold(b.Author), fold(b.Genre), i,
		)
		if err != nil {
			return fmt.Errorf("failed to seed book %s: %w", b.ID, err)
		}
	}

	for _, r := range catalogRooms {
		amenities, err := json.Marshal(r.Amenities)
		if err != nil {
			return fmt.Errorf("failed to encode amenities for %s: %w", r.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (id, room_name, capacity, amenities) VALUES (?, ?, ?, ?)`,
			r.ID, r.Name, r.Capacity, string(amenities),
		); err != nil {
			return fmt.Errorf("failed to seed room %s: %w", r.ID, err)
		}
	}

	for _, e := range catalogEvents {
		date := now.AddDate(0, 0, e.inDays).Format(time.DateOnly)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO events (id, title, date, time, image_url) VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.Title, date, e.Time, e.ImageURL,
		); err != nil {
			return fmt.Errorf("failed to seed event %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}
