package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const bookColumns = `id, title, author, isbn, genre, availability, COALESCE(cover_image, '')`

// SearchBooks returns books matching every non-empty field of q, in catalog
// order. Title, author and genre match case-insensitive substrings; subject
// matches genre or title; ISBN matches exactly ignoring hyphens.
// An empty query returns the whole catalog.
func (db *DB) SearchBooks(ctx context.Context, q BookQuery) ([]Book, error) {
	var (
		where []string
		args  []any
	)
	if q.Title != "" {
		where = append(where, `title_folded LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(q.Title))
	}
	if q.Author != "" {
		where = append(where, `author_folded LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(q.Author))
	}
	if q.Genre != "" {
		where = append(where, `genre_folded LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(q.Genre))
	}
	if q.Subject != "" {
		where = append(where, `(genre_folded LIKE ? ESCAPE '\' OR title_folded LIKE ? ESCAPE '\')`)
		pattern := likePattern(q.Subject)
		args = append(args, pattern, pattern)
	}
	if q.ISBN != "" {
		where = append(where, `isbn = ?`)
		args = append(args, normalizeISBN(q.ISBN))
	}

	query := `SELECT ` + bookColumns + ` FROM books`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY sort_order`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to search books", "error", err)
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var books []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Genre, &b.Availability, &b.CoverImage); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// GetBook returns the book with id, or ErrNotFound.
func (db *DB) GetBook(ctx context.Context, id string) (*Book, error) {
	var b Book
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, strings.TrimSpace(id),
	).Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Genre, &b.Availability, &b.CoverImage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get book", "id", id, "error", err)
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &b, nil
}

// ListRooms returns all study rooms ordered by id.
func (db *DB) ListRooms(ctx context.Context) ([]Room, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, room_name, capacity, amenities FROM rooms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rooms []Room
	for rows.Next() {
		var (
			r         Room
			amenities string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Capacity, &amenities); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		if err := json.Unmarshal([]byte(amenities), &r.Amenities); err != nil {
			slog.WarnContext(ctx, "Ignoring malformed room amenities", "room_id", r.ID, "error", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// ListEvents returns events on or after fromDate (YYYY-MM-DD) by date.
func (db *DB) ListEvents(ctx context.Context, fromDate string) ([]Event, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, date, time, COALESCE(image_url, '') FROM events WHERE date >= ? ORDER BY date, id`,
		fromDate,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Date, &e.Time, &e.ImageURL); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountBooks returns the number of catalog entries.
func (db *DB) CountBooks(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}
