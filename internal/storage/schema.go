package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all tables and indexes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if err := createBooksTable(ctx, db); err != nil {
		return err
	}
	if err := createRoomsTable(ctx, db); err != nil {
		return err
	}
	return createEventsTable(ctx, db)
}

// The *_folded columns hold Unicode case-folded copies used for
// case-insensitive LIKE matching; SQLite only folds ASCII itself.
func createBooksTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS books (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		isbn TEXT NOT NULL,
		genre TEXT NOT NULL,
		availability TEXT NOT NULL,
		cover_image TEXT,
		title_folded TEXT NOT NULL,
		author_folded TEXT NOT NULL,
		genre_folded TEXT NOT NULL,
		sort_order INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_books_isbn ON books(isbn);
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create books table: %w", err)
	}
	return nil
}

func createRoomsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		room_name TEXT NOT NULL,
		capacity INTEGER NOT NULL,
		amenities TEXT NOT NULL DEFAULT '[]'
	);
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create rooms table: %w", err)
	}
	return nil
}

func createEventsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		image_url TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}
	return nil
}
