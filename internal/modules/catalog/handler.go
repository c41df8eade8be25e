// Package catalog implements book search and book details.
package catalog

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
const ModuleName = "catalog"

// MaxSearchResults caps the ids kept from one search. The list renderer
// shows fewer.
const MaxSearchResults = 10

// Backend is the slice of the library client this module needs.
type Backend interface {
	SearchBooks(ctx context.Context, q library.BookQuery) []library.Book
	GetBook(ctx context.Context, id string) *library.Book
}

// Handler serves catalog turns.
type Handler struct {
	backend Backend
	logger  *logger.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(backend Backend, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		backend: backend,
		logger:  log.WithModule(ModuleName),
	}
}

// Search finds books by any combination of title, author, ISBN, genre and
// subject. With no filter at all it asks for one and touches nothing.
func (h *Handler) Search(ctx context.Context, req *bot.Request) *bot.Result {
	p := ParseSearchParams(req)
	if p.IsEmpty() {
		return bot.Prompt(
			"What book are you looking for? You can search by title, author, ISBN, genre or subject.",
			"Search by title", "Search by author", "Browse by genre",
		)
	}

	books := h.backend.SearchBooks(ctx, p.Query())
	h.logger.DebugContext(ctx, "Catalog search completed",
		"filters", p.Describe(),
		"results", len(books),
	)

	switch len(books) {
	case 0:
		return bot.Text(
			fmt.Sprintf("Sorry, I couldn't find any books matching %s. Try a different spelling or a broader search.", p.Describe()),
			"Search by author", "Browse by genre", "New search",
		)
	case 1:
		book := books[0]
		return bot.Text(
			fmt.Sprintf("I found %q by %s. It is %s.", book.Title, book.Author, availabilityPhrase(book)),
			"Place hold", "New search",
		).
			WithCard(BookCard(book)).
			WithUpdates(session.Params{
				session.KeySearchResults:  []string{book.ID},
				session.KeySelectedBookID: book.ID,
			})
	}

	books = books[:min(len(books), MaxSearchResults)]
	ids := make([]string, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}

	return bot.Text(
		fmt.Sprintf("I found %d books matching %s. Tap one to see details.", len(books), p.Describe()),
		"Narrow by author", "Narrow by genre", "New search",
	).
		WithList(cxutil.ToListItems(books, bookListItem)).
		WithUpdates(session.Params{session.KeySearchResults: ids})
}

// Details shows one book picked from a list or named by id.
func (h *Handler) Details(ctx context.Context, req *bot.Request) *bot.Result {
	p := ParseDetailsParams(req)
	if p.BookID == "" {
		return bot.Prompt(
			"Which book would you like to know more about? Search the catalog and pick a title.",
			"Search books",
		)
	}

	book := h.backend.GetBook(ctx, p.BookID)
	if book == nil {
		h.logger.InfoContext(ctx, "Book not found", "book_id", p.BookID)
		return bot.Text("Sorry, I couldn't find details for that book.", "Search books")
	}

	return bot.Text(
		fmt.Sprintf("%s by %s (%s) is %s.", book.Title, book.Author, book.Genre, availabilityPhrase(*book)),
		"Place hold", "Search again",
	).
		WithCard(BookCard(*book)).
		WithUpdates(session.Params{session.KeySelectedBookID: book.ID})
}

// BookCard renders a book as an info card. Only the first button becomes
// the card's action link.
func BookCard(b library.Book) cxutil.Card {
	details := []string{"by " + b.Author}
	if b.ISBN != "" {
		details = append(details, "ISBN "+b.ISBN)
	}
	if b.Genre != "" {
		details = append(details, b.Genre)
	}
	if b.Availability != "" {
		details = append(details, b.Availability)
	}

	return cxutil.Card{
		Title:    b.Title,
		Subtitle: cxutil.Truncate(strings.Join(details, " | "), cxutil.MaxSubtitleLength),
		ImageURL: b.CoverImage,
		Buttons: []cxutil.Button{
			{Text: "Place Hold", Postback: "#place-hold-" + b.ID},
			{Text: "View Details", Postback: "#book-details-" + b.ID},
		},
	}
}

func bookListItem(b library.Book) cxutil.ListItem {
	return cxutil.ListItem{
		ID:       b.ID,
		Title:    b.Title,
		Subtitle: "by " + b.Author,
		ImageURL: b.CoverImage,
	}
}

func availabilityPhrase(b library.Book) string {
	switch {
	case b.Available():
		return "available now"
	case b.Availability == "":
		return "of unknown availability"
	default:
		return "currently " + strings.ToLower(b.Availability)
	}
}
