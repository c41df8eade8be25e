package catalog

import (
	"fmt"
	"strings"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/bot"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/cxutil"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/library"
)

// SearchParams are the catalog filters of a search turn.
type SearchParams struct {
	Title   string
	Author  string
	ISBN    string
	Genre   string
	Subject string
}

// ParseSearchParams reads the filters, accepting book_title for title.
func ParseSearchParams(req *bot.Request) SearchParams {
	return SearchParams{
		Title:   req.String("title", "book_title"),
		Author:  req.String("author"),
		ISBN:    req.String("isbn"),
		Genre:   req.String("genre"),
		Subject: req.String("subject", "topic"),
	}
}

// IsEmpty reports whether no filter was given.
func (p SearchParams) IsEmpty() bool {
	return p.Query().IsEmpty()
}

// Query converts the filters to a backend query.
func (p SearchParams) Query() library.BookQuery {
	return library.BookQuery{
		Title:   p.Title,
		Author:  p.Author,
		ISBN:    p.ISBN,
		Genre:   p.Genre,
		Subject: p.Subject,
	}
}

// Describe renders the filters for a reply, e.g. `title "Dune" and author "Herbert"`.
func (p SearchParams) Describe() string {
	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, fmt.Sprintf("%s %q", label, value))
		}
	}
	add("title", p.Title)
	add("author", p.Author)
	add("ISBN", p.ISBN)
	add("genre", p.Genre)
	add("subject", p.Subject)
	return strings.Join(parts, " and ")
}

// DetailsParams identify the book picked from a list.
type DetailsParams struct {
	BookID string
}

// ParseDetailsParams prefers the list selection over a spoken book id.
func ParseDetailsParams(req *bot.Request) DetailsParams {
	return DetailsParams{BookID: req.String(cxutil.SelectedItemKey, "book_id")}
}
