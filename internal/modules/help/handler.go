// Package help answers common library questions from a fixed topic table
// and renders the capability menu for unmatched turns.
package help

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/bot"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/logger"
)

// ModuleName is the module identifier used in logs.
const ModuleName = "help"

// Patron-facing texts.
const (
	TopicPrompt  = "What can I help you with? Pick a topic or ask me a question."
	Unrecognized = "Thanks for your question. I don't have a specific answer for that yet, but our library staff will be happy to help."
)

// topic is one canned answer and the keywords that select it.
type topic struct {
	name     string
	keywords []string
	answer   string
}

// topics are checked in order; the first keyword hit wins.
var topics = []topic{
	{
		name:     "hours",
		keywords: []string{"hour", "open", "close", "closing"},
		answer: "The library is open Monday to Thursday 8 AM to 10 PM, Friday 8 AM to 6 PM, " +
			"and Saturday and Sunday 10 AM to 6 PM.",
	},
	{
		name:     "policy",
		keywords: []string{"policy", "policies", "borrow", "loan", "late", "limit"},
		answer: "You can borrow up to 10 items at a time. Books are loaned for 21 days and can be " +
			"renewed twice unless another patron has placed a hold. Overdue items accrue a fine of $0.25 per day.",
	},
	{
		name:     "contact",
		keywords: []string{"contact", "phone", "email", "call", "reach"},
		answer:   "You can reach the library at (555) 123-4567 or help@library.example.com. The front desk is staffed during opening hours.",
	},
}

var topicChips = []string{"Library hours", "Borrowing policy", "Contact us", "Search books"}

// Handler serves help and default turns.
type Handler struct {
	logger *logger.Logger
}

// NewHandler creates a help handler.
func NewHandler(log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{logger: log.WithModule(ModuleName)}
}

// Help answers a question by keyword category. Without a question it offers
// the topics.
func (h *Handler) Help(ctx context.Context, req *bot.Request) *bot.Result {
	query := req.String("query", "question", "help_topic")
	if query == "" {
		return bot.Prompt(TopicPrompt, topicChips...)
	}

	if t, ok := match(query); ok {
		h.logger.DebugContext(ctx, "Help topic matched", "topic", t.name)
		return bot.Text(t.answer, "Search books", "Help")
	}

	h.logger.DebugContext(ctx, "Help query unmatched", "query", query)
	return bot.Text(Unrecognized, "Library hours", "Contact us", "More information")
}

// Default renders the capability menu.
func (h *Handler) Default(_ context.Context, _ *bot.Request) *bot.Result {
	return bot.Text(bot.DefaultMessage,
		"Search books", "My account", "Book a study room", "Reserve equipment", "Upcoming events", "Help")
}

func match(query string) (topic, bool) {
	folded := cases.Fold().String(query)
	for _, t := range topics {
		for _, kw := range t.keywords {
			if strings.Contains(folded, kw) {
				return t, true
			}
		}
	}
	return topic{}, false
}
