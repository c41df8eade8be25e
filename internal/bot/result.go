package bot

import (
	"fmt"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/cxutil"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/session"
)

// RichKind tags the rich content attached to a result.
type RichKind string

const (
	RichCard  RichKind = "card"
	RichList  RichKind = "list"
	RichChips RichKind = "chips"
)

// Rich is a rich content descriptor. Exactly one of Card, Items or Chips is
// meaningful, selected by Kind.
type Rich struct {
	Kind  RichKind
	Card  cxutil.Card
	Items []cxutil.ListItem
	Chips []string
}

// Result is what a handler hands back to the webhook.
type Result struct {
	Message     string
	Rich        *Rich
	Updates     session.Params // nil value clears a key
	Suggestions []string
	Redirect    string // target flow, empty for none
}

// Text returns a plain message result.
func Text(message string, suggestions ...string) *Result {
	return &Result{Message: message, Suggestions: suggestions}
}

// Prompt asks for a missing slot. It never carries updates.
func Prompt(message string, suggestions ...string) *Result {
	return Text(message, suggestions...)
}

// Failure reports a business failure with the backend reason.
func Failure(action, reason string) *Result {
	return &Result{Message: fmt.Sprintf("Sorry, I couldn't %s. %s", action, reason)}
}

// WithCard attaches an info card.
func (r *Result) WithCard(c cxutil.Card) *Result {
	r.Rich = &Rich{Kind: RichCard, Card: c}
	return r
}

// WithList attaches a selectable list.
func (r *Result) WithList(items []cxutil.ListItem) *Result {
	r.Rich = &Rich{Kind: RichList, Items: items}
	return r
}

// WithUpdates merges parameter updates into the result.
func (r *Result) WithUpdates(updates session.Params) *Result {
	r.Updates = session.Merge(r.Updates, updates)
	return r
}

// Messages renders the result in CX order: text, rich content, chips.
func (r *Result) Messages(languageCode string) []cxutil.ResponseMessage {
	messages := []cxutil.ResponseMessage{cxutil.NewTextMessage(r.Message)}

	if r.Rich != nil {
		switch r.Rich.Kind {
		case RichCard:
			messages = append(messages, cxutil.NewCardMessage(r.Rich.Card))
		case RichList:
			if len(r.Rich.Items) > 0 {
				messages = append(messages, cxutil.NewListMessage(r.Rich.Items, languageCode))
			}
		case RichChips:
			if msg, ok := cxutil.NewChipsMessage(r.Rich.Chips); ok {
				messages = append(messages, msg)
			}
		}
	}

	if msg, ok := cxutil.NewChipsMessage(r.Suggestions); ok {
		messages = append(messages, msg)
	}
	return messages
}
