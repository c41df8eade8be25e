// Package cxutil builds Dialogflow CX webhook envelopes and Dialogflow
// Messenger rich content (info cards, lists, chips).
package cxutil

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// GenericErrorMessage is shown when diagnostics are disabled.
const GenericErrorMessage = "I'm sorry, I encountered an issue. Please try again or contact support if the problem persists."

// Card describes an info card.
type Card struct {
	Title    string
	Subtitle string
	Text     string // used only when Subtitle is empty
	ImageURL string
	Buttons  []Button
}

// Button is a card action. Only the first button is rendered; an info
// element carries a single actionLink.
type Button struct {
	Text     string
	Postback string
}

// ListItem is one selectable list entry.
type ListItem struct {
	ID       string
	Title    string
	Subtitle string
	ImageURL string
}

// ToListItems projects arbitrary records onto list entries.
func ToListItems[T any](items []T, project func(T) ListItem) []ListItem {
	out := make([]ListItem, 0, len(items))
	for _, item := range items {
		out = append(out, project(item))
	}
	return out
}

// NewTextMessage creates a text response message.
func NewTextMessage(texts ...string) ResponseMessage {
	return ResponseMessage{Text: &TextMessage{Text: texts}}
}

// NewCardMessage renders an info card.
func NewCardMessage(c Card) ResponseMessage {
	el := RichElement{
		Type:  ElementInfo,
		Title: c.Title,
	}
	switch {
	case c.Subtitle != "":
		el.Subtitle = c.Subtitle
	case c.Text != "":
		el.Subtitle = c.Text
	}
	if c.ImageURL != "" {
		el.Image = &Image{Src: ImageSource{RawURL: c.ImageURL}}
	}
	if len(c.Buttons) > 0 {
		el.ActionLink = c.Buttons[0].Postback
		if el.ActionLink == "" {
			el.ActionLink = "#"
		}
	}
	return newPayloadMessage([]RichElement{el})
}

// NewListMessage renders up to MaxListItems entries, each followed by a
// divider. Tapping an entry fires SELECT_ITEM with selected_item_id.
func NewListMessage(items []ListItem, languageCode string) ResponseMessage {
	if languageCode == "" {
		languageCode = "en"
	}
	items = items[:min(len(items), MaxListItems)]

	elements := make([]RichElement, 0, len(items)*2)
	for _, item := range items {
		title := item.Title
		if title == "" {
			title = "Unknown"
		}
		elements = append(elements,
			RichElement{
				Type:     ElementList,
				Title:    title,
				Subtitle: Truncate(item.Subtitle, MaxSubtitleLength),
				Event: &Event{
					Name:         SelectItemEvent,
					LanguageCode: languageCode,
					Parameters:   map[string]string{SelectedItemKey: item.ID},
				},
			},
			RichElement{Type: ElementDivider},
		)
	}
	return newPayloadMessage(elements)
}

// NewChipsMessage renders up to MaxChips suggestion chips.
// Returns false when there is nothing to render.
func NewChipsMessage(suggestions []string) (ResponseMessage, bool) {
	options := make([]ChipOption, 0, min(len(suggestions), MaxChips))
	for _, s := range suggestions {
		if len(options) == MaxChips {
			break
		}
		if s = strings.TrimSpace(s); s != "" {
			options = append(options, ChipOption{Text: s})
		}
	}
	if len(options) == 0 {
		return ResponseMessage{}, false
	}
	return newPayloadMessage([]RichElement{{Type: ElementChips, Options: options}}), true
}

func newPayloadMessage(elements []RichElement) ResponseMessage {
	return ResponseMessage{Payload: &Payload{RichContent: [][]RichElement{elements}}}
}

// ErrorText returns the patron-facing text for err. Diagnostic mode embeds
// the raw error and must stay opt-in.
func ErrorText(err error, diagnostic bool) string {
	if diagnostic && err != nil {
		return "Error: " + err.Error()
	}
	return GenericErrorMessage
}

// ErrorResponse wraps ErrorText in a webhook envelope.
func ErrorResponse(err error, diagnostic bool) *WebhookResponse {
	return &WebhookResponse{
		FulfillmentResponse: &FulfillmentResponse{
			Messages: []ResponseMessage{NewTextMessage(ErrorText(err, diagnostic))},
		},
	}
}

// FormatCurrency renders an amount as dollars with two decimals.
func FormatCurrency(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// Truncate shortens s to maxLen runes, ending with "..." when cut.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string([]rune(s)[:maxLen])
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}

// Postback is a parsed card button payload such as "#place-hold-5".
type Postback struct {
	Tag    string
	Action string
	ID     string
}

var postbacks = []struct {
	prefix string
	tag    string
	action string
}{
	{"#place-hold-", "account-holds", "place"},
	{"#book-details-", "book-details", ""},
	{"#account-checkouts", "account-checkouts", ""},
	{"#account-holds", "account-holds", "view"},
	{"#account-fines", "account-fines", "view"},
}

// ParsePostback recognizes the button payloads this webhook renders.
func ParsePostback(text string) (Postback, bool) {
	text = strings.TrimSpace(text)
	for _, pb := range postbacks {
		rest, ok := strings.CutPrefix(text, pb.prefix)
		if !ok {
			continue
		}
		return Postback{Tag: pb.tag, Action: pb.action, ID: rest}, true
	}
	return Postback{}, false
}
