package cxutil

import (
	"encoding/json"
)

// WebhookRequest is the Dialogflow CX WebhookRequest subset this service reads.
type WebhookRequest struct {
	DetectIntentResponseID string           `json:"detectIntentResponseId,omitempty"`
	LanguageCode           string           `json:"languageCode,omitempty"`
	Text                   string           `json:"text,omitempty"`
	FulfillmentInfo        *FulfillmentInfo `json:"fulfillmentInfo,omitempty"`
	IntentInfo             *IntentInfo      `json:"intentInfo,omitempty"`
	PageInfo               *PageInfo        `json:"pageInfo,omitempty"`
	SessionInfo            *SessionInfo     `json:"sessionInfo,omitempty"`
}

// FulfillmentInfo carries the fulfillment tag set on the CX route or page.
type FulfillmentInfo struct {
	Tag string `json:"tag,omitempty"`
}

// IntentInfo describes the intent matched for the current turn.
type IntentInfo struct {
	LastMatchedIntent string                          `json:"lastMatchedIntent,omitempty"`
	DisplayName       string                          `json:"displayName,omitempty"`
	Parameters        map[string]IntentParameterValue `json:"parameters,omitempty"`
	Confidence        float64                         `json:"confidence,omitempty"`
}

// IntentParameterValue is one extracted slot of the current turn.
type IntentParameterValue struct {
	OriginalValue string `json:"originalValue,omitempty"`
	ResolvedValue any    `json:"resolvedValue,omitempty"`
}

// PageInfo identifies where in the agent the turn happened.
type PageInfo struct {
	CurrentPage *Resource `json:"currentPage,omitempty"`
	CurrentFlow *Resource `json:"currentFlow,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
}

// Resource is a CX resource reference. CX sends either the bare resource
// name string or an object with name and displayName; both decode here.
type Resource struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// UnmarshalJSON accepts "projects/.../pages/x" as well as {"displayName": ...}.
func (r *Resource) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		r.Name = name
		return nil
	}
	type plain Resource
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Resource(p)
	return nil
}

// SessionInfo holds the session resource name and its persisted parameters.
// A nil parameter value in a response tells CX to clear that parameter.
type SessionInfo struct {
	Session    string         `json:"session,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// WebhookResponse is the CX WebhookResponse produced for every turn.
type WebhookResponse struct {
	FulfillmentResponse *FulfillmentResponse `json:"fulfillmentResponse,omitempty"`
	SessionInfo         *SessionInfo         `json:"sessionInfo,omitempty"`
	TargetPage          string               `json:"targetPage,omitempty"`
}

// FulfillmentResponse holds the ordered response messages.
type FulfillmentResponse struct {
	Messages      []ResponseMessage `json:"messages"`
	MergeBehavior string            `json:"mergeBehavior,omitempty"`
}

// ResponseMessage is either a text message or a custom payload.
type ResponseMessage struct {
	Text    *TextMessage `json:"text,omitempty"`
	Payload *Payload     `json:"payload,omitempty"`
}

// TextMessage is a CX text response.
type TextMessage struct {
	Text []string `json:"text"`
}

// Payload is a Dialogflow Messenger custom payload.
type Payload struct {
	RichContent [][]RichElement `json:"richContent"`
}

// RichElement is one Dialogflow Messenger rich content element.
type RichElement struct {
	Type       string       `json:"type"`
	Title      string       `json:"title,omitempty"`
	Subtitle   string       `json:"subtitle,omitempty"`
	Image      *Image       `json:"image,omitempty"`
	ActionLink string       `json:"actionLink,omitempty"`
	Event      *Event       `json:"event,omitempty"`
	Options    []ChipOption `json:"options,omitempty"`
}

// Image wraps a raw image URL.
type Image struct {
	Src ImageSource `json:"src"`
}

// ImageSource is the image location.
type ImageSource struct {
	RawURL string `json:"rawUrl"`
}

// Event is fired by Messenger when a list entry is tapped.
type Event struct {
	Name         string            `json:"name"`
	LanguageCode string            `json:"languageCode"`
	Parameters   map[string]string `json:"parameters,omitempty"`
}

// ChipOption is one selectable chip.
type ChipOption struct {
	Text string `json:"text"`
}
