package cxutil

// Dialogflow Messenger rendering limits (application-defined for UX).
const (
	MaxListItems = 5 // list entries rendered per response
	MaxChips     = 8 // chips rendered per response

	// MaxSubtitleLength keeps card and list subtitles readable on mobile.
	MaxSubtitleLength = 200
)

// Element types and events understood by Dialogflow Messenger.
const (
	ElementInfo    = "info"
	ElementList    = "list"
	ElementDivider = "divider"
	ElementChips   = "chips"

	SelectItemEvent = "SELECT_ITEM"
	SelectedItemKey = "selected_item_id"
)
