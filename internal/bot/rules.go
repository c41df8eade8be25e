package bot

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// keywordRule claims an intent whose folded display name contains any of
// the tokens and none of the exclusions.
type keywordRule struct {
	tag    string
	tokens []string
	unless []string
}

func (k keywordRule) match(folded string) bool {
	return containsAny(folded, k.tokens) && !containsAny(folded, k.unless)
}

// Account vocabulary, shared by the account rules and the bare-"book"
// exclusion so the two cannot drift apart.
var (
	checkoutTokens = []string{"checkout", "checked out", "checkedout", "borrowed"}
	renewTokens    = []string{"renew"}
	holdTokens     = []string{"hold"}
	fineTokens     = []string{"fine", "pay", "fee"}
	profileTokens  = []string{"account", "profile", "membership"}

	accountTokens = slices.Concat(checkoutTokens, renewTokens, holdTokens, fineTokens, profileTokens)
)

// intentRules is evaluated top to bottom; the first match wins. Reservation
// rules come before book search so "BookRoom" never lands in the catalog.
var intentRules = []keywordRule{
	{tag: TagBookRoom, tokens: []string{"room"}},
	{tag: TagReserveEquipment, tokens: []string{"equipment", "laptop", "projector", "camera"}},
	{tag: TagRegisterEvent, tokens: []string{"event"}},
	{tag: TagBookDetails, tokens: []string{"detail"}},
	{tag: TagSearchBooks, tokens: []string{"search", "find", "catalog", "browse"}},
	{tag: TagSearchBooks, tokens: []string{"book"}, unless: accountTokens},
	{tag: TagCheckouts, tokens: checkoutTokens},
	{tag: TagRenew, tokens: renewTokens},
	{tag: TagHolds, tokens: holdTokens},
	{tag: TagFines, tokens: fineTokens},
	{tag: TagAccountInfo, tokens: profileTokens},
	{tag: TagHelp, tokens: []string{"help", "faq", "hours"}},
	{tag: TagAuthenticate, tokens: []string{"login", "log in", "sign", "auth"}},
}

// accountRules picks the action inside the Account Management flow.
// Anything unmatched is a profile request.
var accountRules = []keywordRule{
	{tag: TagCheckouts, tokens: checkoutTokens},
	{tag: TagRenew, tokens: renewTokens},
	{tag: TagHolds, tokens: holdTokens},
	{tag: TagFines, tokens: fineTokens},
}

// flowTags maps known flow display names to their handler. Account
// Management is resolved separately through accountRules.
var flowTags = map[string]string{
	"Book Search":           TagSearchBooks,
	"Book Details":          TagBookDetails,
	"Room Booking":          TagBookRoom,
	"Equipment Reservation": TagReserveEquipment,
	"Event Registration":    TagRegisterEvent,
	FlowAuthentication:      TagAuthenticate,
	"Help":                  TagHelp,
}

func firstMatch(rules []keywordRule, intent string) (string, bool) {
	folded := fold(intent)
	if folded == "" {
		return "", false
	}
	for _, rule := range rules {
		if rule.match(folded) {
			return rule.tag, true
		}
	}
	return "", false
}

// fold normalizes case for keyword matching. A Caser is stateful, so each
// call gets its own.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
