package storage

import (
	"strings"

	"golang.org/x/text/cases"
)

// fold returns the Unicode case-folded form of s used for matching.
// A Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// likePattern folds term, escapes LIKE wildcards and wraps it for a
// substring match. Queries must use ESCAPE '\'.
func likePattern(term string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\", // Escape backslash first
		"%", "\\%",
		"_", "\\_",
	)
	return "%" + replacer.Replace(fold(term)) + "%"
}

// normalizeISBN drops hyphens and spaces so "978-0-547-92822-7" matches.
func normalizeISBN(isbn string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(isbn))
}
