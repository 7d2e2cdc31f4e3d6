// Package normalize trims and canonicalizes form values before they are
// validated and stored.
package normalize

import (
	"strings"
)

// Name trims surrounding whitespace and collapses internal runs of
// whitespace to a single space. Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Text trims surrounding whitespace only (multi-line descriptions keep
// their line breaks).
func Text(s string) string {
	return strings.TrimSpace(s)
}

// Date trims a YYYY-MM-DD value.
func Date(s string) string {
	return strings.TrimSpace(s)
}

// Time trims a lesson time and left-pads a single-digit hour ("9:30" -> "09:30").
func Time(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 4 && s[1] == ':' {
		return "0" + s
	}
	return s
}

// Day lowercases and trims a weekday name ("Monday " -> "monday").
func Day(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a URL query value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
