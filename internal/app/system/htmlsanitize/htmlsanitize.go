// Package htmlsanitize strips markup from free-text fields (student names,
// group names and descriptions) before they are stored.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag; script and style contents are dropped entirely.
var strict = bluemonday.StrictPolicy()

// PlainText returns s with all HTML removed. Entities produced by the
// policy are decoded again so "Tom & Jerry" round-trips unchanged.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Clean is PlainText plus a flag telling the caller whether anything was
// removed, so handlers can log suspicious input.
func Clean(s string) (string, bool) {
	out := PlainText(s)
	return out, out != strings.TrimSpace(s)
}
