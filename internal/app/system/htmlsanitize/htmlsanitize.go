// Package htmlsanitize strips markup from user-supplied free text.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText removes all markup, dropping the contents of script and style
// elements. Entities the sanitizer escapes are decoded again so plain
// characters such as "&" survive unchanged.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return html.UnescapeString(strict.Sanitize(s))
}

// IsPlainText reports whether s contains no tag-like markup.
func IsPlainText(s string) bool {
	return !strings.ContainsAny(s, "<>")
}
