// Package normalize trims and canonicalizes user input before it is stored
// or compared.
package normalize

import (
	"strconv"
	"strings"

	"github.com/dalemusser/wardwatch/internal/app/system/htmlsanitize"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding space and collapses inner runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role trims and lowercases a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a query-string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Ward canonicalizes a ward label to "Ward N". A bare number or any casing
// of the "ward" prefix is accepted; anything else is returned trimmed.
func Ward(s string) string {
	s = Name(s)
	num := s
	if len(s) >= 4 && strings.EqualFold(s[:4], "ward") {
		num = strings.TrimSpace(s[4:])
	}
	if n, err := strconv.Atoi(num); err == nil && n > 0 {
		return "Ward " + strconv.Itoa(n)
	}
	return s
}

// Text strips markup from free text such as complaint descriptions and
// trims it.
func Text(s string) string {
	return strings.TrimSpace(htmlsanitize.PlainText(s))
}
