// Package whatsapp builds pre-filled share links.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultShareBase opens the WhatsApp contact picker.
const DefaultShareBase = "https://wa.me/"

// ShareText is the announcement sent when a test's results are published.
func ShareText(testName, classLevel, subject string, maxMarks int) string {
	return fmt.Sprintf("Test results for %s (%s class) in %s are ready! Max marks: %d",
		testName, classLevel, subject, maxMarks)
}

// ShareLink appends text to base as the text query parameter.
func ShareLink(base, text string) string {
	if base == "" {
		base = DefaultShareBase
	}
	return base + "?text=" + Encode(text)
}

// Encode percent-encodes text for a query value: spaces become %20 and
// slashes are kept.
func Encode(text string) string {
	encoded := url.QueryEscape(text)
	encoded = strings.ReplaceAll(encoded, "+", "%20")
	return strings.ReplaceAll(encoded, "%2F", "/")
}
