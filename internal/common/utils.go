package common

import (
	"strings"
	"unicode/utf8"
)

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// IsTextContentType reports whether a Content-Type header names a textual
// payload (error documents served in place of imagery).
func IsTextContentType(contentType string) bool {
	return HasAny(strings.ToLower(contentType), "text/", "xml", "json", "html")
}

// Snippet returns at most n bytes of b as a single trimmed line, cut on a
// rune boundary.
func Snippet(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
		for len(b) > 0 && !utf8.Valid(b) {
			b = b[:len(b)-1]
		}
	}
	s := strings.Join(strings.Fields(string(b)), " ")
	return s
}
