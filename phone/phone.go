// Package phone normalises Indonesian phone numbers to the 62XXXXXXXX form.
package phone

import (
	"strings"
	"unicode"
)

// Normalize strips every non-digit and rewrites a leading ASCII 0 to the
// 62 country code. Any Unicode decimal digit is kept as typed. Input
// without digits yields "". Normalize is idempotent.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw) + 1)
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if digits[0] == '0' {
		return "62" + digits[1:]
	}
	return digits
}
