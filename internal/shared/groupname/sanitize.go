// Package groupname normalizes internal group names into the conservative
// character sets most remote community services accept.
package groupname

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxLength is a common denominator across remote services; individual
// adapters may clamp further through their own SanitizeGroupName.
const maxLength = 64

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold removes diacritics so "Sécurité" and "Securite" map to the same
// remote name.
func Fold(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		return name
	}
	return folded
}

// Sanitize is the default adapter sanitization: fold diacritics, drop
// characters outside [A-Za-z0-9 ._-], collapse runs of whitespace to a single
// space, trim, and clamp length.
func Sanitize(name string) string {
	folded := Fold(name)

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := false
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			lastSpace = true
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
			lastSpace = false
		}
	}

	out := strings.TrimRight(b.String(), " ")
	if len(out) > maxLength {
		out = strings.TrimRight(out[:maxLength], " ")
	}
	return out
}

// ReplaceSpaces applies an auto-group rule's whitespace policy: replacement
// may be empty, which deletes whitespace entirely.
func ReplaceSpaces(name, replacement string) string {
	return strings.Join(strings.Fields(name), replacement)
}
