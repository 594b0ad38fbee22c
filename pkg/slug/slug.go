// Package slug derives URL-safe lookup keys from display names.
//
// Two distinct derivations exist and must not be confused. Canonical is the
// internal slug used for uniqueness and lookup everywhere in this codebase.
// Upstream approximates the third-party service's own slug format and exists
// only so generated outbound links resolve; it is never a lookup key here.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// spellings replaces characters that carry meaning in names with words, so
// "Pokémon 50%" and "Pokémon 50 percent" collapse to the same slug.
var spellings = map[rune]string{
	'%': "percent",
	'+': "plus",
	'&': "and",
}

// Canonical produces the internal slug for a display name: lowercase ASCII,
// diacritics stripped, percent/plus/ampersand spelled out, every other run of
// non-alphanumeric characters collapsed to a single hyphen, no leading or
// trailing hyphen. The result may be empty for names with no usable
// characters; callers treat that as a validation failure on the entity.
func Canonical(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingHyphen := false

	flush := func() {
		if pendingHyphen && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingHyphen = false
	}

	for _, r := range transliterate(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			flush()
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			flush()
			b.WriteRune(r + ('a' - 'A'))
		default:
			if word, ok := spellings[r]; ok {
				flush()
				b.WriteString(word)
			} else {
				pendingHyphen = true
			}
		}
	}
	return b.String()
}

// Upstream approximates the remote service's slug format for building
// compatible external links: slashes and apostrophes are dropped outright,
// remaining separators become underscores, and only [A-Za-z0-9_] survive.
// Case is preserved, matching the upstream's own URLs. Never use this for
// internal lookups.
func Upstream(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingUnderscore := false

	for _, r := range transliterate(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			if pendingUnderscore && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingUnderscore = false
			b.WriteRune(r)
		case r == '/' || r == '\'':
			// Stripped, not replaced: "King's" -> "Kings".
		default:
			pendingUnderscore = true
		}
	}
	return b.String()
}

// transliterate performs the lossy ASCII fold: NFD decomposition followed by
// removal of combining marks, so "é" becomes "e". Characters that do not
// decompose to ASCII fall through unchanged and are treated as separators by
// the callers above.
func transliterate(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
