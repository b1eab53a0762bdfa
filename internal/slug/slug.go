// Package slug derives URL-safe identifiers from display titles.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var validPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Valid reports whether s only uses the slug charset (letters, digits,
// hyphens and underscores).
func Valid(s string) bool {
	return validPattern.MatchString(s)
}

// Make lowercases name, folds accented letters to ASCII, drops remaining
// punctuation and joins words with single hyphens. The result is cut to
// maxLen bytes when maxLen > 0. Make returns "" when nothing usable is left.
func Make(name string, maxLen int) string {
	folded := fold(name)

	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r > unicode.MaxASCII:
			continue
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pending = true
		}
	}

	out := strings.Trim(b.String(), "-_")
	if maxLen > 0 && len(out) > maxLen {
		out = strings.Trim(out[:maxLen], "-_")
	}
	return out
}

func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
