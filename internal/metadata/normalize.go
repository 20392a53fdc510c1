package metadata

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// headerMaxLen caps normalized header length, matching the common SQL
// identifier limit so header names survive a round trip through a database.
const headerMaxLen = 63

// NormalizeHeader folds a metadata column header into the canonical form the
// loaders match against: lower-case ASCII with runs of separators collapsed
// to single underscores, truncated to headerMaxLen. Diacritics are stripped
// so headers exported from localized spreadsheets still map onto the
// canonical column names.
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// Decompose → remove nonspacing marks (accents) → recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			prevUnderscore = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		default:
			// drop anything else
		}
	}
	out := strings.Trim(b.String(), "_")
	if len(out) > headerMaxLen {
		out = strings.Trim(out[:headerMaxLen], "_")
	}
	return out
}
