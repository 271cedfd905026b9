// Package fuzzy scores how closely two short strings resemble each other.
//
// Scores are integers in [0, 100]. WRatio is the weighted scorer used for title
// search: the best of a whole-string sequence ratio, a block-anchored partial ratio
// and two word-order-insensitive token ratios, scaled by how different the
// lengths are.
package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Process normalises s for comparison: compatibility forms and full-width
// characters are folded, case is folded, and every rune other than a letter,
// number, combining mark or underscore becomes a space. Leading and trailing
// spaces are trimmed; inner runs are kept, since they count towards Ratio.
func Process(s string) string {
	s = norm.NFKC.String(s)
	s = width.Fold.String(s)
	// Casers keep state and are not safe for concurrent use.
	s = cases.Fold().String(s)

	mapped := strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.M, r) {
			return r
		}
		return ' '
	}, s)

	return strings.TrimSpace(mapped)
}
