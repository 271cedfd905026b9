package fuzzy

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"
)

// Scorer compares two strings already passed through Process.
type Scorer func(a, b string) int

const (
	unbaseScale  = 0.95
	partialScale = 0.90

	// Length ratios that switch WRatio between whole-string and partial matching.
	partialFromLengthRatio = 1.5
	distantLengthRatio     = 8.0
	distantPartialScale    = 0.6
)

// WRatio normalises both strings with Process and returns their weighted score.
func WRatio(a, b string) int {
	return WRatioProcessed(Process(a), Process(b))
}

// WRatioProcessed is WRatio for inputs that are already normalised.
// It returns 0 when either input is empty.
func WRatioProcessed(a, b string) int {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}

	base := float64(Ratio(a, b))
	lengthRatio := float64(max(la, lb)) / float64(min(la, lb))

	if lengthRatio < partialFromLengthRatio {
		tsor := float64(TokenSortRatio(a, b)) * unbaseScale
		tser := float64(TokenSetRatio(a, b)) * unbaseScale
		return round(max(base, tsor, tser))
	}

	scale := partialScale
	if lengthRatio > distantLengthRatio {
		scale = distantPartialScale
	}

	partial := float64(PartialRatio(a, b)) * scale
	ptsor := float64(tokenSort(a, b, PartialRatio)) * unbaseScale * scale
	ptser := float64(tokenSet(a, b, PartialRatio)) * unbaseScale * scale
	return round(max(base, partial, ptsor, ptser))
}

// Ratio is the sequence similarity of a and b scaled to [0, 100].
// Equal strings score 100 and an empty side scores 0.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	return round(100 * newSequenceMatcher([]rune(a), []rune(b)).ratio())
}

// PartialRatio scores the shorter string against the window of the longer one
// that each matching block lines up, keeping the best.
func PartialRatio(a, b string) int {
	if a == b {
		return 100
	}
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) == 0 || len(longer) == 0 {
		return 0
	}
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	best := 0.0
	for _, x := range newSequenceMatcher(shorter, longer).matchingBlocks() {
		start := max(x.j-x.i, 0)
		end := min(start+len(shorter), len(longer))
		r := newSequenceMatcher(shorter, longer[start:end]).ratio()
		if r > 0.995 {
			return 100
		}
		best = max(best, r)
	}
	return round(100 * best)
}

// TokenSortRatio compares the strings after sorting their words.
func TokenSortRatio(a, b string) int {
	return tokenSort(a, b, Ratio)
}

// TokenSetRatio compares the shared words against each side's shared-plus-own words,
// so a query that is a subset of a title scores high.
func TokenSetRatio(a, b string) int {
	return tokenSet(a, b, Ratio)
}

func tokenSort(a, b string, score Scorer) int {
	return score(sortedTokens(a), sortedTokens(b))
}

func tokenSet(a, b string, score Scorer) int {
	setA, setB := tokenSetOf(a), tokenSetOf(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var common, onlyA, onlyB []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			common = append(common, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	slices.Sort(common)
	slices.Sort(onlyA)
	slices.Sort(onlyB)

	sect := strings.Join(common, " ")
	combinedA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	return max(
		score(sect, combinedA),
		score(sect, combinedB),
		score(combinedA, combinedB),
	)
}

func sortedTokens(s string) string {
	return strings.Join(slices.Sorted(slices.Values(strings.Fields(s))), " ")
}

func tokenSetOf(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

// round rounds half to even.
func round(x float64) int {
	return int(math.RoundToEven(x))
}
