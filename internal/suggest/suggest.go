package suggest

import (
	"strings"

	"github.com/agext/levenshtein"
)

// Distance is the case-insensitive edit distance between a and b.
func Distance(a, b string) int {
	return levenshtein.Distance(strings.ToLower(a), strings.ToLower(b), nil)
}

// Closest returns the candidate nearest to word by case-insensitive edit
// distance. Candidates further than a third of the word's length (at least
// one edit) are not considered; ok is false when none is left. Ties go to the
// earlier candidate.
func Closest(word string, candidates ...string) (best string, ok bool) {
	limit := max(1, len(word)/3)
	bestDist := limit + 1

	for _, c := range candidates {
		if d := Distance(word, c); d < bestDist {
			best, bestDist = c, d
		}
	}

	return best, bestDist <= limit
}
