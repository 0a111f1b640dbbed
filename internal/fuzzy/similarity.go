// Package fuzzy implements edit-distance based similarity scoring and a
// threshold ranker used by the gallery search.
package fuzzy

import "strings"

// Levenshtein returns the edit distance between a and b, counting
// insertions, deletions and substitutions at unit cost. Strings are
// compared rune by rune.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Similarity returns a case-insensitive score in [0, 1] where 1 is an
// exact match. Two empty strings are a perfect match.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1
	}

	distance := Levenshtein(a, b)
	return float64(maxLen-distance) / float64(maxLen)
}
