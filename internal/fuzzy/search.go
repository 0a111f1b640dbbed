package fuzzy

import (
	"slices"
	"strings"
)

// Thresholds used by the gallery views.
const (
	// DefaultThreshold is the ranker's own default.
	DefaultThreshold = 0.6

	// ItemThreshold is the permissive threshold for item search.
	ItemThreshold = 0.4

	// TagThreshold is the stricter threshold for tag-only matching.
	TagThreshold = 0.6

	// TagPickerThreshold is used when picking tags by name in the admin.
	TagPickerThreshold = 0.5

	// WordContainsFloor is the minimum score of a word that contains the query.
	WordContainsFloor = 0.8
)

// FieldsFunc returns the searchable text of an item, in priority order.
// Empty strings are skipped.
type FieldsFunc[T any] func(item T) []string

// Scored pairs an item with its best similarity.
type Scored[T any] struct {
	Item       T
	Similarity float64
}

// Score computes the best similarity of query against the given fields.
// The query is expected to be lowercased and trimmed.
func Score(query string, fields []string) float64 {
	best := 0.0
	for _, text := range fields {
		if text == "" {
			continue
		}

		lower := strings.ToLower(text)
		if strings.Contains(lower, query) {
			return 1
		}

		for _, word := range strings.Fields(lower) {
			best = max(best, Similarity(query, word))
			if strings.Contains(word, query) {
				best = max(best, WordContainsFloor)
			}
		}

		best = max(best, Similarity(query, lower))
	}
	return best
}

// Rank scores every item against query and returns those at or above
// threshold, sorted by descending similarity. Items with equal scores
// keep their input order. A blank query returns every item with a
// score of 1 in input order.
func Rank[T any](items []T, query string, fields FieldsFunc[T], threshold float64) []Scored[T] {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		out := make([]Scored[T], len(items))
		for i, item := range items {
			out[i] = Scored[T]{Item: item, Similarity: 1}
		}
		return out
	}

	var scored []Scored[T]
	for _, item := range items {
		s := Score(q, fields(item))
		if s >= threshold {
			scored = append(scored, Scored[T]{Item: item, Similarity: s})
		}
	}

	slices.SortStableFunc(scored, func(a, b Scored[T]) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		}
		return 0
	})
	return scored
}

// Search is Rank with the scores dropped. A blank query returns items
// unchanged.
func Search[T any](items []T, query string, fields FieldsFunc[T], threshold float64) []T {
	if strings.TrimSpace(query) == "" {
		return items
	}

	ranked := Rank(items, query, fields, threshold)
	out := make([]T, len(ranked))
	for i, s := range ranked {
		out[i] = s.Item
	}
	return out
}
