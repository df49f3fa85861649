// Package fuzzy ranks candidate items against a query by substring
// containment first and edit distance second.
package fuzzy

import (
	"sort"
	"strings"
)

// DefaultMaxDistance is the edit-distance cutoff used when a caller does not
// supply one.
const DefaultMaxDistance = 3

// Match pairs an item with its score. A score of 0 means the item's field
// contains the query as a substring; any positive score is the edit distance
// between the query and the field.
type Match[T any] struct {
	Item  T   `json:"item"`
	Score int `json:"score"`
}

// Search ranks items against query using the string extracted by field.
// Containment matches are pinned to score 0 so they always rank ahead of
// non-containing matches and are never filtered by maxDistance; everything
// else scores its edit distance and is dropped when that exceeds
// maxDistance. The sort is stable, so equal scores preserve input order. An
// empty query is contained in every field and therefore matches everything
// at score 0.
func Search[T any](query string, items []T, field func(T) string, maxDistance int) []Match[T] {
	queryLower := strings.ToLower(query)

	matches := make([]Match[T], 0, len(items))
	for _, item := range items {
		fieldValue := strings.ToLower(field(item))

		score := 0
		if !strings.Contains(fieldValue, queryLower) {
			score = Levenshtein(queryLower, fieldValue)
		}
		if score > maxDistance {
			continue
		}
		matches = append(matches, Match[T]{Item: item, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score < matches[j].Score })
	return matches
}
