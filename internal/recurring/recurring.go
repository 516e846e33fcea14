// Package recurring groups expense transactions by a normalized description
// prefix to surface likely recurring charges. It is a best-effort heuristic,
// not an exact-duplicate detector: prefix collisions across genuinely
// different merchants are expected.
package recurring

import (
	"sort"
	"strings"

	"ledgerlens/internal/domain"
)

// PrefixLength is how many characters of the lowered, trimmed description
// form the grouping key.
const PrefixLength = 15

// DefaultLimit caps the number of groups reported for display.
const DefaultLimit = 5

// Group is one set of expenses sharing a description prefix.
type Group struct {
	Description string  `json:"description"` // description of the most recent member
	Count       int     `json:"count"`
	LastAmount  float64 `json:"lastAmount"`
	LastDate    string  `json:"lastDate"`
}

// Detect reports description-prefix groups with more than one expense,
// sorted by most recent amount descending and capped to limit entries.
func Detect(txns []domain.Transaction, limit int) []Group {
	if limit <= 0 {
		limit = DefaultLimit
	}

	type bucket struct {
		count      int
		latest     domain.Transaction
	}
	buckets := make(map[string]*bucket)

	for _, t := range txns {
		if !t.IsExpense() {
			continue
		}
		key := prefixKey(t.Description)
		if key == "" {
			continue
		}
		b, ok := buckets[key]
		if !ok {
			buckets[key] = &bucket{count: 1, latest: t}
			continue
		}
		b.count++
		// Canonical dates compare lexicographically.
		if t.Date > b.latest.Date {
			b.latest = t
		}
	}

	var groups []Group
	for _, b := range buckets {
		if b.count < 2 {
			continue
		}
		groups = append(groups, Group{
			Description: b.latest.Description,
			Count:       b.count,
			LastAmount:  b.latest.Amount,
			LastDate:    b.latest.Date,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].LastAmount != groups[j].LastAmount {
			return groups[i].LastAmount > groups[j].LastAmount
		}
		return groups[i].Description < groups[j].Description
	})

	if len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

func prefixKey(description string) string {
	s := strings.ToLower(strings.TrimSpace(description))
	if len(s) > PrefixLength {
		s = s[:PrefixLength]
	}
	return s
}
