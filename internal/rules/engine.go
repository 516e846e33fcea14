// Package rules applies keyword and regex categorization rules to
// transactions, with a deterministic longest-keyword-wins tie-break.
package rules

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"ledgerlens/internal/domain"
)

// matcher is one compiled rule. Invalid regex rules compile to a nil pattern
// and never match.
type matcher struct {
	rule    domain.Rule
	pattern *regexp.Regexp // nil for literal rules and broken regexes
	broken  bool
	keyword string // lowered literal keyword
}

// compile sorts rules by descending keyword length and pre-compiles regex
// patterns. Ties are broken by keyword, then category, then id, so the result
// is stable regardless of insertion order. A broken regex is logged at warn
// level and treated as non-matching; it never aborts the batch.
func compile(ruleSet []domain.Rule, log zerolog.Logger) []matcher {
	sorted := make([]domain.Rule, len(ruleSet))
	copy(sorted, ruleSet)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if len(a.Keyword) != len(b.Keyword) {
			return len(a.Keyword) > len(b.Keyword)
		}
		if a.Keyword != b.Keyword {
			return a.Keyword < b.Keyword
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.ID < b.ID
	})

	matchers := make([]matcher, 0, len(sorted))
	for _, r := range sorted {
		m := matcher{rule: r}
		if r.IsRegex {
			p, err := regexp.Compile("(?i)" + r.Keyword)
			if err != nil {
				log.Warn().Str("keyword", r.Keyword).Err(err).Msg("Invalid regex rule, treating as non-matching")
				m.broken = true
			} else {
				m.pattern = p
			}
		} else {
			m.keyword = strings.ToLower(r.Keyword)
		}
		matchers = append(matchers, m)
	}
	return matchers
}

func (m matcher) matches(description string) bool {
	if m.broken {
		return false
	}
	if m.pattern != nil {
		return m.pattern.MatchString(description)
	}
	return strings.Contains(strings.ToLower(description), m.keyword)
}

// Apply runs the rule set over the transactions and returns a new slice; the
// input is never mutated. An empty rule set is the identity. For each
// transaction the first matching rule in specificity order wins.
func Apply(txns []domain.Transaction, ruleSet []domain.Rule, log zerolog.Logger) []domain.Transaction {
	if len(ruleSet) == 0 {
		return txns
	}

	matchers := compile(ruleSet, log)
	out := make([]domain.Transaction, len(txns))
	copy(out, txns)
	for i := range out {
		applyToTransaction(&out[i], matchers)
	}
	return out
}

// applyToTransaction assigns the category of the first matching rule.
// It reports whether the category changed.
func applyToTransaction(t *domain.Transaction, matchers []matcher) bool {
	desc := strings.TrimSpace(t.Description)
	for _, m := range matchers {
		if m.matches(desc) {
			if t.Category == m.rule.Category {
				return false
			}
			t.Category = m.rule.Category
			return true
		}
	}
	return false
}

// Categorize returns the category the rule set assigns to a single
// description, or "" when no rule matches. Used for on-demand lookups.
func Categorize(description string, ruleSet []domain.Rule, log zerolog.Logger) string {
	t := domain.Transaction{Description: description}
	if applyToTransaction(&t, compile(ruleSet, log)) {
		return t.Category
	}
	return ""
}
