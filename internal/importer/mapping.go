// Package importer maps raw tabular statement data onto canonical
// transactions: it guesses which columns hold which fields, parses every data
// row with the configured locale settings, and reports per-row failures.
package importer

import (
	"regexp"
	"strings"

	"ledgerlens/internal/domain"
)

// Header substrings recognized per semantic role, covering English and German
// banking export conventions. Matching is case-insensitive.
var headerHints = map[string][]string{
	"date":        {"date", "datum", "zeit", "buchungstag", "valuta"},
	"amount":      {"amount", "betrag", "wert", "saldo", "umsatz"},
	"description": {"desc", "text", "verwendung", "payee", "beschreibung", "empfänger", "name"},
	"category":    {"cat", "kategorie"},
	"type":        {"type", "art"},
}

var (
	dateCellPattern   = regexp.MustCompile(`^\d{1,4}[./-]\d{1,2}[./-]\d{1,4}$`)
	amountCellPattern = regexp.MustCompile(`^-?[\d.,]+$`)
	digitPattern      = regexp.MustCompile(`\d`)
)

// GuessMapping inspects headers and the first data row to propose a column
// mapping. It is advisory only: the caller may override any assignment before
// committing an import. The function is pure and safe to re-run on settings
// changes.
func GuessMapping(headers []string, sample []string) domain.ColumnMapping {
	m := domain.NewColumnMapping()

	m.Date = matchHeader(headers, headerHints["date"])
	m.Amount = matchHeader(headers, headerHints["amount"])
	m.Description = matchHeader(headers, headerHints["description"])
	m.Category = matchHeader(headers, headerHints["category"])
	m.Type = matchHeader(headers, headerHints["type"])

	// Content sniffing on the first data row for roles without a header hit.
	// Cells claimed by one role are off limits for the next: a dotted date
	// also looks numeric and must not be mistaken for the amount.
	taken := map[int]bool{m.Date: true, m.Amount: true, m.Description: true, m.Category: true, m.Type: true}
	if m.Date == domain.ColumnNotPresent {
		m.Date = firstMatching(sample, taken, func(cell string) bool {
			return dateCellPattern.MatchString(strings.TrimSpace(cell))
		})
		taken[m.Date] = true
	}
	if m.Amount == domain.ColumnNotPresent {
		m.Amount = firstMatching(sample, taken, func(cell string) bool {
			return amountCellPattern.MatchString(strings.TrimSpace(cell))
		})
		taken[m.Amount] = true
	}
	if m.Description == domain.ColumnNotPresent {
		m.Description = longestDigitFree(sample, taken)
	}

	return m
}

func matchHeader(headers []string, hints []string) int {
	for i, h := range headers {
		lower := strings.ToLower(h)
		for _, hint := range hints {
			if strings.Contains(lower, hint) {
				return i
			}
		}
	}
	return domain.ColumnNotPresent
}

func firstMatching(cells []string, taken map[int]bool, pred func(string) bool) int {
	for i, c := range cells {
		if taken[i] {
			continue
		}
		if pred(c) {
			return i
		}
	}
	return domain.ColumnNotPresent
}

// longestDigitFree picks the longest cell containing no digits, the best
// guess for a free-text description column.
func longestDigitFree(cells []string, taken map[int]bool) int {
	best := domain.ColumnNotPresent
	bestLen := 0
	for i, c := range cells {
		if taken[i] || digitPattern.MatchString(c) {
			continue
		}
		if len(c) > bestLen {
			best = i
			bestLen = len(c)
		}
	}
	return best
}
