// Package locale converts locale-formatted date and amount strings from bank
// exports into canonical values.
package locale

import (
	"strconv"
	"strings"
	"time"
)

// Supported date format tags.
const (
	FormatDMY = "DD.MM.YYYY"
	FormatMDY = "MM/DD/YYYY"
	FormatISO = "YYYY-MM-DD"
)

const canonicalLayout = "2006-01-02"

// Spreadsheet serial dates count days since 1899-12-30, so serial 25569 is the
// Unix epoch. Serials above this bound would be past year 9999.
const (
	serialEpochOffset = 25569
	maxSerial         = 2958465
)

// ParseDate converts a locale-formatted date string to canonical YYYY-MM-DD
// form. The second return value is false when the input cannot be parsed;
// ParseDate never panics on bad input.
func ParseDate(raw, format string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	// Spreadsheet cells often surface dates as serial-day numbers.
	if serial, ok := parseSerial(s); ok {
		return serial, true
	}

	switch format {
	case FormatDMY:
		if iso, ok := splitAndAssemble(s, ".", 0, 1, 2); ok {
			return iso, true
		}
	case FormatMDY:
		if iso, ok := splitAndAssemble(s, "/", 1, 0, 2); ok {
			return iso, true
		}
	case FormatISO:
		if t, err := time.Parse(canonicalLayout, s); err == nil {
			return t.Format(canonicalLayout), true
		}
	}

	return parseGeneric(s)
}

// FormatDate renders a canonical YYYY-MM-DD date in the given format tag.
// Unparseable input is returned unchanged.
func FormatDate(canonical, format string) string {
	t, err := time.Parse(canonicalLayout, canonical)
	if err != nil {
		return canonical
	}
	switch format {
	case FormatDMY:
		return t.Format("02.01.2006")
	case FormatMDY:
		return t.Format("01/02/2006")
	default:
		return t.Format(canonicalLayout)
	}
}

// parseSerial handles spreadsheet serial-date numbers: a bare integer with no
// separators, converted via the 1899-12-30 epoch.
func parseSerial(s string) (string, bool) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	serial, err := strconv.Atoi(s)
	if err != nil || serial <= 0 || serial > maxSerial {
		return "", false
	}
	unix := int64(serial-serialEpochOffset) * 86400
	return time.Unix(unix, 0).UTC().Format(canonicalLayout), true
}

// splitAndAssemble splits on the literal separator and reassembles the parts
// as a canonical date. Anything other than exactly three parts falls through
// to generic parsing.
func splitAndAssemble(s, sep string, dayIdx, monthIdx, yearIdx int) (string, bool) {
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return "", false
	}
	day := strings.TrimSpace(parts[dayIdx])
	month := strings.TrimSpace(parts[monthIdx])
	year := strings.TrimSpace(parts[yearIdx])
	if len(year) == 2 {
		// Two-digit years are assumed to be in the 2000s.
		year = "20" + year
	}
	t, err := time.Parse("2006-1-2", year+"-"+month+"-"+day)
	if err != nil {
		return "", false
	}
	return t.Format(canonicalLayout), true
}

var genericLayouts = []string{
	canonicalLayout,
	"2006/01/02",
	"02.01.2006",
	"01/02/2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

func parseGeneric(s string) (string, bool) {
	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(canonicalLayout), true
		}
	}
	return "", false
}
