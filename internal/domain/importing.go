package domain

// ColumnNotPresent marks a semantic role with no corresponding column in the
// uploaded file.
const ColumnNotPresent = -1

// ColumnMapping assigns raw column indices to semantic transaction fields.
// It is per-import configuration and is not persisted beyond the import flow.
type ColumnMapping struct {
	Date        int `json:"date"`
	Description int `json:"description"`
	Amount      int `json:"amount"`
	Category    int `json:"category"`
	Type        int `json:"type"`
}

// NewColumnMapping returns a mapping with every role marked as not present.
func NewColumnMapping() ColumnMapping {
	return ColumnMapping{
		Date:        ColumnNotPresent,
		Description: ColumnNotPresent,
		Amount:      ColumnNotPresent,
		Category:    ColumnNotPresent,
		Type:        ColumnNotPresent,
	}
}

// DirectionPolicy decides how the sign of a parsed amount maps to a
// transaction type when no type column is available. Bank exports disagree on
// this convention, so it is explicit configuration rather than a hardcoded
// heuristic.
type DirectionPolicy string

const (
	// PositiveIsIncome treats positive raw amounts as money in. This is the
	// default and matches most consumer current-account exports.
	PositiveIsIncome DirectionPolicy = "positive_is_income"
	// PositiveIsExpense treats positive raw amounts as money out, the
	// convention of many credit-card exports (debit = positive).
	PositiveIsExpense DirectionPolicy = "positive_is_expense"
)

// ImportSettings are the locale conventions of one import run. They affect
// parsing only and never mutate already-imported data.
type ImportSettings struct {
	Delimiter        string          `json:"delimiter" yaml:"delimiter"`
	DateFormat       string          `json:"dateFormat" yaml:"date_format"`
	DecimalSeparator string          `json:"decimalSeparator" yaml:"decimal_separator"`
	Direction        DirectionPolicy `json:"direction" yaml:"direction"`
}

// DefaultImportSettings matches the most common English-language CSV export.
func DefaultImportSettings() ImportSettings {
	return ImportSettings{
		Delimiter:        ",",
		DateFormat:       "YYYY-MM-DD",
		DecimalSeparator: ".",
		Direction:        PositiveIsIncome,
	}
}

// RowFailure records one data row the mapper could not turn into a
// transaction. Failures are surfaced for user review, never retried.
type RowFailure struct {
	Row    int      `json:"row"` // 1-based data row number, header excluded
	Cells  []string `json:"cells"`
	Reason string   `json:"reason"`
}

// Failure reasons reported by the row mapper.
const (
	ReasonInvalidDateOrAmount = "Invalid Date or Amount"
	ReasonZeroAmount          = "Zero amount"
)
