package importer

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"ledgerlens/internal/domain"
	"ledgerlens/internal/locale"
)

// Tokens in a mapped type column that mark a row as income. Everything else
// falls back to the sign of the amount, interpreted per DirectionPolicy.
var incomeTokens = []string{"income", "haben", "gutschrift"}

// Result is the outcome of mapping one file's data rows. Every input row ends
// up in exactly one of the two slices.
type Result struct {
	Transactions []domain.Transaction `json:"transactions"`
	Failures     []domain.RowFailure  `json:"failures"`
}

// MapRows converts raw data rows into transactions using the column mapping
// and locale settings. Rows are independent: a failed row is recorded and
// skipped without affecting its neighbours.
func MapRows(rows [][]string, mapping domain.ColumnMapping, settings domain.ImportSettings, source string) Result {
	res := Result{
		Transactions: make([]domain.Transaction, 0, len(rows)),
	}

	for i, row := range rows {
		rowNum := i + 1
		tx, reason := mapRow(row, rowNum, mapping, settings, source)
		if reason != "" {
			res.Failures = append(res.Failures, domain.RowFailure{
				Row:    rowNum,
				Cells:  row,
				Reason: reason,
			})
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}

	return res
}

func mapRow(row []string, rowNum int, mapping domain.ColumnMapping, settings domain.ImportSettings, source string) (domain.Transaction, string) {
	rawDate := cellAt(row, mapping.Date)
	rawDesc := cellAt(row, mapping.Description)
	rawAmount := cellAt(row, mapping.Amount)

	date, ok := locale.ParseDate(rawDate, settings.DateFormat)
	if !ok {
		return domain.Transaction{}, domain.ReasonInvalidDateOrAmount
	}

	amount := locale.ParseAmount(rawAmount, settings.DecimalSeparator)
	if math.IsNaN(amount) {
		return domain.Transaction{}, domain.ReasonInvalidDateOrAmount
	}
	if amount == 0 {
		return domain.Transaction{}, domain.ReasonZeroAmount
	}

	txType := inferType(cellAt(row, mapping.Type), amount, settings.Direction)

	category := strings.TrimSpace(cellAt(row, mapping.Category))
	if category == "" {
		category = domain.Uncategorized
	}

	return domain.Transaction{
		ID:          newTransactionID(rowNum),
		Date:        date,
		Description: rawDesc,
		Amount:      math.Abs(amount),
		Type:        txType,
		Category:    category,
		Source:      source,
	}, ""
}

// inferType prefers an explicit type column; otherwise the sign of the parsed
// amount decides, interpreted under the configured direction policy.
func inferType(rawType string, amount float64, policy domain.DirectionPolicy) domain.TransactionType {
	if rawType != "" {
		lower := strings.ToLower(rawType)
		for _, token := range incomeTokens {
			if strings.Contains(lower, token) {
				return domain.Income
			}
		}
		return domain.Expense
	}

	positive := amount > 0
	if policy == domain.PositiveIsExpense {
		positive = !positive
	}
	if positive {
		return domain.Income
	}
	return domain.Expense
}

func cellAt(row []string, idx int) string {
	if idx == domain.ColumnNotPresent || idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// newTransactionID combines the row index with a random component so repeated
// imports of the same file never collide.
func newTransactionID(rowNum int) string {
	return fmt.Sprintf("txn-%d-%s", rowNum, uuid.NewString()[:8])
}
