package domain

// Uncategorized is the sentinel category assigned to transactions the rule
// engine and the AI collaborator have not classified yet.
const Uncategorized = "Uncategorized"

// TransactionType captures the direction of a money movement. Direction lives
// only here; Amount is always a magnitude.
type TransactionType string

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

// Transaction is one normalized financial movement. Dates are canonical
// YYYY-MM-DD strings regardless of the locale format the source used, and
// Amount is non-negative: the sign of the raw value is erased at parse time.
type Transaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"` // YYYY-MM-DD
	Description string          `json:"description"`
	Amount      float64         `json:"amount"` // always >= 0
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Source      string          `json:"source,omitempty"`
}

// IsExpense reports whether the transaction is money going out.
func (t Transaction) IsExpense() bool {
	return t.Type == Expense
}

// SignedAmount returns the amount with direction restored: positive for
// income, negative for expenses.
func (t Transaction) SignedAmount() float64 {
	if t.Type == Expense {
		return -t.Amount
	}
	return t.Amount
}
