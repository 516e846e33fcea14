// Package ai talks to a hosted large-language-model service for transaction
// categorization, rule mining and natural-language analytics. The service is
// treated as an unreliable external collaborator: every response is validated
// at this boundary and a failure is terminal for that call, never corrupting
// session state.
package ai

import (
	"context"
	"errors"

	"ledgerlens/internal/domain"
)

// ErrEmptyResponse is returned when the model produced no usable output.
var ErrEmptyResponse = errors.New("empty response from model")

// TransactionRef is the slimmed-down transaction view sent to the model.
type TransactionRef struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// CategoryAssignment is one categorization decision returned by the model.
type CategoryAssignment struct {
	ID       string `json:"id"`
	Category string `json:"category"`
}

// RuleSuggestion is a keyword rule mined from categorized history.
type RuleSuggestion struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}

// AnalysisResult is the answer to a natural-language query: free text, a
// chart configuration, or both.
type AnalysisResult struct {
	Text  string       `json:"text,omitempty"`
	Chart *ChartConfig `json:"chart,omitempty"`
}

// Assistant is the contract with the external model. Implementations are
// injected explicitly into whatever needs them; there is no ambient
// process-wide client.
type Assistant interface {
	// Categorize assigns one of the available categories to each
	// transaction. Transactions the model cannot place are omitted from the
	// result.
	Categorize(ctx context.Context, txns []TransactionRef, categories []string) ([]CategoryAssignment, error)

	// MineRules derives keyword rules from already-categorized history.
	MineRules(ctx context.Context, txns []domain.Transaction) ([]RuleSuggestion, error)

	// Analyze answers a natural-language query over the transaction data
	// with free text and/or a chart configuration.
	Analyze(ctx context.Context, query string, txns []domain.Transaction) (*AnalysisResult, error)
}

// RefsFromTransactions projects transactions onto the request contract.
func RefsFromTransactions(txns []domain.Transaction) []TransactionRef {
	refs := make([]TransactionRef, len(txns))
	for i, t := range txns {
		refs[i] = TransactionRef{ID: t.ID, Description: t.Description, Amount: t.SignedAmount()}
	}
	return refs
}
