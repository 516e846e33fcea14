// Package session holds the whole application state for one session in
// memory. Nothing is persisted: the store lives exactly as long as the
// process (or until a session import replaces it).
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"ledgerlens/internal/domain"
)

// DefaultCategories seed a fresh session.
var DefaultCategories = []string{
	"Housing",
	"Food",
	"Transport",
	"Entertainment",
	"Health",
	"Shopping",
	"Salary",
	domain.Uncategorized,
}

// Store is the in-memory session state. It is safe for concurrent use; the
// transaction slice is always replaced wholesale (copy-on-write), never
// mutated in place, so readers always observe a consistent snapshot.
type Store struct {
	mu           sync.RWMutex
	transactions []domain.Transaction
	categories   []string
	rules        []domain.Rule
	assets       []domain.Asset
	goals        []domain.Goal
	widgets      []domain.WidgetConfig
	settings     domain.ImportSettings
}

// NewStore creates a session seeded with the default category set.
func NewStore() *Store {
	return &Store{
		categories: append([]string(nil), DefaultCategories...),
		settings:   domain.DefaultImportSettings(),
	}
}

// Transactions returns a copy of the current transaction set.
func (s *Store) Transactions() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// ReplaceTransactions swaps in a new transaction set wholesale.
func (s *Store) ReplaceTransactions(txns []domain.Transaction) {
	replacement := make([]domain.Transaction, len(txns))
	copy(replacement, txns)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = replacement
}

// AddTransactions appends imported or manually entered transactions and
// registers any categories they carry that the session does not know yet.
func (s *Store) AddTransactions(txns []domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Transaction, 0, len(s.transactions)+len(txns))
	next = append(next, s.transactions...)
	next = append(next, txns...)
	s.transactions = next

	for _, t := range txns {
		s.addCategoryLocked(t.Category)
	}
}

// UpdateTransaction replaces the transaction with the same id.
func (s *Store) UpdateTransaction(tx domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.transactions {
		if t.ID == tx.ID {
			next := make([]domain.Transaction, len(s.transactions))
			copy(next, s.transactions)
			next[i] = tx
			s.transactions = next
			s.addCategoryLocked(tx.Category)
			return nil
		}
	}
	return fmt.Errorf("transaction not found: %s", tx.ID)
}

// DeleteTransaction removes a single transaction by id.
func (s *Store) DeleteTransaction(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Transaction, 0, len(s.transactions))
	found := false
	for _, t := range s.transactions {
		if t.ID == id {
			found = true
			continue
		}
		next = append(next, t)
	}
	if !found {
		return fmt.Errorf("transaction not found: %s", id)
	}
	s.transactions = next
	return nil
}

// DeleteBySource removes every transaction that came from the given import
// source and reports how many were dropped.
func (s *Store) DeleteBySource(source string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Transaction, 0, len(s.transactions))
	removed := 0
	for _, t := range s.transactions {
		if t.Source == source {
			removed++
			continue
		}
		next = append(next, t)
	}
	s.transactions = next
	return removed
}

// Categories returns a copy of the session category set.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.categories...)
}

// AddCategory registers a new category label; duplicates are ignored.
func (s *Store) AddCategory(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addCategoryLocked(name)
}

func (s *Store) addCategoryLocked(name string) {
	if name == "" {
		return
	}
	for _, c := range s.categories {
		if c == name {
			return
		}
	}
	s.categories = append(s.categories, name)
}

// RenameCategory renames a category and cascades the rename through
// transactions and rules.
func (s *Store) RenameCategory(from, to string) error {
	if from == domain.Uncategorized {
		return fmt.Errorf("the %s sentinel cannot be renamed", domain.Uncategorized)
	}
	if to == "" {
		return fmt.Errorf("empty category name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i, c := range s.categories {
		if c == from {
			s.categories[i] = to
			found = true
		}
	}
	if !found {
		return fmt.Errorf("category not found: %s", from)
	}

	next := make([]domain.Transaction, len(s.transactions))
	copy(next, s.transactions)
	for i := range next {
		if next[i].Category == from {
			next[i].Category = to
		}
	}
	s.transactions = next

	for i := range s.rules {
		if s.rules[i].Category == from {
			s.rules[i].Category = to
		}
	}
	return nil
}

// DeleteCategory removes a category; affected transactions fall back to the
// Uncategorized sentinel and rules targeting it are dropped.
func (s *Store) DeleteCategory(name string) error {
	if name == domain.Uncategorized {
		return fmt.Errorf("the %s sentinel cannot be deleted", domain.Uncategorized)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]string, 0, len(s.categories))
	found := false
	for _, c := range s.categories {
		if c == name {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return fmt.Errorf("category not found: %s", name)
	}
	s.categories = kept

	next := make([]domain.Transaction, len(s.transactions))
	copy(next, s.transactions)
	for i := range next {
		if next[i].Category == name {
			next[i].Category = domain.Uncategorized
		}
	}
	s.transactions = next

	keptRules := make([]domain.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		if r.Category == name {
			continue
		}
		keptRules = append(keptRules, r)
	}
	s.rules = keptRules
	return nil
}

// Rules returns a copy of the session rule set.
func (s *Store) Rules() []domain.Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Rule(nil), s.rules...)
}

// AddRule stores a new categorization rule, assigning an id when missing.
func (s *Store) AddRule(r domain.Rule) domain.Rule {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, r)
	s.addCategoryLocked(r.Category)
	return r
}

// DeleteRule removes a rule by id. Rules are never deleted implicitly.
func (s *Store) DeleteRule(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Rule, 0, len(s.rules))
	found := false
	for _, r := range s.rules {
		if r.ID == id {
			found = true
			continue
		}
		next = append(next, r)
	}
	if !found {
		return fmt.Errorf("rule not found: %s", id)
	}
	s.rules = next
	return nil
}

// Assets returns a copy of the tracked assets.
func (s *Store) Assets() []domain.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Asset(nil), s.assets...)
}

// Goals returns a copy of the savings goals.
func (s *Store) Goals() []domain.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Goal(nil), s.goals...)
}

// Widgets returns a copy of the dashboard widget configs.
func (s *Store) Widgets() []domain.WidgetConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.WidgetConfig(nil), s.widgets...)
}

// Settings returns the session import settings.
func (s *Store) Settings() domain.ImportSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetSettings replaces the session import settings. Already imported data is
// unaffected.
func (s *Store) SetSettings(settings domain.ImportSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}
