package session

import (
	"testing"

	"ledgerlens/internal/domain"
)

func seed(s *Store) {
	s.AddTransactions([]domain.Transaction{
		{ID: "t1", Date: "2023-01-01", Description: "MIETE", Amount: 900, Type: domain.Expense, Category: "Housing", Source: "giro"},
		{ID: "t2", Date: "2023-01-02", Description: "REWE", Amount: 54, Type: domain.Expense, Category: "Food", Source: "giro"},
		{ID: "t3", Date: "2023-01-03", Description: "GEHALT", Amount: 2500, Type: domain.Income, Category: "Salary", Source: "visa"},
	})
}

func TestAddAndDeleteBySource(t *testing.T) {
	s := NewStore()
	seed(s)

	if removed := s.DeleteBySource("giro"); removed != 2 {
		t.Errorf("removed %d, want 2", removed)
	}
	if got := s.Transactions(); len(got) != 1 || got[0].ID != "t3" {
		t.Errorf("remaining = %+v", got)
	}
}

func TestTransactionsReturnsCopy(t *testing.T) {
	s := NewStore()
	seed(s)

	snapshot := s.Transactions()
	snapshot[0].Category = "Mutated"

	if s.Transactions()[0].Category == "Mutated" {
		t.Error("mutating a returned slice leaked into the store")
	}
}

func TestRenameCategoryCascades(t *testing.T) {
	s := NewStore()
	seed(s)
	s.AddRule(domain.Rule{Keyword: "rewe", Category: "Food"})

	if err := s.RenameCategory("Food", "Groceries"); err != nil {
		t.Fatalf("RenameCategory failed: %v", err)
	}

	for _, tx := range s.Transactions() {
		if tx.Category == "Food" {
			t.Error("transaction still carries the old category name")
		}
	}
	if s.Rules()[0].Category != "Groceries" {
		t.Errorf("rule category = %q, want Groceries", s.Rules()[0].Category)
	}
	for _, c := range s.Categories() {
		if c == "Food" {
			t.Error("old category name still registered")
		}
	}
}

func TestDeleteCategoryCascades(t *testing.T) {
	s := NewStore()
	seed(s)
	s.AddRule(domain.Rule{Keyword: "rewe", Category: "Food"})

	if err := s.DeleteCategory("Food"); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}

	for _, tx := range s.Transactions() {
		if tx.ID == "t2" && tx.Category != domain.Uncategorized {
			t.Errorf("t2 category = %q, want sentinel", tx.Category)
		}
	}
	if len(s.Rules()) != 0 {
		t.Error("rules targeting a deleted category must be dropped")
	}
}

func TestUncategorizedSentinelProtected(t *testing.T) {
	s := NewStore()
	if err := s.DeleteCategory(domain.Uncategorized); err == nil {
		t.Error("deleting the sentinel must fail")
	}
	if err := s.RenameCategory(domain.Uncategorized, "Other"); err == nil {
		t.Error("renaming the sentinel must fail")
	}
}

func TestExportLoadRoundTrip(t *testing.T) {
	s := NewStore()
	seed(s)
	s.AddRule(domain.Rule{ID: "r1", Keyword: "miete", Category: "Housing"})

	data, err := s.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	snap, err := ParseSnapshot(data)
	if err != nil {
		t.Fatalf("ParseSnapshot failed: %v", err)
	}

	fresh := NewStore()
	fresh.Load(snap)

	if len(fresh.Transactions()) != 3 {
		t.Errorf("got %d transactions after load, want 3", len(fresh.Transactions()))
	}
	if len(fresh.Rules()) != 1 {
		t.Errorf("got %d rules after load, want 1", len(fresh.Rules()))
	}
	if fresh.Settings() != s.Settings() {
		t.Error("settings lost in round trip")
	}
}

func TestMergeRegeneratesCollidingIDs(t *testing.T) {
	s := NewStore()
	seed(s)
	snap := s.Export()

	// Merging a session's own export back must duplicate rows under new ids,
	// never clobber existing ones.
	s.Merge(snap, MergeOptions{Transactions: true})

	txns := s.Transactions()
	if len(txns) != 6 {
		t.Fatalf("got %d transactions after merge, want 6", len(txns))
	}
	seen := make(map[string]bool)
	for _, tx := range txns {
		if seen[tx.ID] {
			t.Errorf("duplicate id after merge: %s", tx.ID)
		}
		seen[tx.ID] = true
	}
}

func TestMergeSelectsFields(t *testing.T) {
	s := NewStore()
	snap := Snapshot{
		Transactions: []domain.Transaction{{ID: "x", Date: "2023-05-01", Description: "A", Amount: 1, Type: domain.Expense, Category: domain.Uncategorized}},
		Rules:        []domain.Rule{{ID: "r", Keyword: "a", Category: "B"}},
	}

	s.Merge(snap, MergeOptions{Rules: true})

	if len(s.Transactions()) != 0 {
		t.Error("transactions merged although not selected")
	}
	if len(s.Rules()) != 1 {
		t.Error("rules not merged although selected")
	}
}
