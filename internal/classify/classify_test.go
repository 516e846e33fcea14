package classify

import (
	"errors"
	"testing"

	"ledgerlens/internal/domain"
)

func trainingHistory() []domain.Transaction {
	return []domain.Transaction{
		{ID: "t1", Description: "REWE Markt Koeln", Category: "Groceries"},
		{ID: "t2", Description: "REWE Markt Bonn", Category: "Groceries"},
		{ID: "t3", Description: "EDEKA Supermarkt", Category: "Groceries"},
		{ID: "t4", Description: "Shell Tankstelle", Category: "Transport"},
		{ID: "t5", Description: "Aral Tankstelle Autobahn", Category: "Transport"},
		{ID: "t6", Description: "Deutsche Bahn Ticket", Category: "Transport"},
		{ID: "t7", Description: "Netflix Abo", Category: "Entertainment"},
		{ID: "t8", Description: "Spotify Premium", Category: "Entertainment"},
		{ID: "t9", Description: "Mystery Merchant", Category: domain.Uncategorized},
	}
}

func TestTrainRequiresTwoCategories(t *testing.T) {
	_, err := Train([]domain.Transaction{
		{ID: "t1", Description: "REWE", Category: "Groceries"},
		{ID: "t2", Description: "EDEKA", Category: "Groceries"},
		{ID: "t3", Description: "Shell", Category: domain.Uncategorized},
	})
	if !errors.Is(err, ErrNotEnoughData) {
		t.Fatalf("expected ErrNotEnoughData, got %v", err)
	}
}

func TestSuggestKnownMerchant(t *testing.T) {
	s, err := Train(trainingHistory())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	got := s.Suggest("REWE Markt Duesseldorf")
	if len(got) == 0 {
		t.Fatal("expected at least one suggestion")
	}
	if got[0] != "Groceries" {
		t.Errorf("top suggestion = %q, want Groceries (all: %v)", got[0], got)
	}
}

func TestSuggestTokenizesPunctuation(t *testing.T) {
	s, err := Train(trainingHistory())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	got := s.Suggest("SHELL*TANKSTELLE 042")
	if len(got) == 0 || got[0] != "Transport" {
		t.Errorf("suggestions = %v, want Transport first", got)
	}
}

func TestSuggestEmptyDescription(t *testing.T) {
	s, err := Train(trainingHistory())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if got := s.Suggest("   "); got != nil {
		t.Errorf("expected nil for blank description, got %v", got)
	}
}
