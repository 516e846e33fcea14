package session

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"ledgerlens/internal/domain"
)

// Snapshot is the whole session state as one JSON document. It is what the
// export endpoint returns and what the import endpoint accepts.
type Snapshot struct {
	Transactions []domain.Transaction  `json:"transactions"`
	Categories   []string              `json:"categories"`
	Rules        []domain.Rule         `json:"rules"`
	Assets       []domain.Asset        `json:"assets"`
	Goals        []domain.Goal         `json:"goals"`
	Widgets      []domain.WidgetConfig `json:"widgets"`
	Settings     domain.ImportSettings `json:"settings"`
}

// MergeOptions selects which snapshot fields to merge into the active
// session. Unselected fields are left untouched.
type MergeOptions struct {
	Transactions bool `json:"transactions"`
	Categories   bool `json:"categories"`
	Rules        bool `json:"rules"`
	Assets       bool `json:"assets"`
	Goals        bool `json:"goals"`
	Widgets      bool `json:"widgets"`
	Settings     bool `json:"settings"`
}

// Export captures the current session as a snapshot.
func (s *Store) Export() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Transactions: append([]domain.Transaction(nil), s.transactions...),
		Categories:   append([]string(nil), s.categories...),
		Rules:        append([]domain.Rule(nil), s.rules...),
		Assets:       append([]domain.Asset(nil), s.assets...),
		Goals:        append([]domain.Goal(nil), s.goals...),
		Widgets:      append([]domain.WidgetConfig(nil), s.widgets...),
		Settings:     s.settings,
	}
}

// ExportJSON serializes the session snapshot.
func (s *Store) ExportJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s.Export(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("exporting session: %w", err)
	}
	return data, nil
}

// Load replaces the entire session state with the snapshot, starting a brand
// new session.
func (s *Store) Load(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = append([]domain.Transaction(nil), snap.Transactions...)
	s.categories = append([]string(nil), snap.Categories...)
	s.rules = append([]domain.Rule(nil), snap.Rules...)
	s.assets = append([]domain.Asset(nil), snap.Assets...)
	s.goals = append([]domain.Goal(nil), snap.Goals...)
	s.widgets = append([]domain.WidgetConfig(nil), snap.Widgets...)
	if snap.Settings != (domain.ImportSettings{}) {
		s.settings = snap.Settings
	}
	s.addCategoryLocked(domain.Uncategorized)
}

// Merge folds selected snapshot fields into the active session. Imported
// entities whose ids collide with existing ones get fresh ids, so a snapshot
// can be merged into the session it was exported from without clobbering it.
func (s *Store) Merge(snap Snapshot, opts MergeOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.Transactions {
		existing := make(map[string]bool, len(s.transactions))
		for _, t := range s.transactions {
			existing[t.ID] = true
		}
		next := append([]domain.Transaction(nil), s.transactions...)
		for _, t := range snap.Transactions {
			if t.ID == "" || existing[t.ID] {
				t.ID = uuid.NewString()
			}
			existing[t.ID] = true
			next = append(next, t)
			s.addCategoryLocked(t.Category)
		}
		s.transactions = next
	}

	if opts.Categories {
		for _, c := range snap.Categories {
			s.addCategoryLocked(c)
		}
	}

	if opts.Rules {
		existing := make(map[string]bool, len(s.rules))
		for _, r := range s.rules {
			existing[r.ID] = true
		}
		for _, r := range snap.Rules {
			if r.ID == "" || existing[r.ID] {
				r.ID = uuid.NewString()
			}
			existing[r.ID] = true
			s.rules = append(s.rules, r)
			s.addCategoryLocked(r.Category)
		}
	}

	if opts.Assets {
		existing := make(map[string]bool, len(s.assets))
		for _, a := range s.assets {
			existing[a.ID] = true
		}
		for _, a := range snap.Assets {
			if a.ID == "" || existing[a.ID] {
				a.ID = uuid.NewString()
			}
			existing[a.ID] = true
			s.assets = append(s.assets, a)
		}
	}

	if opts.Goals {
		existing := make(map[string]bool, len(s.goals))
		for _, g := range s.goals {
			existing[g.ID] = true
		}
		for _, g := range snap.Goals {
			if g.ID == "" || existing[g.ID] {
				g.ID = uuid.NewString()
			}
			existing[g.ID] = true
			s.goals = append(s.goals, g)
		}
	}

	if opts.Widgets {
		existing := make(map[string]bool, len(s.widgets))
		for _, w := range s.widgets {
			existing[w.ID] = true
		}
		for _, w := range snap.Widgets {
			if w.ID == "" || existing[w.ID] {
				w.ID = uuid.NewString()
			}
			existing[w.ID] = true
			s.widgets = append(s.widgets, w)
		}
	}

	if opts.Settings {
		s.settings = snap.Settings
	}
}

// ParseSnapshot decodes an exported session document.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parsing session snapshot: %w", err)
	}
	return snap, nil
}
