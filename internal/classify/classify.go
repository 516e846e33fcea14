// Package classify offers local, offline category suggestions from a naive
// Bayes classifier trained on the session's already-categorized transactions.
// It complements the hosted model: instant, free, and available without an
// API key, at the cost of accuracy on merchants it has never seen.
package classify

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/jbrukh/bayesian"

	"ledgerlens/internal/domain"
)

// MinTrainingCategories is the smallest number of distinct categories a
// useful classifier needs.
const MinTrainingCategories = 2

const maxSuggestions = 5

// ErrNotEnoughData is returned when the categorized history spans fewer than
// MinTrainingCategories categories.
var ErrNotEnoughData = errors.New("not enough categorized transactions to train on")

// Suggester scores descriptions against categories learned from history.
type Suggester struct {
	classes    []bayesian.Class
	classifier *bayesian.Classifier
}

// Train builds a TF-IDF classifier from the categorized transactions in
// txns. Uncategorized rows are skipped.
func Train(txns []domain.Transaction) (*Suggester, error) {
	byCategory := make(map[string]bool)
	for _, t := range txns {
		if t.Category == "" || t.Category == domain.Uncategorized {
			continue
		}
		byCategory[t.Category] = true
	}
	if len(byCategory) < MinTrainingCategories {
		return nil, ErrNotEnoughData
	}

	classes := make([]bayesian.Class, 0, len(byCategory))
	for category := range byCategory {
		classes = append(classes, bayesian.Class(category))
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	classifier := bayesian.NewClassifierTfIdf(classes...)
	for _, t := range txns {
		if t.Category == "" || t.Category == domain.Uncategorized {
			continue
		}
		classifier.Learn(tokenize(t.Description), bayesian.Class(t.Category))
	}
	classifier.ConvertTermsFreqToTfIdf()

	return &Suggester{classes: classes, classifier: classifier}, nil
}

// Suggest returns up to five candidate categories for a description, best
// first. Candidates more than one standard deviation below the leader are
// cut off; a confident classifier returns a short list.
func (s *Suggester) Suggest(description string) []string {
	terms := tokenize(description)
	if len(terms) == 0 {
		return nil
	}
	scores, _, _ := s.classifier.LogScores(terms)

	type pair struct {
		score float64
		pos   int
	}
	pairs := make([]pair, 0, len(scores))
	var mean, stddev float64
	for pos, score := range scores {
		pairs = append(pairs, pair{score, pos})
		mean += score
	}
	mean /= float64(len(scores))
	for _, score := range scores {
		diff := score - mean
		stddev += diff * diff
	}
	stddev /= float64(len(scores) - 1)
	stddev = math.Sqrt(stddev)

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })

	result := make([]string, 0, maxSuggestions)
	last := pairs[0].score
	limit := len(pairs)
	if limit > maxSuggestions {
		limit = maxSuggestions
	}
	for i := 0; i < limit; i++ {
		p := pairs[i]
		if math.Abs(p.score-last) > stddev {
			break
		}
		result = append(result, string(s.classes[p.pos]))
		last = p.score
	}
	return result
}

// tokenize lowercases a description and splits it into whitespace-separated
// terms, shedding punctuation that merchants pad descriptions with.
func tokenize(description string) []string {
	description = strings.ToLower(description)
	description = strings.ReplaceAll(description, "*", " ")
	return strings.Fields(description)
}
