package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"ledgerlens/internal/domain"
	"ledgerlens/internal/rules"
	"ledgerlens/internal/tabular"
)

// Step is a single stage of the import pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State is the shared state threaded through the pipeline steps.
type State struct {
	// Inputs.
	Filename string
	Reader   io.Reader
	Settings domain.ImportSettings
	// Mapping overrides the guessed column mapping when non-nil; the UI lets
	// the user correct any assignment before committing.
	Mapping *domain.ColumnMapping
	Source  string
	Rules   []domain.Rule

	// Populated by steps.
	Grid            *tabular.Grid
	ResolvedMapping domain.ColumnMapping
	Result          Result
}

// ReadFileStep turns the uploaded file into a grid of string cells.
type ReadFileStep struct{}

func (s *ReadFileStep) Execute(ctx context.Context, state *State) error {
	grid, err := tabular.Read(state.Filename, state.Reader, state.Settings.Delimiter)
	if err != nil {
		return fmt.Errorf("reading %s: %w", state.Filename, err)
	}
	state.Grid = grid
	return nil
}

// ResolveMappingStep applies the user's mapping override or guesses one from
// headers and the first data row.
type ResolveMappingStep struct{}

func (s *ResolveMappingStep) Execute(ctx context.Context, state *State) error {
	if state.Mapping != nil {
		state.ResolvedMapping = *state.Mapping
		return nil
	}
	var sample []string
	if len(state.Grid.Rows) > 0 {
		sample = state.Grid.Rows[0]
	}
	state.ResolvedMapping = GuessMapping(state.Grid.Headers, sample)
	return nil
}

// MapRowsStep converts every data row into a transaction or a failure record.
type MapRowsStep struct{}

func (s *MapRowsStep) Execute(ctx context.Context, state *State) error {
	state.Result = MapRows(state.Grid.Rows, state.ResolvedMapping, state.Settings, state.Source)
	return nil
}

// ApplyRulesStep runs the categorization rules over the freshly imported
// transactions.
type ApplyRulesStep struct {
	Log zerolog.Logger
}

func (s *ApplyRulesStep) Execute(ctx context.Context, state *State) error {
	state.Result.Transactions = rules.Apply(state.Result.Transactions, state.Rules, s.Log)
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a pipeline from the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially, stopping at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("import step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewImportPipeline builds the standard four-step pipeline used both by the
// HTTP import endpoint and the parsecheck tool.
func NewImportPipeline(log zerolog.Logger) *Pipeline {
	return NewPipeline(
		&ReadFileStep{},
		&ResolveMappingStep{},
		&MapRowsStep{},
		&ApplyRulesStep{Log: log},
	)
}
