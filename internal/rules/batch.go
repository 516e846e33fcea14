package rules

import (
	"context"

	"github.com/rs/zerolog"

	"ledgerlens/internal/domain"
)

// DefaultChunkSize is how many transactions are processed between
// cancellation checks and progress reports.
const DefaultChunkSize = 250

// Progress is the incremental state of a bulk rule application.
type Progress struct {
	Processed    int `json:"processed"`
	Total        int `json:"total"`
	UpdatedCount int `json:"updatedCount"`
}

// BatchOptions configure ApplyBatch.
type BatchOptions struct {
	// ChunkSize is the number of transactions per chunk; DefaultChunkSize
	// when zero or negative.
	ChunkSize int
	// OnProgress, when set, is called after every chunk.
	OnProgress func(Progress)
}

// ApplyBatch applies the rule set to a large transaction set in chunks,
// checking ctx between chunks so the operation stays cancellable, and
// reporting progress after each chunk. On cancellation the input is returned
// unchanged along with ctx.Err(); partial results are never committed.
func ApplyBatch(ctx context.Context, txns []domain.Transaction, ruleSet []domain.Rule, opts BatchOptions, log zerolog.Logger) ([]domain.Transaction, Progress, error) {
	progress := Progress{Total: len(txns)}
	if len(ruleSet) == 0 || len(txns) == 0 {
		progress.Processed = len(txns)
		if opts.OnProgress != nil {
			opts.OnProgress(progress)
		}
		return txns, progress, nil
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	matchers := compile(ruleSet, log)
	out := make([]domain.Transaction, len(txns))
	copy(out, txns)

	for start := 0; start < len(out); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return txns, progress, err
		}

		end := start + chunkSize
		if end > len(out) {
			end = len(out)
		}
		for i := start; i < end; i++ {
			if applyToTransaction(&out[i], matchers) {
				progress.UpdatedCount++
			}
		}
		progress.Processed = end
		if opts.OnProgress != nil {
			opts.OnProgress(progress)
		}
	}

	return out, progress, nil
}
