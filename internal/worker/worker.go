// Package worker executes background categorization jobs against the
// session store.
package worker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"ledgerlens/internal/ai"
	"ledgerlens/internal/domain"
	"ledgerlens/internal/jobs"
	"ledgerlens/internal/rules"
	"ledgerlens/internal/session"
)

// modelBatchSize is how many transactions go to the model per request. The
// response budget caps how many decisions fit in one reply.
const modelBatchSize = 50

// Worker wires job types to their implementations.
type Worker struct {
	store     *session.Store
	assistant ai.Assistant
	jobStore  jobs.JobStore
	log       zerolog.Logger
}

// New creates a worker. assistant may be nil when no provider is
// configured; model jobs then fail with a clear error.
func New(store *session.Store, assistant ai.Assistant, jobStore jobs.JobStore, log zerolog.Logger) *Worker {
	return &Worker{
		store:     store,
		assistant: assistant,
		jobStore:  jobStore,
		log:       log,
	}
}

// Handle implements jobs.JobHandler.
func (w *Worker) Handle(ctx context.Context, task *jobs.Task) error {
	switch task.Type {
	case jobs.JobTypeApplyRules:
		return w.applyRules(ctx, task)
	case jobs.JobTypeAICategorize:
		return w.aiCategorize(ctx, task)
	default:
		return fmt.Errorf("unknown job type %q", task.Type)
	}
}

// applyRules re-runs the rule set over every transaction in the session.
// The session is only replaced when the whole batch finishes; a cancelled
// run leaves it untouched.
func (w *Worker) applyRules(ctx context.Context, task *jobs.Task) error {
	txns := w.store.Transactions()
	ruleSet := w.store.Rules()

	opts := rules.BatchOptions{
		OnProgress: func(p rules.Progress) {
			_ = w.jobStore.UpdateProgress(ctx, task.JobID, p)
		},
	}

	result, progress, err := rules.ApplyBatch(ctx, txns, ruleSet, opts, w.log)
	if err != nil {
		return err
	}

	w.store.ReplaceTransactions(result)
	w.log.Info().
		Int("processed", progress.Processed).
		Int("updated", progress.UpdatedCount).
		Msg("Rule reapply finished")
	return nil
}

// aiCategorize sends the session's uncategorized transactions to the model
// in batches. Each batch's assignments are committed as they arrive, so a
// cancelled or failed run keeps the categories already assigned.
func (w *Worker) aiCategorize(ctx context.Context, task *jobs.Task) error {
	if w.assistant == nil {
		return fmt.Errorf("no AI provider configured")
	}

	var pending []domain.Transaction
	for _, t := range w.store.Transactions() {
		if t.Category == domain.Uncategorized || t.Category == "" {
			pending = append(pending, t)
		}
	}

	categories := w.store.Categories()
	progress := rules.Progress{Total: len(pending)}
	_ = w.jobStore.UpdateProgress(ctx, task.JobID, progress)

	for start := 0; start < len(pending); start += modelBatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + modelBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		assignments, err := w.assistant.Categorize(ctx, ai.RefsFromTransactions(batch), categories)
		if err != nil {
			return fmt.Errorf("categorizing batch at %d: %w", start, err)
		}

		byID := make(map[string]domain.Transaction, len(batch))
		for _, t := range batch {
			byID[t.ID] = t
		}
		for _, a := range assignments {
			t, ok := byID[a.ID]
			if !ok {
				continue
			}
			t.Category = a.Category
			if err := w.store.UpdateTransaction(t); err == nil {
				progress.UpdatedCount++
			}
		}

		progress.Processed = end
		_ = w.jobStore.UpdateProgress(ctx, task.JobID, progress)
	}

	w.log.Info().
		Int("processed", progress.Processed).
		Int("updated", progress.UpdatedCount).
		Msg("AI categorization finished")
	return nil
}
