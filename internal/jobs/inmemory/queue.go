package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ledgerlens/internal/jobs"
)

// Queue is an in-memory implementation of job publisher and consumer.
// It uses Go channels for job distribution and is safe for concurrent use.
// The session itself is in-memory, so a single-instance queue matches the
// durability of everything it operates on.
type Queue struct {
	jobChan   chan *jobs.Task
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	cancels   map[string]context.CancelFunc
	cancelled map[string]bool
	closed    bool
}

// NewQueue creates a new in-memory job queue.
// bufferSize determines how many jobs can be queued before Publish blocks.
func NewQueue(bufferSize int, store jobs.JobStore) *Queue {
	return &Queue{
		jobChan:   make(chan *jobs.Task, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		cancels:   make(map[string]context.CancelFunc),
		cancelled: make(map[string]bool),
	}
}

// Publish implements the Publisher interface.
// It enqueues a task for asynchronous processing.
func (q *Queue) Publish(ctx context.Context, task *jobs.Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	if task.JobID == "" {
		task.JobID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = jobs.JobStatusPending
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	if task.MaxRetries == 0 && task.Type == jobs.JobTypeAICategorize {
		task.MaxRetries = 2
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, task); err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
	}

	select {
	case q.jobChan <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return fmt.Errorf("queue is closed")
	}
}

// Start implements the Consumer interface.
// It starts consuming jobs from the queue and processes them using the provided handler.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("queue is closed")
	}
	q.mu.RUnlock()

	// A single worker: jobs mutate shared session state and must not race
	// each other.
	q.wg.Add(1)
	go q.worker(ctx, handler)

	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case task := <-q.jobChan:
			if task == nil {
				return
			}

			q.processJob(ctx, task, handler)
		}
	}
}

// Cancel implements the Canceler interface. A running job has its context
// cancelled; a pending job is marked so the worker skips it on pickup.
func (q *Queue) Cancel(jobID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if cancel, ok := q.cancels[jobID]; ok {
		cancel()
		return nil
	}

	if q.store != nil {
		if _, err := q.store.GetJob(context.Background(), jobID); err != nil {
			return err
		}
	}
	q.cancelled[jobID] = true
	return nil
}

// processJob executes a single job with retry logic.
func (q *Queue) processJob(ctx context.Context, task *jobs.Task, handler jobs.JobHandler) {
	q.mu.Lock()
	if q.cancelled[task.JobID] {
		delete(q.cancelled, task.JobID)
		q.mu.Unlock()
		q.finishCancelled(ctx, task)
		return
	}
	jobCtx, cancel := context.WithCancel(ctx)
	q.cancels[task.JobID] = cancel
	q.mu.Unlock()

	defer func() {
		cancel()
		q.mu.Lock()
		delete(q.cancels, task.JobID)
		q.mu.Unlock()
	}()

	task.Status = jobs.JobStatusRunning
	now := time.Now()
	task.StartedAt = &now

	if q.store != nil {
		_ = q.store.SaveJob(ctx, task)
	}

	err := handler(jobCtx, task)

	completedAt := time.Now()
	task.CompletedAt = &completedAt

	switch {
	case errors.Is(err, context.Canceled) && ctx.Err() == nil:
		// The job was cancelled, not the whole queue.
		task.Status = jobs.JobStatusCancelled
		task.Error = ""
	case err != nil:
		task.Error = err.Error()

		if task.RetryCount < task.MaxRetries {
			task.RetryCount++
			task.Status = jobs.JobStatusRetrying

			// Re-enqueue with backoff.
			backoff := time.Duration(task.RetryCount) * time.Second
			time.AfterFunc(backoff, func() {
				task.Status = jobs.JobStatusPending
				task.StartedAt = nil
				task.CompletedAt = nil
				_ = q.Publish(ctx, task)
			})
		} else {
			task.Status = jobs.JobStatusFailed
		}
	default:
		task.Status = jobs.JobStatusCompleted
		task.Error = ""
	}

	if q.store != nil {
		_ = q.store.SaveJob(ctx, task)
	}
}

func (q *Queue) finishCancelled(ctx context.Context, task *jobs.Task) {
	now := time.Now()
	task.Status = jobs.JobStatusCancelled
	task.CompletedAt = &now
	if q.store != nil {
		_ = q.store.SaveJob(ctx, task)
	}
}

// Stop implements the Consumer interface.
// It stops the queue and waits for all in-flight jobs to complete.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the Publisher interface.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

// Ensure Queue implements the queue interfaces.
var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
var _ jobs.Canceler = (*Queue)(nil)
