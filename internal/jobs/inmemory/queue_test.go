package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"ledgerlens/internal/jobs"
	"ledgerlens/internal/rules"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.Task {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		task, err := store.GetJob(context.Background(), jobID)
		if err == nil && task.Status == want {
			return task
		}
		time.Sleep(10 * time.Millisecond)
	}
	task, _ := store.GetJob(context.Background(), jobID)
	t.Fatalf("job %s never reached status %s, last seen: %+v", jobID, want, task)
	return nil
}

func TestQueueRunsJobToCompletion(t *testing.T) {
	store := NewStore()
	queue := NewQueue(4, store)
	defer queue.Close()

	done := make(chan string, 1)
	handler := func(ctx context.Context, task *jobs.Task) error {
		_ = store.UpdateProgress(ctx, task.JobID, rules.Progress{Processed: 10, Total: 10, UpdatedCount: 3})
		done <- task.JobID
		return nil
	}
	if err := queue.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	task := &jobs.Task{Type: jobs.JobTypeApplyRules}
	if err := queue.Publish(context.Background(), task); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}

	final := waitForStatus(t, store, task.JobID, jobs.JobStatusCompleted)
	if final.Progress.UpdatedCount != 3 {
		t.Errorf("progress = %+v, want UpdatedCount 3", final.Progress)
	}
	if final.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
}

func TestQueueRetriesModelJob(t *testing.T) {
	store := NewStore()
	queue := NewQueue(4, store)
	defer queue.Close()

	attempts := make(chan int, 8)
	calls := 0
	handler := func(ctx context.Context, task *jobs.Task) error {
		calls++
		attempts <- calls
		if calls == 1 {
			return errors.New("model unavailable")
		}
		return nil
	}
	if err := queue.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	task := &jobs.Task{Type: jobs.JobTypeAICategorize}
	if err := queue.Publish(context.Background(), task); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	final := waitForStatus(t, store, task.JobID, jobs.JobStatusCompleted)
	if final.RetryCount != 1 {
		t.Errorf("retry count = %d, want 1", final.RetryCount)
	}
	if len(attempts) < 2 {
		t.Errorf("handler ran %d times, want 2", len(attempts))
	}
}

func TestQueueCancelRunningJob(t *testing.T) {
	store := NewStore()
	queue := NewQueue(4, store)
	defer queue.Close()

	started := make(chan struct{})
	handler := func(ctx context.Context, task *jobs.Task) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}
	if err := queue.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	task := &jobs.Task{Type: jobs.JobTypeApplyRules}
	if err := queue.Publish(context.Background(), task); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	<-started
	if err := queue.Cancel(task.JobID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	final := waitForStatus(t, store, task.JobID, jobs.JobStatusCancelled)
	if final.Error != "" {
		t.Errorf("cancelled job carries error %q, want none", final.Error)
	}
}

func TestQueueClosedRejectsPublish(t *testing.T) {
	store := NewStore()
	queue := NewQueue(1, store)
	if err := queue.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := queue.Publish(context.Background(), &jobs.Task{Type: jobs.JobTypeApplyRules}); err == nil {
		t.Error("expected error publishing to closed queue")
	}
}

func TestStoreListFilters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	seed := []*jobs.Task{
		{JobID: "j1", Type: jobs.JobTypeApplyRules, Status: jobs.JobStatusCompleted},
		{JobID: "j2", Type: jobs.JobTypeAICategorize, Status: jobs.JobStatusRunning},
		{JobID: "j3", Type: jobs.JobTypeAICategorize, Status: jobs.JobStatusCompleted},
	}
	for _, task := range seed {
		if err := store.SaveJob(ctx, task); err != nil {
			t.Fatalf("SaveJob: %v", err)
		}
	}

	got, err := store.ListJobs(ctx, jobs.JobFilter{Type: jobs.JobTypeAICategorize})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("type filter returned %d jobs, want 2", len(got))
	}

	got, err = store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusRunning})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(got) != 1 || got[0].JobID != "j2" {
		t.Errorf("status filter returned %+v, want only j2", got)
	}
}
