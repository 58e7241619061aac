package model

import (
	"time"
)

const (
	// StatusPending indicates a task has not started yet.
	StatusPending = "pending"
	// StatusOK marks a task that completed without changing anything.
	StatusOK = "ok"
	// StatusChanged marks a task that changed remote state.
	StatusChanged = "changed"
	// StatusSkipped indicates the engine skipped the task.
	StatusSkipped = "skipped"
	// StatusFailed marks a failure during task execution.
	StatusFailed = "failed"
	// StatusWouldCreate indicates check mode would create a resource.
	StatusWouldCreate = "would_create"
	// StatusWouldUpdate indicates check mode would update a resource.
	StatusWouldUpdate = "would_update"
	// StatusWouldDelete indicates check mode would delete a resource.
	StatusWouldDelete = "would_delete"
)

// TaskResult captures the outcome of executing a single task.
type TaskResult struct {
	TaskID    string
	Module    string
	Status    string
	Message   string
	Diff      string
	Result    Result
	Error     error
	Duration  time.Duration
	Timestamp time.Time
}

// Changed reports whether the task changed remote state.
func (r *TaskResult) Changed() bool {
	return r != nil && r.Result.Changed()
}

// Summary counts task outcomes of a run.
type Summary struct {
	Total   int
	OK      int
	Changed int
	Skipped int
	Failed  int
	Pending int
}

// Summarize tallies results by status. Check mode outcomes count as pending
// changes.
func Summarize(results []TaskResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusOK:
			s.OK++
		case StatusChanged:
			s.Changed++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		case StatusWouldCreate, StatusWouldUpdate, StatusWouldDelete:
			s.Pending++
		}
	}
	return s
}
