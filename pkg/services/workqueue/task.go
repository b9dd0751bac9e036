package workqueue

import (
	"context"
	"sync"
	"time"
)

// TaskStatus represents the current state of a queued analysis job.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Task is a unit of analysis work. The queue owns scheduling; the task owns
// what running means and where its output goes.
type Task interface {
	// ID returns a unique identifier for this task.
	ID() string

	// Name returns a human-readable name for status reporting.
	Name() string

	// Execute runs the task. The context is cancelled when the task or the
	// whole queue is cancelled.
	Execute(ctx context.Context) error
}

// TaskState tracks a task through its lifecycle.
type TaskState struct {
	mu sync.RWMutex

	task        Task
	status      TaskStatus
	startedAt   *time.Time
	completedAt *time.Time
	err         error
	cancel      context.CancelFunc
}

func newTaskState(task Task) *TaskState {
	return &TaskState{task: task, status: TaskStatusPending}
}

// Task returns the underlying task.
func (ts *TaskState) Task() Task { return ts.task }

// Status returns the current status.
func (ts *TaskState) Status() TaskStatus {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.status
}

// Err returns the failure error, nil unless the task failed.
func (ts *TaskState) Err() error {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.err
}

// Snapshot is a point-in-time copy of a task's state for status endpoints.
type Snapshot struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      TaskStatus `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Snapshot copies the current state.
func (ts *TaskState) Snapshot() Snapshot {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	snap := Snapshot{
		ID:          ts.task.ID(),
		Name:        ts.task.Name(),
		Status:      ts.status,
		StartedAt:   ts.startedAt,
		CompletedAt: ts.completedAt,
	}
	if ts.err != nil {
		snap.Error = ts.err.Error()
	}
	return snap
}

// begin transitions the task from pending to running and installs its cancel
// function in one step. It reports false if the task is no longer pending,
// which happens when Cancel lands after the worker pops it off the queue.
func (ts *TaskState) begin(cancel context.CancelFunc) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.status != TaskStatusPending {
		return false
	}
	ts.status = TaskStatusRunning
	now := time.Now()
	ts.startedAt = &now
	ts.cancel = cancel
	return true
}

func (ts *TaskState) setStatus(status TaskStatus) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.status = status
	now := time.Now()
	switch status {
	case TaskStatusRunning:
		ts.startedAt = &now
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		ts.completedAt = &now
	}
}

func (ts *TaskState) setError(err error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.err = err
}
