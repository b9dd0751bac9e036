package workqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrQueueClosed is returned when enqueueing after shutdown.
var ErrQueueClosed = errors.New("workqueue closed")

// Queue runs analysis tasks one at a time on a single worker goroutine. The
// engine itself is synchronous; the queue exists so callers can submit a
// table, poll for the result, and cancel jobs they no longer care about.
type Queue struct {
	mu      sync.Mutex
	pending []*TaskState
	states  map[string]*TaskState
	closed  bool

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *zap.Logger
}

// New creates a queue. Call Start to launch the worker.
func New(logger *zap.Logger) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		states: make(map[string]*TaskState),
		wake:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		logger: logger.Named("workqueue"),
	}
}

// Start launches the worker goroutine.
func (q *Queue) Start() {
	q.wg.Add(1)
	go q.run()
}

// Enqueue schedules a task. Task IDs must be unique for the queue lifetime.
func (q *Queue) Enqueue(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if _, exists := q.states[task.ID()]; exists {
		return fmt.Errorf("task %s already enqueued", task.ID())
	}

	state := newTaskState(task)
	q.states[task.ID()] = state
	q.pending = append(q.pending, state)
	q.logger.Info("Task enqueued",
		zap.String("task_id", task.ID()),
		zap.String("task_name", task.Name()))

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// Get returns the state of a previously enqueued task.
func (q *Queue) Get(id string) (*TaskState, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	state, ok := q.states[id]
	return state, ok
}

// Stats summarizes queue occupancy by task status.
type Stats struct {
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// Stats counts every known task by its current status.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	var s Stats
	for _, state := range q.states {
		switch state.Status() {
		case TaskStatusPending:
			s.Pending++
		case TaskStatusRunning:
			s.Running++
		case TaskStatusCompleted:
			s.Completed++
		case TaskStatusFailed:
			s.Failed++
		case TaskStatusCancelled:
			s.Cancelled++
		}
	}
	return s
}

// Cancel cancels a pending or running task. Cancelling a finished task is a
// no-op; unknown IDs report false.
func (q *Queue) Cancel(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	state, ok := q.states[id]
	if !ok {
		return false
	}
	switch state.Status() {
	case TaskStatusPending:
		state.setStatus(TaskStatusCancelled)
	case TaskStatusRunning:
		state.mu.Lock()
		cancel := state.cancel
		state.mu.Unlock()
		if cancel != nil {
			cancel()
		}
	}
	return true
}

// Shutdown stops accepting work, cancels running tasks, and waits for the
// worker to exit or the context to expire.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cancel()

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

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		state := q.next()
		if state == nil {
			select {
			case <-q.wake:
				continue
			case <-q.ctx.Done():
				q.drainPending()
				return
			}
		}
		q.execute(state)
	}
}

// next pops the oldest pending task, skipping ones cancelled while queued.
func (q *Queue) next() *TaskState {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.pending) > 0 {
		state := q.pending[0]
		q.pending = q.pending[1:]
		if state.Status() == TaskStatusPending {
			return state
		}
	}
	return nil
}

func (q *Queue) execute(state *TaskState) {
	taskCtx, taskCancel := context.WithCancel(q.ctx)
	defer taskCancel()

	if !state.begin(taskCancel) {
		return
	}
	err := state.Task().Execute(taskCtx)

	switch {
	case err == nil:
		state.setStatus(TaskStatusCompleted)
	case errors.Is(err, context.Canceled):
		state.setStatus(TaskStatusCancelled)
	default:
		state.setError(err)
		state.setStatus(TaskStatusFailed)
		q.logger.Error("Task failed",
			zap.String("task_id", state.Task().ID()),
			zap.Error(err))
	}
}

// drainPending marks still-pending tasks cancelled during shutdown.
func (q *Queue) drainPending() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, state := range q.pending {
		if state.Status() == TaskStatusPending {
			state.setStatus(TaskStatusCancelled)
		}
	}
	q.pending = nil
}
