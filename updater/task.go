package updater

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a Task.
type State int32

// Task states. Completed, Failed and Cancelled are terminal and mutually
// exclusive: the first transition out of Running wins.
const (
	StateRunning State = iota
	StateCompleted
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s != StateRunning
}

// Task is one in-flight fetch of the external document URL. Cancel is the
// cancellation token handed back to the caller.
type Task struct {
	id      uuid.UUID
	url     string
	started time.Time

	// submitted is wall-clock time for latency metrics; started may come
	// from a caller-supplied clock.
	submitted time.Time

	cancel context.CancelFunc
	done   chan struct{}

	// mu serializes document processing against Cancel, so no document is
	// processed once Cancel has returned.
	mu        sync.Mutex
	state     atomic.Int32
	err       error
	documents atomic.Int64
}

func newTask(ctx context.Context, url string, started time.Time) (*Task, context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	return &Task{
		id:        uuid.New(),
		url:       url,
		started:   started,
		submitted: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}, ctx
}

// ID returns the task's unique id.
func (t *Task) ID() uuid.UUID { return t.id }

// URL returns the fetched URL.
func (t *Task) URL() string { return t.url }

// Started returns the time the task was submitted.
func (t *Task) Started() time.Time { return t.started }

// State returns the current state.
func (t *Task) State() State { return State(t.state.Load()) }

// Documents returns the number of documents processed so far.
func (t *Task) Documents() int64 { return t.documents.Load() }

// Done is closed when the task reaches a terminal state.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns nil while running or after completion, ErrCancelled after
// cancellation, and the fetch or processing error after failure.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task finishes or ctx ends.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel stops the task. It reports whether this call cancelled it; a task
// that already finished is left unchanged. Cancel must not be called from
// a Processor.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	ok := t.finish(StateCancelled, ErrCancelled)
	t.mu.Unlock()
	t.cancel()
	return ok
}

// process runs fn for one document unless the task already finished.
func (t *Task) process(fn func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State().Terminal() {
		return ErrCancelled
	}
	if err := fn(); err != nil {
		return err
	}
	t.documents.Add(1)
	return nil
}

// finish moves a running task to state. Only the first call succeeds.
func (t *Task) finish(state State, err error) bool {
	if !t.state.CompareAndSwap(int32(StateRunning), int32(state)) {
		return false
	}
	t.err = err
	close(t.done)
	return true
}
