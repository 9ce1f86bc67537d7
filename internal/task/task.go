// Package task runs units of work on a fixed set of worker goroutines.
package task

import (
	"context"
	"fmt"
	"sync"
)

// Status is the outcome reported to a task's status callback.
type Status int

const (
	StatusComplete Status = iota
	StatusFailed
)

func (s Status) String() string {
	if s == StatusComplete {
		return "complete"
	}
	return "failed"
}

// ExecFunc does the task's work. shared is the pool-wide value given to
// NewPool.
type ExecFunc[C any] func(ctx context.Context, t *Task[C], shared C) error

// StatusFunc is called on the worker goroutine after ExecFunc returns.
type StatusFunc[C any] func(status Status, t *Task[C])

// Task is a one-shot unit of work. Waiters block until a worker has run it
// and its status callback has returned.
type Task[C any] struct {
	exec   ExecFunc[C]
	status StatusFunc[C]
	data   any

	mu       sync.Mutex
	cond     *sync.Cond
	complete bool
	err      error
}

// New builds a task. status may be nil.
func New[C any](exec ExecFunc[C], status StatusFunc[C], data any) *Task[C] {
	if exec == nil {
		panic("task: nil exec func")
	}
	t := &Task[C]{exec: exec, status: status, data: data}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Data returns the value passed to New.
func (t *Task[C]) Data() any { return t.data }

// Run queues t on p without waiting. It returns false if p is closed.
func (t *Task[C]) Run(p *Pool[C]) bool {
	return p.Push(t)
}

// RunWait queues t on p and blocks until it has completed.
func (t *Task[C]) RunWait(p *Pool[C]) error {
	if !p.Push(t) {
		return ErrPoolClosed
	}
	return t.Wait()
}

// Wait blocks until the task has completed and returns its error.
func (t *Task[C]) Wait() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for !t.complete {
		t.cond.Wait()
	}
	return t.err
}

// Done reports whether the task has completed.
func (t *Task[C]) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.complete
}

// Err returns the task's error once it has completed.
func (t *Task[C]) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Task[C]) invoke(ctx context.Context, shared C) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return t.exec(ctx, t, shared)
}

// notify runs the status callback. A panic in it is returned as an error.
func (t *Task[C]) notify(status Status) (err error) {
	if t.status == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("status callback panicked: %v", r)
		}
	}()
	t.status(status, t)
	return nil
}

func (t *Task[C]) finish(err error) {
	t.mu.Lock()
	t.complete = true
	t.err = err
	t.cond.Broadcast()
	t.mu.Unlock()
}
