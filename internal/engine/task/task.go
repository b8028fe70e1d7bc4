// Package task runs work off the scheduler goroutine and lets the scheduler
// poll for the outcome without blocking.
package task

import (
	"context"
	"fmt"
)

// Status is the observable state of a Task.
type Status uint8

const (
	Pending Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Task is the handle of one background computation. The worker writes the
// result exactly once before closing done; readers only look at it after
// observing done closed.
type Task[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go starts fn on a new goroutine. A panic in fn fails the task instead of
// crashing the process.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				t.err = fmt.Errorf("task panicked: %v", r)
			}
		}()
		t.value, t.err = fn(ctx)
	}()
	return t
}

// Done returns a task that has already finished.
func Done[T any](value T, err error) *Task[T] {
	t := &Task[T]{done: make(chan struct{}), value: value, err: err}
	close(t.done)
	return t
}

// Poll reports the task status without blocking. The value is meaningful
// only for Ready and the error only for Failed.
func (t *Task[T]) Poll() (Status, T, error) {
	select {
	case <-t.done:
		if t.err != nil {
			var zero T
			return Failed, zero, t.err
		}
		return Ready, t.value, nil
	default:
		var zero T
		return Pending, zero, nil
	}
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
