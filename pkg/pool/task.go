package pool

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/jzx17/threadpool/pkg/types"
)

// task is one queued unit of work. The queue owns it until dequeued, then
// the executing worker owns it for the duration of the run. invoke executes
// the work and resolves the future; abandon resolves the future with an
// error without running the work, used when the pool discards queued tasks
// or when execution panics before delivery.
type task struct {
	id      string
	invoke  func(ctx context.Context) error
	abandon func(err error)
}

// BasicTask is the basic implementation of the Task interface
type BasicTask struct {
	id string
	fn func(ctx context.Context) error
}

// NewTask creates a task from a function, assigning it a fresh ULID
func NewTask(fn func(ctx context.Context) error) *BasicTask {
	return &BasicTask{
		id: ulid.Make().String(),
		fn: fn,
	}
}

// NewTaskWithID creates a task with a caller-chosen ID
func NewTaskWithID(id string, fn func(ctx context.Context) error) *BasicTask {
	return &BasicTask{
		id: id,
		fn: fn,
	}
}

// Execute executes the task
func (t *BasicTask) Execute(ctx context.Context) error {
	if t.fn == nil {
		return fmt.Errorf("task %s has no execution function", t.id)
	}
	return t.fn(ctx)
}

// ID returns the task ID
func (t *BasicTask) ID() string {
	return t.id
}

var _ types.Task = (*BasicTask)(nil)
