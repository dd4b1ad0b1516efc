// Package types defines core interfaces and types for the thread pool library
package types

import (
	"context"
	"time"
)

// PoolState defines the lifecycle state of a Pool. The state only moves
// toward termination: StateTerminated is absorbing, and StateShutdown never
// returns to StateRunning.
type PoolState int32

const (
	// StateRunning Pool accepts and executes tasks
	StateRunning PoolState = iota
	// StatePaused Pool holds queued tasks without starting them
	StatePaused
	// StateShutdown Pool rejects submissions and drains the queue
	StateShutdown
	// StateTerminating Pool is tearing down workers and discarding queued tasks
	StateTerminating
	// StateTerminated Pool has terminated; all workers have joined
	StateTerminated
)

// String returns the string representation of PoolState
func (s PoolState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateShutdown:
		return "shutdown"
	case StateTerminating:
		return "terminating"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Task defines the task interface
type Task interface {
	// Execute executes the task
	Execute(ctx context.Context) error

	// ID returns the task ID (for tracking)
	ID() string
}

// Pool defines the worker pool interface
type Pool interface {
	// SubmitTask submits a task; the returned Future carries only the
	// execution error
	SubmitTask(task Task) (*Future[struct{}], error)

	// Pause stops workers from starting new tasks; running tasks finish
	Pause() error

	// Resume restarts a paused pool
	Resume() error

	// Shutdown stops accepting tasks, drains the queue, then terminates
	Shutdown() error

	// ShutdownNow terminates immediately, discarding queued tasks
	ShutdownNow() error

	// Wait blocks until the queue is empty and no task is in flight
	Wait()

	// AddWorkers creates n additional workers
	AddWorkers(n int) error

	// RemoveWorkers terminates and removes min(n, WorkerCount) workers
	RemoveWorkers(n int) error

	// SetMaxTaskCount changes the queue bound; 0 means unbounded
	SetMaxTaskCount(n int) error

	// WorkerCount returns the live worker count
	WorkerCount() int

	// TaskCount returns the number of queued (not yet started) tasks
	TaskCount() int

	// State returns the pool state
	State() PoolState

	// Stats returns pool statistics
	Stats() PoolStats

	// Close terminates the pool and joins every worker
	Close() error
}

// ErrorHandler defines an error handling function invoked when a task fails
type ErrorHandler func(error) error

// Result defines the outcome of a task execution
type Result[R any] struct {
	// Value is the execution result
	Value R

	// Error is the execution error
	Error error

	// Duration is the execution time
	Duration time.Duration
}

// PoolStats defines basic statistics for a pool
type PoolStats struct {
	// Workers is the live worker count
	Workers int

	// ActiveWorkers is the number of workers currently executing a task
	ActiveWorkers int

	// QueueSize is the current number of queued tasks
	QueueSize int

	// QueueCapacity is the queue bound (0 = unbounded)
	QueueCapacity int

	// Completed is the total number of successfully executed tasks
	Completed int64

	// Failed is the total number of tasks that returned an error or panicked
	Failed int64
}
