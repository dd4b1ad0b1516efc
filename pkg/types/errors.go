package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrQueueFull indicates the bounded task queue is at capacity
	ErrQueueFull = errors.New("task queue is full")

	// ErrPoolPaused indicates the pool is paused and not accepting tasks
	ErrPoolPaused = errors.New("pool is paused")

	// ErrPoolShutdown indicates the pool is draining and not accepting tasks
	ErrPoolShutdown = errors.New("pool is shutting down")

	// ErrPoolTerminating indicates the pool is in the middle of termination
	ErrPoolTerminating = errors.New("pool is terminating")

	// ErrPoolTerminated indicates the pool has terminated
	ErrPoolTerminated = errors.New("pool is terminated")

	// ErrRateLimited indicates the submission rate limit was exceeded
	ErrRateLimited = errors.New("submission rate limit exceeded")

	// ErrTimeout indicates operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrInvalidTransition indicates an administrative call reached an
	// undefined state reaction; it should be unreachable
	ErrInvalidTransition = errors.New("invalid pool state transition")
)

// IsNotAccepting reports whether err is one of the submission-rejection
// errors raised when the pool is not in the RUNNING state.
func IsNotAccepting(err error) bool {
	return errors.Is(err, ErrPoolPaused) ||
		errors.Is(err, ErrPoolShutdown) ||
		errors.Is(err, ErrPoolTerminating) ||
		errors.Is(err, ErrPoolTerminated)
}

// TaskError represents a failure captured at the worker's execution boundary.
// Workers deliver it into the failing task's own Future and keep running; it
// never unwinds past that boundary.
type TaskError struct {
	// TaskID is the ID of the task that failed
	TaskID string

	// Cause is the underlying error
	Cause error

	// Context contains error context information
	Context map[string]interface{}
}

// Error implements the error interface
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s failed: %v", e.TaskID, e.Cause)
}

// Unwrap returns the underlying error
func (e *TaskError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is a specific error
func (e *TaskError) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

// NewTaskError creates a new task error
func NewTaskError(taskID string, cause error) *TaskError {
	return &TaskError{
		TaskID:  taskID,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds error context
func (e *TaskError) WithContext(key string, value interface{}) *TaskError {
	e.Context[key] = value
	return e
}
