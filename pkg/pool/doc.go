/*
Package pool provides a dynamically resizable worker pool with pause/resume,
graceful drain-then-stop shutdown, immediate termination, and a bounded task
queue for backpressure.

# Overview

A Pool owns a FIFO task queue and a collection of workers, each running on
its own goroutine. Submitted work flows caller -> Submit -> queue -> worker
-> Future; administrative calls (Pause, Resume, Shutdown, ShutdownNow,
AddWorkers, RemoveWorkers, SetMaxTaskCount) mutate the pool state or the
worker collection, and each worker reacts to those changes on its own
schedule.

# Lifecycle

The pool moves through running, paused, shutdown (draining), terminating and
terminated; progress is one-way and terminated is absorbing. Each worker runs
its own machine: running, paused, blocked (waiting for a task), terminating,
terminated. A worker marks itself blocked under the queue lock, atomically
with the emptiness check, so a concurrent terminate can never be lost between
the check and the wait.

# Submission

	p, _ := pool.NewWithSize(4, 0)
	defer p.Close()

	f, err := pool.Submit(p, func(ctx context.Context) (int, error) {
		return 2 + 3, nil
	})
	if err != nil {
		// pool not running, queue full, or rate limited
	}
	sum, err := f.Get(context.Background())

Submission fails fast: a full bounded queue yields ErrQueueFull rather than
blocking. Task failures, panics included, are captured at the worker boundary
and delivered into the failing task's own Future; the worker keeps running.

# Shutdown

Shutdown drains the queue and then terminates; ShutdownNow (and Close)
terminate immediately, resolving the future of every discarded task with
ErrPoolTerminated so no caller blocks forever. Both join every worker before
returning.

# Concurrency

Pool methods are safe for concurrent use. Completion order of tasks is
unspecified; only dequeue order follows submission order. There is no
per-task cancellation: tasks receive a pool-lifetime context that is
cancelled when termination begins, and a caller wanting a timeout races the
Future against its own timer.
*/
package pool
