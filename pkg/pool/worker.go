package pool

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jzx17/threadpool/pkg/types"
)

// workerState defines the state of a worker
type workerState int32

const (
	// workerRunning the worker is executing a task or about to dequeue one
	workerRunning workerState = iota
	// workerPaused the worker is parked on its private wake signal
	workerPaused
	// workerBlocked the worker is waiting on the queue's notEmpty condition
	workerBlocked
	// workerTerminating the worker was told to exit and has not yet done so
	workerTerminating
	// workerTerminated the worker's goroutine has exited
	workerTerminated
)

// String returns the string representation of workerState
func (ws workerState) String() string {
	switch ws {
	case workerRunning:
		return "running"
	case workerPaused:
		return "paused"
	case workerBlocked:
		return "blocked"
	case workerTerminating:
		return "terminating"
	case workerTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// worker is one dedicated goroutine pulling tasks from the pool's queue. Its
// state is mutated only under its own status lock, which is distinct from
// both the pool's status lock and the queue lock. The pool reference is
// non-owning: the pool always joins its workers before it is released, so
// the back-reference can never dangle.
type worker struct {
	id   int
	pool *Pool

	mu    sync.Mutex
	state workerState

	// wake parks the worker while paused; a buffered slot makes release
	// idempotent, and the run loop re-checks state after every wake because
	// a wake may mean resume or terminate.
	wake chan struct{}
	done chan struct{}

	clock types.Clock

	// statistics
	totalProcessed int64
	totalFailed    int64
}

func newWorker(id int, p *Pool) *worker {
	return &worker{
		id:    id,
		pool:  p,
		state: workerRunning,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
		clock: p.clock,
	}
}

// status returns the current worker state
func (w *worker) status() workerState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// pause moves a running or blocked worker to paused. Idempotent; a worker
// already terminating or terminated is left alone.
func (w *worker) pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case workerRunning, workerBlocked:
		w.state = workerPaused
	}
}

// resume wakes a paused worker; no-op in any other state
func (w *worker) resume() {
	w.mu.Lock()
	if w.state != workerPaused {
		w.mu.Unlock()
		return
	}
	w.state = workerRunning
	w.mu.Unlock()
	w.release()
}

// terminate tells the worker to exit and returns its prior state so the
// caller can decide whether a queue broadcast is needed to unstick a
// blocked worker. Idempotent.
func (w *worker) terminate() workerState {
	w.mu.Lock()
	prior := w.state
	if prior == workerTerminating || prior == workerTerminated {
		w.mu.Unlock()
		return prior
	}
	w.state = workerTerminating
	w.mu.Unlock()

	if prior == workerPaused {
		w.release()
	}
	return prior
}

// release puts a token into the wake slot without blocking
func (w *worker) release() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// join blocks until the worker's goroutine has exited. A non-positive
// timeout waits indefinitely.
func (w *worker) join(timeout time.Duration) error {
	if timeout <= 0 {
		<-w.done
		return nil
	}
	select {
	case <-w.done:
		return nil
	case <-w.clock.After(timeout):
		return fmt.Errorf("worker %d join timeout after %v", w.id, timeout)
	}
}

// run is the worker's goroutine body: resolve pause/run/terminate, pull a
// task, execute it, repeat. Failures stay inside the task's own future.
func (w *worker) run() {
	defer close(w.done)

	for {
		switch w.status() {
		case workerTerminating, workerTerminated:
			w.setTerminated()
			return
		case workerPaused:
			// Parked holding no lock so administrative calls from other
			// goroutines proceed concurrently. Re-check on waking: the wake
			// may mean resume or terminate, and a stale token from an
			// earlier resume is harmless because the loop checks again.
			<-w.wake
			continue
		}

		t, ok := w.take()
		if !ok {
			w.setTerminated()
			return
		}
		if t == nil {
			// paused while waiting for a task
			continue
		}
		w.execute(t)
	}
}

// take blocks until a task is available. It returns (nil, false) when the
// worker must exit and (nil, true) when the worker was paused mid-wait.
// The transition to blocked happens under the queue lock, atomically with
// the emptiness check, so a concurrent terminate cannot slip between the
// check and the wait.
func (w *worker) take() (*task, bool) {
	q := w.pool.queue
	q.mu.Lock()

	for q.items.Length() == 0 {
		w.mu.Lock()
		switch w.state {
		case workerTerminating, workerTerminated:
			w.mu.Unlock()
			q.mu.Unlock()
			return nil, false
		case workerPaused:
			w.mu.Unlock()
			q.mu.Unlock()
			return nil, true
		default:
			w.state = workerBlocked
		}
		w.mu.Unlock()

		q.notEmpty.Wait()
	}

	// A task exists, but the wake (or the original emptiness check) may have
	// raced a state change; resolve it before dequeuing.
	w.mu.Lock()
	switch w.state {
	case workerTerminating, workerTerminated:
		w.mu.Unlock()
		q.mu.Unlock()
		return nil, false
	case workerPaused:
		w.mu.Unlock()
		q.mu.Unlock()
		return nil, true
	default:
		w.state = workerRunning
	}
	w.mu.Unlock()

	t := q.items.Remove().(*task)
	q.inflight++
	q.mu.Unlock()
	return t, true
}

// execute runs one task with the queue lock released. The task's error or
// panic is delivered into its own future and the worker keeps running.
func (w *worker) execute(t *task) {
	err := w.invoke(t)
	if err != nil {
		atomic.AddInt64(&w.totalFailed, 1)
		w.pool.handleTaskError(err)
	} else {
		atomic.AddInt64(&w.totalProcessed, 1)
	}
	w.pool.queue.taskDone()
}

// invoke executes a task with panic recovery support
func (w *worker) invoke(t *task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var buf [4096]byte
			n := runtime.Stack(buf[:], false)

			var cause error
			switch v := r.(type) {
			case error:
				cause = v
			default:
				cause = fmt.Errorf("panic: %v", v)
			}

			taskErr := types.NewTaskError(t.id, cause).
				WithContext("stack_trace", string(buf[:n])).
				WithContext("worker_id", w.id)
			err = taskErr

			// the panic aborted delivery; resolve the future here so the
			// submitter never blocks forever
			t.abandon(taskErr)
		}
	}()

	return t.invoke(w.pool.ctx)
}

func (w *worker) setTerminated() {
	w.mu.Lock()
	w.state = workerTerminated
	w.mu.Unlock()
}

// stats returns the worker's processed/failed counters
func (w *worker) stats() (processed, failed int64) {
	return atomic.LoadInt64(&w.totalProcessed), atomic.LoadInt64(&w.totalFailed)
}
