package pool

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jzx17/threadpool/pkg/types"
)

// Config contains configuration for a Pool
type Config struct {
	// InitialWorkers is the number of workers created at construction
	InitialWorkers int

	// MaxTaskCount bounds the task queue; 0 means unbounded
	MaxTaskCount int

	// StopTimeout bounds how long termination waits for each worker to
	// join; 0 waits indefinitely
	StopTimeout time.Duration

	// SubmitRate limits submissions per second when positive; SubmitBurst
	// is the limiter burst and must be positive alongside SubmitRate
	SubmitRate  float64
	SubmitBurst int

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// ErrorHandler is invoked with every task failure, in addition to the
	// failure being delivered into the task's own future
	ErrorHandler types.ErrorHandler
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		InitialWorkers: runtime.NumCPU(),
		MaxTaskCount:   0,
		StopTimeout:    0,
		Clock:          types.NewRealClock(),
	}
}

// Pool executes submitted tasks concurrently on a dynamically resizable set
// of workers. It owns the task queue and the worker collection, and runs its
// own lifecycle machine: running, paused, shutdown (draining), terminating,
// terminated. Pool methods execute synchronously on the calling goroutine;
// the pool has no goroutine of its own.
//
// Three lock domains keep the parts independent: the pool-wide status lock
// (shared for the read-only check inside submit, exclusive for transitions),
// the queue lock, and one status lock per worker.
type Pool struct {
	config *Config
	clock  types.Clock

	stateMu sync.RWMutex
	state   types.PoolState

	queue *taskQueue

	workersMu    sync.RWMutex
	workers      []*worker
	nextWorkerID int

	// retired accumulates counters of workers removed before termination
	retiredProcessed int64
	retiredFailed    int64

	limiter *rate.Limiter

	// ctx is handed to executing tasks and cancelled at termination
	ctx    context.Context
	cancel context.CancelFunc

	// termDone is closed once the pool reaches terminated
	termDone chan struct{}
}

// New creates a pool and immediately starts its initial workers; the pool is
// running on return.
func New(config *Config) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if config.InitialWorkers <= 0 {
		return nil, fmt.Errorf("initial workers must be positive, got %d", config.InitialWorkers)
	}
	if config.MaxTaskCount < 0 {
		return nil, fmt.Errorf("max task count must be >= 0, got %d", config.MaxTaskCount)
	}
	if config.SubmitRate > 0 && config.SubmitBurst <= 0 {
		return nil, fmt.Errorf("submit burst must be positive when a rate is set, got %d", config.SubmitBurst)
	}

	if config.Clock == nil {
		config.Clock = types.NewRealClock()
	}

	p := &Pool{
		config:   config,
		clock:    config.Clock,
		state:    types.StateRunning,
		queue:    newTaskQueue(config.MaxTaskCount),
		termDone: make(chan struct{}),
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())

	if config.SubmitRate > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(config.SubmitRate), config.SubmitBurst)
	}

	for i := 0; i < config.InitialWorkers; i++ {
		p.spawnWorkerLocked()
	}

	return p, nil
}

// NewWithSize creates a running pool with the given worker count and queue
// bound (0 = unbounded).
func NewWithSize(workers, maxTaskCount int) (*Pool, error) {
	cfg := DefaultConfig()
	cfg.InitialWorkers = workers
	cfg.MaxTaskCount = maxTaskCount
	return New(cfg)
}

// spawnWorkerLocked creates and starts one worker. Callers must hold
// workersMu exclusively, except during construction when the pool is not
// yet shared.
func (p *Pool) spawnWorkerLocked() {
	w := newWorker(p.nextWorkerID, p)
	p.nextWorkerID++
	p.workers = append(p.workers, w)
	go w.run()
}

// submit enqueues a task. The shared status lock is held across the state
// check and the enqueue so a rejected submission has no side effect and a
// concurrent terminate cannot strand a freshly queued task.
func (p *Pool) submit(t *task) error {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()

	switch p.state {
	case types.StateRunning:
	case types.StatePaused:
		return types.ErrPoolPaused
	case types.StateShutdown:
		return types.ErrPoolShutdown
	case types.StateTerminating:
		return types.ErrPoolTerminating
	case types.StateTerminated:
		return types.ErrPoolTerminated
	default:
		return types.ErrInvalidTransition
	}

	if p.limiter != nil && !p.limiter.Allow() {
		return types.ErrRateLimited
	}

	return p.queue.enqueue(t)
}

// Pause stops workers from starting new tasks; tasks already executing run
// to completion. Pausing a paused pool is a no-op.
func (p *Pool) Pause() error {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	switch p.state {
	case types.StateRunning:
	case types.StatePaused:
		return nil
	case types.StateShutdown:
		return types.ErrPoolShutdown
	case types.StateTerminating, types.StateTerminated:
		return types.ErrPoolTerminated
	default:
		return types.ErrInvalidTransition
	}

	p.state = types.StatePaused
	p.workersMu.RLock()
	for _, w := range p.workers {
		w.pause()
	}
	p.workersMu.RUnlock()
	return nil
}

// Resume restarts a paused pool. Resuming a running pool is a no-op.
func (p *Pool) Resume() error {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	switch p.state {
	case types.StatePaused:
	case types.StateRunning, types.StateShutdown:
		return nil
	case types.StateTerminating, types.StateTerminated:
		return types.ErrPoolTerminated
	default:
		return types.ErrInvalidTransition
	}

	p.state = types.StateRunning
	p.resumeWorkers()
	return nil
}

func (p *Pool) resumeWorkers() {
	p.workersMu.RLock()
	for _, w := range p.workers {
		w.resume()
	}
	p.workersMu.RUnlock()
}

// Shutdown stops accepting submissions, blocks until every queued task has
// been executed, then terminates the pool and joins its workers. A paused
// pool is resumed first so draining proceeds. Calling Shutdown on a pool
// already draining or terminating simply waits for teardown to finish.
func (p *Pool) Shutdown() error {
	p.stateMu.Lock()
	switch p.state {
	case types.StateRunning:
		p.state = types.StateShutdown
	case types.StatePaused:
		p.state = types.StateShutdown
		p.resumeWorkers()
	case types.StateShutdown:
		// another goroutine is draining; fall through and wait with it
	case types.StateTerminating, types.StateTerminated:
		p.stateMu.Unlock()
		return p.terminate()
	default:
		p.stateMu.Unlock()
		return types.ErrInvalidTransition
	}
	p.stateMu.Unlock()

	p.queue.waitDrained()
	return p.terminate()
}

// ShutdownNow terminates the pool immediately. Queued tasks are discarded,
// but every discarded task's future is resolved with ErrPoolTerminated so no
// caller blocks forever. In-flight tasks run to completion.
func (p *Pool) ShutdownNow() error {
	return p.terminate()
}

// Close terminates the pool and joins every worker; it is the destruction
// path and is safe to call on a pool stuck with blocked workers.
func (p *Pool) Close() error {
	return p.terminate()
}

// terminate moves the pool to terminating, tears everything down, then marks
// it terminated. Idempotent: concurrent callers all return once the same
// teardown completes.
func (p *Pool) terminate() error {
	p.stateMu.Lock()
	switch p.state {
	case types.StateTerminated:
		p.stateMu.Unlock()
		return nil
	case types.StateTerminating:
		p.stateMu.Unlock()
		<-p.termDone
		return nil
	}
	p.state = types.StateTerminating
	p.stateMu.Unlock()

	// Tell every worker to exit. The status lock is not held here: a worker
	// executing a task may be calling back into the pool, and holding the
	// write lock while joining would deadlock against submit's read lock.
	p.workersMu.Lock()
	workers := p.workers
	p.workers = nil
	for _, w := range workers {
		w.terminate()
	}
	p.workersMu.Unlock()

	// Wake workers blocked on the queue, discard queued tasks, and resolve
	// their futures so no submitter waits forever.
	p.queue.wakeAll()
	for _, t := range p.queue.drainAll() {
		t.abandon(types.ErrPoolTerminated)
	}
	p.cancel()

	var g errgroup.Group
	for _, w := range workers {
		w := w
		g.Go(func() error {
			return w.join(p.config.StopTimeout)
		})
	}
	err := g.Wait()

	p.workersMu.Lock()
	for _, w := range workers {
		processed, failed := w.stats()
		p.retiredProcessed += processed
		p.retiredFailed += failed
	}
	p.workersMu.Unlock()

	p.stateMu.Lock()
	p.state = types.StateTerminated
	p.stateMu.Unlock()
	close(p.termDone)

	return err
}

// Wait blocks until the queue is empty and no task is in flight. It does not
// change the pool state; tasks submitted after Wait returns are not covered.
func (p *Pool) Wait() {
	p.queue.waitDrained()
}

// AddWorkers creates n workers. Rejected while paused (resuming would race
// the pause broadcast) and once termination has begun; allowed while
// draining, where extra workers speed up the drain.
func (p *Pool) AddWorkers(n int) error {
	if n <= 0 {
		return fmt.Errorf("worker count must be positive, got %d", n)
	}

	p.stateMu.RLock()
	defer p.stateMu.RUnlock()

	switch p.state {
	case types.StateRunning, types.StateShutdown:
	case types.StatePaused:
		return types.ErrPoolPaused
	case types.StateTerminating, types.StateTerminated:
		return types.ErrPoolTerminated
	default:
		return types.ErrInvalidTransition
	}

	p.workersMu.Lock()
	for i := 0; i < n; i++ {
		p.spawnWorkerLocked()
	}
	p.workersMu.Unlock()
	return nil
}

// RemoveWorkers terminates and removes min(n, WorkerCount) workers, most
// recently added first. The collection shrinks immediately, queue waiters
// are woken so both victims and survivors re-check their state, and the
// call returns only after every victim has joined. Pending tasks are left
// queued for the survivors.
func (p *Pool) RemoveWorkers(n int) error {
	if n <= 0 {
		return fmt.Errorf("worker count must be positive, got %d", n)
	}

	p.stateMu.RLock()
	switch p.state {
	case types.StateTerminating, types.StateTerminated:
		p.stateMu.RUnlock()
		return types.ErrPoolTerminated
	}
	p.stateMu.RUnlock()

	p.workersMu.Lock()
	if n > len(p.workers) {
		n = len(p.workers)
	}
	victims := p.workers[len(p.workers)-n:]
	p.workers = p.workers[:len(p.workers)-n]
	for _, w := range victims {
		w.terminate()
	}
	p.workersMu.Unlock()

	p.queue.wakeAll()

	var g errgroup.Group
	for _, w := range victims {
		w := w
		g.Go(func() error {
			return w.join(p.config.StopTimeout)
		})
	}
	err := g.Wait()

	// fold in counters only after the victims joined, so a task finishing
	// during the join is still counted
	p.workersMu.Lock()
	for _, w := range victims {
		processed, failed := w.stats()
		p.retiredProcessed += processed
		p.retiredFailed += failed
	}
	p.workersMu.Unlock()

	return err
}

// SetMaxTaskCount changes the queue bound; 0 means unbounded. Lowering the
// bound below the current queue length does not evict queued tasks, it only
// blocks further submission until the queue drains below the bound.
func (p *Pool) SetMaxTaskCount(n int) error {
	if n < 0 {
		return fmt.Errorf("max task count must be >= 0, got %d", n)
	}

	p.stateMu.RLock()
	defer p.stateMu.RUnlock()

	switch p.state {
	case types.StateTerminating, types.StateTerminated:
		return types.ErrPoolTerminated
	}

	p.queue.setCapacity(n)
	return nil
}

// WorkerCount returns the live worker-collection size
func (p *Pool) WorkerCount() int {
	p.workersMu.RLock()
	defer p.workersMu.RUnlock()
	return len(p.workers)
}

// TaskCount returns the number of queued (not yet started) tasks
func (p *Pool) TaskCount() int {
	return p.queue.size()
}

// State returns the pool state
func (p *Pool) State() types.PoolState {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.state
}

// Stats returns a snapshot of pool statistics
func (p *Pool) Stats() types.PoolStats {
	p.workersMu.RLock()
	completed := p.retiredProcessed
	failed := p.retiredFailed
	workers := len(p.workers)
	for _, w := range p.workers {
		processed, wf := w.stats()
		completed += processed
		failed += wf
	}
	p.workersMu.RUnlock()

	return types.PoolStats{
		Workers:       workers,
		ActiveWorkers: p.queue.active(),
		QueueSize:     p.queue.size(),
		QueueCapacity: p.queue.maxSize(),
		Completed:     completed,
		Failed:        failed,
	}
}

// handleTaskError forwards a task failure to the configured handler
func (p *Pool) handleTaskError(err error) {
	if handler := p.config.ErrorHandler; handler != nil {
		// a non-nil return from the handler is deliberately dropped: the
		// failure already lives in the task's future
		_ = handler(err)
	}
}

var _ types.Pool = (*Pool)(nil)
