package pool

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/jzx17/threadpool/pkg/types"
)

// taskQueue is the bounded FIFO shared by all workers and the submit path.
// One queue-wide reader/writer lock guards the items, the capacity and the
// in-flight counter; pure reads take the shared side. Two conditions hang
// off the write lock: notEmpty wakes workers waiting for a task, drained
// wakes Wait/Shutdown callers once nothing is queued or in flight.
type taskQueue struct {
	mu       sync.RWMutex
	items    *queue.Queue
	notEmpty *sync.Cond
	drained  *sync.Cond
	capacity int // 0 = unbounded
	inflight int
}

func newTaskQueue(capacity int) *taskQueue {
	q := &taskQueue{
		items:    queue.New(),
		capacity: capacity,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.drained = sync.NewCond(&q.mu)
	return q
}

// enqueue appends t and wakes one blocked worker. It fails fast with
// ErrQueueFull when the queue is bounded and at capacity; it never blocks
// for availability.
func (q *taskQueue) enqueue(t *task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.capacity > 0 && q.items.Length() >= q.capacity {
		return types.ErrQueueFull
	}
	q.items.Add(t)
	q.notEmpty.Signal()
	return nil
}

// size returns the number of queued (not yet started) tasks
func (q *taskQueue) size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.items.Length()
}

func (q *taskQueue) maxSize() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.capacity
}

// active returns the number of dequeued tasks still executing
func (q *taskQueue) active() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.inflight
}

// setCapacity changes the bound; 0 means unbounded. Lowering the bound below
// the current length does not evict queued tasks, it only blocks further
// submission until the queue drains below the new bound.
func (q *taskQueue) setCapacity(n int) {
	q.mu.Lock()
	q.capacity = n
	q.mu.Unlock()
}

// taskDone records the completion of a dequeued task and wakes drain
// waiters when the pool went idle.
func (q *taskQueue) taskDone() {
	q.mu.Lock()
	q.inflight--
	if q.inflight == 0 && q.items.Length() == 0 {
		q.drained.Broadcast()
	}
	q.mu.Unlock()
}

// waitDrained blocks the caller until the queue is empty and every dequeued
// task has finished executing.
func (q *taskQueue) waitDrained() {
	q.mu.Lock()
	for q.items.Length() > 0 || q.inflight > 0 {
		q.drained.Wait()
	}
	q.mu.Unlock()
}

// drainAll removes every queued task and returns them so the caller can
// resolve their futures. In-flight tasks are untouched.
func (q *taskQueue) drainAll() []*task {
	q.mu.Lock()
	var drained []*task
	for q.items.Length() > 0 {
		drained = append(drained, q.items.Remove().(*task))
	}
	if q.inflight == 0 {
		q.drained.Broadcast()
	}
	q.mu.Unlock()
	return drained
}

// wakeAll wakes every worker blocked on the queue so terminated workers and
// survivors alike re-check their state. The lock is taken so the broadcast
// cannot slip between a worker's emptiness check and its wait.
func (q *taskQueue) wakeAll() {
	q.mu.Lock()
	q.notEmpty.Broadcast()
	q.mu.Unlock()
}
