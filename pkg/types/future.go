package types

import (
	"context"
	"sync"
	"time"
)

// Future is a single-producer/single-consumer, one-shot result channel. The
// producer is the worker executing the task; the consumer is the original
// submitter. It completes exactly once and caches the outcome thereafter:
// every read after completion observes the same Result.
type Future[R any] struct {
	clock  Clock
	done   chan struct{}
	once   sync.Once
	result Result[R]
}

// NewFuture creates an unresolved future
func NewFuture[R any](clock Clock) *Future[R] {
	if clock == nil {
		clock = NewRealClock()
	}
	return &Future[R]{
		clock: clock,
		done:  make(chan struct{}),
	}
}

// Complete resolves the future. Only the first call wins; it returns false
// when the future was already resolved.
func (f *Future[R]) Complete(result Result[R]) bool {
	won := false
	f.once.Do(func() {
		f.result = result
		won = true
		close(f.done)
	})
	return won
}

// Done returns a channel closed when the future is resolved
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the future resolves or ctx is done
func (f *Future[R]) Get(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.result.Value, f.result.Error
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// GetWithTimeout blocks until the future resolves or the timeout elapses,
// in which case it returns ErrTimeout. The future itself is unaffected and
// can still resolve later.
func (f *Future[R]) GetWithTimeout(timeout time.Duration) (R, error) {
	timer := f.clock.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.result.Value, f.result.Error
	case <-timer.C():
		var zero R
		return zero, ErrTimeout
	}
}

// Peek returns the result without blocking; ok is false while unresolved
func (f *Future[R]) Peek() (Result[R], bool) {
	select {
	case <-f.done:
		return f.result, true
	default:
		return Result[R]{}, false
	}
}
