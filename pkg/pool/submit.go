package pool

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/jzx17/threadpool/pkg/types"
)

// Submit wraps fn into a queued task and returns the future observing its
// outcome. Rejected with no side effect unless the pool is running; rejected
// with ErrQueueFull when the queue is bounded and full. On success the task
// is enqueued and one blocked worker is woken.
//
// The ctx passed to fn is the pool's lifetime context: it is cancelled when
// the pool enters termination, but fn is never forcibly stopped.
func Submit[R any](p *Pool, fn func(ctx context.Context) (R, error)) (*types.Future[R], error) {
	if fn == nil {
		return nil, fmt.Errorf("fn cannot be nil")
	}
	return submitFunc(p, ulid.Make().String(), fn)
}

// SubmitTask submits a types.Task; the returned future carries only the
// execution error.
func (p *Pool) SubmitTask(t types.Task) (*types.Future[struct{}], error) {
	if t == nil {
		return nil, fmt.Errorf("task cannot be nil")
	}
	return submitFunc(p, t.ID(), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, t.Execute(ctx)
	})
}

func submitFunc[R any](p *Pool, id string, fn func(ctx context.Context) (R, error)) (*types.Future[R], error) {
	f := types.NewFuture[R](p.clock)

	t := &task{
		id: id,
		invoke: func(ctx context.Context) error {
			start := p.clock.Now()
			value, err := fn(ctx)
			f.Complete(types.Result[R]{
				Value:    value,
				Error:    err,
				Duration: p.clock.Since(start),
			})
			return err
		},
		abandon: func(err error) {
			f.Complete(types.Result[R]{Error: err})
		},
	}

	if err := p.submit(t); err != nil {
		return nil, err
	}
	return f, nil
}
