package pool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jzx17/threadpool/pkg/types"
)

func TestPauseResume(t *testing.T) {
	p, err := NewWithSize(1, 0)
	require.NoError(t, err)
	defer p.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	blocker, err := Submit(p, func(ctx context.Context) (struct{}, error) {
		close(started)
		<-release
		return struct{}{}, nil
	})
	require.NoError(t, err)
	<-started

	// queued before the pause, must not start while paused
	var flag int32
	queued, err := Submit(p, func(ctx context.Context) (struct{}, error) {
		atomic.StoreInt32(&flag, 1)
		return struct{}{}, nil
	})
	require.NoError(t, err)

	require.NoError(t, p.Pause())
	assert.Equal(t, types.StatePaused, p.State())

	// submissions are rejected while paused
	_, err = Submit(p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, nil
	})
	assert.ErrorIs(t, err, types.ErrPoolPaused)

	// the running task is not interrupted by the pause
	close(release)
	_, err = blocker.Get(context.Background())
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&flag), "queued task started while paused")
	assert.Equal(t, 1, p.TaskCount())

	require.NoError(t, p.Resume())
	assert.Equal(t, types.StateRunning, p.State())

	_, err = queued.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&flag))
}

func TestPauseResume_Idempotent(t *testing.T) {
	p, err := NewWithSize(2, 0)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Resume()) // resume while running is a no-op
	require.NoError(t, p.Pause())
	require.NoError(t, p.Pause()) // pause while paused is a no-op
	require.NoError(t, p.Resume())
	require.NoError(t, p.Resume())
	assert.Equal(t, types.StateRunning, p.State())
}

func TestShutdown_DrainsBeforeTerminating(t *testing.T) {
	p, err := NewWithSize(2, 0)
	require.NoError(t, err)

	var counter int64
	const n = 50
	for i := 0; i < n; i++ {
		_, err := Submit(p, func(ctx context.Context) (struct{}, error) {
			time.Sleep(time.Millisecond)
			atomic.AddInt64(&counter, 1)
			return struct{}{}, nil
		})
		require.NoError(t, err)
	}

	require.NoError(t, p.Shutdown())

	assert.Equal(t, int64(n), atomic.LoadInt64(&counter), "shutdown returned before the queue drained")
	assert.Equal(t, 0, p.TaskCount())
	assert.Equal(t, types.StateTerminated, p.State())

	// destruction after shutdown must not hang
	require.NoError(t, p.Close())
}

func TestShutdown_ResumesPausedPool(t *testing.T) {
	p, err := NewWithSize(2, 0)
	require.NoError(t, err)

	var counter int64
	for i := 0; i < 10; i++ {
		_, err := Submit(p, func(ctx context.Context) (struct{}, error) {
			atomic.AddInt64(&counter, 1)
			return struct{}{}, nil
		})
		require.NoError(t, err)
	}

	require.NoError(t, p.Pause())
	require.NoError(t, p.Shutdown())

	assert.Equal(t, int64(10), atomic.LoadInt64(&counter))
	assert.Equal(t, types.StateTerminated, p.State())
}

func TestShutdown_RejectsSubmissions(t *testing.T) {
	p, err := NewWithSize(1, 0)
	require.NoError(t, err)
	defer p.Close()

	release := make(chan struct{})
	_, err = Submit(p, func(ctx context.Context) (struct{}, error) {
		<-release
		return struct{}{}, nil
	})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		_ = p.Shutdown()
		close(done)
	}()

	require.Eventually(t, func() bool {
		return p.State() == types.StateShutdown
	}, time.Second, 5*time.Millisecond)

	_, err = Submit(p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, nil
	})
	assert.ErrorIs(t, err, types.ErrPoolShutdown)

	close(release)
	<-done
	assert.Equal(t, types.StateTerminated, p.State())
}

func TestShutdownNow_ResolvesDiscardedFutures(t *testing.T) {
	p, err := NewWithSize(1, 0)
	require.NoError(t, err)

	started := make(chan struct{})
	blocker, err := Submit(p, func(ctx context.Context) (struct{}, error) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	<-started

	var executed int32
	discarded := make([]*types.Future[int], 0, 5)
	for i := 0; i < 5; i++ {
		i := i
		f, err := Submit(p, func(ctx context.Context) (int, error) {
			atomic.AddInt32(&executed, 1)
			return i, nil
		})
		require.NoError(t, err)
		discarded = append(discarded, f)
	}

	require.NoError(t, p.ShutdownNow())
	assert.Equal(t, types.StateTerminated, p.State())
	assert.Equal(t, 0, p.WorkerCount())

	// every discarded task's future resolves; no caller blocks forever
	for _, f := range discarded {
		_, err := f.Get(context.Background())
		assert.ErrorIs(t, err, types.ErrPoolTerminated)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&executed))

	// the in-flight task ran to completion
	_, err = blocker.Get(context.Background())
	assert.NoError(t, err)
}

func TestShutdownNow_Concurrent(t *testing.T) {
	p, err := NewWithSize(4, 0)
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 4; i++ {
		g.Go(p.ShutdownNow)
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, types.StateTerminated, p.State())
}

func TestTerminate_Idempotent(t *testing.T) {
	p, err := NewWithSize(2, 0)
	require.NoError(t, err)

	require.NoError(t, p.ShutdownNow())
	require.NoError(t, p.ShutdownNow())
	require.NoError(t, p.Close())
	require.NoError(t, p.Shutdown())
	assert.Equal(t, types.StateTerminated, p.State())
}

func TestTerminate_RejectsAdministrativeCalls(t *testing.T) {
	p, err := NewWithSize(2, 0)
	require.NoError(t, err)
	require.NoError(t, p.ShutdownNow())

	assert.ErrorIs(t, p.Pause(), types.ErrPoolTerminated)
	assert.ErrorIs(t, p.Resume(), types.ErrPoolTerminated)
	assert.ErrorIs(t, p.AddWorkers(1), types.ErrPoolTerminated)
	assert.ErrorIs(t, p.RemoveWorkers(1), types.ErrPoolTerminated)
	assert.ErrorIs(t, p.SetMaxTaskCount(5), types.ErrPoolTerminated)

	// counters remain readable
	assert.Equal(t, 0, p.WorkerCount())
	assert.Equal(t, 0, p.TaskCount())
}

func TestWait_CoversInFlightTasks(t *testing.T) {
	p, err := NewWithSize(2, 0)
	require.NoError(t, err)
	defer p.Close()

	var done int32
	for i := 0; i < 8; i++ {
		_, err := Submit(p, func(ctx context.Context) (struct{}, error) {
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&done, 1)
			return struct{}{}, nil
		})
		require.NoError(t, err)
	}

	p.Wait()
	assert.Equal(t, int32(8), atomic.LoadInt32(&done))
	assert.Equal(t, 0, p.TaskCount())
}

func TestTaskContext_CancelledOnTermination(t *testing.T) {
	p, err := NewWithSize(1, 0)
	require.NoError(t, err)

	started := make(chan struct{})
	observed := make(chan error, 1)
	_, err = Submit(p, func(ctx context.Context) (struct{}, error) {
		close(started)
		select {
		case <-ctx.Done():
			observed <- ctx.Err()
		case <-time.After(2 * time.Second):
			observed <- nil
		}
		return struct{}{}, nil
	})
	require.NoError(t, err)
	<-started

	require.NoError(t, p.ShutdownNow())
	assert.ErrorIs(t, <-observed, context.Canceled)
}
