package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/threadpool/pkg/types"
)

func newNoopTask(id string) *task {
	return &task{id: id, abandon: func(error) {}}
}

func TestTaskQueue_EnqueueBounded(t *testing.T) {
	q := newTaskQueue(2)

	require.NoError(t, q.enqueue(newNoopTask("a")))
	require.NoError(t, q.enqueue(newNoopTask("b")))
	assert.ErrorIs(t, q.enqueue(newNoopTask("c")), types.ErrQueueFull)
	assert.Equal(t, 2, q.size())
}

func TestTaskQueue_Unbounded(t *testing.T) {
	q := newTaskQueue(0)

	for i := 0; i < 1000; i++ {
		require.NoError(t, q.enqueue(newNoopTask("t")))
	}
	assert.Equal(t, 1000, q.size())
	assert.Equal(t, 0, q.maxSize())
}

func TestTaskQueue_SetCapacityDoesNotEvict(t *testing.T) {
	q := newTaskQueue(0)
	for i := 0; i < 5; i++ {
		require.NoError(t, q.enqueue(newNoopTask("t")))
	}

	q.setCapacity(2)

	// queued tasks survive, further submission is blocked
	assert.Equal(t, 5, q.size())
	assert.ErrorIs(t, q.enqueue(newNoopTask("x")), types.ErrQueueFull)

	// raising the bound re-opens submission
	q.setCapacity(6)
	assert.NoError(t, q.enqueue(newNoopTask("y")))
}

func TestTaskQueue_DrainAllIsFIFO(t *testing.T) {
	q := newTaskQueue(0)
	ids := []string{"first", "second", "third"}
	for _, id := range ids {
		require.NoError(t, q.enqueue(&task{id: id, abandon: func(error) {}}))
	}

	drained := q.drainAll()
	require.Len(t, drained, 3)
	for i, d := range drained {
		assert.Equal(t, ids[i], d.id)
	}
	assert.Equal(t, 0, q.size())
}

func TestTaskQueue_WaitDrained(t *testing.T) {
	q := newTaskQueue(0)
	require.NoError(t, q.enqueue(newNoopTask("a")))

	done := make(chan struct{})
	go func() {
		q.waitDrained()
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("waitDrained returned with a queued task")
	default:
	}

	// emulate a worker: dequeue, then report completion
	q.mu.Lock()
	q.items.Remove()
	q.inflight++
	q.mu.Unlock()
	q.taskDone()

	<-done
	assert.Equal(t, 0, q.active())
}
