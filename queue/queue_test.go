package queue_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ultimaker/libCharon/queue"
)

func TestEnqueueRejectsDuplicateID(t *testing.T) {
	t.Parallel()

	q := queue.New()
	require.NoError(t, q.Enqueue(queue.NewRequest("a", "/tmp/a.gcode", nil)))

	err := q.Enqueue(queue.NewRequest("a", "/tmp/a.gcode", nil))
	require.Error(t, err)
}

func TestEnqueueRejectsWhenFull(t *testing.T) {
	t.Parallel()

	q := queue.New()

	for i := 0; i < queue.MaxSize; i++ {
		require.NoError(t, q.Enqueue(queue.NewRequest(fmt.Sprintf("id-%d", i), "/tmp/a.gcode", nil)))
	}

	err := q.Enqueue(queue.NewRequest("overflow", "/tmp/a.gcode", nil))
	require.Error(t, err)
}

func TestTakeNextIsLIFO(t *testing.T) {
	t.Parallel()

	q := queue.New()
	require.NoError(t, q.Enqueue(queue.NewRequest("first", "/tmp/a.gcode", nil)))
	require.NoError(t, q.Enqueue(queue.NewRequest("second", "/tmp/a.gcode", nil)))

	req, ok := q.TakeNext()
	require.True(t, ok)
	assert.Equal(t, "second", req.ID)

	req, ok = q.TakeNext()
	require.True(t, ok)
	assert.Equal(t, "first", req.ID)
}

func TestCancelMarksSoftCancelAndKeepsRequestQueued(t *testing.T) {
	t.Parallel()

	q := queue.New()
	req := queue.NewRequest("a", "/tmp/a.gcode", nil)
	require.NoError(t, q.Enqueue(req))

	assert.True(t, q.Cancel("a"))
	assert.False(t, q.Cancel("missing"))
	assert.True(t, req.Cancelled())

	taken, ok := q.TakeNext()
	require.True(t, ok)
	assert.True(t, taken.Cancelled())
}

func TestTakeNextBlocksUntilEnqueue(t *testing.T) {
	t.Parallel()

	q := queue.New()
	done := make(chan *queue.Request, 1)

	go func() {
		req, ok := q.TakeNext()
		if ok {
			done <- req
		}
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, q.Enqueue(queue.NewRequest("late", "/tmp/a.gcode", nil)))

	select {
	case req := <-done:
		assert.Equal(t, "late", req.ID)
	case <-time.After(time.Second):
		t.Fatal("TakeNext did not unblock after Enqueue")
	}
}

func TestCloseUnblocksTakeNext(t *testing.T) {
	t.Parallel()

	q := queue.New()
	done := make(chan bool, 1)

	go func() {
		_, ok := q.TakeNext()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("TakeNext did not unblock after Close")
	}
}
