package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ultimaker/libCharon/queue"
	"github.com/Ultimaker/libCharon/worker"
)

func TestPoolExecutesQueuedRequests(t *testing.T) {
	t.Parallel()

	q := queue.New()

	var mu sync.Mutex
	executed := make(map[string]bool)

	pool := worker.New(q, func(req *queue.Request) {
		mu.Lock()
		executed[req.ID] = true
		mu.Unlock()
	}, 2)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx) }()

	require.NoError(t, q.Enqueue(queue.NewRequest("a", "/tmp/a.gcode", nil)))
	require.NoError(t, q.Enqueue(queue.NewRequest("b", "/tmp/b.gcode", nil)))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return executed["a"] && executed["b"]
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestPoolSkipsSoftCancelledRequests(t *testing.T) {
	t.Parallel()

	q := queue.New()

	var mu sync.Mutex
	executed := make(map[string]bool)

	pool := worker.New(q, func(req *queue.Request) {
		mu.Lock()
		executed[req.ID] = true
		mu.Unlock()
	}, 1)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx) }()

	req := queue.NewRequest("cancel-me", "/tmp/a.gcode", nil)
	require.NoError(t, q.Enqueue(req))
	req.Cancel()

	require.NoError(t, q.Enqueue(queue.NewRequest("survivor", "/tmp/b.gcode", nil)))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return executed["survivor"]
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.False(t, executed["cancel-me"])
	mu.Unlock()

	cancel()
	require.NoError(t, <-done)
}
