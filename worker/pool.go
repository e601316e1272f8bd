package worker

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Ultimaker/libCharon/queue"
)

// Executor runs a single request to completion. It is responsible for its
// own error handling (logging, emitting an error event); Pool never sees a
// return value, matching spec.md §4.6's "uncaught execution errors are
// logged and do not terminate the worker".
type Executor func(req *queue.Request)

// Pool drains a [queue.Queue] with a fixed number of goroutines, each
// discarding soft-cancelled requests before handing the rest to an
// [Executor]. Grounded on
// original_source/Charon/Service/RequestQueue.py's __worker_thread_run.
type Pool struct {
	q     *queue.Queue
	fn    Executor
	count int
}

// New returns a Pool of count workers (queue.WorkerCount if count <= 0)
// draining q via fn.
func New(q *queue.Queue, fn Executor, count int) *Pool {
	if count <= 0 {
		count = queue.WorkerCount
	}

	return &Pool{q: q, fn: fn, count: count}
}

// Run launches the pool's workers and blocks until ctx is cancelled,
// draining and closing q so every worker's blocking [queue.Queue.TakeNext]
// call unblocks, then waits for every in-flight Executor call to return.
func (p *Pool) Run(ctx context.Context) error {
	var g errgroup.Group

	stop := make(chan struct{})
	defer close(stop)

	go func() {
		select {
		case <-ctx.Done():
			p.q.Close()
		case <-stop:
		}
	}()

	for i := 0; i < p.count; i++ {
		g.Go(p.runWorker)
	}

	return g.Wait()
}

// runWorker pops requests until the queue is closed and drained, skipping
// any that were soft-cancelled while queued.
func (p *Pool) runWorker() error {
	for {
		req, ok := p.q.TakeNext()
		if !ok {
			return nil
		}

		if req.Cancelled() {
			continue
		}

		p.fn(req)
	}
}
