package service

import (
	"context"
	"sync"

	"github.com/Ultimaker/libCharon/charonfile"
	"github.com/Ultimaker/libCharon/queue"
	"github.com/Ultimaker/libCharon/worker"
)

// Service is the request-processing façade: [Service.StartRequest] enqueues
// a job, [Service.CancelRequest] soft-cancels one still waiting, and
// [Service.Subscribe] streams the resulting data/completed/error events.
// Grounded on FileService.py (the three operations) and RequestQueue.py
// (the queue/worker wiring beneath them).
type Service struct {
	dispatcher *charonfile.Dispatcher
	queue      *queue.Queue
	emitter    *Emitter
	pool       *worker.Pool

	// barrier enforces spec.md §5's ordering guarantee: a successful
	// StartRequest return must be observable before any event for that
	// request. StartRequest holds it for the whole enqueue; execute
	// acquires then immediately releases it before touching a request,
	// mirroring RequestQueue.py's per-iteration queue.lock
	// acquire/release in its worker loop.
	barrier sync.Mutex
}

// New builds a Service with workerCount workers (queue.WorkerCount if
// workerCount <= 0) resolving files through dispatcher.
func New(dispatcher *charonfile.Dispatcher, workerCount int) *Service {
	s := &Service{
		dispatcher: dispatcher,
		queue:      queue.New(),
		emitter:    NewEmitter(),
	}

	s.pool = worker.New(s.queue, s.execute, workerCount)

	return s
}

// Run drains the queue with the pool's workers until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	return s.pool.Run(ctx)
}

// Subscribe registers a new listener for data/completed/error events.
func (s *Service) Subscribe() *EventSubscription {
	return s.emitter.Subscribe()
}

// StartRequest enqueues a request to retrieve virtualPaths from filePath,
// returning true on success. It fails if id is already queued or the queue
// is at capacity, per spec.md §4.6/§4.7.
func (s *Service) StartRequest(id, filePath string, virtualPaths []string) bool {
	s.barrier.Lock()
	defer s.barrier.Unlock()

	req := queue.NewRequest(id, filePath, virtualPaths)

	return s.queue.Enqueue(req) == nil
}

// CancelRequest soft-cancels id; if it was still queued, a terminal
// error("Request canceled") event is emitted for it, per spec.md §4.7.
func (s *Service) CancelRequest(id string) {
	if s.queue.Cancel(id) {
		s.emitter.Publish(ErrorEvent(id, "Request canceled"))
	}
}

// execute is the worker.Executor backing the pool: it opens req's file
// through the dispatcher and emits one data event per requested virtual
// path, in order, followed by a completed event; any failure instead emits
// a single error event and stops, per spec.md §4.7.
func (s *Service) execute(req *queue.Request) {
	s.barrier.Lock()
	s.barrier.Unlock() //nolint:staticcheck // barrier, not mutual exclusion; see field doc.

	file, err := s.dispatcher.Open(req.FilePath)
	if err != nil {
		s.emitter.Publish(ErrorEvent(req.ID, err.Error()))
		return
	}
	defer func() { _ = file.Close() }()

	for _, path := range req.VirtualPaths {
		data, err := file.GetData(path)
		if err != nil {
			s.emitter.Publish(ErrorEvent(req.ID, err.Error()))
			return
		}

		s.emitter.Publish(DataEvent(req.ID, data))
	}

	s.emitter.Publish(CompletedEvent(req.ID))
}
