package queue

import "sync/atomic"

// Request describes one queued data-retrieval job: which file to open and
// which virtual paths to collect from it, in request order. Grounded on
// original_source/Charon/Service/RequestQueue.py's Request (file_path,
// virtual_paths, request_id, should_remove).
type Request struct {
	ID           string
	FilePath     string
	VirtualPaths []string

	softCancel atomic.Bool
}

// NewRequest builds a Request ready for [Queue.Enqueue].
func NewRequest(id, filePath string, virtualPaths []string) *Request {
	return &Request{ID: id, FilePath: filePath, VirtualPaths: virtualPaths}
}

// Cancel marks the request as soft-cancelled. A worker that pops a
// soft-cancelled request discards it instead of running it; a request
// already running is unaffected, per spec.md §5's cooperative,
// coarse-grained cancellation.
func (r *Request) Cancel() {
	r.softCancel.Store(true)
}

// Cancelled reports whether [Request.Cancel] has been called.
func (r *Request) Cancelled() bool {
	return r.softCancel.Load()
}
