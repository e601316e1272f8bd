// Package worker drains a [queue.Queue] with a fixed pool of goroutines,
// each discarding soft-cancelled requests and otherwise handing the request
// to an [Executor], per spec.md §4.6's "fixed worker pool" and
// original_source/Charon/Service/RequestQueue.py's per-worker loop
// (__worker_thread_run: takeNext, skip if should_remove, else run).
package worker
