// Package queue implements the bounded, LIFO job queue that feeds the
// worker pool in package worker: a [Request] carries what to retrieve, and
// [Queue] holds pending requests with soft-cancellation and an id index for
// O(1) lookup.
//
// Grounded on original_source/Charon/Service/RequestQueue.py's RequestQueue
// and Request types (the repository's two parallel implementations, Queue.py
// /Job.py and RequestQueue.py, converge on this one per spec.md §4.6).
package queue
