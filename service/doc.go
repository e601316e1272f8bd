// Package service is the request-processing façade spec.md §4.7 describes:
// start_request/cancel_request plus a one-way data/completed/error event
// stream, wired atop package queue's bounded LIFO queue and package
// worker's fixed pool.
//
// Grounded on
// original_source/Charon/Service/{FileService,RequestQueue,Job}.py.
package service
