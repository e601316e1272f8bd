package service

import (
	"sync"
	"sync/atomic"
)

const defaultEventBufferSize = 256

// Kind distinguishes the three one-way notifications spec.md §4.7 and §6
// define: data, completed, error.
type Kind int

const (
	KindData Kind = iota
	KindCompleted
	KindError
)

// Event is one notification about a request's progress.
type Event struct {
	Kind    Kind
	ID      string
	Data    map[string][]byte
	Message string
}

// DataEvent reports a batch of retrieved data for id.
func DataEvent(id string, data map[string][]byte) Event {
	return Event{Kind: KindData, ID: id, Data: data}
}

// CompletedEvent reports that id finished successfully.
func CompletedEvent(id string) Event {
	return Event{Kind: KindCompleted, ID: id}
}

// ErrorEvent reports that id failed with message.
func ErrorEvent(id, message string) Event {
	return Event{Kind: KindError, ID: id, Message: message}
}

// Emitter fans out [Event]s to subscribers. Adapted from
// MacroPower-x/log/publisher.go's byte-oriented Publisher: the same
// ring-buffer-per-subscriber design (a full channel drops its oldest entry
// rather than blocking Publish), carrying typed Events instead of log
// lines. Safe for concurrent use.
type Emitter struct {
	subscribers []*EventSubscription
	bufSize     int
	mu          sync.Mutex
	closed      bool
}

// EmitterOption configures an [Emitter].
type EmitterOption func(*Emitter)

// WithEventBufferSize sets the channel buffer size for new subscriptions.
// Values less than 1 are clamped to 1.
func WithEventBufferSize(n int) EmitterOption {
	return func(e *Emitter) {
		if n < 1 {
			n = 1
		}

		e.bufSize = n
	}
}

// NewEmitter creates an [Emitter] with the given options. The default
// buffer size is 256.
func NewEmitter(opts ...EmitterOption) *Emitter {
	e := &Emitter{bufSize: defaultEventBufferSize}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Publish delivers ev to every active subscriber. When a subscriber's
// channel is full, the oldest entry is dropped to make room. Closed
// subscriptions are compacted out of the subscriber list.
func (e *Emitter) Publish(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	alive := e.subscribers[:0]
	for _, sub := range e.subscribers {
		if sub.closed.Load() {
			close(sub.ch)
			continue
		}

		select {
		case sub.ch <- ev:
		default:
			<-sub.ch

			sub.ch <- ev
		}

		alive = append(alive, sub)
	}

	for i := len(alive); i < len(e.subscribers); i++ {
		e.subscribers[i] = nil
	}

	e.subscribers = alive
}

// Subscribe creates and registers a new [EventSubscription]. If the Emitter
// is already closed the returned subscription's channel is immediately
// closed.
func (e *Emitter) Subscribe() *EventSubscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	sub := &EventSubscription{ch: make(chan Event, e.bufSize)}

	if e.closed {
		close(sub.ch)
		return sub
	}

	e.subscribers = append(e.subscribers, sub)

	return sub
}

// Close marks the Emitter as closed, closes all subscription channels, and
// releases the subscriber list. Idempotent.
func (e *Emitter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	e.closed = true
	for _, sub := range e.subscribers {
		close(sub.ch)
	}

	e.subscribers = nil

	return nil
}

// EventSubscription receives events from an [Emitter].
type EventSubscription struct {
	ch     chan Event
	closed atomic.Bool
}

// C returns the read-only channel that delivers events.
func (s *EventSubscription) C() <-chan Event {
	return s.ch
}

// Close marks the subscription as closed. The Emitter will close the
// underlying channel on its next Publish or Close call. Idempotent.
func (s *EventSubscription) Close() {
	s.closed.Store(true)
}
