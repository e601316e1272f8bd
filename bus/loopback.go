package bus

import (
	"sync"

	"github.com/Ultimaker/libCharon/service"
)

// Loopback is an in-process [Bus] with no wire protocol: [Loopback.Bind]
// just stores the handlers, and [Loopback.StartRequest]/
// [Loopback.CancelRequest] are a direct function call away from invoking
// them, standing in for a real method call over a transport. Used by tests
// and by `cmd/charond --bus=loopback` for local smoke-testing without a
// running D-Bus daemon.
type Loopback struct {
	reg *connectionRegistry

	mu       sync.Mutex
	handlers Handlers
	closed   bool
}

// NewLoopback returns an unbound Loopback bus.
func NewLoopback() *Loopback {
	return &Loopback{reg: newConnectionRegistry()}
}

// Bind stores handlers for later calls to [Loopback.StartRequest] and
// [Loopback.CancelRequest]. serviceName/objectPath/interfaceName are
// accepted but unused: a loopback bus has exactly one addressable object.
func (l *Loopback) Bind(_, _, _ string, handlers Handlers) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	l.handlers = handlers

	return nil
}

// Connect registers callback for the named signal connection, ref-counted
// per [Bus.Connect]'s contract.
func (l *Loopback) Connect(objectPath, interfaceName, signalName string, callback SignalCallback) (*Subscription, error) {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()

	if closed {
		return nil, ErrClosed
	}

	key := connectionKey{objectPath: objectPath, interfaceName: interfaceName, signalName: signalName}

	return l.reg.connect(key, callback), nil
}

// Signal dispatches ev to every callback currently connected to the named
// signal; it is a no-op if nothing is connected.
func (l *Loopback) Signal(objectPath, interfaceName, signalName string, ev service.Event) error {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()

	if closed {
		return ErrClosed
	}

	key := connectionKey{objectPath: objectPath, interfaceName: interfaceName, signalName: signalName}
	l.reg.dispatch(key, ev)

	return nil
}

// Close marks the bus closed. Idempotent.
func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true

	return nil
}

// StartRequest invokes the bound StartRequest handler directly, standing in
// for an incoming bus method call. It returns false if nothing is bound.
func (l *Loopback) StartRequest(id, filePath string, virtualPaths []string) bool {
	l.mu.Lock()
	h := l.handlers
	l.mu.Unlock()

	if h.StartRequest == nil {
		return false
	}

	return h.StartRequest(id, filePath, virtualPaths)
}

// CancelRequest invokes the bound CancelRequest handler directly, if any is
// bound.
func (l *Loopback) CancelRequest(id string) {
	l.mu.Lock()
	h := l.handlers
	l.mu.Unlock()

	if h.CancelRequest != nil {
		h.CancelRequest(id)
	}
}
