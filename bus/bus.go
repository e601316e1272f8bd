package bus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Ultimaker/libCharon/service"
)

// Default service name, object path, and interface name, per spec.md §6 and
// DBusInterface.py's DefaultServicePath/DefaultObjectPath/DefaultInterface.
const (
	DefaultServiceName   = "nl.ultimaker.charon"
	DefaultObjectPath    = "/nl/ultimaker/charon"
	DefaultInterfaceName = "nl.ultimaker.charon"
)

// ErrClosed is returned by a [Bus] operation attempted after [Bus.Close].
var ErrClosed = errors.New("bus: closed")

// Handlers are the two RPC entry points spec.md §4.7/§6 expose:
// start_request and cancel_request. A [Bus] routes incoming method calls to
// them.
type Handlers struct {
	StartRequest  func(id, filePath string, virtualPaths []string) bool
	CancelRequest func(id string)
}

// SignalCallback receives one data/completed/error notification forwarded
// from the bus, mirroring DBusInterface.py's connectSignal callback.
type SignalCallback func(ev service.Event)

// Bus is the seam a wire transport satisfies. The transport itself —
// session bus, system bus, or anything else — is an external collaborator
// per spec.md §1 ("the bus transport itself") and is not implemented here;
// [Loopback] is the only concrete [Bus] this package ships, for tests and
// local smoke-testing.
type Bus interface {
	// Bind registers handlers to receive incoming start_request/
	// cancel_request calls addressed to serviceName/objectPath/
	// interfaceName.
	Bind(serviceName, objectPath, interfaceName string, handlers Handlers) error

	// Connect registers callback against the (objectPath, interfaceName,
	// signalName) connection, returning a [Subscription] that only tears
	// the underlying connection down once every Subscription sharing it
	// has been closed. Grounded on DBusInterface.py's
	// DBusSignalForwarder.addConnection/removeConnection, which perform
	// this same reference count — spec.md's explicit resolution of the
	// "should disconnection be reference counted" Open Question.
	Connect(objectPath, interfaceName, signalName string, callback SignalCallback) (*Subscription, error)

	// Signal emits one data/completed/error notification.
	Signal(objectPath, interfaceName, signalName string, ev service.Event) error

	Close() error
}

// connectionKey identifies one underlying signal connection, mirroring
// DBusSignalForwarder's (object_path, interface, signal_name) tuple.
type connectionKey struct {
	objectPath    string
	interfaceName string
	signalName    string
}

// connectionRegistry reference-counts callbacks sharing one connectionKey,
// creating the key's entry on the first add and deleting it on the last
// remove. Embedded
// by [Loopback]; any other [Bus] implementation wanting the same resolved
// ref-counting semantics can reuse it too.
type connectionRegistry struct {
	mu        sync.Mutex
	nextID    uint64
	callbacks map[connectionKey]map[uint64]SignalCallback
}

func newConnectionRegistry() *connectionRegistry {
	return &connectionRegistry{callbacks: make(map[connectionKey]map[uint64]SignalCallback)}
}

func (r *connectionRegistry) connect(key connectionKey, callback SignalCallback) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID

	if r.callbacks[key] == nil {
		r.callbacks[key] = make(map[uint64]SignalCallback)
	}

	r.callbacks[key][id] = callback

	return &Subscription{reg: r, key: key, id: id}
}

func (r *connectionRegistry) disconnect(key connectionKey, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.callbacks[key], id)

	if len(r.callbacks[key]) == 0 {
		delete(r.callbacks, key)
	}
}

func (r *connectionRegistry) dispatch(key connectionKey, ev service.Event) {
	r.mu.Lock()
	callbacks := make([]SignalCallback, 0, len(r.callbacks[key]))
	for _, cb := range r.callbacks[key] {
		callbacks = append(callbacks, cb)
	}
	r.mu.Unlock()

	for _, cb := range callbacks {
		cb(ev)
	}
}

// Subscription is one callback's handle on a signal connection returned by
// [Bus.Connect]. Close is idempotent and only removes this callback; the
// connection persists until every Subscription sharing its key has closed.
type Subscription struct {
	reg    *connectionRegistry
	key    connectionKey
	id     uint64
	closed atomic.Bool
}

// Close detaches this callback from its connection.
func (s *Subscription) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.reg.disconnect(s.key, s.id)
	}
}

// Session wires a [*service.Service] to a [Bus], replacing the source's
// process-wide DBusInterface class variables (spec.md §9) with an
// explicit, constructed value threaded through [Init]/[Shutdown].
type Session struct {
	bus Bus
	svc *service.Service
	cfg *Config

	serviceName   string
	objectPath    string
	interfaceName string

	sub    *service.EventSubscription
	cancel context.CancelFunc
}

// NewSession builds a Session wiring svc to b, using cfg's names if set or
// the package defaults otherwise.
func NewSession(b Bus, svc *service.Service, cfg *Config) *Session {
	if cfg == nil {
		cfg = NewConfig()
	}

	s := &Session{bus: b, svc: svc, cfg: cfg}

	s.serviceName = firstNonEmpty(cfg.ServiceName, DefaultServiceName)
	s.objectPath = firstNonEmpty(cfg.ObjectPath, DefaultObjectPath)
	s.interfaceName = firstNonEmpty(cfg.InterfaceName, DefaultInterfaceName)

	return s
}

// Init binds start_request/cancel_request to the bus and begins forwarding
// service events as outgoing signals until ctx is cancelled or [Shutdown]
// is called.
func (s *Session) Init(ctx context.Context) error {
	handlers := Handlers{
		StartRequest:  s.svc.StartRequest,
		CancelRequest: s.svc.CancelRequest,
	}

	if err := s.bus.Bind(s.serviceName, s.objectPath, s.interfaceName, handlers); err != nil {
		return err
	}

	s.sub = s.svc.Subscribe()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go s.forward(runCtx)

	return nil
}

// forward drains the service subscription and re-emits every event as a
// bus signal, named after its [service.Kind], until ctx is done or the
// subscription channel closes.
func (s *Session) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.sub.C():
			if !ok {
				return
			}

			_ = s.bus.Signal(s.objectPath, s.interfaceName, signalName(ev.Kind), ev)
		}
	}
}

// signalName names the outgoing bus signal for an event kind, mirroring
// FileService.py's requestData/requestCompleted/requestError signal names.
func signalName(kind service.Kind) string {
	switch kind {
	case service.KindData:
		return "requestData"
	case service.KindCompleted:
		return "requestCompleted"
	case service.KindError:
		return "requestError"
	}

	return "requestError"
}

// Shutdown stops forwarding events, detaches this session's subscription,
// and closes the underlying bus. Idempotent.
func (s *Session) Shutdown() error {
	if s.cancel != nil {
		s.cancel()
	}

	if s.sub != nil {
		s.sub.Close()
	}

	return s.bus.Close()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
