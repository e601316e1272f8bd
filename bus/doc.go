// Package bus wires a [service.Service] to a message bus without depending
// on any particular wire transport: per spec.md §1 the bus transport itself
// (session or system bus) is an external collaborator, not part of the
// core. [Bus] is the seam a binding (e.g. a D-Bus client) satisfies;
// [Session] replaces the source's process-wide DBusInterface class
// variables (spec.md §9) with an explicit, constructed value; [Loopback]
// is an in-process [Bus] for tests and local smoke-testing.
//
// Open Question resolved here: disconnection is reference counted —
// [Subscription.Close] removes only its own callback, and the shared
// connection entry is dropped once no callback remains, so closing one
// subscription cannot sever a bus signal still needed by another.
//
// Grounded on original_source/Charon/Client/DBusInterface.py and
// original_source/Charon/Service/main.py.
package bus
