package opc

import "errors"

// Error kinds mirroring spec.md §7. Wrap with fmt.Errorf("%w: ...") to
// attach the virtual path or other detail.
var (
	ErrReadOnly   = errors.New("opc: read-only container")
	ErrWriteOnly  = errors.New("opc: write-only container")
	ErrNotFound   = errors.New("opc: resource not found")
	ErrDuplicate  = errors.New("opc: duplicate entry")
	ErrForbidden  = errors.New("opc: operation forbidden")
	ErrClosed     = errors.New("opc: container is closed")
	ErrIoUnderlying = errors.New("opc: underlying I/O failure")
)
