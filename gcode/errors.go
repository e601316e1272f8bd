package gcode

import "errors"

// ErrInvalidHeader is returned when a G-code header is malformed or fails
// dialect validation. Wrap it with fmt.Errorf("%w: ...") to attach detail,
// per spec.md §7's "InvalidHeader" error kind.
var ErrInvalidHeader = errors.New("gcode: invalid header")
