package opc

import (
	"bytes"
	"errors"
	"io"
)

// Stream is what [Container.GetStream] returns: readable in a read-only
// container, writable in a write-only one. Calling the unsupported half
// returns an error rather than panicking.
type Stream interface {
	io.Reader
	io.Writer
	io.Closer
}

// readStream wraps an in-memory resource for reading; Write always fails.
type readStream struct {
	r io.Reader
}

func newReadStream(data []byte) Stream {
	return &readStream{r: bytes.NewReader(data)}
}

func (s *readStream) Read(p []byte) (int, error)  { return s.r.Read(p) }
func (s *readStream) Write([]byte) (int, error)   { return 0, errors.New("opc: stream is read-only") }
func (s *readStream) Close() error                { return nil }

// writeStream accumulates writes into an in-memory buffer and hands the
// final bytes to onClose; Read always fails. The container does not track
// its write streams: several may be open at once, and each commits its
// bytes only when it is closed (see Container.GetStream).
type writeStream struct {
	buf     bytes.Buffer
	onClose func([]byte)
	closed  bool
}

func newWriteStream(onClose func([]byte)) Stream {
	return &writeStream{onClose: onClose}
}

func (s *writeStream) Read([]byte) (int, error) { return 0, errors.New("opc: stream is write-only") }

func (s *writeStream) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

func (s *writeStream) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true
	s.onClose(s.buf.Bytes())

	return nil
}
