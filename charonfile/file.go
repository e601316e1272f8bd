package charonfile

import (
	"errors"

	"github.com/Ultimaker/libCharon/metadata"
	"github.com/Ultimaker/libCharon/opc"
)

// ErrUnknownExtension is returned by [Dispatcher.Open] when no registered
// format recognises the file's extension.
var ErrUnknownExtension = errors.New("charonfile: unknown file extension")

// File is the fixed operation set every concrete file type supports,
// replacing the source's dynamic attribute delegation across
// OpenPackagingConvention-derived types and GCodeFile-derived types alike.
// [*opc.Container] already satisfies this interface; [*GCodeFile] and
// [*GCodeSocketFile] are the other implementations.
type File interface {
	GetData(path string) (map[string][]byte, error)
	SetData(entries map[string][]byte) error
	GetMetadata(path string) metadata.Flat
	SetMetadata(entries map[string]metadata.Value)
	GetStream(path string) (opc.Stream, error)
	ToByteArray(offset, count int) ([]byte, error)
	Close() error
}

var _ File = (*opc.Container)(nil)
var _ File = (*GCodeFile)(nil)
