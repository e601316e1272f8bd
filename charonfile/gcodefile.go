package charonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Ultimaker/libCharon/gcode"
	"github.com/Ultimaker/libCharon/metadata"
	"github.com/Ultimaker/libCharon/opc"
	"github.com/Ultimaker/libCharon/vpath"
)

// headerPrefix is where a plain G-code stream's parsed header is addressed,
// matching original_source/Charon/filetypes/GCodeFile.py's
// parseHeader(..., prefix="/metadata/toolpath/default/") call.
const headerPrefix = "/metadata/toolpath/default/"

// GCodeFile wraps a single, non-container G-code stream: the ".gcode"
// format directly, or via [OpenGzip] its gzip-compressed variant. Grounded
// on GCodeFile.py: read-only, the header is parsed eagerly on open and
// cached, and every other byte of the stream is kept so the file can still
// be served whole through [GCodeFile.GetStream] and [GCodeFile.ToByteArray].
type GCodeFile struct {
	raw []byte
	md  metadata.Flat
}

// Open reads r fully, parses its leading G-code header, and returns the
// resulting file. If r also implements [io.Closer], it is closed once fully
// read, since GCodeFile never needs it again afterwards.
func Open(r io.Reader) (*GCodeFile, error) {
	raw, err := io.ReadAll(r)
	if closer, ok := r.(io.Closer); ok {
		_ = closer.Close()
	}

	if err != nil {
		return nil, fmt.Errorf("charonfile: reading gcode stream: %w", err)
	}

	flat, err := gcode.ReadHeader(bytes.NewReader(raw), headerPrefix)
	if err != nil {
		return nil, fmt.Errorf("charonfile: parsing gcode header: %w", err)
	}

	return &GCodeFile{raw: raw, md: flat}, nil
}

// GetData returns the metadata subtree rooted at path, serialised as JSON,
// for any "/metadata/..." path. Any other path returns an empty map,
// matching GCodeFile.py's getData: a plain G-code stream exposes no
// addressable resources of its own besides its header metadata.
func (g *GCodeFile) GetData(path string) (map[string][]byte, error) {
	if !vpath.IsMetadataPath(path) {
		return map[string][]byte{}, nil
	}

	data, err := marshalFlatSubtree(g.md, path)
	if err != nil {
		return nil, err
	}

	return map[string][]byte{path: data}, nil
}

// SetData always fails: a GCodeFile is opened read-only, matching
// GCodeFile.py's openStream raising when mode is not ReadOnly.
func (g *GCodeFile) SetData(map[string][]byte) error {
	return fmt.Errorf("%w: gcode file", opc.ErrReadOnly)
}

// GetMetadata returns every header entry at or beneath path, injecting the
// raw stream's byte size when path addresses the toolpath resource's "size".
func (g *GCodeFile) GetMetadata(path string) metadata.Flat {
	result := filterFlatPrefix(g.md, path)

	if path == strings.TrimSuffix(headerPrefix, "/")+"/size" {
		result[path] = metadata.Int(int64(len(g.raw)))
	}

	return result
}

// SetMetadata merges entries into the in-memory header, last write wins.
// Nothing is ever persisted back to the stream: the interface has no error
// channel for this operation, mirroring [opc.Container.SetMetadata]'s own
// unconditional-merge behaviour.
func (g *GCodeFile) SetMetadata(entries map[string]metadata.Value) {
	for key, value := range entries {
		g.md[key] = value
	}
}

// GetStream returns the serialised metadata subtree for a "/metadata/..."
// path, or the entire raw stream for any other path, per GCodeFile.py's
// getStream always answering with the file itself regardless of the
// requested virtual path.
func (g *GCodeFile) GetStream(path string) (opc.Stream, error) {
	if vpath.IsMetadataPath(path) {
		data, err := marshalFlatSubtree(g.md, path)
		if err != nil {
			return nil, err
		}

		return newByteStream(data), nil
	}

	return newByteStream(g.raw), nil
}

// ToByteArray returns count bytes of the underlying stream starting at
// offset, or every remaining byte if count is negative.
func (g *GCodeFile) ToByteArray(offset, count int) ([]byte, error) {
	return opc.SliceBytes(g.raw, offset, count), nil
}

// Close is a no-op: the underlying reader, if closeable, was already closed
// by [Open].
func (g *GCodeFile) Close() error {
	return nil
}

// filterFlatPrefix returns every entry of flat whose key equals path or lies
// beneath it.
func filterFlatPrefix(flat metadata.Flat, path string) metadata.Flat {
	result := make(metadata.Flat)

	for key, value := range flat {
		if key == path || strings.HasPrefix(key, path+"/") {
			result[key] = value
		}
	}

	return result
}

// marshalFlatSubtree renders the nested JSON form of the subtree of flat
// addressed by path. An exact scalar match at path takes precedence over
// any keys nested beneath it, matching [opc.Container]'s own
// marshalMetadataSubtree.
func marshalFlatSubtree(flat metadata.Flat, path string) ([]byte, error) {
	if value, ok := flat[path]; ok {
		data, err := json.Marshal(metadata.ToAny(value))
		if err != nil {
			return nil, fmt.Errorf("charonfile: serialising metadata subtree %s: %w", path, err)
		}

		return data, nil
	}

	children := make(metadata.Flat)
	for key, value := range flat {
		if strings.HasPrefix(key, path+"/") {
			children[key[len(path):]] = value
		}
	}

	tree := metadata.Unfold(children, "/")

	data, err := metadata.MarshalIndentJSON(tree)
	if err != nil {
		return nil, fmt.Errorf("charonfile: serialising metadata subtree %s: %w", path, err)
	}

	return data, nil
}

// byteStream is a read-only [opc.Stream] over an in-memory buffer, used to
// serve both raw resource bytes and serialised metadata subtrees from
// formats that keep no ZIP-backed storage of their own.
type byteStream struct {
	r *bytes.Reader
}

func newByteStream(data []byte) opc.Stream {
	return &byteStream{r: bytes.NewReader(data)}
}

func (s *byteStream) Read(p []byte) (int, error) { return s.r.Read(p) }

func (s *byteStream) Write([]byte) (int, error) {
	return 0, fmt.Errorf("%w: stream is read-only", opc.ErrReadOnly)
}

func (s *byteStream) Close() error { return nil }
