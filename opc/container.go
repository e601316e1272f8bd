package opc

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/Ultimaker/libCharon/metadata"
	"github.com/Ultimaker/libCharon/resize"
	"github.com/Ultimaker/libCharon/vpath"
)

// Mode selects whether a [Container] is open for reading or writing;
// spec.md §3 allows no other mode.
type Mode int

const (
	ReadOnly Mode = iota
	WriteOnly
)

// opcMetadataRelationshipType identifies the base OPC family's metadata
// relation type. UFP and Cura packages use their own, family-specific
// relation type string instead (see charonfile).
const opcMetadataRelationshipType = "http://schemas.ultimaker.org/package/2018/relationships/opc_metadata"

// resizeSuffix matches a "WxH" image-resize request after a ".png/", per
// spec.md §4.4 and §8.
var resizeSuffix = regexp.MustCompile(`^\s*\d+\s*x\s*\d+\s*$`)

var resizeDimension = regexp.MustCompile(`\d+`)

// Family carries the constants that differ between a plain OPC container
// and a product profile (UFP, Cura package): the global metadata sidecar
// path, the metadata relationship type, the virtual-path aliases, and an
// optional G-code header fallback path. See spec.md GLOSSARY.
type Family struct {
	MimeType              string
	GlobalMetadataFile    string
	MetadataRelationType  string
	Aliases               vpath.Compiled
	GCodeFallbackPath     string
}

// DefaultFamily returns the base OPC family, with no aliases and no G-code
// fallback; UFP and Cura packages build their own [Family] values on top of
// this shape.
func DefaultFamily() Family {
	return Family{
		MimeType:             "application/x-opc",
		GlobalMetadataFile:   "/Metadata/OPC_Global.json",
		MetadataRelationType: opcMetadataRelationshipType,
	}
}

// zipEntryInfo is what a read-mode container remembers about each archive
// entry without keeping the whole Reader around.
type zipEntryInfo struct {
	size int64
}

// Container is a read/write façade over a ZIP archive: spec.md §3's
// Container data model. Create one with [Open] or [Create]; it owns exactly
// one underlying stream for its lifetime.
type Container struct {
	mode   Mode
	family Family
	resize resize.Func
	logger *slog.Logger

	raw  []byte    // ReadOnly: the full underlying bytes, kept for ToByteArray.
	sink io.Writer // WriteOnly: where Close/Flush writes the finished archive.

	zipNames map[string]zipEntryInfo // ReadOnly: virtual path -> entry info.
	pending  map[string][]byte       // WriteOnly: virtual path -> resource bytes.

	md           metadata.Flat // canonical path (no "/metadata" prefix) -> value.
	contentTypes *contentTypesDoc
	relations    map[string]*relationshipsDoc // origin -> relationships document.

	closed bool
}

// Option configures a [Container] at construction time.
type Option func(*Container)

// WithResize overrides the PNG resize capability; the default is
// [resize.Default].
func WithResize(fn resize.Func) Option {
	return func(c *Container) { c.resize = fn }
}

// WithLogger attaches a logger for non-fatal diagnostics (e.g. a malformed
// G-code fallback header that is skipped rather than failing the whole
// open).
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) { c.logger = logger }
}

func newContainer(mode Mode, family Family, opts []Option) *Container {
	c := &Container{
		mode:      mode,
		family:    family,
		resize:    resize.Default,
		logger:    slog.Default(),
		md:        make(metadata.Flat),
		relations: make(map[string]*relationshipsDoc),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Open reads stream as a ZIP archive in read-only mode, eagerly reading its
// content-types manifest, relationships, and metadata, per spec.md §4.4's
// open_stream.
func Open(stream io.Reader, family Family, opts ...Option) (*Container, error) {
	raw, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: reading archive: %w", ErrIoUnderlying, err)
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening archive: %w", ErrIoUnderlying, err)
	}

	c := newContainer(ReadOnly, family, opts)
	c.raw = raw
	c.zipNames = make(map[string]zipEntryInfo, len(zr.File))

	for _, f := range zr.File {
		c.zipNames[vpath.ZipNameToVirtual(f.Name)] = zipEntryInfo{size: int64(f.UncompressedSize64)}
	}

	c.readContentTypes(zr)

	if err := c.readRelationships(zr); err != nil {
		return nil, err
	}

	if err := c.readMetadata(zr); err != nil {
		return nil, err
	}

	return c, nil
}

// Create opens a new, empty archive in write-only mode; the finished
// archive is written to sink on [Container.Close] or [Container.Flush].
func Create(sink io.Writer, family Family, opts ...Option) *Container {
	c := newContainer(WriteOnly, family, opts)
	c.sink = sink
	c.pending = make(map[string][]byte)
	c.contentTypes = newContentTypesDoc()
	c.contentTypes.ensure("rels", relsContentType)
	c.relations[""] = newRelationshipsDoc()

	return c
}

// Close flushes any pending write (see [Container.Flush]) and releases the
// archive. Afterwards GetData, SetData, GetStream, Flush, ToByteArray and
// Close fail with [ErrClosed]; GetMetadata, SetMetadata, ListPaths,
// AddContentType and AddRelation do not check for a closed container.
func (c *Container) Close() error {
	if c.closed {
		return fmt.Errorf("%w", ErrClosed)
	}

	if err := c.Flush(); err != nil {
		return err
	}

	if c.mode == WriteOnly {
		if err := c.writeZip(); err != nil {
			return err
		}
	}

	c.closed = true

	return nil
}

// Flush is a no-op in read-only mode. In write-only mode it writes metadata
// sidecars, then content-types, then relations, in that order. It does not
// close entry streams: a stream from [Container.GetStream] commits its bytes
// only on its own Close, so one still open at Flush is not included.
func (c *Container) Flush() error {
	if c.closed {
		return fmt.Errorf("%w", ErrClosed)
	}

	if c.mode == ReadOnly {
		return nil
	}

	c.writeMetadataSidecars()
	c.writeContentTypesFile()
	c.writeRelationshipFiles()

	return nil
}

func (c *Container) writeZip() error {
	zw := zip.NewWriter(c.sink)

	names := make([]string, 0, len(c.pending))
	for name := range c.pending {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		w, err := zw.Create(vpath.VirtualToZipName(name))
		if err != nil {
			return fmt.Errorf("%w: creating entry %s: %w", ErrIoUnderlying, name, err)
		}

		if _, err := w.Write(c.pending[name]); err != nil {
			return fmt.Errorf("%w: writing entry %s: %w", ErrIoUnderlying, name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: finalising archive: %w", ErrIoUnderlying, err)
	}

	return nil
}

// ListPaths returns the union of metadata keys and canonicalised zip entry
// names, per spec.md §4.4. Metadata keys are the raw internal canonical
// keys (no "/metadata" prefix), matching the source implementation exactly.
func (c *Container) ListPaths() []string {
	paths := make([]string, 0, len(c.md)+len(c.zipNames)+len(c.pending))

	for k := range c.md {
		paths = append(paths, k)
	}

	for name := range c.zipNames {
		paths = append(paths, name)
	}

	for name := range c.pending {
		paths = append(paths, name)
	}

	return paths
}

// canonicalise applies the container's family aliases to path.
func (c *Container) canonicalise(path string) string {
	return vpath.Canonicalise(path, c.family.Aliases)
}

// resourceExists reports whether canonical addresses a real archive entry,
// or a valid "<png-path>/WxH" resize request for an existing PNG entry.
func (c *Container) resourceExists(canonical string) bool {
	if c.mode == WriteOnly {
		_, ok := c.pending[canonical]
		return ok
	}

	if _, ok := c.zipNames[canonical]; ok {
		return true
	}

	for name := range c.zipNames {
		if strings.HasSuffix(name, ".png") && strings.HasPrefix(canonical, name+"/") {
			if resizeSuffix.MatchString(canonical[len(name)+1:]) {
				return true
			}
		}
	}

	return false
}

// resourceSize returns the byte size of the resource at canonical, if it
// exists as a plain (non-resized) archive entry.
func (c *Container) resourceSize(canonical string) (int64, bool) {
	if c.mode == WriteOnly {
		data, ok := c.pending[canonical]
		if !ok {
			return 0, false
		}

		return int64(len(data)), true
	}

	info, ok := c.zipNames[canonical]
	if !ok {
		return 0, false
	}

	return info.size, true
}

// parseResizeRequest splits a "<png-path>/WxH" virtual path into its PNG
// base path and target dimensions.
func parseResizeRequest(canonical string) (base string, width, height int, ok bool) {
	idx := strings.Index(canonical, ".png/")
	if idx < 0 {
		return "", 0, 0, false
	}

	base = canonical[:idx+len(".png")]
	sizeSpec := canonical[idx+len(".png/"):]

	if !resizeSuffix.MatchString(sizeSpec) {
		return "", 0, 0, false
	}

	dims := resizeDimension.FindAllString(sizeSpec, -1)
	if len(dims) != 2 {
		return "", 0, 0, false
	}

	var w, h int
	if _, err := fmt.Sscanf(dims[0], "%d", &w); err != nil {
		return "", 0, 0, false
	}

	if _, err := fmt.Sscanf(dims[1], "%d", &h); err != nil {
		return "", 0, 0, false
	}

	return base, w, h, true
}

// readResourceBytesFromZip reads the raw archive entry at canonical (no
// aliasing, no resize) directly from raw. Used by readMetadata's G-code
// fallback before the Container is otherwise queryable.
func (c *Container) readResourceBytesFromZip(zr *zip.Reader, canonical string) ([]byte, error) {
	f, err := zr.Open(vpath.VirtualToZipName(canonical))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, canonical)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrIoUnderlying, canonical, err)
	}

	return data, nil
}

// GetData reads path, per spec.md §4.4's get_data row: a "/metadata/..."
// path returns the serialised metadata subtree; any other path is
// canonicalised and, if a resource exists there, returns {path → bytes}.
// Write-only containers always fail.
func (c *Container) GetData(path string) (map[string][]byte, error) {
	if c.closed {
		return nil, fmt.Errorf("%w", ErrClosed)
	}

	if c.mode == WriteOnly {
		return nil, fmt.Errorf("%w: %s", ErrWriteOnly, path)
	}

	if vpath.IsMetadataPath(path) {
		data, err := c.marshalMetadataSubtree(path)
		if err != nil {
			return nil, err
		}

		return map[string][]byte{path: data}, nil
	}

	stream, err := c.GetStream(path)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrIoUnderlying, path, err)
	}

	return map[string][]byte{path: data}, nil
}

// SetData writes entries, per spec.md §4.4's set_data row: metadata-prefixed
// keys are decoded as UTF-8 strings and merged via [Container.SetMetadata];
// every other key is written to the corresponding resource stream. Read-only
// containers always fail.
func (c *Container) SetData(entries map[string][]byte) error {
	if c.closed {
		return fmt.Errorf("%w", ErrClosed)
	}

	if c.mode == ReadOnly {
		return fmt.Errorf("%w", ErrReadOnly)
	}

	for path, data := range entries {
		if vpath.IsMetadataPath(path) {
			key := strings.TrimPrefix(path, vpath.MetadataPrefix)
			c.SetMetadata(map[string]metadata.Value{key: metadata.String(string(data))})

			continue
		}

		if err := c.setResource(path, data); err != nil {
			return err
		}
	}

	return nil
}

// setResource writes a single resource, failing if path already has one.
func (c *Container) setResource(path string, data []byte) error {
	canonical := c.canonicalise(path)

	if _, exists := c.pending[canonical]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, path)
	}

	c.pending[canonical] = data

	return nil
}

// GetStream returns a readable [Stream] over path (in read-only mode) or a
// writable one that commits on Close (in write-only mode), per spec.md
// §4.4's get_stream row. A "/metadata/..." path yields a read-only buffer of
// the serialised subtree; a "/_rels/..." path always fails; a trailing
// ".png/WxH" suffix returns a freshly resized PNG.
func (c *Container) GetStream(path string) (Stream, error) {
	if c.closed {
		return nil, fmt.Errorf("%w", ErrClosed)
	}

	if vpath.IsMetadataPath(path) {
		if c.mode == WriteOnly {
			return nil, fmt.Errorf("%w: %s", ErrWriteOnly, path)
		}

		data, err := c.marshalMetadataSubtree(path)
		if err != nil {
			return nil, err
		}

		return newReadStream(data), nil
	}

	canonical := c.canonicalise(path)

	if vpath.IsRelsPath(canonical) {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, path)
	}

	if c.mode == WriteOnly {
		if _, exists := c.pending[canonical]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, path)
		}

		return newWriteStream(func(data []byte) {
			c.pending[canonical] = data
		}), nil
	}

	if base, width, height, ok := parseResizeRequest(canonical); ok {
		if _, exists := c.zipNames[base]; !exists {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		raw, err := c.readZipEntry(base)
		if err != nil {
			return nil, err
		}

		resized, err := c.resize(raw, width, height)
		if err != nil {
			return nil, fmt.Errorf("opc: resizing %s: %w", path, err)
		}

		return newReadStream(resized), nil
	}

	if _, exists := c.zipNames[canonical]; !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	data, err := c.readZipEntry(canonical)
	if err != nil {
		return nil, err
	}

	return newReadStream(data), nil
}

// readZipEntry re-opens the archive from raw and reads canonical's bytes.
func (c *Container) readZipEntry(canonical string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(c.raw), int64(len(c.raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: reopening archive: %w", ErrIoUnderlying, err)
	}

	return c.readResourceBytesFromZip(zr, canonical)
}

// GetMetadata returns every entry whose canonical key equals path's
// canonical form or lies beneath it, plus an injected resource size if path
// ends in "/size", per spec.md §4.4's get_metadata row. Returned keys carry
// the "/metadata" prefix and the originally requested path, not the
// canonical one.
func (c *Container) GetMetadata(path string) metadata.Flat {
	canonical := c.canonicalise(path)
	result := make(metadata.Flat)

	for key, value := range c.md {
		switch {
		case key == canonical:
			result[vpath.MetadataPrefix+path] = value
		case strings.HasPrefix(key, canonical+"/"):
			result[vpath.MetadataPrefix+path+key[len(canonical):]] = value
		}
	}

	if strings.HasSuffix(canonical, "/size") {
		resourcePath := strings.TrimSuffix(canonical, "/size")
		if size, ok := c.resourceSize(resourcePath); ok {
			result[vpath.MetadataPrefix+path] = metadata.Int(size)
		}
	}

	return result
}

// SetMetadata canonicalises every key in entries through the family's
// aliases, then merges them into the metadata store, overwriting any
// existing values (metadata writes are last-write-wins, unlike resource
// writes).
func (c *Container) SetMetadata(entries map[string]metadata.Value) {
	for key, value := range entries {
		c.md[c.canonicalise(key)] = value
	}
}

// marshalMetadataSubtree renders the nested JSON form of the metadata
// subtree addressed by a "/metadata/..." path. An exact scalar match takes
// precedence over any keys nested beneath it.
func (c *Container) marshalMetadataSubtree(path string) ([]byte, error) {
	underlying := strings.TrimPrefix(path, vpath.MetadataPrefix)
	canonical := c.canonicalise(underlying)

	if value, ok := c.md[canonical]; ok {
		data, err := json.Marshal(metadata.ToAny(value))
		if err != nil {
			return nil, fmt.Errorf("opc: serialising metadata subtree %s: %w", path, err)
		}

		return data, nil
	}

	flat := make(metadata.Flat)
	for key, value := range c.md {
		if strings.HasPrefix(key, canonical+"/") {
			flat[key[len(canonical):]] = value
		}
	}

	tree := metadata.Unfold(flat, "/")

	data, err := metadata.MarshalIndentJSON(tree)
	if err != nil {
		return nil, fmt.Errorf("opc: serialising metadata subtree %s: %w", path, err)
	}

	return data, nil
}

// SliceBytes returns count bytes of data starting at offset, or every
// remaining byte if count is negative, clamped to data's bounds the same
// way Python's `stream.seek(offset); stream.read(count)` is: an offset
// past the end yields an empty slice rather than an error.
func SliceBytes(data []byte, offset, count int) []byte {
	if offset < 0 {
		offset = 0
	}

	if offset > len(data) {
		offset = len(data)
	}

	end := len(data)
	if count >= 0 && offset+count < end {
		end = offset + count
	}

	return data[offset:end]
}

// ToByteArray returns count bytes of the underlying archive starting at
// offset (every remaining byte if count is negative), matching
// OpenPackagingConvention.py's toByteArray(offset=0, count=-1). Write-only
// containers fail outright, per spec.md §4.4 ("Write-only containers
// fail") and the source's toByteArray raising WriteOnlyError in write mode.
func (c *Container) ToByteArray(offset, count int) ([]byte, error) {
	if c.closed {
		return nil, fmt.Errorf("%w", ErrClosed)
	}

	if c.mode == WriteOnly {
		return nil, fmt.Errorf("%w", ErrWriteOnly)
	}

	return SliceBytes(c.raw, offset, count), nil
}

// AddContentType registers a default content type for extension, failing if
// one already exists for it.
func (c *Container) AddContentType(extension, mimeType string) error {
	if c.mode == ReadOnly {
		return fmt.Errorf("%w", ErrReadOnly)
	}

	return c.contentTypes.add(extension, mimeType)
}

// AddRelation adds a relationship from origin to target, failing if origin
// already has one for the same target. target is canonicalised through the
// family's aliases first.
func (c *Container) AddRelation(target, relationType, origin string) error {
	if c.mode == ReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, target)
	}

	target = c.canonicalise(target)

	doc, ok := c.relations[origin]
	if !ok {
		doc = newRelationshipsDoc()
		c.relations[origin] = doc
	}

	return doc.add(target, relationType)
}
