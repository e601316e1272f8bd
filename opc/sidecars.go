package opc

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/Ultimaker/libCharon/gcode"
	"github.com/Ultimaker/libCharon/metadata"
	"github.com/Ultimaker/libCharon/vpath"
)

// sidecarContentType is the MIME type metadata JSON sidecars are registered
// under, per spec.md §6 ("json → text/json").
const sidecarContentType = "text/json"

// readContentTypes loads the content-types manifest, if present; a missing
// manifest is not an error, it simply leaves contentTypes empty, matching a
// freshly-created archive that has not been flushed yet.
func (c *Container) readContentTypes(zr *zip.Reader) {
	c.contentTypes = newContentTypesDoc()

	f, err := zr.Open(vpath.VirtualToZipName(ContentTypesFile))
	if err != nil {
		return
	}
	defer f.Close()

	_ = xml.NewDecoder(f).Decode(c.contentTypes)
}

// readRelationships loads every ".rels" document in the archive, indexing
// each by the origin it describes (root origin is "").
func (c *Container) readRelationships(zr *zip.Reader) error {
	for _, f := range zr.File {
		virtual := vpath.ZipNameToVirtual(f.Name)

		origin, ok := originFor(virtual)
		if !ok {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("%w: opening %s: %w", ErrIoUnderlying, virtual, err)
		}

		doc := newRelationshipsDoc()
		decodeErr := xml.NewDecoder(rc).Decode(doc)
		rc.Close()

		if decodeErr != nil {
			return fmt.Errorf("opc: parsing %s: %w", virtual, decodeErr)
		}

		c.relations[origin] = doc
	}

	return nil
}

// readMetadata loads every JSON sidecar reachable through a metadata
// relationship, merging the flattened result into c.md keyed by the origin
// it describes. If no sidecar at all describes family.GCodeFallbackPath, its
// G-code header is parsed instead, per spec.md §5 (UFP fallback).
func (c *Container) readMetadata(zr *zip.Reader) error {
	described := make(map[string]bool)

	for origin, doc := range c.relations {
		for _, rel := range doc.Relationships {
			if rel.Type != c.family.MetadataRelationType {
				continue
			}

			target := rel.Target
			if !strings.HasPrefix(target, "/") {
				target = vpath.Canonicalise("/"+strings.TrimPrefix(origin, "/")+"/"+target, nil)
			}

			data, err := c.readResourceBytesFromZip(zr, target)
			if err != nil {
				continue
			}

			var tree metadata.Tree
			if err := tree.UnmarshalJSON(data); err != nil {
				return fmt.Errorf("opc: parsing metadata sidecar %s: %w", target, err)
			}

			c.mergeMetadataTree(origin, tree)
			described[origin] = true
		}
	}

	if c.family.GCodeFallbackPath != "" && !described[c.family.GCodeFallbackPath] {
		if err := c.loadGCodeFallback(zr); err != nil {
			return err
		}
	}

	return nil
}

// mergeMetadataTree flattens tree and stores it in c.md, prefixing every key
// with origin so that metadata about different resources cannot collide.
func (c *Container) mergeMetadataTree(origin string, tree metadata.Tree) {
	flat := metadata.Fold(tree, "/")
	prefix := strings.TrimSuffix(origin, "/")

	for key, value := range flat {
		c.md[prefix+key] = value
	}
}

// loadGCodeFallback parses the G-code comment header at
// family.GCodeFallbackPath and merges it into c.md, used when a UFP package
// carries no explicit metadata sidecar for its toolpath.
func (c *Container) loadGCodeFallback(zr *zip.Reader) error {
	f, err := zr.Open(vpath.VirtualToZipName(c.family.GCodeFallbackPath))
	if err != nil {
		return nil
	}
	defer f.Close()

	flat, err := gcode.ReadHeader(f, "")
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("skipping malformed gcode header", "path", c.family.GCodeFallbackPath, "error", err)
		}

		return nil
	}

	c.mergeMetadataTree(c.family.GCodeFallbackPath, metadata.Unfold(flat, "/"))

	return nil
}

// writeMetadataSidecars serialises c.md into one JSON file per origin and
// stages it under pending, registering the ".json" extension and a metadata
// relationship from that origin. Global (root) metadata is written to
// family.GlobalMetadataFile.
func (c *Container) writeMetadataSidecars() {
	c.contentTypes.ensure("json", sidecarContentType)

	byOrigin := c.groupMetadataByOrigin()

	for origin, flat := range byOrigin {
		tree := metadata.Unfold(flat, "/")

		data, err := metadata.MarshalIndentJSON(tree)
		if err != nil {
			continue
		}

		sidecarPath := c.sidecarPathFor(origin)
		c.pending[sidecarPath] = data

		doc, ok := c.relations[origin]
		if !ok {
			doc = newRelationshipsDoc()
			c.relations[origin] = doc
		}

		doc.ensure(sidecarPath, c.family.MetadataRelationType)
	}
}

// groupMetadataByOrigin reverses [Container.mergeMetadataTree]'s key
// prefixing, splitting c.md back into one Flat map per origin it was
// recorded against. A key that lies under no staged resource path belongs to
// the root origin.
func (c *Container) groupMetadataByOrigin() map[string]metadata.Flat {
	groups := make(map[string]metadata.Flat)

	origins := make([]string, 0, len(c.zipNames)+len(c.pending)+1)
	origins = append(origins, "")

	for name := range c.pending {
		origins = append(origins, name)
	}

	sort.Slice(origins, func(i, j int) bool { return len(origins[i]) > len(origins[j]) })

	for key, value := range c.md {
		origin := c.originForKey(key, origins)

		group, ok := groups[origin]
		if !ok {
			group = make(metadata.Flat)
			groups[origin] = group
		}

		suffix := strings.TrimPrefix(key, origin)
		suffix = strings.TrimPrefix(suffix, "/")
		group["/"+suffix] = value
	}

	return groups
}

// originForKey finds the longest known resource path that is a prefix of
// key, treating anything left over as root metadata.
func (c *Container) originForKey(key string, candidateOrigins []string) string {
	for _, origin := range candidateOrigins {
		if origin == "" {
			continue
		}

		if key == origin || strings.HasPrefix(key, origin+"/") {
			return origin
		}
	}

	return ""
}

// sidecarPathFor returns the canonical virtual path of the metadata JSON
// document describing origin.
func (c *Container) sidecarPathFor(origin string) string {
	if origin == "" {
		return c.family.GlobalMetadataFile
	}

	return origin + ".json"
}

// writeContentTypesFile stages the content-types manifest for the ZIP
// writer.
func (c *Container) writeContentTypesFile() {
	data, err := marshalPretty(c.contentTypes)
	if err != nil {
		return
	}

	c.pending[ContentTypesFile] = data
}

// writeRelationshipFiles stages every non-empty relationships document,
// including an empty root ".rels" so the archive always validates as OPC.
func (c *Container) writeRelationshipFiles() {
	for origin, doc := range c.relations {
		if len(doc.Relationships) == 0 && origin != "" {
			continue
		}

		data, err := marshalPretty(doc)
		if err != nil {
			continue
		}

		c.pending[relsFileFor(origin)] = data
	}
}
