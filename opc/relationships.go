package opc

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const relationshipsNamespace = "http://schemas.openxmlformats.org/package/2006/relationships"

// relationshipsDoc groups relationships about a single origin document.
type relationshipsDoc struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Xmlns         string         `xml:"xmlns,attr"`
	Relationships []relationship `xml:"Relationship"`
}

type relationship struct {
	ID     string `xml:"Id,attr"`
	Target string `xml:"Target,attr"`
	Type   string `xml:"Type,attr"`
}

func newRelationshipsDoc() *relationshipsDoc {
	return &relationshipsDoc{Xmlns: relationshipsNamespace}
}

func (d *relationshipsDoc) hasTarget(target string) bool {
	for _, r := range d.Relationships {
		if r.Target == target {
			return true
		}
	}

	return false
}

func (d *relationshipsDoc) hasID(id string) bool {
	for _, r := range d.Relationships {
		if r.ID == id {
			return true
		}
	}

	return false
}

// add allocates the smallest unused "rel<n>" id and appends a relationship,
// failing if target already has a relation in this origin.
func (d *relationshipsDoc) add(target, relType string) error {
	if d.hasTarget(target) {
		return fmt.Errorf("%w: relation for target %q already exists", ErrDuplicate, target)
	}

	id := d.allocateID()
	d.Relationships = append(d.Relationships, relationship{ID: id, Target: target, Type: relType})

	return nil
}

// ensure adds a relationship unless one for target already exists, silently
// ignoring the duplicate (used internally by the metadata sidecar writer).
func (d *relationshipsDoc) ensure(target, relType string) {
	if !d.hasTarget(target) {
		_ = d.add(target, relType)
	}
}

func (d *relationshipsDoc) allocateID() string {
	for n := 0; ; n++ {
		id := fmt.Sprintf("rel%d", n)
		if !d.hasID(id) {
			return id
		}
	}
}

// relsFileFor returns the virtual path of the .rels document describing
// origin, per spec.md §4.2's storage layout.
func relsFileFor(origin string) string {
	if origin == "" {
		return "/_rels/.rels"
	}

	idx := strings.LastIndex(origin, "/")
	directory := origin[:idx]
	name := origin[idx+1:]

	return directory + "/_rels/" + name + ".rels"
}

// originFor derives the origin virtual path a .rels file (given as a
// virtual path) is about, the inverse of relsFileFor.
func originFor(relsFile string) (origin string, ok bool) {
	if !strings.HasSuffix(relsFile, ".rels") {
		return "", false
	}

	lastSlash := strings.LastIndex(relsFile, "/")
	directory := relsFile[:lastSlash]

	if directory != "/_rels" && !strings.HasSuffix(directory, "/_rels") {
		return "", false
	}

	filename := strings.TrimSuffix(relsFile[lastSlash+1:], ".rels")
	originDirectory := strings.TrimSuffix(directory, "/_rels")

	if originDirectory == "" {
		if filename == "" {
			return "", true
		}

		return "/" + filename, true
	}

	return originDirectory + "/" + filename, true
}
