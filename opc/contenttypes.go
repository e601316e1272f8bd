package opc

import (
	"encoding/xml"
	"fmt"
)

const contentTypesNamespace = "http://schemas.openxmlformats.org/package/2006/content-types"

// ContentTypesFile is the reserved virtual path of the content-types
// manifest, per spec.md §6.
const ContentTypesFile = "/[Content_Types].xml"

const relsContentType = "application/vnd.openxmlformats-package.relationships+xml"

// contentTypesDoc is the `/[Content_Types].xml` manifest: a flat set of
// {extension -> mime-type} defaults.
type contentTypesDoc struct {
	XMLName  xml.Name             `xml:"Types"`
	Xmlns    string               `xml:"xmlns,attr"`
	Defaults []defaultContentType `xml:"Default"`
}

type defaultContentType struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

func newContentTypesDoc() *contentTypesDoc {
	return &contentTypesDoc{Xmlns: contentTypesNamespace}
}

func (d *contentTypesDoc) has(extension string) bool {
	for _, ct := range d.Defaults {
		if ct.Extension == extension {
			return true
		}
	}

	return false
}

// add registers extension -> mimeType, failing if extension is already
// registered.
func (d *contentTypesDoc) add(extension, mimeType string) error {
	if d.has(extension) {
		return fmt.Errorf("%w: content type for extension %q already exists", ErrDuplicate, extension)
	}

	d.Defaults = append(d.Defaults, defaultContentType{Extension: extension, ContentType: mimeType})

	return nil
}

// ensure registers extension -> mimeType, silently doing nothing if it is
// already registered (used internally where duplication is expected, not a
// caller error).
func (d *contentTypesDoc) ensure(extension, mimeType string) {
	if !d.has(extension) {
		d.Defaults = append(d.Defaults, defaultContentType{Extension: extension, ContentType: mimeType})
	}
}
