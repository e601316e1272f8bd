// Package opc implements the Open Packaging Convention container engine: a
// read/write ZIP archive with a content-types manifest, a relationships
// graph, hierarchical JSON metadata sidecars, regex-driven path aliases, and
// a resource-rewrite hook for on-the-fly PNG resize.
//
// Grounded on original_source/Charon/filetypes/OpenPackagingConvention.py in
// full (openStream/close/flush/listPaths/getData/setData/getMetadata/
// setMetadata/getStream/toByteArray, plus the relations- and content-types
// read/write helpers); archive/zip and encoding/xml are used directly per
// spec.md §1 ("no generic ZIP implementation ... delegated to a standard ZIP
// facility").
package opc
