// Package charonfile maps a file extension or MIME type to a concrete file
// implementation: an [opc.Container] configured with a product [opc.Family]
// (UFP, Cura package) for ZIP-based containers, a [GCodeFile] for
// plain/gzip G-code streams, or a [GCodeSocketFile] for socket streams.
//
// Grounded on original_source/Charon/FileInterface.py (the trait every
// format implements) and the concrete file types under
// original_source/Charon/filetypes/. The source's dynamic attribute
// delegation (§9 redesign flag "Dynamic attribute delegation") is replaced
// here by the fixed [File] interface plus a tagged set of concrete
// implementations; no reflection is used anywhere in this package.
package charonfile
