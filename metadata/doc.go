// Package metadata implements the flat/nested metadata tree codec shared by
// every container format and by the G-code header parser: a fold/unfold pair
// isomorphic under fold(unfold(m)) = m, over a closed leaf value type.
//
// Grounded on original_source/Charon/filetypes/OpenPackagingConvention.py's
// _writeMetadataToFile/_readMetadataElement (the singleton-collapse and
// recursive-descent shapes) and spec.md §4.3.
package metadata
