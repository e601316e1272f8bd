// Package gcode parses the leading semicolon-comment header of a G-code
// toolpath into a metadata tree, and validates that header against the
// "Griffin" and "UltiGCode" dialects.
//
// Grounded on original_source/Charon/filetypes/GCodeFile.py's
// parseHeader (line scanning, stop conditions, literal coercion) and
// UltimakerFormatPackage.py's fallback-parsing call site; the Griffin
// validation/restructuring rule set itself comes directly from spec.md
// §4.5, which is more exacting than the Python source.
package gcode
