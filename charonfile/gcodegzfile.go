package charonfile

import (
	"compress/gzip"
	"fmt"
	"io"
)

// OpenGzip decompresses r and parses the result as a plain G-code stream.
// Grounded on original_source/Charon/filetypes/GCodeGzFile.py, whose only
// deviation from GCodeFile is stream_handler = gzip.open; everything else
// (header parsing, metadata addressing) is identical, so this simply
// delegates to [Open] once decompressed.
func OpenGzip(r io.Reader) (*GCodeFile, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("charonfile: opening gzip gcode stream: %w", err)
	}

	return Open(zr)
}
