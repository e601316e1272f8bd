package gcode

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/Ultimaker/libCharon/metadata"
)

// MaxHeaderLines bounds how many leading lines are scanned for header
// comments before giving up on finding an end-of-header marker.
const MaxHeaderLines = 100

// headerVersionKey is special-cased: its value is always kept as an
// unparsed string, even when it would otherwise coerce to a number (e.g.
// "0.1" must stay the string "0.1", not float64(0.1)).
const headerVersionKey = "header_version"

// ReadHeader reads up to [MaxHeaderLines] lines from r, parses the
// semicolon-comment header into a nested tree, validates and restructures it
// per the dialect named by the "flavor" field, then flattens the result back
// into a [metadata.Flat] map with every key prefixed by prefix.
//
// If r also implements [io.Seeker], the stream is rewound to offset 0 after
// reading so it remains usable as the toolpath body; non-seekable readers
// (e.g. a socket line-protocol stream) are left consumed.
func ReadHeader(r io.Reader, prefix string) (metadata.Flat, error) {
	raw, err := scanHeaderLines(r)
	if err != nil {
		return nil, err
	}

	if seeker, ok := r.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}

	tree := metadata.Unfold(raw, ".")

	if err := validateDialect(tree); err != nil {
		return nil, err
	}

	flat := metadata.Fold(tree, "/")

	if prefix == "" {
		return flat, nil
	}

	prefixed := make(metadata.Flat, len(flat))
	for key, value := range flat {
		prefixed[prefix+strings.TrimPrefix(key, "/")] = value
	}

	return prefixed, nil
}

// scanHeaderLines reads the leading comment block into a flat, dot-keyed
// map, following spec.md §4.5 step 1-3.
func scanHeaderLines(r io.Reader) (metadata.Flat, error) {
	flat := make(metadata.Flat)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNumber := 0
	for scanner.Scan() {
		if lineNumber >= MaxHeaderLines {
			break
		}
		lineNumber++

		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, ";START_OF_HEADER"):
			continue
		case strings.HasPrefix(line, ";LAYER"), strings.HasPrefix(line, ";END_OF_HEADER"):
			return flat, nil
		case strings.HasPrefix(line, ";") && strings.Contains(line, ":"):
			body := line[1:]

			idx := strings.Index(body, ":")
			key := strings.ToLower(strings.TrimSpace(body[:idx]))
			rawValue := strings.TrimSpace(body[idx+1:])

			if key == headerVersionKey {
				flat[key] = metadata.String(rawValue)
			} else {
				flat[key] = coerceLiteral(rawValue)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return flat, nil
}

// coerceLiteral parses a header value as a boolean, integer, or float,
// falling back to a string when nothing else matches.
func coerceLiteral(raw string) metadata.Value {
	switch strings.ToLower(raw) {
	case "true":
		return metadata.Bool(true)
	case "false":
		return metadata.Bool(false)
	}

	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return metadata.Int(i)
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return metadata.Float(f)
	}

	return metadata.String(raw)
}
