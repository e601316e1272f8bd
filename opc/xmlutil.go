package opc

import (
	"bytes"
	"encoding/xml"
)

// xmlProcessingInstruction is the header element every manifest file
// carries, per spec.md §4.2. xml.MarshalIndent does not emit one on its
// own, so it is prepended here.
const xmlProcessingInstruction = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// marshalPretty renders v (a manifest struct) as two-space-indented XML
// prefixed by the standard processing instruction. Byte-identical
// round-trips are not guaranteed by this encoding, only structural
// equivalence, matching spec.md §4.2's explicit allowance.
func marshalPretty(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBufferString(xmlProcessingInstruction)
	buf.Write(body)

	return buf.Bytes(), nil
}
