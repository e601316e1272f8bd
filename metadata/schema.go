package metadata

import "github.com/google/jsonschema-go/jsonschema"

// Schema builds a JSON Schema document describing the closed [Value] leaf
// contract, for any bus consumer that wants to validate a `data` event
// payload against the shape this library actually produces. It is
// introspective only: nothing in this package or opc uses it to reject a
// metadata tree at runtime (spec.md §1 excludes schema validation beyond the
// header/manifest rules).
func Schema() *jsonschema.Schema {
	leaf := &jsonschema.Schema{
		AnyOf: []*jsonschema.Schema{
			{Type: "null"},
			{Type: "boolean"},
			{Type: "integer"},
			{Type: "number"},
			{Type: "string"},
			nestedObjectSchema(),
		},
	}

	return leaf
}

func nestedObjectSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		AdditionalProperties: &jsonschema.Schema{
			AnyOf: []*jsonschema.Schema{
				{Type: "null"},
				{Type: "boolean"},
				{Type: "integer"},
				{Type: "number"},
				{Type: "string"},
			},
		},
	}
}
