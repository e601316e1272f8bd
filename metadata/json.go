package metadata

import "encoding/json"

// MarshalJSON encodes tree as a compact JSON object with keys sorted
// alphabetically (encoding/json already sorts map[string]any keys, so ToAny
// plus the standard marshaller is sufficient without a custom walk); see
// [MarshalIndentJSON] for the indented form.
func (t Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToAny(t))
}

// UnmarshalJSON decodes a JSON object into tree, restricting leaves to the
// closed [Value] set via [FromAny].
func (t *Tree) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	tree := make(Tree, len(raw))
	for k, v := range raw {
		tree[k] = FromAny(v)
	}

	*t = tree

	return nil
}

// MarshalIndentJSON renders tree as pretty-printed JSON with a four-space
// indent and sorted keys, the exact on-disk shape spec.md §4.3 requires for
// metadata sidecars.
func MarshalIndentJSON(t Tree) ([]byte, error) {
	return json.MarshalIndent(ToAny(t), "", "    ")
}
