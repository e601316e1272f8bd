package metadata

import (
	"sort"
	"strings"
)

// sentinelKey is the key under which a leaf value lives inside a node that
// also has child subtrees, per spec.md §4.3 step 3. A node whose only key is
// the sentinel collapses to its value (step 4).
const sentinelKey = ""

// Flat is the in-memory representation of a metadata tree: a flat mapping
// from "/"-separated key to leaf [Value]. Keys never end in "/"; empty
// segments are disallowed (callers are expected to trim before inserting).
type Flat map[string]Value

// Unfold builds the nested nested on-disk representation of flat, per the
// algorithm in spec.md §4.3:
//  1. Split each key on sep, stripping a leading sep.
//  2. Walk the path in a fresh tree, creating intermediate maps as needed.
//  3. Store the leaf at the sentinel key within the deepest map.
//  4. Collapse any map whose only key is the sentinel to its value.
func Unfold(flat Flat, sep string) Tree {
	root := make(Tree)

	for key, value := range flat {
		segments := strings.Split(strings.Trim(key, sep), sep)

		node := root
		for _, segment := range segments {
			child, ok := node[segment].(Tree)
			if !ok {
				child = make(Tree)
				node[segment] = child
			}

			node = child
		}

		node[sentinelKey] = value
	}

	collapseSingletons(root)

	return root
}

// collapseSingletons replaces every node whose only key is the sentinel with
// its value, recursively, in place.
func collapseSingletons(node Tree) {
	for key, value := range node {
		if subtree, ok := value.(Tree); ok {
			collapseSingletons(subtree)

			if len(subtree) == 1 {
				if leaf, ok := subtree[sentinelKey]; ok {
					node[key] = leaf
				}
			}
		}
	}
}

// Fold walks tree depth-first and flattens it back into a [Flat] map: every
// scalar leaf contributes a key "sep" + join(sep, path); nested [Tree]
// values recurse with the path extended by the child key. Fold is the
// inverse of [Unfold]: Fold(Unfold(m, sep), sep) == m for any valid m.
func Fold(tree Tree, sep string) Flat {
	flat := make(Flat)
	foldInto(flat, tree, "", sep)

	return flat
}

func foldInto(flat Flat, node Tree, prefix string, sep string) {
	for key, value := range node {
		path := prefix + sep + key
		if key == sentinelKey {
			path = prefix
		}

		if subtree, ok := value.(Tree); ok {
			foldInto(flat, subtree, path, sep)
		} else {
			flat[path] = value
		}
	}
}

// SortedKeys returns the keys of flat in sorted order, useful for
// deterministic iteration in tests and for any caller emitting
// human-readable output.
func (flat Flat) SortedKeys() []string {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
