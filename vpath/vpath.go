package vpath

import (
	"regexp"
	"strings"
)

// MetadataPrefix marks the reserved subtree that addresses metadata rather
// than file bytes.
const MetadataPrefix = "/metadata"

// RelsPrefix marks the reserved relationships subtree; never writable
// through the public stream API.
const RelsPrefix = "/_rels"

// Alias is a single path-aliasing rule: occurrences of Pattern are replaced
// with Replacement. If Pattern begins with "/" it is anchored to the start
// of the path before being compiled, matching the source implementation's
// behaviour of anchoring absolute-looking rules.
type Alias struct {
	Pattern     string
	Replacement string
}

// AliasSet is an ordered list of [Alias] rules. Order is semantically
// significant: rules are applied in sequence, each operating on the result
// of the previous one.
type AliasSet []Alias

// Compiled is an [AliasSet] with its patterns pre-compiled into regular
// expressions, for repeated use without recompiling on every call.
type Compiled []compiledAlias

type compiledAlias struct {
	expr        *regexp.Regexp
	replacement string
}

// Compile compiles every rule in the set in order. It panics if a pattern is
// not a valid regular expression, since alias sets are fixed, compile-time
// constants per format family.
func (a AliasSet) Compile() Compiled {
	compiled := make(Compiled, 0, len(a))

	for _, alias := range a {
		expression := alias.Pattern
		if strings.HasPrefix(expression, "/") {
			expression = "^" + expression
		}

		compiled = append(compiled, compiledAlias{
			expr:        regexp.MustCompile(expression),
			replacement: alias.Replacement,
		})
	}

	return compiled
}

// Canonicalise prepends "/" if missing, then applies each alias rule in
// order. Canonicalise is idempotent: canonicalising an already-canonical
// path is a no-op, since applying the same ordered rules twice to a fixed
// point yields the fixed point again.
func Canonicalise(path string, aliases Compiled) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	for _, alias := range aliases {
		path = alias.expr.ReplaceAllString(path, alias.replacement)
	}

	return path
}

// ZipNameToVirtual prepends "/" to a zip archive entry name if it lacks one;
// otherwise it is the identity function.
func ZipNameToVirtual(name string) string {
	if !strings.HasPrefix(name, "/") {
		return "/" + name
	}

	return name
}

// VirtualToZipName strips a single leading "/" so the result is suitable for
// zip APIs that expect relative entry names. The conversion is lossless:
// ZipNameToVirtual(VirtualToZipName(p)) == p for any canonical p.
func VirtualToZipName(path string) string {
	return strings.TrimPrefix(path, "/")
}

// IsMetadataPath reports whether path addresses metadata rather than file
// bytes.
func IsMetadataPath(path string) bool {
	return strings.HasPrefix(path, MetadataPrefix)
}

// IsRelsPath reports whether path falls under the reserved relationships
// subtree.
func IsRelsPath(path string) bool {
	return strings.HasPrefix(path, RelsPrefix)
}
