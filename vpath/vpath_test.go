package vpath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ultimaker/libCharon/vpath"
)

func ufpAliases() vpath.Compiled {
	return vpath.AliasSet{
		{Pattern: "/preview", Replacement: "/Metadata/thumbnail.png"},
		{Pattern: "/toolpath", Replacement: "/3D/model.gcode"},
	}.Compile()
}

func TestCanonicalisePrependsSlash(t *testing.T) {
	t.Parallel()

	aliases := ufpAliases()
	assert.Equal(t, "/3D/model.gcode", vpath.Canonicalise("3D/model.gcode", aliases))
}

func TestCanonicaliseAppliesAliasesInOrder(t *testing.T) {
	t.Parallel()

	aliases := ufpAliases()
	assert.Equal(t, "/3D/model.gcode", vpath.Canonicalise("/toolpath", aliases))
	assert.Equal(t, "/Metadata/thumbnail.png", vpath.Canonicalise("/preview", aliases))
}

func TestCanonicaliseIsIdempotent(t *testing.T) {
	t.Parallel()

	aliases := ufpAliases()
	paths := []string{"/toolpath", "/preview", "/3D/model.gcode", "metadata/foo"}

	for _, p := range paths {
		once := vpath.Canonicalise(p, aliases)
		twice := vpath.Canonicalise(once, aliases)
		assert.Equal(t, once, twice, "canonicalise should be idempotent for %q", p)
	}
}

func TestZipNameToVirtual(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/foo/bar.txt", vpath.ZipNameToVirtual("foo/bar.txt"))
	assert.Equal(t, "/foo/bar.txt", vpath.ZipNameToVirtual("/foo/bar.txt"))
}

func TestVirtualToZipNameRoundTrip(t *testing.T) {
	t.Parallel()

	original := "/foo/bar.txt"
	zipName := vpath.VirtualToZipName(original)
	assert.Equal(t, "foo/bar.txt", zipName)
	assert.Equal(t, original, vpath.ZipNameToVirtual(zipName))
}

func TestIsMetadataPath(t *testing.T) {
	t.Parallel()

	assert.True(t, vpath.IsMetadataPath("/metadata/print/time"))
	assert.False(t, vpath.IsMetadataPath("/3D/model.gcode"))
}

func TestIsRelsPath(t *testing.T) {
	t.Parallel()

	assert.True(t, vpath.IsRelsPath("/_rels/.rels"))
	assert.False(t, vpath.IsRelsPath("/3D/model.gcode"))
}
