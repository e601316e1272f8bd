package charonfile_test

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ultimaker/libCharon/charonfile"
)

func TestDispatcherOpensPlainGCode(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "model.gcode")
	require.NoError(t, os.WriteFile(path, []byte(";FLAVOR:UltiGCode\nG0 X0\n"), 0o644))

	f, err := charonfile.NewDispatcher().Open(path)
	require.NoError(t, err)
	defer f.Close()

	got := f.GetMetadata("/metadata/toolpath/default/machine_type")
	assert.NotEmpty(t, got)
}

func TestDispatcherUnknownExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "model.stl")
	require.NoError(t, os.WriteFile(path, []byte("not gcode"), 0o644))

	_, err := charonfile.NewDispatcher().Open(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, charonfile.ErrUnknownExtension))
}

func TestDispatcherOpensCompoundGzExtension(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(";FLAVOR:UltiGCode\nG0 X0\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "model.gcode.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	f, err := charonfile.NewDispatcher().Open(path)
	require.NoError(t, err)
	defer f.Close()

	got := f.GetMetadata("/metadata/toolpath/default/machine_type")
	assert.NotEmpty(t, got)
}
