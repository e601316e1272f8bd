package charonfile_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ultimaker/libCharon/charonfile"
	"github.com/Ultimaker/libCharon/metadata"
	"github.com/Ultimaker/libCharon/opc"
)

func TestAliasResolution(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	c := opc.Create(&buf, charonfile.UFPFamily())
	require.NoError(t, c.SetData(map[string][]byte{"/3D/model.gcode": []byte(";FLAVOR:UltiGCode\nG0 X0\n")}))
	require.NoError(t, c.Close())

	reopened, err := opc.Open(&buf, charonfile.UFPFamily())
	require.NoError(t, err)

	want, err := reopened.GetStream("/3D/model.gcode")
	require.NoError(t, err)
	wantBytes, err := io.ReadAll(want)
	require.NoError(t, err)

	got, err := reopened.GetStream("/toolpath")
	require.NoError(t, err)
	gotBytes, err := io.ReadAll(got)
	require.NoError(t, err)

	assert.Equal(t, wantBytes, gotBytes)
}

func TestUFPGCodeFallbackPopulatesMetadata(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	c := opc.Create(&buf, charonfile.UFPFamily())
	require.NoError(t, c.SetData(map[string][]byte{"/3D/model.gcode": []byte(";FLAVOR:UltiGCode\nG0 X0\n")}))
	require.NoError(t, c.Close())

	reopened, err := opc.Open(&buf, charonfile.UFPFamily())
	require.NoError(t, err)

	got := reopened.GetMetadata("/3D/model.gcode/machine_type")
	assert.Equal(t, metadata.Flat{"/metadata/3D/model.gcode/machine_type": metadata.String("ultimaker2")}, got)
}
