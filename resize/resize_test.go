package resize_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ultimaker/libCharon/resize"
)

func encodeSolid(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestDefaultResizesToExactDimensions(t *testing.T) {
	t.Parallel()

	src := encodeSolid(t, 10, 20, color.RGBA{R: 255, A: 255})

	out, err := resize.Default(src, 4, 4)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 4, img.Bounds().Dx())
	require.Equal(t, 4, img.Bounds().Dy())
}

func TestDefaultStretchesWithoutAspectPreservation(t *testing.T) {
	t.Parallel()

	src := encodeSolid(t, 100, 10, color.RGBA{G: 255, A: 255})

	out, err := resize.Default(src, 3, 30)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 3, img.Bounds().Dx())
	require.Equal(t, 30, img.Bounds().Dy())
}
