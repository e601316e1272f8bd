package resize

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// Func resizes a PNG-encoded image to the given width and height, returning
// a freshly encoded PNG. [opc.Container] is constructed with one of these;
// [Default] is the stock implementation.
type Func func(png []byte, width, height int) ([]byte, error)

// Default resizes src (PNG-encoded) to width x height using smooth bilinear
// sampling and no aspect-ratio preservation, matching spec.md §4.4's
// get_stream contract exactly.
func Default(src []byte, width, height int) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("resize: decoding source PNG: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("resize: encoding resized PNG: %w", err)
	}

	return buf.Bytes(), nil
}
