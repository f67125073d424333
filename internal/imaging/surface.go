package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// ErrNoSurface is returned by operations that need rasterization when none
// is available. Filters return it together with their unchanged input, so
// callers may log it and carry on with the passthrough result.
var ErrNoSurface = errors.New("imaging: no rasterization surface available")

// Surface converts between encoded images and editable pixels.
type Surface interface {
	// Rasterize decodes img into a fresh non-premultiplied RGBA buffer whose
	// bounds start at (0,0).
	Rasterize(img RasterImage) (*image.NRGBA, error)

	// EncodePNG encodes px as a PNG RasterImage.
	EncodePNG(px image.Image) (RasterImage, error)
}

// DrawSurface is the offscreen Surface backed by the registered decoders and
// golang.org/x/image/draw.
type DrawSurface struct {
	// Compression selects the PNG compression level. Zero means default.
	Compression png.CompressionLevel
}

// Rasterize implements Surface.
func (s DrawSurface) Rasterize(img RasterImage) (*image.NRGBA, error) {
	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", img.MIME, err)
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, src, b, draw.Src, nil)
	return dst, nil
}

// EncodePNG implements Surface.
func (s DrawSurface) EncodePNG(px image.Image) (RasterImage, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: s.Compression}
	if err := enc.Encode(&buf, px); err != nil {
		return RasterImage{}, fmt.Errorf("failed to encode PNG: %w", err)
	}
	b := px.Bounds()
	return RasterImage{Data: buf.Bytes(), MIME: MIMEPNG, Width: b.Dx(), Height: b.Dy()}, nil
}

// DetectSurface returns the Surface for this process, or nil when
// rasterization has been disabled.
func DetectSurface(disabled bool) Surface {
	if disabled {
		return nil
	}
	return DrawSurface{}
}
