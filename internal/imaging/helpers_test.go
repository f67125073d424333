package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// createInMemoryImage creates a solid NRGBA test image.
func createInMemoryImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// createKeyedImage creates a green-screen image with a centered square
// foreground covering the middle half.
func createKeyedImage(width, height int, bg, fg color.NRGBA) *image.NRGBA {
	img := createInMemoryImage(width, height, bg)
	for y := height / 4; y < height*3/4; y++ {
		for x := width / 4; x < width*3/4; x++ {
			img.SetNRGBA(x, y, fg)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) RasterImage {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	b := img.Bounds()
	return RasterImage{Data: buf.Bytes(), MIME: MIMEPNG, Width: b.Dx(), Height: b.Dy()}
}

func encodeJPEG(t *testing.T, img image.Image) RasterImage {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("failed to encode JPEG: %v", err)
	}
	b := img.Bounds()
	return RasterImage{Data: buf.Bytes(), MIME: MIMEJPEG, Width: b.Dx(), Height: b.Dy()}
}

func decodeNRGBA(t *testing.T, img RasterImage) *image.NRGBA {
	t.Helper()
	px, err := DrawSurface{}.Rasterize(img)
	if err != nil {
		t.Fatalf("failed to rasterize result: %v", err)
	}
	return px
}
