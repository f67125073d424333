package imaging

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
)

// OpaqueBounds returns the smallest rectangle containing every pixel with
// non-zero alpha. It is empty when the image is fully transparent.
func OpaqueBounds(px *image.NRGBA) image.Rectangle {
	b := px.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X, b.Min.Y
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := px.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x, off = x+1, off+4 {
			if px.Pix[off+3] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x >= maxX {
				maxX = x + 1
			}
			if y < minY {
				minY = y
			}
			if y >= maxY {
				maxY = y + 1
			}
		}
	}
	if minX >= maxX || minY >= maxY {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX, maxY)
}

// TrimTransparent crops img to the bounding box of its non-transparent
// pixels. Images that are fully transparent or already tight are returned
// unchanged. The result is PNG. Without a surface the input is returned
// along with ErrNoSurface.
func TrimTransparent(ctx context.Context, surface Surface, img RasterImage) (RasterImage, error) {
	if err := ctx.Err(); err != nil {
		return RasterImage{}, err
	}
	if surface == nil {
		return img, ErrNoSurface
	}

	px, err := surface.Rasterize(img)
	if err != nil {
		return RasterImage{}, err
	}

	opaque := OpaqueBounds(px)
	if opaque.Empty() || opaque == px.Bounds() {
		return img, nil
	}
	return surface.EncodePNG(imaging.Crop(px, opaque))
}
