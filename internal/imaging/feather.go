package imaging

import (
	"context"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"
)

// FeatherAlpha softens alpha edges, typically after ChromaKeyToAlpha.
//
// The alpha channel is blurred with a Gaussian of the given radius and each
// pixel keeps the lower of its original and blurred alpha, so edges fade
// inward and no halo is added outside the subject. The result is PNG.
// Without a surface the input is returned along with ErrNoSurface.
func FeatherAlpha(ctx context.Context, surface Surface, img RasterImage, radius float64) (RasterImage, error) {
	if err := ctx.Err(); err != nil {
		return RasterImage{}, err
	}
	if radius <= 0 {
		return RasterImage{}, fmt.Errorf("feather radius must be positive, got %g", radius)
	}
	if surface == nil {
		return img, ErrNoSurface
	}

	px, err := surface.Rasterize(img)
	if err != nil {
		return RasterImage{}, err
	}

	b := px.Bounds()
	mask := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			mask.Pix[mask.PixOffset(x, y)] = px.Pix[px.PixOffset(x, y)+3]
		}
	}

	blurred := blur.Gaussian(mask, radius)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := px.PixOffset(x, y) + 3
			soft := blurred.Pix[blurred.PixOffset(x, y)]
			if soft < px.Pix[i] {
				px.Pix[i] = soft
			}
		}
	}

	return surface.EncodePNG(px)
}
