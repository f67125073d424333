package imaging

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
)

// RasterConverter converts an encoded image to PNG.
type RasterConverter interface {
	ConvertToPNG(img RasterImage) (RasterImage, error)
}

// SurfaceConverter converts by rasterizing onto a Surface and re-encoding.
type SurfaceConverter struct {
	Surface Surface
}

// ConvertToPNG implements RasterConverter.
func (c SurfaceConverter) ConvertToPNG(img RasterImage) (RasterImage, error) {
	if c.Surface == nil {
		return RasterImage{}, ErrNoSurface
	}
	px, err := c.Surface.Rasterize(img)
	if err != nil {
		return RasterImage{}, err
	}
	return c.Surface.EncodePNG(px)
}

// ImagingConverter converts with github.com/disintegration/imaging. It honors
// EXIF orientation, which matters for camera JPEGs.
type ImagingConverter struct{}

// ConvertToPNG implements RasterConverter.
func (ImagingConverter) ConvertToPNG(img RasterImage) (RasterImage, error) {
	decoded, err := imaging.Decode(bytes.NewReader(img.Data), imaging.AutoOrientation(true))
	if err != nil {
		return RasterImage{}, fmt.Errorf("failed to decode %s image: %w", img.MIME, err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, decoded, imaging.PNG); err != nil {
		return RasterImage{}, fmt.Errorf("failed to encode PNG: %w", err)
	}
	b := decoded.Bounds()
	return RasterImage{Data: buf.Bytes(), MIME: MIMEPNG, Width: b.Dx(), Height: b.Dy()}, nil
}

// FallbackConverter tries each converter in order and returns the first
// success. If all fail, the errors are joined.
type FallbackConverter []RasterConverter

// ConvertToPNG implements RasterConverter.
func (f FallbackConverter) ConvertToPNG(img RasterImage) (RasterImage, error) {
	if len(f) == 0 {
		return RasterImage{}, errors.New("imaging: no PNG converter configured")
	}
	var errs []error
	for _, c := range f {
		out, err := c.ConvertToPNG(img)
		if err == nil {
			return out, nil
		}
		errs = append(errs, err)
	}
	return RasterImage{}, errors.Join(errs...)
}

// DetectConverter builds the PNG conversion chain for the given Surface: the
// Surface path first when present, then the imaging package.
func DetectConverter(surface Surface) RasterConverter {
	if surface == nil {
		return ImagingConverter{}
	}
	return FallbackConverter{SurfaceConverter{Surface: surface}, ImagingConverter{}}
}
