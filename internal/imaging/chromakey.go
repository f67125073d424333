package imaging

import (
	"context"
	"errors"
	"image"
	"math"
)

// ChromaKeyParams holds the thresholds of the chroma key filter. The values
// from DefaultChromaKeyParams were tuned against green-screen renders and
// should only be changed deliberately.
type ChromaKeyParams struct {
	// Key fixes the key color. Nil samples it from the image border.
	Key *KeyColor `json:"key,omitempty"`

	// DefaultKey is used when border sampling finds no green pixel.
	DefaultKey KeyColor `json:"default_key"`

	// HardDistance is the key distance at or below which greenish pixels are removed.
	HardDistance float64 `json:"hard_distance"`
	// SoftDistance is the key distance at or below which greenish pixels are faded.
	SoftDistance float64 `json:"soft_distance"`
	// DistanceFadeRange spreads the fade from HardDistance outward.
	DistanceFadeRange float64 `json:"distance_fade_range"`

	// MinGreen and MinDominance define a "greenish" pixel.
	MinGreen     int `json:"min_green"`
	MinDominance int `json:"min_dominance"`

	// Pixels with dominance above HardDominance are removed regardless of
	// distance; above SoftDominance they are faded.
	HardDominance      int     `json:"hard_dominance"`
	SoftDominance      int     `json:"soft_dominance"`
	DominanceFadeRange float64 `json:"dominance_fade_range"`

	// Border sampling.
	SamplesPerEdge     int `json:"samples_per_edge"`
	SampleMinGreen     int `json:"sample_min_green"`
	SampleMinDominance int `json:"sample_min_dominance"`

	// SpillNudge is added to red and blue of faded pixels.
	SpillNudge int `json:"spill_nudge"`
}

// DefaultChromaKeyParams returns the standard thresholds.
func DefaultChromaKeyParams() ChromaKeyParams {
	return ChromaKeyParams{
		DefaultKey:         DefaultKeyColor,
		HardDistance:       55,
		SoftDistance:       115,
		DistanceFadeRange:  60,
		MinGreen:           110,
		MinDominance:       18,
		HardDominance:      60,
		SoftDominance:      40,
		DominanceFadeRange: 40,
		SamplesPerEdge:     60,
		SampleMinGreen:     120,
		SampleMinDominance: 25,
		SpillNudge:         8,
	}
}

// Validate rejects parameter sets that would divide by zero or invert the
// hard/soft bands.
func (p ChromaKeyParams) Validate() error {
	switch {
	case p.DistanceFadeRange <= 0 || p.DominanceFadeRange <= 0:
		return errors.New("chroma key: fade ranges must be positive")
	case p.SoftDistance < p.HardDistance:
		return errors.New("chroma key: soft distance must not be below hard distance")
	case p.HardDominance < p.SoftDominance:
		return errors.New("chroma key: hard dominance must not be below soft dominance")
	case p.SpillNudge < 0:
		return errors.New("chroma key: spill nudge must not be negative")
	}
	return nil
}

// ChromaKeyToAlpha converts the green backing of img to transparency and
// returns the result as PNG, whatever the input format.
//
// The key color is p.Key when set, otherwise SampleKeyColor of the image.
// When surface is nil the input is returned unchanged along with ErrNoSurface.
func ChromaKeyToAlpha(ctx context.Context, surface Surface, img RasterImage, p ChromaKeyParams) (RasterImage, error) {
	if err := ctx.Err(); err != nil {
		return RasterImage{}, err
	}
	if err := p.Validate(); err != nil {
		return RasterImage{}, err
	}
	if surface == nil {
		return img, ErrNoSurface
	}

	px, err := surface.Rasterize(img)
	if err != nil {
		return RasterImage{}, err
	}

	var key KeyColor
	if p.Key != nil {
		key = *p.Key
	} else {
		key = SampleKeyColor(px, p)
	}
	KeyPixels(px, key, p)

	return surface.EncodePNG(px)
}

// KeyPixels applies the chroma key to px in place. Fully transparent pixels
// are skipped.
func KeyPixels(px *image.NRGBA, key KeyColor, p ChromaKeyParams) {
	c := Classifier{Key: key, Params: p}
	b := px.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := px.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x, off = x+1, off+4 {
			pix := px.Pix[off : off+4 : off+4]
			if pix[3] == 0 {
				continue
			}
			class, fade := c.Classify(pix[0], pix[1], pix[2])
			switch class {
			case Remove:
				pix[3] = 0
			case Fade:
				pix[3] = uint8(math.Round(float64(pix[3]) * fade))
				pix[0] = nudge(pix[0], p.SpillNudge)
				pix[2] = nudge(pix[2], p.SpillNudge)
			}
		}
	}
}

func nudge(v uint8, by int) uint8 {
	n := int(v) + by
	if n > 255 {
		return 255
	}
	return uint8(n)
}
