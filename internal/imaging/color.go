package imaging

import (
	"fmt"
	"image"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// KeyColor is the RGB reference color treated as background by the chroma
// key filter.
type KeyColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// DefaultKeyColor is used when no border sample looks like a green screen.
var DefaultKeyColor = KeyColor{R: 0, G: 255, B: 102}

// ParseKeyColor parses "#RRGGBB", "#RGB" or the same without the leading '#'.
func ParseKeyColor(s string) (KeyColor, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return KeyColor{}, fmt.Errorf("invalid key color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return KeyColor{R: r, G: g, B: b}, nil
}

// Hex formats the color as "#rrggbb".
func (k KeyColor) Hex() string {
	return colorful.Color{
		R: float64(k.R) / 255,
		G: float64(k.G) / 255,
		B: float64(k.B) / 255,
	}.Hex()
}

func (k KeyColor) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", k.R, k.G, k.B)
}

// SampleKeyColor estimates the backing color of px from its border.
//
// It takes p.SamplesPerEdge evenly spaced pixels along each of the four
// edges. Opaque samples whose green channel exceeds p.SampleMinGreen and
// beats both red and blue by more than p.SampleMinDominance are averaged per
// channel. When no sample qualifies, p.DefaultKey is returned.
func SampleKeyColor(px *image.NRGBA, p ChromaKeyParams) KeyColor {
	b := px.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || p.SamplesPerEdge <= 0 {
		return p.DefaultKey
	}

	var sumR, sumG, sumB, n int
	sample := func(x, y int) {
		c := px.NRGBAAt(x, y)
		if c.A == 0 {
			return
		}
		if int(c.G) > p.SampleMinGreen && Dominance(c.R, c.G, c.B) > p.SampleMinDominance {
			sumR += int(c.R)
			sumG += int(c.G)
			sumB += int(c.B)
			n++
		}
	}

	for i := 0; i < p.SamplesPerEdge; i++ {
		x := b.Min.X + spread(i, p.SamplesPerEdge, w)
		y := b.Min.Y + spread(i, p.SamplesPerEdge, h)
		sample(x, b.Min.Y)
		sample(x, b.Max.Y-1)
		sample(b.Min.X, y)
		sample(b.Max.X-1, y)
	}

	if n == 0 {
		return p.DefaultKey
	}
	avg := func(sum int) uint8 {
		return uint8(math.Round(float64(sum) / float64(n)))
	}
	return KeyColor{R: avg(sumR), G: avg(sumG), B: avg(sumB)}
}

// spread maps sample i of count onto [0, length) with both ends included.
func spread(i, count, length int) int {
	if count <= 1 || length <= 1 {
		return 0
	}
	return int(math.Round(float64(i) * float64(length-1) / float64(count-1)))
}
