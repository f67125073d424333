package imaging

import "math"

// PixelClass is the chroma key verdict for one pixel.
type PixelClass int

const (
	// Keep leaves the pixel untouched.
	Keep PixelClass = iota
	// Fade scales the pixel's alpha and suppresses green spill.
	Fade
	// Remove makes the pixel fully transparent.
	Remove
)

func (c PixelClass) String() string {
	switch c {
	case Keep:
		return "keep"
	case Fade:
		return "fade"
	case Remove:
		return "remove"
	default:
		return "unknown"
	}
}

// Dominance returns how far green exceeds the stronger of red and blue.
// Negative values mean the pixel is not green at all.
func Dominance(r, g, b uint8) int {
	other := r
	if b > other {
		other = b
	}
	return int(g) - int(other)
}

// Classifier scores pixels against a key color.
type Classifier struct {
	Key    KeyColor
	Params ChromaKeyParams
}

// Distance is the Euclidean RGB distance between the pixel and the key.
func (c Classifier) Distance(r, g, b uint8) float64 {
	dr := float64(r) - float64(c.Key.R)
	dg := float64(g) - float64(c.Key.G)
	db := float64(b) - float64(c.Key.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Classify decides what happens to a pixel. For Fade the returned factor is
// in [0,1] and multiplies the pixel's alpha; it is 0 for Remove and 1 for Keep.
func (c Classifier) Classify(r, g, b uint8) (PixelClass, float64) {
	p := c.Params
	d := c.Distance(r, g, b)
	dom := Dominance(r, g, b)
	greenish := int(g) > p.MinGreen && dom > p.MinDominance

	if (greenish && d <= p.HardDistance) || dom > p.HardDominance {
		return Remove, 0
	}
	if (greenish && d <= p.SoftDistance) || dom > p.SoftDominance {
		byDistance := clamp01((d - p.HardDistance) / p.DistanceFadeRange)
		byDominance := clamp01(float64(dom-p.SoftDominance) / p.DominanceFadeRange)
		return Fade, math.Max(byDistance, byDominance)
	}
	return Keep, 1
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
