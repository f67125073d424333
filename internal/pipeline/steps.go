package pipeline

import "strings"

// StepKind identifies a post-processing filter.
type StepKind int

const (
	// ChromaKeyToAlpha turns a green backing into transparency.
	ChromaKeyToAlpha StepKind = iota + 1
	// FeatherAlpha softens alpha edges.
	FeatherAlpha
	// TrimTransparent crops away fully transparent borders.
	TrimTransparent
)

var stepNames = map[StepKind]string{
	ChromaKeyToAlpha: "green-screen-to-alpha",
	FeatherAlpha:     "feather-alpha",
	TrimTransparent:  "trim-transparent",
}

// Steps lists every known step in declaration order.
func Steps() []StepKind {
	return []StepKind{ChromaKeyToAlpha, FeatherAlpha, TrimTransparent}
}

// String returns the persisted name of the step.
func (k StepKind) String() string {
	if name, ok := stepNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseStep resolves a persisted step name. Matching ignores case and
// surrounding whitespace.
func ParseStep(name string) (StepKind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range stepNames {
		if n == name {
			return kind, true
		}
	}
	return 0, false
}
