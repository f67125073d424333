package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ironsheep/image-export-mcp/internal/imaging"
)

// DefaultFeatherRadius is the Gaussian radius used by FeatherAlpha.
const DefaultFeatherRadius = 1.5

// StepError reports a step that failed. The chain continues past it.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("pipeline step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Options configures a Registry.
type Options struct {
	// Surface rasterizes images for the filters. Nil turns every filter
	// into a passthrough that is logged and reported as skipped.
	Surface imaging.Surface

	// ChromaKey holds the chroma key thresholds. Nil means
	// imaging.DefaultChromaKeyParams.
	ChromaKey *imaging.ChromaKeyParams

	// FeatherRadius is the FeatherAlpha radius. Zero means DefaultFeatherRadius.
	FeatherRadius float64

	// Logger receives warnings. Nil means log.Default.
	Logger *log.Logger
}

type stepFunc func(ctx context.Context, img imaging.RasterImage) (imaging.RasterImage, error)

// Registry executes named step chains. It holds no per-call state and is
// safe for concurrent use.
type Registry struct {
	steps  map[StepKind]stepFunc
	logger *log.Logger
}

// New builds the registry with every StepKind bound to its filter.
func New(opts Options) *Registry {
	params := imaging.DefaultChromaKeyParams()
	if opts.ChromaKey != nil {
		params = *opts.ChromaKey
	}
	radius := opts.FeatherRadius
	if radius == 0 {
		radius = DefaultFeatherRadius
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	surface := opts.Surface

	return &Registry{
		logger: logger,
		steps: map[StepKind]stepFunc{
			ChromaKeyToAlpha: func(ctx context.Context, img imaging.RasterImage) (imaging.RasterImage, error) {
				return imaging.ChromaKeyToAlpha(ctx, surface, img, params)
			},
			FeatherAlpha: func(ctx context.Context, img imaging.RasterImage) (imaging.RasterImage, error) {
				return imaging.FeatherAlpha(ctx, surface, img, radius)
			},
			TrimTransparent: func(ctx context.Context, img imaging.RasterImage) (imaging.RasterImage, error) {
				return imaging.TrimTransparent(ctx, surface, img)
			},
		},
	}
}

// Report describes what a Run did with each requested name.
type Report struct {
	Applied []string     `json:"applied"`
	// Skipped lists unknown names and steps that could not run without a
	// rasterization surface.
	Skipped []string     `json:"skipped,omitempty"`
	Failed  []*StepError `json:"-"`
}

// FailedSteps returns the names of the failed steps.
func (r Report) FailedSteps() []string {
	names := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		names[i] = f.Step
	}
	return names
}

// Apply runs the named steps over img and returns the final image. It never
// fails: unknown and failing steps are logged and skipped.
func (r *Registry) Apply(ctx context.Context, img imaging.RasterImage, names []string) imaging.RasterImage {
	out, _ := r.Run(ctx, img, names)
	return out
}

// Run is Apply with a report of applied, skipped and failed steps.
func (r *Registry) Run(ctx context.Context, img imaging.RasterImage, names []string) (imaging.RasterImage, Report) {
	var report Report
	if len(names) == 0 {
		return img, report
	}

	current := img
	for _, name := range names {
		kind, ok := ParseStep(name)
		if !ok {
			r.logger.Printf("warning: unknown pipeline step %q skipped", name)
			report.Skipped = append(report.Skipped, name)
			continue
		}

		out, err := r.runStep(ctx, kind, current)
		if errors.Is(err, imaging.ErrNoSurface) {
			r.logger.Printf("warning: %s skipped: %v", kind, imaging.ErrNoSurface)
			report.Skipped = append(report.Skipped, kind.String())
			continue
		}
		if err != nil {
			r.logger.Printf("warning: %v", err)
			report.Failed = append(report.Failed, err)
			continue
		}
		current = out
		report.Applied = append(report.Applied, kind.String())
	}
	return current, report
}

// runStep executes one step, converting errors and panics to *StepError.
func (r *Registry) runStep(ctx context.Context, kind StepKind, img imaging.RasterImage) (out imaging.RasterImage, stepErr *StepError) {
	defer func() {
		if p := recover(); p != nil {
			out = img
			stepErr = &StepError{Step: kind.String(), Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	fn, ok := r.steps[kind]
	if !ok {
		return img, &StepError{Step: kind.String(), Err: fmt.Errorf("no filter bound")}
	}
	res, err := fn(ctx, img)
	if err != nil {
		return img, &StepError{Step: kind.String(), Err: err}
	}
	return res, nil
}
