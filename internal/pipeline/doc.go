// Package pipeline runs named post-processing filters over a RasterImage.
//
// The set of steps is closed: each StepKind maps to one filter of the
// imaging package. String names exist only for persisted records and tool
// arguments, and are converted with ParseStep.
//
// Steps run strictly in order, each consuming the previous output. A step
// that fails (returns an error or panics) is logged and skipped; the chain
// continues with the image the step received. Unknown names are skipped with
// a warning because stored records may reference steps that no longer exist.
package pipeline
