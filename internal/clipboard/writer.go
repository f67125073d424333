package clipboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"

	"github.com/ironsheep/image-export-mcp/internal/imaging"
	"github.com/ironsheep/image-export-mcp/internal/pngtext"
)

// Outcome reports what ended up on the clipboard.
type Outcome int

const (
	// OutcomeFailed means nothing was written.
	OutcomeFailed Outcome = iota
	// OutcomeImage means an image payload was written.
	OutcomeImage
	// OutcomeText means the image was copied as text.
	OutcomeText
)

func (o Outcome) String() string {
	switch o {
	case OutcomeImage:
		return "image"
	case OutcomeText:
		return "text"
	default:
		return "failed"
	}
}

// Success reports whether the clipboard received something usable.
func (o Outcome) Success() bool {
	return o != OutcomeFailed
}

// Item is one typed payload of an image write.
type Item struct {
	MIME string
	Data []byte
}

// SupportQuery reports whether a MIME type can be written. An error means
// the query itself is unavailable.
type SupportQuery interface {
	Supports(mime string) (bool, error)
}

// ImageWriter writes one or more typed payloads as a single clipboard entry.
type ImageWriter interface {
	WriteImage(ctx context.Context, items ...Item) error
}

// TextWriter writes plain text.
type TextWriter interface {
	WriteText(ctx context.Context, text string) error
}

// ErrNoImageWriter is returned when no image-write capability is configured.
var ErrNoImageWriter = errors.New("clipboard: image write unavailable")

// RejectedError reports a clipboard that declined a payload.
type RejectedError struct {
	MIME   string
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("clipboard rejected %s: %s", e.MIME, e.Reason)
}

var rejectionPattern = regexp.MustCompile(`(?i)not\s*(supported|allowed)|unsupported|denied`)

// IsRejection reports whether err means the platform declined the payload
// type, as opposed to an I/O failure.
func IsRejection(err error) bool {
	if err == nil {
		return false
	}
	var re *RejectedError
	if errors.As(err, &re) {
		return true
	}
	return rejectionPattern.MatchString(err.Error())
}

// Writer copies images to a clipboard, falling back as described in the
// package documentation. The zero value has no capabilities and always
// fails; configure the fields before use.
type Writer struct {
	Query     SupportQuery
	Image     ImageWriter
	Text      TextWriter
	Converter imaging.RasterConverter
	Logger    *log.Logger
}

// CopyImage normalizes src, optionally tags it with fields, and writes it.
//
// Structural errors (a malformed data URL, a corrupt PNG) are returned
// immediately without touching the clipboard. Clipboard failures are absorbed
// by the fallback chain; when it is exhausted the first image-write error is
// returned with OutcomeFailed.
func (w *Writer) CopyImage(ctx context.Context, src imaging.Source, fields []pngtext.Field) (Outcome, error) {
	img, err := imaging.Normalize(src)
	if err != nil {
		return OutcomeFailed, err
	}

	var writeErr error
	if pngtext.HasValues(fields) {
		tagged, err := w.tag(img, fields)
		var fe *pngtext.FormatError
		switch {
		case errors.As(err, &fe):
			return OutcomeFailed, err
		case err != nil:
			writeErr = err
		default:
			writeErr = w.write(ctx, tagged)
		}
	} else {
		writeErr = w.writeNegotiated(ctx, img)
	}

	if writeErr == nil {
		return OutcomeImage, nil
	}
	return w.degrade(ctx, src, writeErr)
}

// tag converts img to PNG when needed and injects the text fields.
func (w *Writer) tag(img imaging.RasterImage, fields []pngtext.Field) (imaging.RasterImage, error) {
	if !img.IsPNG() {
		converted, err := w.converter().ConvertToPNG(img)
		if err != nil {
			return imaging.RasterImage{}, fmt.Errorf("failed to convert %s to PNG: %w", img.MIME, err)
		}
		img = converted
	}

	data, err := pngtext.InjectText(img.Data, fields)
	if err != nil {
		return imaging.RasterImage{}, err
	}
	img.Data = data
	return img, nil
}

// writeNegotiated writes img as is when supported, otherwise as PNG. When
// the direct write was rejected, its error is the one returned if the PNG
// retry fails as well; the retry error is only logged.
func (w *Writer) writeNegotiated(ctx context.Context, img imaging.RasterImage) error {
	var firstErr error
	if w.supports(img.MIME) {
		err := w.write(ctx, img)
		if err == nil {
			return nil
		}
		if !IsRejection(err) {
			return err
		}
		w.logger().Printf("warning: clipboard rejected %s, retrying as PNG: %v", img.MIME, err)
		firstErr = err
	}

	converted, err := w.converter().ConvertToPNG(img)
	if err != nil {
		err = fmt.Errorf("failed to convert %s to PNG: %w", img.MIME, err)
		if firstErr != nil {
			w.logger().Printf("warning: %v", err)
			return firstErr
		}
		return err
	}
	if err := w.write(ctx, converted); err != nil {
		if firstErr != nil {
			w.logger().Printf("warning: PNG retry failed: %v", err)
			return firstErr
		}
		return err
	}
	return nil
}

// supports asks the query capability, assuming support when it is missing
// or fails.
func (w *Writer) supports(mime string) bool {
	if w.Query == nil {
		return true
	}
	ok, err := w.Query.Supports(mime)
	if err != nil {
		return true
	}
	return ok
}

func (w *Writer) write(ctx context.Context, img imaging.RasterImage) error {
	if w.Image == nil {
		return ErrNoImageWriter
	}
	return w.Image.WriteImage(ctx, Item{MIME: img.MIME, Data: img.Data})
}

// degrade copies the source as text, or returns cause if that is impossible.
func (w *Writer) degrade(ctx context.Context, src imaging.Source, cause error) (Outcome, error) {
	if w.Text == nil {
		return OutcomeFailed, cause
	}
	if err := w.Text.WriteText(ctx, src.String()); err != nil {
		w.logger().Printf("warning: text fallback failed: %v", err)
		return OutcomeFailed, cause
	}
	w.logger().Printf("warning: image copy failed, copied as text instead: %v", cause)
	return OutcomeText, nil
}

func (w *Writer) converter() imaging.RasterConverter {
	if w.Converter == nil {
		return imaging.ImagingConverter{}
	}
	return w.Converter
}

func (w *Writer) logger() *log.Logger {
	if w.Logger == nil {
		return log.Default()
	}
	return w.Logger
}
