package clipboard

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	sysclip "golang.design/x/clipboard"

	"github.com/ironsheep/image-export-mcp/internal/imaging"
)

// System is the operating system clipboard. It accepts PNG images and text.
type System struct{}

var (
	_ SupportQuery = (*System)(nil)
	_ ImageWriter  = (*System)(nil)
	_ TextWriter   = (*System)(nil)
	_ TextWriter   = OSC52{}
)

// NewSystem initializes the platform clipboard. It fails on headless hosts
// (no display server) and in binaries built without cgo.
func NewSystem() (*System, error) {
	if err := sysclip.Init(); err != nil {
		return nil, fmt.Errorf("system clipboard unavailable: %w", err)
	}
	return &System{}, nil
}

// Supports implements SupportQuery.
func (s *System) Supports(mime string) (bool, error) {
	return mime == imaging.MIMEPNG, nil
}

// WriteImage implements ImageWriter. The first PNG item is written; other
// types are rejected.
func (s *System) WriteImage(ctx context.Context, items ...Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, it := range items {
		if it.MIME == imaging.MIMEPNG {
			sysclip.Write(sysclip.FmtImage, it.Data)
			return nil
		}
	}
	mime := "empty payload"
	if len(items) > 0 {
		mime = items[0].MIME
	}
	return &RejectedError{MIME: mime, Reason: "type not supported, only image/png"}
}

// WriteText implements TextWriter.
func (s *System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sysclip.Write(sysclip.FmtText, []byte(text))
	return nil
}

// OSC52 copies text through the terminal using the OSC 52 escape sequence.
// It works over SSH where no local clipboard exists.
type OSC52 struct {
	Out io.Writer
}

// WriteText implements TextWriter.
func (o OSC52) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	_, err := fmt.Fprintf(o.Out, "\u001b]52;c;%s\u0007", encoded)
	return err
}

// Detect builds a Writer around the system clipboard. When it cannot be
// initialized, only fallback (which may be nil) is used for text.
func Detect(converter imaging.RasterConverter, fallback TextWriter) (*Writer, error) {
	w := &Writer{Converter: converter}
	sys, err := NewSystem()
	if err != nil {
		w.Text = fallback
		return w, err
	}
	w.Query, w.Image, w.Text = sys, sys, sys
	return w, nil
}
