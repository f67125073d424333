package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-export-mcp/internal/clipboard"
	"github.com/ironsheep/image-export-mcp/internal/imaging"
	"github.com/ironsheep/image-export-mcp/internal/pngtext"
)

// sourceFromArg maps a command argument to an image source: "-" reads
// stdin, anything else is a path, file:// URL or data URL.
func sourceFromArg(cmd *cobra.Command, arg string) (imaging.Source, error) {
	mime, _ := cmd.Flags().GetString("mime")
	if arg != "-" {
		return imaging.Source{URL: arg, MIME: mime}, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return imaging.Source{}, fmt.Errorf("reading stdin: %w", err)
	}
	return imaging.Source{Data: data, MIME: mime}, nil
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("mime", "", "Explicit MIME type of the input, overriding detection")
}

func addMetadataFlags(cmd *cobra.Command) {
	cmd.Flags().StringToStringP("meta", "m", nil, "Metadata field as key=value (repeatable)")
	cmd.Flags().String("tool", "", "Provenance: generating tool id")
	cmd.Flags().String("model", "", "Provenance: model id")
	cmd.Flags().Float64("cost", 0, "Provenance: cost in USD")
	cmd.Flags().Duration("duration", 0, "Provenance: generation time (e.g. 12.5s)")
}

// metadataFromFlags returns provenance fields followed by --meta fields.
func metadataFromFlags(cmd *cobra.Command) []pngtext.Field {
	meta, _ := cmd.Flags().GetStringToString("meta")
	tool, _ := cmd.Flags().GetString("tool")
	model, _ := cmd.Flags().GetString("model")
	cost, _ := cmd.Flags().GetFloat64("cost")
	duration, _ := cmd.Flags().GetDuration("duration")

	var fields []pngtext.Field
	if tool != "" || model != "" || cost > 0 || duration > 0 {
		fields = pngtext.Provenance{Tool: tool, Model: model, Cost: cost, Duration: duration}.Fields()
	}
	return append(fields, pngtext.FieldsFromMap(meta)...)
}

// writeOutput writes img to path, or to stdout when path is "" or "-".
func writeOutput(cmd *cobra.Command, path string, img imaging.RasterImage) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(img.Data)
		return err
	}
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	debugf("wrote %dx%d %s (%d bytes) to %s", img.Width, img.Height, img.MIME, len(img.Data), path)
	return nil
}

// detectClipboard returns a clipboard writer. Without a system clipboard,
// text goes to fallback, which may be nil.
func detectClipboard(fallback clipboard.TextWriter) (*clipboard.Writer, error) {
	return clipboard.Detect(cfg.converter, fallback)
}

// terminalClipboard copies text through the terminal with OSC 52. It is
// only usable when stderr is an interactive terminal, never in server mode
// where stderr carries the log.
func terminalClipboard() clipboard.TextWriter {
	return clipboard.OSC52{Out: os.Stderr}
}
