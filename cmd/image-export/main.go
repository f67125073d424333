package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-export-mcp/internal/clipboard"
	"github.com/ironsheep/image-export-mcp/internal/imaging"
	"github.com/ironsheep/image-export-mcp/internal/pipeline"
	"github.com/ironsheep/image-export-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "image-export",
	Short: "MCP server and CLI for exporting generated images to the clipboard",
	Long: `image-export prepares generated images for the clipboard: it embeds
provenance metadata as PNG text chunks, removes green-screen backgrounds
and copies the result, degrading to PNG and then to text when the
clipboard refuses a format.

Without a subcommand it serves MCP over stdin/stdout.

Environment variables:
  IMAGE_EXPORT_LOG_LEVEL=debug    Enable debug logging
  IMAGE_EXPORT_KEY_COLOR=#00ff66  Fixed chroma key color (default: sampled)
  IMAGE_EXPORT_NO_RASTER=1        Disable rasterization (filters pass through)`,
	Version:           fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runServer,
}

func init() {
	rootCmd.PersistentFlags().String("key-color", os.Getenv("IMAGE_EXPORT_KEY_COLOR"), "Fixed chroma key color as hex; empty samples the image border")
	rootCmd.PersistentFlags().Bool("no-raster", os.Getenv("IMAGE_EXPORT_NO_RASTER") == "1", "Disable rasterization; filters pass images through")
	rootCmd.PersistentFlags().Float64("feather-radius", pipeline.DefaultFeatherRadius, "Gaussian radius of the feather-alpha step")
}

// env is the configuration shared by every command.
type env struct {
	surface       imaging.Surface
	converter     imaging.RasterConverter
	chromaKey     imaging.ChromaKeyParams
	featherRadius float64
	debug         bool
}

var cfg env

// setup configures logging and resolves flags and environment into cfg.
func setup(cmd *cobra.Command, args []string) error {
	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	cfg.debug = os.Getenv("IMAGE_EXPORT_LOG_LEVEL") == "debug"

	noRaster, _ := cmd.Flags().GetBool("no-raster")
	keyColor, _ := cmd.Flags().GetString("key-color")
	cfg.featherRadius, _ = cmd.Flags().GetFloat64("feather-radius")

	cfg.surface = imaging.DetectSurface(noRaster)
	cfg.converter = imaging.DetectConverter(cfg.surface)
	cfg.chromaKey = imaging.DefaultChromaKeyParams()
	if keyColor != "" {
		key, err := imaging.ParseKeyColor(keyColor)
		if err != nil {
			return fmt.Errorf("invalid key color: %w", err)
		}
		cfg.chromaKey.Key = &key
	}

	debugf("surface enabled: %t, key color: %s", cfg.surface != nil, keyDescription(cfg.chromaKey))
	return nil
}

func keyDescription(p imaging.ChromaKeyParams) string {
	if p.Key == nil {
		return "sampled"
	}
	return p.Key.Hex()
}

func debugf(format string, args ...interface{}) {
	if cfg.debug {
		log.Printf(format, args...)
	}
}

func newPipeline() *pipeline.Registry {
	return pipeline.New(pipeline.Options{
		Surface:       cfg.surface,
		ChromaKey:     &cfg.chromaKey,
		FeatherRadius: cfg.featherRadius,
	})
}

func runServer(cmd *cobra.Command, args []string) error {
	server.Version = Version
	debugf("Image Export MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)

	cb, err := serverClipboard()
	if err != nil {
		log.Printf("warning: %v; image_copy will fail", err)
	}

	srv := server.New(server.Options{
		Clipboard:     cb,
		Surface:       cfg.surface,
		ChromaKey:     &cfg.chromaKey,
		FeatherRadius: cfg.featherRadius,
	})
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// serverClipboard is the clipboard used in server mode. stderr is the log
// stream there, so there is no terminal text fallback: without a system
// clipboard image_copy reports a failure.
func serverClipboard() (*clipboard.Writer, error) {
	return detectClipboard(nil)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
