package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-export-mcp/internal/imaging"
	"github.com/ironsheep/image-export-mcp/internal/pngtext"
)

var tagCmd = &cobra.Command{
	Use:   "tag [file|data-url|-]",
	Short: "Embed metadata into a PNG as text chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runTag,
}

func init() {
	addSourceFlags(tagCmd)
	addMetadataFlags(tagCmd)
	tagCmd.Flags().StringP("output", "o", "", "Output PNG file (default stdout)")
	tagCmd.Flags().Bool("compress", false, "Write zTXt (zlib-compressed) chunks")
	rootCmd.AddCommand(tagCmd)
}

func runTag(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	compress, _ := cmd.Flags().GetBool("compress")

	src, err := sourceFromArg(cmd, args[0])
	if err != nil {
		return err
	}
	img, err := imaging.Normalize(src)
	if err != nil {
		return err
	}
	if !img.IsPNG() {
		if img, err = cfg.converter.ConvertToPNG(img); err != nil {
			return fmt.Errorf("converting to PNG: %w", err)
		}
	}

	inject := pngtext.InjectText
	if compress {
		inject = pngtext.InjectCompressedText
	}
	if img.Data, err = inject(img.Data, metadataFromFlags(cmd)); err != nil {
		return err
	}
	return writeOutput(cmd, outputPath, img)
}
