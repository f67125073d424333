package main

import (
	"context"
	"errors"
	"log"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-export-mcp/internal/imaging"
)

var keyCmd = &cobra.Command{
	Use:   "key [file|data-url|-]",
	Short: "Replace a green-screen background with transparency",
	Args:  cobra.ExactArgs(1),
	RunE:  runKey,
}

func init() {
	addSourceFlags(keyCmd)
	keyCmd.Flags().StringP("output", "o", "", "Output PNG file (default stdout)")
	keyCmd.Flags().Float64("hard-distance", 0, "Override the hard removal distance")
	keyCmd.Flags().Float64("soft-distance", 0, "Override the soft fade distance")
	rootCmd.AddCommand(keyCmd)
}

func runKey(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")

	params := cfg.chromaKey
	if cmd.Flags().Changed("hard-distance") {
		params.HardDistance, _ = cmd.Flags().GetFloat64("hard-distance")
	}
	if cmd.Flags().Changed("soft-distance") {
		params.SoftDistance, _ = cmd.Flags().GetFloat64("soft-distance")
	}

	src, err := sourceFromArg(cmd, args[0])
	if err != nil {
		return err
	}
	img, err := imaging.Normalize(src)
	if err != nil {
		return err
	}
	out, err := imaging.ChromaKeyToAlpha(context.Background(), cfg.surface, img, params)
	if errors.Is(err, imaging.ErrNoSurface) {
		log.Printf("warning: chroma key skipped: %v", err)
		err = nil
	}
	if err != nil {
		return err
	}
	return writeOutput(cmd, outputPath, out)
}
