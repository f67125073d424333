package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-export-mcp/internal/imaging"
)

var copyCmd = &cobra.Command{
	Use:   "copy [file|data-url|-]",
	Short: "Tag, post-process and copy an image to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE:  runCopy,
}

func init() {
	addSourceFlags(copyCmd)
	addMetadataFlags(copyCmd)
	copyCmd.Flags().StringSlice("steps", nil, "Post-processing steps to run before copying")
	rootCmd.AddCommand(copyCmd)
}

func runCopy(cmd *cobra.Command, args []string) error {
	src, err := sourceFromArg(cmd, args[0])
	if err != nil {
		return err
	}
	ctx := context.Background()

	steps, _ := cmd.Flags().GetStringSlice("steps")
	if len(steps) > 0 {
		img, err := imaging.Normalize(src)
		if err != nil {
			return err
		}
		out, report := newPipeline().Run(ctx, img, steps)
		debugf("pipeline applied %v, skipped %v, failed %v", report.Applied, report.Skipped, report.FailedSteps())
		if len(report.Applied) > 0 {
			src = imaging.Source{Data: out.Data, MIME: out.MIME}
		}
	}

	cb, err := detectClipboard(terminalClipboard())
	if err != nil {
		debugf("system clipboard unavailable: %v", err)
	}
	outcome, err := cb.CopyImage(ctx, src, metadataFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "copied as %s\n", outcome)
	return nil
}
