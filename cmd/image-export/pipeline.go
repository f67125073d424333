package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-export-mcp/internal/imaging"
	"github.com/ironsheep/image-export-mcp/internal/pipeline"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline [file|data-url|-]",
	Short: "Run post-processing steps over an image",
	Long: `Run post-processing steps over an image, in order.

Unknown and failing steps are skipped with a warning; the output is the
image after the last step that succeeded. Use --list to print the step names.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if list, _ := cmd.Flags().GetBool("list"); list {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runPipeline,
}

func init() {
	addSourceFlags(pipelineCmd)
	pipelineCmd.Flags().StringP("output", "o", "", "Output PNG file (default stdout)")
	pipelineCmd.Flags().StringSliceP("steps", "s", []string{pipeline.ChromaKeyToAlpha.String()}, "Steps to run")
	pipelineCmd.Flags().Bool("list", false, "List available steps and exit")
	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list"); list {
		for _, k := range pipeline.Steps() {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	}

	outputPath, _ := cmd.Flags().GetString("output")
	steps, _ := cmd.Flags().GetStringSlice("steps")

	src, err := sourceFromArg(cmd, args[0])
	if err != nil {
		return err
	}
	img, err := imaging.Normalize(src)
	if err != nil {
		return err
	}

	out, report := newPipeline().Run(context.Background(), img, steps)
	debugf("pipeline applied [%s]", strings.Join(report.Applied, ", "))
	return writeOutput(cmd, outputPath, out)
}
