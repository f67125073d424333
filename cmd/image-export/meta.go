package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-export-mcp/internal/imaging"
	"github.com/ironsheep/image-export-mcp/internal/pngtext"
)

var metaCmd = &cobra.Command{
	Use:   "meta [file|data-url|-]",
	Short: "Inspect an image and its embedded text metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runMeta,
}

func init() {
	addSourceFlags(metaCmd)
	metaCmd.Flags().Bool("chunks", false, "Also list every PNG chunk")
	rootCmd.AddCommand(metaCmd)
}

func runMeta(cmd *cobra.Command, args []string) error {
	showChunks, _ := cmd.Flags().GetBool("chunks")
	out := cmd.OutOrStdout()

	src, err := sourceFromArg(cmd, args[0])
	if err != nil {
		return err
	}
	img, err := imaging.Normalize(src)
	if err != nil {
		return err
	}
	info, err := imaging.Describe(imaging.Source{Data: img.Data, MIME: img.MIME})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Dimensions: %d x %d\n", info.Width, info.Height)
	fmt.Fprintf(out, "Type:       %s\n", info.MimeType)
	fmt.Fprintf(out, "Depth:      %s\n", info.ColorDepth)
	fmt.Fprintf(out, "Alpha:      %t\n", info.HasAlpha)
	fmt.Fprintf(out, "File size:  %d bytes\n", info.SizeBytes)

	if !img.IsPNG() {
		return nil
	}

	fields, err := pngtext.ReadText(img.Data)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		fmt.Fprintln(out, "Metadata:   none")
	} else {
		fmt.Fprintln(out, "Metadata:")
		for _, f := range fields {
			fmt.Fprintf(out, "  %s: %s\n", f.Key, f.Value)
		}
	}

	if showChunks {
		chunks, err := pngtext.Chunks(img.Data)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Chunks:")
		for _, c := range chunks {
			fmt.Fprintf(out, "  %s\n", c)
		}
	}
	return nil
}
