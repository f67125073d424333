package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-export-mcp/internal/clipboard"
	"github.com/ironsheep/image-export-mcp/internal/imaging"
	"github.com/ironsheep/image-export-mcp/internal/pngtext"
)

func TestMetadataFromFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []pngtext.Field
	}{
		{
			name: "none",
			args: nil,
			want: nil,
		},
		{
			name: "meta only",
			args: []string{"--meta", "b=2", "--meta", "a=1"},
			want: []pngtext.Field{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}},
		},
		{
			name: "provenance first",
			args: []string{"--tool", "Painter", "--cost", "0.5", "--duration", "2s", "-m", "Prompt=fox"},
			want: []pngtext.Field{
				{Key: "Tool", Value: "Painter"},
				{Key: "PainterModel", Value: ""},
				{Key: "Cost", Value: "0.5000"},
				{Key: "Duration", Value: "2.00"},
				{Key: "Prompt", Value: "fox"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			addMetadataFlags(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags failed: %v", err)
			}

			got := metadataFromFlags(cmd)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("field %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSourceFromArg(t *testing.T) {
	cmd := &cobra.Command{}
	addSourceFlags(cmd)
	if err := cmd.ParseFlags([]string{"--mime", "image/webp"}); err != nil {
		t.Fatal(err)
	}

	src, err := sourceFromArg(cmd, "/tmp/a.png")
	if err != nil {
		t.Fatalf("sourceFromArg failed: %v", err)
	}
	if src.URL != "/tmp/a.png" || src.MIME != "image/webp" {
		t.Errorf("path source: got %+v", src)
	}

	cmd.SetIn(strings.NewReader("raw-bytes"))
	src, err = sourceFromArg(cmd, "-")
	if err != nil {
		t.Fatalf("sourceFromArg(-) failed: %v", err)
	}
	if string(src.Data) != "raw-bytes" || src.URL != "" {
		t.Errorf("stdin source: got %+v", src)
	}
}

func TestPipelineList(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"pipeline", "--list", "--no-raster"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	want := "green-screen-to-alpha\nfeather-alpha\ntrim-transparent\n"
	if out.String() != want {
		t.Errorf("output: got %q, want %q", out.String(), want)
	}
}

func TestServerClipboard_NoTerminalFallback(t *testing.T) {
	cb, err := serverClipboard()
	if err == nil {
		t.Skip("system clipboard available; text goes to it")
	}
	if cb.Text != nil {
		t.Errorf("server mode must not fall back to a terminal text writer, got %T", cb.Text)
	}

	outcome, err := cb.CopyImage(context.Background(), imaging.Source{Data: []byte("\x89PNG\r\n\x1a\n")}, nil)
	if outcome.Success() || err == nil {
		t.Errorf("CopyImage: got outcome %s, err %v; want a reported failure", outcome, err)
	}
}

func TestTerminalClipboard(t *testing.T) {
	if _, ok := terminalClipboard().(clipboard.OSC52); !ok {
		t.Errorf("terminal fallback: got %T, want clipboard.OSC52", terminalClipboard())
	}
}
