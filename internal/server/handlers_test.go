package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/image-export-mcp/internal/clipboard"
	"github.com/ironsheep/image-export-mcp/internal/imaging"
	"github.com/ironsheep/image-export-mcp/internal/pngtext"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "handler-test.png")
	if err := os.WriteFile(path, encodeTestPNG(t, width, height, c), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

func encodeTestPNG(t *testing.T, width, height int, c color.Color) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

// recordingClipboard accepts every image and text write.
type recordingClipboard struct {
	items []clipboard.Item
	text  string
}

func (c *recordingClipboard) WriteImage(ctx context.Context, items ...clipboard.Item) error {
	c.items = append(c.items, items...)
	return nil
}

func (c *recordingClipboard) WriteText(ctx context.Context, text string) error {
	c.text = text
	return nil
}

func newTestServer(cb *recordingClipboard) *Server {
	opts := Options{Surface: imaging.DrawSurface{}}
	if cb != nil {
		opts.Clipboard = &clipboard.Writer{Image: cb, Text: cb}
	}
	return New(opts)
}

// callTool runs a tools/call request and decodes the JSON text content into out.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) *MCPResponse {
	t.Helper()

	paramsJSON, _ := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil || out == nil {
		return resp
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
		t.Fatalf("failed to decode tool result: %v", err)
	}
	return resp
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := newTestServer(nil)
	imgPath := createTestImageFile(t, 100, 80, color.NRGBA{255, 0, 0, 255})

	var info imaging.ImageInfo
	resp := callTool(t, s, "image_load", map[string]interface{}{"path": imgPath}, &info)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if info.Width != 100 || info.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", info.Width, info.Height)
	}
	if info.MimeType != "image/png" {
		t.Errorf("mime_type: got %s, want image/png", info.MimeType)
	}
}

func TestHandleToolsCall_ImageLoadDataURL(t *testing.T) {
	s := newTestServer(nil)
	data := encodeTestPNG(t, 12, 7, color.White)
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	var info imaging.ImageInfo
	resp := callTool(t, s, "image_load", map[string]interface{}{"data_url": url}, &info)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if info.Width != 12 || info.Height != 7 {
		t.Errorf("dimensions: got %dx%d, want 12x7", info.Width, info.Height)
	}
}

func TestHandleToolsCall_SourceArguments(t *testing.T) {
	s := newTestServer(nil)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing", map[string]interface{}{}},
		{"both", map[string]interface{}{"path": "/a.png", "data_url": "data:image/png;base64,AA=="}},
		{"nonexistent file", map[string]interface{}{"path": "/nonexistent/image.png"}},
		{"malformed data url", map[string]interface{}{"data_url": "data:image/png;base64"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "image_load", tt.args, nil)
			if resp.Error == nil {
				t.Fatal("expected error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := newTestServer(nil)

	resp := callTool(t, s, "nonexistent_tool", map[string]interface{}{}, nil)
	if resp.Error == nil {
		t.Fatal("Expected error for unknown tool")
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(nil)
	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`{invalid`),
	})

	if resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestHandleToolsCall_ImageCopy(t *testing.T) {
	cb := &recordingClipboard{}
	s := newTestServer(cb)
	imgPath := createTestImageFile(t, 20, 20, color.NRGBA{10, 20, 30, 255})

	var res CopyResult
	resp := callTool(t, s, "image_copy", map[string]interface{}{
		"path":     imgPath,
		"metadata": map[string]string{"Prompt": "a red fox", "Seed": ""},
		"provenance": map[string]interface{}{
			"tool":        "Painter",
			"model":       "v2",
			"cost":        0.04,
			"duration_ms": 1500,
		},
	}, &res)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if !res.Success || res.Outcome != "image" {
		t.Fatalf("outcome: got %+v, want image success", res)
	}
	if len(cb.items) != 1 || cb.items[0].MIME != "image/png" {
		t.Fatalf("clipboard items: got %+v, want one PNG", cb.items)
	}

	fields, err := pngtext.ReadText(cb.items[0].Data)
	if err != nil {
		t.Fatalf("ReadText failed: %v", err)
	}
	got := map[string]string{}
	for _, f := range fields {
		got[f.Key] = f.Value
	}
	want := map[string]string{
		"Tool":         "Painter",
		"PainterModel": "v2",
		"Cost":         "0.0400",
		"Duration":     "1.50",
		"Prompt":       "a red fox",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("field %s: got %q, want %q", k, got[k], v)
		}
	}
	if _, ok := got["Seed"]; ok {
		t.Error("blank field Seed should be dropped")
	}
}

func TestHandleToolsCall_ImageCopyWithSteps(t *testing.T) {
	cb := &recordingClipboard{}
	s := newTestServer(cb)
	imgPath := createTestImageFile(t, 40, 40, color.NRGBA{0, 255, 102, 255})

	var res CopyResult
	resp := callTool(t, s, "image_copy", map[string]interface{}{
		"path":  imgPath,
		"steps": []string{"green-screen-to-alpha", "bogus"},
	}, &res)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if len(res.Applied) != 1 || res.Applied[0] != "green-screen-to-alpha" {
		t.Errorf("applied: got %v", res.Applied)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "bogus" {
		t.Errorf("skipped: got %v", res.Skipped)
	}
	if len(cb.items) != 1 {
		t.Fatalf("clipboard items: got %d, want 1", len(cb.items))
	}

	px, err := png.Decode(bytes.NewReader(cb.items[0].Data))
	if err != nil {
		t.Fatalf("failed to decode clipboard PNG: %v", err)
	}
	if _, _, _, a := px.At(20, 20).RGBA(); a != 0 {
		t.Errorf("keyed pixel alpha: got %d, want 0", a)
	}
}

func TestHandleToolsCall_ImageCopyNoClipboard(t *testing.T) {
	s := newTestServer(nil)
	imgPath := createTestImageFile(t, 4, 4, color.White)

	resp := callTool(t, s, "image_copy", map[string]interface{}{"path": imgPath}, nil)
	if resp.Error == nil {
		t.Fatal("expected error without clipboard")
	}
}

func TestHandleToolsCall_TagAndReadMetadata(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "tEXt"
		if compress {
			name = "zTXt"
		}
		t.Run(name, func(t *testing.T) {
			s := newTestServer(nil)
			imgPath := createTestImageFile(t, 8, 8, color.White)
			outPath := filepath.Join(t.TempDir(), "tagged.png")

			var tagged ImageResult
			resp := callTool(t, s, "image_tag_metadata", map[string]interface{}{
				"path":        imgPath,
				"metadata":    map[string]string{"Author": "jo", "Title": "fox"},
				"compress":    compress,
				"output_path": outPath,
			}, &tagged)
			if resp.Error != nil {
				t.Fatalf("Unexpected error: %v", resp.Error)
			}
			if tagged.OutputPath != outPath || tagged.ImageBase64 != "" {
				t.Errorf("result: got %+v, want written to %s", tagged, outPath)
			}

			var meta MetadataResult
			resp = callTool(t, s, "image_read_metadata", map[string]interface{}{"path": outPath}, &meta)
			if resp.Error != nil {
				t.Fatalf("Unexpected error: %v", resp.Error)
			}
			want := []pngtext.Field{{Key: "Author", Value: "jo"}, {Key: "Title", Value: "fox"}}
			if len(meta.Fields) != len(want) {
				t.Fatalf("fields: got %v, want %v", meta.Fields, want)
			}
			for i := range want {
				if meta.Fields[i] != want[i] {
					t.Errorf("field %d: got %v, want %v", i, meta.Fields[i], want[i])
				}
			}
		})
	}
}

func TestHandleToolsCall_ReadMetadataNonPNG(t *testing.T) {
	s := newTestServer(nil)
	url := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF, 0xE0})

	var meta MetadataResult
	resp := callTool(t, s, "image_read_metadata", map[string]interface{}{"data_url": url}, &meta)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if len(meta.Fields) != 0 {
		t.Errorf("fields: got %v, want none", meta.Fields)
	}
}

func TestHandleToolsCall_ChromaKey(t *testing.T) {
	s := newTestServer(nil)
	imgPath := createTestImageFile(t, 30, 30, color.NRGBA{0, 255, 102, 255})

	var res ImageResult
	resp := callTool(t, s, "image_chroma_key", map[string]interface{}{
		"path":      imgPath,
		"key_color": "#00ff66",
		"params":    map[string]interface{}{"hard_distance": 40},
	}, &res)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if res.Width != 30 || res.Height != 30 || res.MimeType != "image/png" {
		t.Errorf("result: got %dx%d %s", res.Width, res.Height, res.MimeType)
	}

	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	px, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if _, _, _, a := px.At(15, 15).RGBA(); a != 0 {
		t.Errorf("alpha: got %d, want 0", a)
	}
}

func TestHandleToolsCall_NoSurfaceWarnsOnServerLogger(t *testing.T) {
	var logs bytes.Buffer
	s := New(Options{Logger: log.New(&logs, "", 0)})
	data := encodeTestPNG(t, 6, 6, color.NRGBA{0, 255, 102, 255})
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	var keyed ImageResult
	resp := callTool(t, s, "image_chroma_key", map[string]interface{}{"data_url": url}, &keyed)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	got, _ := base64.StdEncoding.DecodeString(keyed.ImageBase64)
	if !bytes.Equal(got, data) {
		t.Error("image should pass through without a surface")
	}

	var piped PipelineResult
	resp = callTool(t, s, "image_apply_pipeline", map[string]interface{}{
		"data_url": url,
		"steps":    []string{"feather-alpha"},
	}, &piped)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if len(piped.Skipped) != 1 || piped.Skipped[0] != "feather-alpha" {
		t.Errorf("skipped: got %v, want [feather-alpha]", piped.Skipped)
	}

	for _, want := range []string{"warning: chroma key skipped", "warning: feather-alpha skipped"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("expected %q in server logs, got %q", want, logs.String())
		}
	}
}

func TestHandleToolsCall_ChromaKeyBadArguments(t *testing.T) {
	s := newTestServer(nil)
	imgPath := createTestImageFile(t, 4, 4, color.White)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"bad key color", map[string]interface{}{"path": imgPath, "key_color": "not-a-color"}},
		{"invalid params", map[string]interface{}{"path": imgPath, "params": map[string]interface{}{"distance_fade_range": 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "image_chroma_key", tt.args, nil)
			if resp.Error == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestHandleToolsCall_ApplyPipeline(t *testing.T) {
	s := newTestServer(nil)

	// Green border around an opaque red center
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			c := color.NRGBA{0, 255, 102, 255}
			if x >= 10 && x < 30 && y >= 10 && y < 30 {
				c = color.NRGBA{200, 30, 30, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	var res PipelineResult
	resp := callTool(t, s, "image_apply_pipeline", map[string]interface{}{
		"data_url": url,
		"steps":    []string{"green-screen-to-alpha", "trim-transparent"},
	}, &res)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if len(res.Applied) != 2 {
		t.Errorf("applied: got %v, want both steps", res.Applied)
	}
	if res.Width != 20 || res.Height != 20 {
		t.Errorf("trimmed size: got %dx%d, want 20x20", res.Width, res.Height)
	}
}

func TestHandleToolsCall_ApplyPipelineEmpty(t *testing.T) {
	s := newTestServer(nil)
	data := encodeTestPNG(t, 5, 6, color.White)
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	var res PipelineResult
	resp := callTool(t, s, "image_apply_pipeline", map[string]interface{}{
		"data_url": url,
		"steps":    []string{},
	}, &res)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if len(res.Applied) != 0 {
		t.Errorf("applied: got %v, want none", res.Applied)
	}
	got, _ := base64.StdEncoding.DecodeString(res.ImageBase64)
	if !bytes.Equal(got, data) {
		t.Error("empty pipeline should return the input bytes")
	}
}

func TestExecuteTool_ListSteps(t *testing.T) {
	s := newTestServer(nil)

	result, err := s.executeTool(context.Background(), "image_list_steps", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("executeTool failed: %v", err)
	}
	steps := result.(*StepsResult).Steps
	want := []string{"green-screen-to-alpha", "feather-alpha", "trim-transparent"}
	if len(steps) != len(want) {
		t.Fatalf("steps: got %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("step %d: got %s, want %s", i, steps[i], want[i])
		}
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := newTestServer(nil)

	_, err := s.executeTool(context.Background(), "unknown_tool", json.RawMessage(`{}`))
	if err == nil {
		t.Error("executeTool should fail for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := newTestServer(nil)

	_, err := s.executeTool(context.Background(), "image_load", json.RawMessage(`{invalid`))
	if err == nil {
		t.Error("executeTool should fail for invalid JSON")
	}
}
