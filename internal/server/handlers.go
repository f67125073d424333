package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ironsheep/image-export-mcp/internal/imaging"
	"github.com/ironsheep/image-export-mcp/internal/pipeline"
	"github.com/ironsheep/image-export-mcp/internal/pngtext"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_copy", "image_chroma_key").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(context.Background(), params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Normalizes the referenced image (path or data URL)
//  3. Calls the appropriate imaging/pipeline/pngtext/clipboard function
//  4. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_copy":
		return s.handleImageCopy(ctx, args)
	case "image_tag_metadata":
		return s.handleImageTagMetadata(args)
	case "image_read_metadata":
		return s.handleImageReadMetadata(args)
	case "image_chroma_key":
		return s.handleImageChromaKey(ctx, args)
	case "image_apply_pipeline":
		return s.handleImageApplyPipeline(ctx, args)
	case "image_list_steps":
		return s.handleImageListSteps()
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// imageRef is embedded by every tool that reads an image.
type imageRef struct {
	Path    string `json:"path,omitempty"`
	DataURL string `json:"data_url,omitempty"`
	Mime    string `json:"mime_type,omitempty"`
}

func (r imageRef) source() (imaging.Source, error) {
	switch {
	case r.Path != "" && r.DataURL != "":
		return imaging.Source{}, errors.New("pass either path or data_url, not both")
	case r.Path != "":
		return imaging.Source{URL: r.Path, MIME: r.Mime}, nil
	case r.DataURL != "":
		return imaging.Source{URL: r.DataURL, MIME: r.Mime}, nil
	default:
		return imaging.Source{}, errors.New("path or data_url is required")
	}
}

func (r imageRef) load() (imaging.Source, imaging.RasterImage, error) {
	src, err := r.source()
	if err != nil {
		return src, imaging.RasterImage{}, err
	}
	img, err := imaging.Normalize(src)
	return src, img, err
}

// ImageResult carries a produced image, inline or written to disk.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	MimeType    string `json:"mime_type"`
	ImageBase64 string `json:"image_base64,omitempty"`
	OutputPath  string `json:"output_path,omitempty"`
	SizeBytes   int    `json:"size_bytes"`
}

// emit returns img inline, or writes it to outputPath when one is given.
func emit(img imaging.RasterImage, outputPath string) (*ImageResult, error) {
	res := &ImageResult{
		Width:     img.Width,
		Height:    img.Height,
		MimeType:  img.MIME,
		SizeBytes: len(img.Data),
	}
	if outputPath != "" {
		if err := os.WriteFile(outputPath, img.Data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
		res.OutputPath = outputPath
		return res, nil
	}
	res.ImageBase64 = base64.StdEncoding.EncodeToString(img.Data)
	return res, nil
}

// provenanceArgs describes how an image was generated.
type provenanceArgs struct {
	Tool       string  `json:"tool"`
	Model      string  `json:"model"`
	Cost       float64 `json:"cost"`
	DurationMs int64   `json:"duration_ms"`
}

// metadataFields merges provenance fields (first) with free-form metadata.
func metadataFields(prov *provenanceArgs, metadata map[string]string) []pngtext.Field {
	var fields []pngtext.Field
	if prov != nil {
		fields = append(fields, pngtext.Provenance{
			Tool:     prov.Tool,
			Model:    prov.Model,
			Cost:     prov.Cost,
			Duration: time.Duration(prov.DurationMs) * time.Millisecond,
		}.Fields()...)
	}
	return append(fields, pngtext.FieldsFromMap(metadata)...)
}

// === Image Information ===

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageRef
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	return imaging.Describe(src)
}

// === Clipboard Export ===

type imageCopyArgs struct {
	imageRef
	Metadata   map[string]string `json:"metadata,omitempty"`
	Provenance *provenanceArgs   `json:"provenance,omitempty"`
	Steps      []string          `json:"steps,omitempty"`
}

// CopyResult reports the clipboard outcome of image_copy.
type CopyResult struct {
	Success bool     `json:"success"`
	Outcome string   `json:"outcome"`
	Applied []string `json:"applied_steps,omitempty"`
	Skipped []string `json:"skipped_steps,omitempty"`
	Failed  []string `json:"failed_steps,omitempty"`
}

func (s *Server) handleImageCopy(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageCopyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.clipboard == nil {
		return nil, errors.New("no clipboard available")
	}

	src, err := a.source()
	if err != nil {
		return nil, err
	}

	res := &CopyResult{}
	if len(a.Steps) > 0 {
		img, err := imaging.Normalize(src)
		if err != nil {
			return nil, err
		}
		out, report := s.pipeline.Run(ctx, img, a.Steps)
		res.Applied, res.Skipped, res.Failed = report.Applied, report.Skipped, report.FailedSteps()
		if len(report.Applied) > 0 {
			src = imaging.Source{Data: out.Data, MIME: out.MIME}
		}
	}

	outcome, err := s.clipboard.CopyImage(ctx, src, metadataFields(a.Provenance, a.Metadata))
	if err != nil {
		return nil, err
	}
	res.Success = outcome.Success()
	res.Outcome = outcome.String()
	return res, nil
}

// === Metadata ===

type imageTagMetadataArgs struct {
	imageRef
	Metadata   map[string]string `json:"metadata,omitempty"`
	Provenance *provenanceArgs   `json:"provenance,omitempty"`
	Compress   bool              `json:"compress,omitempty"`
	OutputPath string            `json:"output_path,omitempty"`
}

func (s *Server) handleImageTagMetadata(args json.RawMessage) (interface{}, error) {
	var a imageTagMetadataArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	_, img, err := a.load()
	if err != nil {
		return nil, err
	}
	if !img.IsPNG() {
		if img, err = s.converter.ConvertToPNG(img); err != nil {
			return nil, err
		}
	}

	inject := pngtext.InjectText
	if a.Compress {
		inject = pngtext.InjectCompressedText
	}
	data, err := inject(img.Data, metadataFields(a.Provenance, a.Metadata))
	if err != nil {
		return nil, err
	}
	img.Data = data
	return emit(img, a.OutputPath)
}

// MetadataResult lists the text fields of a PNG.
type MetadataResult struct {
	Fields []pngtext.Field `json:"fields"`
}

func (s *Server) handleImageReadMetadata(args json.RawMessage) (interface{}, error) {
	var a imageRef
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	_, img, err := a.load()
	if err != nil {
		return nil, err
	}
	if !img.IsPNG() {
		return &MetadataResult{Fields: []pngtext.Field{}}, nil
	}
	fields, err := pngtext.ReadText(img.Data)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = []pngtext.Field{}
	}
	return &MetadataResult{Fields: fields}, nil
}

// === Post-Processing ===

type imageChromaKeyArgs struct {
	imageRef
	KeyColor   string          `json:"key_color,omitempty"`
	Params     json.RawMessage `json:"params,omitempty"`
	OutputPath string          `json:"output_path,omitempty"`
}

func (s *Server) handleImageChromaKey(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageChromaKeyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	params := s.chromaKey
	if len(a.Params) > 0 {
		if err := json.Unmarshal(a.Params, &params); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}
	if a.KeyColor != "" {
		key, err := imaging.ParseKeyColor(a.KeyColor)
		if err != nil {
			return nil, err
		}
		params.Key = &key
	}

	_, img, err := a.load()
	if err != nil {
		return nil, err
	}
	out, err := imaging.ChromaKeyToAlpha(ctx, s.surface, img, params)
	if errors.Is(err, imaging.ErrNoSurface) {
		s.logger.Printf("warning: chroma key skipped: %v", err)
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return emit(out, a.OutputPath)
}

type imageApplyPipelineArgs struct {
	imageRef
	Steps      []string `json:"steps"`
	OutputPath string   `json:"output_path,omitempty"`
}

// PipelineResult is the output of image_apply_pipeline.
type PipelineResult struct {
	ImageResult
	Applied []string `json:"applied_steps"`
	Skipped []string `json:"skipped_steps,omitempty"`
	Failed  []string `json:"failed_steps,omitempty"`
}

func (s *Server) handleImageApplyPipeline(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageApplyPipelineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	_, img, err := a.load()
	if err != nil {
		return nil, err
	}

	out, report := s.pipeline.Run(ctx, img, a.Steps)
	res, err := emit(out, a.OutputPath)
	if err != nil {
		return nil, err
	}
	applied := report.Applied
	if applied == nil {
		applied = []string{}
	}
	return &PipelineResult{
		ImageResult: *res,
		Applied:     applied,
		Skipped:     report.Skipped,
		Failed:      report.FailedSteps(),
	}, nil
}

// StepsResult lists the available pipeline steps.
type StepsResult struct {
	Steps []string `json:"steps"`
}

func (s *Server) handleImageListSteps() (interface{}, error) {
	kinds := pipeline.Steps()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return &StepsResult{Steps: names}, nil
}
