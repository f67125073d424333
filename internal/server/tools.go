package server

import "github.com/ironsheep/image-export-mcp/internal/pipeline"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imageProperties are the source arguments shared by every image tool.
func imageProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path or file:// URL of the image. Use either path or data_url.",
		},
		"data_url": map[string]interface{}{
			"type":        "string",
			"description": "Image as a data: URL (base64 or percent-encoded).",
		},
		"mime_type": map[string]interface{}{
			"type":        "string",
			"description": "Optional explicit MIME type (e.g., image/png). Overrides detection.",
		},
	}
}

// withImage merges extra properties over the shared image properties.
func withImage(extra map[string]interface{}) map[string]interface{} {
	props := imageProperties()
	for k, v := range extra {
		props[k] = v
	}
	return props
}

var metadataProperty = map[string]interface{}{
	"type":                 "object",
	"description":          "Free-form key/value pairs embedded as PNG tEXt chunks. Blank values are dropped.",
	"additionalProperties": map[string]interface{}{"type": "string"},
}

var provenanceProperty = map[string]interface{}{
	"type":        "object",
	"description": "Generation provenance, embedded as Tool, <Tool>Model, Cost and Duration fields.",
	"properties": map[string]interface{}{
		"tool":        map[string]interface{}{"type": "string"},
		"model":       map[string]interface{}{"type": "string"},
		"cost":        map[string]interface{}{"type": "number"},
		"duration_ms": map[string]interface{}{"type": "integer"},
	},
}

func stepsProperty() map[string]interface{} {
	var names []string
	for _, k := range pipeline.Steps() {
		names = append(names, k.String())
	}
	return map[string]interface{}{
		"type":        "array",
		"description": "Ordered post-processing step names. Unknown names are skipped.",
		"items": map[string]interface{}{
			"type": "string",
			"enum": names,
		},
	}
}

var outputPathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Optional file path for the result. When omitted the image is returned as base64.",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image from a path or data URL and return its dimensions, MIME type, alpha support and number of embedded text fields.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": imageProperties(),
			},
		},

		// Clipboard Export
		{
			Name:        "image_copy",
			Description: "Copy an image to the system clipboard. Optional metadata is embedded as PNG text chunks; optional steps post-process the image first. Falls back to PNG, then to a data URL as text.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withImage(map[string]interface{}{
					"metadata":   metadataProperty,
					"provenance": provenanceProperty,
					"steps":      stepsProperty(),
				}),
			},
		},

		// Metadata
		{
			Name:        "image_tag_metadata",
			Description: "Embed key/value metadata into a PNG as tEXt (or zTXt) chunks directly after the header. Non-PNG images are converted first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withImage(map[string]interface{}{
					"metadata":   metadataProperty,
					"provenance": provenanceProperty,
					"compress": map[string]interface{}{
						"type":        "boolean",
						"description": "Write zlib-compressed zTXt chunks instead of tEXt",
						"default":     false,
					},
					"output_path": outputPathProperty,
				}),
			},
		},
		{
			Name:        "image_read_metadata",
			Description: "List the tEXt and zTXt key/value fields embedded in a PNG, in file order.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": imageProperties(),
			},
		},

		// Post-Processing
		{
			Name:        "image_chroma_key",
			Description: "Replace a green-screen background with transparency. The key color is sampled from the image border unless key_color is given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withImage(map[string]interface{}{
					"key_color": map[string]interface{}{
						"type":        "string",
						"description": "Optional fixed key color as hex (e.g., #00ff66)",
					},
					"params": map[string]interface{}{
						"type":        "object",
						"description": "Optional threshold overrides (hard_distance, soft_distance, min_green, hard_dominance, ...)",
					},
					"output_path": outputPathProperty,
				}),
			},
		},
		{
			Name:        "image_apply_pipeline",
			Description: "Run an ordered list of post-processing steps over an image. Failing or unknown steps are skipped and reported.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withImage(map[string]interface{}{
					"steps":       stepsProperty(),
					"output_path": outputPathProperty,
				}),
				"required": []string{"steps"},
			},
		},
		{
			Name:        "image_list_steps",
			Description: "List the post-processing step names accepted by image_copy and image_apply_pipeline.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
