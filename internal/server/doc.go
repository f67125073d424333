// Package server implements the MCP (Model Context Protocol) server for image
// export tools.
//
// This package provides a JSON-RPC 2.0 server that exposes clipboard export,
// PNG metadata tagging and post-processing through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_load: Dimensions, MIME type and embedded text field count
//
// Clipboard Export:
//   - image_copy: Tag, post-process and copy to the clipboard
//
// Metadata:
//   - image_tag_metadata: Embed tEXt or zTXt key/value chunks
//   - image_read_metadata: List embedded key/value chunks
//
// Post-Processing:
//   - image_chroma_key: Green-screen background to transparency
//   - image_apply_pipeline: Run named steps in order
//   - image_list_steps: Enumerate step names
//
// Every image tool accepts either a path (or file:// URL) or a data URL.
// Produced images are returned as base64 unless output_path is given.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Pipeline steps never fail a call: failing and unknown steps are logged and
// listed in the result.
//
// # Usage
//
//	srv := server.New(server.Options{
//	    Clipboard: writer,
//	    Surface:   imaging.DetectSurface(false),
//	})
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
