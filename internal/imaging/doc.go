// Package imaging prepares rendered raster images for export.
//
// It covers the pixel-level half of the export pipeline:
//   - Format normalization: resolving a MIME type for a Source (bytes, data
//     URL, file path) and reading it into an immutable RasterImage.
//   - Rasterization: a Surface decodes a RasterImage into non-premultiplied
//     RGBA pixels and encodes pixels back to PNG.
//   - PNG conversion: RasterConverter implementations turn any decodable
//     raster into PNG, chained so a failing converter falls back to the next.
//   - Filters: chroma-key-to-alpha, alpha feathering and transparent trimming.
//
// # Immutability
//
// A RasterImage is never modified in place. Every transform returns a new
// value with a freshly allocated buffer, so callers can keep the input.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner. Rectangles
// are inclusive at Min and exclusive at Max.
//
// # Degradation
//
// Filters that need a Surface return their input unchanged, with a logged
// warning, when the Surface is nil. Missing rasterization support is an
// environment limitation, not an error.
//
// # Supported Formats
//
// PNG, JPEG, GIF, WebP, BMP, TIFF and QOI sources can be decoded. Other MIME
// types (for example SVG) pass through normalization untouched but cannot be
// rasterized.
package imaging
