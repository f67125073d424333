// Package pngtext reads and writes textual metadata chunks in PNG containers
// without decoding or re-encoding the image itself.
//
// A PNG file is an 8-byte signature followed by a sequence of chunks. Each
// chunk is laid out as:
//
//	length (uint32, big-endian) | type (4 ASCII bytes) | data | CRC-32 (type+data)
//
// InjectText splices one tEXt chunk per metadata field immediately after the
// IHDR chunk and leaves every other byte of the input untouched. Decoders that
// do not understand tEXt skip it, so tagged files stay valid images.
//
// # Errors
//
// Malformed containers (bad signature, IHDR not at offset 8, truncated or
// corrupted chunks) are reported as *FormatError. They are never repaired.
//
// # Duplicate keywords
//
// Injecting the same keyword twice produces two chunks. Existing text chunks
// are never rewritten or merged.
package pngtext
