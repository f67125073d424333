// Package clipboard hands exported images to a clipboard.
//
// A Writer is composed from three optional capabilities: a SupportQuery that
// reports whether a MIME type can be written, an ImageWriter and a
// TextWriter. Any subset may be present. CopyImage degrades in this order:
//
//  1. Images with metadata are converted to PNG, tagged and written directly.
//  2. Otherwise the normalized type is written if the clipboard supports it.
//  3. Unsupported types, and writes rejected as unsupported or not allowed,
//     are converted to PNG and written again.
//  4. If every image write fails, the source is copied as text (its data URL).
//
// Each call performs at most one successful clipboard mutation. The caller
// only sees an error when the text fallback is unavailable or fails too, and
// then it is the original image-write error.
package clipboard
