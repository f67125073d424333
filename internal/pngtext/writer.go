package pngtext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// Chunk type tags written by this package.
const (
	TypeText           = "tEXt"
	TypeCompressedText = "zTXt"
)

// chunkBuilder renders one field as a chunk type and payload.
type chunkBuilder func(keyword, text string) (string, []byte, error)

// InjectText returns a copy of png with one tEXt chunk per non-blank field,
// placed directly after IHDR in field order.
//
// When no field has a non-blank value the input slice is returned as is.
// A *FormatError is returned if png does not start with a signature followed
// by a well-formed IHDR chunk.
func InjectText(png []byte, fields []Field) ([]byte, error) {
	return inject(png, fields, textChunk)
}

// InjectCompressedText behaves like InjectText but writes zTXt chunks whose
// text is zlib-compressed.
func InjectCompressedText(png []byte, fields []Field) ([]byte, error) {
	return inject(png, fields, compressedTextChunk)
}

func inject(png []byte, fields []Field, build chunkBuilder) ([]byte, error) {
	end, err := headerEnd(png)
	if err != nil {
		return nil, err
	}

	kept := NonBlank(fields)
	if len(kept) == 0 {
		return png, nil
	}

	var block []byte
	for _, f := range kept {
		typ, payload, err := build(SanitizeKeyword(f.Key), f.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to build %q chunk: %w", f.Key, err)
		}
		block = appendChunk(block, typ, payload)
	}

	out := make([]byte, 0, len(png)+len(block))
	out = append(out, png[:end]...)
	out = append(out, block...)
	out = append(out, png[end:]...)
	return out, nil
}

// textChunk lays out "keyword NUL text". NUL bytes in the text would end it
// early for readers, so they are removed.
func textChunk(keyword, text string) (string, []byte, error) {
	text = strings.ReplaceAll(text, "\x00", "")
	payload := make([]byte, 0, len(keyword)+1+len(text))
	payload = append(payload, keyword...)
	payload = append(payload, 0)
	payload = append(payload, text...)
	return TypeText, payload, nil
}

// compressedTextChunk lays out "keyword NUL method(0) zlib(text)".
func compressedTextChunk(keyword, text string) (string, []byte, error) {
	var buf bytes.Buffer
	buf.WriteString(keyword)
	buf.WriteByte(0)
	buf.WriteByte(0) // deflate

	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write([]byte(text)); err != nil {
		return "", nil, err
	}
	if err := zw.Close(); err != nil {
		return "", nil, err
	}
	return TypeCompressedText, buf.Bytes(), nil
}
