package pngtext

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Chunk is one parsed PNG chunk. Data aliases the source buffer.
type Chunk struct {
	Type   string
	Data   []byte
	CRC    uint32
	Offset int // offset of the length field in the source buffer
}

// Chunks parses every chunk of png up to and including IEND, validating each
// CRC. Bytes after IEND are ignored.
func Chunks(png []byte) ([]Chunk, error) {
	if _, err := headerEnd(png); err != nil {
		return nil, err
	}

	var chunks []Chunk
	off := len(Signature)
	for off < len(png) {
		c, next, err := readChunk(png, off)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
		if c.Type == "IEND" {
			return chunks, nil
		}
		off = next
	}
	return nil, formatErr(off, "missing IEND chunk")
}

// ReadText returns the keyword/value pairs of every tEXt and zTXt chunk in
// file order.
func ReadText(png []byte) ([]Field, error) {
	chunks, err := Chunks(png)
	if err != nil {
		return nil, err
	}

	var fields []Field
	for _, c := range chunks {
		switch c.Type {
		case TypeText:
			key, text, ok := bytes.Cut(c.Data, []byte{0})
			if !ok {
				return nil, formatErr(c.Offset, "tEXt chunk without keyword separator")
			}
			fields = append(fields, Field{Key: string(key), Value: string(text)})
		case TypeCompressedText:
			f, err := parseCompressedText(c)
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
		}
	}
	return fields, nil
}

func parseCompressedText(c Chunk) (Field, error) {
	key, rest, ok := bytes.Cut(c.Data, []byte{0})
	if !ok || len(rest) == 0 {
		return Field{}, formatErr(c.Offset, "zTXt chunk without keyword separator")
	}
	if rest[0] != 0 {
		return Field{}, formatErr(c.Offset, "zTXt compression method %d not supported", rest[0])
	}

	zr, err := zlib.NewReader(bytes.NewReader(rest[1:]))
	if err != nil {
		return Field{}, formatErr(c.Offset, "zTXt stream: %v", err)
	}
	defer zr.Close()

	text, err := io.ReadAll(zr)
	if err != nil {
		return Field{}, formatErr(c.Offset, "zTXt stream: %v", err)
	}
	return Field{Key: string(key), Value: string(text)}, nil
}

// Lookup returns the values stored under keyword, in file order.
func Lookup(fields []Field, keyword string) []string {
	var values []string
	for _, f := range fields {
		if f.Key == keyword {
			values = append(values, f.Value)
		}
	}
	return values
}

// String renders a chunk for diagnostics.
func (c Chunk) String() string {
	return fmt.Sprintf("%s[%d]@%d", c.Type, len(c.Data), c.Offset)
}
