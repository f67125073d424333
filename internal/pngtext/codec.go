package pngtext

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Signature is the fixed 8-byte prefix of every PNG stream.
var Signature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// crcTable is the reflected 0xEDB88320 table shared by every chunk checksum.
var crcTable = crc32.MakeTable(crc32.IEEE)

const (
	chunkOverhead = 12 // length + type + CRC
	ihdrDataLen   = 13
)

// FormatError reports a PNG container that cannot be parsed.
type FormatError struct {
	Offset int    // byte offset where parsing stopped
	Reason string // human-readable description
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("pngtext: malformed PNG at offset %d: %s", e.Offset, e.Reason)
}

func formatErr(offset int, format string, args ...interface{}) error {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// HasSignature reports whether b starts with the PNG signature.
func HasSignature(b []byte) bool {
	return len(b) >= len(Signature) && bytes.Equal(b[:len(Signature)], Signature)
}

// Checksum returns the CRC-32 of a chunk, computed over its type and data.
func Checksum(typ string, data []byte) uint32 {
	crc := crc32.Update(0, crcTable, []byte(typ))
	return crc32.Update(crc, crcTable, data)
}

// appendChunk serializes one chunk onto dst.
func appendChunk(dst []byte, typ string, data []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(data)))
	dst = append(dst, typ...)
	dst = append(dst, data...)
	return binary.BigEndian.AppendUint32(dst, Checksum(typ, data))
}

// readChunk parses the chunk starting at off. It returns the chunk and the
// offset of the byte following its CRC.
func readChunk(b []byte, off int) (Chunk, int, error) {
	if len(b)-off < chunkOverhead {
		return Chunk{}, off, formatErr(off, "truncated chunk header")
	}
	length := binary.BigEndian.Uint32(b[off : off+4])
	if uint64(length) > uint64(len(b)-off-chunkOverhead) {
		return Chunk{}, off, formatErr(off, "chunk length %d exceeds remaining %d bytes", length, len(b)-off-chunkOverhead)
	}
	n := int(length)
	typ := string(b[off+4 : off+8])
	if !validType(typ) {
		return Chunk{}, off, formatErr(off+4, "invalid chunk type %q", typ)
	}
	data := b[off+8 : off+8+n]
	crc := binary.BigEndian.Uint32(b[off+8+n : off+12+n])
	if want := Checksum(typ, data); crc != want {
		return Chunk{}, off, formatErr(off+8+n, "%s CRC mismatch: got %08x, want %08x", typ, crc, want)
	}
	return Chunk{Type: typ, Data: data, CRC: crc, Offset: off}, off + chunkOverhead + n, nil
}

func validType(typ string) bool {
	for i := 0; i < len(typ); i++ {
		c := typ[i]
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z') {
			return false
		}
	}
	return len(typ) == 4
}

// headerEnd validates the signature and the IHDR chunk and returns the offset
// just past the IHDR CRC.
func headerEnd(b []byte) (int, error) {
	if !HasSignature(b) {
		return 0, formatErr(0, "missing PNG signature")
	}
	off := len(Signature)
	if len(b) < off+8 || string(b[off+4:off+8]) != "IHDR" {
		return 0, formatErr(off, "IHDR chunk must follow the signature")
	}
	ihdr, end, err := readChunk(b, off)
	if err != nil {
		return 0, err
	}
	if len(ihdr.Data) != ihdrDataLen {
		return 0, formatErr(off, "IHDR length %d, want %d", len(ihdr.Data), ihdrDataLen)
	}
	return end, nil
}
