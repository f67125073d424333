package imaging

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantMIME string
		wantData string
	}{
		{"base64", "data:image/png;base64,aGVsbG8=", "image/png", "hello"},
		{"base64 unpadded", "data:image/png;base64,aGVsbG8", "image/png", "hello"},
		{"base64 with whitespace", "data:image/png;base64,aGVs\nbG8=", "image/png", "hello"},
		{"alias mime", "data:image/jpg;base64,aGVsbG8=", "image/jpeg", "hello"},
		{"percent", "data:image/svg+xml,%3Csvg%2F%3E", "image/svg+xml", "<svg/>"},
		{"no mime", "data:,plain", "", "plain"},
		{"upper scheme", "DATA:image/gif;BASE64,aGk=", "image/gif", "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, data, err := DecodeDataURL(tt.in)
			if err != nil {
				t.Fatalf("DecodeDataURL failed: %v", err)
			}
			if mime != tt.wantMIME {
				t.Errorf("MIME: got %q, want %q", mime, tt.wantMIME)
			}
			if string(data) != tt.wantData {
				t.Errorf("data: got %q, want %q", data, tt.wantData)
			}
		})
	}
}

func TestDecodeDataURL_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not data", "https://example.com/a.png"},
		{"no comma", "data:image/png;base64"},
		{"bad base64", "data:image/png;base64,@@@@"},
		{"bad percent", "data:text/plain,%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeDataURL(tt.in)
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DecodeError, got %v", err)
			}
		})
	}
}

func TestEncodeDataURL_RoundTrip(t *testing.T) {
	img := encodePNG(t, createInMemoryImage(3, 3, colorRed))
	url := EncodeDataURL(img)

	mime, data, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("DecodeDataURL failed: %v", err)
	}
	if mime != MIMEPNG {
		t.Errorf("MIME: got %q, want image/png", mime)
	}
	if !bytes.Equal(data, img.Data) {
		t.Error("payload changed")
	}
}
