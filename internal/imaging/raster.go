package imaging

import (
	"bytes"
	"fmt"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/image-export-mcp/internal/pngtext"
)

// RasterImage is an encoded image buffer with its declared MIME type.
//
// Width and Height are zero when the format cannot be decoded (for example
// SVG). A RasterImage is treated as immutable: transforms return new values.
type RasterImage struct {
	Data   []byte `json:"-"`
	MIME   string `json:"mime_type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// IsPNG reports whether the image is declared as PNG.
func (r RasterImage) IsPNG() bool {
	return r.MIME == MIMEPNG
}

// Empty reports whether the image carries no bytes.
func (r RasterImage) Empty() bool {
	return len(r.Data) == 0
}

// Source references an image to export. Exactly one of Data or URL is
// normally set; MIME and Name are optional hints.
type Source struct {
	// Data holds raw image bytes already in memory.
	Data []byte

	// MIME is an explicit type for Data. It wins over every other hint.
	MIME string

	// URL is a data URL, a file:// URL or a filesystem path.
	URL string

	// Name is a filename hint used for extension-based type detection.
	Name string
}

func (s Source) name() string {
	if s.Name != "" {
		return s.Name
	}
	if IsDataURL(s.URL) {
		return ""
	}
	return s.URL
}

// String returns the textual form of the source: the original URL when there
// is one, otherwise a data URL built from the bytes.
func (s Source) String() string {
	if s.URL != "" {
		return s.URL
	}
	return EncodeDataURL(RasterImage{Data: s.Data, MIME: ResolveMIME(s)})
}

// Normalize reads src into a RasterImage with a resolved MIME type.
//
// Returns a *DecodeError if the source is empty, a malformed data URL, or a
// path that cannot be read.
func Normalize(src Source) (RasterImage, error) {
	data := src.Data
	var declared string
	if IsDataURL(src.URL) {
		declared, _ = dataURLType(src.URL)
	}

	if len(data) == 0 {
		switch {
		case src.URL == "":
			return RasterImage{}, decodeErr("source", fmt.Errorf("no image data or URL"))
		case IsDataURL(src.URL):
			_, payload, err := DecodeDataURL(src.URL)
			if err != nil {
				return RasterImage{}, err
			}
			data = payload
		default:
			payload, err := readPath(src.URL)
			if err != nil {
				return RasterImage{}, err
			}
			data = payload
		}
	}
	if len(data) == 0 {
		return RasterImage{}, decodeErr(src.URL, fmt.Errorf("image is empty"))
	}

	img := RasterImage{
		Data: data,
		MIME: resolveMIME(src.MIME, declared, src.name(), data),
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width, img.Height = cfg.Width, cfg.Height
	}
	return img, nil
}

// readPath loads a filesystem path or file:// URL.
func readPath(ref string) ([]byte, error) {
	p := ref
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return nil, decodeErr(ref, err)
		}
		if u.Scheme != "file" {
			return nil, decodeErr(ref, fmt.Errorf("unsupported URL scheme %q", u.Scheme))
		}
		p = filepath.FromSlash(u.Path)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, decodeErr(ref, fmt.Errorf("failed to read image: %w", err))
	}
	return data, nil
}

// ImageInfo contains metadata about a normalized image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// MimeType is the resolved MIME type of the source.
	MimeType string `json:"mime_type"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the decoded image carries an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the size of the encoded image in bytes.
	SizeBytes int `json:"size_bytes"`

	// TextFields counts tEXt/zTXt chunks; only set for PNG sources.
	TextFields int `json:"text_fields,omitempty"`
}

// Describe normalizes src and decodes it to report dimensions, color depth
// and alpha support.
//
// # Color Depth Detection
//
// Color depth is determined by the decoded Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func Describe(src Source) (*ImageInfo, error) {
	img, err := Normalize(src)
	if err != nil {
		return nil, err
	}

	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", img.MIME, err)
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch decoded.(type) {
	case *image.RGBA, *image.NRGBA, *image.Paletted:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := decoded.Bounds()
	info := &ImageInfo{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		MimeType:   img.MIME,
		ColorDepth: colorDepth,
		HasAlpha:   hasAlpha,
		SizeBytes:  len(img.Data),
	}
	if img.IsPNG() {
		if fields, err := pngtext.ReadText(img.Data); err == nil {
			info.TextFields = len(fields)
		}
	}
	return info, nil
}
