package imaging

import (
	"bytes"
	"image"
	"net/url"
	"path"
	"strings"
)

// MIME types handled specially by the pipeline.
const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"

	// DefaultMIME is assumed when nothing else identifies a source.
	DefaultMIME = MIMEPNG
)

var mimeAliases = map[string]string{
	"image/jpg":      MIMEJPEG,
	"image/pjpeg":    MIMEJPEG,
	"image/x-png":    MIMEPNG,
	"image/x-bmp":    "image/bmp",
	"image/x-ms-bmp": "image/bmp",
	"image/x-qoi":    "image/qoi",
}

// extensionTypes maps bare extensions and decoder format names to MIME types.
var extensionTypes = map[string]string{
	"png":  MIMEPNG,
	"apng": "image/apng",
	"jpg":  MIMEJPEG,
	"jpeg": MIMEJPEG,
	"jpe":  MIMEJPEG,
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"qoi":  "image/qoi",
	"svg":  "image/svg+xml",
	"avif": "image/avif",
	"heic": "image/heic",
}

// TypeFromMIME normalizes a MIME type or bare format name.
//
// Parameters are stripped, case is folded and known aliases are collapsed,
// so "image/jpg" becomes "image/jpeg" and "PNG" becomes "image/png". An empty
// input yields an empty result.
func TypeFromMIME(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" {
		return ""
	}
	if alias, ok := mimeAliases[s]; ok {
		return alias
	}
	if !strings.Contains(s, "/") {
		s = strings.TrimPrefix(s, ".")
		if t, ok := extensionTypes[s]; ok {
			return t
		}
		return "image/" + s
	}
	return s
}

// TypeFromName returns the MIME type implied by a filename or URL path
// extension, or "" if the extension is unknown.
func TypeFromName(name string) string {
	if u, err := url.Parse(name); err == nil && u.Scheme != "" && u.Scheme != "data" {
		name = u.Path
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	return extensionTypes[ext]
}

// sniffType identifies data with the registered image decoders.
func sniffType(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return extensionTypes[format]
}

// ResolveMIME picks the MIME type for src. Precedence: the explicit MIME,
// the type declared by a data URL, the filename extension, the type detected
// from the bytes, and finally DefaultMIME.
func ResolveMIME(src Source) string {
	var declared string
	if IsDataURL(src.URL) {
		declared, _ = dataURLType(src.URL)
	}
	return resolveMIME(src.MIME, declared, src.name(), src.Data)
}

func resolveMIME(explicit, declared, name string, data []byte) string {
	if t := TypeFromMIME(explicit); t != "" {
		return t
	}
	if t := TypeFromMIME(declared); t != "" {
		return t
	}
	if t := TypeFromName(name); t != "" {
		return t
	}
	if t := sniffType(data); t != "" {
		return t
	}
	return DefaultMIME
}
