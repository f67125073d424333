package imaging

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// DecodeError reports a source that cannot be read or decoded, such as a
// malformed data URL or a missing file.
type DecodeError struct {
	Source string // truncated description of the offending input
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("imaging: cannot decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErr(source string, err error) error {
	if len(source) > 48 {
		source = source[:48] + "..."
	}
	return &DecodeError{Source: source, Err: err}
}

// IsDataURL reports whether s uses the data: scheme.
func IsDataURL(s string) bool {
	return len(s) >= 5 && strings.EqualFold(s[:5], "data:")
}

// dataURLType returns the declared MIME type and whether the payload is
// base64 encoded.
func dataURLType(s string) (string, bool) {
	header, _, _ := strings.Cut(s[5:], ",")
	parts := strings.Split(header, ";")
	isBase64 := false
	for _, p := range parts[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	return strings.TrimSpace(parts[0]), isBase64
}

// DecodeDataURL splits a data URL of the form data:<mime>[;base64],<payload>
// into its normalized MIME type and payload bytes.
//
// Payloads marked ;base64 are base64 decoded (padding optional); all others
// are percent-unescaped. Malformed input returns a *DecodeError.
func DecodeDataURL(s string) (string, []byte, error) {
	if !IsDataURL(s) {
		return "", nil, decodeErr(s, fmt.Errorf("not a data URL"))
	}
	if !strings.Contains(s, ",") {
		return "", nil, decodeErr(s, fmt.Errorf("missing ',' separator"))
	}
	_, payload, _ := strings.Cut(s, ",")
	mime, isBase64 := dataURLType(s)

	if isBase64 {
		cleaned := strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		if unescaped, err := url.PathUnescape(cleaned); err == nil {
			cleaned = unescaped
		}
		data, err := base64.StdEncoding.DecodeString(cleaned)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(cleaned, "="))
		}
		if err != nil {
			return "", nil, decodeErr(s, fmt.Errorf("invalid base64 payload: %w", err))
		}
		return TypeFromMIME(mime), data, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, decodeErr(s, fmt.Errorf("invalid percent-encoding: %w", err))
	}
	return TypeFromMIME(mime), []byte(text), nil
}

// EncodeDataURL renders img as a base64 data URL.
func EncodeDataURL(img RasterImage) string {
	mime := img.MIME
	if mime == "" {
		mime = DefaultMIME
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
