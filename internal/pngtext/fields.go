package pngtext

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxKeywordLen is the longest keyword a PNG text chunk may carry.
const MaxKeywordLen = 79

// DefaultKeyword replaces keywords that sanitize to nothing.
const DefaultKeyword = "Metadata"

// Field is one keyword/value pair of a metadata record.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FieldsFromMap converts a map into fields ordered by key.
func FieldsFromMap(m map[string]string) []Field {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Key: k, Value: m[k]})
	}
	return fields
}

// NonBlank returns the fields whose value contains something other than
// whitespace. Order is preserved.
func NonBlank(fields []Field) []Field {
	var kept []Field
	for _, f := range fields {
		if strings.TrimSpace(f.Value) != "" {
			kept = append(kept, f)
		}
	}
	return kept
}

// HasValues reports whether any field would survive NonBlank.
func HasValues(fields []Field) bool {
	for _, f := range fields {
		if strings.TrimSpace(f.Value) != "" {
			return true
		}
	}
	return false
}

// SanitizeKeyword trims the keyword, removes NUL bytes and truncates it to
// MaxKeywordLen bytes. An empty result becomes DefaultKeyword.
func SanitizeKeyword(key string) string {
	key = strings.TrimSpace(key)
	key = strings.ReplaceAll(key, "\x00", "")
	if len(key) > MaxKeywordLen {
		key = key[:MaxKeywordLen]
	}
	if key == "" {
		return DefaultKeyword
	}
	return key
}

// Provenance describes how an image was produced.
type Provenance struct {
	Tool     string        // tool id, e.g. "Illustrator"
	Model    string        // model id used by the tool
	Cost     float64       // generation cost in USD, zero when unknown
	Duration time.Duration // wall time of the generation, zero when unknown
}

// Fields renders the provenance record. Unknown parts yield blank values,
// which InjectText drops.
func (p Provenance) Fields() []Field {
	tool := strings.TrimSpace(p.Tool)
	modelKey := "Model"
	if tool != "" {
		modelKey = tool + "Model"
	}

	var cost, duration string
	if p.Cost > 0 {
		cost = strconv.FormatFloat(p.Cost, 'f', 4, 64)
	}
	if p.Duration > 0 {
		duration = strconv.FormatFloat(p.Duration.Seconds(), 'f', 2, 64)
	}

	return []Field{
		{Key: "Tool", Value: tool},
		{Key: modelKey, Value: p.Model},
		{Key: "Cost", Value: cost},
		{Key: "Duration", Value: duration},
	}
}
