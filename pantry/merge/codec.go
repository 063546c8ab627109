// pantry/merge/codec.go
package merge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names a serialization for mappings.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for formats other than json and yaml.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ParseFormat accepts "json", "yaml" or "yml" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// FromAny converts decoded JSON or YAML data into a Value. Maps become
// Mappings, slices become Lists and everything else is a Scalar.
func FromAny(v any) Value {
	switch t := v.(type) {
	case Value:
		return t
	case map[string]any:
		return FromMap(t)
	case map[any]any:
		m := make(Mapping, len(t))
		for k, x := range t {
			m[fmt.Sprint(k)] = FromAny(x)
		}
		return m
	case []any:
		l := &List{Items: make([]Value, 0, len(t))}
		for _, x := range t {
			l.Items = append(l.Items, FromAny(x))
		}
		return l
	case []string:
		return Strings(t...)
	case json.Number:
		return Scalar{Raw: number(t)}
	default:
		return Scalar{Raw: t}
	}
}

// number turns a JSON number into an int64 when it is integral and fits,
// and a float64 otherwise.
func number(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// FromMap converts a decoded object into a Mapping. FromMap(nil) is nil.
func FromMap(raw map[string]any) Mapping {
	if raw == nil {
		return nil
	}
	m := make(Mapping, len(raw))
	for k, x := range raw {
		m[k] = FromAny(x)
	}
	return m
}

// ToAny is the inverse of FromAny.
func ToAny(v Value) any {
	switch t := v.(type) {
	case Scalar:
		return t.Raw
	case *List:
		if t == nil {
			return nil
		}
		out := make([]any, 0, len(t.Items))
		for _, item := range t.Items {
			out = append(out, ToAny(item))
		}
		return out
	case Mapping:
		if t == nil {
			return nil
		}
		return t.ToMap()
	default:
		return nil
	}
}

// ToMap converts m back into plain Go maps and slices.
func (m Mapping) ToMap() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = ToAny(v)
	}
	return out
}

func (s Scalar) MarshalJSON() ([]byte, error) { return json.Marshal(s.Raw) }
func (l *List) MarshalJSON() ([]byte, error)  { return json.Marshal(ToAny(l)) }
func (m Mapping) MarshalJSON() ([]byte, error) { return json.Marshal(m.ToMap()) }

// UnmarshalJSON decodes a JSON object. Integral numbers become int64 so
// large advertiser and list ids survive a round trip. JSON null yields a
// nil mapping.
func (m *Mapping) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*m = nil
	case map[string]any:
		*m = FromMap(t)
	default:
		return fmt.Errorf("mapping must be a JSON object, got %T", raw)
	}
	return nil
}

func (m Mapping) MarshalYAML() (any, error) { return m.ToMap(), nil }

func (m *Mapping) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*m = FromMap(raw)
	return nil
}

// Decode reads one mapping in the given format.
func Decode(r io.Reader, f Format) (Mapping, error) {
	var m Mapping
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&m)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&m)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode %s: empty input", f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f, err)
	}
	return m, nil
}

// Encode writes m in the given format. JSON is indented by two spaces.
func Encode(w io.Writer, m Mapping, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}
