// pantry/export/rows.go
package export

import (
	"encoding/json"
	"fmt"

	"github.com/dalemusser/audiencekit/pantry/merge"
)

// Headers are the column titles written by every exporter.
var Headers = []string{"key", "kind", "value"}

// Rows flattens m into one [key, kind, value] row per top-level key,
// sorted by key. Scalars are written as text; lists and mappings as
// compact JSON so they can be pasted back into a single sheet cell.
func Rows(m merge.Mapping) ([][]string, error) {
	rows := make([][]string, 0, len(m))
	for _, key := range m.Keys() {
		v := m[key]
		text, err := cellText(v)
		if err != nil {
			return nil, fmt.Errorf("export key %q: %w", key, err)
		}
		kind := "scalar"
		if v != nil {
			kind = v.Kind().String()
		}
		rows = append(rows, []string{key, kind, text})
	}
	return rows, nil
}

func cellText(v merge.Value) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case merge.Scalar:
		if t.Raw == nil {
			return "", nil
		}
		return fmt.Sprint(t.Raw), nil
	default:
		b, err := json.Marshal(merge.ToAny(t))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
