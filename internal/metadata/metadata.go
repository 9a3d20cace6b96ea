// Package metadata validates the free-form key/value payloads attached to
// posts and AI generation requests. Values are restricted to a closed set of
// kinds: string, number, boolean, or a nested map of the same. Anything else
// (arrays, nulls, non-string keys) is rejected at the API boundary instead of
// being stored as an opaque blob.
package metadata

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// MaxDepth bounds nested maps so a hostile payload can't recurse forever.
const MaxDepth = 8

// Map is a validated metadata payload. It round-trips through JSONB columns.
type Map map[string]any

// Validate walks m and returns an error naming the first offending key path.
func Validate(m map[string]any) error {
	return validateMap(m, "", 0)
}

func validateMap(m map[string]any, path string, depth int) error {
	if depth > MaxDepth {
		return fmt.Errorf("metadata nesting exceeds %d levels at %q", MaxDepth, path)
	}
	for key, value := range m {
		keyPath := key
		if path != "" {
			keyPath = path + "." + key
		}
		switch v := value.(type) {
		case string, bool:
		case float64, float32, int, int64:
		case json.Number:
		case map[string]any:
			if err := validateMap(v, keyPath, depth+1); err != nil {
				return err
			}
		case Map:
			if err := validateMap(v, keyPath, depth+1); err != nil {
				return err
			}
		default:
			return fmt.Errorf("metadata value for %q must be a string, number, boolean or nested object", keyPath)
		}
	}
	return nil
}

// String returns the value at key as a string if present, rendering numbers
// and booleans with their default formatting.
func (m Map) String(key string) (string, bool) {
	value, ok := m[key]
	if !ok {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

// Value implements driver.Valuer so a Map can be written to a JSONB column.
func (m Map) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for reading a JSONB column.
func (m *Map) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into metadata.Map", src)
	}
	return json.Unmarshal(data, m)
}
