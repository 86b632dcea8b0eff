// Package values holds the nested form-state tree and the dotted-path
// accessors used throughout the engine. Form state is a plain
// map[string]any so it can round-trip through JSON and session storage
// without a schema-specific struct per form.
package values

import (
	"fmt"
	"strconv"
	"strings"
)

// Map is the form-state value tree. Keys at each level are path segments;
// array-valued fields hold []any of entry Maps.
type Map = map[string]any

// Get resolves a dotted path against the value tree. A flat key matching the
// full path wins over a nested walk, which keeps prefilled flattened payloads
// working. Missing intermediate objects yield (nil, false).
func Get(m Map, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if len(m) == 0 || path == "" {
		return nil, false
	}

	if v, ok := m[path]; ok {
		return v, true
	}

	parts := strings.Split(path, ".")
	var current any = m
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, false
		}
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, false
			}
			current = typed[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Set writes a value at a dotted path, creating intermediate objects as
// needed. A numeric segment indexes into a []any under the preceding
// segment, growing the slice with empty entry maps up to that index.
func Set(m Map, path string, value any) {
	path = strings.TrimSpace(path)
	if m == nil || path == "" {
		return
	}

	parts := strings.Split(path, ".")
	current := m
	i := 0
	for i < len(parts)-1 {
		part := parts[i]

		if idx, err := strconv.Atoi(parts[i+1]); err == nil {
			arr, _ := current[part].([]any)
			for len(arr) <= idx {
				arr = append(arr, map[string]any{})
			}
			current[part] = arr

			if i+1 == len(parts)-1 {
				arr[idx] = value
				return
			}

			entry, ok := arr[idx].(map[string]any)
			if !ok {
				entry = map[string]any{}
				arr[idx] = entry
			}
			current = entry
			i += 2
			continue
		}

		next, ok := current[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
		i++
	}
	current[parts[len(parts)-1]] = value
}

// Delete removes the leaf at a dotted path if it exists. Intermediate
// containers are left in place.
func Delete(m Map, path string) {
	parts := strings.Split(strings.TrimSpace(path), ".")
	if m == nil || len(parts) == 0 {
		return
	}
	current := m
	for i := 0; i < len(parts)-1; i++ {
		next, ok := current[parts[i]].(map[string]any)
		if !ok {
			return
		}
		current = next
	}
	delete(current, parts[len(parts)-1])
}

// Entries returns the array entries stored under an array-valued field as a
// slice of entry maps. Non-map entries are replaced with empty maps so
// callers can index safely.
func Entries(m Map, arrayField string) []Map {
	raw, ok := Get(m, arrayField)
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]Map, len(list))
	for i, item := range list {
		if entry, ok := item.(map[string]any); ok {
			out[i] = entry
		} else {
			out[i] = map[string]any{}
		}
	}
	return out
}

// Clone deep-copies a value tree. The reducer clones state before applying
// an action so callers can treat states as immutable snapshots.
func Clone(m Map) Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return Clone(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// CoerceString renders any stored value in its canonical string form. This is
// the coercion contract used by conditional matching: numbers format via
// strconv (so 0 matches "0" and 1.5 matches "1.5"), bools become
// "true"/"false", nil becomes "".
func CoerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}

// CoerceNumber attempts a numeric reading of a stored value.
func CoerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Truthy reports whether a stored value counts as "set" for show/hide state
// fields: true booleans, non-blank strings other than "false", non-zero
// numbers, non-empty collections.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		return trimmed != "" && !strings.EqualFold(trimmed, "false")
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// IsEmpty reports whether a value should fail a required check.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		if len(v) == 0 {
			return true
		}
		// date sub-maps count as empty when every part is blank
		for _, part := range v {
			if !IsEmpty(part) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
