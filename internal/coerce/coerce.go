// Package coerce implements the single coercion function table shared by
// Context's typed getters and the injector (spec §4.1, §9 "Coercion
// engine"): direct type passthrough, numeric widening/narrowing, and
// string parsing, all without ever surfacing a parse failure to the
// caller.
package coerce

import (
	"fmt"
	"strconv"
	"strings"
)

var truthyStrings = map[string]bool{"true": true, "1": true, "yes": true}

// String attempts to coerce v to a string. Returns ("", false) if v is nil
// or of a type with no sensible string form.
func String(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, bool:
		return toStringReflect(t), true
	default:
		return "", false
	}
}

func toStringReflect(v any) string {
	switch t := v.(type) {
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Int coerces v to int. Returns (0, false) on failure, never panics.
func Int(v any) (int, bool) {
	n, ok := Int64(v)
	if !ok {
		return 0, false
	}
	return int(n), true
}

// Int64 coerces v to int64.
func Int64(v any) (int64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), true
	case float32:
		return int64(t), true
	case float64:
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Float64 coerces v to float64.
func Float64(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		if n, ok := Int64(v); ok {
			return float64(n), true
		}
		return 0, false
	}
}

// Bool coerces v to bool. Strings are true iff their lowercased form is in
// {"true", "1", "yes"}.
func Bool(v any) (bool, bool) {
	switch t := v.(type) {
	case nil:
		return false, false
	case bool:
		return t, true
	case string:
		return truthyStrings[strings.ToLower(strings.TrimSpace(t))], true
	case int:
		return t != 0, true
	case int64:
		return t != 0, true
	default:
		return false, false
	}
}

// StringSlice coerces v to a []string, accepting []string, []any (each
// element coerced individually, failing elements are skipped) or a single
// string treated as a one-element slice.
func StringSlice(v any) ([]string, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, elem := range t {
			if s, ok := String(elem); ok {
				out = append(out, s)
			}
		}
		return out, true
	case string:
		return []string{t}, true
	default:
		return nil, false
	}
}

// StringMap coerces v to a map[string]any, accepting map[string]any or
// map[any]any (as produced by some YAML decoders).
func StringMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return t, true
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if ks, ok := String(k); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// IsEmpty reports whether v is nil, an empty string, or an empty collection.
// Any other non-nil value reports false — matching the Context.isEmpty
// contract of spec §4.1.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case map[any]any:
		return len(t) == 0
	default:
		return false
	}
}
