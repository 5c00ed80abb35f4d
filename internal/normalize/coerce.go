package normalize

import (
	"encoding/json"
	"strconv"

	"bkcnorm/internal/booking"
)

// StringifyNumbers replaces every numeric leaf in v with its decimal string,
// at any depth. Records, maps and lists are updated in place; the (possibly
// replaced) value is returned. Strings, booleans and nil are left alone.
func StringifyNumbers(v any) any {
	switch t := v.(type) {
	case *booking.Record:
		if t == nil {
			return t
		}
		// Exact keys, so "Extra" and "extra" keep their own values.
		t.Range(func(key string, val any) bool {
			t.Put(key, StringifyNumbers(val))
			return true
		})
		return t
	case map[string]any:
		for key, val := range t {
			t[key] = StringifyNumbers(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = StringifyNumbers(val)
		}
		return t
	default:
		if s, ok := numberString(v); ok {
			return s
		}
		return v
	}
}

func numberString(v any) (string, bool) {
	switch t := v.(type) {
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.FormatInt(int64(t), 10), true
	case int8:
		return strconv.FormatInt(int64(t), 10), true
	case int16:
		return strconv.FormatInt(int64(t), 10), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint:
		return strconv.FormatUint(uint64(t), 10), true
	case uint8:
		return strconv.FormatUint(uint64(t), 10), true
	case uint16:
		return strconv.FormatUint(uint64(t), 10), true
	case uint32:
		return strconv.FormatUint(uint64(t), 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	default:
		return "", false
	}
}
