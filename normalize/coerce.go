package normalize

import (
	"strconv"
	"time"
)

// Timestamp layouts seen in API payloads, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ToInt64 converts a cell to int64. Floats truncate, numeric strings parse.
func ToInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case float64:
		return int64(val), true
	case string:
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// ToBool converts a cell to bool. The API encodes flags both as booleans
// and as 0/1 integers.
func ToBool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case int64:
		return val != 0, true
	case float64:
		return val != 0, true
	default:
		return false, false
	}
}

// ToTime parses a cell into a time.Time, trying the known layouts.
func ToTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// nullableInt64 coerces in place: nil stays nil, anything coercible becomes
// int64, anything else becomes nil.
func nullableInt64(v any) any {
	if v == nil {
		return nil
	}
	if i, ok := ToInt64(v); ok {
		return i
	}
	return nil
}

// nullableTime coerces to time.Time, nil where absent or unparseable.
func nullableTime(v any) any {
	if v == nil {
		return nil
	}
	if t, ok := ToTime(v); ok {
		return t
	}
	return nil
}
