package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToInt converts various types to int. Values that do not parse become 0.
// Payloads decoded with UseNumber carry json.Number, which is handled exactly.
func ToInt(val any) int {
	i, _ := toInt(val)
	return i
}

// ToOptionalInt converts val to *int, returning nil for nil, empty or unparsable values.
func ToOptionalInt(val any) *int {
	i, ok := toInt(val)
	if !ok {
		return nil
	}
	return &i
}

func toInt(val any) (int, bool) {
	switch v := val.(type) {
	case nil:
		return 0, false
	case int:
		return v, true
	case int64:
		return int(v), true
	case int32:
		return int(v), true
	case uint:
		return int(v), true
	case uint64:
		return int(v), true
	case uint32:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case float32:
		return toInt(float64(v))
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return i, true
	case []byte:
		return toInt(string(v))
	default:
		return toInt(fmt.Sprintf("%v", v))
	}
}

// ToString converts various types to string. nil becomes "".
// Large float64 ids are printed without an exponent.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
