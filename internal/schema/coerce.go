package schema

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var (
	truthy = map[string]struct{}{"true": {}, "1": {}, "yes": {}, "on": {}, "t": {}, "y": {}}
	falsy  = map[string]struct{}{"false": {}, "0": {}, "no": {}, "off": {}, "f": {}, "n": {}}
)

// coerce reads raw as a value of type t. The returned value is one of
// string, int64, float64 or bool.
func coerce(t FieldType, raw any) (any, bool) {
	switch t {
	case TypeString:
		s, ok := raw.(string)
		return s, ok
	case TypeInteger:
		return toInt(raw)
	case TypeFloat:
		return toFloat(raw)
	case TypeBoolean:
		return toBool(raw)
	}
	return nil, false
}

func toInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return uintToInt(uint64(v))
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return uintToInt(v)
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func uintToInt(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

// floatToInt accepts only floats with no fractional part that fit in int64.
func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// toFloat accepts finite numbers only; NaN and the infinities cannot be
// encoded as JSON.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	case bool:
		return 0, false
	}
	if n, ok := toInt(raw); ok {
		return float64(n), true
	}
	return 0, false
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		if _, ok := truthy[s]; ok {
			return true, true
		}
		if _, ok := falsy[s]; ok {
			return false, true
		}
		return false, false
	}

	// numbers: only exact 0 and 1
	f, ok := toFloat(raw)
	if !ok {
		return false, false
	}
	switch f {
	case 0:
		return false, true
	case 1:
		return true, true
	}
	return false, false
}
