package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is one raw row as decoded from a source tool's JSON output.
// Numbers are expected as json.Number (decoder.UseNumber); float64 is tolerated.
type Record map[string]interface{}

// Has reports whether the field is present with a non-null value.
func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// String returns the field as a string. Non-string scalars are formatted.
func (r Record) String(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// Int returns the field as an integer. Fractional values are truncated;
// NaN, infinities and unparsable values report absent.
func (r Record) Int(field string) (int64, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case float64:
		return floatToInt(t)
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}
