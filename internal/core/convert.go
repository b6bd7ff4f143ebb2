package core

// convert.go is the field codec: it moves values between storage cells and
// typed record values.
//
// Storage cells arrive in whatever shape the backend keeps them:
//   - memstore returns the native values that were written
//   - csvstore returns strings for everything
//   - pgstore returns what encoding/json decodes (float64, string, bool, nil)
//
// Parse therefore accepts both the native and the textual form of each type.
// Serialize always produces the native form, so serialize(parse(raw)) == raw
// holds for every raw the serializer produced.

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numericRegex validates that a string is a valid numeric format.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// dateLayouts are the textual date forms accepted from storage, most precise first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006",
}

// UnsetDate is the in-memory value of an empty DATE cell.
const UnsetDate int64 = -1

// Parse converts a raw storage cell into the field's typed value.
func (f Field) Parse(raw any) (any, error) {
	// Whitespace is a legal STRING value, so strings are never trimmed.
	if raw == nil || (f.Type != FieldString && isBlank(raw)) {
		return f.zero(), nil
	}

	switch f.Type {
	case FieldBool:
		return parseBool(raw), nil
	case FieldNumber:
		n, ok := toNumber(raw)
		if !ok {
			return nil, f.mismatch(raw)
		}
		return n, nil
	case FieldString:
		return toText(raw), nil
	case FieldDate:
		ms, ok := toMillis(raw)
		if !ok {
			return nil, f.mismatch(raw)
		}
		return ms, nil
	case FieldJSON:
		s, ok := raw.(string)
		if !ok {
			return nil, f.mismatch(raw)
		}
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, newError(ErrParse, "field %q: %v", f.Name, err)
		}
		return v, nil
	}
	return nil, f.mismatch(raw)
}

// Serialize converts a typed value into the cell written to storage.
func (f Field) Serialize(v any) (any, error) {
	switch f.Type {
	case FieldBool:
		return parseBool(v), nil
	case FieldNumber:
		if v == nil {
			return nil, f.mismatch(v)
		}
		n, ok := toNumber(v)
		if !ok {
			return nil, f.mismatch(v)
		}
		return n, nil
	case FieldString:
		s := toText(v)
		if len(f.EnumValues) > 0 && !f.allows(s) {
			return nil, newError(ErrTypeMismatch, "value %q is not one of %s for field name %q",
				s, strings.Join(f.EnumValues, ", "), f.Name)
		}
		return s, nil
	case FieldDate:
		if v == nil {
			return "", nil
		}
		ms, ok := toMillis(v)
		if !ok {
			return nil, f.mismatch(v)
		}
		if ms == UnsetDate {
			return "", nil
		}
		return time.UnixMilli(ms), nil
	case FieldJSON:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, newError(ErrTypeMismatch, "field %q: %v", f.Name, err)
		}
		return string(b), nil
	}
	return nil, f.mismatch(v)
}

// zero is the typed value of a blank cell.
func (f Field) zero() any {
	switch f.Type {
	case FieldBool:
		return false
	case FieldNumber:
		return float64(0)
	case FieldString:
		return ""
	case FieldDate:
		return UnsetDate
	default:
		return nil
	}
}

func (f Field) allows(s string) bool {
	if s == "" {
		return true
	}
	for _, ev := range f.EnumValues {
		if ev == s {
			return true
		}
	}
	return false
}

func (f Field) mismatch(v any) error {
	return newError(ErrTypeMismatch, "value %q failed the type validation for field name %q (want %s)",
		toText(v), f.Name, f.Type)
}

func isBlank(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

func parseBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	case float64:
		return b != 0 && !math.IsNaN(b)
	case int:
		return b != 0
	case int64:
		return b != 0
	}
	return false
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(n)
		if !numericRegex.MatchString(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func toText(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	case time.Time:
		return s.Format(time.RFC3339Nano)
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func toMillis(v any) (int64, bool) {
	switch d := v.(type) {
	case time.Time:
		return d.UnixMilli(), true
	case int64:
		return d, true
	case int:
		return int64(d), true
	case float64:
		if math.IsNaN(d) || d != math.Trunc(d) {
			return 0, false
		}
		return int64(d), true
	case string:
		s := strings.TrimSpace(d)
		if numericRegex.MatchString(s) {
			n, err := strconv.ParseInt(s, 10, 64)
			return n, err == nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return t.UnixMilli(), true
			}
		}
	}
	return 0, false
}
