package content

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"time"
)

// Record is one row keyed by column name. Values are string, int64, bool,
// time.Time or []string according to the column type.
type Record map[string]any

// ID returns the record id.
func (r Record) ID() string {
	return r.String(ColID)
}

// String returns a text column, or "" when absent.
func (r Record) String(col string) string {
	s, _ := r[col].(string)
	return s
}

// Int returns an int column, or 0 when absent.
func (r Record) Int(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Bool returns a bool column, or false when absent.
func (r Record) Bool(col string) bool {
	b, _ := r[col].(bool)
	return b
}

// Time returns a time column, or the zero time when absent.
func (r Record) Time(col string) time.Time {
	t, _ := r[col].(time.Time)
	return t
}

// Strings returns a list column, or nil when absent.
func (r Record) Strings(col string) []string {
	s, _ := r[col].([]string)
	return s
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	return maps.Clone(r)
}

// Coerce converts every value of fields to the Go type of its column in
// kind. JSON-decoded values (float64 numbers, RFC 3339 strings, []any
// lists) are accepted.
func Coerce(kind Kind, fields Record) (Record, error) {
	cols, err := Columns(kind)
	if err != nil {
		return nil, err
	}

	out := make(Record, len(fields))
	for name, v := range fields {
		col, ok := cols[name]
		if !ok {
			return nil, unknownColumn(kind, name)
		}
		cv, err := coerceValue(col.Type, v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidValue, kind, name, err)
		}
		out[name] = cv
	}
	return out, nil
}

// Zero returns the zero value stored for t.
func Zero(t ColumnType) any {
	switch t {
	case TypeInt:
		return int64(0)
	case TypeBool:
		return false
	case TypeTime:
		return time.Time{}
	case TypeList:
		return []string{}
	default:
		return ""
	}
}

func coerceValue(t ColumnType, v any) (any, error) {
	if v == nil {
		return Zero(t), nil
	}

	switch t {
	case TypeText:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeInt:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("not an integer: %v", n)
			}
			return int64(n), nil
		case json.Number:
			return n.Int64()
		}
	case TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TypeTime:
		switch tv := v.(type) {
		case time.Time:
			return tv, nil
		case string:
			return time.Parse(time.RFC3339Nano, tv)
		}
	case TypeList:
		switch l := v.(type) {
		case []string:
			return append([]string{}, l...), nil
		case []any:
			out := make([]string, 0, len(l))
			for _, e := range l {
				s, ok := e.(string)
				if !ok {
					return nil, fmt.Errorf("list element %v is not a string", e)
				}
				out = append(out, s)
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, t)
}
