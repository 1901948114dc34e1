package ir

import (
	"slices"
)

// Row maps field names to values for one dataset row.
// Use Keys() for deterministic iteration.
type Row map[string]Value

// Get returns the value of field, or Null when the field is absent.
func (r Row) Get(field string) Value {
	if v, ok := r[field]; ok && v != nil {
		return v
	}
	return Null{}
}

// Str returns the text of field. Null and missing fields return "".
func (r Row) Str(field string) string {
	return r.Get(field).Text()
}

// Int returns the integer content of field. Floats are truncated.
// The boolean is false when the field is null or not numeric.
func (r Row) Int(field string) (int64, bool) {
	switch v := r.Get(field).(type) {
	case Int:
		return int64(v), true
	case Float:
		return int64(v), true
	}
	return 0, false
}

// Float returns the numeric content of field.
func (r Row) Float(field string) (float64, bool) {
	return Number(r.Get(field))
}

// IsNull reports whether field is absent or null.
func (r Row) IsNull(field string) bool {
	return IsNull(r.Get(field))
}

// Keys returns field names in sorted order.
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clone returns a shallow copy. Values are immutable except Bytes,
// which is copied.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		if b, ok := v.(Bytes); ok {
			out[k] = Bytes(slices.Clone([]byte(b)))
			continue
		}
		out[k] = v
	}
	return out
}

// Values returns the values for fields in order, Null for missing ones.
func (r Row) Values(fields []string) []Value {
	out := make([]Value, len(fields))
	for i, f := range fields {
		out[i] = r.Get(f)
	}
	return out
}

// Merge copies every field of other into r, overwriting existing values.
func (r Row) Merge(other Row) {
	for k, v := range other {
		r[k] = v
	}
}

// NewRow zips fields and values into a Row.
func NewRow(fields []string, values []Value) Row {
	r := make(Row, len(fields))
	for i, f := range fields {
		if i < len(values) {
			r[f] = values[i]
		} else {
			r[f] = Null{}
		}
	}
	return r
}
