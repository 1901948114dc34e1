package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a sealed interface representing a single attribute value moved
// between datasets. Only Null, String, Int, Float and Bytes implement it.
type Value interface {
	irValue() // Sealed - only these types implement it

	// Text renders the value the way it appears in flat files.
	// Null renders as the empty string.
	Text() string
}

// Null represents an absent attribute value.
type Null struct{}

func (Null) irValue() {}

// Text implements Value.
func (Null) Text() string { return "" }

// String represents a text attribute.
type String string

func (String) irValue() {}

// Text implements Value.
func (s String) Text() string { return string(s) }

// Int represents SHORT and LONG attributes.
type Int int64

func (Int) irValue() {}

// Text implements Value.
func (n Int) Text() string { return strconv.FormatInt(int64(n), 10) }

// Float represents FLOAT and DOUBLE attributes.
type Float float64

func (Float) irValue() {}

// Text implements Value.
// Integral floats render without a fraction so that flat-file output
// matches what the legacy tooling produced.
func (f Float) Text() string {
	return strconv.FormatFloat(float64(f), 'f', -1, 64)
}

// Bytes carries opaque geometry. Geometry is never interpreted.
type Bytes []byte

func (Bytes) irValue() {}

// Text implements Value.
func (b Bytes) Text() string { return fmt.Sprintf("<%d bytes>", len(b)) }

// IsNull reports whether v is absent.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// FromAny converts a database/sql scan result into a Value.
// Text columns may arrive as []byte depending on the driver, so the
// caller passes the declared field type when it knows it.
func FromAny(raw any, typ FieldType) (Value, error) {
	if raw == nil {
		return Null{}, nil
	}
	switch v := raw.(type) {
	case int64:
		if typ.IsFloat() {
			return Float(float64(v)), nil
		}
		if typ == FieldText {
			return String(strconv.FormatInt(v, 10)), nil
		}
		return Int(v), nil
	case int32:
		return FromAny(int64(v), typ)
	case int16:
		return FromAny(int64(v), typ)
	case int:
		return FromAny(int64(v), typ)
	case float64:
		if typ.IsInteger() {
			return Int(int64(v)), nil
		}
		if typ == FieldText {
			return String(Float(v).Text()), nil
		}
		return Float(v), nil
	case float32:
		return FromAny(float64(v), typ)
	case bool:
		if v {
			return FromAny(int64(1), typ)
		}
		return FromAny(int64(0), typ)
	case string:
		return fromText(v, typ)
	case []byte:
		if typ == FieldGeometry || typ == "" {
			cp := make([]byte, len(v))
			copy(cp, v)
			if typ == FieldGeometry {
				return Bytes(cp), nil
			}
			return String(string(cp)), nil
		}
		return fromText(string(v), typ)
	default:
		return nil, fmt.Errorf("unsupported column value %T", raw)
	}
}

func fromText(s string, typ FieldType) (Value, error) {
	switch {
	case typ.IsInteger():
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s value %q: %w", typ, s, err)
		}
		return Int(n), nil
	case typ.IsFloat():
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s value %q: %w", typ, s, err)
		}
		return Float(f), nil
	case typ == FieldGeometry:
		return Bytes([]byte(s)), nil
	default:
		return String(s), nil
	}
}

// ToAny converts a Value into a database/sql argument.
func ToAny(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bytes:
		return []byte(val)
	default:
		return nil
	}
}

// Parse converts flat-file text (schema defaults, coded values) into a
// Value of the given field type. Empty text is Null.
func Parse(s string, typ FieldType) (Value, error) {
	if s == "" {
		return Null{}, nil
	}
	return fromText(s, typ)
}

// Equal compares two values by type and content. Int and Float compare
// numerically so that 3 and 3.0 match.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return fa == fb
		}
		return false
	}
	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Bytes:
		bv, ok := b.(Bytes)
		return ok && string(av) == string(bv)
	}
	return false
}

// Number returns the numeric content of Int and Float values.
func Number(v Value) (float64, bool) {
	return number(v)
}

func number(v Value) (float64, bool) {
	switch n := v.(type) {
	case Int:
		return float64(n), true
	case Float:
		return float64(n), true
	}
	return 0, false
}
