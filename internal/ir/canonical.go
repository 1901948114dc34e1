package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText returns s in Unicode NFC form.
// Descriptor aliases, domain descriptions and free-text attributes from
// legacy exports mix composed and decomposed forms; comparing or hashing
// them requires one form.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

// MarshalCanonicalRow renders a row as canonical JSON: keys sorted,
// strings NFC normalized, HTML escaping disabled, floats in shortest
// round-trip form and geometry hex encoded. Two rows with the same
// content always produce identical bytes.
func MarshalCanonicalRow(r Row) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalCanonicalString(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalCanonicalValue(r[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalCanonicalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return marshalCanonicalString(string(val))
	case Int:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case Float:
		return []byte(strconv.FormatFloat(float64(val), 'g', -1, 64)), nil
	case Bytes:
		return marshalCanonicalString(fmt.Sprintf("hex:%x", []byte(val)))
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// marshalCanonicalString NFC normalizes and JSON-encodes without HTML escaping.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(NormalizeText(s)); err != nil {
		return nil, err
	}
	// Encoder adds a trailing newline
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
