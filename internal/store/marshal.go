package store

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/roach88/netmigrate/internal/ir"
)

// quoteIdent double-quotes a table or column name. Legacy schemas use
// mixed-case names (subzone17, POINT_X) that must survive verbatim.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// bind rewrites "?" markers into the dialect's placeholder syntax.
// Markers inside quoted literals or identifiers are left alone.
func (s *Store) bind(query string) string {
	if s.dialect.name != dialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	var quote rune
	for _, r := range query {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '?':
			n++
			b.WriteString(s.dialect.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullableInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullableString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// coerce converts v to the representation of a field type.
// Integer fields truncate fractional input the way the legacy tooling
// cast doubles into SHORT columns.
func coerce(v ir.Value, typ ir.FieldType) (ir.Value, error) {
	if ir.IsNull(v) {
		return ir.Null{}, nil
	}
	switch {
	case typ.IsInteger():
		switch val := v.(type) {
		case ir.Int:
			return val, nil
		case ir.Float:
			f := float64(val)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("cannot store %v in %s field", f, typ)
			}
			return ir.Int(int64(f)), nil
		case ir.String:
			text := strings.TrimSpace(string(val))
			if text == "" {
				return ir.Null{}, nil
			}
			if n, err := strconv.ParseInt(text, 10, 64); err == nil {
				return ir.Int(n), nil
			}
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot store %q in %s field", text, typ)
			}
			return ir.Int(int64(f)), nil
		}
	case typ.IsFloat():
		switch val := v.(type) {
		case ir.Float:
			return val, nil
		case ir.Int:
			return ir.Float(float64(val)), nil
		case ir.String:
			text := strings.TrimSpace(string(val))
			if text == "" {
				return ir.Null{}, nil
			}
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot store %q in %s field", text, typ)
			}
			return ir.Float(f), nil
		}
	case typ == ir.FieldGeometry:
		if b, ok := v.(ir.Bytes); ok {
			return b, nil
		}
	default:
		switch val := v.(type) {
		case ir.String:
			return val, nil
		case ir.Int, ir.Float:
			return ir.String(val.Text()), nil
		}
	}
	return nil, fmt.Errorf("cannot store %T in %s field", v, typ)
}

// textLen counts characters, not bytes, matching declared text lengths.
func textLen(v ir.Value) int {
	if s, ok := v.(ir.String); ok {
		return utf8.RuneCountInString(string(s))
	}
	return 0
}

// scanRows materialises a result set into rows using the declared type of
// each column when known. Results are fully read before returning so that
// callers may write while holding them.
func scanRows(rows *sql.Rows, types map[string]ir.FieldType) ([]ir.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	out := []ir.Row{}
	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(ir.Row, len(cols))
		for i, col := range cols {
			typ := types[col]
			if col == ir.ShapeField {
				typ = ir.FieldGeometry
			}
			v, err := ir.FromAny(raw[i], typ)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col, err)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
