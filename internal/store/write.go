package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/netmigrate/internal/ir"
)

// Insert writes one row. fields and values are zipped; catalogued fields
// not named take their schema default. The finished row must satisfy
// nullability, length and domain rules or nothing is written.
func (s *Store) Insert(ctx context.Context, table string, fields []string, values []ir.Value) error {
	if len(fields) != len(values) {
		return fmt.Errorf("insert into %s: %d fields but %d values", table, len(fields), len(values))
	}
	return s.InsertRow(ctx, table, ir.NewRow(fields, values))
}

// InsertRow is Insert for a row already keyed by field name.
func (s *Store) InsertRow(ctx context.Context, table string, row ir.Row) error {
	t, ok := s.catalog.tables[table]
	if !ok {
		return fmt.Errorf("insert into %s: %w", table, ErrUnknownTable)
	}

	full, err := s.completeRow(t, row)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}

	cols := make([]string, 0, len(full))
	marks := make([]string, 0, len(full))
	args := make([]any, 0, len(full))
	if t.geometry.HasShape() {
		cols = append(cols, quoteIdent(ir.ShapeField))
		marks = append(marks, "?")
		args = append(args, ir.ToAny(full.Get(ir.ShapeField)))
	}
	for _, f := range t.fields {
		cols = append(cols, quoteIdent(f.Name))
		marks = append(marks, "?")
		args = append(args, ir.ToAny(full.Get(f.Name)))
	}

	var query string
	if len(cols) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", quoteIdent(table))
	} else {
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(table), strings.Join(cols, ", "), strings.Join(marks, ", "))
	}
	if _, err := s.db.ExecContext(ctx, s.bind(query), args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// Update runs a read-modify-write over the rows matching where, in source
// order. fn receives the requested fields of each row and returns the
// fields to change, or nil to leave the row alone. All writes commit
// together. Returns the number of rows changed.
func (s *Store) Update(ctx context.Context, table string, fields []string, where Predicate, fn func(ir.Row) (ir.Row, error)) (int, error) {
	t, ok := s.catalog.tables[table]
	if !ok {
		return 0, fmt.Errorf("update %s: %w", table, ErrUnknownTable)
	}

	// Materialise first: the SQLite store runs on a single connection.
	rows, err := s.Search(ctx, table, append([]string{objectIDField}, fields...), where)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", table, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("update %s: begin tx: %w", table, err)
	}
	defer tx.Rollback() // No-op if committed

	updated := 0
	for _, r := range rows {
		id := r.Get(objectIDField)
		delete(r, objectIDField)

		changes, err := fn(r)
		if err != nil {
			return 0, fmt.Errorf("update %s: OBJECTID %s: %w", table, id.Text(), err)
		}
		if len(changes) == 0 {
			continue
		}

		sets := make([]string, 0, len(changes))
		args := make([]any, 0, len(changes)+1)
		for _, name := range changes.Keys() {
			v, err := s.checkValue(t, name, changes[name])
			if err != nil {
				return 0, fmt.Errorf("update %s: OBJECTID %s: %w", table, id.Text(), err)
			}
			sets = append(sets, quoteIdent(name)+" = ?")
			args = append(args, ir.ToAny(v))
		}
		args = append(args, ir.ToAny(id))

		query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
			quoteIdent(table), strings.Join(sets, ", "), quoteIdent(objectIDField))
		if _, err := tx.ExecContext(ctx, s.bind(query), args...); err != nil {
			return 0, fmt.Errorf("update %s: OBJECTID %s: %w", table, id.Text(), err)
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("update %s: commit: %w", table, err)
	}
	return updated, nil
}

// completeRow fills defaults for unnamed fields and checks every value.
func (s *Store) completeRow(t *tableMeta, row ir.Row) (ir.Row, error) {
	for name := range row {
		if name == ir.ShapeField && t.geometry.HasShape() {
			continue
		}
		if _, ok := t.field(name); !ok {
			return nil, fmt.Errorf("field %s: %w", name, ErrUnknownField)
		}
	}

	full := make(ir.Row, len(t.fields)+1)
	if t.geometry.HasShape() {
		shape, err := coerce(row.Get(ir.ShapeField), ir.FieldGeometry)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", ir.ShapeField, err)
		}
		full[ir.ShapeField] = shape
	}
	for _, f := range t.fields {
		v, named := row[f.Name]
		if !named {
			def, err := f.DefaultValue()
			if err != nil {
				return nil, fmt.Errorf("field %s: default: %w", f.Name, err)
			}
			v = def
		}
		checked, err := s.checkValue(t, f.Name, v)
		if err != nil {
			return nil, err
		}
		full[f.Name] = checked
	}
	return full, nil
}

// checkValue coerces v to the field type and enforces nullability, text
// length, coded-value membership and range bounds.
func (s *Store) checkValue(t *tableMeta, name string, v ir.Value) (ir.Value, error) {
	if name == ir.ShapeField && t.geometry.HasShape() {
		out, err := coerce(v, ir.FieldGeometry)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		return out, nil
	}
	f, ok := t.field(name)
	if !ok {
		return nil, fmt.Errorf("field %s: %w", name, ErrUnknownField)
	}

	out, err := coerce(v, f.Type)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", name, err)
	}
	if ir.IsNull(out) {
		if !f.nullable {
			return nil, fmt.Errorf("field %s: %w", name, ErrNotNullable)
		}
		return out, nil
	}

	if f.Length != nil && f.Type == ir.FieldText && textLen(out) > *f.Length {
		return nil, fmt.Errorf("field %s: %q longer than %d: %w", name, out.Text(), *f.Length, ErrValueTooLong)
	}

	dom := f.DomainName()
	if dom == "" {
		return out, nil
	}
	d, ok := s.catalog.domains[dom]
	if !ok {
		return nil, fmt.Errorf("field %s: domain %s: %w", name, dom, ErrUnknownDomain)
	}
	switch d.spec.Kind {
	case ir.DomainCoded:
		if !d.codeSet[out.Text()] {
			return nil, fmt.Errorf("field %s: %q not a code of %s: %w", name, out.Text(), dom, ErrDomainViolation)
		}
	case ir.DomainRange:
		if !d.hasRange {
			break
		}
		n, ok := ir.Number(out)
		if !ok || n < d.min || n > d.max {
			return nil, fmt.Errorf("field %s: %s outside [%v, %v] of %s: %w",
				name, out.Text(), d.min, d.max, dom, ErrDomainViolation)
		}
	}
	return out, nil
}
