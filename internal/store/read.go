package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/netmigrate/internal/ir"
)

// Search returns the rows of table matching where, in source order
// (ORDER BY OBJECTID). A nil fields slice selects every catalogued field,
// or every column for tables with no catalog entry.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) Search(ctx context.Context, table string, fields []string, where Predicate) ([]ir.Row, error) {
	cols, types, err := s.resolveColumns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", table, err)
	}

	if fields == nil {
		fields = make([]string, 0, len(cols))
		for _, c := range cols {
			if c != objectIDField {
				fields = append(fields, c)
			}
		}
	}
	for _, f := range append(slices.Clone(fields), predicateFields(where)...) {
		if !slices.Contains(cols, f) {
			return nil, fmt.Errorf("search %s: field %s: %w", table, f, ErrUnknownField)
		}
	}

	selectList := make([]string, len(fields))
	for i, f := range fields {
		selectList[i] = quoteIdent(f)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selectList, ", "), quoteIdent(table))

	clause, args, err := compileWhere(where)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", table, err)
	}
	if clause != "" {
		query += " WHERE " + clause
	}
	// Legacy tables without OBJECTID are read in storage order.
	if slices.Contains(cols, objectIDField) {
		query += " ORDER BY " + quoteIdent(objectIDField) + " ASC"
	}

	rows, err := s.db.QueryContext(ctx, s.bind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", table, err)
	}
	defer rows.Close()

	out, err := scanRows(rows, types)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", table, err)
	}
	return out, nil
}

// Columns lists the columns of any table, catalogued or not, in table order.
func (s *Store) Columns(ctx context.Context, table string) ([]string, error) {
	cols, _, err := s.resolveColumns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	return cols, nil
}

// Count returns the number of rows in table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	if err := s.requireTable(ctx, table); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Digest returns the content digest of table over all non-OBJECTID
// columns in source order, plus the row count.
func (s *Store) Digest(ctx context.Context, table string) (string, int, error) {
	rows, err := s.Search(ctx, table, nil, nil)
	if err != nil {
		return "", 0, fmt.Errorf("digest: %w", err)
	}
	d := ir.NewTableDigest()
	for _, r := range rows {
		if err := d.Add(r); err != nil {
			return "", 0, fmt.Errorf("digest %s: %w", table, err)
		}
	}
	return d.Sum(), d.Rows(), nil
}

const objectIDField = "OBJECTID"

// resolveColumns returns column names and declared types. Catalogued
// tables answer from memory; others are introspected with an empty query.
func (s *Store) resolveColumns(ctx context.Context, table string) ([]string, map[string]ir.FieldType, error) {
	if t, ok := s.catalog.tables[table]; ok {
		cols := []string{objectIDField}
		types := map[string]ir.FieldType{objectIDField: ir.FieldLong}
		if t.geometry.HasShape() {
			cols = append(cols, ir.ShapeField)
			types[ir.ShapeField] = ir.FieldGeometry
		}
		for _, f := range t.fields {
			cols = append(cols, f.Name)
			types[f.Name] = f.Type
		}
		return cols, types, nil
	}

	if err := s.requireTable(ctx, table); err != nil {
		return nil, nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table)+" WHERE 1 = 0")
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	return cols, map[string]ir.FieldType{}, nil
}

func (s *Store) requireTable(ctx context.Context, table string) error {
	if _, ok := s.catalog.tables[table]; ok {
		return nil
	}
	var n int
	if err := s.db.QueryRowContext(ctx, s.bind(s.dialect.exists), table).Scan(&n); err != nil {
		return fmt.Errorf("check table: %w", err)
	}
	if n == 0 {
		return ErrUnknownTable
	}
	return nil
}
