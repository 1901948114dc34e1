// Package migrate copies rows from legacy tables into the new schema.
package migrate

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/netmigrate/internal/ir"
	"github.com/roach88/netmigrate/internal/plan"
	"github.com/roach88/netmigrate/internal/recode"
	"github.com/roach88/netmigrate/internal/store"
)

// Source reads legacy tables.
type Source interface {
	Columns(ctx context.Context, table string) ([]string, error)
	Search(ctx context.Context, table string, fields []string, where store.Predicate) ([]ir.Row, error)
}

// Sink writes rows into the new schema.
type Sink interface {
	InsertRow(ctx context.Context, table string, row ir.Row) error
}

// CopySpec describes one table copy.
type CopySpec struct {
	// From is the legacy table.
	From string

	// To is the destination table.
	To string

	// Fields are copied in order under the same names.
	Fields []string

	// Where filters the source rows. Nil copies every row.
	Where store.Predicate

	// Rewrites change field values before insertion.
	Rewrites []plan.Rewrite

	// Transform, if set, runs after the rewrites and returns the row to
	// insert. It may add fields the destination defines.
	Transform func(ir.Row) (ir.Row, error)
}

// CopyRows copies every matching source row to the destination in source
// order and returns the number of rows written.
//
// Every field named by the CopySpec must exist in the source; a missing field
// is a ConfigError and nothing is copied.
func CopyRows(ctx context.Context, src Source, dst Sink, spec CopySpec) (int, error) {
	cols, err := src.Columns(ctx, spec.From)
	if err != nil {
		return 0, fmt.Errorf("copy %s: %w", spec.From, err)
	}
	for _, f := range spec.Fields {
		if !slices.Contains(cols, f) {
			return 0, plan.NewUnknownFieldError(spec.From, f, "copy field list")
		}
	}

	rewrite, err := compileRewrites(spec.Rewrites, spec.Fields)
	if err != nil {
		return 0, fmt.Errorf("copy %s: %w", spec.From, err)
	}

	rows, err := src.Search(ctx, spec.From, spec.Fields, spec.Where)
	if err != nil {
		return 0, fmt.Errorf("copy %s: %w", spec.From, err)
	}

	for i, r := range rows {
		if err := rewrite(r); err != nil {
			return i, fmt.Errorf("copy %s: row %d: %w", spec.From, i, err)
		}
		if spec.Transform != nil {
			if r, err = spec.Transform(r); err != nil {
				return i, fmt.Errorf("copy %s: row %d: %w", spec.From, i, err)
			}
		}
		if err := dst.InsertRow(ctx, spec.To, r); err != nil {
			return i, fmt.Errorf("copy %s to %s: row %d: %w", spec.From, spec.To, i, err)
		}
	}
	return len(rows), nil
}

// compileRewrites turns the rewrite list into one function applied to
// every row in place.
func compileRewrites(rewrites []plan.Rewrite, fields []string) (func(ir.Row) error, error) {
	steps := make([]func(ir.Row) error, 0, len(rewrites))
	for _, rw := range rewrites {
		if !slices.Contains(fields, rw.Field) {
			return nil, plan.NewUnknownFieldError("", rw.Field, "rewrite")
		}
		field := rw.Field
		switch rw.Kind {
		case plan.RewriteTIPID:
			steps = append(steps, func(r ir.Row) error {
				if r.IsNull(field) {
					return nil
				}
				tipid, err := recode.NormalizeTIPID(r.Str(field))
				if err != nil {
					return fmt.Errorf("field %s: %w", field, err)
				}
				r[field] = ir.String(tipid)
				return nil
			})
		case plan.RewriteMap:
			values := rw.Values
			steps = append(steps, func(r ir.Row) error {
				if r.IsNull(field) {
					return nil
				}
				if to, ok := values[r.Str(field)]; ok {
					r[field] = ir.String(to)
				}
				return nil
			})
		default:
			return nil, fmt.Errorf("unknown rewrite kind %q", rw.Kind)
		}
	}
	return func(r ir.Row) error {
		for _, step := range steps {
			if err := step(r); err != nil {
				return err
			}
		}
		return nil
	}, nil
}
