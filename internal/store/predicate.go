package store

import (
	"fmt"
	"strings"

	"github.com/roach88/netmigrate/internal/ir"
)

// Predicate is a sealed interface for row filters.
// Only Eq, Ne and And implement it.
type Predicate interface {
	predicate() // Sealed
}

// Eq matches rows where Field equals Value. A Null value matches nulls.
type Eq struct {
	Field string
	Value ir.Value
}

func (Eq) predicate() {}

// Ne matches rows where Field is not equal to Value. Rows where Field is
// null never match a non-null Value, as in SQL.
type Ne struct {
	Field string
	Value ir.Value
}

func (Ne) predicate() {}

// And matches rows satisfying every child. An empty And matches all rows.
type And []Predicate

func (And) predicate() {}

// compileWhere renders p as a WHERE clause body with "?" markers.
// A nil predicate compiles to "" (no filter).
func compileWhere(p Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, nil
	}
	switch pred := p.(type) {
	case Eq:
		if pred.Field == "" {
			return "", nil, fmt.Errorf("eq: empty field")
		}
		if ir.IsNull(pred.Value) {
			return quoteIdent(pred.Field) + " IS NULL", nil, nil
		}
		return quoteIdent(pred.Field) + " = ?", []any{ir.ToAny(pred.Value)}, nil
	case Ne:
		if pred.Field == "" {
			return "", nil, fmt.Errorf("ne: empty field")
		}
		if ir.IsNull(pred.Value) {
			return quoteIdent(pred.Field) + " IS NOT NULL", nil, nil
		}
		return quoteIdent(pred.Field) + " <> ?", []any{ir.ToAny(pred.Value)}, nil
	case And:
		if len(pred) == 0 {
			return "", nil, nil
		}
		parts := make([]string, 0, len(pred))
		var args []any
		for _, child := range pred {
			sql, childArgs, err := compileWhere(child)
			if err != nil {
				return "", nil, err
			}
			if sql == "" {
				continue
			}
			parts = append(parts, "("+sql+")")
			args = append(args, childArgs...)
		}
		return strings.Join(parts, " AND "), args, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate %T", p)
	}
}

// predicateFields lists every field a predicate references.
func predicateFields(p Predicate) []string {
	switch pred := p.(type) {
	case Eq:
		return []string{pred.Field}
	case Ne:
		return []string{pred.Field}
	case And:
		var out []string
		for _, child := range pred {
			out = append(out, predicateFields(child)...)
		}
		return out
	}
	return nil
}
