package builder

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/netmigrate/internal/ir"
	"github.com/roach88/netmigrate/internal/plan"
)

// BuildTable creates a table, adds every descriptor field in order, then
// marks the table's non-nullable fields. The nullability list is checked
// against the descriptors before anything is created.
func BuildTable(ctx context.Context, st Store, t plan.TablePlan, fields []ir.FieldDescriptor) error {
	required, err := NonNullableFields(t, fields)
	if err != nil {
		return err
	}

	if err := st.CreateTable(ctx, t.Name, t.Geometry); err != nil {
		return fmt.Errorf("build table %s: %w", t.Name, err)
	}
	if err := st.AddFields(ctx, t.Name, fields); err != nil {
		return fmt.Errorf("build table %s: %w", t.Name, err)
	}
	// Only after every field exists.
	for _, name := range required {
		if err := st.SetNullable(ctx, t.Name, name, false); err != nil {
			return fmt.Errorf("build table %s: %w", t.Name, err)
		}
	}
	return nil
}

// NonNullableFields resolves the table's nullability settings against its
// descriptors, in descriptor order for "*" and list order otherwise.
// Naming a field the descriptors lack is a ConfigError.
func NonNullableFields(t plan.TablePlan, fields []ir.FieldDescriptor) ([]string, error) {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}

	for _, n := range t.Nullable {
		if !slices.Contains(names, n) {
			return nil, plan.NewUnknownFieldError(t.Name, n, "nullable exception list")
		}
	}

	if slices.Contains(t.NonNullable, plan.AllFields) {
		out := make([]string, 0, len(names))
		for _, n := range names {
			if !slices.Contains(t.Nullable, n) {
				out = append(out, n)
			}
		}
		return out, nil
	}

	for _, n := range t.NonNullable {
		if !slices.Contains(names, n) {
			return nil, plan.NewUnknownFieldError(t.Name, n, "non-nullable list")
		}
	}
	return slices.Clone(t.NonNullable), nil
}
