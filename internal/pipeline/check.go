package pipeline

import (
	"fmt"
	"slices"

	"github.com/roach88/netmigrate/internal/builder"
	"github.com/roach88/netmigrate/internal/ir"
	"github.com/roach88/netmigrate/internal/plan"
	"github.com/roach88/netmigrate/internal/schemasrc"
)

// CheckResult counts what a preflight check read.
type CheckResult struct {
	Domains int `json:"domains"`
	Codes   int `json:"codes"`
	Tables  int `json:"tables"`
	Fields  int `json:"fields"`
}

// Check loads every descriptor and domain file p references and resolves
// its nullability lists without touching a store. Problems are collected
// rather than returned on the first one, so an operator sees them all.
func Check(p *plan.Plan, src schemasrc.Source) (CheckResult, []error) {
	var res CheckResult
	if err := p.Validate(); err != nil {
		return res, unjoin(err)
	}

	var errs []error
	declared := make(map[string]bool, len(p.Domains))
	for _, d := range p.Domains {
		declared[d.Name] = true
		res.Domains++
		if d.Kind != ir.DomainCoded {
			continue
		}
		if len(d.Codes) > 0 {
			res.Codes += len(d.Codes)
			continue
		}
		codes, err := src.CodedValues(d.CodesSource())
		if err != nil {
			errs = append(errs, fmt.Errorf("domain %s: %w", d.Name, err))
			continue
		}
		res.Codes += len(codes)
	}

	for _, t := range p.Tables {
		fields, err := src.Fields(t.SchemaSource())
		if err != nil {
			errs = append(errs, fmt.Errorf("table %s: %w", t.Name, err))
			continue
		}
		res.Tables++
		res.Fields += len(fields)

		if _, err := builder.NonNullableFields(t, fields); err != nil {
			errs = append(errs, err)
		}

		names := make([]string, len(fields))
		for i, f := range fields {
			names[i] = f.Name
			if dom := f.DomainName(); dom != "" && !declared[dom] {
				errs = append(errs, &plan.ConfigError{
					Code:    plan.ErrCodeBadDescriptor,
					Message: "descriptor references undeclared domain " + dom,
					Table:   t.Name,
					Field:   f.Name,
				})
			}
		}
		for _, f := range t.Fields {
			if f == ir.ShapeField {
				if t.Geometry == ir.GeometryNone {
					errs = append(errs, plan.NewUnknownFieldError(t.Name, f, "plan field list"))
				}
				continue
			}
			if !slices.Contains(names, f) {
				errs = append(errs, plan.NewUnknownFieldError(t.Name, f, "plan field list"))
			}
		}
	}
	return res, errs
}

// unjoin splits an errors.Join result back into its parts.
func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
