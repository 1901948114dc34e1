package builder

import (
	"context"
	"fmt"

	"github.com/roach88/netmigrate/internal/ir"
	"github.com/roach88/netmigrate/internal/plan"
	"github.com/roach88/netmigrate/internal/schemasrc"
)

// BuildDomain creates one domain. Coded domains get their inline codes,
// or the codes of their domain file when none are inline; range domains
// get their plan bounds. Returns the number of codes added.
//
// Failures are returned as-is: a domain that cannot be created aborts the run.
func BuildDomain(ctx context.Context, st Store, d plan.DomainPlan, src schemasrc.Source) (int, error) {
	if err := st.CreateDomain(ctx, d.Spec()); err != nil {
		return 0, fmt.Errorf("build domain %s: %w", d.Name, err)
	}

	switch d.Kind {
	case ir.DomainRange:
		if d.Range == nil {
			return 0, &plan.ConfigError{Code: plan.ErrCodeInvalidPlan, Message: "range domain " + d.Name + " has no bounds"}
		}
		if err := st.SetRange(ctx, d.Name, d.Range.Min, d.Range.Max); err != nil {
			return 0, fmt.Errorf("build domain %s: %w", d.Name, err)
		}
		return 0, nil

	case ir.DomainCoded:
		codes := d.Codes
		if len(codes) == 0 {
			var err error
			codes, err = src.CodedValues(d.CodesSource())
			if err != nil {
				return 0, fmt.Errorf("build domain %s: %w", d.Name, err)
			}
		}
		for _, cv := range codes {
			if err := st.AddCodedValue(ctx, d.Name, cv.Code, cv.Description); err != nil {
				return 0, fmt.Errorf("build domain %s: %w", d.Name, err)
			}
		}
		return len(codes), nil

	default:
		return 0, &plan.ConfigError{Code: plan.ErrCodeInvalidPlan, Message: fmt.Sprintf("domain %s has unknown kind %q", d.Name, d.Kind)}
	}
}
