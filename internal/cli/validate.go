package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/netmigrate/internal/pipeline"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                 `json:"valid"`
	Counts pipeline.CheckResult `json:"counts"`
	Errors []string             `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a plan and its descriptor files without migrating",
		Long: `Check a migration plan without writing anything.

Loads the plan and every table descriptor and domain code file it
references, then checks nullability lists, copy field lists and domain
references. All problems are reported together.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, opts, cmd)
		},
	}
	opts.addFlags(cmd)

	return cmd
}

func runValidate(rootOpts *RootOptions, opts *PlanOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	p, schema, err := opts.load()
	if err != nil {
		return formatter.Fail(ExitFailure, "failed to load plan", err)
	}
	formatter.VerboseLog("Plan: %d domains, %d tables, %d relationships",
		len(p.Domains), len(p.Tables), len(p.Relationships))

	counts, errs := pipeline.Check(p, schema)
	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		if formatter.Format == "json" {
			if err := formatter.Error(ErrCodeConfig, fmt.Sprintf("%d problem(s) found", len(errs)),
				ValidationResult{Valid: false, Counts: counts, Errors: msgs}); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(formatter.Writer, "Validation failed with %d problem(s):\n", len(errs))
			for _, m := range msgs {
				fmt.Fprintf(formatter.Writer, "  - %s\n", m)
			}
		}
		return NewExitError(ExitFailure, "validation failed")
	}

	text := fmt.Sprintf("Plan valid: %d domains (%d codes), %d tables (%d fields)",
		counts.Domains, counts.Codes, counts.Tables, counts.Fields)
	return formatter.Result(text, ValidationResult{Valid: true, Counts: counts})
}
