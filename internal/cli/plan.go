package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/netmigrate/internal/plan"
	"github.com/roach88/netmigrate/internal/schemasrc"
)

// PlanOptions holds the flags that locate a plan and its descriptor files.
type PlanOptions struct {
	PlanFile  string
	SchemaDir string
	DomainDir string
}

func (o *PlanOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.PlanFile, "plan", "", "migration plan (.yaml, .yml or .cue; default: embedded plan)")
	cmd.Flags().StringVar(&o.SchemaDir, "schema-dir", "schema", "directory of table descriptor CSV files")
	cmd.Flags().StringVar(&o.DomainDir, "domain-dir", "domains", "directory of domain code CSV files")
}

// load returns the plan and a schema source reading in the plan's encoding.
func (o *PlanOptions) load() (*plan.Plan, *schemasrc.Dir, error) {
	var (
		p   *plan.Plan
		err error
	)
	if o.PlanFile != "" {
		p, err = plan.Load(o.PlanFile)
	} else {
		p, err = plan.Default()
	}
	if err != nil {
		return nil, nil, err
	}
	src, err := schemasrc.NewDir(o.SchemaDir, o.DomainDir, p.Encoding)
	if err != nil {
		return nil, nil, err
	}
	return p, src, nil
}
