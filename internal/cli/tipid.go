package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/netmigrate/internal/recode"
)

// TIPIDResult pairs a raw project identifier with its normalized form.
type TIPIDResult struct {
	Raw   string `json:"raw"`
	TIPID string `json:"tipid"`
}

// NewTIPIDCommand creates the tipid command.
func NewTIPIDCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tipid <raw>...",
		Short: "Print normalized project identifiers",
		Long: `Print each raw project identifier in its normalized XX-XX-XXXX form,
zero-padded on the left to 8 characters.

Example:
  netmigrate tipid 1234 12345678`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			results := make([]TIPIDResult, 0, len(args))
			lines := make([]string, 0, len(args))
			for _, raw := range args {
				tipid, err := recode.NormalizeTIPID(raw)
				if err != nil {
					return formatter.Fail(ExitFailure, fmt.Sprintf("invalid TIPID %q", raw), err)
				}
				results = append(results, TIPIDResult{Raw: raw, TIPID: tipid})
				lines = append(lines, tipid)
			}
			return formatter.Result(strings.Join(lines, "\n"), results)
		},
	}
}
