package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/netmigrate/internal/store"
)

// TableDigest is the content digest of one table.
type TableDigest struct {
	Table  string `json:"table"`
	Rows   int    `json:"rows"`
	Digest string `json:"digest"`
}

// NewDigestCommand creates the digest command.
func NewDigestCommand(rootOpts *RootOptions) *cobra.Command {
	var db string

	cmd := &cobra.Command{
		Use:   "digest [table...]",
		Short: "Print row counts and content digests of tables",
		Long: `Print the row count and content digest of each table.

Digests cover every column except OBJECTID in source order, so two
migrations of the same legacy data into fresh stores print identical
output. With no tables, every catalogued table is digested.

Example:
  netmigrate digest --db network.db
  netmigrate digest --db network.db hwynet_arc hwyproj_coding`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(rootOpts, db, args, cmd)
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "dataset store (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runDigest(opts *RootOptions, db string, tables []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	st, err := store.Open(db)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open store", err)
	}
	defer closeStore(st, "store")

	if len(tables) == 0 {
		tables = st.Tables()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	digests := make([]TableDigest, 0, len(tables))
	var b strings.Builder
	for _, t := range tables {
		sum, rows, err := st.Digest(ctx, t)
		if err != nil {
			return formatter.Fail(ExitFailure, "failed to digest "+t, err)
		}
		digests = append(digests, TableDigest{Table: t, Rows: rows, Digest: sum})
		fmt.Fprintf(&b, "%s\t%d\t%s\n", t, rows, sum)
	}
	return formatter.Result(strings.TrimSuffix(b.String(), "\n"), digests)
}
