package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/netmigrate/internal/artifact"
	"github.com/roach88/netmigrate/internal/pipeline"
	"github.com/roach88/netmigrate/internal/store"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	PlanOptions
	Source      string
	Dest        string
	AuditDest   string
	MetricsFile string
	S3          artifact.S3Config

	// IDs overrides the run ID generator (for testing). Nil uses UUIDv7.
	IDs pipeline.IDGenerator

	// Now overrides the run clock (for testing).
	Now func() time.Time
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return newMigrateCommand(&MigrateOptions{RootOptions: rootOpts})
}

func newMigrateCommand(opts *MigrateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate a legacy network into a new dataset",
		Long: `Migrate a legacy network dataset into a new dataset store.

Creates every domain and table of the plan in order, copies and recodes
the legacy rows, resolves link replacements in the project coding table,
declares relationships and writes the replacement audit extract.

The destination must be a new store. Stores are SQLite file paths or
postgres:// URLs.

Example:
  netmigrate migrate --source legacy.db --dest network.db
  netmigrate migrate --source legacy.db --dest postgres://localhost/network \
    --audit-dest s3://audits/2024 --metrics-file /var/lib/node_exporter/netmigrate.prom`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts, cmd)
		},
	}

	opts.PlanOptions.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Source, "source", "", "legacy dataset store (required)")
	cmd.Flags().StringVar(&opts.Dest, "dest", "", "output dataset store (required)")
	cmd.Flags().StringVar(&opts.AuditDest, "audit-dest", ".", "audit extract destination: a directory or s3://bucket/prefix")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write run metrics in Prometheus text format")
	cmd.Flags().StringVar(&opts.S3.Region, "s3-region", "", "S3 region (default: AWS_REGION or the shared config profile)")
	cmd.Flags().StringVar(&opts.S3.Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL")
	cmd.Flags().BoolVar(&opts.S3.PathStyle, "s3-path-style", false, "use path-style S3 addressing")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("dest")

	return cmd
}

func runMigrate(opts *MigrateOptions, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions, cmd.ErrOrStderr())
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Source == opts.Dest {
		return formatter.Fail(ExitCommandError, "invalid stores", fmt.Errorf("source and destination are both %s", opts.Source))
	}

	p, schema, err := opts.load()
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to load plan", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("opening stores", "source", opts.Source, "dest", opts.Dest)
	src, err := store.Open(opts.Source)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open source store", err)
	}
	defer closeStore(src, "source")

	dst, err := store.Open(opts.Dest)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open destination store", err)
	}
	defer closeStore(dst, "destination")
	if existing := dst.Tables(); len(existing) > 0 {
		return formatter.Fail(ExitCommandError, "destination is not empty",
			fmt.Errorf("%d tables already exist: %s", len(existing), strings.Join(existing, ", ")))
	}

	audit, err := artifact.Open(ctx, opts.AuditDest, artifact.Options{S3: opts.S3})
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open audit destination", err)
	}

	pl := pipeline.New(pipeline.Config{
		Plan:   p,
		Schema: schema,
		Audit:  audit,
		IDs:    opts.IDs,
		Now:    opts.Now,
	})
	report, err := pl.Run(ctx, src, dst)
	if err != nil {
		return formatter.Fail(ExitFailure, "migration failed", err)
	}

	if opts.MetricsFile != "" {
		if err := pl.Metrics().WriteFile(opts.MetricsFile); err != nil {
			return formatter.Fail(ExitFailure, "failed to write metrics", err)
		}
		slog.Info("metrics written", "path", opts.MetricsFile)
	}

	return formatter.Result(migrateSummary(report), report)
}

func migrateSummary(r *pipeline.Report) string {
	var b strings.Builder
	rows := 0
	for _, t := range r.Tables {
		rows += t.Rows
	}
	fmt.Fprintf(&b, "Run %s: %d domains, %d tables, %d rows\n", r.RunID, r.Domains, len(r.Tables), rows)
	fmt.Fprintf(&b, "Links recoded: %d\n", r.LinksRecoded)
	fmt.Fprintf(&b, "Replacements: %d (%d records, %d skipped)\n", r.Replacements, r.ReplacementRecords, r.Skipped)
	fmt.Fprintf(&b, "Overrides: %d mode, %d clearance", r.ModeOverrides, r.ClearanceOverrides)
	if r.AuditLocation != "" {
		fmt.Fprintf(&b, "\nAudit extract: %s", r.AuditLocation)
	}
	return b.String()
}

func closeStore(s *store.Store, name string) {
	if err := s.Close(); err != nil {
		slog.Error("error closing store", "store", name, "error", err)
	}
}
