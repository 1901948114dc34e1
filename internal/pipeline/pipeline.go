// Package pipeline runs a full network migration: domains, tables in plan
// order with their population step, relationships, and the run record.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/netmigrate/internal/artifact"
	"github.com/roach88/netmigrate/internal/builder"
	"github.com/roach88/netmigrate/internal/ir"
	"github.com/roach88/netmigrate/internal/metrics"
	"github.com/roach88/netmigrate/internal/migrate"
	"github.com/roach88/netmigrate/internal/plan"
	"github.com/roach88/netmigrate/internal/recode"
	"github.com/roach88/netmigrate/internal/resolver"
	"github.com/roach88/netmigrate/internal/schemasrc"
	"github.com/roach88/netmigrate/internal/store"
)

// Destination is the output dataset store.
type Destination interface {
	builder.Store
	migrate.Sink
	Search(ctx context.Context, table string, fields []string, where store.Predicate) ([]ir.Row, error)
	CreateRelationship(ctx context.Context, rel ir.Relationship) error
	RecordRun(ctx context.Context, runID string, startedAt time.Time, report string) error
}

// Config wires a pipeline.
type Config struct {
	// Plan is the migration plan. It must validate.
	Plan *plan.Plan

	// Schema supplies table descriptors and domain codes.
	Schema schemasrc.Source

	// Audit receives the replacement audit extract. Nil skips writing it.
	Audit artifact.Sink

	// IDs generates the run ID. Nil uses UUIDv7.
	IDs IDGenerator

	// Metrics receives run counters. Nil creates a private set.
	Metrics *metrics.Run

	// Now stamps the run. Nil uses time.Now.
	Now func() time.Time
}

// Pipeline migrates a legacy network into a new store.
type Pipeline struct {
	plan    *plan.Plan
	schema  schemasrc.Source
	audit   artifact.Sink
	ids     IDGenerator
	metrics *metrics.Run
	now     func() time.Time
}

// New returns a pipeline for cfg.
func New(cfg Config) *Pipeline {
	p := &Pipeline{
		plan:    cfg.Plan,
		schema:  cfg.Schema,
		audit:   cfg.Audit,
		ids:     cfg.IDs,
		metrics: cfg.Metrics,
		now:     cfg.Now,
	}
	if p.ids == nil {
		p.ids = UUIDv7Generator{}
	}
	if p.metrics == nil {
		p.metrics = metrics.NewRun()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Metrics returns the counters of the pipeline's runs.
func (p *Pipeline) Metrics() *metrics.Run { return p.metrics }

// linkState is what the links stage leaves for the coding stage: lookups
// derived from the legacy links before the new link table was written.
type linkState struct {
	lookups recode.Lookups
}

// run carries the state of one Run call.
type run struct {
	*Pipeline
	src    migrate.Source
	dst    Destination
	report *Report
	links  map[string]linkState
}

// Run migrates src into dst. Stages run in order and any error aborts the
// run; tables already written stay written.
func (p *Pipeline) Run(ctx context.Context, src migrate.Source, dst Destination) (*Report, error) {
	if p.plan == nil {
		return nil, fmt.Errorf("pipeline: no plan")
	}
	if err := p.plan.Validate(); err != nil {
		return nil, err
	}

	r := &run{
		Pipeline: p,
		src:      src,
		dst:      dst,
		report:   &Report{RunID: p.ids.Generate(), StartedAt: p.now().UTC(), Tables: []TableReport{}},
		links:    make(map[string]linkState),
	}
	slog.Info("migration starting", "run_id", r.report.RunID,
		"domains", len(p.plan.Domains), "tables", len(p.plan.Tables))

	if err := r.buildDomains(ctx); err != nil {
		return nil, err
	}
	for _, t := range p.plan.Tables {
		if err := r.buildTable(ctx, t); err != nil {
			return nil, err
		}
	}
	if err := r.declareRelationships(ctx); err != nil {
		return nil, err
	}

	doc, err := r.report.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode run report: %w", err)
	}
	if err := dst.RecordRun(ctx, r.report.RunID, r.report.StartedAt, doc); err != nil {
		return nil, err
	}
	slog.Info("migration complete", "run_id", r.report.RunID,
		"replacements", r.report.Replacements, "skipped", r.report.Skipped)
	return r.report, nil
}

func (r *run) buildDomains(ctx context.Context) error {
	for _, d := range r.plan.Domains {
		n, err := builder.BuildDomain(ctx, r.dst, d, r.schema)
		if err != nil {
			return err
		}
		r.metrics.DomainsCreated.Inc()
		slog.Debug("domain created", "domain", d.Name, "kind", d.Kind, "codes", n)
	}
	r.report.Domains = len(r.plan.Domains)
	slog.Info("domains created", "count", r.report.Domains)
	return nil
}

func (r *run) buildTable(ctx context.Context, t plan.TablePlan) error {
	fields, err := r.schema.Fields(t.SchemaSource())
	if err != nil {
		return fmt.Errorf("table %s: %w", t.Name, err)
	}
	if err := builder.BuildTable(ctx, r.dst, t, fields); err != nil {
		return err
	}
	r.metrics.TablesBuilt.Inc()

	var rows int
	switch t.Role {
	case plan.RoleCopy:
		rows, err = migrate.CopyRows(ctx, r.src, r.dst, migrate.CopySpec{
			From:     t.SourceTable(),
			To:       t.Name,
			Fields:   t.Fields,
			Rewrites: t.Rewrites,
		})
	case plan.RoleLinks:
		rows, err = r.migrateLinks(ctx, t)
	case plan.RoleCoding:
		rows, err = r.migrateCoding(ctx, t)
	case plan.RoleEmpty:
	default:
		err = fmt.Errorf("unknown role %q", t.Role)
	}
	if err != nil {
		return fmt.Errorf("table %s: %w", t.Name, err)
	}

	r.metrics.RowsCopied.WithLabelValues(t.Name).Add(float64(rows))
	r.report.Tables = append(r.report.Tables, TableReport{Name: t.Name, Role: string(t.Role), Rows: rows})
	slog.Info("table migrated", "table", t.Name, "role", t.Role, "rows", rows)
	return nil
}

// migrateLinks snapshots the legacy links, then copies them with their
// recoded attributes merged in.
func (r *run) migrateLinks(ctx context.Context, t plan.TablePlan) (int, error) {
	legacy, err := r.src.Search(ctx, t.SourceTable(), nil, nil)
	if err != nil {
		return 0, err
	}
	index, err := recode.NewLegacyIndex(legacy)
	if err != nil {
		return 0, err
	}
	lookups := recode.NewLookups(index)
	r.links[t.Name] = linkState{lookups: lookups}

	nTruck, nClear := lookups.Sizes()
	slog.Debug("legacy links indexed", "links", index.Len(),
		"truck_restrictions", nTruck, "clearances", nClear)

	return migrate.CopyRows(ctx, r.src, r.dst, migrate.CopySpec{
		From:   t.SourceTable(),
		To:     t.Name,
		Fields: t.Fields,
		Transform: func(row ir.Row) (ir.Row, error) {
			recoded, err := recode.RecodeLink(row.Str(recode.FieldABB), index)
			if err != nil {
				return nil, err
			}
			row.Merge(recoded)
			r.metrics.LinksRecoded.Inc()
			r.report.LinksRecoded++
			return row, nil
		},
	})
}

// migrateCoding passes through the non-replacement coding records, then
// turns replacements into modify records against the new baseline links
// and writes the audit extract.
func (r *run) migrateCoding(ctx context.Context, t plan.TablePlan) (int, error) {
	state, ok := r.links[t.Links]
	if !ok {
		return 0, fmt.Errorf("links table %s has not been migrated", t.Links)
	}

	passed, err := migrate.CopyRows(ctx, r.src, r.dst, migrate.CopySpec{
		From:   t.SourceTable(),
		To:     t.Name,
		Fields: t.Fields,
		Where:  store.Ne{Field: resolver.FieldActionCode, Value: ir.String(recode.ReplaceActionCode)},
		Transform: func(row ir.Row) (ir.Row, error) {
			rec, err := resolver.PassThrough(row)
			if err != nil {
				return nil, err
			}
			rec = r.override(rec, state.lookups)
			r.metrics.CodingRecords.WithLabelValues(rec.Action.Raw()).Inc()
			return rec.Row(), nil
		},
	})
	if err != nil {
		return 0, err
	}
	r.report.PassThrough = passed

	newLinks, err := r.dst.Search(ctx, t.Links, nil, nil)
	if err != nil {
		return passed, err
	}
	index, err := resolver.NewBaselineIndex(newLinks)
	if err != nil {
		return passed, err
	}

	if err := requireColumns(ctx, r.src, t.SourceTable(), resolver.ReplaceFields); err != nil {
		return passed, err
	}
	replaceRows, err := r.src.Search(ctx, t.SourceTable(), resolver.ReplaceFields,
		store.Eq{Field: resolver.FieldActionCode, Value: ir.String(recode.ReplaceActionCode)})
	if err != nil {
		return passed, err
	}
	res, err := resolver.New(index).Resolve(replaceRows)
	if err != nil {
		return passed, err
	}

	written := passed
	for _, rec := range res.Records {
		rec = r.override(rec, state.lookups)
		if err := r.dst.InsertRow(ctx, t.Name, rec.Row()); err != nil {
			return written, fmt.Errorf("replacement for %s: %w", rec.ABB, err)
		}
		r.metrics.CodingRecords.WithLabelValues(rec.Action.Raw()).Inc()
		written++
	}

	r.report.Replacements = res.Mapping.Len()
	r.report.ReplacementRecords = len(res.Records)
	r.report.Skipped = res.Skipped
	r.metrics.Replacements.Add(float64(res.Mapping.Len()))
	r.metrics.SkippedReplacements.Add(float64(res.Skipped))
	slog.Info("links replaced", "replacements", res.Mapping.Len(),
		"records", len(res.Records), "skipped", res.Skipped)
	for _, key := range res.Mapping.Keys() {
		slog.Debug("baseline link replaces", "abb", key, "replaces", res.Mapping.Replaces(key))
	}

	if err := r.writeAudit(ctx, newLinks, res.Mapping); err != nil {
		return written, err
	}
	return written, nil
}

func (r *run) override(rec resolver.ProjectCoding, lk recode.Lookups) resolver.ProjectCoding {
	out, res := resolver.ApplyOverrides(rec, lk)
	if res.Mode {
		r.report.ModeOverrides++
		r.metrics.Overrides.WithLabelValues(metrics.OverrideMode).Inc()
	}
	if res.Clearance {
		r.report.ClearanceOverrides++
		r.metrics.Overrides.WithLabelValues(metrics.OverrideClearance).Inc()
	}
	if res.Changed() {
		slog.Debug("coding override", "tipid", rec.TIPID, "abb", rec.ABB,
			"mode", res.Mode, "clearance", res.Clearance)
	}
	return out
}

func (r *run) writeAudit(ctx context.Context, newLinks []ir.Row, m *resolver.ReplacementMapping) error {
	if r.audit == nil {
		slog.Debug("no audit sink, skipping audit extract")
		return nil
	}
	data, err := artifact.EncodeCSV(resolver.AuditColumns, resolver.AuditExtract(newLinks, m))
	if err != nil {
		return fmt.Errorf("audit extract: %w", err)
	}
	loc, err := r.audit.Put(ctx, r.plan.AuditFileName(), data)
	if err != nil {
		return fmt.Errorf("audit extract: %w", err)
	}
	r.report.AuditLocation = loc
	slog.Info("audit extract written", "location", loc)
	return nil
}

func (r *run) declareRelationships(ctx context.Context) error {
	for _, rel := range r.plan.Relationships {
		if err := r.dst.CreateRelationship(ctx, rel); err != nil {
			return err
		}
	}
	r.report.Relationships = len(r.plan.Relationships)
	slog.Info("relationships declared", "count", r.report.Relationships)
	return nil
}

// requireColumns fails with a ConfigError when table lacks a field.
func requireColumns(ctx context.Context, src migrate.Source, table string, fields []string) error {
	cols, err := src.Columns(ctx, table)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if !slices.Contains(cols, f) {
			return plan.NewUnknownFieldError(table, f, "replacement reader")
		}
	}
	return nil
}
