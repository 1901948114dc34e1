// Package metrics counts what a migration run did.
//
// Counters live on a private registry so that tests and repeated runs in
// one process never share state. The registry can be written in the text
// exposition format for node_exporter's textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "netmigrate"

// Override kinds.
const (
	OverrideMode      = "mode"
	OverrideClearance = "clearance"
)

// Run holds the counters of one migration run.
type Run struct {
	registry *prometheus.Registry

	RowsCopied          *prometheus.CounterVec
	LinksRecoded        prometheus.Counter
	CodingRecords       *prometheus.CounterVec
	Replacements        prometheus.Counter
	SkippedReplacements prometheus.Counter
	Overrides           *prometheus.CounterVec
	DomainsCreated      prometheus.Counter
	TablesBuilt         prometheus.Counter
}

// NewRun creates the run counters on a fresh registry.
func NewRun() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		RowsCopied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Rows written to each destination table.",
		}, []string{"table"}),
		LinksRecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_recoded_total",
			Help:      "Links whose attributes were recoded.",
		}),
		CodingRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coding_records_total",
			Help:      "Project coding records written, by action code.",
		}, []string{"action"}),
		Replacements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replacements_total",
			Help:      "Distinct baseline links that replace legacy links.",
		}),
		SkippedReplacements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replacements_skipped_total",
			Help:      "Replace rows whose node pair is not a baseline link.",
		}),
		Overrides: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overrides_total",
			Help:      "Coding overrides applied, by kind.",
		}, []string{"kind"}),
		DomainsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domains_created_total",
			Help:      "Attribute domains created.",
		}),
		TablesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_built_total",
			Help:      "Tables created.",
		}),
	}
	r.registry.MustRegister(
		r.RowsCopied, r.LinksRecoded, r.CodingRecords, r.Replacements,
		r.SkippedReplacements, r.Overrides, r.DomainsCreated, r.TablesBuilt,
	)
	return r
}

// Registry returns the registry holding the run counters.
func (r *Run) Registry() *prometheus.Registry { return r.registry }

// WriteFile writes the counters to path in the text exposition format.
func (r *Run) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
