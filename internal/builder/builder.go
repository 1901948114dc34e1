// Package builder registers domains and creates tables in the dataset
// store from plan entries and schema descriptors.
package builder

import (
	"context"

	"github.com/roach88/netmigrate/internal/ir"
)

// Store is the part of the dataset store the builders write through.
type Store interface {
	CreateDomain(ctx context.Context, spec ir.DomainSpec) error
	AddCodedValue(ctx context.Context, domain, code, description string) error
	SetRange(ctx context.Context, domain string, min, max float64) error
	CreateTable(ctx context.Context, name string, geometry ir.GeometryKind) error
	AddFields(ctx context.Context, table string, fields []ir.FieldDescriptor) error
	SetNullable(ctx context.Context, table, field string, nullable bool) error
}
