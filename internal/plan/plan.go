package plan

import (
	"errors"
	"slices"
	"strings"

	"github.com/roach88/netmigrate/internal/ir"
)

// Role says how a table is populated.
type Role string

const (
	// RoleCopy copies the listed fields from the legacy table, applying rewrites.
	RoleCopy Role = "copy"
	// RoleLinks copies the listed fields and recodes the link attributes.
	RoleLinks Role = "links"
	// RoleCoding migrates project coding and resolves link replacements.
	RoleCoding Role = "coding"
	// RoleEmpty creates the schema only.
	RoleEmpty Role = "empty"
)

// AllFields in a non-nullable list marks every descriptor field, minus the
// table's Nullable exceptions.
const AllFields = "*"

// DefaultAuditFile is the name of the audit extract when the plan gives none.
const DefaultAuditFile = "replaced_abbs.csv"

// Plan describes one migration run: the domains to create, the tables to
// build in order and the relationships to declare.
type Plan struct {
	Encoding      string            `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	AuditFile     string            `json:"audit_file,omitempty" yaml:"audit_file,omitempty"`
	Domains       []DomainPlan      `json:"domains" yaml:"domains"`
	Tables        []TablePlan       `json:"tables" yaml:"tables"`
	Relationships []ir.Relationship `json:"relationships,omitempty" yaml:"relationships,omitempty"`
}

// DomainPlan describes one domain. Coded domains take their codes inline
// or from a domain file; range domains carry their bounds here.
type DomainPlan struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	BaseType    ir.FieldType    `json:"base_type" yaml:"base_type"`
	Kind        ir.DomainKind   `json:"kind" yaml:"kind"`
	Policy      ir.MergePolicy  `json:"policy,omitempty" yaml:"policy,omitempty"`
	CodesFile   string          `json:"codes_file,omitempty" yaml:"codes_file,omitempty"`
	Codes       []ir.CodedValue `json:"codes,omitempty" yaml:"codes,omitempty"`
	Range       *Range          `json:"range,omitempty" yaml:"range,omitempty"`
}

// Range holds inclusive domain bounds.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Spec returns the store-facing domain definition.
func (d DomainPlan) Spec() ir.DomainSpec {
	policy := d.Policy
	if policy == "" {
		policy = ir.PolicyDefault
	}
	return ir.DomainSpec{
		Name:        d.Name,
		Description: d.Description,
		BaseType:    d.BaseType,
		Kind:        d.Kind,
		Policy:      policy,
	}
}

// CodesSource returns the domain file stem holding this domain's codes.
func (d DomainPlan) CodesSource() string {
	if d.CodesFile != "" {
		return d.CodesFile
	}
	return d.Name
}

// TablePlan describes one target table.
type TablePlan struct {
	Name        string          `json:"name" yaml:"name"`
	Geometry    ir.GeometryKind `json:"geometry" yaml:"geometry"`
	Role        Role            `json:"role" yaml:"role"`
	Schema      string          `json:"schema,omitempty" yaml:"schema,omitempty"`
	Source      string          `json:"source,omitempty" yaml:"source,omitempty"`
	Links       string          `json:"links,omitempty" yaml:"links,omitempty"`
	Fields      []string        `json:"fields,omitempty" yaml:"fields,omitempty"`
	NonNullable []string        `json:"non_nullable,omitempty" yaml:"non_nullable,omitempty"`
	Nullable    []string        `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Rewrites    []Rewrite       `json:"rewrites,omitempty" yaml:"rewrites,omitempty"`
}

// SchemaSource returns the descriptor file stem for the table.
func (t TablePlan) SchemaSource() string {
	if t.Schema != "" {
		return t.Schema
	}
	return t.Name
}

// SourceTable returns the legacy table the rows come from.
func (t TablePlan) SourceTable() string {
	if t.Source != "" {
		return t.Source
	}
	return t.Name
}

// RewriteKind names a per-row rewrite applied while copying.
type RewriteKind string

const (
	// RewriteTIPID normalizes a project identifier.
	RewriteTIPID RewriteKind = "tipid"
	// RewriteMap replaces listed text values.
	RewriteMap RewriteKind = "map"
)

// Rewrite changes one field of every copied row.
type Rewrite struct {
	Field  string            `json:"field" yaml:"field"`
	Kind   RewriteKind       `json:"kind" yaml:"kind"`
	Values map[string]string `json:"values,omitempty" yaml:"values,omitempty"`
}

// Table returns the plan for a table by name.
func (p *Plan) Table(name string) (TablePlan, bool) {
	for _, t := range p.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TablePlan{}, false
}

// Domain returns the plan for a domain by name.
func (p *Plan) Domain(name string) (DomainPlan, bool) {
	for _, d := range p.Domains {
		if d.Name == name {
			return d, true
		}
	}
	return DomainPlan{}, false
}

// AuditFileName returns the audit extract file name.
func (p *Plan) AuditFileName() string {
	if p.AuditFile != "" {
		return p.AuditFile
	}
	return DefaultAuditFile
}

// Validate checks the plan for internal consistency. Files are not read.
// All problems are reported together.
func (p *Plan) Validate() error {
	var errs []error

	switch strings.ToLower(p.Encoding) {
	case "", "utf-8", "utf8", "windows-1252", "cp1252":
	default:
		errs = append(errs, invalidf("unsupported encoding %q", p.Encoding))
	}

	domains := make(map[string]bool, len(p.Domains))
	for i, d := range p.Domains {
		if d.Name == "" {
			errs = append(errs, invalidf("domain %d: missing name", i))
			continue
		}
		if domains[d.Name] {
			errs = append(errs, invalidf("domain %s: declared twice", d.Name))
		}
		domains[d.Name] = true
		if _, err := ir.ParseFieldType(string(d.BaseType)); err != nil {
			errs = append(errs, invalidf("domain %s: %v", d.Name, err))
		}
		switch d.Policy {
		case "", ir.PolicyDefault, ir.PolicyDuplicate:
		default:
			errs = append(errs, invalidf("domain %s: unknown policy %q", d.Name, d.Policy))
		}
		switch d.Kind {
		case ir.DomainCoded:
			if d.Range != nil {
				errs = append(errs, invalidf("domain %s: coded domain with a range", d.Name))
			}
			if len(d.Codes) > 0 && d.CodesFile != "" {
				errs = append(errs, invalidf("domain %s: both inline codes and codes_file", d.Name))
			}
		case ir.DomainRange:
			if d.Range == nil {
				errs = append(errs, invalidf("domain %s: range domain without bounds", d.Name))
			} else if d.Range.Min > d.Range.Max {
				errs = append(errs, invalidf("domain %s: min %v > max %v", d.Name, d.Range.Min, d.Range.Max))
			}
			if len(d.Codes) > 0 || d.CodesFile != "" {
				errs = append(errs, invalidf("domain %s: range domain with codes", d.Name))
			}
		default:
			errs = append(errs, invalidf("domain %s: unknown kind %q", d.Name, d.Kind))
		}
	}

	tables := make(map[string]TablePlan, len(p.Tables))
	for i, t := range p.Tables {
		if t.Name == "" {
			errs = append(errs, invalidf("table %d: missing name", i))
			continue
		}
		if _, dup := tables[t.Name]; dup {
			errs = append(errs, invalidf("table %s: declared twice", t.Name))
		}
		switch t.Geometry {
		case ir.GeometryPoint, ir.GeometryPolyline, ir.GeometryNone:
		default:
			errs = append(errs, invalidf("table %s: unknown geometry %q", t.Name, t.Geometry))
		}
		errs = append(errs, validateTable(t, tables)...)
		tables[t.Name] = t
	}

	rels := make(map[string]bool, len(p.Relationships))
	for _, r := range p.Relationships {
		if r.Name == "" {
			errs = append(errs, invalidf("relationship: missing name"))
			continue
		}
		if rels[r.Name] {
			errs = append(errs, invalidf("relationship %s: declared twice", r.Name))
		}
		rels[r.Name] = true
		if _, ok := tables[r.Origin]; !ok {
			errs = append(errs, invalidf("relationship %s: origin %q is not a planned table", r.Name, r.Origin))
		}
		if _, ok := tables[r.Destination]; !ok {
			errs = append(errs, invalidf("relationship %s: destination %q is not a planned table", r.Name, r.Destination))
		}
		if r.OriginKey == "" || r.ForeignKey == "" {
			errs = append(errs, invalidf("relationship %s: missing key", r.Name))
		}
	}

	return errors.Join(errs...)
}

// validateTable checks role-specific settings. earlier holds the tables
// planned before t.
func validateTable(t TablePlan, earlier map[string]TablePlan) []error {
	var errs []error

	switch t.Role {
	case RoleCopy, RoleLinks:
		if len(t.Fields) == 0 {
			errs = append(errs, invalidf("table %s: %s role needs fields", t.Name, t.Role))
		}
	case RoleCoding:
		if len(t.Fields) == 0 {
			errs = append(errs, invalidf("table %s: coding role needs fields", t.Name))
		}
		links, ok := earlier[t.Links]
		if !ok || links.Role != RoleLinks {
			errs = append(errs, invalidf("table %s: links %q must name an earlier links table", t.Name, t.Links))
		}
	case RoleEmpty:
		if len(t.Fields) > 0 || len(t.Rewrites) > 0 {
			errs = append(errs, invalidf("table %s: empty role takes no fields or rewrites", t.Name))
		}
	default:
		errs = append(errs, invalidf("table %s: unknown role %q", t.Name, t.Role))
	}

	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if seen[f] {
			errs = append(errs, invalidf("table %s: field %s listed twice", t.Name, f))
		}
		seen[f] = true
	}

	if slices.Contains(t.NonNullable, AllFields) {
		if len(t.NonNullable) != 1 {
			errs = append(errs, invalidf("table %s: %q must be the only non_nullable entry", t.Name, AllFields))
		}
	} else if len(t.Nullable) > 0 {
		errs = append(errs, invalidf("table %s: nullable exceptions need non_nullable %q", t.Name, AllFields))
	}

	for _, rw := range t.Rewrites {
		if t.Role != RoleCopy {
			errs = append(errs, invalidf("table %s: rewrites apply to the copy role only", t.Name))
			break
		}
		if !seen[rw.Field] {
			errs = append(errs, invalidf("table %s: rewrite of %s which is not copied", t.Name, rw.Field))
		}
		switch rw.Kind {
		case RewriteTIPID:
		case RewriteMap:
			if len(rw.Values) == 0 {
				errs = append(errs, invalidf("table %s: map rewrite of %s has no values", t.Name, rw.Field))
			}
		default:
			errs = append(errs, invalidf("table %s: unknown rewrite kind %q", t.Name, rw.Kind))
		}
	}
	return errs
}
