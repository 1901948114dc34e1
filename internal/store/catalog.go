package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/roach88/netmigrate/internal/ir"
)

// catalog is the in-memory mirror of the catalog tables.
// It is loaded on Open and updated after every committed catalog write.
type catalog struct {
	tables  map[string]*tableMeta
	domains map[string]*domainMeta
}

type tableMeta struct {
	name     string
	geometry ir.GeometryKind
	fields   []*fieldMeta
	index    map[string]*fieldMeta
}

type fieldMeta struct {
	ir.FieldDescriptor
	nullable bool
}

type domainMeta struct {
	spec     ir.DomainSpec
	codes    []ir.CodedValue
	codeSet  map[string]bool
	hasRange bool
	min, max float64
}

// DomainInfo is a read-only view of a persisted domain.
type DomainInfo struct {
	Spec     ir.DomainSpec
	Codes    []ir.CodedValue
	HasRange bool
	Min, Max float64
}

func newCatalog() *catalog {
	return &catalog{
		tables:  make(map[string]*tableMeta),
		domains: make(map[string]*domainMeta),
	}
}

func (t *tableMeta) field(name string) (*fieldMeta, bool) {
	f, ok := t.index[name]
	return f, ok
}

func (t *tableMeta) addField(f *fieldMeta) {
	t.fields = append(t.fields, f)
	t.index[f.Name] = f
}

// loadCatalog reads all catalog tables with deterministic ordering.
func (s *Store) loadCatalog(ctx context.Context) (*catalog, error) {
	cat := newCatalog()

	rows, err := s.db.QueryContext(ctx, `SELECT name, geometry FROM _tables ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	for rows.Next() {
		var name, geom string
		if err := rows.Scan(&name, &geom); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan table: %w", err)
		}
		cat.tables[name] = &tableMeta{
			name:     name,
			geometry: ir.GeometryKind(geom),
			index:    make(map[string]*fieldMeta),
		}
	}
	if err := closeRows(rows, "tables"); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT table_name, name, type, alias, length, default_value, domain, nullable
		FROM _fields
		ORDER BY table_name, position`)
	if err != nil {
		return nil, fmt.Errorf("query fields: %w", err)
	}
	for rows.Next() {
		var (
			tableName, name, typ string
			alias, def, dom      sql.NullString
			length               sql.NullInt64
			nullable             int64
		)
		if err := rows.Scan(&tableName, &name, &typ, &alias, &length, &def, &dom, &nullable); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan field: %w", err)
		}
		t, ok := cat.tables[tableName]
		if !ok {
			continue
		}
		fd := ir.FieldDescriptor{Name: name, Type: ir.FieldType(typ), Alias: alias.String}
		if length.Valid {
			n := int(length.Int64)
			fd.Length = &n
		}
		if def.Valid {
			v := def.String
			fd.Default = &v
		}
		if dom.Valid {
			v := dom.String
			fd.Domain = &v
		}
		t.addField(&fieldMeta{FieldDescriptor: fd, nullable: nullable != 0})
	}
	if err := closeRows(rows, "fields"); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT name, description, base_type, kind, policy, range_min, range_max
		FROM _domains
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query domains: %w", err)
	}
	for rows.Next() {
		var (
			d        ir.DomainSpec
			base     string
			kind     string
			policy   string
			min, max sql.NullFloat64
		)
		if err := rows.Scan(&d.Name, &d.Description, &base, &kind, &policy, &min, &max); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		d.BaseType = ir.FieldType(base)
		d.Kind = ir.DomainKind(kind)
		d.Policy = ir.MergePolicy(policy)
		cat.domains[d.Name] = &domainMeta{
			spec:     d,
			codeSet:  make(map[string]bool),
			hasRange: min.Valid && max.Valid,
			min:      min.Float64,
			max:      max.Float64,
		}
	}
	if err := closeRows(rows, "domains"); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT domain, code, description
		FROM _coded_values
		ORDER BY domain, position`)
	if err != nil {
		return nil, fmt.Errorf("query coded values: %w", err)
	}
	for rows.Next() {
		var domain string
		var cv ir.CodedValue
		if err := rows.Scan(&domain, &cv.Code, &cv.Description); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan coded value: %w", err)
		}
		if d, ok := cat.domains[domain]; ok {
			d.codes = append(d.codes, cv)
			d.codeSet[cv.Code] = true
		}
	}
	if err := closeRows(rows, "coded values"); err != nil {
		return nil, err
	}

	return cat, nil
}

func closeRows(rows *sql.Rows, what string) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate %s: %w", what, err)
	}
	return rows.Close()
}

// CreateTable creates a data table and registers it in the catalog.
// Geometric tables get an opaque SHAPE column.
func (s *Store) CreateTable(ctx context.Context, name string, geometry ir.GeometryKind) error {
	if _, ok := s.catalog.tables[name]; ok {
		return fmt.Errorf("create table %s: %w", name, ErrDuplicate)
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s", quoteIdent(name), s.dialect.objectID)
	if geometry.HasShape() {
		ddl += fmt.Sprintf(", %s %s", quoteIdent(ir.ShapeField), s.dialect.shape)
	}
	ddl += ")"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create table %s: begin tx: %w", name, err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx,
		s.bind(`INSERT INTO _tables (name, geometry) VALUES (?, ?)`),
		name, string(geometry),
	); err != nil {
		return fmt.Errorf("create table %s: catalog: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create table %s: commit: %w", name, err)
	}

	s.catalog.tables[name] = &tableMeta{
		name:     name,
		geometry: geometry,
		index:    make(map[string]*fieldMeta),
	}
	return nil
}

// AddFields adds columns in descriptor order. Every referenced domain must
// already exist. New fields are nullable until SetNullable says otherwise.
func (s *Store) AddFields(ctx context.Context, table string, fields []ir.FieldDescriptor) error {
	t, ok := s.catalog.tables[table]
	if !ok {
		return fmt.Errorf("add fields to %s: %w", table, ErrUnknownTable)
	}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return fmt.Errorf("add fields to %s: empty field name", table)
		}
		if _, exists := t.field(f.Name); exists || seen[f.Name] || f.Name == ir.ShapeField || f.Name == "OBJECTID" {
			return fmt.Errorf("add fields to %s: field %s: %w", table, f.Name, ErrDuplicate)
		}
		seen[f.Name] = true
		if _, known := s.dialect.columns[f.Type]; !known {
			return fmt.Errorf("add fields to %s: field %s: unsupported type %q", table, f.Name, f.Type)
		}
		if dom := f.DomainName(); dom != "" {
			if _, ok := s.catalog.domains[dom]; !ok {
				return fmt.Errorf("add fields to %s: field %s: domain %s: %w", table, f.Name, dom, ErrUnknownDomain)
			}
		}
		if _, err := f.DefaultValue(); err != nil {
			return fmt.Errorf("add fields to %s: field %s: default: %w", table, f.Name, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("add fields to %s: begin tx: %w", table, err)
	}
	defer tx.Rollback()

	for i, f := range fields {
		ddl := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
			quoteIdent(table), quoteIdent(f.Name), s.dialect.columnType(f.Type))
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("add fields to %s: field %s: %w", table, f.Name, err)
		}
		if _, err := tx.ExecContext(ctx, s.bind(`
			INSERT INTO _fields
			(table_name, position, name, type, alias, length, default_value, domain, nullable)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`),
			table, len(t.fields)+i, f.Name, string(f.Type), f.Alias,
			nullableInt(f.Length), nullableString(f.Default), nullableString(f.Domain),
		); err != nil {
			return fmt.Errorf("add fields to %s: field %s: catalog: %w", table, f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("add fields to %s: commit: %w", table, err)
	}

	for _, f := range fields {
		t.addField(&fieldMeta{FieldDescriptor: f, nullable: true})
	}
	return nil
}

// SetNullable changes whether a field accepts nulls on later writes.
func (s *Store) SetNullable(ctx context.Context, table, field string, nullable bool) error {
	t, ok := s.catalog.tables[table]
	if !ok {
		return fmt.Errorf("set nullable %s.%s: %w", table, field, ErrUnknownTable)
	}
	f, ok := t.field(field)
	if !ok {
		return fmt.Errorf("set nullable %s.%s: %w", table, field, ErrUnknownField)
	}

	flag := 0
	if nullable {
		flag = 1
	}
	if _, err := s.db.ExecContext(ctx,
		s.bind(`UPDATE _fields SET nullable = ? WHERE table_name = ? AND name = ?`),
		flag, table, field,
	); err != nil {
		return fmt.Errorf("set nullable %s.%s: %w", table, field, err)
	}

	f.nullable = nullable
	return nil
}

// Fields returns the catalogued descriptors of a table in order.
func (s *Store) Fields(table string) ([]ir.FieldDescriptor, error) {
	t, ok := s.catalog.tables[table]
	if !ok {
		return nil, fmt.Errorf("fields of %s: %w", table, ErrUnknownTable)
	}
	out := make([]ir.FieldDescriptor, len(t.fields))
	for i, f := range t.fields {
		out[i] = f.FieldDescriptor
	}
	return out, nil
}

// Nullable reports whether a catalogued field accepts nulls.
func (s *Store) Nullable(table, field string) (bool, error) {
	t, ok := s.catalog.tables[table]
	if !ok {
		return false, fmt.Errorf("nullable %s.%s: %w", table, field, ErrUnknownTable)
	}
	f, ok := t.field(field)
	if !ok {
		return false, fmt.Errorf("nullable %s.%s: %w", table, field, ErrUnknownField)
	}
	return f.nullable, nil
}

// Geometry returns the geometry kind of a catalogued table.
func (s *Store) Geometry(table string) (ir.GeometryKind, error) {
	t, ok := s.catalog.tables[table]
	if !ok {
		return "", fmt.Errorf("geometry of %s: %w", table, ErrUnknownTable)
	}
	return t.geometry, nil
}

// Tables returns catalogued table names in sorted order.
func (s *Store) Tables() []string {
	names := make([]string, 0, len(s.catalog.tables))
	for name := range s.catalog.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CreateDomain registers a domain. Codes or range bounds are added with
// AddCodedValue and SetRange.
func (s *Store) CreateDomain(ctx context.Context, spec ir.DomainSpec) error {
	if _, ok := s.catalog.domains[spec.Name]; ok {
		return fmt.Errorf("create domain %s: %w", spec.Name, ErrDuplicate)
	}
	if spec.Kind != ir.DomainCoded && spec.Kind != ir.DomainRange {
		return fmt.Errorf("create domain %s: unsupported kind %q", spec.Name, spec.Kind)
	}
	if _, known := s.dialect.columns[spec.BaseType]; !known {
		return fmt.Errorf("create domain %s: unsupported base type %q", spec.Name, spec.BaseType)
	}
	policy := spec.Policy
	if policy == "" {
		policy = ir.PolicyDefault
	}

	if _, err := s.db.ExecContext(ctx, s.bind(`
		INSERT INTO _domains (name, description, base_type, kind, policy)
		VALUES (?, ?, ?, ?, ?)`),
		spec.Name, spec.Description, string(spec.BaseType), string(spec.Kind), string(policy),
	); err != nil {
		return fmt.Errorf("create domain %s: %w", spec.Name, err)
	}

	spec.Policy = policy
	s.catalog.domains[spec.Name] = &domainMeta{spec: spec, codeSet: make(map[string]bool)}
	return nil
}

// AddCodedValue appends a code to a coded domain.
// Descriptions may repeat across codes.
func (s *Store) AddCodedValue(ctx context.Context, domain, code, description string) error {
	d, ok := s.catalog.domains[domain]
	if !ok {
		return fmt.Errorf("add code %q to %s: %w", code, domain, ErrUnknownDomain)
	}
	if d.spec.Kind != ir.DomainCoded {
		return fmt.Errorf("add code %q to %s: domain is %s", code, domain, d.spec.Kind)
	}
	if d.codeSet[code] {
		return fmt.Errorf("add code %q to %s: %w", code, domain, ErrDuplicate)
	}
	if _, err := ir.Parse(code, d.spec.BaseType); err != nil {
		return fmt.Errorf("add code %q to %s: %w", code, domain, err)
	}

	if _, err := s.db.ExecContext(ctx, s.bind(`
		INSERT INTO _coded_values (domain, position, code, description)
		VALUES (?, ?, ?, ?)`),
		domain, len(d.codes), code, description,
	); err != nil {
		return fmt.Errorf("add code %q to %s: %w", code, domain, err)
	}

	d.codes = append(d.codes, ir.CodedValue{Code: code, Description: description})
	d.codeSet[code] = true
	return nil
}

// SetRange sets the inclusive bounds of a range domain.
func (s *Store) SetRange(ctx context.Context, domain string, min, max float64) error {
	d, ok := s.catalog.domains[domain]
	if !ok {
		return fmt.Errorf("set range of %s: %w", domain, ErrUnknownDomain)
	}
	if d.spec.Kind != ir.DomainRange {
		return fmt.Errorf("set range of %s: domain is %s", domain, d.spec.Kind)
	}
	if min > max {
		return fmt.Errorf("set range of %s: min %v > max %v", domain, min, max)
	}

	if _, err := s.db.ExecContext(ctx,
		s.bind(`UPDATE _domains SET range_min = ?, range_max = ? WHERE name = ?`),
		min, max, domain,
	); err != nil {
		return fmt.Errorf("set range of %s: %w", domain, err)
	}

	d.hasRange, d.min, d.max = true, min, max
	return nil
}

// Domain returns the persisted definition of a domain.
func (s *Store) Domain(name string) (DomainInfo, error) {
	d, ok := s.catalog.domains[name]
	if !ok {
		return DomainInfo{}, fmt.Errorf("domain %s: %w", name, ErrUnknownDomain)
	}
	return DomainInfo{
		Spec:     d.spec,
		Codes:    slices.Clone(d.codes),
		HasRange: d.hasRange,
		Min:      d.min,
		Max:      d.max,
	}, nil
}

// CreateRelationship records a relationship declaration after checking
// that both tables and both key fields exist.
func (s *Store) CreateRelationship(ctx context.Context, rel ir.Relationship) error {
	origin, ok := s.catalog.tables[rel.Origin]
	if !ok {
		return fmt.Errorf("relationship %s: origin %s: %w", rel.Name, rel.Origin, ErrUnknownTable)
	}
	dest, ok := s.catalog.tables[rel.Destination]
	if !ok {
		return fmt.Errorf("relationship %s: destination %s: %w", rel.Name, rel.Destination, ErrUnknownTable)
	}
	if _, ok := origin.field(rel.OriginKey); !ok {
		return fmt.Errorf("relationship %s: %s.%s: %w", rel.Name, rel.Origin, rel.OriginKey, ErrUnknownField)
	}
	if _, ok := dest.field(rel.ForeignKey); !ok {
		return fmt.Errorf("relationship %s: %s.%s: %w", rel.Name, rel.Destination, rel.ForeignKey, ErrUnknownField)
	}

	var count int
	if err := s.db.QueryRowContext(ctx,
		s.bind(`SELECT COUNT(*) FROM _relationships WHERE name = ?`), rel.Name,
	).Scan(&count); err != nil {
		return fmt.Errorf("relationship %s: %w", rel.Name, err)
	}
	if count > 0 {
		return fmt.Errorf("relationship %s: %w", rel.Name, ErrDuplicate)
	}

	if _, err := s.db.ExecContext(ctx, s.bind(`
		INSERT INTO _relationships
		(name, origin, destination, kind, cardinality, direction, origin_key, foreign_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		rel.Name, rel.Origin, rel.Destination, rel.Kind, rel.Cardinality,
		rel.Direction, rel.OriginKey, rel.ForeignKey,
	); err != nil {
		return fmt.Errorf("relationship %s: %w", rel.Name, err)
	}
	return nil
}

// Relationships returns recorded relationships ordered by name.
func (s *Store) Relationships(ctx context.Context) ([]ir.Relationship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, origin, destination, kind, cardinality, direction, origin_key, foreign_key
		FROM _relationships
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query relationships: %w", err)
	}
	defer rows.Close()

	rels := []ir.Relationship{}
	for rows.Next() {
		var r ir.Relationship
		if err := rows.Scan(&r.Name, &r.Origin, &r.Destination, &r.Kind,
			&r.Cardinality, &r.Direction, &r.OriginKey, &r.ForeignKey); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		rels = append(rels, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relationships: %w", err)
	}
	return rels, nil
}

// RecordRun appends the summary of a completed run.
func (s *Store) RecordRun(ctx context.Context, runID string, startedAt time.Time, report string) error {
	if _, err := s.db.ExecContext(ctx,
		s.bind(`INSERT INTO _runs (run_id, started_at, report) VALUES (?, ?, ?)`),
		runID, startedAt.UTC().Format(time.RFC3339), report,
	); err != nil {
		return fmt.Errorf("record run %s: %w", runID, err)
	}
	return nil
}
