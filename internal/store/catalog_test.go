package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roach88/netmigrate/internal/ir"
)

func TestCreateTable_Duplicate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.CreateTable(ctx, "hwyproj", ir.GeometryPoint); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}
	err := s.CreateTable(ctx, "hwyproj", ir.GeometryPoint)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("second CreateTable() error = %v, want ErrDuplicate", err)
	}
}

func TestCreateTable_ShapeColumnByGeometry(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.CreateTable(ctx, "hwynet_node", ir.GeometryPoint); err != nil {
		t.Fatalf("CreateTable(point) failed: %v", err)
	}
	if err := s.CreateTable(ctx, "parknride", ir.GeometryNone); err != nil {
		t.Fatalf("CreateTable(none) failed: %v", err)
	}

	cols, err := s.Columns(ctx, "hwynet_node")
	if err != nil {
		t.Fatalf("Columns() failed: %v", err)
	}
	if len(cols) != 2 || cols[0] != "OBJECTID" || cols[1] != "SHAPE" {
		t.Errorf("point table columns = %v, want [OBJECTID SHAPE]", cols)
	}

	cols, err = s.Columns(ctx, "parknride")
	if err != nil {
		t.Fatalf("Columns() failed: %v", err)
	}
	if len(cols) != 1 || cols[0] != "OBJECTID" {
		t.Errorf("plain table columns = %v, want [OBJECTID]", cols)
	}

	if got := s.Tables(); len(got) != 2 || got[0] != "hwynet_node" || got[1] != "parknride" {
		t.Errorf("Tables() = %v", got)
	}
}

func TestAddFields_DuplicateField(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.CreateTable(ctx, "parknride", ir.GeometryNone); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}
	if err := s.AddFields(ctx, "parknride", []ir.FieldDescriptor{{Name: "NODE", Type: ir.FieldLong}}); err != nil {
		t.Fatalf("AddFields() failed: %v", err)
	}

	err := s.AddFields(ctx, "parknride", []ir.FieldDescriptor{{Name: "NODE", Type: ir.FieldLong}})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("re-adding NODE error = %v, want ErrDuplicate", err)
	}

	err = s.AddFields(ctx, "parknride", []ir.FieldDescriptor{
		{Name: "COST", Type: ir.FieldShort},
		{Name: "COST", Type: ir.FieldShort},
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("repeated COST error = %v, want ErrDuplicate", err)
	}

	// Failed batches leave nothing behind.
	fields, _ := s.Fields("parknride")
	if len(fields) != 1 {
		t.Errorf("fields after failed batches = %d, want 1", len(fields))
	}
}

func TestAddFields_UnknownDomain(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.CreateTable(ctx, "hwynet_node", ir.GeometryPoint); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}
	err := s.AddFields(ctx, "hwynet_node", []ir.FieldDescriptor{
		{Name: "NODE", Type: ir.FieldLong, Domain: strPtr("NODE")},
	})
	if !errors.Is(err, ErrUnknownDomain) {
		t.Errorf("AddFields() error = %v, want ErrUnknownDomain", err)
	}
}

func TestAddFields_UnknownTable(t *testing.T) {
	s := createTestStore(t)

	err := s.AddFields(context.Background(), "missing", []ir.FieldDescriptor{{Name: "A", Type: ir.FieldText}})
	if !errors.Is(err, ErrUnknownTable) {
		t.Errorf("AddFields() error = %v, want ErrUnknownTable", err)
	}
}

func TestSetNullable_UnknownField(t *testing.T) {
	s := createTestStore(t)
	createLinkTable(t, s)

	err := s.SetNullable(context.Background(), "hwynet_arc", "NOPE", false)
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("SetNullable() error = %v, want ErrUnknownField", err)
	}
}

func TestCreateDomain_Duplicate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	spec := ir.DomainSpec{Name: "BINARY", Description: "0/1", BaseType: ir.FieldShort, Kind: ir.DomainCoded}

	if err := s.CreateDomain(ctx, spec); err != nil {
		t.Fatalf("CreateDomain() failed: %v", err)
	}
	if err := s.CreateDomain(ctx, spec); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second CreateDomain() error = %v, want ErrDuplicate", err)
	}

	dom, err := s.Domain("BINARY")
	if err != nil {
		t.Fatalf("Domain() failed: %v", err)
	}
	if dom.Spec.Policy != ir.PolicyDefault {
		t.Errorf("empty policy stored as %q, want DEFAULT", dom.Spec.Policy)
	}
}

func TestAddCodedValue(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.CreateDomain(ctx, ir.DomainSpec{
		Name: "AMPM", Description: "Periods", BaseType: ir.FieldText,
		Kind: ir.DomainCoded, Policy: ir.PolicyDuplicate,
	}); err != nil {
		t.Fatalf("CreateDomain() failed: %v", err)
	}

	// Repeated descriptions are fine.
	for _, code := range []string{"1", "2", "3"} {
		if err := s.AddCodedValue(ctx, "AMPM", code, "Peak"); err != nil {
			t.Fatalf("AddCodedValue(%s) failed: %v", code, err)
		}
	}
	if err := s.AddCodedValue(ctx, "AMPM", "2", "Again"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate code error = %v, want ErrDuplicate", err)
	}
	if err := s.AddCodedValue(ctx, "NOPE", "1", "x"); !errors.Is(err, ErrUnknownDomain) {
		t.Errorf("unknown domain error = %v, want ErrUnknownDomain", err)
	}

	dom, err := s.Domain("AMPM")
	if err != nil {
		t.Fatalf("Domain() failed: %v", err)
	}
	if len(dom.Codes) != 3 || dom.Codes[0].Code != "1" || dom.Codes[2].Code != "3" {
		t.Errorf("codes = %+v, want 1,2,3 in insertion order", dom.Codes)
	}
}

func TestAddCodedValue_RejectsRangeDomainAndBadType(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.CreateDomain(ctx, ir.DomainSpec{Name: "ZONE", BaseType: ir.FieldLong, Kind: ir.DomainRange}); err != nil {
		t.Fatalf("CreateDomain(ZONE) failed: %v", err)
	}
	if err := s.AddCodedValue(ctx, "ZONE", "1", "x"); err == nil {
		t.Error("expected error adding a code to a range domain")
	}

	if err := s.CreateDomain(ctx, ir.DomainSpec{Name: "HOUR", BaseType: ir.FieldShort, Kind: ir.DomainCoded}); err != nil {
		t.Fatalf("CreateDomain(HOUR) failed: %v", err)
	}
	if err := s.AddCodedValue(ctx, "HOUR", "noon", "x"); err == nil {
		t.Error("expected error adding a non-numeric code to a SHORT domain")
	}
}

func TestSetRange(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.CreateDomain(ctx, ir.DomainSpec{Name: "VCLEARANCE", BaseType: ir.FieldShort, Kind: ir.DomainRange}); err != nil {
		t.Fatalf("CreateDomain() failed: %v", err)
	}
	if err := s.SetRange(ctx, "VCLEARANCE", 10, 1); err == nil {
		t.Error("expected error for min > max")
	}
	if err := s.SetRange(ctx, "VCLEARANCE", -1, 999); err != nil {
		t.Fatalf("SetRange() failed: %v", err)
	}

	dom, _ := s.Domain("VCLEARANCE")
	if !dom.HasRange || dom.Min != -1 || dom.Max != 999 {
		t.Errorf("range = [%v, %v] has=%v", dom.Min, dom.Max, dom.HasRange)
	}
}

func TestCreateRelationship(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createLinkTable(t, s)

	if err := s.CreateTable(ctx, "bus_base_itin", ir.GeometryNone); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}
	if err := s.AddFields(ctx, "bus_base_itin", []ir.FieldDescriptor{{Name: "ABB", Type: ir.FieldText}}); err != nil {
		t.Fatalf("AddFields() failed: %v", err)
	}

	rel := ir.Relationship{
		Name: "rel_arcs_to_bus_base_itin", Origin: "hwynet_arc", Destination: "bus_base_itin",
		Kind: "SIMPLE", Cardinality: "ONE_TO_MANY", Direction: "NONE",
		OriginKey: "ABB", ForeignKey: "ABB",
	}
	if err := s.CreateRelationship(ctx, rel); err != nil {
		t.Fatalf("CreateRelationship() failed: %v", err)
	}
	if err := s.CreateRelationship(ctx, rel); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second CreateRelationship() error = %v, want ErrDuplicate", err)
	}

	bad := rel
	bad.Name = "rel_bad"
	bad.ForeignKey = "MISSING"
	if err := s.CreateRelationship(ctx, bad); !errors.Is(err, ErrUnknownField) {
		t.Errorf("missing key error = %v, want ErrUnknownField", err)
	}
	bad.Destination = "nowhere"
	if err := s.CreateRelationship(ctx, bad); !errors.Is(err, ErrUnknownTable) {
		t.Errorf("missing table error = %v, want ErrUnknownTable", err)
	}

	rels, err := s.Relationships(ctx)
	if err != nil {
		t.Fatalf("Relationships() failed: %v", err)
	}
	if len(rels) != 1 || rels[0] != rel {
		t.Errorf("Relationships() = %+v", rels)
	}
}

func TestRecordRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := s.RecordRun(ctx, "run-1", started, `{"replacements":2}`); err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}

	var at, report string
	if err := s.db.QueryRow(`SELECT started_at, report FROM _runs WHERE run_id = ?`, "run-1").Scan(&at, &report); err != nil {
		t.Fatalf("query run failed: %v", err)
	}
	if at != "2024-03-01T12:00:00Z" || report != `{"replacements":2}` {
		t.Errorf("run row = (%q, %q)", at, report)
	}
}
