package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/netmigrate/internal/ir"
)

// createTestStore opens a fresh SQLite store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

// createLinkTable builds a small polyline table with one coded and one
// range domain attached.
func createLinkTable(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	if err := s.CreateDomain(ctx, ir.DomainSpec{
		Name: "HWYMODE", Description: "Modes", BaseType: ir.FieldText,
		Kind: ir.DomainCoded, Policy: ir.PolicyDuplicate,
	}); err != nil {
		t.Fatalf("CreateDomain(HWYMODE) failed: %v", err)
	}
	for _, code := range []string{"100", "200", "201", "300"} {
		if err := s.AddCodedValue(ctx, "HWYMODE", code, "mode "+code); err != nil {
			t.Fatalf("AddCodedValue(%s) failed: %v", code, err)
		}
	}
	if err := s.CreateDomain(ctx, ir.DomainSpec{
		Name: "POSITIVE", Description: "Non-negative", BaseType: ir.FieldShort,
		Kind: ir.DomainRange,
	}); err != nil {
		t.Fatalf("CreateDomain(POSITIVE) failed: %v", err)
	}
	if err := s.SetRange(ctx, "POSITIVE", 0, 32767); err != nil {
		t.Fatalf("SetRange() failed: %v", err)
	}

	if err := s.CreateTable(ctx, "hwynet_arc", ir.GeometryPolyline); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}
	fields := []ir.FieldDescriptor{
		{Name: "ABB", Type: ir.FieldText, Length: intPtr(13)},
		{Name: "MODES", Type: ir.FieldText, Length: intPtr(3), Default: strPtr("100"), Domain: strPtr("HWYMODE")},
		{Name: "POSTEDSPEED1", Type: ir.FieldShort, Default: strPtr("0"), Domain: strPtr("POSITIVE")},
		{Name: "TOLLDOLLARS", Type: ir.FieldDouble, Default: strPtr("0")},
		{Name: "SRA", Type: ir.FieldText, Length: intPtr(5)},
	}
	if err := s.AddFields(ctx, "hwynet_arc", fields); err != nil {
		t.Fatalf("AddFields() failed: %v", err)
	}
	for _, f := range []string{"ABB", "MODES", "POSTEDSPEED1", "TOLLDOLLARS"} {
		if err := s.SetNullable(ctx, "hwynet_arc", f, false); err != nil {
			t.Fatalf("SetNullable(%s) failed: %v", f, err)
		}
	}
}
