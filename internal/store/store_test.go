package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/netmigrate/internal/ir"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if s.Dialect() != "sqlite" {
		t.Errorf("Dialect() = %q, want sqlite", s.Dialect())
	}
}

func TestOpen_SQLitePrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefixed.db")

	s, err := Open("sqlite:" + path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created at the unprefixed path")
	}
}

func TestResolveDSN(t *testing.T) {
	tests := []struct {
		dsn     string
		dialect string
		target  string
	}{
		{"postgres://u:p@localhost/db", "postgres", "postgres://u:p@localhost/db"},
		{"postgresql://localhost/db", "postgres", "postgresql://localhost/db"},
		{"sqlite:/tmp/a.db", "sqlite", "/tmp/a.db"},
		{"sqlite3:/tmp/b.db", "sqlite", "/tmp/b.db"},
		{"/tmp/c.db", "sqlite", "/tmp/c.db"},
	}
	for _, tt := range tests {
		d, target := resolveDSN(tt.dsn)
		if d.name != tt.dialect || target != tt.target {
			t.Errorf("resolveDSN(%q) = (%s, %q), want (%s, %q)", tt.dsn, d.name, target, tt.dialect, tt.target)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_ReloadsCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	createLinkTable(t, s1)
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	fields, err := s2.Fields("hwynet_arc")
	if err != nil {
		t.Fatalf("Fields() failed: %v", err)
	}
	want := []string{"ABB", "MODES", "POSTEDSPEED1", "TOLLDOLLARS", "SRA"}
	if len(fields) != len(want) {
		t.Fatalf("Fields() returned %d fields, want %d", len(fields), len(want))
	}
	for i, f := range fields {
		if f.Name != want[i] {
			t.Errorf("field %d = %s, want %s", i, f.Name, want[i])
		}
	}
	if fields[1].Default == nil || *fields[1].Default != "100" {
		t.Errorf("MODES default not reloaded: %v", fields[1].Default)
	}

	nullable, err := s2.Nullable("hwynet_arc", "ABB")
	if err != nil {
		t.Fatalf("Nullable() failed: %v", err)
	}
	if nullable {
		t.Error("ABB should be non-nullable after reload")
	}

	dom, err := s2.Domain("POSITIVE")
	if err != nil {
		t.Fatalf("Domain() failed: %v", err)
	}
	if !dom.HasRange || dom.Min != 0 || dom.Max != 32767 {
		t.Errorf("POSITIVE range = %+v", dom)
	}

	// Enforcement survives reopen.
	err = s2.InsertRow(ctx, "hwynet_arc", ir.Row{"ABB": ir.String("1-2-1"), "MODES": ir.String("999")})
	if err == nil {
		t.Error("expected domain violation after reopen")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	db := s.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	s := createTestStore(t)
	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestPragma_ForeignKeys(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}

func TestCatalogTablesExist(t *testing.T) {
	s := createTestStore(t)

	for _, table := range []string{"_tables", "_fields", "_domains", "_coded_values", "_relationships", "_runs"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("catalog table %q not found: %v", table, err)
		}
	}
}

func TestBind_Postgres(t *testing.T) {
	s := &Store{dialect: postgresDialect}

	got := s.bind(`SELECT "a?" FROM t WHERE x = ? AND y = '?' AND z = ?`)
	want := `SELECT "a?" FROM t WHERE x = $1 AND y = '?' AND z = $2`
	if got != want {
		t.Errorf("bind() = %q, want %q", got, want)
	}
}

func TestBind_SQLiteUnchanged(t *testing.T) {
	s := &Store{dialect: sqliteDialect}

	q := `SELECT * FROM t WHERE x = ?`
	if got := s.bind(q); got != q {
		t.Errorf("bind() = %q, want unchanged", got)
	}
}
