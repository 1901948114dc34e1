package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "github.com/mattn/go-sqlite3"
)

//go:embed catalog.sql
var catalogSQL string

// Store is a dataset store backed by a SQL database.
type Store struct {
	db      *sql.DB
	dialect dialect
	catalog *catalog
}

// Open creates or opens a dataset store.
//
// DSN forms:
//   - "postgres://..." or "postgresql://..." opens PostgreSQL through pgx
//   - "sqlite:<path>" or a bare path opens (and creates) a SQLite file
//
// The catalog tables are created if missing and loaded into memory.
// This function is idempotent - safe to call multiple times.
func Open(dsn string) (*Store, error) {
	d, target := resolveDSN(dsn)

	db, err := sql.Open(d.driver, target)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if d.name == dialectSQLite {
		// SQLite only supports one writer at a time, so limit connections
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	if err := applyCatalog(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply catalog: %w", err)
	}

	s := &Store{db: db, dialect: d}
	cat, err := s.loadCatalog(context.Background())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	s.catalog = cat

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - writes through DB bypass enforcement.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns "sqlite" or "postgres".
func (s *Store) Dialect() string {
	return s.dialect.name
}

func resolveDSN(dsn string) (dialect, string) {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return postgresDialect, dsn
	case strings.HasPrefix(lower, "sqlite3:"):
		return sqliteDialect, dsn[len("sqlite3:"):]
	case strings.HasPrefix(lower, "sqlite:"):
		return sqliteDialect, dsn[len("sqlite:"):]
	default:
		return sqliteDialect, dsn
	}
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applyCatalog creates catalog tables if they don't exist.
// Statements run one at a time so both drivers accept them.
func applyCatalog(db *sql.DB) error {
	for _, stmt := range strings.Split(catalogSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute catalog statement: %w", err)
		}
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
