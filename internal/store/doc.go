// Package store provides the SQL-backed dataset store the migration reads
// legacy tables from and writes the new network schema into.
//
// The store keeps a catalog next to the data tables:
//   - _tables: table name and geometry kind
//   - _fields: ordered field descriptors with nullability
//   - _domains / _coded_values: coded and range domain definitions
//   - _relationships: declared referential links (recorded, not enforced)
//   - _runs: one row per completed migration run
//
// # Enforcement
//
// Insert and Update check every catalogued field before writing:
//   - unspecified fields take their descriptor default
//   - non-nullable fields reject nulls (ErrNotNullable)
//   - coded domains reject codes outside the code table (ErrDomainViolation)
//   - range domains reject values outside [min, max] inclusive
//   - TEXT fields reject values longer than the declared length
//
// Tables without a catalog entry (legacy inputs) can be searched but not
// written.
//
// # Deterministic Reads
//
// Search returns rows ORDER BY OBJECTID, which is insertion order, so that
// downstream copies preserve source row order.
//
// # Dialects
//
//   - SQLite (github.com/mattn/go-sqlite3): WAL, synchronous=NORMAL,
//     busy_timeout=5000, foreign_keys=ON, single connection
//   - PostgreSQL (github.com/jackc/pgx/v5/stdlib) for postgres:// DSNs
package store
