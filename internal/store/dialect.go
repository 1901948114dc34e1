package store

import (
	"strconv"

	"github.com/roach88/netmigrate/internal/ir"
)

const (
	dialectSQLite   = "sqlite"
	dialectPostgres = "postgres"
)

// dialect holds the SQL differences between the supported backends.
// Everything not listed here is shared SQL.
type dialect struct {
	name     string
	driver   string
	objectID string // OBJECTID column definition
	shape    string // SHAPE column type
	columns  map[ir.FieldType]string
	exists   string // table existence query, one bind parameter
}

var sqliteDialect = dialect{
	name:     dialectSQLite,
	driver:   "sqlite3",
	objectID: `"OBJECTID" INTEGER PRIMARY KEY AUTOINCREMENT`,
	shape:    "BLOB",
	columns: map[ir.FieldType]string{
		ir.FieldText:   "TEXT",
		ir.FieldShort:  "INTEGER",
		ir.FieldLong:   "INTEGER",
		ir.FieldFloat:  "REAL",
		ir.FieldDouble: "REAL",
		ir.FieldDate:   "TEXT",
	},
	exists: `SELECT COUNT(*) FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?`,
}

var postgresDialect = dialect{
	name:     dialectPostgres,
	driver:   "pgx",
	objectID: `"OBJECTID" BIGSERIAL PRIMARY KEY`,
	shape:    "BYTEA",
	columns: map[ir.FieldType]string{
		ir.FieldText:   "TEXT",
		ir.FieldShort:  "SMALLINT",
		ir.FieldLong:   "BIGINT",
		ir.FieldFloat:  "REAL",
		ir.FieldDouble: "DOUBLE PRECISION",
		ir.FieldDate:   "TEXT",
	},
	exists: `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?`,
}

// placeholder returns the n-th (1-based) bind parameter marker.
func (d dialect) placeholder(n int) string {
	if d.name == dialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// columnType maps a field type to the backend column type.
func (d dialect) columnType(t ir.FieldType) string {
	if ct, ok := d.columns[t]; ok {
		return ct
	}
	return "TEXT"
}
