package testutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/roach88/netmigrate/internal/store"
)

// FixtureDirs returns the schema and domain directories of the legacy
// network fixture.
func FixtureDirs() (schemaDir, domainDir string) {
	_, file, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(file), "testdata")
	return filepath.Join(root, "schema"), filepath.Join(root, "domains")
}

// OpenStore opens a fresh SQLite store named name in a temp dir.
func OpenStore(t *testing.T, name string) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), name+".db"))
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", name, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// LegacyNetwork opens a store holding the legacy network fixture.
func LegacyNetwork(t *testing.T) *store.Store {
	t.Helper()
	s := OpenStore(t, "legacy")
	WriteLegacyNetwork(t, s)
	return s
}

// WriteLegacyNetwork writes the legacy network tables into s as plain
// uncatalogued tables, the way exported legacy data arrives.
//
// The links cover every recode rule: each mode, a digit and a two-digit
// truck restriction, recognized and unrecognized parking codes, each CLTL
// case, short and long SRA codes, and nonzero clearances on project
// links. The coding table holds pass-through records, replacements of
// one baseline link by two legacy links, and one replacement whose node
// pair has no baseline link.
func WriteLegacyNetwork(t *testing.T, s *store.Store) {
	t.Helper()
	for _, stmt := range legacyNetworkSQL {
		if _, err := s.DB().Exec(stmt); err != nil {
			t.Fatalf("exec %q failed: %v", stmt, err)
		}
	}
}

var legacyNetworkSQL = []string{
	`CREATE TABLE hwynet_node ("OBJECTID" INTEGER PRIMARY KEY, "SHAPE" BLOB, "NODE" INTEGER,
		"POINT_X" REAL, "POINT_Y" REAL, "subzone17" INTEGER, "zone17" INTEGER, "capzone17" INTEGER, "IMAREA" INTEGER)`,
	`INSERT INTO hwynet_node VALUES
		(1, X'0101', 101, 1150000.5, 1900000.25, 1, 1, 1, 1),
		(2, X'0102', 102, 1151000.5, 1900500.25, 2, 1, 1, 1),
		(3, X'0103', 103, 1152000, 1901000, 17, 3, 2, 1),
		(4, X'0201', 201, 1160000, 1910000, 17418, 9999, 3, 0)`,

	`CREATE TABLE hwynet_arc ("OBJECTID" INTEGER PRIMARY KEY, "SHAPE" BLOB,
		"ANODE" INTEGER, "BNODE" INTEGER, "BASELINK" TEXT, "ABB" TEXT, "ROADNAME" TEXT,
		"DIRECTIONS" TEXT, "TYPE1" TEXT, "TYPE2" TEXT, "AMPM1" TEXT, "AMPM2" TEXT,
		"POSTEDSPEED1" INTEGER, "POSTEDSPEED2" INTEGER, "THRULANES1" INTEGER, "THRULANES2" INTEGER,
		"THRULANEWIDTH1" INTEGER, "THRULANEWIDTH2" INTEGER, "PARKLANES1" INTEGER, "PARKLANES2" INTEGER,
		"SIGIC" INTEGER, "RRGRADECROSS" INTEGER, "VCLEARANCE" INTEGER, "NHSIC" INTEGER,
		"CHIBLVD" INTEGER, "TOLLSYS" INTEGER, "TRUCKRTE" TEXT, "MESO" INTEGER, "MILES" REAL, "BEARING" TEXT,
		"PARKRES1" TEXT, "PARKRES2" TEXT, "CLTL" INTEGER, "TOLLDOLLARS" REAL,
		"MODES" TEXT, "TRUCKRES" TEXT, "SRA" TEXT)`,
	`INSERT INTO hwynet_arc VALUES
		(1, X'AA01', 101, 102, '1', '101-102-1', 'Western Ave', '2', '1', '1', '1', '1',
		 35, 35, 2, 2, 12, 12, 1, 1, 1, 0, 0, 0, 0, 0, '0', 1, 0.5, 'N',
		 '3', '', 2, 0.0, '1', '0', 'SR1'),
		(2, X'AA02', 102, 103, '1', '102-103-1', 'Western Ave', '2', '1', '1', '1', '1',
		 30, 30, 2, 2, 11, 11, 0, 0, 1, 1, 0, 1, 1, 0, '2', 1, 0.25, 'N',
		 '37', '7', 0, 1.25, '2', '7', ''),
		(3, X'AA03', 103, 104, '1', '103-104-1', 'Ogden Ave', '1', '1', '0', '1', '1',
		 45, 0, 3, 0, 12, 0, 0, 0, 0, 0, 0, 0, 0, 0, '0', 1, 1.0, 'SW',
		 '73', '0', 9, 0.0, '1', '5', '12'),
		(4, X'AA04', 104, 105, '1', '104-105-1', 'I-55 ramp', '1', '5', '0', '1', '1',
		 25, 0, 1, 0, 12, 0, 0, 0, 0, 0, 0, 0, 0, 0, '1', 0, 0.2, 'W',
		 '', '', 1, 0.0, '3', '0', ''),
		(5, X'AA05', 201, 202, '0', '201-202-1', 'Project link', '2', '1', '1', '1', '1',
		 40, 40, 2, 2, 12, 12, 0, 0, 0, 0, 150, 0, 0, 0, '0', 0, 0.75, 'E',
		 '', '', 0, 0.0, '2', '0', ''),
		(6, X'AA06', 202, 203, '0', '202-203-1', 'Project link', '2', '1', '1', '1', '1',
		 40, 40, 2, 2, 12, 12, 0, 0, 0, 0, 162, 0, 0, 0, '0', 0, 0.5, 'E',
		 '', '', 0, 0.0, '1', '3', ''),
		(7, X'AA07', 203, 204, '0', '203-204-1', 'Busway', '1', '1', '0', '1', '1',
		 30, 0, 1, 0, 12, 0, 0, 0, 0, 0, 0, 0, 0, 0, '0', 0, 0.3, 'E',
		 '', '', 0, 0.0, '4', '0', ''),
		(8, X'AA08', 105, 106, '1', '105-106-1', 'Cicero Ave', '2', '1', '1', '1', '1',
		 35, 35, 2, 2, 12, 12, 0, 0, 1, 0, 0, 0, 0, 1, '0', 1, 0.5, 'S',
		 '', '', 1, 0.0, '2', '0', '')`,

	`CREATE TABLE hwyproj ("OBJECTID" INTEGER PRIMARY KEY, "SHAPE" BLOB, "TIPID" TEXT,
		"COMPLETION_YEAR" INTEGER, "MCP_ID" TEXT, "RSP_ID" INTEGER, "RCP_ID" TEXT, "NOTES" TEXT)`,
	`INSERT INTO hwyproj VALUES
		(1, X'BB01', '1234', 2030, 'MCP-1', 10, NULL, 'Add lanes'),
		(2, X'BB02', '55', 2025, NULL, NULL, 'RCP-2', NULL),
		(3, X'BB03', '77', 2035, NULL, 12, NULL, 'Reconstruct'),
		(4, X'BB04', '88', 2040, NULL, NULL, NULL, NULL)`,

	`CREATE TABLE hwyproj_coding ("OBJECTID" INTEGER PRIMARY KEY, "TIPID" TEXT, "ABB" TEXT, "ACTION_CODE" TEXT,
		"NEW_DIRECTIONS" TEXT, "NEW_TYPE1" TEXT, "NEW_TYPE2" TEXT, "NEW_AMPM1" TEXT, "NEW_AMPM2" TEXT,
		"NEW_POSTEDSPEED1" INTEGER, "NEW_POSTEDSPEED2" INTEGER, "NEW_THRULANES1" INTEGER, "NEW_THRULANES2" INTEGER,
		"NEW_THRULANEWIDTH1" INTEGER, "NEW_THRULANEWIDTH2" INTEGER, "ADD_PARKLANES1" INTEGER, "ADD_PARKLANES2" INTEGER,
		"ADD_SIGIC" INTEGER, "ADD_CLTL" INTEGER, "ADD_RRGRADECROSS" INTEGER, "NEW_TOLLDOLLARS" REAL, "NEW_MODES" TEXT,
		"REP_ANODE" INTEGER, "REP_BNODE" INTEGER)`,
	`INSERT INTO hwyproj_coding VALUES
		(1, '1234', '201-202-1', '1', '2', '1', '1', '1', '1', 40, 40, 2, 2, 12, 12, 0, 0, 1, 0, 0, 0.5, '2', NULL, NULL),
		(2, '1234', '202-203-1', '4', '0', '0', '0', '0', '0', 0, 0, 3, 3, 0, 0, 0, 0, 0, 1, 0, 0.0, '2', NULL, NULL),
		(3, '55', '102-103-1', '4', '0', '0', '0', '0', '0', 35, 35, 0, 0, 0, 0, -1, 0, 0, 0, 0, 2.0, '0', NULL, NULL),
		(4, '1234', '203-204-1', '2', '0', '0', '0', '0', '0', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0.0, '0', 101, 102),
		(5, '77', '201-202-1', '2', '0', '0', '0', '0', '0', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0.0, '0', 101, 102),
		(6, '77', '202-203-1', '2', '0', '0', '0', '0', '0', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0.0, '0', 102, 103),
		(7, '88', '203-204-1', '2', '0', '0', '0', '0', '0', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0.0, '0', 900, 901),
		(8, '88', '202-203-1', '2', '0', '0', '0', '0', '0', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0.0, '0', 105, 106)`,

	`CREATE TABLE bus_base ("OBJECTID" INTEGER PRIMARY KEY, "SHAPE" BLOB, "TRANSIT_LINE" TEXT, "DESCRIPTION" TEXT,
		"MODE" TEXT, "VEHICLE_TYPE" TEXT, "HEADWAY" REAL, "SPEED" REAL, "ROUTE_ID" TEXT, "LONGNAME" TEXT,
		"DIRECTION" TEXT, "TERMINAL" TEXT, "START" TEXT, "STARTHOUR" INTEGER, "AM_SHARE" REAL, "FEEDLINE" INTEGER)`,
	`INSERT INTO bus_base VALUES
		(1, X'CC01', 'cw49n', 'WESTERN', 'B', '2', 10.0, 12.5, '49', 'Western Northbound', 'N', 'Berwyn', '06:00', 6, 0.4, 0),
		(2, X'CC02', 'pw307s', 'PACE 307', 'P', '1', 30.0, 18.0, '307', 'Harlem Southbound', 'S', 'Harlem', '07:15', 7, 0.25, 1)`,

	`CREATE TABLE bus_base_itin ("OBJECTID" INTEGER PRIMARY KEY, "TRANSIT_LINE" TEXT, "ITIN_ORDER" INTEGER,
		"ITIN_A" INTEGER, "ITIN_B" INTEGER, "ABB" TEXT, "LAYOVER" INTEGER, "DWELL_CODE" TEXT, "ZONE_FARE" REAL,
		"LINE_SERV_TIME" REAL, "TTF" TEXT, "LINK_STOPS" INTEGER, "IMPUTED" TEXT, "DEP_TIME" INTEGER,
		"ARR_TIME" INTEGER, "F_MEAS" REAL, "T_MEAS" REAL)`,
	`INSERT INTO bus_base_itin VALUES
		(1, 'cw49n', 1, 101, 102, '101-102-1', 0, '0', 0.0, 2.5, '0', 1, '0', 21600, 21750, 0.0, 100.0),
		(2, 'cw49n', 2, 102, 103, '102-103-1', 0, '0', 0.0, 1.5, '1', 0, '0', 21750, 21840, 0.0, 100.0),
		(3, 'pw307s', 1, 104, 105, '104-105-1', 5, '1', 0.0, 3.0, '0', 2, '1', 26100, 26280, 0.0, 50.0)`,

	`CREATE TABLE parknride ("OBJECTID" INTEGER PRIMARY KEY, "FACILITY" TEXT, "NODE" INTEGER,
		"COST" REAL, "SPACES" INTEGER, "ESTIMATE" INTEGER, "SCENARIO" TEXT)`,
	`INSERT INTO parknride VALUES (1, 'Cumberland', 103, 5.5, 1600, 0, '100')`,
}
