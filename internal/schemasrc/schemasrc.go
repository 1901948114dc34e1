// Package schemasrc reads field descriptors and coded domain values from
// flat CSV files.
//
// Layout:
//
//	<schema-dir>/<table>.csv    NAME,TYPE,ALIAS,LENGTH,DEFAULT,DOMAIN
//	<domain-dir>/<domain>.csv   Code,Description
//
// Empty cells are nulls. Text is decoded from the configured legacy
// encoding and normalized to NFC.
package schemasrc

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/roach88/netmigrate/internal/ir"
	"github.com/roach88/netmigrate/internal/plan"
)

// Source supplies field descriptors per table and codes per domain.
type Source interface {
	Fields(table string) ([]ir.FieldDescriptor, error)
	CodedValues(domain string) ([]ir.CodedValue, error)
}

// Dir is a Source backed by two directories of CSV files.
type Dir struct {
	schemaDir string
	domainDir string
	enc       encoding.Encoding
}

// NewDir returns a Source reading from schemaDir and domainDir.
// encoding is "utf-8" (default, BOM tolerated) or "windows-1252".
func NewDir(schemaDir, domainDir, enc string) (*Dir, error) {
	e, err := lookupEncoding(enc)
	if err != nil {
		return nil, err
	}
	return &Dir{schemaDir: schemaDir, domainDir: domainDir, enc: e}, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, &plan.ConfigError{Code: plan.ErrCodeInvalidPlan, Message: fmt.Sprintf("unsupported encoding %q", name)}
	}
}

var descriptorColumns = []string{"NAME", "TYPE", "ALIAS", "LENGTH", "DEFAULT", "DOMAIN"}

// Fields reads the descriptor file of table, in file order.
func (d *Dir) Fields(table string) ([]ir.FieldDescriptor, error) {
	path := csvPath(d.schemaDir, table)
	records, err := d.readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, badFile(path, "empty file", nil)
	}

	idx, err := headerIndex(records[0], descriptorColumns)
	if err != nil {
		return nil, badFile(path, "header", err)
	}
	for _, required := range []string{"NAME", "TYPE"} {
		if _, ok := idx[required]; !ok {
			return nil, badFile(path, "missing column "+required, nil)
		}
	}

	fields := make([]ir.FieldDescriptor, 0, len(records)-1)
	for n, rec := range records[1:] {
		line := n + 2
		cell := func(col string) *string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return nil
			}
			v := strings.TrimSpace(rec[i])
			if v == "" {
				return nil
			}
			return &v
		}

		name := cell("NAME")
		if name == nil {
			return nil, badFile(path, fmt.Sprintf("line %d: missing NAME", line), nil)
		}
		typText := cell("TYPE")
		if typText == nil {
			return nil, badFile(path, fmt.Sprintf("line %d: %s has no TYPE", line, *name), nil)
		}
		typ, err := ir.ParseFieldType(*typText)
		if err != nil {
			return nil, badFile(path, fmt.Sprintf("line %d", line), err)
		}

		fd := ir.FieldDescriptor{Name: *name, Type: typ, Default: cell("DEFAULT"), Domain: cell("DOMAIN")}
		if alias := cell("ALIAS"); alias != nil {
			fd.Alias = *alias
		}
		if l := cell("LENGTH"); l != nil {
			n, err := parseLength(*l)
			if err != nil {
				return nil, badFile(path, fmt.Sprintf("line %d: %s LENGTH", line, *name), err)
			}
			fd.Length = &n
		}
		if fd.Default != nil {
			if _, err := ir.Parse(*fd.Default, typ); err != nil {
				return nil, badFile(path, fmt.Sprintf("line %d: %s DEFAULT", line, *name), err)
			}
		}
		fields = append(fields, fd)
	}
	return fields, nil
}

// CodedValues reads the domain file of domain. The first column is the
// code and the second the description; the header row is skipped.
// Descriptions may repeat.
func (d *Dir) CodedValues(domain string) ([]ir.CodedValue, error) {
	path := csvPath(d.domainDir, domain)
	records, err := d.readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, badFile(path, "empty file", nil)
	}

	values := make([]ir.CodedValue, 0, len(records)-1)
	for n, rec := range records[1:] {
		if len(rec) < 2 {
			return nil, badFile(path, fmt.Sprintf("line %d: want Code,Description", n+2), nil)
		}
		code := strings.TrimSpace(rec[0])
		if code == "" {
			return nil, badFile(path, fmt.Sprintf("line %d: empty code", n+2), nil)
		}
		values = append(values, ir.CodedValue{Code: code, Description: rec[1]})
	}
	return values, nil
}

func (d *Dir) readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &plan.ConfigError{Code: plan.ErrCodeMissingFile, Message: "file not found: " + path, Err: err}
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, d.enc.NewDecoder()))
	r.FieldsPerRecord = -1
	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, badFile(path, "parse", err)
		}
		for i := range rec {
			rec[i] = ir.NormalizeText(rec[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

func csvPath(dir, stem string) string {
	if filepath.Ext(stem) == "" {
		stem += ".csv"
	}
	return filepath.Join(dir, stem)
}

// headerIndex maps known column names (case-insensitive) to positions.
func headerIndex(header []string, known []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToUpper(strings.TrimSpace(h))
		for _, k := range known {
			if name == k {
				if _, dup := idx[k]; dup {
					return nil, fmt.Errorf("column %s repeated", k)
				}
				idx[k] = i
			}
		}
	}
	return idx, nil
}

// parseLength accepts "50" and the "50.0" that spreadsheet exports write.
func parseLength(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) || f < 0 {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return int(f), nil
}

func badFile(path, msg string, err error) error {
	return &plan.ConfigError{Code: plan.ErrCodeBadDescriptor, Message: path + ": " + msg, Err: err}
}
