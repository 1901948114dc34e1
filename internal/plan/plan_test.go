package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/netmigrate/internal/ir"
)

func TestDefault_LoadsAndValidates(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	assert.Len(t, p.Domains, 25)
	assert.Len(t, p.Tables, 11)
	assert.Len(t, p.Relationships, 9)
	assert.Equal(t, "replaced_abbs.csv", p.AuditFileName())

	arc, ok := p.Table("hwynet_arc")
	require.True(t, ok)
	assert.Equal(t, RoleLinks, arc.Role)
	assert.Equal(t, ir.GeometryPolyline, arc.Geometry)
	assert.Equal(t, []string{AllFields}, arc.NonNullable)
	assert.Equal(t, []string{"SRA"}, arc.Nullable)
	assert.Equal(t, "hwynet_arc", arc.SourceTable())
	assert.Equal(t, "hwynet_arc", arc.SchemaSource())

	coding, ok := p.Table("hwyproj_coding")
	require.True(t, ok)
	assert.Equal(t, "hwynet_arc", coding.Links)
	assert.Len(t, coding.Fields, 21)

	itin, ok := p.Table("bus_base_itin")
	require.True(t, ok)
	require.Len(t, itin.Rewrites, 1)
	assert.Equal(t, RewriteMap, itin.Rewrites[0].Kind)
	assert.Equal(t, map[string]string{"0": "1"}, itin.Rewrites[0].Values)

	vc, ok := p.Domain("VCLEARANCE")
	require.True(t, ok)
	require.NotNil(t, vc.Range)
	assert.Equal(t, -1.0, vc.Range.Min)
	assert.Equal(t, 999.0, vc.Range.Max)

	subzone, _ := p.Domain("SUBZONE")
	assert.Equal(t, ir.PolicyDefault, subzone.Spec().Policy, "empty policy defaults")
	assert.Equal(t, "SUBZONE", subzone.CodesSource())
}

func TestParseYAML_RejectsUnknownKeys(t *testing.T) {
	_, err := ParseYAML([]byte(`
domains: []
tables: []
tabels: []
`))
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestValidate(t *testing.T) {
	valid := func() Plan {
		return Plan{
			Domains: []DomainPlan{
				{Name: "ZONE", BaseType: ir.FieldLong, Kind: ir.DomainRange, Range: &Range{Min: 1, Max: 9999}},
				{Name: "TTF", BaseType: ir.FieldText, Kind: ir.DomainCoded},
			},
			Tables: []TablePlan{
				{Name: "hwynet_arc", Geometry: ir.GeometryPolyline, Role: RoleLinks, Fields: []string{"ABB"}},
				{Name: "hwyproj_coding", Geometry: ir.GeometryNone, Role: RoleCoding, Links: "hwynet_arc", Fields: []string{"TIPID"}},
				{Name: "bus_current", Geometry: ir.GeometryPolyline, Role: RoleEmpty},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Plan)
		ok     bool
	}{
		{"valid", func(*Plan) {}, true},
		{"duplicate domain", func(p *Plan) { p.Domains = append(p.Domains, p.Domains[0]) }, false},
		{"range without bounds", func(p *Plan) { p.Domains[0].Range = nil }, false},
		{"inverted range", func(p *Plan) { p.Domains[0].Range = &Range{Min: 5, Max: 1} }, false},
		{"coded with range", func(p *Plan) { p.Domains[1].Range = &Range{} }, false},
		{"unknown kind", func(p *Plan) { p.Domains[1].Kind = "SET" }, false},
		{"unknown base type", func(p *Plan) { p.Domains[1].BaseType = "BLOB" }, false},
		{"unknown role", func(p *Plan) { p.Tables[2].Role = "clone" }, false},
		{"unknown geometry", func(p *Plan) { p.Tables[2].Geometry = "POLYGON" }, false},
		{"copy without fields", func(p *Plan) { p.Tables[0].Fields = nil }, false},
		{"coding before links", func(p *Plan) { p.Tables[0], p.Tables[1] = p.Tables[1], p.Tables[0] }, false},
		{"star with others", func(p *Plan) { p.Tables[0].NonNullable = []string{"*", "ABB"} }, false},
		{"exceptions without star", func(p *Plan) { p.Tables[0].Nullable = []string{"SRA"} }, false},
		{"rewrite on links role", func(p *Plan) {
			p.Tables[0].Rewrites = []Rewrite{{Field: "ABB", Kind: RewriteTIPID}}
		}, false},
		{"bad encoding", func(p *Plan) { p.Encoding = "latin-9" }, false},
		{"relationship to unknown table", func(p *Plan) {
			p.Relationships = []ir.Relationship{{Name: "r", Origin: "hwynet_arc", Destination: "nowhere", OriginKey: "ABB", ForeignKey: "ABB"}}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			err := p.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsConfigError(err), "validation errors are ConfigErrors")
		})
	}
}

func TestValidate_CopyRewrites(t *testing.T) {
	p := Plan{Tables: []TablePlan{{
		Name: "hwyproj", Geometry: ir.GeometryPolyline, Role: RoleCopy,
		Fields:   []string{"TIPID"},
		Rewrites: []Rewrite{{Field: "NOTES", Kind: RewriteTIPID}},
	}}}
	require.Error(t, p.Validate(), "rewrite of an uncopied field")

	p.Tables[0].Rewrites = []Rewrite{{Field: "TIPID", Kind: RewriteMap}}
	require.Error(t, p.Validate(), "map rewrite without values")

	p.Tables[0].Rewrites = []Rewrite{{Field: "TIPID", Kind: RewriteTIPID}}
	require.NoError(t, p.Validate())
}

func TestParseCUE_AppliesSchemaDefaults(t *testing.T) {
	src := `
domains: [{
	name:      "HOUR"
	base_type: "SHORT"
	kind:      "CODED"
	codes: [{code: "0", description: "Midnight"}, {code: "1", description: "1 AM"}]
}]
tables: [{
	name:   "parknride"
	role:   "copy"
	fields: ["FACILITY", "NODE"]
}]
`
	p, err := ParseCUE([]byte(src), "plan.cue")
	require.NoError(t, err)

	require.Len(t, p.Domains, 1)
	assert.Equal(t, ir.PolicyDefault, p.Domains[0].Policy)
	assert.Len(t, p.Domains[0].Codes, 2)
	require.Len(t, p.Tables, 1)
	assert.Equal(t, ir.GeometryNone, p.Tables[0].Geometry)
}

func TestParseCUE_RejectsSchemaViolations(t *testing.T) {
	tests := map[string]string{
		"unknown field": `domains: [], tables: [], extra: 1`,
		"bad role":      `domains: [], tables: [{name: "t", role: "clone"}]`,
		"range missing": `domains: [{name: "Z", base_type: "LONG", kind: "RANGE"}], tables: []`,
		"not cue":       `domains: [`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCUE([]byte(src), "plan.cue")
			require.Error(t, err)
			assert.True(t, IsConfigError(err))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
domains: []
tables:
  - {name: parknride, geometry: NONE, role: copy, fields: [NODE]}
`), 0o644))
	p, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Len(t, p.Tables, 1)

	cuePath := filepath.Join(dir, "plan.cue")
	require.NoError(t, os.WriteFile(cuePath, []byte(`domains: [], tables: [{name: "bus_future", role: "empty"}]`), 0o644))
	p, err = Load(cuePath)
	require.NoError(t, err)
	assert.Equal(t, RoleEmpty, p.Tables[0].Role)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeMissingFile, ce.Code)

	txtPath := filepath.Join(dir, "plan.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o644))
	_, err = Load(txtPath)
	assert.True(t, IsConfigError(err))
}

func TestConfigError_Message(t *testing.T) {
	err := NewUnknownFieldError("hwynet_arc", "SRAX", "nullability list")
	assert.Equal(t, "UNKNOWN_FIELD: nullability list names a field that does not exist (table=hwynet_arc, field=SRAX)", err.Error())
	assert.True(t, IsConfigError(err))
}
