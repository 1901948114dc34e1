package builder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/netmigrate/internal/ir"
	"github.com/roach88/netmigrate/internal/plan"
	"github.com/roach88/netmigrate/internal/store"
)

// recordingStore logs every call so tests can check ordering.
type recordingStore struct {
	calls []string
	fail  string // call prefix that returns an error
}

func (r *recordingStore) record(call string) error {
	r.calls = append(r.calls, call)
	if r.fail != "" && len(call) >= len(r.fail) && call[:len(r.fail)] == r.fail {
		return errors.New("boom")
	}
	return nil
}

func (r *recordingStore) CreateDomain(_ context.Context, spec ir.DomainSpec) error {
	return r.record(fmt.Sprintf("domain %s %s %s %s", spec.Name, spec.BaseType, spec.Kind, spec.Policy))
}

func (r *recordingStore) AddCodedValue(_ context.Context, domain, code, description string) error {
	return r.record(fmt.Sprintf("code %s %s=%s", domain, code, description))
}

func (r *recordingStore) SetRange(_ context.Context, domain string, min, max float64) error {
	return r.record(fmt.Sprintf("range %s %v..%v", domain, min, max))
}

func (r *recordingStore) CreateTable(_ context.Context, name string, geometry ir.GeometryKind) error {
	return r.record(fmt.Sprintf("table %s %s", name, geometry))
}

func (r *recordingStore) AddFields(_ context.Context, table string, fields []ir.FieldDescriptor) error {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return r.record(fmt.Sprintf("fields %s %v", table, names))
}

func (r *recordingStore) SetNullable(_ context.Context, table, field string, nullable bool) error {
	return r.record(fmt.Sprintf("nullable %s.%s %v", table, field, nullable))
}

// mapSource serves codes from memory.
type mapSource map[string][]ir.CodedValue

func (m mapSource) Fields(table string) ([]ir.FieldDescriptor, error) {
	return nil, errors.New("not used")
}

func (m mapSource) CodedValues(domain string) ([]ir.CodedValue, error) {
	v, ok := m[domain]
	if !ok {
		return nil, &plan.ConfigError{Code: plan.ErrCodeMissingFile, Message: domain}
	}
	return v, nil
}

func TestBuildDomain_CodedFromSource(t *testing.T) {
	st := &recordingStore{}
	src := mapSource{"AMPM": {{Code: "1", Description: "All"}, {Code: "2", Description: "Peak"}, {Code: "3", Description: "Peak"}}}

	n, err := BuildDomain(context.Background(), st, plan.DomainPlan{
		Name: "AMPM", BaseType: ir.FieldText, Kind: ir.DomainCoded, Policy: ir.PolicyDuplicate,
	}, src)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{
		"domain AMPM TEXT CODED DUPLICATE",
		"code AMPM 1=All",
		"code AMPM 2=Peak",
		"code AMPM 3=Peak",
	}, st.calls)
}

func TestBuildDomain_CodesFileAndInline(t *testing.T) {
	st := &recordingStore{}
	src := mapSource{"hours": {{Code: "0", Description: "Midnight"}}}

	_, err := BuildDomain(context.Background(), st, plan.DomainPlan{
		Name: "HOUR", BaseType: ir.FieldShort, Kind: ir.DomainCoded, CodesFile: "hours",
	}, src)
	require.NoError(t, err)

	_, err = BuildDomain(context.Background(), st, plan.DomainPlan{
		Name: "BINARY", BaseType: ir.FieldShort, Kind: ir.DomainCoded,
		Codes: []ir.CodedValue{{Code: "0", Description: "No"}, {Code: "1", Description: "Yes"}},
	}, src)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"domain HOUR SHORT CODED DEFAULT",
		"code HOUR 0=Midnight",
		"domain BINARY SHORT CODED DEFAULT",
		"code BINARY 0=No",
		"code BINARY 1=Yes",
	}, st.calls)
}

func TestBuildDomain_Range(t *testing.T) {
	st := &recordingStore{}

	n, err := BuildDomain(context.Background(), st, plan.DomainPlan{
		Name: "ZONE", BaseType: ir.FieldLong, Kind: ir.DomainRange, Range: &plan.Range{Min: 1, Max: 9999},
	}, mapSource{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"domain ZONE LONG RANGE DEFAULT", "range ZONE 1..9999"}, st.calls)
}

func TestBuildDomain_MissingFileIsFatal(t *testing.T) {
	st := &recordingStore{}

	_, err := BuildDomain(context.Background(), st, plan.DomainPlan{
		Name: "TTF", BaseType: ir.FieldText, Kind: ir.DomainCoded,
	}, mapSource{})
	require.Error(t, err)
	assert.True(t, plan.IsConfigError(err))
}

func TestBuildDomain_StoreFailureIsFatal(t *testing.T) {
	st := &recordingStore{fail: "code"}

	_, err := BuildDomain(context.Background(), st, plan.DomainPlan{
		Name: "AMPM", BaseType: ir.FieldText, Kind: ir.DomainCoded,
		Codes: []ir.CodedValue{{Code: "1", Description: "a"}, {Code: "2", Description: "b"}},
	}, mapSource{})
	require.Error(t, err)
	assert.Len(t, st.calls, 2, "no retries and no further codes after a failure")
}

func descriptors(names ...string) []ir.FieldDescriptor {
	out := make([]ir.FieldDescriptor, len(names))
	for i, n := range names {
		out[i] = ir.FieldDescriptor{Name: n, Type: ir.FieldText}
	}
	return out
}

func TestBuildTable_NullabilityAfterFields(t *testing.T) {
	st := &recordingStore{}
	tp := plan.TablePlan{
		Name: "hwyproj", Geometry: ir.GeometryPolyline, Role: plan.RoleCopy,
		NonNullable: []string{"COMPLETION_YEAR", "TIPID"},
	}

	err := BuildTable(context.Background(), st, tp, descriptors("TIPID", "COMPLETION_YEAR", "NOTES"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"table hwyproj POLYLINE",
		"fields hwyproj [TIPID COMPLETION_YEAR NOTES]",
		"nullable hwyproj.COMPLETION_YEAR false",
		"nullable hwyproj.TIPID false",
	}, st.calls)
}

func TestBuildTable_AllFieldsExcept(t *testing.T) {
	st := &recordingStore{}
	tp := plan.TablePlan{
		Name: "hwynet_arc", Geometry: ir.GeometryPolyline, Role: plan.RoleLinks,
		NonNullable: []string{plan.AllFields}, Nullable: []string{"SRA"},
	}

	err := BuildTable(context.Background(), st, tp, descriptors("ABB", "SRA", "MODES"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"table hwynet_arc POLYLINE",
		"fields hwynet_arc [ABB SRA MODES]",
		"nullable hwynet_arc.ABB false",
		"nullable hwynet_arc.MODES false",
	}, st.calls)
}

func TestBuildTable_UnknownNullabilityFieldIsConfigError(t *testing.T) {
	tests := map[string]plan.TablePlan{
		"non-nullable list": {Name: "hwyproj", NonNullable: []string{"TIPID", "COMPLETION_YR"}},
		"nullable exception": {Name: "hwynet_arc", NonNullable: []string{plan.AllFields}, Nullable: []string{"SRAX"}},
	}
	for name, tp := range tests {
		t.Run(name, func(t *testing.T) {
			st := &recordingStore{}
			err := BuildTable(context.Background(), st, tp, descriptors("TIPID", "SRA"))

			var ce *plan.ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, plan.ErrCodeUnknownField, ce.Code)
			assert.Empty(t, st.calls, "nothing is created before the check")
		})
	}
}

func TestBuildTable_RealStore(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "out.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	_, err = BuildDomain(ctx, st, plan.DomainPlan{
		Name: "NODE", BaseType: ir.FieldLong, Kind: ir.DomainRange, Range: &plan.Range{Min: 0, Max: 29999},
	}, mapSource{})
	require.NoError(t, err)

	node := "NODE"
	err = BuildTable(ctx, st, plan.TablePlan{
		Name: "parknride", Geometry: ir.GeometryNone, Role: plan.RoleCopy, NonNullable: []string{"NODE"},
	}, []ir.FieldDescriptor{
		{Name: "FACILITY", Type: ir.FieldText},
		{Name: "NODE", Type: ir.FieldLong, Domain: &node},
	})
	require.NoError(t, err)

	nullable, err := st.Nullable("parknride", "NODE")
	require.NoError(t, err)
	assert.False(t, nullable)

	err = st.InsertRow(ctx, "parknride", ir.Row{"NODE": ir.Int(30000)})
	assert.ErrorIs(t, err, store.ErrDomainViolation, "range enforced by the store, not the builder")
}
