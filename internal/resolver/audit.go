package resolver

import (
	"github.com/roach88/netmigrate/internal/ir"
	"github.com/roach88/netmigrate/internal/recode"
)

// ReplacesColumn lists the replaced ABBs in the audit extract.
const ReplacesColumn = "REPLACES"

// AuditColumns is the audit extract header.
var AuditColumns = []string{
	recode.FieldABB, recode.FieldParkRes1, recode.FieldParkRes2, "NHSIC", recode.FieldSRA,
	"CHIBLVD", "TOLLSYS", "TRUCKRTE", "MESO", ReplacesColumn,
}

// AuditExtract returns the audit rows for the baseline links that replace
// legacy links, in newLinks order. Values render as text and nulls as
// empty cells.
func AuditExtract(newLinks []ir.Row, m *ReplacementMapping) [][]string {
	out := [][]string{}
	for _, r := range newLinks {
		if r.Str(recode.FieldBaseLink) != "1" {
			continue
		}
		abb := r.Str(recode.FieldABB)
		if !m.Has(abb) {
			continue
		}
		rec := make([]string, len(AuditColumns))
		for i, col := range AuditColumns {
			if col == ReplacesColumn {
				rec[i] = m.Render(abb)
				continue
			}
			rec[i] = r.Get(col).Text()
		}
		out = append(out, rec)
	}
	return out
}
