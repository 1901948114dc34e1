package resolver

import (
	"github.com/roach88/netmigrate/internal/ir"
	"github.com/roach88/netmigrate/internal/recode"
)

// restrictedModeCode is the generic truck-restricted mode a modify record
// carries before its restriction is looked up.
const restrictedModeCode = "200"

// OverrideResult says which overrides changed a record.
type OverrideResult struct {
	Mode      bool
	Clearance bool
}

// Changed reports whether any override applied.
func (o OverrideResult) Changed() bool { return o.Mode || o.Clearance }

// ApplyOverrides applies the legacy-link overrides to a modify record:
//   - NEW_MODES "200" becomes the restricted mode fused with the legacy
//     truck restriction of the record's ABB, when there is one
//   - NEW_VCLEARANCE becomes the legacy clearance of the record's ABB,
//     when there is one
//
// Records of other actions are returned unchanged. The input record is
// not modified.
func ApplyOverrides(rec ProjectCoding, lk recode.Lookups) (ProjectCoding, OverrideResult) {
	var res OverrideResult
	if rec.Action.Kind != recode.ActionModify {
		return rec, res
	}

	out := rec
	out.Attrs = rec.Attrs.Clone()
	if out.Attrs.Str(FieldNewModes) == restrictedModeCode {
		if mode, ok := lk.RestrictedMode(rec.ABB); ok {
			out.Attrs[FieldNewModes] = ir.String(mode)
			res.Mode = true
		}
	}
	if v, ok := lk.Clearance(rec.ABB); ok {
		out.Attrs[FieldNewVClearance] = ir.Int(v)
		res.Clearance = true
	}
	return out, res
}
