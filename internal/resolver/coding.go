package resolver

import (
	"fmt"

	"github.com/roach88/netmigrate/internal/ir"
	"github.com/roach88/netmigrate/internal/recode"
)

// Project coding field names.
const (
	FieldTIPID         = "TIPID"
	FieldABB           = "ABB"
	FieldActionCode    = "ACTION_CODE"
	FieldRepANode      = "REP_ANODE"
	FieldRepBNode      = "REP_BNODE"
	FieldNewModes      = "NEW_MODES"
	FieldNewToll       = "NEW_TOLLDOLLARS"
	FieldNewVClearance = "NEW_VCLEARANCE"
)

// ReplaceFields lists the legacy fields read from replace rows.
var ReplaceFields = []string{FieldTIPID, FieldABB, FieldRepANode, FieldRepBNode}

// ProjectCoding is one project coding record: the project, the link it
// touches, what it does, and the NEW_/ADD_ attributes it sets.
type ProjectCoding struct {
	TIPID  string
	ABB    string
	Action recode.ActionCode

	// Attrs holds the attribute fields keyed by coding field name.
	Attrs ir.Row
}

// Row returns the record as a row for insertion.
func (c ProjectCoding) Row() ir.Row {
	r := make(ir.Row, len(c.Attrs)+3)
	for k, v := range c.Attrs {
		r[k] = v
	}
	r[FieldTIPID] = ir.String(c.TIPID)
	r[FieldABB] = ir.String(c.ABB)
	r[FieldActionCode] = ir.String(c.Action.Raw())
	return r
}

// FromRow splits a coding row into its key fields and attributes. Values
// are taken as they are.
func FromRow(r ir.Row) ProjectCoding {
	c := ProjectCoding{
		TIPID:  r.Str(FieldTIPID),
		ABB:    r.Str(FieldABB),
		Action: recode.ParseActionCode(r.Str(FieldActionCode)),
		Attrs:  make(ir.Row, len(r)),
	}
	for k, v := range r {
		switch k {
		case FieldTIPID, FieldABB, FieldActionCode:
		default:
			c.Attrs[k] = v
		}
	}
	return c
}

// PassThrough migrates a legacy coding record that is not a replacement.
// The TIPID is normalized, the toll formatted and the mode recoded with
// recode.CodingMode. Every other attribute is copied verbatim. A null
// toll formats as zero.
func PassThrough(r ir.Row) (ProjectCoding, error) {
	c := FromRow(r)
	tipid, err := recode.NormalizeTIPID(c.TIPID)
	if err != nil {
		return ProjectCoding{}, fmt.Errorf("coding %s: %w", c.ABB, err)
	}
	c.TIPID = tipid

	if v, ok := c.Attrs[FieldNewToll]; ok {
		toll, _, err := recode.Numeric(v)
		if err != nil {
			return ProjectCoding{}, fmt.Errorf("coding %s: %s %w", c.ABB, FieldNewToll, err)
		}
		c.Attrs[FieldNewToll] = ir.String(recode.FormatToll(toll))
	}
	if v, ok := c.Attrs[FieldNewModes]; ok && !ir.IsNull(v) {
		c.Attrs[FieldNewModes] = ir.String(recode.CodingMode(v.Text()))
	}
	return c, nil
}
