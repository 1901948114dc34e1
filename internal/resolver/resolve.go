package resolver

import (
	"fmt"
	"log/slog"

	"github.com/roach88/netmigrate/internal/ir"
	"github.com/roach88/netmigrate/internal/recode"
)

// linkToCoding maps baseline link fields to the coding fields a synthetic
// replacement record sets, in insertion order.
var linkToCoding = []struct {
	link, coding string
}{
	{"DIRECTIONS", "NEW_DIRECTIONS"},
	{"TYPE1", "NEW_TYPE1"},
	{"TYPE2", "NEW_TYPE2"},
	{"AMPM1", "NEW_AMPM1"},
	{"AMPM2", "NEW_AMPM2"},
	{"POSTEDSPEED1", "NEW_POSTEDSPEED1"},
	{"POSTEDSPEED2", "NEW_POSTEDSPEED2"},
	{"THRULANES1", "NEW_THRULANES1"},
	{"THRULANES2", "NEW_THRULANES2"},
	{"THRULANEWIDTH1", "NEW_THRULANEWIDTH1"},
	{"THRULANEWIDTH2", "NEW_THRULANEWIDTH2"},
	{"PARKLANES1", "ADD_PARKLANES1"},
	{"PARKLANES2", "ADD_PARKLANES2"},
	{"SIGIC", "ADD_SIGIC"},
	{recode.FieldCLTL, "ADD_CLTL"},
	{"RRGRADECROSS", "ADD_RRGRADECROSS"},
	{recode.FieldToll, FieldNewToll},
	{recode.FieldModes, FieldNewModes},
	{recode.FieldVClearance, FieldNewVClearance},
}

// Resolution is the outcome of resolving a batch of replace rows.
type Resolution struct {
	// Records holds one synthetic modify record per resolved row, in
	// input order.
	Records []ProjectCoding

	// Mapping records which legacy links each baseline link replaces.
	Mapping *ReplacementMapping

	// Skipped counts rows whose node pair has no baseline link.
	Skipped int
}

// Resolver turns replace rows into modify records against a baseline index.
type Resolver struct {
	index *BaselineIndex
}

// New returns a resolver over index.
func New(index *BaselineIndex) *Resolver {
	return &Resolver{index: index}
}

// Resolve processes replace rows (TIPID, ABB, REP_ANODE, REP_BNODE) in
// order. A row whose node pair is not a baseline link is skipped: it
// produces no record and no mapping entry, only a count. Every other row
// produces an ACTION_CODE "4" record for the replaced ABB carrying the
// baseline link's attributes.
func (r *Resolver) Resolve(replaceRows []ir.Row) (Resolution, error) {
	res := Resolution{Mapping: NewReplacementMapping()}

	for i, row := range replaceRows {
		abb := row.Str(FieldABB)
		tipid, err := recode.NormalizeTIPID(row.Str(FieldTIPID))
		if err != nil {
			return Resolution{}, fmt.Errorf("replace row %d (%s): %w", i, abb, err)
		}

		a, okA := nodeID(row.Get(FieldRepANode))
		b, okB := nodeID(row.Get(FieldRepBNode))
		if !okA || !okB {
			slog.Debug("replacement without node pair", "tipid", tipid, "abb", abb)
			res.Skipped++
			continue
		}
		pair := NodePair{A: a, B: b}
		link, ok := r.index.Get(pair)
		if !ok {
			slog.Debug("replacement node pair not in baseline", "tipid", tipid, "abb", abb,
				"anode", a, "bnode", b)
			res.Skipped++
			continue
		}

		rec := ProjectCoding{
			TIPID:  tipid,
			ABB:    abb,
			Action: recode.ModifyAction,
			Attrs:  make(ir.Row, len(linkToCoding)),
		}
		for _, m := range linkToCoding {
			rec.Attrs[m.coding] = link.Get(m.link)
		}
		res.Records = append(res.Records, rec)
		res.Mapping.Add(pair.SyntheticKey(), abb)
	}

	if res.Skipped > 0 {
		slog.Warn("replacements skipped: node pair not a baseline link",
			"skipped", res.Skipped, "resolved", len(res.Records))
	}
	return res, nil
}
