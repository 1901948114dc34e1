package recode

import (
	"fmt"

	"github.com/roach88/netmigrate/internal/ir"
)

// Link field names shared by the legacy and current link tables.
const (
	FieldABB        = "ABB"
	FieldANode      = "ANODE"
	FieldBNode      = "BNODE"
	FieldBaseLink   = "BASELINK"
	FieldModes      = "MODES"
	FieldTruckRes   = "TRUCKRES"
	FieldParkRes1   = "PARKRES1"
	FieldParkRes2   = "PARKRES2"
	FieldCLTL       = "CLTL"
	FieldToll       = "TOLLDOLLARS"
	FieldVClearance = "VCLEARANCE"
	FieldSRA        = "SRA"
)

// RecodedFields lists the link fields RecodeLink may set.
var RecodedFields = []string{FieldParkRes1, FieldParkRes2, FieldCLTL, FieldToll, FieldModes, FieldSRA}

// LegacyLink is the typed view of one pre-migration link row.
type LegacyLink struct {
	ABB        string
	ANode      int64
	BNode      int64
	BaseLink   string
	Mode       Mode
	TruckRes   string
	ParkRes1   string
	ParkRes2   string
	CLTL       int64
	HasCLTL    bool
	Toll       float64
	VClearance int64
	HasClear   bool
	SRA        string

	// Row is the full legacy row.
	Row ir.Row
}

// NewLegacyLink reads the typed attributes of a legacy link row.
// A null toll reads as zero. Numbers stored as text are parsed; other
// text in a numeric field is an error.
func NewLegacyLink(r ir.Row) (LegacyLink, error) {
	abb := r.Str(FieldABB)
	if abb == "" {
		return LegacyLink{}, fmt.Errorf("legacy link without %s", FieldABB)
	}
	l := LegacyLink{
		ABB:      abb,
		BaseLink: r.Str(FieldBaseLink),
		Mode:     ParseMode(r.Str(FieldModes)),
		TruckRes: r.Str(FieldTruckRes),
		ParkRes1: r.Str(FieldParkRes1),
		ParkRes2: r.Str(FieldParkRes2),
		SRA:      r.Str(FieldSRA),
		Row:      r,
	}
	var err error
	if l.ANode, _, err = legacyInt(r, FieldANode); err != nil {
		return LegacyLink{}, fmt.Errorf("link %s: %w", abb, err)
	}
	if l.BNode, _, err = legacyInt(r, FieldBNode); err != nil {
		return LegacyLink{}, fmt.Errorf("link %s: %w", abb, err)
	}
	if l.CLTL, l.HasCLTL, err = legacyInt(r, FieldCLTL); err != nil {
		return LegacyLink{}, fmt.Errorf("link %s: %w", abb, err)
	}
	if l.Toll, _, err = Numeric(r.Get(FieldToll)); err != nil {
		return LegacyLink{}, fmt.Errorf("link %s: %s %w", abb, FieldToll, err)
	}
	if l.VClearance, l.HasClear, err = legacyInt(r, FieldVClearance); err != nil {
		return LegacyLink{}, fmt.Errorf("link %s: %w", abb, err)
	}
	return l, nil
}

// legacyInt reads an integer attribute, truncating fractions.
func legacyInt(r ir.Row, field string) (int64, bool, error) {
	f, ok, err := Numeric(r.Get(field))
	if err != nil {
		return 0, false, fmt.Errorf("%s %w", field, err)
	}
	return int64(f), ok, nil
}

// LegacyIndex maps ABB to legacy link. It is read-only once built.
type LegacyIndex struct {
	links map[string]LegacyLink
	order []string
}

// NewLegacyIndex indexes legacy link rows by ABB. ABB is unique per
// table, so a repeated ABB is an error.
func NewLegacyIndex(rows []ir.Row) (*LegacyIndex, error) {
	x := &LegacyIndex{links: make(map[string]LegacyLink, len(rows)), order: make([]string, 0, len(rows))}
	for i, r := range rows {
		l, err := NewLegacyLink(r)
		if err != nil {
			return nil, fmt.Errorf("legacy link %d: %w", i, err)
		}
		if _, dup := x.links[l.ABB]; dup {
			return nil, fmt.Errorf("legacy link %d: duplicate %s %q", i, FieldABB, l.ABB)
		}
		x.links[l.ABB] = l
		x.order = append(x.order, l.ABB)
	}
	return x, nil
}

// Get returns the legacy link with the given ABB.
func (x *LegacyIndex) Get(abb string) (LegacyLink, bool) {
	l, ok := x.links[abb]
	return l, ok
}

// Len returns the number of indexed links.
func (x *LegacyIndex) Len() int { return len(x.links) }

// RecodeLink returns the recoded business-rule fields for the link with
// the given ABB. Fields a rule leaves alone are absent from the result so
// that they take the schema default.
func RecodeLink(abb string, index *LegacyIndex) (ir.Row, error) {
	l, ok := index.Get(abb)
	if !ok {
		return nil, &LookupError{Lookup: "legacy links", Key: abb}
	}

	out := ir.Row{}
	if v, ok := ParkingRestriction(l.ParkRes1); ok {
		out[FieldParkRes1] = ir.String(v)
	}
	if v, ok := ParkingRestriction(l.ParkRes2); ok {
		out[FieldParkRes2] = ir.String(v)
	}
	if l.HasCLTL {
		if v, ok := CLTL(l.CLTL); ok {
			out[FieldCLTL] = ir.Int(v)
		}
	}
	out[FieldToll] = ir.String(FormatToll(l.Toll))

	mode, ok, err := FuseMode(l.Mode, l.TruckRes)
	if err != nil {
		return nil, &LookupError{Lookup: "truck restriction", Key: abb, Message: err.Error()}
	}
	if ok {
		out[FieldModes] = ir.String(mode)
	}

	if v, ok := SRA(l.SRA); ok {
		out[FieldSRA] = ir.String(v)
	}
	return out, nil
}
