package recode

// Lookups holds the side tables derived from the legacy links for the
// post-hoc coding overrides.
type Lookups struct {
	truckRes   map[string]string
	clearances map[string]int64
}

// NewLookups derives the override lookups from the legacy link index:
//   - truck restrictions: ABB -> TRUCKRES for links whose mode is not "2"
//     and whose TRUCKRES is neither "0" nor empty
//   - clearances: ABB -> VCLEARANCE for non-baseline links ("0") with a
//     nonzero, non-null clearance
func NewLookups(index *LegacyIndex) Lookups {
	lk := Lookups{
		truckRes:   make(map[string]string),
		clearances: make(map[string]int64),
	}
	for _, abb := range index.order {
		l := index.links[abb]
		if l.Mode.Raw() != "2" && l.TruckRes != "0" && l.TruckRes != "" {
			lk.truckRes[abb] = l.TruckRes
		}
		if l.BaseLink == "0" && l.HasClear && l.VClearance != 0 {
			lk.clearances[abb] = l.VClearance
		}
	}
	return lk
}

// TruckRestriction returns the legacy truck restriction code for abb.
func (lk Lookups) TruckRestriction(abb string) (string, bool) {
	v, ok := lk.truckRes[abb]
	return v, ok
}

// Clearance returns the legacy clearance for abb.
func (lk Lookups) Clearance(abb string) (int64, bool) {
	v, ok := lk.clearances[abb]
	return v, ok
}

// RestrictedMode re-fuses the generic truck-restricted mode with the
// restriction code recorded for abb.
func (lk Lookups) RestrictedMode(abb string) (string, bool) {
	code, ok := lk.truckRes[abb]
	if !ok {
		return "", false
	}
	return fuseTruckRestriction(code), true
}

// Sizes returns the number of entries in each lookup.
func (lk Lookups) Sizes() (truckRes, clearances int) {
	return len(lk.truckRes), len(lk.clearances)
}
