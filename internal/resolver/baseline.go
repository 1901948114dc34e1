package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/netmigrate/internal/ir"
	"github.com/roach88/netmigrate/internal/recode"
)

// NodePair identifies a link by its end nodes.
type NodePair struct {
	A, B int64
}

// SyntheticKey is the ABB of the baseline link between the pair.
func (p NodePair) SyntheticKey() string {
	return fmt.Sprintf("%d-%d-1", p.A, p.B)
}

// BaselineIndex maps node pairs to baseline links of the migrated link
// table. It is read-only once built.
type BaselineIndex struct {
	links map[NodePair]ir.Row
}

// NewBaselineIndex indexes the baseline links (BASELINK "1") among
// newLinks by (ANODE, BNODE). Other links are ignored. A node pair that
// appears on two baseline links is an error.
func NewBaselineIndex(newLinks []ir.Row) (*BaselineIndex, error) {
	x := &BaselineIndex{links: make(map[NodePair]ir.Row)}
	for i, r := range newLinks {
		if r.Str(recode.FieldBaseLink) != "1" {
			continue
		}
		a, okA := nodeID(r.Get(recode.FieldANode))
		b, okB := nodeID(r.Get(recode.FieldBNode))
		if !okA || !okB {
			return nil, fmt.Errorf("baseline link %d (%s): missing node pair", i, r.Str(recode.FieldABB))
		}
		p := NodePair{A: a, B: b}
		if prev, dup := x.links[p]; dup {
			return nil, fmt.Errorf("baseline link %s: node pair %d-%d already used by %s",
				r.Str(recode.FieldABB), a, b, prev.Str(recode.FieldABB))
		}
		x.links[p] = r
	}
	return x, nil
}

// Get returns the baseline link between a and b.
func (x *BaselineIndex) Get(p NodePair) (ir.Row, bool) {
	r, ok := x.links[p]
	return r, ok
}

// Len returns the number of baseline links.
func (x *BaselineIndex) Len() int { return len(x.links) }

// nodeID reads a node number. Legacy tables store node columns as
// integers, doubles or text depending on the export.
func nodeID(v ir.Value) (int64, bool) {
	switch n := v.(type) {
	case ir.Int:
		return int64(n), true
	case ir.Float:
		return int64(n), true
	case ir.String:
		id, err := strconv.ParseInt(strings.TrimSpace(string(n)), 10, 64)
		return id, err == nil
	}
	return 0, false
}
