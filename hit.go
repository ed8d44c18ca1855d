package matchgrid

import (
	"github.com/hupe1980/matchgrid/geom"
)

// ConstraintID identifies the geometric constraint (independent hit source)
// a hit belongs to. Ids are 1-based: a match needs one hit for each of
// 1..N.
type ConstraintID int

// Hit is a candidate rigid-body placement. Hits are owned by the caller;
// indexes keep *Hit references and never copy or free them, so the caller
// must keep hits alive while any index that holds them is in use.
type Hit struct {
	// Ref is the caller's back-reference to whatever produced the hit.
	// Match signatures are built from it.
	Ref uint64
	// Coord is the placement: x, y, z, phi, psi, theta.
	Coord geom.Real6
}

// HitPtrs returns pointers to every element of hits.
func HitPtrs(hits []Hit) []*Hit {
	out := make([]*Hit, len(hits))
	for i := range hits {
		out[i] = &hits[i]
	}
	return out
}

// MatchSet holds, for each geometric constraint, the hits that were
// recorded for it. While a match is being assembled a slot may hold several
// candidates; a complete match has exactly one hit per slot.
type MatchSet struct {
	slots [][]*Hit
}

// NewMatchSet creates an empty MatchSet for n constraints.
func NewMatchSet(n int) *MatchSet {
	return &MatchSet{slots: make([][]*Hit, n)}
}

// NumConstraints returns the number of slots.
func (m *MatchSet) NumConstraints() int {
	return len(m.slots)
}

// Add appends h to the slot of constraint id. id must be in 1..N.
func (m *MatchSet) Add(id ConstraintID, h *Hit) {
	m.slots[id-1] = append(m.slots[id-1], h)
}

// Hits returns the hits recorded for constraint id.
func (m *MatchSet) Hits(id ConstraintID) []*Hit {
	return m.slots[id-1]
}

// Counts returns the number of hits per constraint, in constraint order.
func (m *MatchSet) Counts() []int {
	out := make([]int, len(m.slots))
	for i, s := range m.slots {
		out[i] = len(s)
	}
	return out
}

// Len returns the total number of hits across all slots.
func (m *MatchSet) Len() int {
	n := 0
	for _, s := range m.slots {
		n += len(s)
	}
	return n
}

// Complete reports whether every constraint has at least one hit.
func (m *MatchSet) Complete() bool {
	for _, s := range m.slots {
		if len(s) == 0 {
			return false
		}
	}
	return len(m.slots) > 0
}

// Lite returns the signature of the match when every slot holds exactly
// one hit. ok is false otherwise.
func (m *MatchSet) Lite() (MatchLite, bool) {
	out := make(MatchLite, len(m.slots))
	for i, s := range m.slots {
		if len(s) != 1 {
			return nil, false
		}
		out[i] = s[0].Ref
	}
	return out, true
}

// MatchLite is the lightweight signature of a complete match: the Ref of the
// chosen hit for each constraint, in constraint order.
type MatchLite []uint64
