package matchgrid

import "iter"

// HitHash maps a flat bin index to the MatchSet of hits in that bin.
// Only occupied bins are stored. It is not safe for concurrent use.
type HitHash struct {
	numConstraints int
	buckets        map[uint64]*MatchSet
	hits           int
}

// NewHitHash creates an empty table whose buckets hold n constraints.
func NewHitHash(n int) *HitHash {
	return &HitHash{
		numConstraints: n,
		buckets:        make(map[uint64]*MatchSet),
	}
}

// Insert records h for constraint id in bin, creating the bucket on first use.
func (hh *HitHash) Insert(bin uint64, id ConstraintID, h *Hit) {
	ms, ok := hh.buckets[bin]
	if !ok {
		ms = NewMatchSet(hh.numConstraints)
		hh.buckets[bin] = ms
	}
	ms.Add(id, h)
	hh.hits++
}

// Find returns the bucket of bin.
func (hh *HitHash) Find(bin uint64) (*MatchSet, bool) {
	ms, ok := hh.buckets[bin]
	return ms, ok
}

// All yields every occupied bin and its bucket, in no particular order.
func (hh *HitHash) All() iter.Seq2[uint64, *MatchSet] {
	return func(yield func(uint64, *MatchSet) bool) {
		for bin, ms := range hh.buckets {
			if !yield(bin, ms) {
				return
			}
		}
	}
}

// Len returns the number of occupied bins.
func (hh *HitHash) Len() int {
	return len(hh.buckets)
}

// NumHits returns the number of hit entries across all bins.
func (hh *HitHash) NumHits() int {
	return hh.hits
}

// Clear drops every bucket.
func (hh *HitHash) Clear() {
	clear(hh.buckets)
	hh.hits = 0
}
