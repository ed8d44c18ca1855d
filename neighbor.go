package matchgrid

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/matchgrid/binner"
	"github.com/hupe1980/matchgrid/geom"
	"github.com/hupe1980/matchgrid/internal/hypercube"
	"github.com/hupe1980/matchgrid/internal/unionfind"
)

// HitNeighborFinder answers exact adjacency questions over a set of hits
// using a single, unshifted grid.
//
// Two hits are within reach when they share a bin, or when they sit in
// adjacent bins on the halves facing each other, along every axis where the
// bins differ. Finding them means visiting, for each hit, the up to 64 bins
// reached by stepping half a bin towards the hit's own half along any subset
// of the axes.
//
// Hits get dense ids in the order they are added. HitNeighborFinder is not
// safe for concurrent use.
type HitNeighborFinder struct {
	grid
	binner *binner.SixDBinner
	hits   []*Hit
	ids    map[*Hit]uint32
	hash   map[uint64][]uint32

	opts options
}

// NewHitNeighborFinder creates an uninitialized HitNeighborFinder.
func NewHitNeighborFinder(optFns ...Option) *HitNeighborFinder {
	o := applyOptions(optFns)
	return &HitNeighborFinder{
		grid: grid{component: "HitNeighborFinder"},
		ids:  make(map[*Hit]uint32),
		hash: make(map[uint64][]uint32),
		opts: o,
	}
}

// Configure applies the geometry of cfg through the setters.
func (nf *HitNeighborFinder) Configure(cfg GridConfig) {
	nf.configure(cfg)
}

// Initialize builds the grid. It may only be called once.
func (nf *HitNeighborFinder) Initialize() error {
	if err := nf.begin(); err != nil {
		return err
	}
	b, err := binner.New(nf.box, [3]bool{}, nf.binWidths())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	nf.binner = b
	nf.initialized = true
	nf.opts.logger.Debug("neighbor finder initialized", "dims", b.Dims())
	return nil
}

// Binner returns the grid.
func (nf *HitNeighborFinder) Binner() *binner.SixDBinner {
	mustBeInitialized(nf.component, nf.initialized)
	return nf.binner
}

// Len returns the number of indexed hits.
func (nf *HitNeighborFinder) Len() int {
	return len(nf.hits)
}

// Hit returns the hit with dense id.
func (nf *HitNeighborFinder) Hit(id uint32) *Hit {
	return nf.hits[id]
}

// HitID returns the dense id of an indexed hit.
func (nf *HitNeighborFinder) HitID(h *Hit) (uint32, bool) {
	id, ok := nf.ids[h]
	return id, ok
}

// AddHits indexes hits. Every hit is checked first; if any is nil, outside
// the bounding box, or already indexed, nothing is added. AddHits may be
// called repeatedly; hits accumulate.
func (nf *HitNeighborFinder) AddHits(hits []*Hit) error {
	mustBeInitialized(nf.component, nf.initialized)
	start := time.Now()
	err := nf.addHits(hits)
	nf.opts.metricsCollector.RecordInsert("neighbor_finder", len(hits), time.Since(start), err)
	if err != nil {
		nf.opts.logger.Error("add hits failed", "count", len(hits), "error", err)
	}
	return err
}

func (nf *HitNeighborFinder) addHits(hits []*Hit) error {
	if len(nf.hits)+len(hits) > math.MaxUint32 {
		return fmt.Errorf("%w: more than %d hits", ErrInvalidConfig, uint64(math.MaxUint32))
	}
	batch := make(map[*Hit]struct{}, len(hits))
	for _, h := range hits {
		if err := checkHit(nf.box, h); err != nil {
			return err
		}
		if _, ok := nf.ids[h]; ok {
			return ErrDuplicateHit
		}
		if _, ok := batch[h]; ok {
			return ErrDuplicateHit
		}
		batch[h] = struct{}{}
	}

	for _, h := range hits {
		id := uint32(len(nf.hits))
		nf.hits = append(nf.hits, h)
		nf.ids[h] = id
		bin := nf.binner.Index(h.Coord)
		nf.hash[bin] = append(nf.hash[bin], id)
	}
	return nil
}

// forEachNeighborBin calls fn for every bin reached from p by stepping half
// a bin width, towards the side of p's half-bin, along a subset of the
// axes. The empty subset (p's own bin) is included. Subsets whose
// translational step leaves the bounding box are skipped.
func (nf *HitNeighborFinder) forEachNeighborBin(p geom.Real6, half binner.HalfBin6D, fn func(step hypercube.Corner, nb binner.Neighbor, index uint64)) {
	halfsteps := nf.binner.HalfBinWidths()
	for i := range geom.Dims {
		if half[i] == 0 {
			halfsteps[i] = -halfsteps[i]
		}
	}

	var it hypercube.Iterator
	for !it.Done() {
		step := it.Corner()
		var steps geom.Real6
		for i := range geom.Dims {
			if step.Has(i) {
				steps[i] = halfsteps[i]
			}
		}
		nb, axis := binner.AdvanceToNeighborBin(p, steps, nf.binner)
		if axis != binner.InRange {
			it.SkipAxis(axis)
			continue
		}
		fn(step, nb, nf.binner.BinIndex(nb.Bin))
		it.Next()
	}
}

// withinReach reports whether a hit with half-bin nbHalf, found in the bin
// reached by step, is within half a bin of the query.
//
// Along a stepped axis the neighbor must sit in the half of its bin that
// faces the query, which is the opposite half to the query's. Theta is the
// exception when the step reflected through a pole: the neighbor bin then
// folds back onto the query's side, so the halves must agree.
func withinReach(qHalf, nbHalf binner.HalfBin6D, step hypercube.Corner, nb binner.Neighbor) bool {
	for a := range geom.AxisTheta {
		if step.Has(a) && qHalf[a] == nbHalf[a] {
			return false
		}
	}
	if step.Has(geom.AxisTheta) {
		if nb.ThetaReflected {
			return qHalf[geom.AxisTheta] == nbHalf[geom.AxisTheta]
		}
		return qHalf[geom.AxisTheta] != nbHalf[geom.AxisTheta]
	}
	return true
}

// ConnectedComponents partitions the indexed hits into groups of hits
// connected by chains of within-reach pairs. Every hit is in exactly one
// group. Groups are ordered by their earliest added hit; members keep
// insertion order.
func (nf *HitNeighborFinder) ConnectedComponents() [][]*Hit {
	mustBeInitialized(nf.component, nf.initialized)
	start := time.Now()

	ds := nf.components()
	groups := ds.Groups()
	out := make([][]*Hit, len(groups))
	for i, g := range groups {
		members := make([]*Hit, len(g))
		for j, id := range g {
			members[j] = nf.hits[id]
		}
		out[i] = members
	}

	nf.opts.metricsCollector.RecordConnectedComponents(len(nf.hits), len(out), time.Since(start))
	nf.opts.logger.LogComponents(context.Background(), len(nf.hits), len(out))
	return out
}

// ComponentBitmaps is ConnectedComponents expressed as sets of hit ids.
func (nf *HitNeighborFinder) ComponentBitmaps() []*roaring.Bitmap {
	mustBeInitialized(nf.component, nf.initialized)
	groups := nf.components().Groups()
	out := make([]*roaring.Bitmap, len(groups))
	for i, g := range groups {
		out[i] = roaring.BitmapOf(g...)
	}
	return out
}

func (nf *HitNeighborFinder) components() *unionfind.DisjointSets {
	ds := unionfind.New(len(nf.hits))

	var visited [hypercube.NumCorners]bool
	for _, ids := range nf.hash {
		// Hits sharing a bin are always connected.
		for _, id := range ids[1:] {
			ds.Union(ids[0], id)
		}

		// One hit per half-bin is enough: the rest of the bin is already
		// joined to it, and its neighbor bins are the same.
		clear(visited[:])
		for _, qid := range ids {
			q := nf.hits[qid]
			qHalf := nf.binner.HalfBin6(q.Coord)
			c := qHalf.Corner()
			if visited[c] {
				continue
			}
			visited[c] = true

			nf.forEachNeighborBin(q.Coord, qHalf, func(step hypercube.Corner, nb binner.Neighbor, index uint64) {
				for _, nid := range nf.hash[index] {
					if ds.Same(qid, nid) {
						continue
					}
					nbHalf := nf.binner.HalfBin6(nf.hits[nid].Coord)
					if withinReach(qHalf, nbHalf, step, nb) {
						ds.Union(qid, nid)
					}
				}
			})
		}
	}
	return ds
}

// NeighborHits returns the indexed hits within reach of any of the query
// hits, each once, in discovery order. Query hits that are themselves
// indexed are not reported. Query hits need not be indexed or share a bin.
func (nf *HitNeighborFinder) NeighborHits(query []*Hit) []*Hit {
	mustBeInitialized(nf.component, nf.initialized)
	start := time.Now()

	found := roaring.New()
	skip := roaring.New()
	for _, q := range query {
		if id, ok := nf.ids[q]; ok {
			skip.Add(id)
		}
	}
	// A bin is exhausted once every occupant has been reported; later
	// queries need not look at it again.
	exhausted := roaring64.New()

	var out []*Hit
	for _, q := range query {
		if q == nil {
			continue
		}
		qHalf := nf.binner.HalfBin6(q.Coord)
		nf.forEachNeighborBin(q.Coord, qHalf, func(step hypercube.Corner, nb binner.Neighbor, index uint64) {
			if exhausted.Contains(index) {
				return
			}
			ids, ok := nf.hash[index]
			if !ok {
				exhausted.Add(index)
				return
			}
			all := true
			for _, nid := range ids {
				if found.Contains(nid) || skip.Contains(nid) {
					continue
				}
				nbHalf := nf.binner.HalfBin6(nf.hits[nid].Coord)
				if withinReach(qHalf, nbHalf, step, nb) {
					found.Add(nid)
					out = append(out, nf.hits[nid])
				} else {
					all = false
				}
			}
			if all {
				exhausted.Add(index)
			}
		})
	}

	nf.opts.metricsCollector.RecordNeighborQuery(len(query), len(out), time.Since(start))
	return out
}
