package matchgrid

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/matchgrid/geom"
	"github.com/hupe1980/matchgrid/internal/hypercube"
	"github.com/hupe1980/matchgrid/testutil"
)

var testBox = geom.NewBoundingBox(geom.Real3{0, 0, 0}, geom.Real3{10, 10, 10})

func newTestHasher(t *testing.T, n int, optFns ...Option) *HitHasher {
	t.Helper()
	h := NewHitHasher(optFns...)
	h.SetBoundingBox(testBox)
	h.SetUniformXYZBinWidth(2)
	h.SetUniformEulerBinWidth(30)
	h.SetNumConstraints(n)
	require.NoError(t, h.Initialize())
	return h
}

// inTable reports whether table which holds p and q in the same bin, p for
// constraint 1 and q for constraint 2.
func inTable(h *HitHasher, which int, p, q *Hit) bool {
	b := h.Binner(which)
	if !b.Contains(p.Coord) || !b.Contains(q.Coord) {
		return false
	}
	ms, ok := h.Table(which).Find(b.Index(p.Coord))
	if !ok {
		return false
	}
	return containsHit(ms.Hits(1), p) && containsHit(ms.Hits(2), q)
}

func containsHit(hits []*Hit, h *Hit) bool {
	for _, x := range hits {
		if x == h {
			return true
		}
	}
	return false
}

func TestHitHasherInitialize(t *testing.T) {
	h := newTestHasher(t, 2)

	assert.Equal(t, 64, NumHashTables)
	assert.Equal(t, NumHashTables, h.NumTables())
	assert.True(t, h.Initialized())
	assert.Equal(t, testBox, h.BoundingBox())

	plain := h.Binner(0)
	assert.Equal(t, geom.Real3{0, 0, 0}, plain.BoundingBox().Lower)
	assert.Equal(t, [3]bool{}, plain.EulerOffsets())

	all := h.Binner(NumHashTables - 1)
	assert.Equal(t, geom.Real3{1, 1, 1}, all.BoundingBox().Lower)
	assert.Equal(t, geom.Real3{10, 10, 10}, all.BoundingBox().Upper)
	assert.Equal(t, [3]bool{true, true, true}, all.EulerOffsets())

	xOnly := h.Binner(hypercube.CornerOf([6]bool{true}).Index())
	assert.Equal(t, geom.Real3{1, 0, 0}, xOnly.BoundingBox().Lower)
	assert.Equal(t, [3]bool{}, xOnly.EulerOffsets())

	thetaOnly := h.Binner(hypercube.CornerOf([6]bool{5: true}).Index())
	assert.Equal(t, geom.Real3{0, 0, 0}, thetaOnly.BoundingBox().Lower)
	assert.Equal(t, [3]bool{false, false, true}, thetaOnly.EulerOffsets())
}

func TestHitHasherInitializeErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *HitHasher)
	}{
		{"EmptyBox", func(h *HitHasher) {
			h.SetBoundingBox(geom.NewBoundingBox(geom.Real3{0, 0, 0}, geom.Real3{0, 1, 1}))
			h.SetUniformXYZBinWidth(1)
			h.SetUniformEulerBinWidth(30)
			h.SetNumConstraints(1)
		}},
		{"ZeroXYZWidth", func(h *HitHasher) {
			h.SetBoundingBox(testBox)
			h.SetUniformEulerBinWidth(30)
			h.SetNumConstraints(1)
		}},
		{"NegativeEulerWidth", func(h *HitHasher) {
			h.SetBoundingBox(testBox)
			h.SetUniformXYZBinWidth(1)
			h.SetEulerBinWidths(geom.Real3{30, -1, 30})
			h.SetNumConstraints(1)
		}},
		{"NoConstraints", func(h *HitHasher) {
			h.SetBoundingBox(testBox)
			h.SetUniformXYZBinWidth(1)
			h.SetUniformEulerBinWidth(30)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHitHasher()
			tt.setup(h)
			err := h.Initialize()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.False(t, h.Initialized())
		})
	}
}

func TestHitHasherLifecyclePanics(t *testing.T) {
	h := NewHitHasher()
	assert.Panics(t, func() { _ = h.InsertHit(1, &Hit{}) })

	h = newTestHasher(t, 1)
	assert.Panics(t, func() { h.SetUniformXYZBinWidth(1) })
	assert.Panics(t, func() { h.SetBoundingBox(testBox) })
	assert.Panics(t, func() { h.SetNumConstraints(3) })
	assert.Panics(t, func() { _ = h.Initialize() })
}

func TestHitHasherCloseHitsShareABin(t *testing.T) {
	h := newTestHasher(t, 2)
	rng := testutil.NewRNG(4711)
	hw := h.Binner(0).HalfBinWidths()

	var pairs [][2]*Hit
	for len(pairs) < 200 {
		p := rng.UniformPointsTheta(testBox, 1, 20, 160)[0]
		q := p
		for i := range geom.Dims {
			q[i] += (rng.Float64()*2 - 1) * 0.95 * hw[i]
		}
		q[geom.AxisPhi] = geom.WrapPeriodic(q[geom.AxisPhi])
		q[geom.AxisPsi] = geom.WrapPeriodic(q[geom.AxisPsi])
		if !testBox.Contains(q.XYZ()) {
			continue
		}
		ref := uint64(len(pairs))
		pair := [2]*Hit{{Ref: ref, Coord: p}, {Ref: ref, Coord: q}}
		require.NoError(t, h.InsertHit(1, pair[0]))
		require.NoError(t, h.InsertHit(2, pair[1]))
		pairs = append(pairs, pair)
	}

	for _, pair := range pairs {
		shared := false
		for which := range h.NumTables() {
			if inTable(h, which, pair[0], pair[1]) {
				shared = true
				break
			}
		}
		assert.True(t, shared, "no table shares a bin for %v and %v", pair[0].Coord, pair[1].Coord)
	}
}

func TestHitHasherPhiWraparound(t *testing.T) {
	h := newTestHasher(t, 2)
	p := &Hit{Coord: geom.Real6{5, 5, 5, 359, 100, 90}}
	q := &Hit{Coord: geom.Real6{5, 5, 5, 1, 100, 90}}
	require.NoError(t, h.InsertHit(1, p))
	require.NoError(t, h.InsertHit(2, q))

	phiShifted := hypercube.CornerOf([6]bool{3: true}).Index()
	assert.False(t, inTable(h, 0, p, q))
	assert.True(t, inTable(h, phiShifted, p, q))
}

func TestHitHasherOutOfBox(t *testing.T) {
	h := newTestHasher(t, 1)

	for _, c := range []geom.Real6{
		{10, 5, 5, 0, 0, 90},
		{-0.1, 5, 5, 0, 0, 90},
		{5, 5, 11, 0, 0, 90},
	} {
		err := h.InsertHit(1, &Hit{Coord: c})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrOutOfBoundingBox)

		var oob *ErrOutOfBounds
		require.True(t, errors.As(err, &oob))
		assert.Equal(t, c.XYZ(), oob.Point)
	}

	// Lower corner is inside.
	require.NoError(t, h.InsertHit(1, &Hit{Coord: geom.Real6{0, 0, 0, 0, 0, 0}}))
}

func TestHitHasherInvalidHits(t *testing.T) {
	h := newTestHasher(t, 2)

	assert.ErrorIs(t, h.InsertHit(1, nil), ErrNilHit)
	assert.ErrorIs(t, h.InsertHit(1, &Hit{Coord: geom.Real6{1, 1, 1, 0, 0, 181}}), ErrInvalidAngle)
	assert.ErrorIs(t, h.InsertHit(1, &Hit{Coord: geom.Real6{1, 1, 1, 0, 0, -1}}), ErrInvalidAngle)

	for _, id := range []ConstraintID{0, 3, -1} {
		err := h.InsertHit(id, &Hit{Coord: geom.Real6{1, 1, 1, 0, 0, 90}})
		assert.ErrorIs(t, err, ErrInvalidConstraint)

		var cr *ErrConstraintRange
		require.True(t, errors.As(err, &cr))
		assert.Equal(t, id, cr.ID)
		assert.Equal(t, 2, cr.N)
	}
}

func TestHitHasherSkipsShiftedTables(t *testing.T) {
	h := newTestHasher(t, 1)

	// x = 0.5 is below the lower bound of every table shifted along x.
	require.NoError(t, h.InsertHit(1, &Hit{Coord: geom.Real6{0.5, 5, 5, 100, 100, 90}}))

	total := 0
	for which := range h.NumTables() {
		n := h.Table(which).NumHits()
		if hypercube.Corner(which).Has(geom.AxisX) {
			assert.Zero(t, n, "table %d", which)
		} else {
			assert.Equal(t, 1, n, "table %d", which)
		}
		total += n
	}
	assert.Equal(t, NumHashTables/2, total)
}

func TestHitHasherInsertHitsAtomic(t *testing.T) {
	h := newTestHasher(t, 1)
	hits := HitPtrs([]Hit{
		{Ref: 1, Coord: geom.Real6{1, 1, 1, 0, 0, 90}},
		{Ref: 2, Coord: geom.Real6{20, 1, 1, 0, 0, 90}},
	})

	require.ErrorIs(t, h.InsertHits(1, hits), ErrOutOfBoundingBox)
	for which := range h.NumTables() {
		assert.Zero(t, h.Table(which).Len())
	}

	require.NoError(t, h.InsertHits(1, hits[:1]))
	assert.Equal(t, 1, h.Table(0).NumHits())
}

func TestHitHasherInsertHitInto(t *testing.T) {
	h := newTestHasher(t, 1)
	hit := &Hit{Coord: geom.Real6{3, 3, 3, 45, 45, 45}}

	require.NoError(t, h.InsertHitInto(7, 1, hit))

	for which := range h.NumTables() {
		if which == 7 {
			assert.Equal(t, 1, h.Table(which).NumHits())
			continue
		}
		assert.Zero(t, h.Table(which).NumHits())
	}

	assert.ErrorIs(t, h.InsertHitInto(7, 2, hit), ErrInvalidConstraint)
}

func TestHitHasherClearTable(t *testing.T) {
	h := newTestHasher(t, 1)
	require.NoError(t, h.InsertHit(1, &Hit{Coord: geom.Real6{3, 3, 3, 45, 45, 45}}))

	h.ClearTable(0)

	assert.Zero(t, h.Table(0).Len())
	assert.Equal(t, 1, h.Table(1).Len())
}

func TestHitHasherParallelMatchesSerial(t *testing.T) {
	rng := testutil.NewRNG(42)
	var hits []Hit
	for i, p := range rng.UniformPoints(testBox, 2000) {
		hits = append(hits, Hit{Ref: uint64(i), Coord: p})
	}
	ptrs := HitPtrs(hits)

	serial := newTestHasher(t, 2)
	parallel := newTestHasher(t, 2)
	require.NoError(t, serial.InsertHits(1, ptrs[:1000]))
	require.NoError(t, serial.InsertHits(2, ptrs[1000:]))
	require.NoError(t, parallel.InsertHitsParallel(context.Background(), 1, ptrs[:1000]))
	require.NoError(t, parallel.InsertHitsParallel(context.Background(), 2, ptrs[1000:]))

	for which := range NumHashTables {
		s, p := serial.Table(which), parallel.Table(which)
		require.Equal(t, s.Len(), p.Len(), "table %d", which)
		require.Equal(t, s.NumHits(), p.NumHits(), "table %d", which)
		for bin, ms := range s.All() {
			pm, ok := p.Find(bin)
			require.True(t, ok)
			assert.Equal(t, ms.Hits(1), pm.Hits(1))
			assert.Equal(t, ms.Hits(2), pm.Hits(2))
		}
	}
}

func TestHitHasherParallelCanceled(t *testing.T) {
	h := newTestHasher(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.InsertHitsParallel(ctx, 1, HitPtrs([]Hit{{Coord: geom.Real6{1, 1, 1, 0, 0, 90}}}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHitHasherParallelValidatesFirst(t *testing.T) {
	h := newTestHasher(t, 1)
	hits := HitPtrs([]Hit{{Coord: geom.Real6{1, 1, 1, 0, 0, 90}}, {Coord: geom.Real6{1, 1, 1, 0, 0, 200}}})

	require.ErrorIs(t, h.InsertHitsParallel(context.Background(), 1, hits), ErrInvalidAngle)
	assert.Zero(t, h.Table(0).Len())
}

func TestHitHasherMetrics(t *testing.T) {
	m := &BasicMetricsCollector{}
	h := newTestHasher(t, 1, WithMetricsCollector(m))

	require.NoError(t, h.InsertHits(1, HitPtrs([]Hit{{Coord: geom.Real6{1, 1, 1, 0, 0, 90}}})))
	require.Error(t, h.InsertHits(1, HitPtrs([]Hit{{Coord: geom.Real6{11, 1, 1, 0, 0, 90}}})))

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats.InsertCount)
	assert.Equal(t, int64(1), stats.InsertHits)
	assert.Equal(t, int64(1), stats.InsertErrors)
}
