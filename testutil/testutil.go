package testutil

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/matchgrid/geom"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// uniformLocked draws a value in [lo, hi) (caller must hold lock).
func (r *RNG) uniformLocked(lo, hi float64) float64 {
	v := lo + r.rand.Float64()*(hi-lo)
	if v >= hi {
		v = lo
	}
	return v
}

// pointLocked draws a placement with x, y, z in box, phi and psi in
// [0, 360) and theta in [thetaLo, thetaHi).
func (r *RNG) pointLocked(box geom.BoundingBox, thetaLo, thetaHi float64) geom.Real6 {
	var p geom.Real6
	for i := range 3 {
		p[i] = r.uniformLocked(box.Lower[i], box.Upper[i])
	}
	p[geom.AxisPhi] = r.uniformLocked(0, geom.PhiPsiSpan)
	p[geom.AxisPsi] = r.uniformLocked(0, geom.PhiPsiSpan)
	p[geom.AxisTheta] = r.uniformLocked(thetaLo, thetaHi)
	return p
}

// UniformPoints generates num placements uniformly distributed over box and
// the full Euler angle range.
func (r *RNG) UniformPoints(box geom.BoundingBox, num int) []geom.Real6 {
	return r.UniformPointsTheta(box, num, 0, geom.ThetaSpan)
}

// UniformPointsTheta is UniformPoints with theta restricted to
// [thetaLo, thetaHi). Useful to keep placements away from the poles.
func (r *RNG) UniformPointsTheta(box geom.BoundingBox, num int, thetaLo, thetaHi float64) []geom.Real6 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]geom.Real6, num)
	for i := range out {
		out[i] = r.pointLocked(box, thetaLo, thetaHi)
	}
	return out
}

// Jitter returns p moved by up to spread along x, y and z and up to
// angleSpread degrees along each Euler angle. The result is clamped back
// into box and into the valid angle ranges.
func (r *RNG) Jitter(box geom.BoundingBox, p geom.Real6, spread, angleSpread float64) geom.Real6 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jitterLocked(box, p, spread, angleSpread)
}

func (r *RNG) jitterLocked(box geom.BoundingBox, p geom.Real6, spread, angleSpread float64) geom.Real6 {
	q := p
	for i := range 3 {
		q[i] += r.uniformLocked(-spread, spread)
		q[i] = min(max(q[i], box.Lower[i]), math.Nextafter(box.Upper[i], box.Lower[i]))
	}
	q[geom.AxisPhi] = geom.WrapPeriodic(q[geom.AxisPhi] + r.uniformLocked(-angleSpread, angleSpread))
	q[geom.AxisPsi] = geom.WrapPeriodic(q[geom.AxisPsi] + r.uniformLocked(-angleSpread, angleSpread))
	q[geom.AxisTheta] = min(max(q[geom.AxisTheta]+r.uniformLocked(-angleSpread, angleSpread), 0), geom.ThetaSpan)
	return q
}

// ClusteredPoints generates placements clustered around random centers.
// Useful for testing component detection on non-uniform data.
func (r *RNG) ClusteredPoints(box geom.BoundingBox, num, clusters int, spread float64) []geom.Real6 {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers := make([]geom.Real6, clusters)
	for i := range centers {
		centers[i] = r.pointLocked(box, 0, geom.ThetaSpan)
	}

	out := make([]geom.Real6, num)
	for i := range out {
		c := centers[r.rand.Intn(clusters)]
		out[i] = r.jitterLocked(box, c, spread, spread)
	}
	return out
}

// BruteForceComponents partitions 0..n-1 into the connected components of
// the graph whose edges are the pairs for which linked returns true. It
// checks every pair and is meant as ground truth for small n.
//
// Components are ordered by their smallest member; members are ascending.
func BruteForceComponents(n int, linked func(i, j int) bool) [][]int {
	comp := make([]int, n)
	for i := range comp {
		comp[i] = -1
	}

	var groups [][]int
	for seed := range n {
		if comp[seed] >= 0 {
			continue
		}
		id := len(groups)
		comp[seed] = id
		group := []int{seed}
		for k := 0; k < len(group); k++ {
			i := group[k]
			for j := range n {
				if comp[j] < 0 && linked(i, j) {
					comp[j] = id
					group = append(group, j)
				}
			}
		}
		sort.Ints(group)
		groups = append(groups, group)
	}
	return groups
}
