// Package matchgrid indexes candidate rigid-body placements ("hits") in a
// six-dimensional space and answers proximity questions about them.
//
// A hit is a position x, y, z inside a bounding box plus an orientation
// given as Euler angles phi, psi (periodic on [0, 360)) and theta (on
// [0, 180], reflecting at the poles). Space is cut into bins of
// configurable width along each axis.
//
// # Indexes
//
// Three indexes share the same geometry configuration:
//
//   - HitHasher keeps 64 copies of the grid, each shifted by half a bin on
//     a different subset of axes, so hits within half a bin of each other
//     share a bin in at least one table. Used to enumerate matches: one
//     hit per geometric constraint, all mutually close.
//   - HitNeighborFinder uses one grid and an exact half-bin adjacency test
//     to split hits into connected components, or to find the hits near a
//     query set.
//   - MatchCounter estimates how many matches exist before enumerating them.
//
// MatchOutputTracker de-duplicates matches that several tables report.
//
// # Quick Start
//
//	h := matchgrid.NewHitHasher(matchgrid.WithLogger(matchgrid.NewTextLogger(slog.LevelDebug)))
//	h.SetBoundingBox(geom.NewBoundingBox(geom.Real3{0, 0, 0}, geom.Real3{10, 10, 10}))
//	h.SetUniformXYZBinWidth(2)
//	h.SetUniformEulerBinWidth(30)
//	h.SetNumConstraints(2)
//	if err := h.Initialize(); err != nil {
//	    return err
//	}
//	_ = h.InsertHits(1, first)
//	_ = h.InsertHits(2, second)
//	for bin, ms := range h.Table(0).All() {
//	    ...
//	}
//
// # Lifecycle
//
// Indexes are configured with setters (or Configure with a GridConfig,
// which can be loaded from YAML) and then initialized once. Calling a
// setter after Initialize, initializing twice, or inserting before
// Initialize panics. Hits are owned by the caller; indexes keep pointers.
//
// # Boundaries
//
// The bounding box is closed at its lower corner and open at its upper
// corner on every axis. Euler bin widths should divide 360 so that bins
// wrap cleanly around phi and psi.
//
// # Concurrency
//
// Indexes are not safe for concurrent use. HitHasher.InsertHitsParallel
// fills its tables concurrently, one goroutine per table.
package matchgrid
