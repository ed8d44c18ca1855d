// Package testutil provides testing utilities for matchgrid.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random placements and for computing
// exact answers to compare the grid-based indexes against.
//
// # Random Placements
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformPoints(box, 1000)          // anywhere in the box
//	pts = rng.ClusteredPoints(box, 1000, 5, 0.5) // around 5 random centers
//
// # Exact Components (Ground Truth)
//
//	groups := testutil.BruteForceComponents(len(pts), func(i, j int) bool {
//		return reach(pts[i], pts[j])
//	})
package testutil
