package matchgrid_test

import (
	"fmt"
	"log"
	"strings"

	"github.com/hupe1980/matchgrid"
	"github.com/hupe1980/matchgrid/geom"
)

// Example_connectedComponents groups hits that are chained by close pairs.
func Example_connectedComponents() {
	nf := matchgrid.NewHitNeighborFinder()
	nf.SetBoundingBox(geom.NewBoundingBox(geom.Real3{0, 0, 0}, geom.Real3{10, 10, 10}))
	nf.SetUniformXYZBinWidth(2)
	nf.SetUniformEulerBinWidth(30)
	if err := nf.Initialize(); err != nil {
		log.Fatal(err)
	}

	hits := []matchgrid.Hit{
		{Ref: 1, Coord: geom.Real6{1, 1, 1, 10, 10, 90}},
		{Ref: 2, Coord: geom.Real6{1.5, 1, 1, 10, 10, 90}},
		{Ref: 3, Coord: geom.Real6{9, 9, 9, 200, 200, 45}},
	}
	if err := nf.AddHits(matchgrid.HitPtrs(hits)); err != nil {
		log.Fatal(err)
	}

	for _, g := range nf.ConnectedComponents() {
		refs := make([]uint64, len(g))
		for i, h := range g {
			refs[i] = h.Ref
		}
		fmt.Println(refs)
	}
	// Output:
	// [1 2]
	// [3]
}

// Example_matchCounter estimates the number of matches from a YAML configuration.
func Example_matchCounter() {
	cfg, err := matchgrid.LoadGridConfig(strings.NewReader(`
bounding_box:
  lower: [0, 0, 0]
  upper: [10, 10, 10]
xyz_bin_width: 2
euler_bin_width: 30
num_constraints: 2
`))
	if err != nil {
		log.Fatal(err)
	}

	mc := matchgrid.NewMatchCounter()
	mc.Configure(cfg)
	if err := mc.Initialize(); err != nil {
		log.Fatal(err)
	}

	a := []matchgrid.Hit{{Ref: 1, Coord: geom.Real6{1, 1, 1, 10, 10, 90}}, {Ref: 2, Coord: geom.Real6{1.2, 1, 1, 10, 10, 90}}}
	b := []matchgrid.Hit{{Ref: 3, Coord: geom.Real6{1.4, 1, 1, 10, 10, 90}}}
	_ = mc.AddHits(1, matchgrid.HitPtrs(a))
	_ = mc.AddHits(2, matchgrid.HitPtrs(b))

	fmt.Println(mc.CountMatches())
	// Output: 2
}

// Example_matchOutputTracker reports each match once.
func Example_matchOutputTracker() {
	tr := matchgrid.NewMatchOutputTracker()
	for _, m := range []matchgrid.MatchLite{{1, 7}, {2, 7}, {1, 7}} {
		if tr.MatchHasBeenOutput(m) {
			continue
		}
		tr.NoteOutputMatch(m)
		fmt.Println(m)
	}
	// Output:
	// [1 7]
	// [2 7]
}
