// Package unionfind implements a disjoint-set forest over dense integer ids.
//
// Nodes are 0..n-1 and live in flat slices; there are no pointers between
// nodes. Union is by rank and Find uses path halving.
package unionfind

// DisjointSets is a disjoint-set forest. It is not safe for concurrent use.
type DisjointSets struct {
	parent []uint32
	rank   []uint8
	sets   int
}

// New creates a forest of n singleton sets.
func New(n int) *DisjointSets {
	ds := &DisjointSets{}
	ds.Grow(n)
	return ds
}

// Grow adds singleton nodes until the forest holds n nodes.
func (ds *DisjointSets) Grow(n int) {
	for i := len(ds.parent); i < n; i++ {
		ds.parent = append(ds.parent, uint32(i))
		ds.rank = append(ds.rank, 0)
		ds.sets++
	}
}

// Len returns the number of nodes.
func (ds *DisjointSets) Len() int {
	return len(ds.parent)
}

// Count returns the number of disjoint sets.
func (ds *DisjointSets) Count() int {
	return ds.sets
}

// Find returns the representative of x's set.
func (ds *DisjointSets) Find(x uint32) uint32 {
	for ds.parent[x] != x {
		ds.parent[x] = ds.parent[ds.parent[x]]
		x = ds.parent[x]
	}
	return x
}

// Same reports whether a and b are in the same set.
func (ds *DisjointSets) Same(a, b uint32) bool {
	return ds.Find(a) == ds.Find(b)
}

// Union merges the sets of a and b. It reports whether a merge happened;
// joining two members of one set is a no-op.
func (ds *DisjointSets) Union(a, b uint32) bool {
	ra, rb := ds.Find(a), ds.Find(b)
	if ra == rb {
		return false
	}
	switch {
	case ds.rank[ra] < ds.rank[rb]:
		ra, rb = rb, ra
	case ds.rank[ra] == ds.rank[rb]:
		ds.rank[ra]++
	}
	ds.parent[rb] = ra
	ds.sets--
	return true
}

// Groups partitions the nodes by set. Groups are ordered by their smallest
// member and members are in increasing order.
func (ds *DisjointSets) Groups() [][]uint32 {
	slot := make(map[uint32]int, ds.sets)
	groups := make([][]uint32, 0, ds.sets)
	for i := range ds.parent {
		id := uint32(i)
		root := ds.Find(id)
		g, ok := slot[root]
		if !ok {
			g = len(groups)
			slot[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], id)
	}
	return groups
}
