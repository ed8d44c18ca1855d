// Package hypercube enumerates the corners of the unit hypercube {0,1}^Dims.
//
// A corner selects, per axis, one of two choices: "offset or not" when
// building the redundant hash tables, and "step into the neighbor bin or
// stay" when walking neighbor bins. Corners are visited in lexicographic
// order with axis 0 most significant, which lets a walk abandon every
// corner sharing a prefix at once (see Iterator.SkipAxis).
package hypercube

import "iter"

// Dims is the dimensionality of the hypercube.
const Dims = 6

// NumCorners is the number of corners, 2^Dims.
const NumCorners = 1 << Dims

// Corner is one vertex of the hypercube. Axis a is set when bit
// (Dims-1-a) is set, so the numeric order of corners is lexicographic.
type Corner uint8

// CornerOf builds the corner whose set axes are flags.
func CornerOf(flags [Dims]bool) Corner {
	var c Corner
	for a, f := range flags {
		if f {
			c |= 1 << (Dims - 1 - a)
		}
	}
	return c
}

// Has reports whether axis is set.
func (c Corner) Has(axis int) bool {
	return c&(1<<(Dims-1-axis)) != 0
}

// Index returns the position of c in the enumeration order.
func (c Corner) Index() int {
	return int(c)
}

// Flags expands c into per-axis booleans.
func (c Corner) Flags() [Dims]bool {
	var f [Dims]bool
	for a := range Dims {
		f[a] = c.Has(a)
	}
	return f
}

// All yields every corner in lexicographic order.
func All() iter.Seq[Corner] {
	return func(yield func(Corner) bool) {
		for v := range NumCorners {
			if !yield(Corner(v)) {
				return
			}
		}
	}
}

// Iterator walks the corners in lexicographic order.
// The zero value is positioned at the first corner.
type Iterator struct {
	pos int
}

// Reset rewinds the iterator to the first corner.
func (it *Iterator) Reset() {
	it.pos = 0
}

// Done reports whether every corner has been visited.
func (it *Iterator) Done() bool {
	return it.pos >= NumCorners
}

// Corner returns the current corner.
func (it *Iterator) Corner() Corner {
	return Corner(it.pos)
}

// Next advances to the following corner.
func (it *Iterator) Next() {
	it.pos++
}

// SkipAxis advances past every remaining corner that agrees with the current
// corner on axes 0..axis. Use it when the choice made for axis makes the
// whole prefix invalid.
func (it *Iterator) SkipAxis(axis int) {
	shift := Dims - 1 - axis
	it.pos = ((it.pos >> shift) + 1) << shift
}
