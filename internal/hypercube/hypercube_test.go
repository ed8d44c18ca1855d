package hypercube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumCorners(t *testing.T) {
	assert.Equal(t, 64, NumCorners)
	assert.Equal(t, 1<<Dims, NumCorners)
}

func TestAllVisitsEveryCornerOnce(t *testing.T) {
	seen := make(map[[Dims]bool]int)
	count := 0
	for c := range All() {
		seen[c.Flags()]++
		count++
	}
	assert.Equal(t, NumCorners, count)
	assert.Len(t, seen, NumCorners)
}

func TestCornerOfRoundTrip(t *testing.T) {
	for c := range All() {
		assert.Equal(t, c, CornerOf(c.Flags()))
	}
	c := CornerOf([Dims]bool{true, false, false, false, false, true})
	assert.True(t, c.Has(0))
	assert.True(t, c.Has(5))
	assert.False(t, c.Has(3))
	assert.Equal(t, 0b100001, c.Index())
}

func TestIteratorOrder(t *testing.T) {
	var it Iterator
	var got []Corner
	for !it.Done() {
		got = append(got, it.Corner())
		it.Next()
	}
	require.Len(t, got, NumCorners)
	for i, c := range got {
		assert.Equal(t, Corner(i), c)
	}

	it.Reset()
	assert.False(t, it.Done())
	assert.Equal(t, Corner(0), it.Corner())
}

func TestIteratorSkipAxis(t *testing.T) {
	// Reject every corner that steps along axis 1: half of all corners.
	var it Iterator
	visited := 0
	for !it.Done() {
		c := it.Corner()
		if c.Has(1) {
			it.SkipAxis(1)
			continue
		}
		visited++
		it.Next()
	}
	assert.Equal(t, NumCorners/2, visited)
}

func TestIteratorSkipAxisCarries(t *testing.T) {
	var it Iterator
	// Position at 0b011111: axis 0 unset, every other axis set.
	for range 0b011111 {
		it.Next()
	}
	it.SkipAxis(2)
	assert.Equal(t, Corner(0b100000), it.Corner())

	it.SkipAxis(0)
	assert.True(t, it.Done())
}
