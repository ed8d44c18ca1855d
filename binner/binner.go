// Package binner maps points of 6-D placement space onto a regular grid.
//
// A SixDBinner covers a translational bounding box and the full Euler angle
// ranges. Each point maps to a bin (Bin6D), a flat 64-bit bin index, and a
// half-bin (HalfBin6D) that records which half of its bin the point falls in
// along every axis. Half-bins are what make boundary-safe neighbor searches
// possible: a point within half a bin width of a bin boundary is always in
// the half next to that boundary.
//
// Euler offsets shift the angular grid by half a bin width per axis. Offset
// and non-offset binners together are used to build redundant hash tables.
package binner

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/hupe1980/matchgrid/geom"
	"github.com/hupe1980/matchgrid/internal/hypercube"
)

// ErrInvalidGrid is returned when a binner cannot be built from its inputs.
var ErrInvalidGrid = errors.New("invalid grid")

// Bin6D holds the per-axis bin coordinates of a point.
type Bin6D [geom.Dims]uint64

// HalfBin6D holds, per axis, 0 if a point lies in the lower half of its bin
// and 1 if it lies in the upper half.
type HalfBin6D [geom.Dims]uint8

// Corner returns the half-bin as a hypercube corner. The 64 possible
// half-bins of a bin map one-to-one onto corners.
func (h HalfBin6D) Corner() hypercube.Corner {
	var flags [hypercube.Dims]bool
	for a, v := range h {
		flags[a] = v == 1
	}
	return hypercube.CornerOf(flags)
}

// SixDBinner is an immutable 6-D grid. It is safe for concurrent reads.
type SixDBinner struct {
	box          geom.BoundingBox
	eulerOffsets [3]bool
	widths       geom.Real6
	halfWidths   geom.Real6
	dims         Bin6D
	strides      Bin6D
}

// New builds a binner over box with the given bin widths (x, y, z in length
// units, phi, psi, theta in degrees). eulerOffsets shifts the grid of the
// corresponding Euler axis by half a bin width.
func New(box geom.BoundingBox, eulerOffsets [3]bool, widths geom.Real6) (*SixDBinner, error) {
	if err := box.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGrid, err)
	}
	for i, w := range widths {
		if !(w > 0) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: bin width for axis %d must be positive, got %g", ErrInvalidGrid, i, w)
		}
	}

	b := &SixDBinner{
		box:          box,
		eulerOffsets: eulerOffsets,
		widths:       widths,
	}
	for i := range geom.Dims {
		b.halfWidths[i] = widths[i] / 2
	}

	span := box.Span()
	for i := range 3 {
		b.dims[i] = binsFor(span[i], widths[i])
	}
	b.dims[geom.AxisPhi] = binsFor(geom.PhiPsiSpan, widths[geom.AxisPhi])
	b.dims[geom.AxisPsi] = binsFor(geom.PhiPsiSpan, widths[geom.AxisPsi])
	thetaSpan := geom.ThetaSpan
	if eulerOffsets[2] {
		thetaSpan += b.halfWidths[geom.AxisTheta]
	}
	b.dims[geom.AxisTheta] = binsFor(thetaSpan, widths[geom.AxisTheta])

	stride := uint64(1)
	for i := geom.Dims - 1; i >= 0; i-- {
		b.strides[i] = stride
		hi, lo := bits.Mul64(stride, b.dims[i])
		if hi != 0 {
			return nil, fmt.Errorf("%w: %v bins overflow a 64-bit index", ErrInvalidGrid, b.dims)
		}
		stride = lo
	}

	return b, nil
}

func binsFor(span, width float64) uint64 {
	n := math.Floor(span / width)
	if n*width < span {
		n++
	}
	return uint64(max(n, 1))
}

// BoundingBox returns the translational box covered by the grid.
func (b *SixDBinner) BoundingBox() geom.BoundingBox { return b.box }

// EulerOffsets reports which Euler axes are shifted by half a bin.
func (b *SixDBinner) EulerOffsets() [3]bool { return b.eulerOffsets }

// BinWidths returns the bin width of every axis.
func (b *SixDBinner) BinWidths() geom.Real6 { return b.widths }

// HalfBinWidths returns half the bin width of every axis.
func (b *SixDBinner) HalfBinWidths() geom.Real6 { return b.halfWidths }

// Dims returns the number of bins along every axis.
func (b *SixDBinner) Dims() Bin6D { return b.dims }

// NumBins returns the total number of bins in the grid.
func (b *SixDBinner) NumBins() uint64 { return b.strides[0] * b.dims[0] }

// Contains reports whether p lies inside the grid: x, y, z inside the box
// (closed below, open above) and theta inside [0, 180]. Phi and psi are
// periodic and only need to be finite.
func (b *SixDBinner) Contains(p geom.Real6) bool {
	if !b.box.Contains(p.XYZ()) {
		return false
	}
	if math.IsNaN(p[geom.AxisPhi]) || math.IsInf(p[geom.AxisPhi], 0) ||
		math.IsNaN(p[geom.AxisPsi]) || math.IsInf(p[geom.AxisPsi], 0) {
		return false
	}
	theta := p[geom.AxisTheta]
	return theta >= 0 && theta <= geom.ThetaSpan
}

// local maps coordinate v of axis onto the grid's [0, dims*width) frame.
func (b *SixDBinner) local(axis int, v float64) float64 {
	switch axis {
	case geom.AxisX, geom.AxisY, geom.AxisZ:
		return v - b.box.Lower[axis]
	case geom.AxisPhi, geom.AxisPsi:
		v = geom.WrapPeriodic(v)
		if b.eulerOffsets[axis-3] {
			v = geom.WrapPeriodic(v + b.halfWidths[axis])
		}
		return v
	default:
		v = min(max(v, 0), geom.ThetaSpan)
		if b.eulerOffsets[2] {
			v += b.halfWidths[axis]
		}
		return v
	}
}

func (b *SixDBinner) binAndHalf(axis int, v float64) (uint64, uint8) {
	u := b.local(axis, v)
	if u < 0 {
		return 0, 0
	}
	bin := uint64(u / b.widths[axis])
	if bin >= b.dims[axis] {
		bin = b.dims[axis] - 1
	}
	var half uint8
	if u-float64(bin)*b.widths[axis] >= b.halfWidths[axis] {
		half = 1
	}
	return bin, half
}

// Bin6 returns the bin of p. Points outside the grid are clamped onto its
// edge bins; callers check Contains first.
func (b *SixDBinner) Bin6(p geom.Real6) Bin6D {
	var out Bin6D
	for i := range geom.Dims {
		out[i], _ = b.binAndHalf(i, p[i])
	}
	return out
}

// HalfBin6 returns the half-bin of p.
func (b *SixDBinner) HalfBin6(p geom.Real6) HalfBin6D {
	var out HalfBin6D
	for i := range geom.Dims {
		_, out[i] = b.binAndHalf(i, p[i])
	}
	return out
}

// BinIndex flattens a bin into its 64-bit index.
func (b *SixDBinner) BinIndex(bin Bin6D) uint64 {
	var idx uint64
	for i := range geom.Dims {
		idx += bin[i] * b.strides[i]
	}
	return idx
}

// Index returns the flat bin index of p.
func (b *SixDBinner) Index(p geom.Real6) uint64 {
	return b.BinIndex(b.Bin6(p))
}

// Unflatten is the inverse of BinIndex.
func (b *SixDBinner) Unflatten(idx uint64) Bin6D {
	var out Bin6D
	for i := range geom.Dims {
		out[i] = idx / b.strides[i]
		idx %= b.strides[i]
	}
	return out
}
