// Package geom defines the six-dimensional coordinate types used by the
// hit index: three Cartesian coordinates followed by three Euler angles
// (phi, psi, theta) in degrees.
package geom

import (
	"fmt"
	"math"
)

// Number of dimensions of a hit coordinate.
const Dims = 6

// Euler angle ranges in degrees.
const (
	// PhiPsiSpan is the period of phi and psi; values live in [0, 360).
	PhiPsiSpan = 360.0
	// ThetaSpan is the upper bound of theta; values live in [0, 180].
	ThetaSpan = 180.0
)

// Axis indices into a Real6.
const (
	AxisX = iota
	AxisY
	AxisZ
	AxisPhi
	AxisPsi
	AxisTheta
)

// Real3 is a fixed-size triple.
type Real3 [3]float64

// Real6 is a point in 6-D placement space: x, y, z, phi, psi, theta.
type Real6 [Dims]float64

// XYZ returns the translational part of p.
func (p Real6) XYZ() Real3 {
	return Real3{p[0], p[1], p[2]}
}

// Euler returns the rotational part of p.
func (p Real6) Euler() Real3 {
	return Real3{p[3], p[4], p[5]}
}

// Compose builds a Real6 from its translational and rotational parts.
func Compose(xyz, euler Real3) Real6 {
	return Real6{xyz[0], xyz[1], xyz[2], euler[0], euler[1], euler[2]}
}

// BoundingBox is an axis-aligned box in the translational dimensions.
//
// Containment is closed at Lower and open at Upper on every axis, so
// adjacent boxes never both claim a point on their shared face.
type BoundingBox struct {
	Lower Real3 `yaml:"lower"`
	Upper Real3 `yaml:"upper"`
}

// NewBoundingBox returns the box spanning lower to upper.
func NewBoundingBox(lower, upper Real3) BoundingBox {
	return BoundingBox{Lower: lower, Upper: upper}
}

// Contains reports whether p lies in [Lower, Upper) on every axis.
func (b BoundingBox) Contains(p Real3) bool {
	for i := range 3 {
		if !b.ContainsAxis(i, p[i]) {
			return false
		}
	}
	return true
}

// ContainsAxis reports whether v lies in [Lower[axis], Upper[axis]).
func (b BoundingBox) ContainsAxis(axis int, v float64) bool {
	return v >= b.Lower[axis] && v < b.Upper[axis]
}

// Span returns Upper - Lower.
func (b BoundingBox) Span() Real3 {
	return Real3{b.Upper[0] - b.Lower[0], b.Upper[1] - b.Lower[1], b.Upper[2] - b.Lower[2]}
}

// Validate reports an error if the box is empty or not finite.
func (b BoundingBox) Validate() error {
	for i := range 3 {
		lo, hi := b.Lower[i], b.Upper[i]
		if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
			return fmt.Errorf("bounding box axis %d is not finite: [%g, %g)", i, lo, hi)
		}
		if hi <= lo {
			return fmt.Errorf("bounding box axis %d is empty: [%g, %g)", i, lo, hi)
		}
	}
	return nil
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[%g %g %g]-[%g %g %g]",
		b.Lower[0], b.Lower[1], b.Lower[2], b.Upper[0], b.Upper[1], b.Upper[2])
}
