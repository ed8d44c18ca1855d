package binner

import (
	"github.com/hupe1980/matchgrid/geom"
)

// InRange is returned by AdvanceToNeighborBin when the step stays inside the
// bounding box.
const InRange = -1

// Neighbor is the bin reached by a step from a point.
type Neighbor struct {
	Bin Bin6D
	// ThetaReflected is set when the step carried theta through a pole.
	// The neighbor theta bin is then the pole bin the point started next to.
	ThetaReflected bool
}

// AdvanceToNeighborBin steps orig by steps (zero for axes that do not move)
// and returns the bin the result falls in.
//
// Translational steps are applied directly. If a translational coordinate
// ends up outside the bounding box, the 0-based index of the first such axis
// is returned instead of InRange and the Neighbor is meaningless; every step
// that moves the same way along that axis is equally out of range. Angular
// steps go through geom.AdvanceEulerAnglesReflect and are always in range.
func AdvanceToNeighborBin(orig, steps geom.Real6, b *SixDBinner) (Neighbor, int) {
	var alt geom.Real6
	for i := range 3 {
		alt[i] = orig[i] + steps[i]
	}
	for i := range 3 {
		if !b.box.ContainsAxis(i, alt[i]) {
			return Neighbor{}, i
		}
	}

	euler, reflected := geom.AdvanceEulerAnglesReflect(orig.Euler(), steps.Euler())
	alt[geom.AxisPhi] = euler[0]
	alt[geom.AxisPsi] = euler[1]
	alt[geom.AxisTheta] = euler[2]

	return Neighbor{Bin: b.Bin6(alt), ThetaReflected: reflected}, InRange
}
