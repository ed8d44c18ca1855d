package geom

import "math"

// WrapPeriodic maps an angle into [0, 360).
func WrapPeriodic(deg float64) float64 {
	w := math.Mod(deg, PhiPsiSpan)
	if w < 0 {
		w += PhiPsiSpan
	}
	// math.Mod of a tiny negative value plus 360 can round up to 360.
	if w >= PhiPsiSpan {
		w = 0
	}
	return w
}

// AdvanceEulerAngles adds offsets to orig (phi, psi, theta) and folds the
// result back into phi, psi in [0, 360) and theta in [0, 180].
//
// Theta is not periodic: a step past a pole reflects theta back into range
// and turns phi and psi by 180 degrees, which describes the same
// orientation. Offsets are expected to be smaller than the angle ranges.
func AdvanceEulerAngles(orig, offsets Real3) Real3 {
	out, _ := AdvanceEulerAnglesReflect(orig, offsets)
	return out
}

// AdvanceEulerAnglesReflect is AdvanceEulerAngles that also reports whether
// theta was reflected through a pole.
func AdvanceEulerAnglesReflect(orig, offsets Real3) (Real3, bool) {
	var out Real3
	for i := range 3 {
		out[i] = orig[i] + offsets[i]
	}

	theta := out[2]
	if theta < 0 || theta > ThetaSpan {
		if theta < 0 {
			out[2] = -theta
		} else {
			out[2] = 2*ThetaSpan - theta
		}
		out[0] = WrapPeriodic(out[0] + ThetaSpan)
		out[1] = WrapPeriodic(out[1] + ThetaSpan)
		return out, true
	}

	out[0] = WrapPeriodic(out[0])
	out[1] = WrapPeriodic(out[1])
	return out, false
}
