package matchgrid

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/matchgrid/geom"
)

var (
	// ErrOutOfBoundingBox is returned when a hit lies outside the configured
	// bounding box. Use errors.Is; the concrete error is *ErrOutOfBounds.
	ErrOutOfBoundingBox = errors.New("hit outside bounding box")

	// ErrInvalidConstraint is returned for a geometric constraint id outside 1..N.
	ErrInvalidConstraint = errors.New("invalid geometric constraint id")

	// ErrDuplicateHit is returned when the same hit is indexed twice.
	ErrDuplicateHit = errors.New("hit already indexed")

	// ErrInvalidConfig is returned when grid parameters cannot be used.
	ErrInvalidConfig = errors.New("invalid grid configuration")

	// ErrNilHit is returned when a nil hit is passed for indexing.
	ErrNilHit = errors.New("nil hit")

	// ErrInvalidAngle is returned for a hit whose theta is outside [0, 180]
	// or whose phi or psi is not finite.
	ErrInvalidAngle = errors.New("invalid euler angle")
)

// ErrOutOfBounds indicates a hit whose Cartesian coordinates fall outside
// the bounding box. It matches ErrOutOfBoundingBox with errors.Is.
type ErrOutOfBounds struct {
	Point geom.Real3
	Box   geom.BoundingBox
}

func (e *ErrOutOfBounds) Error() string {
	return fmt.Sprintf("%v: point (%g %g %g) not in %v",
		ErrOutOfBoundingBox, e.Point[0], e.Point[1], e.Point[2], e.Box)
}

func (e *ErrOutOfBounds) Is(target error) bool { return target == ErrOutOfBoundingBox }

// ErrConstraintRange indicates a constraint id outside 1..N.
//
// It matches ErrInvalidConstraint with errors.Is.
type ErrConstraintRange struct {
	ID ConstraintID
	N  int
}

func (e *ErrConstraintRange) Error() string {
	return fmt.Sprintf("%v: %d not in 1..%d", ErrInvalidConstraint, e.ID, e.N)
}

func (e *ErrConstraintRange) Is(target error) bool { return target == ErrInvalidConstraint }

func checkHit(box geom.BoundingBox, h *Hit) error {
	if h == nil {
		return ErrNilHit
	}
	if p := h.Coord.XYZ(); !box.Contains(p) {
		return &ErrOutOfBounds{Point: p, Box: box}
	}
	e := h.Coord.Euler()
	if !isFinite(e[0]) || !isFinite(e[1]) || !(e[2] >= 0 && e[2] <= geom.ThetaSpan) {
		return fmt.Errorf("%w: (%g %g %g)", ErrInvalidAngle, e[0], e[1], e[2])
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkConstraint(id ConstraintID, n int) error {
	if id < 1 || int(id) > n {
		return &ErrConstraintRange{ID: id, N: n}
	}
	return nil
}

// mustBeConfigurable panics when a setter is called after Initialize.
func mustBeConfigurable(component string, initialized bool) {
	if initialized {
		panic("matchgrid: " + component + " configured after Initialize")
	}
}

// mustBeInitialized panics when a component is used before Initialize.
func mustBeInitialized(component string, initialized bool) {
	if !initialized {
		panic("matchgrid: " + component + " used before Initialize")
	}
}
