package core

import (
	"fmt"
	"math"
)

// PartialPhaseDuration returns the time in seconds during which the star is
// partially occulted: the star's full angular width (radians) swept at the
// limb's relative angular rate (radians per second).
//
// Both inputs are checked, not merely assumed: each must be strictly
// positive and finite. The result is always finite and positive.
func PartialPhaseDuration(angularRad, limbRadPerSec float64) (float64, error) {
	if math.IsNaN(angularRad) || math.IsInf(angularRad, 0) || angularRad <= 0 {
		return 0, fmt.Errorf("%w: angular diameter %v rad", ErrInvalidInput, angularRad)
	}
	if math.IsNaN(limbRadPerSec) || math.IsInf(limbRadPerSec, 0) || limbRadPerSec <= 0 {
		return 0, fmt.Errorf("%w: limb velocity %v rad/s", ErrInvalidInput, limbRadPerSec)
	}
	return angularRad / limbRadPerSec, nil
}
