package core

import (
	"fmt"
	"math"
)

// DefaultMaxRatio is the radius/distance ratio above which the small-angle
// approximation is refused. Stellar angular diameters are nowhere near this;
// exceeding it signals a unit mismatch in the caller, not a real star.
const DefaultMaxRatio = 0.01

// Converter maps between a star's physical radius/distance and its apparent
// angular diameter under the small-angle approximation. The zero value is
// usable and applies DefaultMaxRatio.
type Converter struct {
	// MaxRatio overrides the small-angle validity threshold when positive.
	MaxRatio float64
}

func (c Converter) maxRatio() float64 {
	if c.MaxRatio > 0 {
		return c.MaxRatio
	}
	return DefaultMaxRatio
}

// AngularDiameter returns the apparent angular diameter in radians of a star
// with the given physical radius and distance, both in metres.
//
// The full small-angle form is 2·atan(r/d) ≈ 2r/d; the approximation is used
// directly and refused beyond MaxRatio.
func (c Converter) AngularDiameter(radiusM, distanceM float64) (float64, error) {
	if math.IsNaN(radiusM) || math.IsInf(radiusM, 0) || radiusM < 0 {
		return 0, fmt.Errorf("%w: physical radius %v m", ErrInvalidInput, radiusM)
	}
	if math.IsNaN(distanceM) || math.IsInf(distanceM, 0) || distanceM <= 0 {
		return 0, fmt.Errorf("%w: distance %v m", ErrInvalidInput, distanceM)
	}

	ratio := radiusM / distanceM
	if ratio > c.maxRatio() {
		return 0, fmt.Errorf("%w: radius/distance ratio %.3g exceeds %.3g rad",
			ErrUnrealisticApproximation, ratio, c.maxRatio())
	}
	return 2 * ratio, nil
}

// PhysicalRadius is the inverse of AngularDiameter: it returns the physical
// radius in metres implied by an angular diameter (radians) at a distance
// (metres).
func (c Converter) PhysicalRadius(angularRad, distanceM float64) (float64, error) {
	if math.IsNaN(angularRad) || math.IsInf(angularRad, 0) || angularRad < 0 {
		return 0, fmt.Errorf("%w: angular diameter %v rad", ErrInvalidInput, angularRad)
	}
	if math.IsNaN(distanceM) || math.IsInf(distanceM, 0) || distanceM <= 0 {
		return 0, fmt.Errorf("%w: distance %v m", ErrInvalidInput, distanceM)
	}

	if angularRad/2 > c.maxRatio() {
		return 0, fmt.Errorf("%w: angular diameter %.3g rad exceeds %.3g rad",
			ErrUnrealisticApproximation, angularRad, 2*c.maxRatio())
	}
	return angularRad * distanceM / 2, nil
}
