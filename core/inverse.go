package core

import (
	"fmt"
	"math"
)

// RecoverAngularDiameter runs the duration relationship in reverse: given a
// measured partial-phase duration (seconds) and a known limb velocity
// (radians per second), it returns the implied stellar angular diameter in
// radians. The relationship is linear, so this is the exact algebraic
// inverse of PartialPhaseDuration; no solving involved.
func RecoverAngularDiameter(measuredDurationSec, limbRadPerSec float64) (float64, error) {
	if math.IsNaN(measuredDurationSec) || math.IsInf(measuredDurationSec, 0) || measuredDurationSec < 0 {
		return 0, fmt.Errorf("%w: measured duration %v s", ErrInvalidInput, measuredDurationSec)
	}
	if math.IsNaN(limbRadPerSec) || math.IsInf(limbRadPerSec, 0) || limbRadPerSec <= 0 {
		return 0, fmt.Errorf("%w: limb velocity %v rad/s", ErrInvalidInput, limbRadPerSec)
	}
	return measuredDurationSec * limbRadPerSec, nil
}

// RecoverPhysicalRadius composes RecoverAngularDiameter with the converter's
// inverse: given a measured duration, the limb velocity, and the star's
// distance (metres), it returns the implied physical radius in metres.
func (c Converter) RecoverPhysicalRadius(measuredDurationSec, limbRadPerSec, distanceM float64) (float64, error) {
	angular, err := RecoverAngularDiameter(measuredDurationSec, limbRadPerSec)
	if err != nil {
		return 0, err
	}
	return c.PhysicalRadius(angular, distanceM)
}
