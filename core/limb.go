package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/occultation-planner/model"
)

// VelocityConfig selects how the relative angular velocity of the occulting
// limb is obtained. Exactly one source applies: a directly supplied value
// (for callers who computed it from ephemeris data) wins over the simplified
// closed-form estimate derived from the body's mean orbital rate.
type VelocityConfig struct {
	// DirectRadPerSec, when non-zero, is used verbatim. Must be positive.
	DirectRadPerSec float64

	// Body supplies the closed-form branch: its mean angular motion is
	// scaled by GrazingFactor.
	Body *model.OccultingBody

	// GrazingFactor is the effective-velocity factor in (0, 1]. 1.0 models
	// a limb moving perpendicular to the star's relative path; values near
	// 0 model a near-tangential graze. Exactly 0 is degenerate: the
	// effective velocity vanishes and no finite duration exists.
	GrazingFactor float64
}

// LimbVelocity returns the relative angular speed of the occulting limb
// across the star's position, in radians per second. The result is
// guaranteed strictly positive on success.
func LimbVelocity(cfg VelocityConfig) (float64, error) {
	if cfg.DirectRadPerSec != 0 {
		v := cfg.DirectRadPerSec
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, fmt.Errorf("%w: direct limb velocity %v rad/s", ErrInvalidInput, v)
		}
		return v, nil
	}

	if cfg.Body == nil {
		return 0, fmt.Errorf("%w: velocity config needs a direct value or an occulting body", ErrInvalidInput)
	}
	mean := cfg.Body.MeanMotionRadPerSec()
	if mean <= 0 {
		return 0, fmt.Errorf("%w: body %q has no usable orbital period", ErrInvalidInput, cfg.Body.ID)
	}

	g := cfg.GrazingFactor
	if math.IsNaN(g) || g < 0 || g > 1 {
		return 0, fmt.Errorf("%w: grazing factor %v outside [0, 1]", ErrInvalidInput, g)
	}
	if g == 0 {
		return 0, fmt.Errorf("%w: grazing factor 0 implies an unbounded partial phase", ErrDegenerateGeometry)
	}

	return mean * g, nil
}
