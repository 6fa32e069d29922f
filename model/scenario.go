package model

// Scenario ties a star, a camera and an occulting body into one evaluable
// observation. GrazingFactor scales the body's mean limb rate: 1.0 is a limb
// moving perpendicular to the star's relative path, values near 0 model a
// near-tangential graze.
type Scenario struct {
	ID     string
	Name   string
	StarID string

	CameraID string
	BodyID   string

	// GrazingFactor is the effective-velocity factor in (0, 1]. A value of
	// exactly 0 is a degenerate geometry the model refuses to evaluate.
	GrazingFactor float64

	// LimbVelocityArcsecPerSec, when positive, bypasses the body-derived
	// closed form entirely (for callers with ephemeris-grade values).
	LimbVelocityArcsecPerSec float64
}
