package model

import "math"

// Occulting body defaults for Earth's Moon, matching the values used by the
// original feasibility analysis.
const (
	MoonOrbitalPeriodDays = 27.3
	MoonRadiusKm          = 1737.4
	MoonDistanceKm        = 384472.0
)

// OccultingBody describes a foreground body whose limb sweeps across the
// target star. Alternate moons (or asteroids) are modelled by substituting
// parameters rather than editing constants.
type OccultingBody struct {
	ID   string
	Name string

	// OrbitalPeriodDays is the sidereal orbital period in days.
	OrbitalPeriodDays float64
	// RadiusKm is the body's mean radius in kilometres.
	RadiusKm float64
	// DistanceKm is the observer-to-body distance in kilometres.
	DistanceKm float64
}

// Moon returns the default occulting body used throughout: Earth's Moon.
func Moon() *OccultingBody {
	return &OccultingBody{
		ID:                "moon",
		Name:              "Moon",
		OrbitalPeriodDays: MoonOrbitalPeriodDays,
		RadiusKm:          MoonRadiusKm,
		DistanceKm:        MoonDistanceKm,
	}
}

// MeanMotionRadPerSec returns the body's mean angular rate across the sky
// relative to the stars, in radians per second. Zero when the period is
// unset or non-positive.
//
// For the Moon this is 2π / 27.3 d ≈ 2.66e-6 rad/s (≈ 0.55 arcsec/s).
func (b *OccultingBody) MeanMotionRadPerSec() float64 {
	if b == nil || b.OrbitalPeriodDays <= 0 {
		return 0
	}
	periodSec := b.OrbitalPeriodDays * 24 * 3600
	return 2 * math.Pi / periodSec
}

// ApparentRadiusRad returns the body's apparent angular radius in radians
// as seen by the observer, or 0 when radius/distance are unset.
func (b *OccultingBody) ApparentRadiusRad() float64 {
	if b == nil || b.RadiusKm <= 0 || b.DistanceKm <= 0 {
		return 0
	}
	return math.Atan2(b.RadiusKm, b.DistanceKm)
}
