package core

import "math"

// Unit conversion constants. The core API works exclusively in radians,
// seconds and metres; these are the only sanctioned conversions in or out
// of those units.
const (
	// ArcsecPerRad converts radians to arcseconds (≈ 206264.8).
	ArcsecPerRad = 180 * 3600 / math.Pi
	// MasPerRad converts radians to milliarcseconds.
	MasPerRad = ArcsecPerRad * 1000

	// SolarRadiusM is the nominal solar radius in metres (IAU 2015).
	SolarRadiusM = 6.957e8
	// ParsecM is one parsec in metres.
	ParsecM = 3.0856775814913673e16
)

// RadToMas converts an angle in radians to milliarcseconds.
func RadToMas(rad float64) float64 { return rad * MasPerRad }

// MasToRad converts an angle in milliarcseconds to radians.
func MasToRad(mas float64) float64 { return mas / MasPerRad }

// RadToArcsec converts an angle in radians to arcseconds.
func RadToArcsec(rad float64) float64 { return rad * ArcsecPerRad }

// ArcsecToRad converts an angle in arcseconds to radians.
func ArcsecToRad(arcsec float64) float64 { return arcsec / ArcsecPerRad }

// SolarRadiiToMeters converts a stellar radius in solar radii to metres.
func SolarRadiiToMeters(r float64) float64 { return r * SolarRadiusM }

// ParsecsToMeters converts a distance in parsecs to metres.
func ParsecsToMeters(d float64) float64 { return d * ParsecM }
