package core

import (
	"fmt"
	"math"
)

// CoveredFraction returns the fraction of a uniform circular stellar disk
// hidden behind a straight occulting limb that has advanced a fraction u of
// the way across the disk (u = 0: first contact, u = 1: fully covered).
//
// The covered region is a circular segment of penetration depth h = 2Ru:
// A = R²·acos(1 − h/R) − (R − h)·√(2Rh − h²), normalised by πR². Diffraction
// is deliberately ignored; this is the geometric lightcurve only.
func CoveredFraction(u float64) float64 {
	if math.IsNaN(u) || u <= 0 {
		return 0
	}
	if u >= 1 {
		return 1
	}
	c := 1 - 2*u
	return (math.Acos(c) - c*math.Sqrt(1-c*c)) / math.Pi
}

// FluxSample is one predicted camera reading during ingress.
type FluxSample struct {
	// TimeSec is the frame midpoint, measured from first contact.
	TimeSec float64
	// Flux is the relative remaining flux in [0, 1].
	Flux float64
}

// Lightcurve predicts the relative flux a camera would record at each frame
// midpoint during an ingress of the given partial-phase duration. The slice
// is empty when not even one frame midpoint lands inside the partial phase.
func Lightcurve(durationSec, framePeriodSec float64) ([]FluxSample, error) {
	if math.IsNaN(durationSec) || math.IsInf(durationSec, 0) || durationSec < 0 {
		return nil, fmt.Errorf("%w: duration %v s", ErrInvalidInput, durationSec)
	}
	if math.IsNaN(framePeriodSec) || math.IsInf(framePeriodSec, 0) || framePeriodSec <= 0 {
		return nil, fmt.Errorf("%w: frame period %v s", ErrInvalidInput, framePeriodSec)
	}

	var samples []FluxSample
	for i := 0; ; i++ {
		t := (float64(i) + 0.5) * framePeriodSec
		if t >= durationSec {
			break
		}
		samples = append(samples, FluxSample{
			TimeSec: t,
			Flux:    1 - CoveredFraction(t/durationSec),
		})
	}
	return samples, nil
}
