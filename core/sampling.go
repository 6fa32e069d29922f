package core

import (
	"fmt"
	"math"
)

// Verdict classifies whether a camera can resolve the partial phase.
type Verdict int

const (
	// VerdictUnresolvable: at most one frame falls inside the partial
	// phase, so ingress/egress timing cannot be recovered.
	VerdictUnresolvable Verdict = iota
	// VerdictMarginal: a small handful of frames; timing is recoverable
	// only with a favourable signal-to-noise ratio.
	VerdictMarginal
	// VerdictResolvable: comfortably many frames inside the partial phase.
	VerdictResolvable
)

func (v Verdict) String() string {
	switch v {
	case VerdictUnresolvable:
		return "unresolvable"
	case VerdictMarginal:
		return "marginal"
	case VerdictResolvable:
		return "resolvable"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// MarginalBand is the inclusive frame-count band classified as marginal.
// The zero value means "use DefaultMarginalBand".
type MarginalBand struct {
	Min int
	Max int
}

// DefaultMarginalBand treats 2–3 frames as marginal.
func DefaultMarginalBand() MarginalBand { return MarginalBand{Min: 2, Max: 3} }

func (b MarginalBand) isZero() bool { return b.Min == 0 && b.Max == 0 }

// Sampling is the outcome of comparing a partial-phase duration against a
// camera's frame period.
type Sampling struct {
	// FrameCount is floor(duration / framePeriod): the number of whole
	// frame periods fitting inside the partial phase.
	FrameCount int
	Verdict    Verdict
}

// Evaluate determines how many independent frames fall within the partial
// phase and classifies the scenario. durationSec may be zero (a degenerate
// but well-defined case: nothing to sample, unresolvable); framePeriodSec
// must be strictly positive.
//
// No artificial cap is applied to the count: a slow graze legitimately
// yields a large value, though counts beyond ~10^6 usually mean the input
// geometry is unrealistic rather than interesting.
func Evaluate(durationSec, framePeriodSec float64, band MarginalBand) (Sampling, error) {
	if math.IsNaN(durationSec) || math.IsInf(durationSec, 0) || durationSec < 0 {
		return Sampling{}, fmt.Errorf("%w: duration %v s", ErrInvalidInput, durationSec)
	}
	if math.IsNaN(framePeriodSec) || math.IsInf(framePeriodSec, 0) || framePeriodSec <= 0 {
		return Sampling{}, fmt.Errorf("%w: frame period %v s", ErrInvalidInput, framePeriodSec)
	}
	if band.isZero() {
		band = DefaultMarginalBand()
	}
	if band.Min < 2 || band.Max < band.Min {
		return Sampling{}, fmt.Errorf("%w: marginal band [%d, %d]", ErrInvalidInput, band.Min, band.Max)
	}

	count := int(math.Floor(durationSec / framePeriodSec))

	s := Sampling{FrameCount: count}
	switch {
	case count < band.Min:
		// Includes the defining case count <= 1 and any gap below a
		// non-default band.
		s.Verdict = VerdictUnresolvable
	case count <= band.Max:
		s.Verdict = VerdictMarginal
	default:
		s.Verdict = VerdictResolvable
	}
	return s, nil
}
