package core

import "errors"

// Error taxonomy for the occultation model. Every function validates its own
// preconditions and fails fast with one of these sentinels (wrapped with
// context) rather than returning NaN or Inf. Check with errors.Is.
var (
	// ErrInvalidInput marks a required quantity that is non-positive, NaN,
	// or otherwise outside its documented domain.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateGeometry marks a grazing geometry whose effective limb
	// velocity is zero, implying an unbounded partial-phase duration.
	ErrDegenerateGeometry = errors.New("degenerate grazing geometry")

	// ErrUnrealisticApproximation marks inputs that break the small-angle
	// approximation; almost always a unit mismatch in the caller.
	ErrUnrealisticApproximation = errors.New("small-angle approximation exceeded")
)
