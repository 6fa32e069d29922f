package model

// Camera describes a high-speed imaging camera by its frame cadence.
type Camera struct {
	ID   string
	Name string

	// FrameRateHz is the sustained frame rate in frames per second.
	FrameRateHz float64
}

// FramePeriodSec returns the frame period in seconds, or 0 when the
// frame rate is unset or non-positive.
func (c *Camera) FramePeriodSec() float64 {
	if c.FrameRateHz <= 0 {
		return 0
	}
	return 1.0 / c.FrameRateHz
}
