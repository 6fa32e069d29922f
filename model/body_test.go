package model

import (
	"math"
	"testing"
)

func TestMoonMeanMotion(t *testing.T) {
	m := Moon()
	rad := m.MeanMotionRadPerSec()
	arcsec := rad * 180 * 3600 / math.Pi
	if arcsec < 0.54 || arcsec > 0.56 {
		t.Fatalf("lunar mean motion = %v arcsec/s, want ~0.55", arcsec)
	}
}

func TestMoonApparentRadius(t *testing.T) {
	m := Moon()
	// ~0.26 degrees.
	deg := m.ApparentRadiusRad() * 180 / math.Pi
	if deg < 0.25 || deg > 0.27 {
		t.Fatalf("lunar apparent radius = %v deg, want ~0.26", deg)
	}
}

func TestMeanMotionUnsetPeriod(t *testing.T) {
	b := &OccultingBody{ID: "x"}
	if got := b.MeanMotionRadPerSec(); got != 0 {
		t.Fatalf("unset period must yield 0, got %v", got)
	}
}

func TestCameraFramePeriod(t *testing.T) {
	c := &Camera{FrameRateHz: 450}
	if got := c.FramePeriodSec(); math.Abs(got-1.0/450) > 1e-18 {
		t.Fatalf("frame period = %v, want 1/450", got)
	}
	if (&Camera{}).FramePeriodSec() != 0 {
		t.Fatalf("unset frame rate must yield 0 period")
	}
}
