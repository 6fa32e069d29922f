package core

import (
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/occultation-planner/model"
)

func TestLimbVelocity_DirectValueWins(t *testing.T) {
	v, err := LimbVelocity(VelocityConfig{
		DirectRadPerSec: 3e-6,
		Body:            model.Moon(),
		GrazingFactor:   0.1,
	})
	if err != nil {
		t.Fatalf("LimbVelocity: %v", err)
	}
	if v != 3e-6 {
		t.Fatalf("direct velocity should be used verbatim, got %v", v)
	}
}

func TestLimbVelocity_MoonClosedForm(t *testing.T) {
	v, err := LimbVelocity(VelocityConfig{Body: model.Moon(), GrazingFactor: 1.0})
	if err != nil {
		t.Fatalf("LimbVelocity: %v", err)
	}
	// 360° / 27.3 d ≈ 0.549 arcsec/s.
	arcsec := RadToArcsec(v)
	if arcsec < 0.54 || arcsec > 0.56 {
		t.Fatalf("lunar mean limb rate = %v arcsec/s, want ~0.55", arcsec)
	}
}

func TestLimbVelocity_GrazingFactorScales(t *testing.T) {
	full, err := LimbVelocity(VelocityConfig{Body: model.Moon(), GrazingFactor: 1.0})
	if err != nil {
		t.Fatalf("full: %v", err)
	}
	half, err := LimbVelocity(VelocityConfig{Body: model.Moon(), GrazingFactor: 0.5})
	if err != nil {
		t.Fatalf("half: %v", err)
	}
	if math.Abs(half-full/2) > 1e-18 {
		t.Fatalf("grazing factor 0.5 should halve the rate: %v vs %v", half, full)
	}
}

func TestLimbVelocity_DegenerateGraze(t *testing.T) {
	_, err := LimbVelocity(VelocityConfig{Body: model.Moon(), GrazingFactor: 0})
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Fatalf("grazing factor 0 must be ErrDegenerateGeometry, got %v", err)
	}
}

func TestLimbVelocity_RejectsBadInputs(t *testing.T) {
	cases := []struct {
		name string
		cfg  VelocityConfig
	}{
		{"negative direct", VelocityConfig{DirectRadPerSec: -1e-6}},
		{"nan direct", VelocityConfig{DirectRadPerSec: math.NaN()}},
		{"no source", VelocityConfig{}},
		{"zero period body", VelocityConfig{Body: &model.OccultingBody{ID: "x"}, GrazingFactor: 1}},
		{"factor above one", VelocityConfig{Body: model.Moon(), GrazingFactor: 1.5}},
		{"negative factor", VelocityConfig{Body: model.Moon(), GrazingFactor: -0.1}},
		{"nan factor", VelocityConfig{Body: model.Moon(), GrazingFactor: math.NaN()}},
	}
	for _, tc := range cases {
		if _, err := LimbVelocity(tc.cfg); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}
