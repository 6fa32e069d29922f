package core

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/occultation-planner/model"
)

func testSurveyConfig() SurveyConfig {
	v, _ := LimbVelocity(VelocityConfig{Body: model.Moon(), GrazingFactor: 1.0})
	return SurveyConfig{
		RadiiSolar:      Span{Min: 0.1, Max: 30, Steps: 10},
		DistancesParsec: Span{Min: 1, Max: 100, Steps: 10},
		LimbRadPerSec:   v,
		FramePeriodSec:  1.0 / 450,
	}
}

func TestSurvey_GridShapeAndOrdering(t *testing.T) {
	cfg := testSurveyConfig()
	res, err := Survey(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Survey: %v", err)
	}
	if len(res.Rows) != 100 {
		t.Fatalf("expected 100 cells, got %d", len(res.Rows))
	}

	// Row-major: distance outer, radius inner.
	first := res.Rows[0]
	if first.RadiusSolar != 0.1 || first.DistanceParsec != 1 {
		t.Fatalf("first cell = (%v solRad, %v pc), want (0.1, 1)", first.RadiusSolar, first.DistanceParsec)
	}
	last := res.Rows[len(res.Rows)-1]
	if last.RadiusSolar != 30 || last.DistanceParsec != 100 {
		t.Fatalf("last cell = (%v solRad, %v pc), want (30, 100)", last.RadiusSolar, last.DistanceParsec)
	}

	total := 0
	for _, n := range res.Counts {
		total += n
	}
	if total != len(res.Rows) {
		t.Fatalf("verdict tally %d does not cover all %d cells", total, len(res.Rows))
	}
}

func TestSurvey_NearbyGiantsResolvable(t *testing.T) {
	cfg := testSurveyConfig()
	res, err := Survey(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Survey: %v", err)
	}

	// A 30 solRad giant at 1 pc is enormous on the sky; a 0.1 solRad dwarf
	// at 100 pc is hopeless for a 450 Hz camera.
	var giant, dwarf *SurveyRow
	for i := range res.Rows {
		r := &res.Rows[i]
		if r.RadiusSolar == 30 && r.DistanceParsec == 1 {
			giant = r
		}
		if r.RadiusSolar == 0.1 && r.DistanceParsec == 100 {
			dwarf = r
		}
	}
	if giant == nil || dwarf == nil {
		t.Fatalf("expected both corner cells in the grid")
	}
	if giant.Verdict != VerdictResolvable {
		t.Fatalf("giant at 1 pc should be resolvable, got %v (%d frames)", giant.Verdict, giant.FrameCount)
	}
	if dwarf.Verdict != VerdictUnresolvable {
		t.Fatalf("dwarf at 100 pc should be unresolvable, got %v (%d frames)", dwarf.Verdict, dwarf.FrameCount)
	}
	if giant.DurationSec <= dwarf.DurationSec {
		t.Fatalf("giant duration %v must exceed dwarf duration %v", giant.DurationSec, dwarf.DurationSec)
	}
}

func TestSurvey_SingleStepSpans(t *testing.T) {
	cfg := testSurveyConfig()
	cfg.RadiiSolar = Span{Min: 1, Max: 1, Steps: 1}
	cfg.DistancesParsec = Span{Min: 10, Max: 10, Steps: 1}

	res, err := Survey(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Survey: %v", err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("expected a single cell, got %d", len(res.Rows))
	}
	// The Sun at 10 pc: ~0.93 mas.
	if mas := res.Rows[0].AngularDiameterMas; math.Abs(mas-0.93) > 0.01 {
		t.Fatalf("cell angular diameter = %v mas, want ~0.93", mas)
	}
}

func TestSurvey_RejectsBadConfig(t *testing.T) {
	base := testSurveyConfig()

	cfg := base
	cfg.RadiiSolar.Min = 0
	if _, err := Survey(context.Background(), cfg); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero radius min: expected ErrInvalidInput, got %v", err)
	}

	cfg = base
	cfg.DistancesParsec.Steps = 0
	if _, err := Survey(context.Background(), cfg); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero steps: expected ErrInvalidInput, got %v", err)
	}

	cfg = base
	cfg.LimbRadPerSec = 0
	if _, err := Survey(context.Background(), cfg); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero limb velocity: expected ErrInvalidInput, got %v", err)
	}

	cfg = base
	cfg.FramePeriodSec = -1
	if _, err := Survey(context.Background(), cfg); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative frame period: expected ErrInvalidInput, got %v", err)
	}
}

func TestSurvey_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testSurveyConfig()
	cfg.RadiiSolar.Steps = 200
	cfg.DistancesParsec.Steps = 200
	cfg.Parallelism = 1

	if _, err := Survey(ctx, cfg); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
