package core

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Span is an inclusive linear range sampled at Steps points.
type Span struct {
	Min   float64
	Max   float64
	Steps int
}

func (s Span) validate(name string) error {
	if math.IsNaN(s.Min) || math.IsNaN(s.Max) || s.Min <= 0 || s.Max < s.Min {
		return fmt.Errorf("%w: %s span [%v, %v]", ErrInvalidInput, name, s.Min, s.Max)
	}
	if s.Steps < 1 {
		return fmt.Errorf("%w: %s span needs at least one step", ErrInvalidInput, name)
	}
	return nil
}

func (s Span) values() []float64 {
	if s.Steps == 1 {
		return []float64{s.Min}
	}
	vals := make([]float64, s.Steps)
	step := (s.Max - s.Min) / float64(s.Steps-1)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	return vals
}

// SurveyConfig sweeps a grid of stellar radii and distances against a single
// camera and limb velocity, reproducing the feasibility map of the original
// analysis (which swept 0.1–30 solar radii × 1–100 pc for a 450 Hz camera).
type SurveyConfig struct {
	RadiiSolar      Span
	DistancesParsec Span

	LimbRadPerSec  float64
	FramePeriodSec float64
	Band           MarginalBand

	Converter Converter

	// Parallelism bounds the number of concurrent grid rows; 0 means
	// GOMAXPROCS. Every cell is an independent pure evaluation, so the
	// only coordination needed is the bound itself.
	Parallelism int
}

// SurveyRow is one grid cell of the feasibility map.
type SurveyRow struct {
	RadiusSolar        float64
	DistanceParsec     float64
	AngularDiameterMas float64
	DurationSec        float64
	FrameCount         int
	Verdict            Verdict
}

// SurveyResult carries the full grid in row-major order (distance outer,
// radius inner) plus a verdict tally for quick summaries.
type SurveyResult struct {
	Rows   []SurveyRow
	Counts map[Verdict]int
}

// Survey evaluates the whole grid, one goroutine per distance row, bounded
// by cfg.Parallelism. The first failing cell aborts the sweep.
func Survey(ctx context.Context, cfg SurveyConfig) (*SurveyResult, error) {
	if err := cfg.RadiiSolar.validate("radius"); err != nil {
		return nil, err
	}
	if err := cfg.DistancesParsec.validate("distance"); err != nil {
		return nil, err
	}
	if math.IsNaN(cfg.LimbRadPerSec) || cfg.LimbRadPerSec <= 0 {
		return nil, fmt.Errorf("%w: limb velocity %v rad/s", ErrInvalidInput, cfg.LimbRadPerSec)
	}
	if math.IsNaN(cfg.FramePeriodSec) || cfg.FramePeriodSec <= 0 {
		return nil, fmt.Errorf("%w: frame period %v s", ErrInvalidInput, cfg.FramePeriodSec)
	}

	radii := cfg.RadiiSolar.values()
	distances := cfg.DistancesParsec.values()
	rows := make([]SurveyRow, len(distances)*len(radii))

	limit := cfg.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for di, distPc := range distances {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for ri, radSolar := range radii {
				angular, err := cfg.Converter.AngularDiameter(
					SolarRadiiToMeters(radSolar), ParsecsToMeters(distPc))
				if err != nil {
					return fmt.Errorf("cell (r=%v solRad, d=%v pc): %w", radSolar, distPc, err)
				}
				duration, err := PartialPhaseDuration(angular, cfg.LimbRadPerSec)
				if err != nil {
					return fmt.Errorf("cell (r=%v solRad, d=%v pc): %w", radSolar, distPc, err)
				}
				sampling, err := Evaluate(duration, cfg.FramePeriodSec, cfg.Band)
				if err != nil {
					return err
				}
				rows[di*len(radii)+ri] = SurveyRow{
					RadiusSolar:        radSolar,
					DistanceParsec:     distPc,
					AngularDiameterMas: RadToMas(angular),
					DurationSec:        duration,
					FrameCount:         sampling.FrameCount,
					Verdict:            sampling.Verdict,
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := make(map[Verdict]int, 3)
	for i := range rows {
		counts[rows[i].Verdict]++
	}
	return &SurveyResult{Rows: rows, Counts: counts}, nil
}
