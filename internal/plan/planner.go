// Package plan orchestrates the physics pipeline: it resolves targets and
// timing parameters (directly supplied or via the catalog), runs the angular
// size, limb velocity, duration, and sampling models in order, and attaches
// the observability the individual models deliberately stay free of.
package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/occultation-planner/catalog"
	"github.com/signalsfoundry/occultation-planner/core"
	"github.com/signalsfoundry/occultation-planner/internal/logging"
	"github.com/signalsfoundry/occultation-planner/model"
)

// ErrNotFound marks a lookup of a catalog entity that does not exist.
var ErrNotFound = errors.New("not found")

const tracerName = "occultation-planner/plan"

// EvaluationRecorder receives evaluation outcomes for metrics backends.
// observability.PlannerCollector satisfies it.
type EvaluationRecorder interface {
	RecordEvaluation(verdict string, durationSec float64)
	RecordEvaluationError(reason string)
}

// SurveyRecorder receives survey run summaries for metrics backends.
// observability.SurveyCollector satisfies it.
type SurveyRecorder interface {
	RecordRun(durationSec float64, resolvable, marginal, unresolvable int)
}

// Planner evaluates occultation scenarios. The zero value is not usable;
// construct with New.
type Planner struct {
	catalog   *catalog.Catalog
	converter core.Converter
	band      core.MarginalBand
	log       logging.Logger
	metrics   EvaluationRecorder
	surveys   SurveyRecorder
	tracer    trace.Tracer
}

// Option customises planner construction.
type Option func(*Planner)

// WithConverter overrides the angular-size converter (and with it the
// small-angle validity threshold).
func WithConverter(c core.Converter) Option {
	return func(p *Planner) { p.converter = c }
}

// WithMarginalBand overrides the frame-count band classified as marginal.
func WithMarginalBand(b core.MarginalBand) Option {
	return func(p *Planner) { p.band = b }
}

// WithLogger attaches a logger; defaults to the noop logger.
func WithLogger(log logging.Logger) Option {
	return func(p *Planner) { p.log = log }
}

// WithMetrics attaches an evaluation metrics recorder.
func WithMetrics(m EvaluationRecorder) Option {
	return func(p *Planner) { p.metrics = m }
}

// WithSurveyMetrics attaches a survey metrics recorder.
func WithSurveyMetrics(m SurveyRecorder) Option {
	return func(p *Planner) { p.surveys = m }
}

// New constructs a planner over the given catalog. A nil catalog is allowed
// for callers that only use the direct-input entry points.
func New(cat *catalog.Catalog, opts ...Option) *Planner {
	p := &Planner{
		catalog: cat,
		log:     logging.Noop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Target describes the star under evaluation. The physical pair wins over a
// directly supplied angular diameter when both are present.
type Target struct {
	RadiusSolar        float64
	DistanceParsec     float64
	AngularDiameterMas float64
}

// Timing describes the camera and the limb motion. LimbArcsecPerSec, when
// positive, bypasses the body-derived closed form. With neither a direct
// velocity nor a Body set, the Moon stands in.
type Timing struct {
	FrameRateHz      float64
	LimbArcsecPerSec float64
	Body             *model.OccultingBody
	GrazingFactor    float64
}

// Request is one direct evaluation: a target observed with given timing.
type Request struct {
	Target Target
	Timing Timing
}

// Assessment is the full outcome of evaluating one occultation.
type Assessment struct {
	AngularDiameterMas float64
	LimbArcsecPerSec   float64
	DurationSec        float64
	FramePeriodSec     float64
	FrameCount         int
	Verdict            core.Verdict

	// Lightcurve holds the predicted per-frame relative flux during
	// ingress; empty when no frame midpoint lands inside the phase.
	Lightcurve []core.FluxSample

	// RecoveredRadiusSolar closes the loop: the stellar radius implied by
	// feeding the predicted duration back through the inverse solver. Only
	// populated when the target's distance is known; it should match the
	// input radius up to FP rounding.
	RecoveredRadiusSolar float64
}

// Evaluate runs the full forward pipeline for a direct request.
func (p *Planner) Evaluate(ctx context.Context, req Request) (*Assessment, error) {
	ctx, span := p.tracer.Start(ctx, "plan.Evaluate")
	defer span.End()

	a, err := p.evaluate(ctx, req)
	if err != nil {
		p.recordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Float64("occult.duration_seconds", a.DurationSec),
		attribute.Int("occult.frame_count", a.FrameCount),
		attribute.String("occult.verdict", a.Verdict.String()),
	)
	if p.metrics != nil {
		p.metrics.RecordEvaluation(a.Verdict.String(), a.DurationSec)
	}
	return a, nil
}

// EvaluateScenario resolves a stored scenario against the catalog and runs
// the forward pipeline on it.
func (p *Planner) EvaluateScenario(ctx context.Context, scenarioID string) (*Assessment, error) {
	ctx, span := p.tracer.Start(ctx, "plan.EvaluateScenario",
		trace.WithAttributes(attribute.String("occult.scenario_id", scenarioID)))
	defer span.End()

	req, err := p.resolve(scenarioID)
	if err != nil {
		p.recordError(err)
		return nil, err
	}
	a, err := p.evaluate(ctx, req)
	if err != nil {
		p.recordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Float64("occult.duration_seconds", a.DurationSec),
		attribute.String("occult.verdict", a.Verdict.String()),
	)
	if p.metrics != nil {
		p.metrics.RecordEvaluation(a.Verdict.String(), a.DurationSec)
	}
	p.log.Info(ctx, "scenario evaluated",
		logging.String("scenario_id", scenarioID),
		logging.Float64("duration_seconds", a.DurationSec),
		logging.Int("frame_count", a.FrameCount),
		logging.String("verdict", a.Verdict.String()),
	)
	return a, nil
}

func (p *Planner) resolve(scenarioID string) (Request, error) {
	if p.catalog == nil {
		return Request{}, fmt.Errorf("%w: planner has no catalog", ErrNotFound)
	}
	sc := p.catalog.Scenario(scenarioID)
	if sc == nil {
		return Request{}, fmt.Errorf("scenario %q: %w", scenarioID, ErrNotFound)
	}
	star := p.catalog.Star(sc.StarID)
	if star == nil {
		return Request{}, fmt.Errorf("star %q: %w", sc.StarID, ErrNotFound)
	}
	cam := p.catalog.Camera(sc.CameraID)
	if cam == nil {
		return Request{}, fmt.Errorf("camera %q: %w", sc.CameraID, ErrNotFound)
	}

	req := Request{
		Target: Target{
			RadiusSolar:        star.RadiusSolar,
			DistanceParsec:     star.DistanceParsec,
			AngularDiameterMas: star.AngularDiameterMas,
		},
		Timing: Timing{
			FrameRateHz:      cam.FrameRateHz,
			LimbArcsecPerSec: sc.LimbVelocityArcsecPerSec,
			GrazingFactor:    sc.GrazingFactor,
		},
	}
	if sc.BodyID != "" {
		body := p.catalog.Body(sc.BodyID)
		if body == nil {
			return Request{}, fmt.Errorf("body %q: %w", sc.BodyID, ErrNotFound)
		}
		req.Timing.Body = body
	}
	return req, nil
}

func (p *Planner) evaluate(_ context.Context, req Request) (*Assessment, error) {
	angular, err := p.angularDiameter(req.Target)
	if err != nil {
		return nil, err
	}

	limb, err := p.limbVelocity(req.Timing)
	if err != nil {
		return nil, err
	}

	if req.Timing.FrameRateHz <= 0 {
		return nil, fmt.Errorf("%w: frame rate %v Hz", core.ErrInvalidInput, req.Timing.FrameRateHz)
	}
	framePeriod := 1.0 / req.Timing.FrameRateHz

	duration, err := core.PartialPhaseDuration(angular, limb)
	if err != nil {
		return nil, err
	}
	sampling, err := core.Evaluate(duration, framePeriod, p.band)
	if err != nil {
		return nil, err
	}
	curve, err := core.Lightcurve(duration, framePeriod)
	if err != nil {
		return nil, err
	}

	a := &Assessment{
		AngularDiameterMas: core.RadToMas(angular),
		LimbArcsecPerSec:   core.RadToArcsec(limb),
		DurationSec:        duration,
		FramePeriodSec:     framePeriod,
		FrameCount:         sampling.FrameCount,
		Verdict:            sampling.Verdict,
		Lightcurve:         curve,
	}
	if req.Target.DistanceParsec > 0 {
		radiusM, err := p.converter.RecoverPhysicalRadius(
			duration, limb, core.ParsecsToMeters(req.Target.DistanceParsec))
		if err != nil {
			return nil, err
		}
		a.RecoveredRadiusSolar = radiusM / core.SolarRadiusM
	}
	return a, nil
}

func (p *Planner) angularDiameter(t Target) (float64, error) {
	if t.RadiusSolar > 0 && t.DistanceParsec > 0 {
		return p.converter.AngularDiameter(
			core.SolarRadiiToMeters(t.RadiusSolar),
			core.ParsecsToMeters(t.DistanceParsec))
	}
	if t.AngularDiameterMas > 0 {
		return core.MasToRad(t.AngularDiameterMas), nil
	}
	return 0, fmt.Errorf("%w: target needs radius+distance or an angular diameter", core.ErrInvalidInput)
}

func (p *Planner) limbVelocity(t Timing) (float64, error) {
	cfg := core.VelocityConfig{
		Body:          t.Body,
		GrazingFactor: t.GrazingFactor,
	}
	if t.LimbArcsecPerSec != 0 {
		cfg.DirectRadPerSec = core.ArcsecToRad(t.LimbArcsecPerSec)
	}
	if cfg.DirectRadPerSec == 0 {
		if cfg.Body == nil {
			// No velocity source given at all: fall back to the Moon,
			// the body the whole exercise is about.
			cfg.Body = model.Moon()
		}
		if cfg.GrazingFactor == 0 {
			// Unset factor means full perpendicular motion; an explicit
			// 0 is only expressible via core.VelocityConfig directly.
			cfg.GrazingFactor = 1.0
		}
	}
	return core.LimbVelocity(cfg)
}

// Recovery is the outcome of running the inverse solver on a measured
// duration.
type Recovery struct {
	AngularDiameterMas float64
	// RadiusSolar is populated when the request carried a distance.
	RadiusSolar float64
}

// RecoverRequest feeds a measured partial-phase duration back through the
// model to recover the stellar size.
type RecoverRequest struct {
	MeasuredDurationSec float64
	Timing              Timing
	// DistanceParsec, when positive, additionally recovers the physical
	// radius.
	DistanceParsec float64
}

// Recover runs the inverse solver: measured duration × limb velocity gives
// the angular diameter, and the distance (when known) gives the physical
// radius.
func (p *Planner) Recover(ctx context.Context, req RecoverRequest) (*Recovery, error) {
	_, span := p.tracer.Start(ctx, "plan.Recover")
	defer span.End()

	limb, err := p.limbVelocity(req.Timing)
	if err != nil {
		p.recordError(err)
		return nil, err
	}
	angular, err := core.RecoverAngularDiameter(req.MeasuredDurationSec, limb)
	if err != nil {
		p.recordError(err)
		return nil, err
	}

	rec := &Recovery{AngularDiameterMas: core.RadToMas(angular)}
	if req.DistanceParsec > 0 {
		radiusM, err := p.converter.PhysicalRadius(angular, core.ParsecsToMeters(req.DistanceParsec))
		if err != nil {
			p.recordError(err)
			return nil, err
		}
		rec.RadiusSolar = radiusM / core.SolarRadiusM
	}
	span.SetAttributes(attribute.Float64("occult.recovered_mas", rec.AngularDiameterMas))
	return rec, nil
}

// SurveyRequest sweeps a radius × distance grid with one camera and limb
// configuration.
type SurveyRequest struct {
	RadiiSolar      core.Span
	DistancesParsec core.Span
	Timing          Timing
	Parallelism     int
}

// Survey evaluates the grid concurrently and records run metrics.
func (p *Planner) Survey(ctx context.Context, req SurveyRequest) (*core.SurveyResult, error) {
	ctx, span := p.tracer.Start(ctx, "plan.Survey",
		trace.WithAttributes(
			attribute.Int("occult.survey_radius_steps", req.RadiiSolar.Steps),
			attribute.Int("occult.survey_distance_steps", req.DistancesParsec.Steps),
		))
	defer span.End()

	limb, err := p.limbVelocity(req.Timing)
	if err != nil {
		p.recordError(err)
		return nil, err
	}
	if req.Timing.FrameRateHz <= 0 {
		err := fmt.Errorf("%w: frame rate %v Hz", core.ErrInvalidInput, req.Timing.FrameRateHz)
		p.recordError(err)
		return nil, err
	}

	start := time.Now()
	result, err := core.Survey(ctx, core.SurveyConfig{
		RadiiSolar:      req.RadiiSolar,
		DistancesParsec: req.DistancesParsec,
		LimbRadPerSec:   limb,
		FramePeriodSec:  1.0 / req.Timing.FrameRateHz,
		Band:            p.band,
		Converter:       p.converter,
		Parallelism:     req.Parallelism,
	})
	if err != nil {
		p.recordError(err)
		return nil, err
	}

	if p.surveys != nil {
		p.surveys.RecordRun(time.Since(start).Seconds(),
			result.Counts[core.VerdictResolvable],
			result.Counts[core.VerdictMarginal],
			result.Counts[core.VerdictUnresolvable])
	}
	p.log.Info(ctx, "survey completed",
		logging.Int("cells", len(result.Rows)),
		logging.Int("resolvable", result.Counts[core.VerdictResolvable]),
		logging.Int("marginal", result.Counts[core.VerdictMarginal]),
		logging.Int("unresolvable", result.Counts[core.VerdictUnresolvable]),
	)
	return result, nil
}

func (p *Planner) recordError(err error) {
	if p.metrics == nil {
		return
	}
	p.metrics.RecordEvaluationError(ErrorReason(err))
}

// ErrorReason classifies an error into a low-cardinality label for metrics.
func ErrorReason(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, core.ErrDegenerateGeometry):
		return "degenerate_geometry"
	case errors.Is(err, core.ErrUnrealisticApproximation):
		return "unrealistic_approximation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
