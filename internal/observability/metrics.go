package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PlannerCollector bundles Prometheus metrics for the planner surface and
// provides helpers to wire them into HTTP handlers.
type PlannerCollector struct {
	gatherer prometheus.Gatherer

	EvaluationsTotal      *prometheus.CounterVec
	EvaluationErrorsTotal *prometheus.CounterVec
	PartialPhaseDurations prometheus.Histogram

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	CatalogStars     prometheus.Gauge
	CatalogCameras   prometheus.Gauge
	CatalogBodies    prometheus.Gauge
	CatalogScenarios prometheus.Gauge
}

// NewPlannerCollector registers planner Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewPlannerCollector(reg prometheus.Registerer) (*PlannerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "occult_evaluations_total",
		Help: "Total number of completed feasibility evaluations, labeled by verdict.",
	}, []string{"verdict"})
	evaluations, err := registerCounterVec(reg, evaluations, "occult_evaluations_total")
	if err != nil {
		return nil, err
	}

	evalErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "occult_evaluation_errors_total",
		Help: "Total number of rejected evaluations, labeled by error class.",
	}, []string{"reason"})
	evalErrors, err = registerCounterVec(reg, evalErrors, "occult_evaluation_errors_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "occult_partial_phase_duration_seconds",
		Help:    "Computed partial-phase durations in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.02, 0.05, 0.1, 0.5, 1},
	})
	durations, err = registerHistogram(reg, durations, "occult_partial_phase_duration_seconds")
	if err != nil {
		return nil, err
	}

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "occult_http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by route, method, and status code.",
	}, []string{"route", "method", "code"})
	httpRequests, err = registerCounterVec(reg, httpRequests, "occult_http_requests_total")
	if err != nil {
		return nil, err
	}

	httpDurations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "occult_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route", "method"})
	httpDurations, err = registerHistogramVec(reg, httpDurations, "occult_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	stars, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "occult_catalog_stars",
		Help: "Current number of stars in the catalog.",
	}), "occult_catalog_stars")
	if err != nil {
		return nil, err
	}
	cameras, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "occult_catalog_cameras",
		Help: "Current number of cameras in the catalog.",
	}), "occult_catalog_cameras")
	if err != nil {
		return nil, err
	}
	bodies, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "occult_catalog_bodies",
		Help: "Current number of occulting bodies in the catalog.",
	}), "occult_catalog_bodies")
	if err != nil {
		return nil, err
	}
	scenarios, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "occult_catalog_scenarios",
		Help: "Current number of scenarios in the catalog.",
	}), "occult_catalog_scenarios")
	if err != nil {
		return nil, err
	}

	return &PlannerCollector{
		gatherer:              gatherer,
		EvaluationsTotal:      evaluations,
		EvaluationErrorsTotal: evalErrors,
		PartialPhaseDurations: durations,
		HTTPRequests:          httpRequests,
		HTTPDurations:         httpDurations,
		CatalogStars:          stars,
		CatalogCameras:        cameras,
		CatalogBodies:         bodies,
		CatalogScenarios:      scenarios,
	}, nil
}

// RecordEvaluation tallies one completed evaluation.
func (c *PlannerCollector) RecordEvaluation(verdict string, durationSec float64) {
	if c == nil {
		return
	}
	if c.EvaluationsTotal != nil {
		c.EvaluationsTotal.WithLabelValues(verdict).Inc()
	}
	if c.PartialPhaseDurations != nil {
		c.PartialPhaseDurations.Observe(durationSec)
	}
}

// RecordEvaluationError tallies one rejected evaluation by error class.
func (c *PlannerCollector) RecordEvaluationError(reason string) {
	if c == nil || c.EvaluationErrorsTotal == nil {
		return
	}
	c.EvaluationErrorsTotal.WithLabelValues(reason).Inc()
}

// SetCatalogCounts satisfies the catalog.MetricsRecorder interface so the
// store can drive gauge values directly from its mutators.
func (c *PlannerCollector) SetCatalogCounts(stars, cameras, bodies, scenarios int) {
	if c == nil {
		return
	}
	if c.CatalogStars != nil {
		c.CatalogStars.Set(float64(stars))
	}
	if c.CatalogCameras != nil {
		c.CatalogCameras.Set(float64(cameras))
	}
	if c.CatalogBodies != nil {
		c.CatalogBodies.Set(float64(bodies))
	}
	if c.CatalogScenarios != nil {
		c.CatalogScenarios.Set(float64(scenarios))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *PlannerCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and durations for every HTTP request.
// The route label uses the matched mux pattern when available so that path
// parameters do not explode the label cardinality.
func (c *PlannerCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sr, r)

		if c == nil {
			return
		}
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		if c.HTTPRequests != nil {
			c.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(sr.status)).Inc()
		}
		if c.HTTPDurations != nil {
			c.HTTPDurations.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		}
	})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
