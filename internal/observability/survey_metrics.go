package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// SurveyCollector tracks parameter-grid survey runs.
type SurveyCollector struct {
	RunsTotal        prometheus.Counter
	CellsTotal       prometheus.Counter
	RunDurations     prometheus.Histogram
	lastResolvable   prometheus.Gauge
	lastMarginal     prometheus.Gauge
	lastUnresolvable prometheus.Gauge
}

// NewSurveyCollector registers survey metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSurveyCollector(reg prometheus.Registerer) (*SurveyCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	runs, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "occult_survey_runs_total",
		Help: "Total number of completed parameter-grid surveys.",
	}), "occult_survey_runs_total")
	if err != nil {
		return nil, err
	}
	cells, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "occult_survey_cells_total",
		Help: "Total number of grid cells evaluated across all surveys.",
	}), "occult_survey_cells_total")
	if err != nil {
		return nil, err
	}
	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "occult_survey_duration_seconds",
		Help:    "Wall-clock duration of survey runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}), "occult_survey_duration_seconds")
	if err != nil {
		return nil, err
	}
	resolvable, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "occult_survey_last_resolvable_cells",
		Help: "Resolvable cell count of the most recent survey.",
	}), "occult_survey_last_resolvable_cells")
	if err != nil {
		return nil, err
	}
	marginal, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "occult_survey_last_marginal_cells",
		Help: "Marginal cell count of the most recent survey.",
	}), "occult_survey_last_marginal_cells")
	if err != nil {
		return nil, err
	}
	unresolvable, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "occult_survey_last_unresolvable_cells",
		Help: "Unresolvable cell count of the most recent survey.",
	}), "occult_survey_last_unresolvable_cells")
	if err != nil {
		return nil, err
	}

	return &SurveyCollector{
		RunsTotal:        runs,
		CellsTotal:       cells,
		RunDurations:     durations,
		lastResolvable:   resolvable,
		lastMarginal:     marginal,
		lastUnresolvable: unresolvable,
	}, nil
}

// RecordRun tallies one completed survey together with its verdict breakdown.
func (c *SurveyCollector) RecordRun(durationSec float64, resolvable, marginal, unresolvable int) {
	if c == nil {
		return
	}
	if c.RunsTotal != nil {
		c.RunsTotal.Inc()
	}
	if c.CellsTotal != nil {
		c.CellsTotal.Add(float64(resolvable + marginal + unresolvable))
	}
	if c.RunDurations != nil {
		c.RunDurations.Observe(durationSec)
	}
	if c.lastResolvable != nil {
		c.lastResolvable.Set(float64(resolvable))
	}
	if c.lastMarginal != nil {
		c.lastMarginal.Set(float64(marginal))
	}
	if c.lastUnresolvable != nil {
		c.lastUnresolvable.Set(float64(unresolvable))
	}
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
