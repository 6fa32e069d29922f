// Package api exposes the planner over HTTP: evaluation, recovery, and
// survey endpoints plus read-only catalog listings.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/signalsfoundry/occultation-planner/catalog"
	"github.com/signalsfoundry/occultation-planner/core"
	"github.com/signalsfoundry/occultation-planner/internal/logging"
	"github.com/signalsfoundry/occultation-planner/internal/observability"
	"github.com/signalsfoundry/occultation-planner/internal/plan"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	planner    *plan.Planner
	catalog    *catalog.Catalog
	log        logging.Logger
}

// Config collects the server's dependencies. Collector may be nil, in which
// case no /metrics endpoint or HTTP metrics are exposed.
type Config struct {
	Addr      string
	Planner   *plan.Planner
	Catalog   *catalog.Catalog
	Logger    logging.Logger
	Collector *observability.PlannerCollector
}

// NewServer creates a configured HTTP server.
func NewServer(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logging.Noop()
	}

	s := &Server{
		planner: cfg.Planner,
		catalog: cfg.Catalog,
		log:     log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("POST /v1/evaluate", s.handleEvaluate)
	mux.HandleFunc("POST /v1/recover", s.handleRecover)
	mux.HandleFunc("POST /v1/survey", s.handleSurvey)
	mux.HandleFunc("GET /v1/scenarios/{id}/assessment", s.handleScenarioAssessment)
	mux.HandleFunc("GET /v1/catalog/stars", s.handleListStars)
	mux.HandleFunc("GET /v1/catalog/cameras", s.handleListCameras)
	mux.HandleFunc("GET /v1/catalog/bodies", s.handleListBodies)
	mux.HandleFunc("GET /v1/catalog/scenarios", s.handleListScenarios)
	if cfg.Collector != nil {
		mux.Handle("GET /metrics", cfg.Collector.Handler())
	}

	// Chain: otelhttp -> metrics -> request-id/logging -> mux.
	var handler http.Handler = mux
	handler = requestIDMiddleware(log)(handler)
	if cfg.Collector != nil {
		handler = cfg.Collector.Middleware(handler)
	}
	handler = otelhttp.NewHandler(handler, "occultd")

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// HTTPServer returns the underlying *http.Server for external control.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// targetPayload mirrors plan.Target on the wire.
type targetPayload struct {
	RadiusSolar        float64 `json:"radius_solar,omitempty"`
	DistanceParsec     float64 `json:"distance_parsec,omitempty"`
	AngularDiameterMas float64 `json:"angular_diameter_mas,omitempty"`
}

// timingPayload mirrors plan.Timing; the occulting body travels by catalog
// ID rather than by value.
type timingPayload struct {
	FrameRateHz      float64 `json:"frame_rate_hz"`
	LimbArcsecPerSec float64 `json:"limb_arcsec_per_sec,omitempty"`
	BodyID           string  `json:"body_id,omitempty"`
	GrazingFactor    float64 `json:"grazing_factor,omitempty"`
}

type evaluateRequest struct {
	Target targetPayload `json:"target"`
	Timing timingPayload `json:"timing"`
}

type assessmentResponse struct {
	AngularDiameterMas   float64           `json:"angular_diameter_mas"`
	LimbArcsecPerSec     float64           `json:"limb_arcsec_per_sec"`
	DurationSec          float64           `json:"duration_sec"`
	FrameCount           int               `json:"frame_count"`
	Verdict              string            `json:"verdict"`
	Lightcurve           []core.FluxSample `json:"lightcurve,omitempty"`
	RecoveredRadiusSolar float64           `json:"recovered_radius_solar,omitempty"`
}

func assessmentPayload(a *plan.Assessment) assessmentResponse {
	return assessmentResponse{
		AngularDiameterMas:   a.AngularDiameterMas,
		LimbArcsecPerSec:     a.LimbArcsecPerSec,
		DurationSec:          a.DurationSec,
		FrameCount:           a.FrameCount,
		Verdict:              a.Verdict.String(),
		Lightcurve:           a.Lightcurve,
		RecoveredRadiusSolar: a.RecoveredRadiusSolar,
	}
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	timing, err := s.timing(req.Timing)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	a, err := s.planner.Evaluate(r.Context(), plan.Request{
		Target: plan.Target{
			RadiusSolar:        req.Target.RadiusSolar,
			DistanceParsec:     req.Target.DistanceParsec,
			AngularDiameterMas: req.Target.AngularDiameterMas,
		},
		Timing: timing,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assessmentPayload(a))
}

func (s *Server) handleScenarioAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.planner.EvaluateScenario(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assessmentPayload(a))
}

type recoverRequest struct {
	MeasuredDurationSec float64       `json:"measured_duration_sec"`
	Timing              timingPayload `json:"timing"`
	DistanceParsec      float64       `json:"distance_parsec,omitempty"`
}

type recoverResponse struct {
	AngularDiameterMas float64 `json:"angular_diameter_mas"`
	RadiusSolar        float64 `json:"radius_solar,omitempty"`
}

func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	timing, err := s.timing(req.Timing)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	rec, err := s.planner.Recover(r.Context(), plan.RecoverRequest{
		MeasuredDurationSec: req.MeasuredDurationSec,
		Timing:              timing,
		DistanceParsec:      req.DistanceParsec,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recoverResponse{
		AngularDiameterMas: rec.AngularDiameterMas,
		RadiusSolar:        rec.RadiusSolar,
	})
}

type spanPayload struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Steps int     `json:"steps"`
}

type surveyRequest struct {
	RadiiSolar      spanPayload   `json:"radii_solar"`
	DistancesParsec spanPayload   `json:"distances_parsec"`
	Timing          timingPayload `json:"timing"`
	Parallelism     int           `json:"parallelism,omitempty"`
}

type surveyRowPayload struct {
	RadiusSolar        float64 `json:"radius_solar"`
	DistanceParsec     float64 `json:"distance_parsec"`
	AngularDiameterMas float64 `json:"angular_diameter_mas"`
	DurationSec        float64 `json:"duration_sec"`
	FrameCount         int     `json:"frame_count"`
	Verdict            string  `json:"verdict"`
}

type surveyResponse struct {
	Rows   []surveyRowPayload `json:"rows"`
	Counts map[string]int     `json:"counts"`
}

func (s *Server) handleSurvey(w http.ResponseWriter, r *http.Request) {
	var req surveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	timing, err := s.timing(req.Timing)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := s.planner.Survey(r.Context(), plan.SurveyRequest{
		RadiiSolar:      core.Span{Min: req.RadiiSolar.Min, Max: req.RadiiSolar.Max, Steps: req.RadiiSolar.Steps},
		DistancesParsec: core.Span{Min: req.DistancesParsec.Min, Max: req.DistancesParsec.Max, Steps: req.DistancesParsec.Steps},
		Timing:          timing,
		Parallelism:     req.Parallelism,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp := surveyResponse{
		Rows:   make([]surveyRowPayload, 0, len(result.Rows)),
		Counts: make(map[string]int, len(result.Counts)),
	}
	for _, row := range result.Rows {
		resp.Rows = append(resp.Rows, surveyRowPayload{
			RadiusSolar:        row.RadiusSolar,
			DistanceParsec:     row.DistanceParsec,
			AngularDiameterMas: row.AngularDiameterMas,
			DurationSec:        row.DurationSec,
			FrameCount:         row.FrameCount,
			Verdict:            row.Verdict.String(),
		})
	}
	for verdict, n := range result.Counts {
		resp.Counts[verdict.String()] = n
	}
	writeJSON(w, http.StatusOK, resp)
}

// timing resolves the wire timing payload, looking up the occulting body
// when referenced by ID and defaulting to the Moon when neither a direct
// velocity nor a body is given.
func (s *Server) timing(p timingPayload) (plan.Timing, error) {
	t := plan.Timing{
		FrameRateHz:      p.FrameRateHz,
		LimbArcsecPerSec: p.LimbArcsecPerSec,
		GrazingFactor:    p.GrazingFactor,
	}
	if p.BodyID != "" {
		if s.catalog == nil {
			return plan.Timing{}, errBodyNotFound(p.BodyID)
		}
		body := s.catalog.Body(p.BodyID)
		if body == nil {
			return plan.Timing{}, errBodyNotFound(p.BodyID)
		}
		t.Body = body
	}
	return t, nil
}

func errBodyNotFound(id string) error {
	return &notFoundError{msg: "body " + id}
}

type notFoundError struct{ msg string }

func (e *notFoundError) Error() string { return e.msg + ": not found" }
func (e *notFoundError) Is(target error) bool {
	return target == plan.ErrNotFound
}

type starPayload struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name,omitempty"`
	RadiusSolar        float64 `json:"radius_solar,omitempty"`
	DistanceParsec     float64 `json:"distance_parsec,omitempty"`
	AngularDiameterMas float64 `json:"angular_diameter_mas,omitempty"`
}

func (s *Server) handleListStars(w http.ResponseWriter, _ *http.Request) {
	stars := s.catalogOrEmpty().ListStars()
	out := make([]starPayload, 0, len(stars))
	for _, st := range stars {
		out = append(out, starPayload{
			ID:                 st.ID,
			Name:               st.Name,
			RadiusSolar:        st.RadiusSolar,
			DistanceParsec:     st.DistanceParsec,
			AngularDiameterMas: st.AngularDiameterMas,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"stars": out})
}

type cameraPayload struct {
	ID          string  `json:"id"`
	Name        string  `json:"name,omitempty"`
	FrameRateHz float64 `json:"frame_rate_hz"`
}

func (s *Server) handleListCameras(w http.ResponseWriter, _ *http.Request) {
	cams := s.catalogOrEmpty().ListCameras()
	out := make([]cameraPayload, 0, len(cams))
	for _, c := range cams {
		out = append(out, cameraPayload{ID: c.ID, Name: c.Name, FrameRateHz: c.FrameRateHz})
	}
	writeJSON(w, http.StatusOK, map[string]any{"cameras": out})
}

type bodyPayload struct {
	ID                string  `json:"id"`
	Name              string  `json:"name,omitempty"`
	OrbitalPeriodDays float64 `json:"orbital_period_days"`
	RadiusKm          float64 `json:"radius_km,omitempty"`
	DistanceKm        float64 `json:"distance_km,omitempty"`
}

func (s *Server) handleListBodies(w http.ResponseWriter, _ *http.Request) {
	bodies := s.catalogOrEmpty().ListBodies()
	out := make([]bodyPayload, 0, len(bodies))
	for _, b := range bodies {
		out = append(out, bodyPayload{
			ID:                b.ID,
			Name:              b.Name,
			OrbitalPeriodDays: b.OrbitalPeriodDays,
			RadiusKm:          b.RadiusKm,
			DistanceKm:        b.DistanceKm,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"bodies": out})
}

type scenarioPayload struct {
	ID                       string  `json:"id"`
	Name                     string  `json:"name,omitempty"`
	StarID                   string  `json:"star_id"`
	CameraID                 string  `json:"camera_id"`
	BodyID                   string  `json:"body_id,omitempty"`
	GrazingFactor            float64 `json:"grazing_factor,omitempty"`
	LimbVelocityArcsecPerSec float64 `json:"limb_velocity_arcsec_per_sec,omitempty"`
}

func (s *Server) handleListScenarios(w http.ResponseWriter, _ *http.Request) {
	scs := s.catalogOrEmpty().ListScenarios()
	out := make([]scenarioPayload, 0, len(scs))
	for _, sc := range scs {
		out = append(out, scenarioPayload{
			ID:                       sc.ID,
			Name:                     sc.Name,
			StarID:                   sc.StarID,
			CameraID:                 sc.CameraID,
			BodyID:                   sc.BodyID,
			GrazingFactor:            sc.GrazingFactor,
			LimbVelocityArcsecPerSec: sc.LimbVelocityArcsecPerSec,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenarios": out})
}

var emptyCatalog = catalog.New()

func (s *Server) catalogOrEmpty() *catalog.Catalog {
	if s.catalog != nil {
		return s.catalog
	}
	return emptyCatalog
}

// writeDomainError maps domain sentinels onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, plan.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrDegenerateGeometry),
		errors.Is(err, core.ErrUnrealisticApproximation):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed",
			logging.String("path", r.URL.Path),
			logging.String("error", err.Error()),
		)
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestIDMiddleware(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, reqLog := logging.WithRequestLogger(r.Context(), log)
			w.Header().Set("X-Request-Id", logging.RequestIDFromContext(ctx))
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sr, r.WithContext(ctx))

			if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
				return
			}
			reqLog.Info(ctx, "request",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", sr.status),
				logging.Int("duration_ms", int(time.Since(start).Milliseconds())),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}
