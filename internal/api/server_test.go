package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/signalsfoundry/occultation-planner/catalog"
	"github.com/signalsfoundry/occultation-planner/internal/plan"
	"github.com/signalsfoundry/occultation-planner/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cat := catalog.New()
	if err := cat.AddStar(&model.Star{ID: "aldebaran-like", RadiusSolar: 44, DistanceParsec: 20}); err != nil {
		t.Fatalf("AddStar: %v", err)
	}
	if err := cat.AddCamera(&model.Camera{ID: "hs-450", FrameRateHz: 450}); err != nil {
		t.Fatalf("AddCamera: %v", err)
	}
	if err := cat.AddBody(model.Moon()); err != nil {
		t.Fatalf("AddBody: %v", err)
	}
	if err := cat.AddScenario(&model.Scenario{
		ID:            "giant-occultation",
		StarID:        "aldebaran-like",
		CameraID:      "hs-450",
		BodyID:        "moon",
		GrazingFactor: 1.0,
	}); err != nil {
		t.Fatalf("AddScenario: %v", err)
	}

	return NewServer(Config{
		Addr:    "127.0.0.1:0",
		Planner: plan.New(cat),
		Catalog: cat,
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv.Handler(), http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("/healthz status = %d, want 200", rr.Code)
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing X-Request-Id header")
	}
}

func TestEvaluateEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv.Handler(), http.MethodPost, "/v1/evaluate", `{
		"target": {"angular_diameter_mas": 10},
		"timing": {"frame_rate_hz": 450, "limb_arcsec_per_sec": 0.55}
	}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rr.Code, rr.Body.String())
	}

	var resp assessmentResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Verdict != "resolvable" {
		t.Fatalf("verdict = %q, want resolvable", resp.Verdict)
	}
	if resp.FrameCount != 8 {
		t.Fatalf("frame_count = %d, want 8", resp.FrameCount)
	}
	wantDuration := 0.010 / 0.55
	if math.Abs(resp.DurationSec-wantDuration) > 1e-9 {
		t.Fatalf("duration_sec = %v, want %v", resp.DurationSec, wantDuration)
	}
	if len(resp.Lightcurve) != 8 {
		t.Fatalf("lightcurve samples = %d, want 8", len(resp.Lightcurve))
	}
}

func TestEvaluateEndpointDefaultsToMoon(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv.Handler(), http.MethodPost, "/v1/evaluate", `{
		"target": {"radius_solar": 30, "distance_parsec": 10},
		"timing": {"frame_rate_hz": 450}
	}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rr.Code, rr.Body.String())
	}

	var resp assessmentResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	// Mean lunar limb rate is ~0.549 arcsec/s.
	if resp.LimbArcsecPerSec < 0.5 || resp.LimbArcsecPerSec > 0.6 {
		t.Fatalf("limb_arcsec_per_sec = %v, want ~0.55", resp.LimbArcsecPerSec)
	}
}

func TestEvaluateEndpointBadJSON(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv.Handler(), http.MethodPost, "/v1/evaluate", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestEvaluateEndpointInvalidInput(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv.Handler(), http.MethodPost, "/v1/evaluate", `{
		"target": {},
		"timing": {"frame_rate_hz": 450, "limb_arcsec_per_sec": 0.55}
	}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rr.Code, rr.Body.String())
	}
}

func TestEvaluateEndpointUnrealisticGeometry(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv.Handler(), http.MethodPost, "/v1/evaluate", `{
		"target": {"radius_solar": 1000000, "distance_parsec": 0.000001},
		"timing": {"frame_rate_hz": 450, "limb_arcsec_per_sec": 0.55}
	}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body %s", rr.Code, rr.Body.String())
	}
}

func TestEvaluateEndpointUnknownBody(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv.Handler(), http.MethodPost, "/v1/evaluate", `{
		"target": {"angular_diameter_mas": 10},
		"timing": {"frame_rate_hz": 450, "body_id": "phobos"}
	}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body %s", rr.Code, rr.Body.String())
	}
}

func TestScenarioAssessmentEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv.Handler(), http.MethodGet, "/v1/scenarios/giant-occultation/assessment", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rr.Code, rr.Body.String())
	}
	var resp assessmentResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Verdict != "resolvable" {
		t.Fatalf("verdict = %q, want resolvable", resp.Verdict)
	}
	if rel := math.Abs(resp.RecoveredRadiusSolar-44) / 44; rel > 1e-9 {
		t.Fatalf("recovered_radius_solar = %v, want 44", resp.RecoveredRadiusSolar)
	}
}

func TestScenarioAssessmentNotFound(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv.Handler(), http.MethodGet, "/v1/scenarios/nope/assessment", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestRecoverEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv.Handler(), http.MethodPost, "/v1/recover", `{
		"measured_duration_sec": 0.0181818,
		"timing": {"limb_arcsec_per_sec": 0.55}
	}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rr.Code, rr.Body.String())
	}
	var resp recoverResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if math.Abs(resp.AngularDiameterMas-10) > 0.01 {
		t.Fatalf("angular_diameter_mas = %v, want ~10", resp.AngularDiameterMas)
	}
}

func TestSurveyEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv.Handler(), http.MethodPost, "/v1/survey", `{
		"radii_solar": {"min": 0.1, "max": 30, "steps": 5},
		"distances_parsec": {"min": 1, "max": 100, "steps": 4},
		"timing": {"frame_rate_hz": 450, "body_id": "moon", "grazing_factor": 1.0}
	}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rr.Code, rr.Body.String())
	}
	var resp surveyResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Rows) != 20 {
		t.Fatalf("rows = %d, want 20", len(resp.Rows))
	}
	total := 0
	for _, n := range resp.Counts {
		total += n
	}
	if total != 20 {
		t.Fatalf("counts total = %d, want 20", total)
	}
}

func TestSurveyEndpointBadSpan(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv.Handler(), http.MethodPost, "/v1/survey", `{
		"radii_solar": {"min": 30, "max": 0.1, "steps": 5},
		"distances_parsec": {"min": 1, "max": 100, "steps": 4},
		"timing": {"frame_rate_hz": 450}
	}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rr.Code, rr.Body.String())
	}
}

func TestCatalogListEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for path, key := range map[string]string{
		"/v1/catalog/stars":     "stars",
		"/v1/catalog/cameras":   "cameras",
		"/v1/catalog/bodies":    "bodies",
		"/v1/catalog/scenarios": "scenarios",
	} {
		rr := doJSON(t, srv.Handler(), http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", path, rr.Code)
		}
		var resp map[string]json.RawMessage
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s unmarshal: %v", path, err)
		}
		if _, ok := resp[key]; !ok {
			t.Fatalf("%s response missing %q key", path, key)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv.Handler(), http.MethodGet, "/v1/evaluate", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}
}
