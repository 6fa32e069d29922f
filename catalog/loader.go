// catalog/loader.go
package catalog

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/occultation-planner/model"
)

// Summary is a small account of what was loaded from JSON. It's mainly
// useful for logging from main().
type Summary struct {
	StarIDs     []string
	CameraIDs   []string
	BodyIDs     []string
	ScenarioIDs []string
}

// internal JSON shapes – kept unexported so we're free to evolve them.
type catalogJSON struct {
	Stars     []starJSON     `json:"stars"`
	Cameras   []cameraJSON   `json:"cameras"`
	Bodies    []bodyJSON     `json:"bodies"`
	Scenarios []scenarioJSON `json:"scenarios"`
}

type starJSON struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	RadiusSolar        float64 `json:"radius_solar"`
	DistanceParsec     float64 `json:"distance_parsec"`
	AngularDiameterMas float64 `json:"angular_diameter_mas"`
}

type cameraJSON struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	FrameRateHz float64 `json:"frame_rate_hz"`
}

type bodyJSON struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	OrbitalPeriodDays float64 `json:"orbital_period_days"`
	RadiusKm          float64 `json:"radius_km"`
	DistanceKm        float64 `json:"distance_km"`
}

type scenarioJSON struct {
	ID                       string   `json:"id"`
	Name                     string   `json:"name"`
	StarID                   string   `json:"star_id"`
	CameraID                 string   `json:"camera_id"`
	BodyID                   string   `json:"body_id"`
	GrazingFactor            *float64 `json:"grazing_factor"` // optional; defaults to 1.0
	LimbVelocityArcsecPerSec float64  `json:"limb_velocity_arcsec_per_sec"`
}

// Load reads a JSON catalog from r and populates the store, returning a
// summary of what was loaded.
//
// It fails on JSON/structural errors and on referential errors surfaced by
// the catalog itself (duplicate IDs, scenarios naming unknown entities).
// Physical plausibility of the values is left to evaluation time, where the
// core model validates its own inputs anyway.
func Load(c *Catalog, r io.Reader) (*Summary, error) {
	if c == nil {
		return nil, fmt.Errorf("catalog.Load: catalog is nil")
	}

	var payload catalogJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("catalog.Load: decode failed: %w", err)
	}

	summary := &Summary{}

	for _, js := range payload.Bodies {
		if js.ID == "" {
			return nil, fmt.Errorf("catalog.Load: body with empty id")
		}
		if err := c.AddBody(&model.OccultingBody{
			ID:                js.ID,
			Name:              js.Name,
			OrbitalPeriodDays: js.OrbitalPeriodDays,
			RadiusKm:          js.RadiusKm,
			DistanceKm:        js.DistanceKm,
		}); err != nil {
			return nil, fmt.Errorf("catalog.Load: %w", err)
		}
		summary.BodyIDs = append(summary.BodyIDs, js.ID)
	}

	for _, js := range payload.Stars {
		if js.ID == "" {
			return nil, fmt.Errorf("catalog.Load: star with empty id")
		}
		if err := c.AddStar(&model.Star{
			ID:                 js.ID,
			Name:               js.Name,
			RadiusSolar:        js.RadiusSolar,
			DistanceParsec:     js.DistanceParsec,
			AngularDiameterMas: js.AngularDiameterMas,
		}); err != nil {
			return nil, fmt.Errorf("catalog.Load: %w", err)
		}
		summary.StarIDs = append(summary.StarIDs, js.ID)
	}

	for _, js := range payload.Cameras {
		if js.ID == "" {
			return nil, fmt.Errorf("catalog.Load: camera with empty id")
		}
		if err := c.AddCamera(&model.Camera{
			ID:          js.ID,
			Name:        js.Name,
			FrameRateHz: js.FrameRateHz,
		}); err != nil {
			return nil, fmt.Errorf("catalog.Load: %w", err)
		}
		summary.CameraIDs = append(summary.CameraIDs, js.ID)
	}

	for _, js := range payload.Scenarios {
		if js.ID == "" {
			return nil, fmt.Errorf("catalog.Load: scenario with empty id")
		}
		grazing := 1.0
		if js.GrazingFactor != nil {
			grazing = *js.GrazingFactor
		}
		if err := c.AddScenario(&model.Scenario{
			ID:                       js.ID,
			Name:                     js.Name,
			StarID:                   js.StarID,
			CameraID:                 js.CameraID,
			BodyID:                   js.BodyID,
			GrazingFactor:            grazing,
			LimbVelocityArcsecPerSec: js.LimbVelocityArcsecPerSec,
		}); err != nil {
			return nil, fmt.Errorf("catalog.Load: %w", err)
		}
		summary.ScenarioIDs = append(summary.ScenarioIDs, js.ID)
	}

	return summary, nil
}
