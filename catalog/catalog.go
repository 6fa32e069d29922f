package catalog

import (
	"fmt"
	"sync"

	"github.com/signalsfoundry/occultation-planner/model"
)

// EventType indicates what kind of change happened in the catalog.
type EventType int

const (
	EventStarAdded EventType = iota
	EventScenarioAdded
)

// Event is emitted to subscribers when the catalog changes.
type Event struct {
	Type EventType
	ID   string
}

// MetricsRecorder receives entity counts whenever the catalog changes, so a
// metrics backend can keep gauges in step with the store.
type MetricsRecorder interface {
	SetCatalogCounts(stars, cameras, bodies, scenarios int)
}

// Catalog is an in-memory, thread-safe store for stars, cameras, occulting
// bodies, and the scenarios that tie them together.
type Catalog struct {
	mu sync.RWMutex

	stars     map[string]*model.Star
	cameras   map[string]*model.Camera
	bodies    map[string]*model.OccultingBody
	scenarios map[string]*model.Scenario

	subs    []func(Event)
	metrics MetricsRecorder
}

// Option customises catalog construction.
type Option func(*Catalog)

// WithMetricsRecorder wires a metrics backend that tracks entity counts.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(c *Catalog) { c.metrics = m }
}

// New constructs an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		stars:     make(map[string]*model.Star),
		cameras:   make(map[string]*model.Camera),
		bodies:    make(map[string]*model.OccultingBody),
		scenarios: make(map[string]*model.Scenario),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddStar adds a new star. It returns an error if the ID is empty or taken.
func (c *Catalog) AddStar(s *model.Star) error {
	c.mu.Lock()
	if s.ID == "" {
		c.mu.Unlock()
		return fmt.Errorf("star with empty ID")
	}
	if _, exists := c.stars[s.ID]; exists {
		c.mu.Unlock()
		return fmt.Errorf("star with ID %q already exists", s.ID)
	}
	c.stars[s.ID] = s
	c.recordCountsLocked()
	subs := append([]func(Event){}, c.subs...)
	c.mu.Unlock()

	// Notify outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(Event{Type: EventStarAdded, ID: s.ID})
	}
	return nil
}

// AddCamera adds a new camera. It returns an error if the ID is empty or taken.
func (c *Catalog) AddCamera(cam *model.Camera) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cam.ID == "" {
		return fmt.Errorf("camera with empty ID")
	}
	if _, exists := c.cameras[cam.ID]; exists {
		return fmt.Errorf("camera with ID %q already exists", cam.ID)
	}
	c.cameras[cam.ID] = cam
	c.recordCountsLocked()
	return nil
}

// AddBody adds a new occulting body. It returns an error if the ID is empty
// or taken.
func (c *Catalog) AddBody(b *model.OccultingBody) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b.ID == "" {
		return fmt.Errorf("body with empty ID")
	}
	if _, exists := c.bodies[b.ID]; exists {
		return fmt.Errorf("body with ID %q already exists", b.ID)
	}
	c.bodies[b.ID] = b
	c.recordCountsLocked()
	return nil
}

// AddScenario adds a new scenario. Referenced star, camera and body IDs must
// already exist in the catalog.
func (c *Catalog) AddScenario(sc *model.Scenario) error {
	c.mu.Lock()
	if sc.ID == "" {
		c.mu.Unlock()
		return fmt.Errorf("scenario with empty ID")
	}
	if _, exists := c.scenarios[sc.ID]; exists {
		c.mu.Unlock()
		return fmt.Errorf("scenario with ID %q already exists", sc.ID)
	}
	if _, ok := c.stars[sc.StarID]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("star with ID %q not found for scenario %q", sc.StarID, sc.ID)
	}
	if _, ok := c.cameras[sc.CameraID]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("camera with ID %q not found for scenario %q", sc.CameraID, sc.ID)
	}
	if sc.BodyID != "" {
		if _, ok := c.bodies[sc.BodyID]; !ok {
			c.mu.Unlock()
			return fmt.Errorf("body with ID %q not found for scenario %q", sc.BodyID, sc.ID)
		}
	}
	c.scenarios[sc.ID] = sc
	c.recordCountsLocked()
	subs := append([]func(Event){}, c.subs...)
	c.mu.Unlock()

	for _, sub := range subs {
		sub(Event{Type: EventScenarioAdded, ID: sc.ID})
	}
	return nil
}

// Star returns the star with the given ID, or nil if not found.
func (c *Catalog) Star(id string) *model.Star {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stars[id]
}

// Camera returns the camera with the given ID, or nil if not found.
func (c *Catalog) Camera(id string) *model.Camera {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cameras[id]
}

// Body returns the occulting body with the given ID, or nil if not found.
func (c *Catalog) Body(id string) *model.OccultingBody {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bodies[id]
}

// Scenario returns the scenario with the given ID, or nil if not found.
func (c *Catalog) Scenario(id string) *model.Scenario {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scenarios[id]
}

// ListStars returns a snapshot slice of all stars.
func (c *Catalog) ListStars() []*model.Star {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res := make([]*model.Star, 0, len(c.stars))
	for _, s := range c.stars {
		res = append(res, s)
	}
	return res
}

// ListCameras returns a snapshot slice of all cameras.
func (c *Catalog) ListCameras() []*model.Camera {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res := make([]*model.Camera, 0, len(c.cameras))
	for _, cam := range c.cameras {
		res = append(res, cam)
	}
	return res
}

// ListBodies returns a snapshot slice of all occulting bodies.
func (c *Catalog) ListBodies() []*model.OccultingBody {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res := make([]*model.OccultingBody, 0, len(c.bodies))
	for _, b := range c.bodies {
		res = append(res, b)
	}
	return res
}

// ListScenarios returns a snapshot slice of all scenarios.
func (c *Catalog) ListScenarios() []*model.Scenario {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res := make([]*model.Scenario, 0, len(c.scenarios))
	for _, sc := range c.scenarios {
		res = append(res, sc)
	}
	return res
}

// Subscribe registers a callback for catalog events. It returns an
// unsubscribe function.
func (c *Catalog) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
	idx := len(c.subs) - 1

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < 0 || idx >= len(c.subs) {
			return
		}
		c.subs = append(c.subs[:idx], c.subs[idx+1:]...)
		idx = -1
	}
}

func (c *Catalog) recordCountsLocked() {
	if c.metrics == nil {
		return
	}
	c.metrics.SetCatalogCounts(len(c.stars), len(c.cameras), len(c.bodies), len(c.scenarios))
}
