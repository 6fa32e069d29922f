package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/signalsfoundry/occultation-planner/core"
)

// Mode describes how the Player advances through the frame sequence.
type Mode int

const (
	// RealTime emits frames at the camera's actual cadence.
	RealTime Mode = iota
	// Accelerated emits frames as fast as the loop can run.
	Accelerated
)

// Frame is one emitted camera exposure during the replayed ingress.
type Frame struct {
	Index int
	// TimeSec is the frame midpoint measured from first contact.
	TimeSec float64
	// Flux is the predicted relative flux the camera would record.
	Flux float64
}

// Player replays a partial occultation at camera frame cadence and notifies
// registered listeners once per frame. It exists so an operator can watch
// what a given star/camera pairing would actually deliver, without a telescope.
type Player struct {
	mu sync.RWMutex

	DurationSec    float64
	FramePeriodSec float64
	Mode           Mode

	current   Frame
	listeners []func(Frame)
}

// NewPlayer constructs a player for one ingress.
func NewPlayer(durationSec, framePeriodSec float64, mode Mode) *Player {
	return &Player{
		DurationSec:    durationSec,
		FramePeriodSec: framePeriodSec,
		Mode:           mode,
	}
}

// Current returns the most recently emitted frame.
func (p *Player) Current() Frame {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// AddListener registers a callback invoked on every frame.
func (p *Player) AddListener(fn func(Frame)) {
	p.listeners = append(p.listeners, fn)
}

// Start runs the replay in a separate goroutine. It returns a channel that
// is closed when the last in-phase frame has been emitted, and an error if
// the configured timing is unusable.
func (p *Player) Start() (<-chan struct{}, error) {
	samples, err := core.Lightcurve(p.DurationSec, p.FramePeriodSec)
	if err != nil {
		return nil, fmt.Errorf("playback: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		var ticker *time.Ticker
		if p.Mode == RealTime {
			ticker = time.NewTicker(time.Duration(p.FramePeriodSec * float64(time.Second)))
			defer ticker.Stop()
		}

		for i, s := range samples {
			if ticker != nil {
				<-ticker.C
			}

			frame := Frame{Index: i, TimeSec: s.TimeSec, Flux: s.Flux}
			p.mu.Lock()
			p.current = frame
			p.mu.Unlock()

			for _, fn := range p.listeners {
				fn(frame)
			}
		}
	}()
	return done, nil
}
