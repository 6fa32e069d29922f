package playback

import (
	"errors"
	"testing"

	"github.com/signalsfoundry/occultation-planner/core"
)

func TestPlayerEmitsAllFrames(t *testing.T) {
	const period = 1.0 / 450
	p := NewPlayer(8*period, period, Accelerated)

	var frames []Frame
	p.AddListener(func(f Frame) { frames = append(frames, f) })

	done, err := p.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-done

	if len(frames) != 8 {
		t.Fatalf("expected 8 frames, got %d", len(frames))
	}
	for i, f := range frames {
		if f.Index != i {
			t.Fatalf("frame %d has index %d", i, f.Index)
		}
	}
	if frames[0].Flux <= frames[len(frames)-1].Flux {
		t.Fatalf("flux must fall across the replay: %v … %v",
			frames[0].Flux, frames[len(frames)-1].Flux)
	}
	if got := p.Current(); got.Index != 7 {
		t.Fatalf("Current() should be the last frame, got %+v", got)
	}
}

func TestPlayerNoFramesInPhase(t *testing.T) {
	// Partial phase shorter than half a frame: nothing to replay.
	p := NewPlayer(0.0005, 1.0/450, Accelerated)
	called := false
	p.AddListener(func(Frame) { called = true })

	done, err := p.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-done
	if called {
		t.Fatalf("no listener calls expected for an unsampleable phase")
	}
}

func TestPlayerRejectsBadTiming(t *testing.T) {
	p := NewPlayer(1, 0, Accelerated)
	if _, err := p.Start(); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
