package audio

import (
	"errors"
	"testing"
	"time"

	"github.com/faiface/beep"

	playerrors "github.com/jscyril/movix/pkg/errors"
)

func TestMediaElementDirect(t *testing.T) {
	el := NewMediaElement(newOutput(&fakeDevice{}, 44100, time.Second/10))
	samples := make([][2]float64, 8)

	if n, ok := el.Stream(samples); n != 0 || ok {
		t.Errorf("empty Stream() = %d, %v, want 0, false", n, ok)
	}

	el.Load(constant(0.5))
	if n, ok := el.Stream(samples); n != len(samples) || !ok || samples[0][0] != 0.5 {
		t.Errorf("Stream() = %d, %v, sample %v, want %d, true, 0.5", n, ok, samples[0], len(samples))
	}
}

func TestMediaElementCapture(t *testing.T) {
	el := NewMediaElement(newOutput(&fakeDevice{}, 44100, time.Second/10))
	el.Load(constant(0.5))

	src, err := el.CaptureSource()
	if err != nil {
		t.Fatalf("CaptureSource() error = %v", err)
	}
	if _, err := el.CaptureSource(); !errors.Is(err, playerrors.ErrSourceCaptured) {
		t.Errorf("second CaptureSource() error = %v, want ErrSourceCaptured", err)
	}
	if !el.Captured() {
		t.Error("Captured() = false")
	}

	// route the output through a half-gain stage fed by the captured source
	half := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := src.Stream(samples)
		for i := range samples[:n] {
			samples[i][0] *= 0.5
			samples[i][1] *= 0.5
		}
		return n, ok
	})
	el.Connect(half)

	samples := make([][2]float64, 4)
	el.Stream(samples)
	if samples[0][0] != 0.25 {
		t.Errorf("routed sample = %v, want 0.25", samples[0][0])
	}

	// tracks loaded later flow through the same route
	el.Load(constant(1))
	el.Stream(samples)
	if samples[0][0] != 0.5 {
		t.Errorf("routed sample after Load = %v, want 0.5", samples[0][0])
	}

	el.Connect(nil)
	el.Stream(samples)
	if samples[0][0] != 1 {
		t.Errorf("direct sample after Connect(nil) = %v, want 1", samples[0][0])
	}
}
