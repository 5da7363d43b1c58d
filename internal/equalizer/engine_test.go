package equalizer

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/faiface/beep"

	"github.com/jscyril/movix/api"
	playerrors "github.com/jscyril/movix/pkg/errors"
	"github.com/jscyril/movix/pkg/events"
)

type fakeContext struct {
	mu      sync.Mutex
	state   api.ContextState
	resumes int
	closes  int
}

func (c *fakeContext) SampleRate() int { return 44100 }

func (c *fakeContext) State() api.ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *fakeContext) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resumes++
	c.state = api.ContextRunning
	return nil
}

func (c *fakeContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	c.state = api.ContextClosed
	return nil
}

type fakeElement struct {
	mu       sync.Mutex
	ctx      *fakeContext
	captured bool
	out      beep.Streamer
	panics   bool
}

func newFakeElement() *fakeElement {
	return &fakeElement{ctx: &fakeContext{state: api.ContextSuspended}}
}

func (e *fakeElement) CaptureSource() (beep.Streamer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.panics {
		panic("capture exploded")
	}
	if e.captured {
		return nil, playerrors.ErrSourceCaptured
	}
	e.captured = true
	return constant(0.5), nil
}

func (e *fakeElement) Connect(out beep.Streamer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.out = out
}

func (e *fakeElement) Context() api.AudioContext { return e.ctx }

func (e *fakeElement) output() beep.Streamer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.out
}

func (e *fakeElement) isCaptured() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.captured
}

// constant streams one value on both channels forever
func constant(v float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{v, v}
		}
		return len(samples), true
	})
}

func TestBind(t *testing.T) {
	el := newFakeElement()
	e := NewEngine(nil, nil)

	g, err := e.Bind(el)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if el.output() != g {
		t.Error("element output not routed through the graph")
	}
	if !e.Bound() {
		t.Error("Bound() = false after Bind")
	}
	if el.ctx.State() != api.ContextRunning || el.ctx.resumes != 1 {
		t.Errorf("context state = %v after %d resumes, want running after 1", el.ctx.State(), el.ctx.resumes)
	}

	again, err := e.Bind(el)
	if err != nil {
		t.Fatalf("second Bind() error = %v", err)
	}
	if again != g {
		t.Error("second Bind() built a new graph, want the existing one")
	}
}

func TestBindSecondEngineUnavailable(t *testing.T) {
	el := newFakeElement()
	if _, err := NewEngine(nil, nil).Bind(el); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	second := NewEngine(nil, nil)
	_, err := second.Bind(el)
	if !errors.Is(err, playerrors.ErrEqualizerUnavailable) {
		t.Errorf("Bind() error = %v, want ErrEqualizerUnavailable", err)
	}
	if !errors.Is(err, playerrors.ErrSourceCaptured) {
		t.Errorf("Bind() error = %v, want it to wrap ErrSourceCaptured", err)
	}
	if second.Bound() {
		t.Error("Bound() = true after failed Bind")
	}
	if !errors.Is(second.Err(), playerrors.ErrEqualizerUnavailable) {
		t.Errorf("Err() = %v, want ErrEqualizerUnavailable", second.Err())
	}

	// stays unavailable for the session
	if _, err := second.Bind(newFakeElement()); !errors.Is(err, playerrors.ErrEqualizerUnavailable) {
		t.Errorf("retry Bind() error = %v, want ErrEqualizerUnavailable", err)
	}

	// mutations still work on the state alone
	second.SetBand(2, 3)
	if got := second.State().Bands[2]; got != 3 {
		t.Errorf("Bands[2] = %v, want 3", got)
	}
}

func TestBindRecoversPanic(t *testing.T) {
	el := newFakeElement()
	el.panics = true

	_, err := NewEngine(nil, nil).Bind(el)
	if !errors.Is(err, playerrors.ErrEqualizerUnavailable) {
		t.Errorf("Bind() error = %v, want ErrEqualizerUnavailable", err)
	}
}

func TestBindClosedContext(t *testing.T) {
	el := newFakeElement()
	el.ctx.state = api.ContextClosed

	_, err := NewEngine(nil, nil).Bind(el)
	if !errors.Is(err, playerrors.ErrContextClosed) {
		t.Errorf("Bind() error = %v, want ErrContextClosed", err)
	}
	if el.isCaptured() {
		t.Error("source captured on a closed context")
	}
}

func TestApplyDrivesGraph(t *testing.T) {
	state := DefaultState()
	state.SetPreset("bass")
	state.Enabled = true

	e := NewEngine(&state, nil)
	g, err := e.Bind(newFakeElement())
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	if got, want := g.Preamp(), DecibelsToGain(-2); math.Abs(got-want) > 1e-12 {
		t.Errorf("Preamp() = %v, want %v", got, want)
	}
	if got := g.BandGain(0); got != 6 {
		t.Errorf("BandGain(0) = %v, want 6", got)
	}

	e.SetEnabled(false)
	if got := g.Preamp(); got != 1 {
		t.Errorf("disabled Preamp() = %v, want 1", got)
	}
	for i := 0; i < BandCount; i++ {
		if got := g.BandGain(i); got != 0 {
			t.Errorf("disabled BandGain(%d) = %v, want 0", i, got)
		}
	}
	if got := e.State().Bands[0]; got != 6 {
		t.Errorf("disabling changed Bands[0] to %v, want 6", got)
	}

	e.SetEnabled(true)
	if got := g.BandGain(0); got != 6 {
		t.Errorf("re-enabled BandGain(0) = %v, want 6", got)
	}

	e.Reset()
	if got := e.State(); got != DefaultState() {
		t.Errorf("State() after Reset = %+v, want default", got)
	}
	if got := g.BandGain(0); got != 0 {
		t.Errorf("BandGain(0) after Reset = %v, want 0", got)
	}
}

func TestGraphStream(t *testing.T) {
	state := DefaultState()
	state.Enabled = true
	state.SetPreamp(-6)

	e := NewEngine(&state, nil)
	g, err := e.Bind(newFakeElement())
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	samples := make([][2]float64, 128)
	n, ok := g.Stream(samples)
	if n != len(samples) || !ok {
		t.Fatalf("Stream() = %d, %v, want %d, true", n, ok, len(samples))
	}

	want := 0.5 * DecibelsToGain(-6)
	for i, s := range samples {
		if math.Abs(s[0]-want) > 1e-12 || math.Abs(s[1]-want) > 1e-12 {
			t.Fatalf("sample %d = %v, want %v", i, s, want)
		}
	}
}

func TestOnChange(t *testing.T) {
	e := NewEngine(nil, nil)

	var got []State
	e.OnChange(func(s State) { got = append(got, s) })

	e.SetPreset("jazz")
	e.SetPreset("unknown")
	e.SetBand(1, 4)
	e.SetBand(42, 4)
	e.SetPreamp(2)
	e.Toggle()

	if len(got) != 4 {
		t.Fatalf("OnChange fired %d times, want 4", len(got))
	}
	if got[0].Preset != "jazz" {
		t.Errorf("first snapshot preset = %q, want jazz", got[0].Preset)
	}
	if got[1].Preset != CustomPreset || got[1].Bands[1] != 4 {
		t.Errorf("second snapshot = %+v, want custom with band 1 at 4", got[1])
	}
	if got[2].Preset != CustomPreset || got[2].Preamp != 2 {
		t.Errorf("third snapshot = %+v, want custom with preamp 2", got[2])
	}
	if !got[3].Enabled {
		t.Error("Toggle() snapshot not enabled")
	}
}

func TestClose(t *testing.T) {
	el := newFakeElement()
	e := NewEngine(nil, nil)
	if _, err := e.Bind(el); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if el.output() != nil {
		t.Error("element still routed through the graph after Close")
	}
	if el.ctx.closes != 1 {
		t.Errorf("context closed %d times, want 1", el.ctx.closes)
	}
	if e.Bound() {
		t.Error("Bound() = true after Close")
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := e.Bind(el); !errors.Is(err, playerrors.ErrContextClosed) {
		t.Errorf("Bind() after Close error = %v, want ErrContextClosed", err)
	}
}

func TestBindOnStart(t *testing.T) {
	bus := events.NewEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := NewEngine(nil, nil)
	e.BindOnStart(ctx, bus)

	// other events do not trigger a bind
	bus.Publish(api.AudioEvent{Type: api.EventTrackStarted})

	first := newFakeElement()
	second := newFakeElement()
	bus.Publish(api.AudioEvent{Type: api.EventPlaybackStarted, Payload: first})

	deadline := time.Now().Add(2 * time.Second)
	for !e.Bound() {
		if time.Now().After(deadline) {
			t.Fatal("engine not bound after playback started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	bus.Publish(api.AudioEvent{Type: api.EventPlaybackStarted, Payload: second})
	time.Sleep(20 * time.Millisecond)

	if !first.isCaptured() {
		t.Error("first element not captured")
	}
	if second.isCaptured() {
		t.Error("second playback start captured another element")
	}
}

func TestBindOnStartCancelled(t *testing.T) {
	bus := events.NewEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	e := NewEngine(nil, nil)
	e.BindOnStart(ctx, bus)
	cancel()
	time.Sleep(20 * time.Millisecond)

	el := newFakeElement()
	bus.Publish(api.AudioEvent{Type: api.EventPlaybackStarted, Payload: el})
	time.Sleep(20 * time.Millisecond)

	if e.Bound() || el.isCaptured() {
		t.Error("engine bound after its context was cancelled")
	}
}
