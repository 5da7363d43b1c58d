package equalizer

import (
	"context"
	"fmt"
	"sync"

	"github.com/faiface/beep"
	"go.uber.org/zap"

	"github.com/jscyril/movix/api"
	playerrors "github.com/jscyril/movix/pkg/errors"
	"github.com/jscyril/movix/pkg/events"
)

// MediaElement is the playback element whose signal the equalizer taps.
// Its source can be captured once; Connect reroutes the element output
// through a streamer, and Connect(nil) restores the direct route.
type MediaElement interface {
	CaptureSource() (beep.Streamer, error)
	Connect(out beep.Streamer)
	Context() api.AudioContext
}

// Engine owns the equalizer state and, once bound, the processing graph
// of one media element.
type Engine struct {
	mu       sync.Mutex
	state    State
	logger   *zap.Logger
	element  MediaElement
	ctx      api.AudioContext
	graph    *Graph
	bindErr  error
	onChange func(State)
}

// NewEngine creates an unbound engine starting from state. A nil state
// starts from the defaults.
func NewEngine(state *State, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{state: DefaultState(), logger: logger}
	if state != nil {
		e.state = *state
		e.state.Normalize()
	}
	return e
}

// OnChange registers a hook called with a snapshot after every state
// mutation, used to persist preferences.
func (e *Engine) OnChange(fn func(State)) {
	e.mu.Lock()
	e.onChange = fn
	e.mu.Unlock()
}

// State returns a copy of the current state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Bound reports whether a graph is attached to an element
func (e *Engine) Bound() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph != nil
}

// Err returns why the engine is unavailable, or nil while it can still
// bind or is bound
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bindErr
}

// Graph returns the bound graph, or nil
func (e *Engine) Graph() *Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph
}

// Bind captures the element source and routes it through a new graph.
// Binding the element already bound returns the existing graph. Any
// failure, including a panic from the element, leaves the engine
// unavailable for the rest of the session and returns an error wrapping
// ErrEqualizerUnavailable. Playback itself is unaffected.
func (e *Engine) Bind(element MediaElement) (g *Graph, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.graph != nil && e.element == element {
		return e.graph, nil
	}
	if e.bindErr != nil {
		return nil, e.bindErr
	}

	defer func() {
		if r := recover(); r != nil {
			g, err = nil, e.fail(fmt.Errorf("panic: %v", r))
		}
	}()

	if element == nil {
		return nil, e.fail(fmt.Errorf("no media element"))
	}
	ctx := element.Context()
	if ctx == nil {
		return nil, e.fail(fmt.Errorf("no audio context"))
	}
	if ctx.State() == api.ContextClosed {
		return nil, e.fail(playerrors.ErrContextClosed)
	}

	source, err := element.CaptureSource()
	if err != nil {
		return nil, e.fail(err)
	}

	graph := newGraph(source, float64(ctx.SampleRate()))
	element.Connect(graph)

	e.element = element
	e.ctx = ctx
	e.graph = graph
	e.applyLocked()

	e.logger.Info("equalizer bound",
		zap.Int("sample_rate", ctx.SampleRate()),
		zap.Bool("enabled", e.state.Enabled),
		zap.String("preset", e.state.Preset))
	return graph, nil
}

func (e *Engine) fail(cause error) error {
	e.bindErr = fmt.Errorf("%w: %w", playerrors.ErrEqualizerUnavailable, cause)
	e.logger.Warn("equalizer unavailable", zap.Error(cause))
	return e.bindErr
}

// BindOnStart defers binding until the first playback-started event on
// bus, whose payload is the media element. The subscription is dropped
// after the first event or when ctx is cancelled.
func (e *Engine) BindOnStart(ctx context.Context, bus *events.EventBus) {
	sub := bus.Subscribe(api.EventPlaybackStarted)
	go func() {
		defer bus.Unsubscribe(sub)

		select {
		case <-ctx.Done():
		case ev, ok := <-sub:
			if !ok {
				return
			}
			element, ok := ev.Payload.(MediaElement)
			if !ok {
				e.logger.Warn("playback started without a media element",
					zap.String("payload", fmt.Sprintf("%T", ev.Payload)))
				return
			}
			// failures are logged by Bind
			_, _ = e.Bind(element)
		}
	}()
}

// Apply pushes the current state into the graph. A suspended context is
// resumed first. Without a graph this is a no-op.
func (e *Engine) Apply() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyLocked()
}

func (e *Engine) applyLocked() {
	if e.graph == nil {
		return
	}
	if e.ctx.State() == api.ContextSuspended {
		if err := e.ctx.Resume(); err != nil {
			e.logger.Warn("resume audio context", zap.Error(err))
		}
	}

	e.graph.SetPreamp(e.state.PreampGain())
	for i := range e.state.Bands {
		e.graph.SetBandGain(i, e.state.BandGain(i))
	}
}

// update mutates the state, applies it and fires the change hook
func (e *Engine) update(mutate func(*State) bool) bool {
	e.mu.Lock()
	if !mutate(&e.state) {
		e.mu.Unlock()
		return false
	}
	e.applyLocked()
	snapshot := e.state
	hook := e.onChange
	e.mu.Unlock()

	if hook != nil {
		hook(snapshot)
	}
	return true
}

// SetEnabled turns processing on or off. Disabling keeps the band values.
func (e *Engine) SetEnabled(enabled bool) {
	e.update(func(s *State) bool {
		s.Enabled = enabled
		return true
	})
}

// Toggle flips the enabled flag and returns the new value
func (e *Engine) Toggle() bool {
	var enabled bool
	e.update(func(s *State) bool {
		s.Enabled = !s.Enabled
		enabled = s.Enabled
		return true
	})
	return enabled
}

// SetPreset loads a stock curve. Unknown names are ignored.
func (e *Engine) SetPreset(name string) bool {
	return e.update(func(s *State) bool {
		return s.SetPreset(name)
	})
}

// SetBand sets one band gain and marks the state custom
func (e *Engine) SetBand(index int, gain float64) bool {
	return e.update(func(s *State) bool {
		return s.SetBand(index, gain)
	})
}

// SetPreamp sets the preamp gain
func (e *Engine) SetPreamp(gain float64) {
	e.update(func(s *State) bool {
		s.SetPreamp(gain)
		return true
	})
}

// Reset restores the default state
func (e *Engine) Reset() {
	e.update(func(s *State) bool {
		s.Reset()
		return true
	})
}

// Close disconnects the graph, restoring the element's direct output,
// and closes the audio context. The engine cannot be bound again.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.bindErr == nil {
		e.bindErr = fmt.Errorf("%w: %w", playerrors.ErrEqualizerUnavailable, playerrors.ErrContextClosed)
	}
	if e.graph == nil {
		return nil
	}

	e.element.Connect(nil)
	e.graph.close()
	e.graph = nil
	e.element = nil

	ctx := e.ctx
	e.ctx = nil
	if err := ctx.Close(); err != nil {
		return fmt.Errorf("close audio context: %w", err)
	}
	return nil
}
