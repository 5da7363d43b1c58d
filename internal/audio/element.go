package audio

import (
	"sync"

	"github.com/faiface/beep"

	"github.com/jscyril/movix/api"
	playerrors "github.com/jscyril/movix/pkg/errors"
)

// MediaElement is the session's playback element. It outlives individual
// tracks: Load swaps the current track in. Its signal can be captured once
// by a processing graph, and its output rerouted through that graph.
type MediaElement struct {
	output *Output

	mu       sync.Mutex
	input    beep.Streamer
	route    beep.Streamer
	captured bool
}

// NewMediaElement creates an empty element playing into output
func NewMediaElement(output *Output) *MediaElement {
	return &MediaElement{output: output}
}

// Load replaces the current input. nil unloads.
func (m *MediaElement) Load(s beep.Streamer) {
	m.mu.Lock()
	m.input = s
	m.mu.Unlock()
}

// Context returns the audio context the element plays into
func (m *MediaElement) Context() api.AudioContext {
	return m.output
}

// CaptureSource hands the element's signal to a single consumer. Once
// captured, the element only produces sound through its route.
func (m *MediaElement) CaptureSource() (beep.Streamer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.captured {
		return nil, playerrors.ErrSourceCaptured
	}
	m.captured = true
	return elementSource{m}, nil
}

// Captured reports whether the source was handed out
func (m *MediaElement) Captured() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.captured
}

// Connect routes the element output through out. Connect(nil) restores
// the direct route.
func (m *MediaElement) Connect(out beep.Streamer) {
	m.mu.Lock()
	m.route = out
	m.mu.Unlock()
}

// Stream produces the element output
func (m *MediaElement) Stream(samples [][2]float64) (int, bool) {
	m.mu.Lock()
	route := m.route
	m.mu.Unlock()

	if route != nil {
		return route.Stream(samples)
	}
	return m.streamInput(samples)
}

func (m *MediaElement) streamInput(samples [][2]float64) (int, bool) {
	m.mu.Lock()
	input := m.input
	m.mu.Unlock()

	if input == nil {
		return 0, false
	}
	return input.Stream(samples)
}

// Err returns the input error
func (m *MediaElement) Err() error {
	m.mu.Lock()
	input := m.input
	m.mu.Unlock()

	if input == nil {
		return nil
	}
	return input.Err()
}

// elementSource is the captured signal of an element
type elementSource struct {
	m *MediaElement
}

func (s elementSource) Stream(samples [][2]float64) (int, bool) {
	return s.m.streamInput(samples)
}

func (s elementSource) Err() error {
	return s.m.Err()
}
