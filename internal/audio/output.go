package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/jscyril/movix/api"
	playerrors "github.com/jscyril/movix/pkg/errors"
)

// device is the sound card behind an Output
type device interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Close()
}

// speakerDevice drives the process-wide beep speaker
type speakerDevice struct{}

func (speakerDevice) Init(sampleRate beep.SampleRate, bufferSize int) error {
	return speaker.Init(sampleRate, bufferSize)
}

func (speakerDevice) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerDevice) Lock()                { speaker.Lock() }
func (speakerDevice) Unlock()              { speaker.Unlock() }
func (speakerDevice) Close()               { speaker.Close() }

// Output is the session audio context. It mixes everything played through
// it into the speaker. The speaker is opened on the first Resume; until
// then, and while suspended, the output produces silence.
type Output struct {
	mu          sync.Mutex
	dev         device
	sampleRate  beep.SampleRate
	bufferSize  time.Duration
	initialized bool
	state       atomic.Int32
	mixer       beep.Mixer
}

var _ api.AudioContext = (*Output)(nil)

// NewOutput creates a suspended output at sampleRate
func NewOutput(sampleRate beep.SampleRate, bufferSize time.Duration) *Output {
	return newOutput(speakerDevice{}, sampleRate, bufferSize)
}

func newOutput(dev device, sampleRate beep.SampleRate, bufferSize time.Duration) *Output {
	o := &Output{dev: dev, sampleRate: sampleRate, bufferSize: bufferSize}
	o.state.Store(int32(api.ContextSuspended))
	return o
}

// SampleRate returns the output sample rate in Hz
func (o *Output) SampleRate() int {
	return int(o.sampleRate)
}

// State returns the context state
func (o *Output) State() api.ContextState {
	return api.ContextState(o.state.Load())
}

// Resume starts producing sound, opening the speaker on first use
func (o *Output) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.State() == api.ContextClosed {
		return playerrors.ErrContextClosed
	}
	if !o.initialized {
		if err := o.dev.Init(o.sampleRate, o.sampleRate.N(o.bufferSize)); err != nil {
			return err
		}
		o.dev.Play(o)
		o.initialized = true
	}
	o.state.Store(int32(api.ContextRunning))
	return nil
}

// Suspend silences the output without releasing the speaker
func (o *Output) Suspend() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.State() == api.ContextClosed {
		return playerrors.ErrContextClosed
	}
	o.state.Store(int32(api.ContextSuspended))
	return nil
}

// Close drops everything playing and releases the speaker. Closing twice
// is a no-op.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.State() == api.ContextClosed {
		return nil
	}
	o.state.Store(int32(api.ContextClosed))
	if o.initialized {
		o.dev.Lock()
		o.mixer.Clear()
		o.dev.Unlock()
		o.dev.Close()
	}
	return nil
}

// Play adds s to the mix
func (o *Output) Play(s beep.Streamer) {
	o.dev.Lock()
	o.mixer.Add(s)
	o.dev.Unlock()
}

// Clear removes everything from the mix
func (o *Output) Clear() {
	o.dev.Lock()
	o.mixer.Clear()
	o.dev.Unlock()
}

// Lock blocks the audio thread so streamers can be modified safely
func (o *Output) Lock() {
	o.dev.Lock()
}

// Unlock releases the audio thread
func (o *Output) Unlock() {
	o.dev.Unlock()
}

// Stream is called by the speaker with the audio thread locked
func (o *Output) Stream(samples [][2]float64) (int, bool) {
	if o.State() != api.ContextRunning {
		clear(samples)
		return len(samples), true
	}
	return o.mixer.Stream(samples)
}

// Err always returns nil
func (o *Output) Err() error {
	return nil
}
