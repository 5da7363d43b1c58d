package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"go.uber.org/zap"

	"github.com/jscyril/movix/api"
	playerrors "github.com/jscyril/movix/pkg/errors"
	"github.com/jscyril/movix/pkg/events"
)

// Ensure AudioEngine implements Player interface at compile time
var _ api.Player = (*AudioEngine)(nil)

const (
	MinRate = 0.25
	MaxRate = 4.0
)

// Options tunes the audio engine
type Options struct {
	SampleRate      beep.SampleRate
	BufferSize      time.Duration
	ResampleQuality int
	TickInterval    time.Duration
}

// DefaultOptions returns CD-rate output with a 100ms buffer
func DefaultOptions() Options {
	return Options{
		SampleRate:      44100,
		BufferSize:      100 * time.Millisecond,
		ResampleQuality: 4,
		TickInterval:    200 * time.Millisecond,
	}
}

// AudioEngine manages audio playback in a separate goroutine
type AudioEngine struct {
	state    *api.PlaybackState
	commands chan api.AudioCommand
	bus      *events.EventBus
	logger   *zap.Logger
	opts     Options

	output  *Output
	element *MediaElement
	done    chan struct{}

	mu         sync.RWMutex
	streamer   beep.StreamSeekCloser
	resampler  *beep.Resampler
	ctrl       *beep.Ctrl
	volume     *effects.Volume
	format     beep.Format
	sampleRate beep.SampleRate
}

// NewAudioEngine creates a new audio engine instance. Events are
// published on bus.
func NewAudioEngine(bus *events.EventBus, logger *zap.Logger, opts Options) *AudioEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultOptions()
	if opts.SampleRate <= 0 {
		opts.SampleRate = defaults.SampleRate
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaults.BufferSize
	}
	if opts.ResampleQuality < 1 || opts.ResampleQuality > 64 {
		opts.ResampleQuality = defaults.ResampleQuality
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaults.TickInterval
	}

	output := NewOutput(opts.SampleRate, opts.BufferSize)
	return &AudioEngine{
		state: &api.PlaybackState{
			Status: api.StatusStopped,
			Volume: 0.5,
			Rate:   1,
			Repeat: api.RepeatNone,
		},
		commands: make(chan api.AudioCommand, 10),
		bus:      bus,
		logger:   logger,
		opts:     opts,
		output:   output,
		element:  NewMediaElement(output),
		done:     make(chan struct{}),
	}
}

// Start begins the audio engine goroutines. They stop when ctx is
// cancelled; Wait blocks until the output has been released.
func (e *AudioEngine) Start(ctx context.Context) {
	go func() {
		defer close(e.done)
		e.run(ctx)
	}()
	go e.trackPosition(ctx)
}

// Wait blocks until the engine started by Start has shut down and closed
// its output
func (e *AudioEngine) Wait() {
	<-e.done
}

// Element returns the session media element
func (e *AudioEngine) Element() *MediaElement {
	return e.element
}

// Output returns the session audio context
func (e *AudioEngine) Output() *Output {
	return e.output
}

func (e *AudioEngine) publish(t api.EventType, payload any) {
	e.bus.Publish(api.AudioEvent{Type: t, Payload: payload})
}

// run is the main command processing loop
func (e *AudioEngine) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.cleanup()
			return

		case cmd := <-e.commands:
			switch cmd.Type {
			case api.CmdPlay:
				track := cmd.Payload.(*api.Track)
				if err := e.playTrack(track); err != nil {
					e.logger.Error("play track", zap.String("path", track.FilePath), zap.Error(err))
					e.publish(api.EventError, err)
				}

			case api.CmdPause:
				e.mu.Lock()
				if e.ctrl != nil {
					e.output.Lock()
					e.ctrl.Paused = true
					e.output.Unlock()
					e.state.Status = api.StatusPaused
				}
				e.mu.Unlock()
				e.publish(api.EventStateChange, e.GetState())

			case api.CmdResume:
				e.mu.Lock()
				resumed := false
				if e.ctrl != nil {
					e.output.Lock()
					e.ctrl.Paused = false
					e.output.Unlock()
					e.state.Status = api.StatusPlaying
					resumed = true
				}
				e.mu.Unlock()
				if resumed {
					if err := e.output.Resume(); err != nil {
						e.logger.Warn("resume output", zap.Error(err))
					}
					e.publish(api.EventPlaybackStarted, e.element)
				}
				e.publish(api.EventStateChange, e.GetState())

			case api.CmdStop:
				e.stopPlayback()
				e.publish(api.EventStateChange, e.GetState())

			case api.CmdVolume:
				level := cmd.Payload.(float64)
				e.mu.Lock()
				e.state.Volume = level
				e.applyVolume()
				e.mu.Unlock()
				e.publish(api.EventStateChange, e.GetState())

			case api.CmdMute:
				e.mu.Lock()
				e.state.Muted = !e.state.Muted
				e.applyVolume()
				e.mu.Unlock()
				e.publish(api.EventStateChange, e.GetState())

			case api.CmdRate:
				rate := cmd.Payload.(float64)
				e.mu.Lock()
				e.state.Rate = rate
				if e.resampler != nil {
					e.output.Lock()
					e.resampler.SetRatio(e.ratio())
					e.output.Unlock()
				}
				e.mu.Unlock()
				e.publish(api.EventStateChange, e.GetState())

			case api.CmdSeek:
				pos := cmd.Payload.(time.Duration)
				e.seekTo(pos)
			}
		}
	}
}

// trackPosition updates playback position periodically
func (e *AudioEngine) trackPosition(ctx context.Context) {
	ticker := time.NewTicker(e.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.mu.Lock()
			if e.state.Status == api.StatusPlaying && e.streamer != nil {
				e.output.Lock()
				pos := e.streamer.Position()
				e.output.Unlock()
				e.state.Position = e.sampleRate.D(pos)
				position := e.state.Position
				e.mu.Unlock()
				e.publish(api.EventPositionUpdate, position)
				continue
			}
			e.mu.Unlock()
		}
	}
}

// ratio is the resampling ratio for the current track and rate. Callers
// hold e.mu.
func (e *AudioEngine) ratio() float64 {
	return float64(e.sampleRate) / float64(e.opts.SampleRate) * e.state.Rate
}

// applyVolume maps the 0-1 level onto the volume effect. Callers hold
// e.mu.
func (e *AudioEngine) applyVolume() {
	if e.volume == nil {
		return
	}
	e.output.Lock()
	// Convert 0-1 range to decibel-like scale
	e.volume.Volume = e.state.Volume*2 - 1
	e.volume.Silent = e.state.Muted || e.state.Volume == 0
	e.output.Unlock()
}

// playTrack loads and starts playing a track
func (e *AudioEngine) playTrack(track *api.Track) error {
	e.stopPlayback()

	streamer, format, err := OpenFile(track.FilePath)
	if err != nil {
		return err
	}

	// the speaker opens on the first user-initiated playback
	if err := e.output.Resume(); err != nil {
		streamer.Close()
		return playerrors.NewPlayerError("speaker_init", track.ID, err)
	}

	current := *track
	if current.Duration == 0 {
		current.Duration = format.SampleRate.D(streamer.Len())
	}

	e.mu.Lock()
	e.streamer = streamer
	e.format = format
	e.sampleRate = format.SampleRate
	e.resampler = beep.ResampleRatio(e.opts.ResampleQuality, e.ratio(), streamer)
	e.ctrl = &beep.Ctrl{Streamer: e.resampler, Paused: false}
	e.element.Load(e.ctrl)
	e.volume = &effects.Volume{Streamer: e.element, Base: 2}
	e.applyVolume()
	e.state.CurrentTrack = &current
	e.state.Status = api.StatusPlaying
	e.state.Position = 0
	e.mu.Unlock()

	e.output.Play(beep.Seq(e.volume, beep.Callback(func() {
		if err := streamer.Err(); err != nil {
			e.publish(api.EventError, playerrors.NewPlayerError("play", current.FilePath,
				fmt.Errorf("%w: %v", playerrors.ErrPlaybackFailed, err)))
		}
		e.publish(api.EventTrackEnded, &current)
	})))

	e.logger.Info("playing",
		zap.String("path", current.FilePath),
		zap.Int("sample_rate", int(format.SampleRate)),
		zap.Duration("duration", current.Duration))
	e.publish(api.EventTrackStarted, &current)
	e.publish(api.EventPlaybackStarted, e.element)
	return nil
}

// stopPlayback stops the current playback
func (e *AudioEngine) stopPlayback() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.output.Clear()
	e.element.Load(nil)
	if e.streamer != nil {
		e.streamer.Close()
		e.streamer = nil
	}
	e.resampler = nil
	e.ctrl = nil
	e.volume = nil
	e.state.Status = api.StatusStopped
	e.state.Position = 0
}

// seekTo seeks to a specific position
func (e *AudioEngine) seekTo(pos time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return
	}

	n := e.sampleRate.N(pos)
	if n < 0 {
		n = 0
	}
	if length := e.streamer.Len(); n >= length {
		n = length - 1
	}

	e.output.Lock()
	err := e.streamer.Seek(n)
	e.output.Unlock()
	if err != nil {
		e.logger.Warn("seek", zap.Duration("position", pos), zap.Error(err))
		return
	}
	e.state.Position = e.sampleRate.D(n)
}

// cleanup releases resources
func (e *AudioEngine) cleanup() {
	e.stopPlayback()
	if err := e.output.Close(); err != nil {
		e.logger.Warn("close output", zap.Error(err))
	}
}

// Play starts playing the specified track
func (e *AudioEngine) Play(track *api.Track) error {
	if track == nil {
		return playerrors.ErrTrackNotFound
	}
	e.commands <- api.AudioCommand{Type: api.CmdPlay, Payload: track}
	return nil
}

// Pause pauses playback
func (e *AudioEngine) Pause() error {
	e.commands <- api.AudioCommand{Type: api.CmdPause}
	return nil
}

// Resume resumes playback
func (e *AudioEngine) Resume() error {
	e.commands <- api.AudioCommand{Type: api.CmdResume}
	return nil
}

// Stop stops playback
func (e *AudioEngine) Stop() error {
	e.commands <- api.AudioCommand{Type: api.CmdStop}
	return nil
}

// Seek seeks to the specified position
func (e *AudioEngine) Seek(position time.Duration) error {
	e.commands <- api.AudioCommand{Type: api.CmdSeek, Payload: position}
	return nil
}

// SetVolume sets the volume level (0.0 to 1.0)
func (e *AudioEngine) SetVolume(level float64) error {
	if level < 0 || level > 1 {
		return playerrors.ErrInvalidVolume
	}
	e.commands <- api.AudioCommand{Type: api.CmdVolume, Payload: level}
	return nil
}

// SetRate sets the playback rate (0.25 to 4.0)
func (e *AudioEngine) SetRate(rate float64) error {
	if rate < MinRate || rate > MaxRate {
		return playerrors.ErrInvalidRate
	}
	e.commands <- api.AudioCommand{Type: api.CmdRate, Payload: rate}
	return nil
}

// ToggleMute mutes or unmutes without touching the volume level
func (e *AudioEngine) ToggleMute() error {
	e.commands <- api.AudioCommand{Type: api.CmdMute}
	return nil
}

// GetState returns a copy of the current playback state
func (e *AudioEngine) GetState() *api.PlaybackState {
	e.mu.RLock()
	defer e.mu.RUnlock()

	// Return a copy to prevent external modification
	state := *e.state
	if e.state.CurrentTrack != nil {
		track := *e.state.CurrentTrack
		state.CurrentTrack = &track
	}
	return &state
}
