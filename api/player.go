package api

import "time"

// PlaybackStatus is the transport state of the player
type PlaybackStatus int

const (
	StatusStopped PlaybackStatus = iota
	StatusPlaying
	StatusPaused
)

func (s PlaybackStatus) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "stopped"
	}
}

// RepeatMode controls what happens at the end of the queue
type RepeatMode int

const (
	RepeatNone RepeatMode = iota
	RepeatOne
	RepeatAll
)

// PlaybackState is a snapshot of the player
type PlaybackState struct {
	Status       PlaybackStatus
	CurrentTrack *Track
	Position     time.Duration
	Volume       float64
	Muted        bool
	Rate         float64
	Repeat       RepeatMode
	Shuffle      bool
}

// CommandType identifies a command sent to the audio goroutine
type CommandType int

const (
	CmdPlay CommandType = iota
	CmdPause
	CmdResume
	CmdStop
	CmdSeek
	CmdVolume
	CmdMute
	CmdRate
)

// AudioCommand is a request processed by the audio goroutine
type AudioCommand struct {
	Type    CommandType
	Payload any
}

// EventType identifies an event published by the audio engine
type EventType int

const (
	EventTrackStarted EventType = iota
	EventTrackEnded
	EventPositionUpdate
	EventError
	EventStateChange
	// EventPlaybackStarted fires whenever the user starts or resumes
	// playback. Its payload is the session media element.
	EventPlaybackStarted
)

// AllEvents lists every event type, in declaration order
var AllEvents = []EventType{
	EventTrackStarted,
	EventTrackEnded,
	EventPositionUpdate,
	EventError,
	EventStateChange,
	EventPlaybackStarted,
}

// AudioEvent is published by the audio engine
type AudioEvent struct {
	Type    EventType
	Payload any
}

// ContextState is the state of an audio processing context
type ContextState int

const (
	ContextSuspended ContextState = iota
	ContextRunning
	ContextClosed
)

func (s ContextState) String() string {
	switch s {
	case ContextRunning:
		return "running"
	case ContextClosed:
		return "closed"
	default:
		return "suspended"
	}
}

// Player is the transport interface implemented by the audio engine
type Player interface {
	Play(track *Track) error
	Pause() error
	Resume() error
	Stop() error
	Seek(position time.Duration) error
	SetVolume(level float64) error
	SetRate(rate float64) error
	ToggleMute() error
	GetState() *PlaybackState
}

// AudioContext is the processing context an audio graph runs in. It may
// start suspended and must be resumed before it produces sound.
type AudioContext interface {
	SampleRate() int
	State() ContextState
	Resume() error
	Close() error
}
