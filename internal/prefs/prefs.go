// Package prefs persists the user's player preferences between sessions.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/jscyril/movix/api"
	"github.com/jscyril/movix/internal/equalizer"
)

// Settings are the options of the settings screen
type Settings struct {
	AutoPlay         bool `json:"autoPlay"`
	RememberPosition bool `json:"rememberPosition"`
	ShowOSD          bool `json:"showOSD"`
	// SeekSeconds is the step of the seek keys
	SeekSeconds int `json:"seekDuration"`
	// VolumeStep is the step of the volume keys, in percent
	VolumeStep int `json:"volumeStep"`
}

// Prefs is the persisted snapshot
type Prefs struct {
	Volume          float64         `json:"volume"`
	Muted           bool            `json:"muted"`
	PlaybackRate    float64         `json:"playbackRate"`
	Repeat          api.RepeatMode  `json:"repeat"`
	Shuffle         bool            `json:"shuffle"`
	SubtitleDelayMs int64           `json:"subtitleDelayMs"`
	Equalizer       equalizer.State `json:"equalizer"`
	Settings        Settings        `json:"settings"`
}

// Default returns the preferences of a first run
func Default() Prefs {
	return Prefs{
		Volume:       1,
		PlaybackRate: 1,
		Repeat:       api.RepeatNone,
		Equalizer:    equalizer.DefaultState(),
		Settings:     DefaultSettings(),
	}
}

// DefaultSettings returns the stock settings
func DefaultSettings() Settings {
	return Settings{
		AutoPlay:         true,
		RememberPosition: true,
		ShowOSD:          true,
		SeekSeconds:      10,
		VolumeStep:       5,
	}
}

// SubtitleDelay returns the subtitle offset
func (p Prefs) SubtitleDelay() time.Duration {
	return time.Duration(p.SubtitleDelayMs) * time.Millisecond
}

// SeekStep returns the seek key step
func (p Prefs) SeekStep() time.Duration {
	return time.Duration(p.Settings.SeekSeconds) * time.Second
}

// normalize repairs values from an older or hand-edited file
func (p *Prefs) normalize() {
	defaults := DefaultSettings()
	if p.Volume < 0 || p.Volume > 1 {
		p.Volume = 1
	}
	if p.PlaybackRate < 0.25 || p.PlaybackRate > 4 {
		p.PlaybackRate = 1
	}
	if p.Repeat < api.RepeatNone || p.Repeat > api.RepeatAll {
		p.Repeat = api.RepeatNone
	}
	if p.Settings.SeekSeconds <= 0 {
		p.Settings.SeekSeconds = defaults.SeekSeconds
	}
	if p.Settings.VolumeStep <= 0 || p.Settings.VolumeStep > 100 {
		p.Settings.VolumeStep = defaults.VolumeStep
	}
	p.Equalizer.Normalize()
}

// Store reads and writes the snapshot file. A sidecar lock file keeps two
// running players from interleaving writes.
type Store struct {
	path string
	lock *flock.Flock
}

// NewStore creates a store for the snapshot at path
func NewStore(path string) *Store {
	return &Store{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the snapshot location
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a snapshot was saved before
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the snapshot. A missing file yields the defaults; fields
// absent from the file keep their default values.
func (s *Store) Load() (Prefs, error) {
	p := Default()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return p, fmt.Errorf("failed to create prefs directory: %w", err)
	}
	if err := s.lock.RLock(); err != nil {
		return p, fmt.Errorf("lock prefs: %w", err)
	}
	defer s.lock.Unlock() //nolint:errcheck

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, fmt.Errorf("failed to read prefs: %w", err)
	}

	if err := json.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("failed to unmarshal prefs: %w", err)
	}
	p.normalize()
	return p, nil
}

// Save writes the snapshot atomically
func (s *Store) Save(p Prefs) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create prefs directory: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock prefs: %w", err)
	}
	defer s.lock.Unlock() //nolint:errcheck

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace prefs: %w", err)
	}
	return nil
}
