// Package equalizer implements a 10-band parametric equalizer: a preamp
// gain stage followed by a low-shelf, eight peaking and a high-shelf
// biquad filter, bound into the playback signal path of a media element.
package equalizer

import (
	"math"
)

const (
	// BandCount is the number of filter stages in the chain
	BandCount = 10
	// MinGain and MaxGain bound every band and the preamp, in dB
	MinGain = -12.0
	MaxGain = 12.0
	// FilterQ is the quality factor of every stage
	FilterQ = 1.4

	// CustomPreset marks a state whose bands were edited by hand
	CustomPreset = "custom"
	// FlatPreset is the preset of the default state
	FlatPreset = "flat"
)

// Frequencies are the centre frequencies of the bands, in Hz
var Frequencies = [BandCount]float64{32, 64, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

// State is the user-facing equalizer configuration. It is persisted as
// part of the preference snapshot.
type State struct {
	Enabled bool               `json:"enabled"`
	Bands   [BandCount]float64 `json:"bands"`
	Preamp  float64            `json:"preamp"`
	Preset  string             `json:"preset"`
}

// DefaultState returns a disabled, flat equalizer
func DefaultState() State {
	return State{Preset: FlatPreset}
}

// SetPreset replaces bands and preamp with a stock curve. Unknown names
// leave the state untouched and return false.
func (s *State) SetPreset(name string) bool {
	p, ok := LookupPreset(name)
	if !ok {
		return false
	}
	s.Bands = p.Bands
	s.Preamp = p.Preamp
	s.Preset = p.Name
	return true
}

// SetBand sets one band gain, clamped to the allowed range, and marks the
// state as custom. Indexes outside the chain are ignored.
func (s *State) SetBand(index int, gain float64) bool {
	if index < 0 || index >= BandCount {
		return false
	}
	s.Bands[index] = clampGain(gain)
	s.Preset = CustomPreset
	return true
}

// SetPreamp sets the preamp gain, clamped to the allowed range. The
// preset name is kept.
func (s *State) SetPreamp(gain float64) {
	s.Preamp = clampGain(gain)
}

// Reset restores the default state
func (s *State) Reset() {
	*s = DefaultState()
}

// Normalize clamps values loaded from disk and fills a missing preset
func (s *State) Normalize() {
	for i := range s.Bands {
		s.Bands[i] = clampGain(s.Bands[i])
	}
	s.Preamp = clampGain(s.Preamp)
	if s.Preset == "" {
		s.Preset = FlatPreset
	}
}

// PreampGain is the linear gain of the preamp stage. A disabled equalizer
// passes audio at unity.
func (s State) PreampGain() float64 {
	if !s.Enabled {
		return 1
	}
	return DecibelsToGain(s.Preamp)
}

// BandGain is the gain in dB the filter at index should run with
func (s State) BandGain(index int) float64 {
	if !s.Enabled || index < 0 || index >= BandCount {
		return 0
	}
	return s.Bands[index]
}

// DecibelsToGain converts a dB value to a linear amplitude factor
func DecibelsToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

func clampGain(gain float64) float64 {
	if math.IsNaN(gain) {
		return 0
	}
	return math.Max(MinGain, math.Min(MaxGain, gain))
}
