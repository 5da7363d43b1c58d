package prefs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jscyril/movix/api"
	"github.com/jscyril/movix/internal/equalizer"
)

func TestLoadMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "prefs.json"))

	if store.Exists() {
		t.Error("Exists() = true before any save")
	}
	p, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p != Default() {
		t.Errorf("Load() = %+v, want defaults", p)
	}
}

func TestRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "prefs.json"))

	want := Default()
	want.Volume = 0.4
	want.Muted = true
	want.PlaybackRate = 1.5
	want.Repeat = api.RepeatAll
	want.Shuffle = true
	want.SubtitleDelayMs = -350
	want.Equalizer.Enabled = true
	want.Equalizer.SetPreset("rock")
	want.Equalizer.SetBand(4, 7)
	want.Settings.SeekSeconds = 5

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !store.Exists() {
		t.Error("Exists() = false after save")
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
	if got.Equalizer.Preset != equalizer.CustomPreset {
		t.Errorf("Equalizer.Preset = %q, want custom", got.Equalizer.Preset)
	}
	if got.SubtitleDelay() != -350*time.Millisecond {
		t.Errorf("SubtitleDelay() = %v, want -350ms", got.SubtitleDelay())
	}
	if got.SeekStep() != 5*time.Second {
		t.Errorf("SeekStep() = %v, want 5s", got.SeekStep())
	}
}

func TestLoadRepairsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	content := `{
  "volume": 3,
  "playbackRate": 0,
  "repeat": 9,
  "equalizer": {"enabled": true, "bands": [40, 0, 0, 0, 0, 0, 0, 0, 0, -40], "preamp": 1},
  "settings": {"autoPlay": false}
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if p.Volume != 1 || p.PlaybackRate != 1 || p.Repeat != api.RepeatNone {
		t.Errorf("volume/rate/repeat = %v/%v/%v, want 1/1/none", p.Volume, p.PlaybackRate, p.Repeat)
	}
	if p.Equalizer.Bands[0] != equalizer.MaxGain || p.Equalizer.Bands[9] != equalizer.MinGain {
		t.Errorf("Equalizer.Bands = %v, want clamped", p.Equalizer.Bands)
	}
	if p.Equalizer.Preset != equalizer.FlatPreset {
		t.Errorf("Equalizer.Preset = %q, want flat", p.Equalizer.Preset)
	}
	if p.Settings.AutoPlay {
		t.Error("Settings.AutoPlay = true, want false from file")
	}
	if p.Settings.SeekSeconds != 10 || p.Settings.VolumeStep != 5 {
		t.Errorf("Settings = %+v, want default steps", p.Settings)
	}
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := NewStore(path).Load()
	if err == nil {
		t.Fatal("Load() error = nil, want unmarshal error")
	}
	if p != Default() {
		t.Errorf("Load() = %+v, want defaults alongside the error", p)
	}
}
