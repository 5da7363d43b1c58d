package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables that override the config file
const (
	EnvConfigPath = "MOVIX_CONFIG"
	EnvDataDir    = "MOVIX_DATA_DIR"
	EnvLogLevel   = "MOVIX_LOG_LEVEL"
)

// Config holds application configuration
type Config struct {
	MusicDirectories []string    `toml:"music_directories"`
	DefaultVolume    float64     `toml:"default_volume"`
	Theme            string      `toml:"theme"`
	DataDir          string      `toml:"data_dir"`
	LogLevel         string      `toml:"log_level"`
	ScanWorkers      int         `toml:"scan_workers"`
	Audio            AudioConfig `toml:"audio"`
	KeyBindings      KeyMap      `toml:"key_bindings"`
}

// AudioConfig tunes the output device
type AudioConfig struct {
	SampleRate      int `toml:"sample_rate"`
	BufferMillis    int `toml:"buffer_ms"`
	ResampleQuality int `toml:"resample_quality"`
}

// KeyMap defines keyboard shortcuts
type KeyMap struct {
	PlayPause         string `toml:"play_pause"`
	Stop              string `toml:"stop"`
	Next              string `toml:"next"`
	Previous          string `toml:"previous"`
	VolumeUp          string `toml:"volume_up"`
	VolumeDown        string `toml:"volume_down"`
	Mute              string `toml:"mute"`
	SeekForward       string `toml:"seek_forward"`
	SeekBack          string `toml:"seek_back"`
	RateUp            string `toml:"rate_up"`
	RateDown          string `toml:"rate_down"`
	Repeat            string `toml:"repeat"`
	Shuffle           string `toml:"shuffle"`
	SubtitleDelayUp   string `toml:"subtitle_delay_up"`
	SubtitleDelayDown string `toml:"subtitle_delay_down"`
	ClearSubtitles    string `toml:"clear_subtitles"`
	ABLoop            string `toml:"ab_loop"`
	SleepTimer        string `toml:"sleep_timer"`
	AddMarker         string `toml:"add_marker"`
	RemoveMarker      string `toml:"remove_marker"`
	NextMarker        string `toml:"next_marker"`
	PrevMarker        string `toml:"prev_marker"`
	Quit              string `toml:"quit"`
	Search            string `toml:"search"`
	Library           string `toml:"library"`
	Playlist          string `toml:"playlist"`
	Equalizer         string `toml:"equalizer"`
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *Config {
	return &Config{
		MusicDirectories: []string{},
		DefaultVolume:    0.5,
		Theme:            "dark",
		DataDir:          DefaultDataDir(),
		LogLevel:         "info",
		ScanWorkers:      4,
		Audio: AudioConfig{
			SampleRate:      44100,
			BufferMillis:    100,
			ResampleQuality: 4,
		},
		KeyBindings: KeyMap{
			PlayPause:         " ",
			Stop:              "s",
			Next:              "n",
			Previous:          "p",
			VolumeUp:          "+",
			VolumeDown:        "-",
			Mute:              "m",
			SeekForward:       "right",
			SeekBack:          "left",
			RateUp:            "]",
			RateDown:          "[",
			Repeat:            "r",
			Shuffle:           "z",
			SubtitleDelayUp:   "h",
			SubtitleDelayDown: "g",
			ClearSubtitles:    "x",
			ABLoop:            "b",
			SleepTimer:        "T",
			AddMarker:         "M",
			RemoveMarker:      "X",
			NextMarker:        ".",
			PrevMarker:        ",",
			Quit:              "q",
			Search:            "/",
			Library:           "l",
			Playlist:          "P",
			Equalizer:         "e",
		},
	}
}

// LoadConfig reads configuration from a TOML file on top of the defaults,
// then applies environment overrides. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.applyEnv()
	if err := config.normalize(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig marshals and saves configuration to file
func SaveConfig(config *Config, path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrCreate loads config from path or creates default if not exists
func LoadOrCreate(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Save default config if file didn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveConfig(config, path); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	return config, nil
}

// LoadEnv reads KEY=value pairs from .env files into the environment.
// Variables already set win, and missing files are skipped.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	// Check environment variable first
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}

	// Use XDG config directory if available
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "movix", "config.toml")
	}

	// Fall back to home directory
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.toml"
	}

	return filepath.Join(home, ".config", "movix", "config.toml")
}

// DefaultDataDir returns where history, preferences, playlists and logs live
func DefaultDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "movix")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".local", "share", "movix")
}

func (c *Config) applyEnv() {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		c.DataDir = dir
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
}

func (c *Config) normalize() error {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	dataDir, err := expandHome(c.DataDir)
	if err != nil {
		return err
	}
	c.DataDir = dataDir

	for i, dir := range c.MusicDirectories {
		expanded, err := expandHome(dir)
		if err != nil {
			return err
		}
		c.MusicDirectories[i] = expanded
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	return nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.DefaultVolume < 0 || c.DefaultVolume > 1 {
		return fmt.Errorf("default_volume must be between 0.0 and 1.0, got %v", c.DefaultVolume)
	}
	if c.ScanWorkers < 1 {
		return fmt.Errorf("scan_workers must be positive, got %d", c.ScanWorkers)
	}
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return fmt.Errorf("audio.sample_rate must be between 8000 and 192000, got %d", c.Audio.SampleRate)
	}
	if c.Audio.BufferMillis < 10 {
		return fmt.Errorf("audio.buffer_ms must be at least 10, got %d", c.Audio.BufferMillis)
	}
	if c.Audio.ResampleQuality < 1 || c.Audio.ResampleQuality > 64 {
		return fmt.Errorf("audio.resample_quality must be between 1 and 64, got %d", c.Audio.ResampleQuality)
	}
	return nil
}

// HistoryPath is the SQLite database of recently played files
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// PrefsPath is the preference snapshot
func (c *Config) PrefsPath() string {
	return filepath.Join(c.DataDir, "prefs.json")
}

// LibraryPath is the scanned library index
func (c *Config) LibraryPath() string {
	return filepath.Join(c.DataDir, "library.json")
}

// PlaylistDir holds saved playlists
func (c *Config) PlaylistDir() string {
	return filepath.Join(c.DataDir, "playlists")
}

// LogPath is the log file, the terminal belongs to the UI
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "movix.log")
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
