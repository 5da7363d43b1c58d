package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	playerrors "github.com/jscyril/movix/pkg/errors"
)

// writeWAV writes a silent 16-bit mono PCM file
func writeWAV(t *testing.T, path string, sampleRate, frames int) {
	t.Helper()
	dataSize := frames * 2

	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.WriteString("RIFF")
	binary.Write(&buf, le, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, le, uint32(16))
	binary.Write(&buf, le, uint16(1))
	binary.Write(&buf, le, uint16(1))
	binary.Write(&buf, le, uint32(sampleRate))
	binary.Write(&buf, le, uint32(sampleRate*2))
	binary.Write(&buf, le, uint16(2))
	binary.Write(&buf, le, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, le, uint32(dataSize))
	buf.Write(make([]byte, dataSize))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write wav: %v", err)
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/music/song.mp3", true},
		{"/music/song.MP3", true},
		{"/music/song.wav", true},
		{"/music/song.flac", true},
		{"/music/song.ogg", false},
		{"/music/song.aac", false},
		{"/music/song.txt", false},
		{"/music/mp3", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			result := IsSupported(tt.path)
			if result != tt.expected {
				t.Errorf("IsSupported(%s) = %v, want %v", tt.path, result, tt.expected)
			}
		})
	}
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()
	if len(formats) != len(decoders) {
		t.Fatalf("SupportedFormats() = %v, want one entry per decoder", formats)
	}
	for _, f := range formats {
		if _, ok := decoders[f]; !ok {
			t.Errorf("Unexpected format: %s", f)
		}
	}

	// callers get their own copy
	formats[0] = ".ogg"
	if SupportedFormats()[0] != ".mp3" {
		t.Error("SupportedFormats() shares its backing array")
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeWAV(t, path, 8000, 800)

	streamer, format, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer streamer.Close()

	if format.SampleRate != 8000 || format.NumChannels != 1 {
		t.Errorf("format = %+v, want 8000 Hz mono", format)
	}
	if got := format.SampleRate.D(streamer.Len()); got != 100*time.Millisecond {
		t.Errorf("duration = %v, want 100ms", got)
	}
}

func TestOpenFileErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "broken.wav")
	if err := os.WriteFile(garbage, []byte("not a wave file"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		path   string
		op     string
		target error
	}{
		{"unsupported extension", filepath.Join(dir, "song.ogg"), "decode", playerrors.ErrInvalidFormat},
		{"missing file", filepath.Join(dir, "missing.mp3"), "open", os.ErrNotExist},
		{"undecodable data", garbage, "decode", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := OpenFile(tt.path)
			var perr *playerrors.PlayerError
			if !errors.As(err, &perr) {
				t.Fatalf("OpenFile(%s) error = %v, want PlayerError", tt.path, err)
			}
			if perr.Op != tt.op || perr.Track != tt.path {
				t.Errorf("PlayerError = {Op: %q, Track: %q}, want {%q, %q}", perr.Op, perr.Track, tt.op, tt.path)
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("OpenFile(%s) error = %v, want %v", tt.path, err, tt.target)
			}
		})
	}
}
