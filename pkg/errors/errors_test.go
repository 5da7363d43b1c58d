package errors

import (
	"errors"
	"testing"
)

func TestPlayerErrorUnwrap(t *testing.T) {
	err := NewPlayerError("decode", "track-1", ErrInvalidFormat)

	if !errors.Is(err, ErrInvalidFormat) {
		t.Error("PlayerError should unwrap to ErrInvalidFormat")
	}
	want := "decode failed for track track-1: unsupported audio format"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	noTrack := NewPlayerError("speaker_init", "", ErrPlaybackFailed)
	if noTrack.Error() != "speaker_init failed: playback failed" {
		t.Errorf("Error() = %q", noTrack.Error())
	}
}

func TestSubtitleErrorUnwrap(t *testing.T) {
	err := &SubtitleError{File: "movie.xyz", Err: ErrUnsupportedFormat}

	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Error("SubtitleError should unwrap to ErrUnsupportedFormat")
	}
	if err.Error() != "load subtitles movie.xyz: unsupported subtitle format" {
		t.Errorf("Error() = %q", err.Error())
	}
}
