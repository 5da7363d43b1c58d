package library

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestReadMediaInfo(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "Movie.Night.mp3")
	writeFile(t, media, 2048)
	writeFile(t, filepath.Join(dir, "Movie.Night.srt"), 1)
	writeFile(t, filepath.Join(dir, "Movie.Night.en.vtt"), 1)
	writeFile(t, filepath.Join(dir, "Movie.txt"), 1)
	writeFile(t, filepath.Join(dir, "Other.srt"), 1)

	info, err := ReadMediaInfo(media)
	if err != nil {
		t.Fatalf("ReadMediaInfo() error = %v", err)
	}

	if info.Name != "Movie.Night.mp3" || info.Container != "mp3" {
		t.Errorf("Name/Container = %q/%q", info.Name, info.Container)
	}
	if info.Size != 2048 {
		t.Errorf("Size = %d, want 2048", info.Size)
	}
	if got := info.HumanSize(); got != "2.0 kB" {
		t.Errorf("HumanSize() = %q, want 2.0 kB", got)
	}
	if info.Age() == "" {
		t.Error("Age() is empty")
	}

	var subs []string
	for _, s := range info.Subtitles {
		subs = append(subs, filepath.Base(s))
	}
	if strings.Join(subs, ",") != "Movie.Night.en.vtt,Movie.Night.srt" {
		t.Errorf("Subtitles = %v", subs)
	}
}

func TestReadMediaInfoErrors(t *testing.T) {
	if _, err := ReadMediaInfo(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Error("ReadMediaInfo(missing) error = nil")
	}
	if _, err := ReadMediaInfo(t.TempDir()); err == nil {
		t.Error("ReadMediaInfo(dir) error = nil")
	}
}

func TestFindSubtitlesNone(t *testing.T) {
	if got := FindSubtitles(filepath.Join(t.TempDir(), "x.mp3")); got != nil {
		t.Errorf("FindSubtitles() = %v, want nil", got)
	}
}
