package components

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jscyril/movix/api"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer title", 10, "a longe..."},
		{"héllo wörld", 8, "héllo..."},
		{"abc", 2, "ab"},
		{"abc", 0, ""},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{65 * time.Second, "01:05"},
		{59*time.Second + 600*time.Millisecond, "01:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{-time.Second, "00:00"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProgressPercent(t *testing.T) {
	p := NewProgressBar(40)
	if p.Percent() != 0 {
		t.Errorf("Percent() with no total = %v, want 0", p.Percent())
	}
	p.SetProgress(30*time.Second, time.Minute)
	if p.Percent() != 0.5 {
		t.Errorf("Percent() = %v, want 0.5", p.Percent())
	}
	p.SetProgress(2*time.Minute, time.Minute)
	if p.Percent() != 1 {
		t.Errorf("Percent() past end = %v, want 1", p.Percent())
	}
}

func TestOSD(t *testing.T) {
	now := time.Now()
	osd := NewOSD()

	if osd.Visible(now) {
		t.Fatal("new OSD is visible")
	}

	osd.Show("Muted", now)
	if !osd.Visible(now.Add(OSDDuration - time.Millisecond)) {
		t.Error("OSD hidden before expiry")
	}
	if osd.Visible(now.Add(OSDDuration)) {
		t.Error("OSD visible at expiry")
	}

	osd.Expire(now.Add(time.Second))
	if osd.Message != "Muted" {
		t.Error("Expire() dropped a live message")
	}
	osd.Expire(now.Add(OSDDuration))
	if osd.Message != "" || osd.View(now) != "" {
		t.Error("Expire() kept a stale message")
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSearchInput(t *testing.T) {
	s := NewSearchInput(30)

	s, _ = s.Update(runes("x"))
	if s.Value() != "" {
		t.Fatal("unfocused input accepted keys")
	}

	s.Focus()
	for _, msg := range []tea.Msg{
		runes("jäz"),
		tea.KeyMsg{Type: tea.KeySpace},
		runes("z"),
		tea.KeyMsg{Type: tea.KeyLeft},
		tea.KeyMsg{Type: tea.KeyBackspace},
		runes("Z"),
	} {
		s, _ = s.Update(msg)
	}

	if got := s.Value(); got != "jäzZz" {
		t.Errorf("Value() = %q, want %q", got, "jäzZz")
	}

	s.Clear()
	if s.Value() != "" {
		t.Errorf("Value() after Clear() = %q", s.Value())
	}
}

func TestTrackListPaging(t *testing.T) {
	tracks := make([]*api.Track, 20)
	for i := range tracks {
		tracks[i] = &api.Track{ID: string(rune('a' + i)), Title: "t"}
	}

	l := NewTrackList(7, 60)
	l.SetItems(tracks)

	l.PageDown()
	if l.Selected != 5 || l.Offset != 1 {
		t.Errorf("after PageDown Selected=%d Offset=%d, want 5, 1", l.Selected, l.Offset)
	}

	l.Selected = 19
	l.SetItems(tracks[:3])
	if l.Selected != 2 {
		t.Errorf("SetItems() kept Selected=%d beyond the list", l.Selected)
	}
	if got := l.SelectedItem(); got != tracks[2] {
		t.Errorf("SelectedItem() = %v, want %v", got, tracks[2])
	}

	l.SetItems(nil)
	if l.SelectedItem() != nil {
		t.Error("SelectedItem() on empty list != nil")
	}
}

func TestFileBrowserNavigate(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b.mp3", "A.flac", "a.srt", "notes.txt", ".hidden.mp3"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("data"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(root, "albums"), 0755); err != nil {
		t.Fatal(err)
	}

	fb := NewFileBrowser(root, 80, 30)
	var names []string
	for _, e := range fb.Entries {
		names = append(names, e.Name)
	}
	want := []string{"..", "albums", "A.flac", "a.srt", "b.mp3"}
	if len(names) != len(want) {
		t.Fatalf("Entries = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Entries = %v, want %v", names, want)
		}
	}
	if !fb.Entries[3].Subtitle || fb.Entries[2].Subtitle {
		t.Error("subtitle flag misassigned")
	}

	fb.Selected = 1
	if _, ok := fb.EnterSelected(); ok || fb.CurrentPath != filepath.Join(root, "albums") {
		t.Errorf("EnterSelected() on dir: path %q", fb.CurrentPath)
	}

	fb.Navigate(root)
	fb.Selected = 4
	entry, ok := fb.EnterSelected()
	if !ok || entry.Path != filepath.Join(root, "b.mp3") || entry.Size != 4 {
		t.Errorf("EnterSelected() = %+v, %v", entry, ok)
	}

	fb.Navigate(filepath.Join(root, "missing"))
	if fb.Err == nil {
		t.Error("Navigate(missing) Err = nil")
	}
}
