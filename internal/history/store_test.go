package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jscyril/movix/api"
	playerrors "github.com/jscyril/movix/pkg/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordPlayOrder(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	for _, name := range []string{"a", "b", "c"} {
		if _, err := store.RecordPlay(ctx, api.RecentFile{Name: name, Path: "/m/" + name + ".mp3"}); err != nil {
			t.Fatalf("RecordPlay(%s) error = %v", name, err)
		}
	}

	first, err := store.Recent(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 3 {
		t.Fatalf("len(Recent()) = %d, want 3", len(first))
	}
	idOfA := first[2].ID

	// replaying moves the entry to the top and keeps its ID
	again, err := store.RecordPlay(ctx, api.RecentFile{Name: "a", Path: "/m/a.mp3", Duration: 90 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != idOfA {
		t.Errorf("RecordPlay() ID = %q, want existing %q", again.ID, idOfA)
	}

	files, err := store.Recent(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, f := range files {
		got = append(got, f.Name)
	}
	if fmt.Sprint(got) != "[a c b]" {
		t.Errorf("Recent() order = %v, want [a c b]", got)
	}
	if files[0].Duration != 90*time.Second {
		t.Errorf("Duration = %v, want 90s", files[0].Duration)
	}
}

func TestRecordPlayKeepsMax(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	for i := 0; i < MaxRecent+5; i++ {
		path := fmt.Sprintf("/m/%02d.mp3", i)
		if _, err := store.RecordPlay(ctx, api.RecentFile{Name: path, Path: path}); err != nil {
			t.Fatal(err)
		}
	}

	files, err := store.Recent(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != MaxRecent {
		t.Fatalf("len(Recent()) = %d, want %d", len(files), MaxRecent)
	}
	if files[0].Path != "/m/24.mp3" || files[MaxRecent-1].Path != "/m/05.mp3" {
		t.Errorf("Recent() spans %s..%s, want /m/24.mp3../m/05.mp3", files[0].Path, files[MaxRecent-1].Path)
	}
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	kept, _ := store.RecordPlay(ctx, api.RecentFile{Name: "keep", Path: "/m/keep.mp3"})
	gone, _ := store.RecordPlay(ctx, api.RecentFile{Name: "gone", Path: "/m/gone.mp3"})

	if err := store.Remove(ctx, gone.ID); err != nil {
		t.Fatal(err)
	}
	files, _ := store.Recent(ctx)
	if len(files) != 1 || files[0].ID != kept.ID {
		t.Errorf("Recent() after Remove = %+v, want only %q", files, kept.ID)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	files, _ = store.Recent(ctx)
	if len(files) != 0 {
		t.Errorf("len(Recent()) after Clear = %d, want 0", len(files))
	}
}

func TestRecordPlayEmptyPath(t *testing.T) {
	if _, err := openTestStore(t).RecordPlay(context.Background(), api.RecentFile{Name: "x"}); err == nil {
		t.Error("RecordPlay() with empty path error = nil")
	}
}

func TestPositions(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if _, ok, err := store.Position(ctx, "/m/a.mp3"); err != nil || ok {
		t.Fatalf("Position() = _, %v, %v, want not found", ok, err)
	}

	if err := store.SavePosition(ctx, "/m/a.mp3", 42500*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if err := store.SavePosition(ctx, "/m/a.mp3", 61*time.Second); err != nil {
		t.Fatal(err)
	}

	pos, ok, err := store.Position(ctx, "/m/a.mp3")
	if err != nil || !ok || pos != 61*time.Second {
		t.Errorf("Position() = %v, %v, %v, want 61s, true, nil", pos, ok, err)
	}

	if err := store.ClearPosition(ctx, "/m/a.mp3"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Position(ctx, "/m/a.mp3"); ok {
		t.Error("Position() found after ClearPosition")
	}
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.RecordPlay(ctx, api.RecentFile{Name: "a", Path: "/m/a.mp3"}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	files, err := store.Recent(ctx)
	if err != nil || len(files) != 1 {
		t.Errorf("Recent() after reopen = %v, %v, want one file", files, err)
	}
}

func TestMarkers(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	late, err := store.AddMarker(ctx, "/m/a.mkv", 90*time.Second, "")
	if err != nil {
		t.Fatalf("AddMarker() error = %v", err)
	}
	if late.Title != "Marker 1" {
		t.Errorf("AddMarker() title = %q, want %q", late.Title, "Marker 1")
	}
	if late.ID == "" {
		t.Error("AddMarker() ID is empty")
	}
	early, err := store.AddMarker(ctx, "/m/a.mkv", 1500*time.Millisecond, "  Intro  ")
	if err != nil {
		t.Fatal(err)
	}
	if early.Title != "Intro" {
		t.Errorf("AddMarker() title = %q, want %q", early.Title, "Intro")
	}
	third, err := store.AddMarker(ctx, "/m/a.mkv", -time.Second, " ")
	if err != nil {
		t.Fatal(err)
	}
	if third.Title != "Marker 3" || third.Position != 0 {
		t.Errorf("AddMarker() = %q at %v, want %q at 0", third.Title, third.Position, "Marker 3")
	}
	if _, err := store.AddMarker(ctx, "/m/b.mkv", time.Second, ""); err != nil {
		t.Fatal(err)
	}

	markers, err := store.Markers(ctx, "/m/a.mkv")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, m := range markers {
		got = append(got, fmt.Sprintf("%s@%v", m.Title, m.Position))
	}
	if want := "[Marker 3@0s Intro@1.5s Marker 1@1m30s]"; fmt.Sprint(got) != want {
		t.Errorf("Markers() = %v, want %s", got, want)
	}

	other, err := store.Markers(ctx, "/m/b.mkv")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 1 || other[0].Title != "Marker 1" {
		t.Errorf("Markers(b) = %+v, want one \"Marker 1\"", other)
	}
}

func TestRenameMarker(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	m, err := store.AddMarker(ctx, "/m/a.mkv", time.Minute, "")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		id      string
		title   string
		wantErr error
		want    string
	}{
		{"blank title", m.ID, "   ", playerrors.ErrEmptyMarkerTitle, "Marker 1"},
		{"unknown id", "nope", "Credits", playerrors.ErrMarkerNotFound, "Marker 1"},
		{"trimmed title", m.ID, " Credits ", nil, "Credits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.RenameMarker(ctx, tt.id, tt.title)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RenameMarker() error = %v, want %v", err, tt.wantErr)
			}
			markers, err := store.Markers(ctx, "/m/a.mkv")
			if err != nil {
				t.Fatal(err)
			}
			if markers[0].Title != tt.want {
				t.Errorf("title = %q, want %q", markers[0].Title, tt.want)
			}
		})
	}
}

func TestRemoveMarker(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	m, err := store.AddMarker(ctx, "/m/a.mkv", time.Minute, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.RemoveMarker(ctx, m.ID); err != nil {
		t.Fatalf("RemoveMarker() error = %v", err)
	}
	if err := store.RemoveMarker(ctx, m.ID); !errors.Is(err, playerrors.ErrMarkerNotFound) {
		t.Errorf("RemoveMarker() again error = %v, want ErrMarkerNotFound", err)
	}
	markers, err := store.Markers(ctx, "/m/a.mkv")
	if err != nil {
		t.Fatal(err)
	}
	if len(markers) != 0 {
		t.Errorf("Markers() = %+v, want none", markers)
	}

	// numbering counts the markers that remain
	next, err := store.AddMarker(ctx, "/m/a.mkv", time.Second, "")
	if err != nil {
		t.Fatal(err)
	}
	if next.Title != "Marker 1" {
		t.Errorf("AddMarker() title = %q, want %q", next.Title, "Marker 1")
	}
}
