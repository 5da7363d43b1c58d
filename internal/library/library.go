// Package library indexes the local media collection.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jscyril/movix/api"
	playerrors "github.com/jscyril/movix/pkg/errors"
)

// Library is the indexed media collection
type Library struct {
	Tracks      map[string]*api.Track `json:"tracks"`
	ScanPaths   []string              `json:"scan_paths"`
	LastScanned time.Time             `json:"last_scanned"`

	// Secondary indices, rebuilt on load
	artistIndex map[string][]string
	albumIndex  map[string][]string
	genreIndex  map[string][]string

	mu      sync.RWMutex
	scanner *Scanner
}

// NewLibrary creates an empty library scanning with the given number of
// workers
func NewLibrary(workers int) *Library {
	l := &Library{
		Tracks:  make(map[string]*api.Track),
		scanner: NewScanner(workers),
	}
	l.rebuildIndices()
	return l
}

// Len returns the number of tracks
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.Tracks)
}

// AddTrack adds or replaces a track and updates indices
func (l *Library) AddTrack(track *api.Track) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if old, exists := l.Tracks[track.ID]; exists {
		l.unindex(old)
	}
	l.Tracks[track.ID] = track
	l.index(track)
}

// GetTrack returns a track by ID
func (l *Library) GetTrack(id string) (*api.Track, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	track, exists := l.Tracks[id]
	if !exists {
		return nil, playerrors.ErrTrackNotFound
	}
	return track, nil
}

// GetAllTracks returns all tracks ordered by artist, album, track number
func (l *Library) GetAllTracks() []*api.Track {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tracks := make([]*api.Track, 0, len(l.Tracks))
	for _, track := range l.Tracks {
		tracks = append(tracks, track)
	}
	sortTracks(tracks)
	return tracks
}

// GetTracksByArtist returns all tracks by a specific artist
func (l *Library) GetTracksByArtist(artist string) []*api.Track {
	return l.lookup(l.artistIndex, artist)
}

// GetTracksByAlbum returns all tracks from a specific album
func (l *Library) GetTracksByAlbum(album string) []*api.Track {
	return l.lookup(l.albumIndex, album)
}

// GetTracksByGenre returns all tracks of a genre
func (l *Library) GetTracksByGenre(genre string) []*api.Track {
	return l.lookup(l.genreIndex, genre)
}

func (l *Library) lookup(index map[string][]string, key string) []*api.Track {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := index[key]
	if len(ids) == 0 {
		return nil
	}
	tracks := make([]*api.Track, 0, len(ids))
	for _, id := range ids {
		if track, ok := l.Tracks[id]; ok {
			tracks = append(tracks, track)
		}
	}
	sortTracks(tracks)
	return tracks
}

// GetArtists returns all unique artists
func (l *Library) GetArtists() []string {
	return l.keys(l.artistIndex)
}

// GetAlbums returns all unique albums
func (l *Library) GetAlbums() []string {
	return l.keys(l.albumIndex)
}

func (l *Library) keys(index map[string][]string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := make([]string, 0, len(index))
	for key := range index {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Search matches a case-insensitive query against title, artist, album and
// file name. Title matches come first.
func (l *Library) Search(query string) []*api.Track {
	l.mu.RLock()
	defer l.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	var titleHits, otherHits []*api.Track

	for _, track := range l.Tracks {
		switch {
		case strings.Contains(strings.ToLower(track.Title), query):
			titleHits = append(titleHits, track)
		case strings.Contains(strings.ToLower(track.Artist), query),
			strings.Contains(strings.ToLower(track.Album), query),
			strings.Contains(strings.ToLower(filepath.Base(track.FilePath)), query):
			otherHits = append(otherHits, track)
		}
	}

	sortTracks(titleHits)
	sortTracks(otherHits)
	return append(titleHits, otherHits...)
}

// RemoveTrack removes a track from the library
func (l *Library) RemoveTrack(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	track, exists := l.Tracks[id]
	if !exists {
		return playerrors.ErrTrackNotFound
	}
	l.unindex(track)
	delete(l.Tracks, id)
	return nil
}

// Scan scans paths and adds the tracks found. The returned error joins
// the per-file problems; the tracks that could be read are added
// regardless. A cancelled scan adds nothing.
func (l *Library) Scan(ctx context.Context, paths []string) error {
	tracks, scanErr := l.scanner.Scan(ctx, paths)
	if errors.Is(scanErr, context.Canceled) || errors.Is(scanErr, context.DeadlineExceeded) {
		return scanErr
	}

	for _, track := range tracks {
		l.AddTrack(track)
	}

	l.mu.Lock()
	l.ScanPaths = append([]string(nil), paths...)
	l.LastScanned = time.Now()
	l.mu.Unlock()

	return scanErr
}

// AddFile adds a single file from any location to the library
func (l *Library) AddFile(filePath string) (*api.Track, error) {
	track, err := l.scanner.ScanFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	l.AddTrack(track)
	return track, nil
}

// Clear removes all tracks from the library
func (l *Library) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.Tracks = make(map[string]*api.Track)
	l.rebuildIndices()
}

// Save persists the library to a JSON file
func (l *Library) Save(path string) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal library: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write library file: %w", err)
	}

	return nil
}

// LoadLibrary loads a library from a JSON file (or returns empty if not exists)
func LoadLibrary(path string, workers int) (*Library, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewLibrary(workers), nil // First run, return empty library
	}
	if err != nil {
		return nil, fmt.Errorf("read library file: %w", err)
	}

	lib := NewLibrary(workers)
	if err := json.Unmarshal(data, lib); err != nil {
		return nil, fmt.Errorf("unmarshal library: %w", err)
	}
	if lib.Tracks == nil {
		lib.Tracks = make(map[string]*api.Track)
	}
	lib.rebuildIndices()
	return lib, nil
}

func (l *Library) rebuildIndices() {
	l.artistIndex = make(map[string][]string)
	l.albumIndex = make(map[string][]string)
	l.genreIndex = make(map[string][]string)
	for _, track := range l.Tracks {
		l.index(track)
	}
}

func (l *Library) index(track *api.Track) {
	addToIndex(l.artistIndex, track.Artist, track.ID)
	addToIndex(l.albumIndex, track.Album, track.ID)
	addToIndex(l.genreIndex, track.Genre, track.ID)
}

func (l *Library) unindex(track *api.Track) {
	removeFromIndex(l.artistIndex, track.Artist, track.ID)
	removeFromIndex(l.albumIndex, track.Album, track.ID)
	removeFromIndex(l.genreIndex, track.Genre, track.ID)
}

func addToIndex(index map[string][]string, key, trackID string) {
	if key == "" {
		return
	}
	index[key] = append(index[key], trackID)
}

func removeFromIndex(index map[string][]string, key, trackID string) {
	if key == "" {
		return
	}

	ids := index[key]
	for i, id := range ids {
		if id == trackID {
			index[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}

	// Remove empty keys
	if len(index[key]) == 0 {
		delete(index, key)
	}
}

func sortTracks(tracks []*api.Track) {
	sort.Slice(tracks, func(i, j int) bool {
		a, b := tracks[i], tracks[j]
		if a.Artist != b.Artist {
			return a.Artist < b.Artist
		}
		if a.Album != b.Album {
			return a.Album < b.Album
		}
		if a.TrackNum != b.TrackNum {
			return a.TrackNum < b.TrackNum
		}
		return a.FilePath < b.FilePath
	})
}
