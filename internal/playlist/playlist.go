package playlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jscyril/movix/api"
	playerrors "github.com/jscyril/movix/pkg/errors"
)

// Manager handles named playlists, one JSON file each
type Manager struct {
	playlists map[string]*api.Playlist
	basePath  string
	mu        sync.RWMutex
}

// NewManager creates a new playlist manager
func NewManager(basePath string) *Manager {
	return &Manager{
		playlists: make(map[string]*api.Playlist),
		basePath:  basePath,
	}
}

// Create creates a new playlist
func (m *Manager) Create(name, description string) (*api.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("playlist name is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	playlist := &api.Playlist{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Tracks:      []api.Track{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := m.savePlaylist(playlist); err != nil {
		return nil, err
	}
	m.playlists[playlist.ID] = playlist
	return playlist, nil
}

// GetByID returns a playlist by its ID
func (m *Manager) GetByID(id string) (*api.Playlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	playlist, exists := m.playlists[id]
	if !exists {
		return nil, playerrors.ErrPlaylistNotFound
	}
	return playlist, nil
}

// GetAll returns all playlists sorted by name
func (m *Manager) GetAll() []*api.Playlist {
	m.mu.RLock()
	defer m.mu.RUnlock()

	playlists := make([]*api.Playlist, 0, len(m.playlists))
	for _, p := range m.playlists {
		playlists = append(playlists, p)
	}
	sort.Slice(playlists, func(i, j int) bool {
		if playlists[i].Name != playlists[j].Name {
			return playlists[i].Name < playlists[j].Name
		}
		return playlists[i].CreatedAt.Before(playlists[j].CreatedAt)
	})
	return playlists
}

// Tracks returns pointers to copies of a playlist's tracks, ready to be
// queued
func (m *Manager) Tracks(id string) ([]*api.Track, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	playlist, exists := m.playlists[id]
	if !exists {
		return nil, playerrors.ErrPlaylistNotFound
	}
	tracks := make([]*api.Track, len(playlist.Tracks))
	for i := range playlist.Tracks {
		track := playlist.Tracks[i]
		tracks[i] = &track
	}
	return tracks, nil
}

// Update updates a playlist's name and description
func (m *Manager) Update(id, name, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	playlist, exists := m.playlists[id]
	if !exists {
		return playerrors.ErrPlaylistNotFound
	}

	playlist.Name = name
	playlist.Description = description
	playlist.UpdatedAt = time.Now()

	return m.savePlaylist(playlist)
}

// Delete deletes a playlist
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.playlists[id]; !exists {
		return playerrors.ErrPlaylistNotFound
	}

	if err := os.Remove(m.pathFor(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete playlist file: %w", err)
	}

	delete(m.playlists, id)
	return nil
}

// AddTrack appends a track to a playlist. A track already in the
// playlist is not added twice.
func (m *Manager) AddTrack(playlistID string, track *api.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	playlist, exists := m.playlists[playlistID]
	if !exists {
		return playerrors.ErrPlaylistNotFound
	}
	for _, t := range playlist.Tracks {
		if t.ID == track.ID {
			return nil
		}
	}

	playlist.Tracks = append(playlist.Tracks, *track)
	playlist.UpdatedAt = time.Now()

	return m.savePlaylist(playlist)
}

// RemoveTrack removes a track from a playlist
func (m *Manager) RemoveTrack(playlistID, trackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	playlist, exists := m.playlists[playlistID]
	if !exists {
		return playerrors.ErrPlaylistNotFound
	}

	for i, t := range playlist.Tracks {
		if t.ID == trackID {
			playlist.Tracks = append(playlist.Tracks[:i], playlist.Tracks[i+1:]...)
			playlist.UpdatedAt = time.Now()
			return m.savePlaylist(playlist)
		}
	}
	return playerrors.ErrTrackNotFound
}

func (m *Manager) pathFor(id string) string {
	return filepath.Join(m.basePath, id+".json")
}

// savePlaylist saves a playlist to disk
func (m *Manager) savePlaylist(playlist *api.Playlist) error {
	if err := os.MkdirAll(m.basePath, 0755); err != nil {
		return fmt.Errorf("create playlist directory: %w", err)
	}

	data, err := json.MarshalIndent(playlist, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal playlist: %w", err)
	}

	if err := os.WriteFile(m.pathFor(playlist.ID), data, 0644); err != nil {
		return fmt.Errorf("write playlist file: %w", err)
	}

	return nil
}

// LoadAll loads all playlists from disk. Unreadable files are skipped and
// reported together in the returned error.
func (m *Manager) LoadAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.basePath, 0755); err != nil {
		return fmt.Errorf("create playlist directory: %w", err)
	}

	entries, err := os.ReadDir(m.basePath)
	if err != nil {
		return fmt.Errorf("read playlist directory: %w", err)
	}

	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(m.basePath, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", entry.Name(), err))
			continue
		}

		var playlist api.Playlist
		if err := json.Unmarshal(data, &playlist); err != nil {
			errs = append(errs, fmt.Errorf("parse %s: %w", entry.Name(), err))
			continue
		}
		if playlist.ID == "" {
			playlist.ID = strings.TrimSuffix(entry.Name(), ".json")
		}

		m.playlists[playlist.ID] = &playlist
	}

	return errors.Join(errs...)
}
