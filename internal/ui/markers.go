package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jscyril/movix/api"
	"github.com/jscyril/movix/internal/ui/components"
)

// markerSkew lets repeated jumps move past the marker just reached
const markerSkew = time.Second

type markersLoadedMsg struct {
	path    string
	markers []api.Marker
	err     error
}

func (m Model) loadMarkersCmd(path string) tea.Cmd {
	if m.history == nil {
		return nil
	}
	store, ctx := m.history, m.ctx
	return func() tea.Msg {
		markers, err := store.Markers(ctx, path)
		return markersLoadedMsg{path: path, markers: markers, err: err}
	}
}

// handleMarkersLoaded keeps markers only for the track still playing
func (m *Model) handleMarkersLoaded(msg markersLoadedMsg) {
	if msg.err != nil {
		m.logger.Warn("load markers", zap.String("path", msg.path), zap.Error(msg.err))
		return
	}
	if m.state.CurrentTrack == nil || m.state.CurrentTrack.FilePath != msg.path {
		return
	}
	m.markers = msg.markers
}

func (m *Model) addMarker() {
	if m.history == nil || m.state.CurrentTrack == nil {
		return
	}
	path := m.state.CurrentTrack.FilePath
	ctx, cancel := context.WithTimeout(m.ctx, time.Second)
	defer cancel()

	marker, err := m.history.AddMarker(ctx, path, m.state.Position, "")
	if err != nil {
		m.err = fmt.Errorf("add marker: %w", err)
		return
	}
	m.reloadMarkers(ctx, path)
	m.showOSD(fmt.Sprintf("%s at %s", marker.Title, components.FormatDuration(marker.Position)))
}

// removeMarker deletes the marker at or before the position
func (m *Model) removeMarker() {
	marker, ok := markerAt(m.markers, m.state.Position)
	if !ok || m.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(m.ctx, time.Second)
	defer cancel()

	if err := m.history.RemoveMarker(ctx, marker.ID); err != nil {
		m.err = fmt.Errorf("remove marker: %w", err)
		return
	}
	m.reloadMarkers(ctx, marker.Path)
	m.showOSD("Removed " + marker.Title)
}

func (m *Model) reloadMarkers(ctx context.Context, path string) {
	markers, err := m.history.Markers(ctx, path)
	if err != nil {
		m.logger.Warn("load markers", zap.String("path", path), zap.Error(err))
		return
	}
	m.markers = markers
}

func (m *Model) jumpToMarker(forward bool) {
	if m.state.CurrentTrack == nil {
		return
	}
	find := prevMarker
	if forward {
		find = nextMarker
	}
	marker, ok := find(m.markers, m.state.Position)
	if !ok {
		return
	}
	m.audioEngine.Seek(marker.Position)
	m.showOSD(fmt.Sprintf("%s (%s)", marker.Title, components.FormatDuration(marker.Position)))
}

// nextMarker is the first marker past pos. markers are ordered by position.
func nextMarker(markers []api.Marker, pos time.Duration) (api.Marker, bool) {
	for _, mk := range markers {
		if mk.Position > pos+markerSkew {
			return mk, true
		}
	}
	return api.Marker{}, false
}

// prevMarker is the last marker before pos
func prevMarker(markers []api.Marker, pos time.Duration) (api.Marker, bool) {
	for i := len(markers) - 1; i >= 0; i-- {
		if markers[i].Position < pos-markerSkew {
			return markers[i], true
		}
	}
	return api.Marker{}, false
}

// markerAt is the last marker at or before pos
func markerAt(markers []api.Marker, pos time.Duration) (api.Marker, bool) {
	for i := len(markers) - 1; i >= 0; i-- {
		if markers[i].Position <= pos {
			return markers[i], true
		}
	}
	return api.Marker{}, false
}

func (m Model) progressMarks() []time.Duration {
	marks := m.loopMarks()
	for _, mk := range m.markers {
		marks = append(marks, mk.Position)
	}
	return marks
}
