package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jscyril/movix/api"
	"github.com/jscyril/movix/internal/library"
	"github.com/jscyril/movix/internal/subtitle"
)

// positionMargin keeps positions too close to either end of a track from
// being remembered
const positionMargin = 5 * time.Second

func (m *Model) handleEvent(event api.AudioEvent) tea.Cmd {
	switch event.Type {
	case api.EventTrackStarted:
		track, ok := event.Payload.(*api.Track)
		if !ok {
			return nil
		}
		return m.onTrackStarted(track)

	case api.EventTrackEnded:
		track, _ := event.Payload.(*api.Track)
		return m.onTrackEnded(track)

	case api.EventPositionUpdate:
		pos, ok := event.Payload.(time.Duration)
		if !ok {
			return nil
		}
		m.state.Position = pos
		m.playerView.SetState(m.state)
		if a, loop := m.abLoop.Check(pos); loop {
			m.audioEngine.Seek(a)
		}

	case api.EventStateChange:
		if state, ok := event.Payload.(*api.PlaybackState); ok {
			m.setState(state)
		}

	case api.EventError:
		if err, ok := event.Payload.(error); ok {
			m.err = err
			m.showOSD("Playback error")
		}
	}
	return nil
}

// onTrackStarted resets per-track state, records the play and looks for
// a saved position and sidecar subtitles
func (m *Model) onTrackStarted(track *api.Track) tea.Cmd {
	m.err = nil
	m.abLoop.Clear()
	m.subtitles = nil
	m.markers = nil
	m.playerView.Info = nil
	m.showInfo = false

	state := m.audioEngine.GetState()
	state.CurrentTrack = track
	m.setState(state)

	cmds := []tea.Cmd{m.recordPlayCmd(track), m.loadMarkersCmd(track.FilePath)}
	if m.session.Prefs().Settings.RememberPosition {
		cmds = append(cmds, m.lookupPositionCmd(track.FilePath))
	}
	switch subs := library.FindSubtitles(track.FilePath); {
	case m.pendingSubtitles != "":
		cmds = append(cmds, loadSubtitlesCmd(m.pendingSubtitles))
		m.pendingSubtitles = ""
	case len(subs) > 0:
		cmds = append(cmds, loadSubtitlesCmd(subs[0]))
	}
	return tea.Batch(cmds...)
}

// onTrackEnded forgets the finished track's position and moves on
func (m *Model) onTrackEnded(track *api.Track) tea.Cmd {
	var cmd tea.Cmd
	if track != nil && m.history != nil {
		path, store, ctx := track.FilePath, m.history, m.ctx
		cmd = func() tea.Msg {
			if err := store.ClearPosition(ctx, path); err != nil {
				return errMsg{err}
			}
			return nil
		}
	}

	if !m.session.Prefs().Settings.AutoPlay {
		return cmd
	}
	if next := m.queue.Advance(); next != nil {
		m.play(next)
	}
	return cmd
}

// play starts track, remembering where the previous one stopped
func (m *Model) play(track *api.Track) {
	m.rememberPosition()
	if err := m.audioEngine.Play(track); err != nil {
		m.err = err
	}
}

// rememberPosition stores the position of the current track, or forgets
// it when the track is near either end
func (m *Model) rememberPosition() {
	if m.history == nil || m.state == nil || m.state.CurrentTrack == nil {
		return
	}
	if !m.session.Prefs().Settings.RememberPosition {
		return
	}

	track, pos := m.state.CurrentTrack, m.state.Position
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var err error
	if pos > positionMargin && (track.Duration == 0 || pos < track.Duration-positionMargin) {
		err = m.history.SavePosition(ctx, track.FilePath, pos)
	} else {
		err = m.history.ClearPosition(ctx, track.FilePath)
	}
	if err != nil {
		m.logger.Warn("remember position", zap.String("path", track.FilePath), zap.Error(err))
	}
}

func (m Model) recordPlayCmd(track *api.Track) tea.Cmd {
	if m.history == nil {
		return nil
	}
	store, ctx := m.history, m.ctx
	file := api.RecentFile{
		Name:     filepath.Base(track.FilePath),
		Path:     track.FilePath,
		Duration: track.Duration,
	}
	return func() tea.Msg {
		if _, err := store.RecordPlay(ctx, file); err != nil {
			return errMsg{fmt.Errorf("record play: %w", err)}
		}
		return nil
	}
}

func (m Model) lookupPositionCmd(path string) tea.Cmd {
	if m.history == nil {
		return nil
	}
	store, ctx := m.history, m.ctx
	return func() tea.Msg {
		pos, ok, err := store.Position(ctx, path)
		if err != nil {
			return errMsg{fmt.Errorf("load position: %w", err)}
		}
		if !ok || pos <= 0 {
			return nil
		}
		return positionMsg{path: path, position: pos}
	}
}

// openFilesCmd adds media files to the library and picks the last
// subtitle file among them
func (m Model) openFilesCmd(paths []string) tea.Cmd {
	lib := m.library
	return func() tea.Msg {
		var msg filesOpenedMsg
		for _, path := range paths {
			if subtitle.IsSubtitleFile(path) {
				msg.subtitles = path
				continue
			}
			track, err := lib.AddFile(path)
			if err != nil {
				msg.errs = append(msg.errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
				continue
			}
			msg.tracks = append(msg.tracks, track)
		}
		return msg
	}
}

// handleFilesOpened queues the opened tracks and plays the first one
func (m *Model) handleFilesOpened(msg filesOpenedMsg) tea.Cmd {
	if err := errors.Join(msg.errs...); err != nil {
		m.err = err
	}
	m.libraryView.Refresh()

	if len(msg.tracks) == 0 {
		if msg.subtitles != "" {
			return loadSubtitlesCmd(msg.subtitles)
		}
		return nil
	}

	// subtitles opened with media apply once its track has started
	m.pendingSubtitles = msg.subtitles

	first := m.queue.Add(msg.tracks...)
	if track, err := m.queue.JumpTo(first); err == nil {
		m.play(track)
	}
	if len(msg.tracks) == 1 {
		m.showOSD("Opened " + msg.tracks[0].Title)
	} else {
		m.showOSD(fmt.Sprintf("Opened %d files", len(msg.tracks)))
	}

	return nil
}

func loadSubtitlesCmd(path string) tea.Cmd {
	return func() tea.Msg {
		track, err := subtitle.Load(path)
		return subtitlesLoadedMsg{path: path, track: track, err: err}
	}
}

// handleSubtitlesLoaded swaps in a new subtitle track. A failed load keeps
// the previous one.
func (m *Model) handleSubtitlesLoaded(msg subtitlesLoadedMsg) {
	if msg.err != nil {
		m.logger.Warn("load subtitles", zap.String("path", msg.path), zap.Error(msg.err))
		m.err = fmt.Errorf("load subtitles: %w", msg.err)
		m.showOSD("Failed to load subtitles")
		return
	}
	m.subtitles = msg.track
	m.showOSD(fmt.Sprintf("Subtitles: %s (%d)", msg.track.Name, msg.track.Len()))
}

func (m Model) mediaInfoCmd(path string) tea.Cmd {
	return func() tea.Msg {
		info, err := library.ReadMediaInfo(path)
		return mediaInfoMsg{info: info, err: err}
	}
}
