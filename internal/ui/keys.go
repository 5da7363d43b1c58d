package ui

import (
	"errors"
	"fmt"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jscyril/movix/api"
	"github.com/jscyril/movix/internal/audio"
	"github.com/jscyril/movix/internal/equalizer"
	"github.com/jscyril/movix/internal/prefs"
	playerrors "github.com/jscyril/movix/pkg/errors"
)

const (
	subtitleDelayStep = 50 * time.Millisecond
	rateStep          = 0.25
	favoritesName     = "Favorites"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.shutdown()
		return m, tea.Quit
	}

	// The library captures every key while searching or browsing
	if m.activeView == ViewLibrary && m.libraryView.Active() {
		var cmd tea.Cmd
		m.libraryView, cmd = m.libraryView.Update(msg)
		return m, cmd
	}

	if m.activeView == ViewEqualizer && m.handleEqualizerKey(key) {
		return m, nil
	}

	switch key {
	case m.keys.Quit:
		m.shutdown()
		return m, tea.Quit

	case "1":
		m.activeView = ViewPlayer
	case "2", m.keys.Library:
		m.activeView = ViewLibrary
	case "3", m.keys.Playlist:
		m.activeView = ViewPlaylist
		if m.playlistManager != nil {
			m.playlistView.SetPlaylists(m.playlistManager.GetAll())
		}
	case "4", m.keys.Equalizer:
		m.activeView = ViewEqualizer
		if m.equalizer != nil {
			m.syncEqualizerView()
		}
	case "tab":
		m.activeView = (m.activeView + 1) % viewCount

	case m.keys.PlayPause:
		m.togglePlay()

	case m.keys.Stop:
		m.rememberPosition()
		m.audioEngine.Stop()
		m.abLoop.Clear()

	case m.keys.Next:
		if next := m.queue.Next(); next != nil {
			m.play(next)
		}

	case m.keys.Previous:
		track, restart := m.queue.Previous(m.state.Position)
		switch {
		case track == nil:
		case restart:
			m.audioEngine.Seek(0)
		default:
			m.play(track)
		}

	case m.keys.SeekForward:
		m.seekBy(m.session.Prefs().SeekStep())
	case m.keys.SeekBack:
		m.seekBy(-m.session.Prefs().SeekStep())

	case m.keys.VolumeUp, "=":
		m.adjustVolume(1)
	case m.keys.VolumeDown:
		m.adjustVolume(-1)

	case m.keys.Mute:
		m.audioEngine.ToggleMute()
		muted := !m.session.Prefs().Muted
		m.updatePrefs(func(p *prefs.Prefs) { p.Muted = muted })
		if muted {
			m.showOSD("Muted")
		} else {
			m.showOSD("Unmuted")
		}

	case m.keys.RateUp:
		m.adjustRate(rateStep)
	case m.keys.RateDown:
		m.adjustRate(-rateStep)

	case m.keys.Repeat:
		mode := m.queue.CycleRepeat()
		m.updatePrefs(func(p *prefs.Prefs) { p.Repeat = mode })
		m.showOSD("Repeat: " + repeatLabel(mode))

	case m.keys.Shuffle:
		on := m.queue.ToggleShuffle()
		m.updatePrefs(func(p *prefs.Prefs) { p.Shuffle = on })
		if on {
			m.showOSD("Shuffle on")
		} else {
			m.showOSD("Shuffle off")
		}

	case m.keys.SubtitleDelayUp:
		m.adjustSubtitleDelay(subtitleDelayStep)
	case m.keys.SubtitleDelayDown:
		m.adjustSubtitleDelay(-subtitleDelayStep)

	case m.keys.ClearSubtitles:
		if m.subtitles != nil {
			m.subtitles = nil
			m.showOSD("Subtitles cleared")
		}

	case m.keys.ABLoop:
		if m.state.CurrentTrack != nil {
			m.showOSD(m.abLoop.Toggle(m.state.Position))
		}

	case m.keys.SleepTimer:
		m.cycleSleepTimer(time.Now())

	case m.keys.AddMarker:
		m.addMarker()
	case m.keys.RemoveMarker:
		m.removeMarker()
	case m.keys.NextMarker:
		m.jumpToMarker(true)
	case m.keys.PrevMarker:
		m.jumpToMarker(false)

	case "i":
		m.showInfo = !m.showInfo
		if m.showInfo && m.state.CurrentTrack != nil {
			return m, m.mediaInfoCmd(m.state.CurrentTrack.FilePath)
		}

	case "enter":
		m.playSelected()

	case "f":
		if m.activeView == ViewLibrary {
			m.addToFavorites(m.libraryView.SelectedTrack())
		}

	case "d":
		if m.activeView == ViewPlaylist {
			m.removeFromPlaylist()
		}

	default:
		var cmd tea.Cmd
		switch m.activeView {
		case ViewLibrary:
			m.libraryView, cmd = m.libraryView.Update(msg)
		case ViewPlaylist:
			m.playlistView, cmd = m.playlistView.Update(msg)
		}
		return m, cmd
	}

	return m, nil
}

// handleEqualizerKey applies the equalizer view's own keys
func (m *Model) handleEqualizerKey(key string) bool {
	if m.equalizer == nil {
		return false
	}

	v := &m.equalizerView
	switch key {
	case "left":
		v.MoveLeft()
		return true
	case "right":
		v.MoveRight()
		return true
	case "up", "down":
		step := 1.0
		if key == "down" {
			step = -1
		}
		gain := v.SelectedGain() + step
		if band := v.Band(); band < 0 {
			m.equalizer.SetPreamp(gain)
		} else {
			m.equalizer.SetBand(band, gain)
		}
	case "t":
		if m.equalizer.Toggle() {
			m.showOSD("Equalizer on")
		} else {
			m.showOSD("Equalizer off")
		}
	case "o":
		name := equalizer.NextPreset(m.equalizer.State().Preset)
		m.equalizer.SetPreset(name)
		m.showOSD("Preset: " + equalizer.PresetLabel(name))
	case "0":
		m.equalizer.Reset()
		m.showOSD("Equalizer reset")
	default:
		return false
	}

	m.syncEqualizerView()
	return true
}

func (m *Model) syncEqualizerView() {
	m.equalizerView.SetState(m.equalizer.State())
	m.equalizerView.Unavailable = m.equalizer.Err() != nil
}

func (m *Model) togglePlay() {
	switch m.state.Status {
	case api.StatusPlaying:
		m.audioEngine.Pause()
		m.rememberPosition()
	case api.StatusPaused:
		m.audioEngine.Resume()
	default:
		if current := m.queue.Current(); current != nil {
			m.play(current)
			return
		}
		first, err := m.queue.JumpTo(0)
		if errors.Is(err, playerrors.ErrEmptyQueue) {
			m.showOSD("Queue is empty")
			return
		}
		if err == nil {
			m.play(first)
		}
	}
}

func (m *Model) seekBy(delta time.Duration) {
	if m.state.CurrentTrack == nil {
		return
	}
	target := m.state.Position + delta
	if target < 0 {
		target = 0
	}
	m.audioEngine.Seek(target)
	m.showOSD(fmt.Sprintf("Seek %s", formatSigned(delta)))
}

func (m *Model) adjustVolume(direction int) {
	step := float64(m.session.Prefs().Settings.VolumeStep) / 100
	volume := math.Round((m.state.Volume+float64(direction)*step)*100) / 100
	volume = math.Max(0, math.Min(1, volume))

	if err := m.audioEngine.SetVolume(volume); err != nil {
		m.err = err
		return
	}
	m.updatePrefs(func(p *prefs.Prefs) { p.Volume = volume })
	m.showOSD(fmt.Sprintf("Volume: %d%%", int(volume*100+0.5)))
}

func (m *Model) adjustRate(delta float64) {
	rate := math.Max(audio.MinRate, math.Min(audio.MaxRate, m.state.Rate+delta))
	if err := m.audioEngine.SetRate(rate); err != nil {
		m.err = err
		return
	}
	m.updatePrefs(func(p *prefs.Prefs) { p.PlaybackRate = rate })
	m.showOSD(fmt.Sprintf("Speed: %gx", rate))
}

func (m *Model) adjustSubtitleDelay(delta time.Duration) {
	delay := m.session.Prefs().SubtitleDelay() + delta
	m.updatePrefs(func(p *prefs.Prefs) { p.SubtitleDelayMs = delay.Milliseconds() })
	m.showOSD(fmt.Sprintf("Subtitle delay: %dms", delay.Milliseconds()))
}

func (m *Model) updatePrefs(mutate func(p *prefs.Prefs)) {
	if err := m.session.Update(mutate); err != nil {
		m.err = err
	}
}

// playSelected queues the active list and plays the highlighted track
func (m *Model) playSelected() {
	var tracks []*api.Track
	var selected *api.Track

	switch m.activeView {
	case ViewLibrary:
		tracks, selected = m.libraryView.Tracks(), m.libraryView.SelectedTrack()
	case ViewPlaylist:
		if pl := m.playlistView.SelectedPlaylist(); pl != nil && m.playlistManager != nil {
			loaded, err := m.playlistManager.Tracks(pl.ID)
			if err != nil {
				m.err = err
				return
			}
			tracks = loaded
			selected = m.playlistView.SelectedTrack()
			if selected == nil && len(tracks) > 0 {
				selected = tracks[0]
			}
		}
	}
	if selected == nil {
		return
	}

	m.queue.Set(tracks)
	for i, t := range tracks {
		if t.ID != selected.ID {
			continue
		}
		track, err := m.queue.JumpTo(i)
		if err != nil {
			m.err = err
			return
		}
		if m.session.Prefs().Shuffle {
			m.queue.Shuffle()
		}
		m.play(track)
		return
	}
}

func (m *Model) addToFavorites(track *api.Track) {
	if track == nil || m.playlistManager == nil {
		return
	}

	var favorites *api.Playlist
	for _, pl := range m.playlistManager.GetAll() {
		if pl.Name == favoritesName {
			favorites = pl
			break
		}
	}
	if favorites == nil {
		created, err := m.playlistManager.Create(favoritesName, "")
		if err != nil {
			m.err = err
			return
		}
		favorites = created
	}

	if err := m.playlistManager.AddTrack(favorites.ID, track); err != nil {
		m.err = err
		return
	}
	m.playlistView.SetPlaylists(m.playlistManager.GetAll())
	m.showOSD("Added to " + favoritesName)
}

func (m *Model) removeFromPlaylist() {
	pl, track := m.playlistView.Current, m.playlistView.SelectedTrack()
	if pl == nil || track == nil || m.playlistManager == nil {
		return
	}
	if err := m.playlistManager.RemoveTrack(pl.ID, track.ID); err != nil {
		m.logger.Warn("remove from playlist", zap.String("playlist", pl.ID), zap.Error(err))
		m.err = err
		return
	}
	m.playlistView.SetPlaylists(m.playlistManager.GetAll())
}

func repeatLabel(mode api.RepeatMode) string {
	switch mode {
	case api.RepeatOne:
		return "one"
	case api.RepeatAll:
		return "all"
	}
	return "off"
}

func formatSigned(d time.Duration) string {
	if d < 0 {
		return fmt.Sprintf("-%ds", int(-d/time.Second))
	}
	return fmt.Sprintf("+%ds", int(d/time.Second))
}
