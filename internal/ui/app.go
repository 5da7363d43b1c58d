// Package ui is the bubbletea front end of the player.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jscyril/movix/api"
	"github.com/jscyril/movix/internal/audio"
	"github.com/jscyril/movix/internal/config"
	"github.com/jscyril/movix/internal/equalizer"
	"github.com/jscyril/movix/internal/history"
	"github.com/jscyril/movix/internal/library"
	"github.com/jscyril/movix/internal/playlist"
	"github.com/jscyril/movix/internal/subtitle"
	"github.com/jscyril/movix/internal/ui/components"
	"github.com/jscyril/movix/internal/ui/views"
	"github.com/jscyril/movix/pkg/events"
)

// ViewType represents the current active view
type ViewType int

const (
	ViewPlayer ViewType = iota
	ViewLibrary
	ViewPlaylist
	ViewEqualizer
	viewCount
)

// Deps are the services the UI drives
type Deps struct {
	Config    *config.Config
	Engine    *audio.AudioEngine
	Equalizer *equalizer.Engine
	Library   *library.Library
	Playlists *playlist.Manager
	History   *history.Store
	Session   *Session
	Bus       *events.EventBus
	Logger    *zap.Logger
	// Files are opened on start, as if picked in the file browser
	Files []string
}

// Model is the main bubbletea model
type Model struct {
	width  int
	height int

	activeView ViewType
	keys       config.KeyMap

	// Views
	playerView    views.PlayerView
	libraryView   views.LibraryView
	playlistView  views.PlaylistView
	equalizerView views.EqualizerView

	// Services
	audioEngine     *audio.AudioEngine
	equalizer       *equalizer.Engine
	library         *library.Library
	playlistManager *playlist.Manager
	history         *history.Store
	session         *Session
	bus             *events.EventBus
	events          <-chan api.AudioEvent
	logger          *zap.Logger
	queue           *playlist.Queue
	files           []string

	// Playback state as last reported by the engine
	state     *api.PlaybackState
	subtitles *subtitle.Track
	abLoop    *audio.ABLoop
	osd       components.OSD
	showInfo  bool
	sleep     sleepTimer
	// markers of the current track, ordered by position
	markers []api.Marker

	// pendingSubtitles is loaded when the next track starts
	pendingSubtitles string

	ctx    context.Context
	cancel context.CancelFunc
	err    error

	tabStyle       lipgloss.Style
	activeTabStyle lipgloss.Style
}

// TickMsg is sent periodically to refresh time-based UI
type TickMsg time.Time

type eventMsg api.AudioEvent

type subtitlesLoadedMsg struct {
	path  string
	track *subtitle.Track
	err   error
}

type filesOpenedMsg struct {
	tracks    []*api.Track
	subtitles string
	errs      []error
}

type positionMsg struct {
	path     string
	position time.Duration
}

type mediaInfoMsg struct {
	info *library.MediaInfo
	err  error
}

type errMsg struct{ err error }

// NewModel creates the application model and restores the saved
// preferences into the engine
func NewModel(d Deps) Model {
	ctx, cancel := context.WithCancel(context.Background())

	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := d.Config
	if cfg == nil {
		cfg = config.GetDefaultConfig()
	}

	m := Model{
		width:           80,
		height:          24,
		activeView:      ViewLibrary,
		keys:            cfg.KeyBindings,
		audioEngine:     d.Engine,
		equalizer:       d.Equalizer,
		library:         d.Library,
		playlistManager: d.Playlists,
		history:         d.History,
		session:         d.Session,
		bus:             d.Bus,
		events:          d.Bus.SubscribeAll(),
		logger:          logger,
		queue:           playlist.NewQueue(),
		files:           d.Files,
		state:           d.Engine.GetState(),
		abLoop:          &audio.ABLoop{},
		osd:             components.NewOSD(),
		ctx:             ctx,
		cancel:          cancel,
		tabStyle: lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("240")),
		activeTabStyle: lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Background(lipgloss.Color("236")),
	}
	if m.session == nil {
		m.session = NewSession(nil, defaultPrefs(cfg), logger)
	}

	m.playerView = views.NewPlayerView(m.width, 10)
	m.libraryView = views.NewLibraryView(m.library, m.width, m.height-12)
	m.libraryView.SearchKey = m.keys.Search
	m.playlistView = views.NewPlaylistView(m.width, m.height-12)
	m.equalizerView = views.NewEqualizerView(m.width, m.height-12, float64(cfg.Audio.SampleRate))
	if m.playlistManager != nil {
		m.playlistView.SetPlaylists(m.playlistManager.GetAll())
	}

	m.restorePrefs()
	return m
}

// restorePrefs pushes the saved snapshot into the engine and queue
func (m *Model) restorePrefs() {
	p := m.session.Prefs()

	if err := m.audioEngine.SetVolume(p.Volume); err != nil {
		m.logger.Warn("restore volume", zap.Float64("volume", p.Volume), zap.Error(err))
	}
	if err := m.audioEngine.SetRate(p.PlaybackRate); err != nil {
		m.logger.Warn("restore rate", zap.Float64("rate", p.PlaybackRate), zap.Error(err))
	}
	if p.Muted {
		m.audioEngine.ToggleMute()
	}
	m.queue.SetRepeatMode(p.Repeat)
	if m.equalizer != nil {
		m.equalizerView.SetState(m.equalizer.State())
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), m.listenForEvents()}
	if len(m.files) > 0 {
		cmds = append(cmds, m.openFilesCmd(m.files))
	}
	return tea.Batch(cmds...)
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// listenForEvents waits for the next engine event on the bus
func (m Model) listenForEvents() tea.Cmd {
	ch, ctx := m.events, m.ctx
	return func() tea.Msg {
		select {
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			return eventMsg(event)
		case <-ctx.Done():
			return nil
		}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewSizes()
		return m, nil

	case TickMsg:
		now := time.Time(msg)
		m.osd.Expire(now)
		m.checkSleepTimer(now)
		m.setState(m.audioEngine.GetState())
		return m, tickCmd()

	case eventMsg:
		cmd := m.handleEvent(api.AudioEvent(msg))
		return m, tea.Batch(cmd, m.listenForEvents())

	case views.FileSelectedMsg:
		if msg.Subtitle {
			return m, loadSubtitlesCmd(msg.Path)
		}
		return m, m.openFilesCmd([]string{msg.Path})

	case filesOpenedMsg:
		return m, m.handleFilesOpened(msg)

	case subtitlesLoadedMsg:
		m.handleSubtitlesLoaded(msg)
		return m, nil

	case markersLoadedMsg:
		m.handleMarkersLoaded(msg)
		return m, nil

	case positionMsg:
		if m.state.CurrentTrack != nil && m.state.CurrentTrack.FilePath == msg.path {
			m.audioEngine.Seek(msg.position)
			m.showOSD("Resumed at " + components.FormatDuration(msg.position))
		}
		return m, nil

	case mediaInfoMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.playerView.Info = msg.info
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// setState records the engine state, adding the queue modes the engine
// does not track
func (m *Model) setState(state *api.PlaybackState) {
	state.Repeat = m.queue.GetRepeatMode()
	state.Shuffle = m.queue.IsShuffled()
	m.state = state
	m.playerView.SetState(state)

	if state.CurrentTrack != nil {
		m.libraryView.TrackList.PlayingID = state.CurrentTrack.ID
		m.playlistView.TrackList.PlayingID = state.CurrentTrack.ID
	}
}

// showOSD flashes a message when the on-screen display is enabled
func (m *Model) showOSD(message string) {
	if !m.session.Prefs().Settings.ShowOSD {
		return
	}
	m.osd.Show(message, time.Now())
}

func (m *Model) updateViewSizes() {
	m.playerView.SetWidth(m.width)
	m.libraryView.SetSize(m.width, m.height-14)
	m.playlistView.SetSize(m.width, m.height-14)
	m.equalizerView.Width = m.width
	m.equalizerView.Height = m.height - 14
}

// caption returns the subtitle text for the current position
func (m Model) caption() string {
	if m.subtitles == nil || m.state == nil {
		return ""
	}
	c, ok := m.subtitles.At(m.state.Position, m.session.Prefs().SubtitleDelay())
	if !ok {
		return ""
	}
	return c.Text
}

// View renders the UI
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.renderTabs())
	sb.WriteString("\n")

	pv := m.playerView
	pv.Caption = m.caption()
	pv.OSD = m.osd.View(time.Now())
	pv.SubtitleDelay = m.session.Prefs().SubtitleDelay()
	if m.subtitles != nil {
		pv.SubtitleName = m.subtitles.Name
	}
	pv.Loop = m.loopLabel()
	pv.ProgressBar.Marks = m.progressMarks()
	pv.Markers = m.markers
	pv.Sleep = m.sleepLabel()
	if m.equalizer != nil {
		if s := m.equalizer.State(); s.Enabled {
			pv.Equalizer = equalizer.PresetLabel(s.Preset)
		}
	}
	if !m.showInfo {
		pv.Info = nil
	}

	sb.WriteString(pv.View())
	switch m.activeView {
	case ViewLibrary:
		sb.WriteString("\n")
		sb.WriteString(m.libraryView.View())
	case ViewPlaylist:
		sb.WriteString("\n")
		sb.WriteString(m.playlistView.View())
	case ViewEqualizer:
		sb.WriteString("\n")
		sb.WriteString(m.equalizerView.View())
	}

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
		sb.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return sb.String()
}

func (m Model) loopLabel() string {
	a, b, hasA, hasB := m.abLoop.Points()
	switch {
	case hasA && hasB:
		return components.FormatDuration(a) + "-" + components.FormatDuration(b)
	case hasA:
		return components.FormatDuration(a) + "-?"
	}
	return ""
}

func (m Model) loopMarks() []time.Duration {
	a, b, hasA, hasB := m.abLoop.Points()
	var marks []time.Duration
	if hasA {
		marks = append(marks, a)
	}
	if hasB {
		marks = append(marks, b)
	}
	return marks
}

// renderTabs renders the tab bar
func (m Model) renderTabs() string {
	tabs := []string{"[1] Player", "[2] Library", "[3] Playlist", "[4] Equalizer"}

	var rendered []string
	for i, tab := range tabs {
		if ViewType(i) == m.activeView {
			rendered = append(rendered, m.activeTabStyle.Render(tab))
		} else {
			rendered = append(rendered, m.tabStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// shutdown saves where the current track stopped and stops listening
func (m *Model) shutdown() {
	m.rememberPosition()
	m.cancel()
	m.bus.Unsubscribe(m.events)
}

// Run starts the bubbletea program
func Run(d Deps) error {
	model := NewModel(d)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
