package views

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jscyril/movix/api"
	"github.com/jscyril/movix/internal/ui/components"
)

// FileSelectedMsg is sent when a file is picked in the file browser
type FileSelectedMsg struct {
	Path     string
	Subtitle bool
}

// TrackSource is what the library view lists and searches
type TrackSource interface {
	GetAllTracks() []*api.Track
	Search(query string) []*api.Track
}

// LibraryView displays the media library
type LibraryView struct {
	Width       int
	Height      int
	TrackList   components.TrackList
	SearchBar   components.SearchInput
	FileBrowser components.FileBrowser
	Searching   bool
	Browsing    bool // file browser open
	SearchKey   string
	Source      TrackSource
	BorderStyle lipgloss.Style
}

// NewLibraryView creates a new library view
func NewLibraryView(source TrackSource, width, height int) LibraryView {
	trackList := components.NewTrackList(height-8, width-6)
	trackList.Title = "🎵 Library"

	v := LibraryView{
		Width:     width,
		Height:    height,
		TrackList: trackList,
		SearchBar: components.NewSearchInput(width - 6),
		SearchKey: "/",
		Source:    source,
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
	}
	v.Refresh()
	return v
}

// Refresh reloads the list from the source, keeping an active filter
func (v *LibraryView) Refresh() {
	v.filterTracks(v.SearchBar.Value())
}

// Active reports whether the view is capturing all keys
func (v *LibraryView) Active() bool {
	return v.Searching || v.Browsing
}

// SetSize resizes the view and its children
func (v *LibraryView) SetSize(width, height int) {
	v.Width = width
	v.Height = height
	v.TrackList.Width = width - 6
	v.TrackList.Height = height - 8
	v.SearchBar.Width = width - 6
	v.FileBrowser.Width = width
	v.FileBrowser.Height = height
}

// Update handles messages
func (v LibraryView) Update(msg tea.Msg) (LibraryView, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	if v.Browsing {
		switch key.String() {
		case "esc":
			v.Browsing = false
		case "enter":
			entry, picked := v.FileBrowser.EnterSelected()
			if picked {
				v.Browsing = false
				return v, func() tea.Msg {
					return FileSelectedMsg{Path: entry.Path, Subtitle: entry.Subtitle}
				}
			}
		default:
			v.FileBrowser, _ = v.FileBrowser.Update(key)
		}
		return v, nil
	}

	if v.Searching {
		switch key.String() {
		case "enter":
			v.Searching = false
			v.SearchBar.Blur()
		case "esc":
			v.Searching = false
			v.SearchBar.Blur()
			v.SearchBar.Clear()
			v.filterTracks("")
		default:
			v.SearchBar, _ = v.SearchBar.Update(key)
			v.filterTracks(v.SearchBar.Value())
		}
		return v, nil
	}

	switch key.String() {
	case v.SearchKey:
		v.Searching = true
		v.SearchBar.Focus()
	case "a":
		v.Browsing = true
		start := ""
		if v.FileBrowser.CurrentPath != "" {
			start = v.FileBrowser.CurrentPath
		}
		v.FileBrowser = components.NewFileBrowser(start, v.Width, v.Height)
	default:
		v.TrackList, _ = v.TrackList.Update(key)
	}
	return v, nil
}

func (v *LibraryView) filterTracks(query string) {
	if v.Source == nil {
		v.TrackList.SetItems(nil)
		return
	}
	if strings.TrimSpace(query) == "" {
		v.TrackList.SetItems(v.Source.GetAllTracks())
		return
	}
	v.TrackList.SetItems(v.Source.Search(query))
}

// SelectedTrack returns the currently selected track
func (v *LibraryView) SelectedTrack() *api.Track {
	return v.TrackList.SelectedItem()
}

// Tracks returns the tracks currently listed
func (v *LibraryView) Tracks() []*api.Track {
	return v.TrackList.Items
}

// View renders the library view
func (v LibraryView) View() string {
	if v.Browsing {
		return v.FileBrowser.View()
	}

	var sb strings.Builder

	sb.WriteString(v.SearchBar.View())
	sb.WriteString("\n\n")

	sb.WriteString(v.TrackList.View())

	sb.WriteString("\n\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if v.Searching {
		sb.WriteString(helpStyle.Render("[Enter] Keep filter  [Esc] Clear"))
	} else {
		sb.WriteString(helpStyle.Render("[" + v.SearchKey + "] Search  [a] Open file  [f] Add to Favorites  [Enter] Play  [↑↓] Navigate"))
	}

	return v.BorderStyle.Width(v.Width - 4).Render(sb.String())
}
