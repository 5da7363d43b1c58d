package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jscyril/movix/api"
	"github.com/jscyril/movix/internal/ui/components"
)

// PlaylistView lists the saved playlists and the tracks of an open one
type PlaylistView struct {
	Width       int
	Height      int
	TrackList   components.TrackList
	Playlists   []*api.Playlist
	Current     *api.Playlist
	ShowingList bool // playlists rather than tracks
	Selected    int
	BorderStyle lipgloss.Style
	TitleStyle  lipgloss.Style
}

// NewPlaylistView creates a new playlist view
func NewPlaylistView(width, height int) PlaylistView {
	trackList := components.NewTrackList(height-8, width-6)
	trackList.Title = "📋 Playlist"

	return PlaylistView{
		Width:       width,
		Height:      height,
		TrackList:   trackList,
		Playlists:   make([]*api.Playlist, 0),
		ShowingList: true,
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
	}
}

// SetSize resizes the view
func (v *PlaylistView) SetSize(width, height int) {
	v.Width = width
	v.Height = height
	v.TrackList.Width = width - 6
	v.TrackList.Height = height - 8
}

// SetPlaylists replaces the playlists. An open playlist is refreshed
// from the new set, or closed when it no longer exists.
func (v *PlaylistView) SetPlaylists(playlists []*api.Playlist) {
	v.Playlists = playlists
	if v.Selected >= len(playlists) {
		v.Selected = len(playlists) - 1
	}
	if v.Selected < 0 {
		v.Selected = 0
	}

	if v.Current == nil {
		return
	}
	for _, pl := range playlists {
		if pl.ID == v.Current.ID {
			v.open(pl)
			return
		}
	}
	v.ShowingList = true
	v.Current = nil
}

func (v *PlaylistView) open(playlist *api.Playlist) {
	v.Current = playlist
	v.ShowingList = false
	tracks := make([]*api.Track, len(playlist.Tracks))
	for i := range playlist.Tracks {
		track := playlist.Tracks[i]
		tracks[i] = &track
	}
	v.TrackList.SetItems(tracks)
	v.TrackList.Title = "📋 " + playlist.Name
}

// Update handles messages
func (v PlaylistView) Update(msg tea.Msg) (PlaylistView, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	if v.ShowingList {
		switch key.String() {
		case "up", "k":
			if v.Selected > 0 {
				v.Selected--
			}
		case "down", "j":
			if v.Selected < len(v.Playlists)-1 {
				v.Selected++
			}
		case "right":
			if v.Selected < len(v.Playlists) {
				v.open(v.Playlists[v.Selected])
			}
		}
		return v, nil
	}

	switch key.String() {
	case "backspace", "esc":
		v.ShowingList = true
		v.Current = nil
	default:
		v.TrackList, _ = v.TrackList.Update(key)
	}
	return v, nil
}

// SelectedTrack returns the track under the cursor of an open playlist
func (v *PlaylistView) SelectedTrack() *api.Track {
	if v.ShowingList {
		return nil
	}
	return v.TrackList.SelectedItem()
}

// SelectedPlaylist returns the highlighted or open playlist
func (v *PlaylistView) SelectedPlaylist() *api.Playlist {
	if !v.ShowingList {
		return v.Current
	}
	if v.Selected < len(v.Playlists) {
		return v.Playlists[v.Selected]
	}
	return nil
}

// Tracks returns the tracks of the open playlist
func (v *PlaylistView) Tracks() []*api.Track {
	if v.ShowingList {
		return nil
	}
	return v.TrackList.Items
}

// View renders the playlist view
func (v PlaylistView) View() string {
	var sb strings.Builder
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	if v.ShowingList {
		sb.WriteString(v.TitleStyle.Render("📋 Playlists"))
		sb.WriteString("\n\n")

		if len(v.Playlists) == 0 {
			sb.WriteString(muted.Render("No playlists yet. Press [f] on a library track to start Favorites."))
		} else {
			selectedStyle := lipgloss.NewStyle().
				Background(lipgloss.Color("62")).
				Foreground(lipgloss.Color("230")).
				Bold(true).
				Padding(0, 1)
			normalStyle := lipgloss.NewStyle().Padding(0, 1)

			for i, pl := range v.Playlists {
				line := pl.Name
				if pl.Description != "" {
					line += " - " + pl.Description
				}
				line += muted.Render(fmt.Sprintf(" (%d tracks)", len(pl.Tracks)))

				if i == v.Selected {
					sb.WriteString(selectedStyle.Render(line))
				} else {
					sb.WriteString(normalStyle.Render(line))
				}
				sb.WriteString("\n")
			}
		}

		sb.WriteString("\n")
		sb.WriteString(muted.Render("[Enter] Play  [→] Open  [↑↓] Navigate"))
	} else {
		sb.WriteString(v.TrackList.View())
		sb.WriteString("\n\n")
		sb.WriteString(muted.Render("[Backspace/Esc] Back  [Enter] Play  [d] Remove  [↑↓] Navigate"))
	}

	return v.BorderStyle.Width(v.Width - 4).Render(sb.String())
}
