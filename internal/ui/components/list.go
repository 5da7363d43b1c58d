package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jscyril/movix/api"
)

// TrackList represents a scrollable list of tracks
type TrackList struct {
	Items       []*api.Track
	Selected    int
	Height      int
	Width       int
	Offset      int
	Title       string
	ShowNumbers bool
	// PlayingID marks the track currently loaded in the player
	PlayingID string

	SelectedStyle lipgloss.Style
	NormalStyle   lipgloss.Style
	PlayingStyle  lipgloss.Style
	TitleStyle    lipgloss.Style
}

// NewTrackList creates a new track list
func NewTrackList(height, width int) TrackList {
	return TrackList{
		Items:  make([]*api.Track, 0),
		Height: height,
		Width:  width,
		SelectedStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Bold(true).
			Padding(0, 1),
		NormalStyle: lipgloss.NewStyle().
			Padding(0, 1),
		PlayingStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Padding(0, 1),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1),
		ShowNumbers: true,
	}
}

// SetItems replaces the list items and keeps the selection in range
func (l *TrackList) SetItems(items []*api.Track) {
	l.Items = items
	if l.Selected >= len(items) {
		l.Selected = len(items) - 1
	}
	if l.Selected < 0 {
		l.Selected = 0
	}
	l.Offset = 0
	l.ensureVisible()
}

// Update handles messages for the track list
func (l TrackList) Update(msg tea.Msg) (TrackList, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		case "home":
			l.Selected = 0
			l.Offset = 0
		case "end":
			if len(l.Items) > 0 {
				l.Selected = len(l.Items) - 1
				l.ensureVisible()
			}
		case "pgup":
			l.PageUp()
		case "pgdown":
			l.PageDown()
		}
	}
	return l, nil
}

// MoveUp moves selection up
func (l *TrackList) MoveUp() {
	if l.Selected > 0 {
		l.Selected--
		l.ensureVisible()
	}
}

// MoveDown moves selection down
func (l *TrackList) MoveDown() {
	if l.Selected < len(l.Items)-1 {
		l.Selected++
		l.ensureVisible()
	}
}

// PageUp moves selection up by a page
func (l *TrackList) PageUp() {
	l.Selected -= l.visibleHeight()
	if l.Selected < 0 {
		l.Selected = 0
	}
	l.ensureVisible()
}

// PageDown moves selection down by a page
func (l *TrackList) PageDown() {
	l.Selected += l.visibleHeight()
	if l.Selected >= len(l.Items) {
		l.Selected = len(l.Items) - 1
	}
	if l.Selected < 0 {
		l.Selected = 0
	}
	l.ensureVisible()
}

func (l *TrackList) visibleHeight() int {
	h := l.Height - 2 // title and counter
	if h < 1 {
		return 1
	}
	return h
}

// ensureVisible ensures the selected item is visible
func (l *TrackList) ensureVisible() {
	visible := l.visibleHeight()
	if l.Selected < l.Offset {
		l.Offset = l.Selected
	} else if l.Selected >= l.Offset+visible {
		l.Offset = l.Selected - visible + 1
	}
}

// SelectedItem returns the currently selected track
func (l *TrackList) SelectedItem() *api.Track {
	if l.Selected >= 0 && l.Selected < len(l.Items) {
		return l.Items[l.Selected]
	}
	return nil
}

// View renders the track list
func (l TrackList) View() string {
	var sb strings.Builder

	if l.Title != "" {
		sb.WriteString(l.TitleStyle.Render(l.Title))
		sb.WriteString("\n")
	}

	if len(l.Items) == 0 {
		sb.WriteString(l.NormalStyle.Render("No tracks"))
		return sb.String()
	}

	visible := l.visibleHeight()
	end := l.Offset + visible
	if end > len(l.Items) {
		end = len(l.Items)
	}

	for i := l.Offset; i < end; i++ {
		line := l.formatLine(i)

		switch {
		case i == l.Selected:
			sb.WriteString(l.SelectedStyle.Render(line))
		case l.PlayingID != "" && l.Items[i].ID == l.PlayingID:
			sb.WriteString(l.PlayingStyle.Render(line))
		default:
			sb.WriteString(l.NormalStyle.Render(line))
		}

		if i < end-1 {
			sb.WriteString("\n")
		}
	}

	if len(l.Items) > visible {
		sb.WriteString("\n")
		sb.WriteString(l.NormalStyle.Render(fmt.Sprintf("  [%d/%d]", l.Selected+1, len(l.Items))))
	}

	return sb.String()
}

func (l TrackList) formatLine(i int) string {
	track := l.Items[i]

	marker := " "
	if l.PlayingID != "" && track.ID == l.PlayingID {
		marker = "♪"
	}

	name := Truncate(track.Title, 30)
	if track.Artist != "" {
		name = Truncate(track.Artist, 20) + " - " + name
	}

	var line string
	if l.ShowNumbers {
		line = fmt.Sprintf("%s%3d. %s", marker, i+1, name)
	} else {
		line = marker + " " + name
	}
	if track.Duration > 0 {
		line += "  " + FormatDuration(track.Duration)
	}

	return Truncate(line, l.Width-2)
}

// Truncate shortens s to at most maxLen runes, ending with "..."
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if maxLen <= 0 {
		return ""
	}
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
