package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jscyril/movix/api"
	"github.com/jscyril/movix/internal/library"
	"github.com/jscyril/movix/internal/ui/components"
)

// PlayerView displays the current playback state
type PlayerView struct {
	Width       int
	Height      int
	State       *api.PlaybackState
	ProgressBar components.ProgressBar

	// Caption is the subtitle text on screen, empty between captions
	Caption       string
	SubtitleName  string
	SubtitleDelay time.Duration
	Loop          string
	Equalizer     string
	// Sleep is the sleep timer's remaining time, empty when off
	Sleep   string
	Markers []api.Marker
	OSD     string
	Info          *library.MediaInfo

	// Styles
	TitleStyle    lipgloss.Style
	ArtistStyle   lipgloss.Style
	AlbumStyle    lipgloss.Style
	StatusStyle   lipgloss.Style
	CaptionStyle  lipgloss.Style
	DimStyle      lipgloss.Style
	ControlsStyle lipgloss.Style
	BorderStyle   lipgloss.Style
}

// NewPlayerView creates a new player view
func NewPlayerView(width, height int) PlayerView {
	return PlayerView{
		Width:       width,
		Height:      height,
		ProgressBar: components.NewProgressBar(width - 8),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		ArtistStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
		AlbumStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true),
		StatusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		CaptionStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		DimStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
		ControlsStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1),
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
	}
}

// SetState updates the playback state
func (v *PlayerView) SetState(state *api.PlaybackState) {
	v.State = state
	if state == nil || state.CurrentTrack == nil {
		v.ProgressBar.SetProgress(0, 0)
		return
	}
	v.ProgressBar.SetProgress(state.Position, state.CurrentTrack.Duration)
}

// SetWidth resizes the view and its progress bar
func (v *PlayerView) SetWidth(width int) {
	v.Width = width
	v.ProgressBar.Width = width - 8
}

// View renders the player view
func (v PlayerView) View() string {
	var sb strings.Builder

	if v.State == nil || v.State.CurrentTrack == nil {
		sb.WriteString(v.TitleStyle.Render("♪ Nothing playing"))
		sb.WriteString("\n\n")
		sb.WriteString(v.ControlsStyle.Render("Press Enter on a track to play, or [a] in the library to open a file"))
	} else {
		track := v.State.CurrentTrack

		sb.WriteString(v.StatusStyle.Render(statusIcon(v.State.Status) + " "))
		sb.WriteString(v.TitleStyle.Render(track.Title))
		sb.WriteString("\n")
		if track.Artist != "" {
			sb.WriteString(v.ArtistStyle.Render(track.Artist))
			sb.WriteString("\n")
		}
		if track.Album != "" {
			sb.WriteString(v.AlbumStyle.Render(track.Album))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")

		sb.WriteString(v.ProgressBar.View())
		sb.WriteString("\n")

		sb.WriteString(v.CaptionStyle.Render(captionBlock(v.Caption)))
		sb.WriteString("\n\n")

		sb.WriteString(v.statusLine())
		if modes := v.modes(); modes != "" {
			sb.WriteString("\n")
			sb.WriteString(v.DimStyle.Render(modes))
		}
		if len(v.Markers) > 0 {
			sb.WriteString("\n\n")
			sb.WriteString(v.renderMarkers())
		}
	}

	if v.Info != nil {
		sb.WriteString("\n\n")
		sb.WriteString(renderInfo(v.Info, v.DimStyle))
	}

	if v.OSD != "" {
		sb.WriteString("\n\n")
		sb.WriteString(v.OSD)
	}

	sb.WriteString("\n")
	sb.WriteString(v.ControlsStyle.Render(
		"[Space] Play/Pause  [s] Stop  [n/p] Next/Prev  [←/→] Seek  [+/-] Volume  [m] Mute  [[/]] Speed  [b] A-B  [M/,/.] Markers  [T] Sleep  [i] Info  [q] Quit",
	))

	return v.BorderStyle.Width(v.Width - 4).Render(sb.String())
}

func (v PlayerView) statusLine() string {
	volume := fmt.Sprintf("Volume: %s %d%%", renderVolumeBar(v.State.Volume), int(v.State.Volume*100+0.5))
	if v.State.Muted {
		volume = "Volume: muted"
	}
	rate := fmt.Sprintf("Speed: %gx", v.State.Rate)
	return volume + "   " + rate
}

func (v PlayerView) modes() string {
	var modes []string
	switch v.State.Repeat {
	case api.RepeatOne:
		modes = append(modes, "🔂 Repeat One")
	case api.RepeatAll:
		modes = append(modes, "🔁 Repeat All")
	}
	if v.State.Shuffle {
		modes = append(modes, "🔀 Shuffle")
	}
	if v.Loop != "" {
		modes = append(modes, "A-B "+v.Loop)
	}
	if v.SubtitleName != "" {
		sub := "💬 " + v.SubtitleName
		if v.SubtitleDelay != 0 {
			sub += fmt.Sprintf(" (%+dms)", v.SubtitleDelay.Milliseconds())
		}
		modes = append(modes, sub)
	}
	if v.Equalizer != "" {
		modes = append(modes, "EQ "+v.Equalizer)
	}
	if v.Sleep != "" {
		modes = append(modes, "💤 Sleep "+v.Sleep)
	}
	return strings.Join(modes, " | ")
}

// maxMarkerRows caps the marker list; the rest are summarized
const maxMarkerRows = 5

// renderMarkers lists the markers, pointing at the last one reached
func (v PlayerView) renderMarkers() string {
	current := -1
	for i, mk := range v.Markers {
		if mk.Position <= v.State.Position {
			current = i
		}
	}

	start := 0
	if current >= maxMarkerRows {
		start = current - maxMarkerRows + 1
	}
	end := min(start+maxMarkerRows, len(v.Markers))

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Markers (%d)", len(v.Markers)))
	for i := start; i < end; i++ {
		mk := v.Markers[i]
		pointer := "  "
		if i == current {
			pointer = "▸ "
		}
		sb.WriteString(fmt.Sprintf("\n%s%s  %s", pointer, components.FormatDuration(mk.Position), mk.Title))
	}
	if rest := len(v.Markers) - end + start; rest > 0 {
		sb.WriteString(fmt.Sprintf("\n  +%d more", rest))
	}
	return v.DimStyle.Render(sb.String())
}

// captionBlock keeps the caption area two lines tall so the layout does
// not jump between captions
func captionBlock(caption string) string {
	lines := strings.Split(caption, "\n")
	for len(lines) < 2 {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func statusIcon(status api.PlaybackStatus) string {
	switch status {
	case api.StatusPlaying:
		return "▶"
	case api.StatusPaused:
		return "⏸"
	default:
		return "⏹"
	}
}

func renderInfo(info *library.MediaInfo, style lipgloss.Style) string {
	rows := [][2]string{
		{"File", info.Name},
		{"Size", info.HumanSize()},
		{"Modified", info.Age()},
		{"Format", info.Container},
	}
	if info.Duration > 0 {
		rows = append(rows, [2]string{"Duration", components.FormatDuration(info.Duration)})
	}
	if info.SampleRate > 0 {
		rows = append(rows, [2]string{"Sample rate", fmt.Sprintf("%d Hz", info.SampleRate)})
	}
	if info.TagFormat != "" {
		rows = append(rows, [2]string{"Tags", info.TagFormat})
	}
	if len(info.Subtitles) > 0 {
		rows = append(rows, [2]string{"Subtitles", fmt.Sprintf("%d found", len(info.Subtitles))})
	}

	var sb strings.Builder
	for i, row := range rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%-12s %s", row[0]+":", row[1]))
	}
	return style.Render(sb.String())
}

// renderVolumeBar renders a volume bar
func renderVolumeBar(volume float64) string {
	filled := int(volume*10 + 0.5)
	if filled > 10 {
		filled = 10
	}
	if filled < 0 {
		filled = 0
	}
	empty := 10 - filled

	filledStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	return filledStyle.Render(strings.Repeat("●", filled)) + emptyStyle.Render(strings.Repeat("○", empty))
}
