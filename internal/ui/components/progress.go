package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar represents a progress bar component
type ProgressBar struct {
	Width     int
	Current   time.Duration
	Total     time.Duration
	BarChar   string
	EmptyChar string
	MarkChar  string
	ShowTime  bool
	// Marks are positions drawn on top of the bar, such as loop points
	Marks []time.Duration

	Style       lipgloss.Style
	FilledStyle lipgloss.Style
	EmptyStyle  lipgloss.Style
	MarkStyle   lipgloss.Style
}

// NewProgressBar creates a new progress bar
func NewProgressBar(width int) ProgressBar {
	return ProgressBar{
		Width:       width,
		BarChar:     "█",
		EmptyChar:   "░",
		MarkChar:    "┃",
		ShowTime:    true,
		Style:       lipgloss.NewStyle(),
		FilledStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		EmptyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		MarkStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	}
}

// SetProgress sets the current position
func (p *ProgressBar) SetProgress(current, total time.Duration) {
	p.Current = current
	p.Total = total
}

// Percent returns the played fraction in [0, 1]
func (p ProgressBar) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	percent := float64(p.Current) / float64(p.Total)
	switch {
	case percent < 0:
		return 0
	case percent > 1:
		return 1
	}
	return percent
}

// View renders the progress bar
func (p ProgressBar) View() string {
	barWidth := p.Width - 14 // time display
	if barWidth < 10 {
		barWidth = 10
	}
	filled := int(float64(barWidth) * p.Percent())

	marked := make(map[int]bool, len(p.Marks))
	if p.Total > 0 {
		for _, mark := range p.Marks {
			cell := int(float64(barWidth) * float64(mark) / float64(p.Total))
			if cell >= barWidth {
				cell = barWidth - 1
			}
			if cell >= 0 {
				marked[cell] = true
			}
		}
	}

	var sb strings.Builder
	for i := 0; i < barWidth; i++ {
		switch {
		case marked[i]:
			sb.WriteString(p.MarkStyle.Render(p.MarkChar))
		case i < filled:
			sb.WriteString(p.FilledStyle.Render(p.BarChar))
		default:
			sb.WriteString(p.EmptyStyle.Render(p.EmptyChar))
		}
	}

	if p.ShowTime {
		sb.WriteString(" ")
		sb.WriteString(FormatDuration(p.Current))
		sb.WriteString("/")
		sb.WriteString(FormatDuration(p.Total))
	}

	return p.Style.Render(sb.String())
}

// FormatDuration formats a duration as MM:SS, or H:MM:SS past an hour
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
