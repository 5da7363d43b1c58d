package views

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jscyril/movix/internal/equalizer"
)

// curvePoints is the width of the response curve, log-spaced from 20 Hz
// to 20 kHz
const curvePoints = 48

// EqualizerView shows the band sliders, preamp and the response curve
type EqualizerView struct {
	Width      int
	Height     int
	State      equalizer.State
	SampleRate float64
	// Selected is the focused slider: 0 is the preamp, 1-10 the bands
	Selected int
	// Unavailable is set when the graph could not be built
	Unavailable bool

	BorderStyle   lipgloss.Style
	TitleStyle    lipgloss.Style
	BarStyle      lipgloss.Style
	SelectedStyle lipgloss.Style
	DimStyle      lipgloss.Style
	CurveStyle    lipgloss.Style
}

// NewEqualizerView creates an equalizer view
func NewEqualizerView(width, height int, sampleRate float64) EqualizerView {
	return EqualizerView{
		Width:      width,
		Height:     height,
		State:      equalizer.DefaultState(),
		SampleRate: sampleRate,
		Selected:   1,
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		BarStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
		SelectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		DimStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		CurveStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// SetState shows a new equalizer state
func (v *EqualizerView) SetState(s equalizer.State) {
	v.State = s
}

// MoveLeft focuses the previous slider
func (v *EqualizerView) MoveLeft() {
	if v.Selected > 0 {
		v.Selected--
	}
}

// MoveRight focuses the next slider
func (v *EqualizerView) MoveRight() {
	if v.Selected < equalizer.BandCount {
		v.Selected++
	}
}

// Band returns the focused band index, or -1 when the preamp is focused
func (v *EqualizerView) Band() int {
	return v.Selected - 1
}

// SelectedGain returns the gain of the focused slider
func (v *EqualizerView) SelectedGain() float64 {
	if v.Selected == 0 {
		return v.State.Preamp
	}
	return v.State.Bands[v.Selected-1]
}

// View renders the equalizer view
func (v EqualizerView) View() string {
	var sb strings.Builder

	status := "off"
	if v.State.Enabled {
		status = "on"
	}
	title := fmt.Sprintf("🎚 Equalizer [%s]  Preset: %s", status, equalizer.PresetLabel(v.State.Preset))
	sb.WriteString(v.TitleStyle.Render(title))
	sb.WriteString("\n")
	if v.Unavailable {
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("Equalizer unavailable for this session"))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(v.sliders())
	sb.WriteString("\n\n")
	sb.WriteString(v.CurveStyle.Render(v.curve(6)))
	sb.WriteString("\n")
	sb.WriteString(v.DimStyle.Render("20Hz" + strings.Repeat(" ", max(curvePoints-9, 1)) + "20kHz"))

	sb.WriteString("\n\n")
	sb.WriteString(v.DimStyle.Render("[←→] Select  [↑↓] ±1 dB  [t] On/Off  [o] Next preset  [0] Reset"))

	return v.BorderStyle.Width(v.Width - 4).Render(sb.String())
}

// sliders renders the preamp and the ten bands as vertical bars from
// MaxGain down to MinGain
func (v EqualizerView) sliders() string {
	const rows = 9
	labels := []string{"Pre"}
	gains := []float64{v.State.Preamp}
	for i, f := range equalizer.Frequencies {
		labels = append(labels, frequencyLabel(f))
		gains = append(gains, v.State.Bands[i])
	}

	var sb strings.Builder
	span := equalizer.MaxGain - equalizer.MinGain
	for row := 0; row < rows; row++ {
		level := equalizer.MaxGain - span*float64(row)/float64(rows-1)
		sb.WriteString(v.DimStyle.Render(fmt.Sprintf("%+4.0f ", level)))
		for col, gain := range gains {
			cell := "  │  "
			switch {
			case level > 0 && level <= gain,
				level < 0 && level >= gain:
				cell = "  █  "
			case level == 0:
				cell = "──┼──"
			}
			if col == v.Selected {
				sb.WriteString(v.SelectedStyle.Render(cell))
			} else {
				sb.WriteString(v.BarStyle.Render(cell))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("     ")
	for col, label := range labels {
		cell := fmt.Sprintf("%-5s", label)
		if col == v.Selected {
			cell = v.SelectedStyle.Render(cell)
		}
		sb.WriteString(cell)
	}
	sb.WriteString("\n     ")
	for _, gain := range gains {
		sb.WriteString(fmt.Sprintf("%-5s", fmt.Sprintf("%+.0f", gain)))
	}
	return sb.String()
}

// curve plots the combined filter response in dB over height rows
func (v EqualizerView) curve(height int) string {
	rate := v.SampleRate
	if rate <= 0 {
		rate = 44100
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", curvePoints))
	}

	span := equalizer.MaxGain - equalizer.MinGain
	for x := 0; x < curvePoints; x++ {
		freq := 20 * math.Pow(1000, float64(x)/float64(curvePoints-1))
		db := equalizer.GainToDecibels(equalizer.Response(v.State, freq, rate))
		db = math.Max(equalizer.MinGain, math.Min(equalizer.MaxGain, db))
		row := int(math.Round((equalizer.MaxGain - db) / span * float64(height-1)))
		grid[row][x] = '•'
	}

	lines := make([]string, height)
	for i, line := range grid {
		lines[i] = string(line)
	}
	return strings.Join(lines, "\n")
}

func frequencyLabel(f float64) string {
	if f >= 1000 {
		return fmt.Sprintf("%gk", f/1000)
	}
	return fmt.Sprintf("%g", f)
}
