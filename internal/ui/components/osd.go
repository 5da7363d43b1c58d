package components

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// OSDDuration is how long an on-screen message stays visible
const OSDDuration = 2 * time.Second

// OSD is a transient status message shown over the player
type OSD struct {
	Message string
	Expires time.Time
	Style   lipgloss.Style
}

// NewOSD creates an empty on-screen display
func NewOSD() OSD {
	return OSD{
		Style: lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Bold(true).
			Padding(0, 1),
	}
}

// Show displays message until OSDDuration after now. A new message
// replaces the previous one.
func (o *OSD) Show(message string, now time.Time) {
	o.Message = message
	o.Expires = now.Add(OSDDuration)
}

// Visible reports whether a message is showing at now
func (o OSD) Visible(now time.Time) bool {
	return o.Message != "" && now.Before(o.Expires)
}

// Expire drops the message once it has timed out
func (o *OSD) Expire(now time.Time) {
	if !o.Visible(now) {
		o.Message = ""
	}
}

// View renders the message, or nothing when hidden
func (o OSD) View(now time.Time) string {
	if !o.Visible(now) {
		return ""
	}
	return o.Style.Render(o.Message)
}
