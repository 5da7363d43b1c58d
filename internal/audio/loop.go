package audio

import (
	"fmt"
	"time"
)

// ABLoop repeats the section between two points of a track
type ABLoop struct {
	a, b       time.Duration
	hasA, hasB bool
}

// Toggle advances the loop: the first call sets A, the second sets B
// (which must come after A), the third clears both. It returns a message
// for the on-screen display.
func (l *ABLoop) Toggle(position time.Duration) string {
	switch {
	case !l.hasA:
		l.a, l.hasA = position, true
		return fmt.Sprintf("Loop point A set: %ds", int(position.Seconds()))
	case !l.hasB:
		if position <= l.a {
			return "Point B must be after point A"
		}
		l.b, l.hasB = position, true
		return fmt.Sprintf("A-B Loop: %ds - %ds", int(l.a.Seconds()), int(l.b.Seconds()))
	default:
		l.Clear()
		return "A-B Loop cleared"
	}
}

// Clear removes both points
func (l *ABLoop) Clear() {
	*l = ABLoop{}
}

// Active reports whether both points are set
func (l *ABLoop) Active() bool {
	return l.hasA && l.hasB
}

// Points returns the loop points and which of them are set
func (l *ABLoop) Points() (a, b time.Duration, hasA, hasB bool) {
	return l.a, l.b, l.hasA, l.hasB
}

// Check returns the position to seek to when playback has reached B
func (l *ABLoop) Check(position time.Duration) (time.Duration, bool) {
	if l.Active() && position >= l.b {
		return l.a, true
	}
	return 0, false
}
