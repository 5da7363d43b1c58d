package ui

import (
	"fmt"
	"time"

	"github.com/jscyril/movix/api"
)

// sleepPresets are the durations the sleep timer key cycles through
var sleepPresets = []time.Duration{
	5 * time.Minute,
	10 * time.Minute,
	15 * time.Minute,
	20 * time.Minute,
	30 * time.Minute,
	45 * time.Minute,
	60 * time.Minute,
	90 * time.Minute,
	120 * time.Minute,
}

// sleepTimer pauses playback once its deadline passes. The zero value is
// off.
type sleepTimer struct {
	// step is 1 + the index of the running preset, 0 when off
	step     int
	deadline time.Time
}

// Cycle moves to the next preset, starting it from now, and turns the
// timer off after the last one. It returns the preset started, or zero.
func (s *sleepTimer) Cycle(now time.Time) time.Duration {
	s.step = (s.step + 1) % (len(sleepPresets) + 1)
	if s.step == 0 {
		s.deadline = time.Time{}
		return 0
	}
	d := sleepPresets[s.step-1]
	s.deadline = now.Add(d)
	return d
}

func (s sleepTimer) Active() bool {
	return s.step > 0
}

// Remaining is the time left, rounded up to the second
func (s sleepTimer) Remaining(now time.Time) time.Duration {
	if !s.Active() {
		return 0
	}
	left := s.deadline.Sub(now)
	if left <= 0 {
		return 0
	}
	return (left + time.Second - 1).Truncate(time.Second)
}

func (s sleepTimer) Expired(now time.Time) bool {
	return s.Active() && !now.Before(s.deadline)
}

func (s *sleepTimer) Clear() {
	*s = sleepTimer{}
}

// formatSleep renders a remaining duration as M:SS
func formatSleep(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func (m *Model) cycleSleepTimer(now time.Time) {
	if d := m.sleep.Cycle(now); d > 0 {
		m.showOSD(fmt.Sprintf("Sleep timer: %d min", int(d/time.Minute)))
		return
	}
	m.showOSD("Sleep timer off")
}

// checkSleepTimer pauses playback when the timer has run out and clears it
func (m *Model) checkSleepTimer(now time.Time) {
	if !m.sleep.Expired(now) {
		return
	}
	m.sleep.Clear()
	m.logger.Info("sleep timer expired")
	if m.state.Status != api.StatusPlaying {
		return
	}
	m.audioEngine.Pause()
	m.rememberPosition()
	m.showOSD("Sleep timer expired - Paused")
}

func (m Model) sleepLabel() string {
	if !m.sleep.Active() {
		return ""
	}
	return formatSleep(m.sleep.Remaining(time.Now()))
}
