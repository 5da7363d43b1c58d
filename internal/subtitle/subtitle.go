// Package subtitle parses SubRip, WebVTT and SubStation Alpha subtitle
// files into timed captions and answers which caption is on screen at a
// given playback position.
package subtitle

import (
	"time"
)

// Caption is a single timed subtitle entry. The range [Start, End] is
// inclusive. Text may contain embedded line breaks.
type Caption struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Format identifies the parser used for a subtitle file
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// Track is one loaded subtitle file. A new file replaces the whole track.
type Track struct {
	Name     string
	Format   Format
	Captions []Caption
}

// Len returns the number of captions in the track
func (t *Track) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Captions)
}

// At returns the caption active at position+delay. A positive delay brings
// captions forward, a negative one holds them back.
func (t *Track) At(position, delay time.Duration) (Caption, bool) {
	if t == nil {
		return Caption{}, false
	}
	return Lookup(t.Captions, position+delay)
}

// Lookup returns the first caption, in file order, whose inclusive range
// contains at. Overlapping and unsorted captions are allowed.
func Lookup(captions []Caption, at time.Duration) (Caption, bool) {
	for _, c := range captions {
		if at >= c.Start && at <= c.End {
			return c, true
		}
	}
	return Caption{}, false
}
