package playlist

import (
	"math/rand"
	"sync"
	"time"

	"github.com/jscyril/movix/api"
	playerrors "github.com/jscyril/movix/pkg/errors"
)

// RestartThreshold is how far into a track "previous" restarts it instead
// of going back
const RestartThreshold = 3 * time.Second

// Queue is the playback queue. While shuffled it keeps the original order
// so unshuffling returns to it.
type Queue struct {
	mu         sync.RWMutex
	tracks     []*api.Track
	original   []*api.Track
	index      int
	repeatMode api.RepeatMode
	rng        *rand.Rand
}

// NewQueue creates a new empty queue
func NewQueue() *Queue {
	return &Queue{
		index: -1,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Add appends tracks and returns the play-order index of the earliest one
// added. While shuffled, each new track lands at a random spot after the
// current one.
func (q *Queue) Add(tracks ...*api.Track) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	first := len(q.tracks)
	if q.original != nil {
		q.original = append(q.original, tracks...)
		for _, t := range tracks {
			pos := q.index + 1 + q.rng.Intn(len(q.tracks)-q.index)
			q.tracks = append(q.tracks, nil)
			copy(q.tracks[pos+1:], q.tracks[pos:])
			q.tracks[pos] = t
			if pos < first {
				first = pos
			}
		}
		return first
	}
	q.tracks = append(q.tracks, tracks...)
	return first
}

// Set replaces the entire queue with new tracks
func (q *Queue) Set(tracks []*api.Track) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.tracks = make([]*api.Track, len(tracks))
	copy(q.tracks, tracks)
	q.original = nil
	q.index = -1
}

// Clear removes all tracks from the queue
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.tracks = nil
	q.original = nil
	q.index = -1
}

// Current returns the current track
func (q *Queue) Current() *api.Track {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.current()
}

func (q *Queue) current() *api.Track {
	if q.index < 0 || q.index >= len(q.tracks) {
		return nil
	}
	return q.tracks[q.index]
}

// Next skips to the following track. At the end of the queue it wraps
// around unless repeat is off, in which case it returns nil.
func (q *Queue) Next() *api.Track {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tracks) == 0 {
		return nil
	}
	if q.index+1 < len(q.tracks) {
		q.index++
		return q.tracks[q.index]
	}
	if q.repeatMode == api.RepeatNone {
		return nil
	}
	q.index = 0
	return q.tracks[q.index]
}

// Advance picks the track to play after the current one finished.
// Repeat-one replays the current track.
func (q *Queue) Advance() *api.Track {
	q.mu.RLock()
	if q.repeatMode == api.RepeatOne {
		defer q.mu.RUnlock()
		return q.current()
	}
	q.mu.RUnlock()
	return q.Next()
}

// Previous goes back one track, wrapping to the end. When the current
// track has played past RestartThreshold it is restarted instead, and
// restart is true.
func (q *Queue) Previous(position time.Duration) (track *api.Track, restart bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tracks) == 0 {
		return nil, false
	}
	if position > RestartThreshold && q.current() != nil {
		return q.current(), true
	}

	q.index--
	if q.index < 0 {
		q.index = len(q.tracks) - 1
	}
	return q.tracks[q.index], false
}

// JumpTo jumps to a specific index. An empty queue returns ErrEmptyQueue.
func (q *Queue) JumpTo(index int) (*api.Track, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tracks) == 0 {
		return nil, playerrors.ErrEmptyQueue
	}
	if index < 0 || index >= len(q.tracks) {
		return nil, playerrors.ErrTrackNotFound
	}

	q.index = index
	return q.tracks[index], nil
}

// Remove removes the track with id. When the current track is removed the
// one that takes its place becomes current.
func (q *Queue) Remove(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	pos := indexOf(q.tracks, id)
	if pos < 0 {
		return playerrors.ErrTrackNotFound
	}

	q.tracks = append(q.tracks[:pos], q.tracks[pos+1:]...)
	if i := indexOf(q.original, id); i >= 0 {
		q.original = append(q.original[:i], q.original[i+1:]...)
	}

	switch {
	case len(q.tracks) == 0:
		q.index = -1
	case pos < q.index:
		q.index--
	case q.index >= len(q.tracks):
		q.index = len(q.tracks) - 1
	}
	return nil
}

// Shuffle shuffles the queue (Fisher-Yates algorithm), keeping the current
// track first
func (q *Queue) Shuffle() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tracks) <= 1 {
		return
	}

	// Save original order if not already shuffled
	if q.original == nil {
		q.original = make([]*api.Track, len(q.tracks))
		copy(q.original, q.tracks)
	}

	current := q.current()
	q.rng.Shuffle(len(q.tracks), func(i, j int) {
		q.tracks[i], q.tracks[j] = q.tracks[j], q.tracks[i]
	})

	if current == nil {
		return
	}
	for i, track := range q.tracks {
		if track == current {
			q.tracks[0], q.tracks[i] = q.tracks[i], q.tracks[0]
			break
		}
	}
	q.index = 0
}

// Unshuffle restores original order
func (q *Queue) Unshuffle() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.original == nil {
		return
	}

	current := q.current()
	q.tracks = q.original
	q.original = nil

	q.index = -1
	for i, track := range q.tracks {
		if track == current {
			q.index = i
			break
		}
	}
}

// ToggleShuffle flips shuffling and reports whether the queue is now
// shuffled
func (q *Queue) ToggleShuffle() bool {
	if q.IsShuffled() {
		q.Unshuffle()
		return false
	}
	q.Shuffle()
	return q.IsShuffled()
}

// SetRepeatMode sets the repeat mode
func (q *Queue) SetRepeatMode(mode api.RepeatMode) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.repeatMode = mode
}

// CycleRepeat steps none -> all -> one -> none and returns the new mode
func (q *Queue) CycleRepeat() api.RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch q.repeatMode {
	case api.RepeatNone:
		q.repeatMode = api.RepeatAll
	case api.RepeatAll:
		q.repeatMode = api.RepeatOne
	default:
		q.repeatMode = api.RepeatNone
	}
	return q.repeatMode
}

// GetRepeatMode returns the current repeat mode
func (q *Queue) GetRepeatMode() api.RepeatMode {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.repeatMode
}

// IsShuffled returns whether the queue is shuffled
func (q *Queue) IsShuffled() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.original != nil
}

// GetAll returns a copy of all tracks in play order
func (q *Queue) GetAll() []*api.Track {
	q.mu.RLock()
	defer q.mu.RUnlock()

	result := make([]*api.Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Len returns the number of tracks in the queue
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.tracks)
}

// Index returns the current index, -1 before anything was played
func (q *Queue) Index() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.index
}

// HasNext returns true if Next would return a track
func (q *Queue) HasNext() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.repeatMode != api.RepeatNone {
		return len(q.tracks) > 0
	}
	return q.index < len(q.tracks)-1
}

func indexOf(tracks []*api.Track, id string) int {
	for i, t := range tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
