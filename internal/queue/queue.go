// Package queue implements the play queue: ordered tracks, a current
// position, shuffle and repeat. Displays get a bounded snapshot of it built
// with the window package.
package queue

import (
	"math/rand"
	"sync"
	"time"

	"github.com/danfragoso/orpheus/internal/library"
	"github.com/danfragoso/orpheus/internal/window"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	}
	return "off"
}

// ParseRepeat converts the String form of a mode back.
func ParseRepeat(s string) (RepeatMode, error) {
	switch s {
	case "off":
		return RepeatOff, nil
	case "all":
		return RepeatAll, nil
	case "one":
		return RepeatOne, nil
	}
	return RepeatOff, errors.Errorf("unknown repeat mode %q, expecting off, all or one", s)
}

type (
	// Queue is safe for concurrent use.
	Queue struct {
		mu     sync.Mutex
		tracks []*library.Track
		// pos is the position in play order: an index into order when
		// shuffling, into tracks otherwise.
		pos     int
		shuffle bool
		order   []int
		repeat  RepeatMode
		rnd     *rand.Rand
		logger  *zap.Logger
	}

	// Snapshot is the bounded view of the queue handed to displays.
	Snapshot struct {
		Tracks []*library.Track
		// Offset is the queue index of Tracks[0].
		Offset int
		Total  int
		// Current is the queue index of the current track, -1 for an empty queue.
		Current int
		Shuffle bool
		Repeat  RepeatMode
	}
)

func New(logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
}

// PlayFrom replaces the queue with tracks, starting at idx.
func (q *Queue) PlayFrom(tracks []*library.Track, idx int) bool {
	if len(tracks) == 0 || idx < 0 || idx >= len(tracks) {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	q.tracks = make([]*library.Track, len(tracks))
	copy(q.tracks, tracks)
	q.moveTo(idx)
	return true
}

// ShuffleAll replaces the queue with tracks, turns shuffle on and starts at
// a random track.
func (q *Queue) ShuffleAll(tracks []*library.Track) bool {
	if len(tracks) == 0 {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	q.tracks = make([]*library.Track, len(tracks))
	copy(q.tracks, tracks)
	q.shuffle = true
	q.moveTo(q.rnd.Intn(len(q.tracks)))
	return true
}

// Add appends a track. It returns true when the queue was empty and the
// track became the current one.
func (q *Queue) Add(track *library.Track) bool {
	return q.AddAll([]*library.Track{track})
}

// AddAll appends tracks, see Add.
func (q *Queue) AddAll(tracks []*library.Track) bool {
	if len(tracks) == 0 {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	started := len(q.tracks) == 0
	cur := q.trackIndex()
	q.tracks = append(q.tracks, tracks...)
	if started {
		cur = 0
	}
	q.moveTo(cur)
	return started
}

// Remove drops the track at queue index idx. When the current track is
// removed the one after it becomes current; the returned flag reports that.
func (q *Queue) Remove(idx int) (currentChanged bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if idx < 0 || idx >= len(q.tracks) {
		return false
	}
	if len(q.tracks) == 1 {
		q.clear()
		return true
	}

	cur := q.trackIndex()
	q.tracks = append(q.tracks[:idx], q.tracks[idx+1:]...)
	switch {
	case idx < cur:
		cur--
	case idx == cur:
		currentChanged = true
		if cur >= len(q.tracks) {
			cur = len(q.tracks) - 1
		}
	}
	q.moveTo(cur)
	return currentChanged
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.clear()
	q.mu.Unlock()
}

func (q *Queue) clear() {
	q.tracks = nil
	q.pos = 0
	q.order = nil
}

// Current returns the current track, nil for an empty queue.
func (q *Queue) Current() *library.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current()
}

// CurrentIndex returns the queue index of the current track, -1 if empty.
func (q *Queue) CurrentIndex() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tracks) == 0 {
		return -1
	}
	return q.trackIndex()
}

// Next advances to the following track. At the end of the queue it wraps
// around on RepeatAll and otherwise stays on the last track and returns nil,
// meaning playback stops.
func (q *Queue) Next() *library.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.advance()
}

// TrackEnded is Next, except that RepeatOne replays the current track.
func (q *Queue) TrackEnded() *library.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.repeat == RepeatOne {
		return q.current()
	}
	return q.advance()
}

// Prev steps back one track; at the start it wraps on RepeatAll and stays
// on the first track otherwise.
func (q *Queue) Prev() *library.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tracks) == 0 {
		return nil
	}
	q.pos--
	if q.pos < 0 {
		if q.repeat == RepeatAll {
			q.pos = len(q.tracks) - 1
		} else {
			q.pos = 0
		}
	}
	return q.current()
}

// Jump makes the track at queue index idx current.
func (q *Queue) Jump(idx int) *library.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	if idx < 0 || idx >= len(q.tracks) {
		return nil
	}
	q.moveTo(idx)
	return q.current()
}

// ToggleShuffle flips shuffling. The current track stays current.
func (q *Queue) ToggleShuffle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	cur := q.trackIndex()
	q.shuffle = !q.shuffle
	q.order = nil
	if len(q.tracks) > 0 {
		q.moveTo(cur)
	}
	return q.shuffle
}

// CycleRepeat steps off -> all -> one -> off and returns the new mode.
func (q *Queue) CycleRepeat() RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.repeat = (q.repeat + 1) % 3
	return q.repeat
}

func (q *Queue) SetRepeat(m RepeatMode) {
	q.mu.Lock()
	q.repeat = m
	q.mu.Unlock()
}

func (q *Queue) Repeat() RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.repeat
}

func (q *Queue) Shuffle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.shuffle
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tracks)
}

// Tracks returns a copy of the queue in queue order.
func (q *Queue) Tracks() []*library.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	res := make([]*library.Track, len(q.tracks))
	copy(res, q.tracks)
	return res
}

// Contains reports whether a track with the given path is queued.
func (q *Queue) Contains(path string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, t := range q.tracks {
		if t.Path == path {
			return true
		}
	}
	return false
}

// Snapshot returns at most max tracks of the queue around the current one.
func (q *Queue) Snapshot(max int) Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := Snapshot{Total: len(q.tracks), Current: -1, Shuffle: q.shuffle, Repeat: q.repeat}
	if len(q.tracks) == 0 {
		return s
	}
	s.Current = q.trackIndex()
	view := window.Clamp(q.tracks, s.Current, max)
	s.Offset, _ = window.Bounds(len(q.tracks), s.Current, max)
	s.Tracks = make([]*library.Track, len(view))
	copy(s.Tracks, view)
	return s
}

func (q *Queue) advance() *library.Track {
	if len(q.tracks) == 0 {
		return nil
	}
	q.pos++
	if q.pos >= len(q.tracks) {
		if q.repeat != RepeatAll {
			q.pos = len(q.tracks) - 1
			return nil
		}
		q.pos = 0
	}
	return q.current()
}

func (q *Queue) current() *library.Track {
	if len(q.tracks) == 0 {
		return nil
	}
	return q.tracks[q.trackIndex()]
}

// trackIndex maps the play position to a queue index.
func (q *Queue) trackIndex() int {
	if q.pos < 0 || q.pos >= len(q.tracks) {
		return 0
	}
	if q.shuffle && len(q.order) == len(q.tracks) {
		return q.order[q.pos]
	}
	return q.pos
}

// moveTo makes queue index idx current. When shuffling it deals a new play
// order starting with idx.
func (q *Queue) moveTo(idx int) {
	if !q.shuffle {
		q.order = nil
		q.pos = idx
		return
	}
	q.order = q.shuffleOrder(idx)
	q.pos = 0
}

func (q *Queue) shuffleOrder(first int) []int {
	order := q.rnd.Perm(len(q.tracks))
	for i, v := range order {
		if v == first {
			order[0], order[i] = order[i], order[0]
			break
		}
	}
	return order
}
