package queue

import (
	"encoding/json"
	"os"

	"github.com/danfragoso/orpheus/internal/library"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// State is the persisted form of a queue. Tracks are stored by path and
// resolved against the library on restore.
type State struct {
	TrackPaths   []string   `json:"track_paths"`
	CurrentIndex int        `json:"current_index"`
	Position     float64    `json:"position"`
	Shuffle      bool       `json:"shuffle"`
	ShuffleOrder []int      `json:"shuffle_order,omitempty"`
	Repeat       RepeatMode `json:"repeat"`
}

// SaveState writes the queue and the playback position within the current
// track to path. An empty queue removes a stale file instead.
func (q *Queue) SaveState(path string, position float64) error {
	q.mu.Lock()
	if len(q.tracks) == 0 {
		q.mu.Unlock()
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "remove playback state %s", path)
		}
		return nil
	}

	st := State{
		TrackPaths:   make([]string, len(q.tracks)),
		CurrentIndex: q.trackIndex(),
		Position:     position,
		Shuffle:      q.shuffle,
		Repeat:       q.repeat,
	}
	for i, t := range q.tracks {
		st.TrackPaths[i] = t.Path
	}
	if q.shuffle && len(q.order) == len(q.tracks) {
		// the unplayed part of the order, current first
		st.ShuffleOrder = append([]int(nil), q.order[q.pos:]...)
	}
	q.mu.Unlock()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal playback state")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "write playback state %s", path)
	}
	return nil
}

// RestoreState loads a state written by SaveState. Tracks no longer in the
// library are dropped and the indexes remapped. It returns the saved
// position; a missing file is not an error and leaves the queue untouched.
func (q *Queue) RestoreState(path string, lib *library.Library) (float64, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "read playback state %s", path)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return 0, errors.Wrapf(err, "parse playback state %s", path)
	}

	tracks := make([]*library.Track, 0, len(st.TrackPaths))
	remap := make(map[int]int, len(st.TrackPaths))
	for old, p := range st.TrackPaths {
		if t, ok := lib.TracksByPath[p]; ok {
			remap[old] = len(tracks)
			tracks = append(tracks, t)
		}
	}
	if len(tracks) == 0 {
		q.logger.Warn("no saved queue tracks found in library", zap.Int("saved", len(st.TrackPaths)))
		return 0, nil
	}

	cur, ok := remap[st.CurrentIndex]
	position := st.Position
	if !ok {
		cur = 0
		position = 0
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.tracks = tracks
	q.repeat = st.Repeat
	q.shuffle = st.Shuffle
	q.order = nil
	q.pos = cur
	if q.shuffle {
		order := make([]int, 0, len(tracks))
		seen := make(map[int]bool, len(tracks))
		for _, old := range st.ShuffleOrder {
			if i, ok := remap[old]; ok && !seen[i] {
				order = append(order, i)
				seen[i] = true
			}
		}
		if len(order) > 0 && order[0] == cur {
			// tracks already played before the save go to the end
			for i := range tracks {
				if !seen[i] {
					order = append(order, i)
				}
			}
			q.order = order
			q.pos = 0
		} else {
			q.moveTo(cur)
		}
	}

	q.logger.Info("restored playback state",
		zap.Int("tracks", len(tracks)), zap.String("current", tracks[cur].Title), zap.Float64("position", position))
	return position, nil
}
