package cli

import (
	"context"
	"io"
	"strconv"

	"github.com/danfragoso/orpheus/internal/library"
	"github.com/danfragoso/orpheus/internal/queue"
	"github.com/danfragoso/orpheus/internal/source"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// withQueue restores the saved queue, runs fn on it and saves it again.
// The playback position survives only while the current track stays the same.
func (e *env) withQueue(fn func(q *queue.Queue, lib *library.Library) error) error {
	unlock, err := e.lock()
	if err != nil {
		return err
	}
	defer unlock()

	lib, err := e.loadLibrary()
	if err != nil {
		return err
	}
	q := queue.New(e.logger.Named("queue"))
	pos, err := q.RestoreState(e.cfg.PlaybackPath(), lib)
	if err != nil {
		e.logger.Warn("could not restore queue, starting empty", zap.Error(err))
		q.Clear()
		pos = 0
	}
	before := q.Current()

	if err := fn(q, lib); err != nil {
		return err
	}
	if q.Current() != before {
		pos = 0
	}
	return q.SaveState(e.cfg.PlaybackPath(), pos)
}

// resolveTracks returns the library tracks among the children of parentID.
func (e *env) resolveTracks(ctx context.Context, lib *library.Library, sourceID, parentID string) ([]*library.Track, error) {
	reg, err := e.registry(lib, "")
	if err != nil {
		return nil, err
	}
	items, err := e.browserFor(reg).All(ctx, sourceID, parentID, e.cfg.PageSize)
	if err != nil {
		return nil, err
	}

	var tracks []*library.Track
	for _, it := range items {
		if it.Kind != source.KindTrack {
			continue
		}
		t, ok := lib.TracksByPath[it.Path]
		if !ok {
			e.logger.Warn("track not in library, run scan", zap.String("path", it.Path))
			continue
		}
		tracks = append(tracks, t)
	}
	if len(tracks) == 0 {
		return nil, errors.Errorf("no library tracks in %s %q", sourceID, parentID)
	}
	return tracks, nil
}

func printTrack(w io.Writer, prefix string, t *library.Track) {
	if t == nil {
		fprintf(w, "%s: nothing\n", prefix)
		return
	}
	fprintf(w, "%s: %s - %s\n", prefix, t.Artist, t.Title)
}

// queueIndex parses a 1-based queue position.
func queueIndex(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > n {
		return 0, errors.Errorf("invalid queue position %q, expecting 1 to %d", arg, n)
	}
	return i - 1, nil
}

func newQueueCommand(e *env) *cobra.Command {
	qc := &cobra.Command{
		Use:   "queue",
		Short: "Show and change the play queue",
	}

	qc.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the queue around the current track",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQueue(func(q *queue.Queue, lib *library.Library) error {
				showQueue(cmd.OutOrStdout(), q.Snapshot(e.cfg.QueueWindow))
				return nil
			})
		},
	})

	qc.AddCommand(&cobra.Command{
		Use:   "play <source> <parent> [n]",
		Short: "Replace the queue with the tracks of a container, starting at the n-th",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQueue(func(q *queue.Queue, lib *library.Library) error {
				tracks, err := e.resolveTracks(cmd.Context(), lib, args[0], args[1])
				if err != nil {
					return err
				}
				idx := 0
				if len(args) == 3 {
					if idx, err = queueIndex(args[2], len(tracks)); err != nil {
						return err
					}
				}
				q.PlayFrom(tracks, idx)
				printTrack(cmd.OutOrStdout(), "Playing", q.Current())
				return nil
			})
		},
	})

	qc.AddCommand(&cobra.Command{
		Use:   "shuffle-all",
		Short: "Queue the whole library in random order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQueue(func(q *queue.Queue, lib *library.Library) error {
				if !q.ShuffleAll(lib.Tracks) {
					return errors.New("the library has no tracks")
				}
				printTrack(cmd.OutOrStdout(), "Playing", q.Current())
				return nil
			})
		},
	})

	qc.AddCommand(&cobra.Command{
		Use:   "add <source> <parent>",
		Short: "Append the tracks of a container to the queue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQueue(func(q *queue.Queue, lib *library.Library) error {
				tracks, err := e.resolveTracks(cmd.Context(), lib, args[0], args[1])
				if err != nil {
					return err
				}
				q.AddAll(tracks)
				fprintf(cmd.OutOrStdout(), "Added %d tracks, %d queued\n", len(tracks), q.Len())
				return nil
			})
		},
	})

	qc.AddCommand(&cobra.Command{
		Use:   "next",
		Short: "Skip to the next track",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQueue(func(q *queue.Queue, lib *library.Library) error {
				printTrack(cmd.OutOrStdout(), "Playing", q.Next())
				return nil
			})
		},
	})

	qc.AddCommand(&cobra.Command{
		Use:   "prev",
		Short: "Go back to the previous track",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQueue(func(q *queue.Queue, lib *library.Library) error {
				printTrack(cmd.OutOrStdout(), "Playing", q.Prev())
				return nil
			})
		},
	})

	qc.AddCommand(&cobra.Command{
		Use:   "jump <n>",
		Short: "Make the n-th queued track current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQueue(func(q *queue.Queue, lib *library.Library) error {
				idx, err := queueIndex(args[0], q.Len())
				if err != nil {
					return err
				}
				printTrack(cmd.OutOrStdout(), "Playing", q.Jump(idx))
				return nil
			})
		},
	})

	qc.AddCommand(&cobra.Command{
		Use:   "remove <n>",
		Short: "Remove the n-th queued track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQueue(func(q *queue.Queue, lib *library.Library) error {
				idx, err := queueIndex(args[0], q.Len())
				if err != nil {
					return err
				}
				if q.Remove(idx) {
					printTrack(cmd.OutOrStdout(), "Playing", q.Current())
				}
				fprintf(cmd.OutOrStdout(), "%d queued\n", q.Len())
				return nil
			})
		},
	})

	qc.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQueue(func(q *queue.Queue, lib *library.Library) error {
				q.Clear()
				fprintf(cmd.OutOrStdout(), "Queue cleared\n")
				return nil
			})
		},
	})

	qc.AddCommand(&cobra.Command{
		Use:   "shuffle",
		Short: "Toggle shuffle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQueue(func(q *queue.Queue, lib *library.Library) error {
				fprintf(cmd.OutOrStdout(), "Shuffle: %s\n", onOff(q.ToggleShuffle()))
				return nil
			})
		},
	})

	qc.AddCommand(&cobra.Command{
		Use:   "repeat [off|all|one]",
		Short: "Set the repeat mode, or step to the next one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withQueue(func(q *queue.Queue, lib *library.Library) error {
				if len(args) == 0 {
					q.CycleRepeat()
				} else {
					m, err := queue.ParseRepeat(args[0])
					if err != nil {
						return err
					}
					q.SetRepeat(m)
				}
				fprintf(cmd.OutOrStdout(), "Repeat: %s\n", q.Repeat())
				return nil
			})
		},
	})

	return qc
}

func showQueue(w io.Writer, s queue.Snapshot) {
	fprintf(w, "%d tracks, shuffle %s, repeat %s\n", s.Total, onOff(s.Shuffle), s.Repeat)
	if s.Offset > 0 {
		fprintf(w, "  ... %d before\n", s.Offset)
	}
	for i, t := range s.Tracks {
		idx := s.Offset + i
		mark := " "
		if idx == s.Current {
			mark = ">"
		}
		fprintf(w, "%s %3d  %s - %s\n", mark, idx+1, t.Artist, t.Title)
	}
	if after := s.Total - s.Offset - len(s.Tracks); after > 0 {
		fprintf(w, "  ... %d after\n", after)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
