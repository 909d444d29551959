package library

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ParsePlaylist reads the M3U file of pl and appends the tracks it names that
// are part of the library. Relative entries are resolved against the
// playlist's directory.
func (lib *Library) ParsePlaylist(pl *Playlist) error {
	f, err := os.Open(pl.Path)
	if err != nil {
		return errors.Wrapf(err, "open playlist %s", pl.Path)
	}
	defer f.Close()

	baseDir := filepath.Dir(pl.Path)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimRight(sc.Text(), "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		trackPath := line
		if !filepath.IsAbs(trackPath) {
			trackPath = filepath.Join(baseDir, trackPath)
		}
		if track, ok := lib.TracksByPath[filepath.Clean(trackPath)]; ok {
			pl.Tracks = append(pl.Tracks, track)
		}
	}
	return errors.Wrapf(sc.Err(), "read playlist %s", pl.Path)
}
