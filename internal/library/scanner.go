package library

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type (
	// ArtworkSink stores album art found embedded in audio files.
	ArtworkSink interface {
		// Lookup returns the path of stored art for the album, if any.
		Lookup(artist, album string) (string, bool)
		// PutEmbedded stores the picture and returns the path it was saved at.
		PutEmbedded(artist, album string, data []byte, mimeType string) (string, error)
	}

	// Scanner walks a music folder and builds a Library from the tags of the
	// audio files it finds.
	Scanner struct {
		Workers  int
		Art      ArtworkSink
		Progress func(scanned, total int)
		logger   *zap.Logger
	}
)

// NewScanner creates a scanner reading tags with the given number of
// workers. art may be nil, embedded pictures are ignored then.
func NewScanner(workers int, art ArtworkSink, logger *zap.Logger) *Scanner {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{Workers: workers, Art: art, logger: logger}
}

// Scan reads the whole tree under root. A file whose tags cannot be read
// still becomes a track, named after the file.
func (s *Scanner) Scan(ctx context.Context, root string) (*Library, error) {
	start := time.Now()
	s.logger.Info("scanning music library", zap.String("root", root))

	var audio []string
	lib := New()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.logger.Warn("skipping unreadable entry", zap.String("path", path), zap.Error(err))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		switch {
		case supportedExt(ext):
			audio = append(audio, path)
		case isPlaylistExt(ext):
			lib.Playlists = append(lib.Playlists, &Playlist{
				Name: strings.TrimSuffix(filepath.Base(path), ext),
				Path: path,
			})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", root)
	}

	tracks := make([]*Track, len(audio))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)
	for i, path := range audio {
		i, path := i, path
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			tracks[i] = s.readTrack(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "read tags")
	}

	for i, track := range tracks {
		album := lib.Add(track)
		if album != nil {
			s.attachArt(album, track)
		}
		if s.Progress != nil {
			s.Progress(i+1, len(tracks))
		}
	}

	lib.Sort()
	for _, pl := range lib.Playlists {
		if err := lib.ParsePlaylist(pl); err != nil {
			s.logger.Warn("could not parse playlist", zap.String("path", pl.Path), zap.Error(err))
		}
	}

	s.logger.Info("library scan complete",
		zap.Int("tracks", len(lib.Tracks)),
		zap.Int("albums", len(lib.Albums)),
		zap.Int("artists", len(lib.Artists)),
		zap.Int("playlists", len(lib.Playlists)),
		zap.Duration("elapsed", time.Since(start)))
	return lib, nil
}

// readTrack reads metadata from a single audio file.
func (s *Scanner) readTrack(path string) *Track {
	track := &Track{Path: path}

	f, err := os.Open(path)
	if err == nil {
		m, terr := tag.ReadFrom(f)
		if terr == nil {
			track.Title = strings.TrimSpace(m.Title())
			track.Artist = strings.TrimSpace(m.Artist())
			track.Album = strings.TrimSpace(m.Album())
			track.AlbumArtist = strings.TrimSpace(m.AlbumArtist())
			track.TrackNum, track.TrackTotal = m.Track()
			track.DiscNum, _ = m.Disc()
			track.Year = m.Year()
			track.Genre = m.Genre()
			track.Format = string(m.FileType())
			track.HasArt = m.Picture() != nil
		} else {
			s.logger.Debug("tag read error", zap.String("path", path), zap.Error(terr))
		}
		f.Close()
	} else {
		s.logger.Warn("could not open track", zap.String("path", path), zap.Error(err))
	}

	if track.Title == "" {
		track.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if track.Artist == "" {
		track.Artist = UnknownArtist
	}
	if track.Album == "" {
		track.Album = UnknownAlbum
	}
	return track
}

// attachArt gives album the art already stored for it or, failing that, the
// picture embedded in track. The first track with art wins.
func (s *Scanner) attachArt(album *Album, track *Track) {
	if s.Art == nil || album.ArtPath != "" {
		return
	}
	if p, ok := s.Art.Lookup(album.Artist, album.Name); ok {
		album.ArtPath = p
		return
	}
	if !track.HasArt {
		return
	}

	f, err := os.Open(track.Path)
	if err != nil {
		return
	}
	defer f.Close()
	m, err := tag.ReadFrom(f)
	if err != nil {
		return
	}
	pic := m.Picture()
	if pic == nil {
		return
	}
	p, err := s.Art.PutEmbedded(album.Artist, album.Name, pic.Data, pic.MIMEType)
	if err != nil {
		s.logger.Warn("could not store embedded art",
			zap.String("album", album.Name), zap.String("artist", album.Artist), zap.Error(err))
		return
	}
	album.ArtPath = p
	s.logger.Debug("stored embedded art", zap.String("album", album.Name), zap.String("path", p))
}
