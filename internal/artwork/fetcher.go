package artwork

import (
	"context"

	"github.com/danfragoso/orpheus/internal/library"
	"go.uber.org/zap"
)

type (
	// Provider is an online artwork lookup, MusicBrainz in production.
	Provider interface {
		SearchReleases(ctx context.Context, artist, album string) ([]string, error)
		CoverArt(ctx context.Context, releaseID string) ([]byte, string, error)
	}

	// Fetcher fills in artwork for albums that have none.
	Fetcher struct {
		provider Provider
		store    *Store
		logger   *zap.Logger
		// Status, when set, is told about progress on each album.
		Status func(album *library.Album, msg string)
	}

	FetchResult struct {
		Missing int
		Fetched int
		Failed  int
	}
)

func NewFetcher(p Provider, store *Store, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{provider: p, store: store, logger: logger}
}

// FetchMissing looks up every album of lib without artwork. It stops early
// only when ctx is done.
func (f *Fetcher) FetchMissing(ctx context.Context, lib *library.Library) (FetchResult, error) {
	var res FetchResult
	for _, album := range lib.Albums {
		if album.ArtPath != "" {
			continue
		}
		if p, ok := f.store.Lookup(album.Artist, album.Name); ok {
			album.ArtPath = p
			continue
		}
		if album.Name == "" || album.Name == library.UnknownAlbum || album.Artist == library.UnknownArtist {
			continue
		}

		res.Missing++
		ok, err := f.FetchAlbum(ctx, album)
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if ok {
			res.Fetched++
			continue
		}
		res.Failed++
		if err != nil {
			f.logger.Warn("artwork fetch failed",
				zap.String("artist", album.Artist), zap.String("album", album.Name), zap.Error(err))
		}
	}

	f.logger.Info("artwork fetch done",
		zap.Int("missing", res.Missing), zap.Int("fetched", res.Fetched), zap.Int("failed", res.Failed))
	return res, nil
}

// FetchAlbum tries each matching release until one has cover art, stores
// it and records the path on the album.
func (f *Fetcher) FetchAlbum(ctx context.Context, album *library.Album) (bool, error) {
	f.status(album, "Searching MusicBrainz...")
	ids, err := f.provider.SearchReleases(ctx, album.Artist, album.Name)
	if err != nil {
		return false, err
	}
	if len(ids) == 0 {
		f.status(album, "No release found")
		return false, nil
	}

	for i, id := range ids {
		data, _, err := f.provider.CoverArt(ctx, id)
		if err != nil {
			f.logger.Debug("release failed", zap.String("release", id), zap.Int("n", i+1), zap.Error(err))
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			continue
		}
		if len(data) == 0 {
			continue
		}

		p, err := f.store.Put(album.Artist, album.Name, data)
		if err != nil {
			f.logger.Debug("could not store release art", zap.String("release", id), zap.Error(err))
			continue
		}
		album.ArtPath = p
		f.status(album, "Fetched")
		f.logger.Info("artwork fetched",
			zap.String("artist", album.Artist), zap.String("album", album.Name), zap.String("release", id))
		return true, nil
	}

	f.status(album, "No art found")
	return false, nil
}

func (f *Fetcher) status(album *library.Album, msg string) {
	if f.Status != nil {
		f.Status(album, msg)
	}
}
