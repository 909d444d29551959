package source

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/danfragoso/orpheus/internal/library"
	"github.com/pkg/errors"
)

// Container IDs of the library source.
const (
	idArtists   = "artists"
	idAlbums    = "albums"
	idTracks    = "tracks"
	idPlaylists = "playlists"

	prefixArtist   = "artist:"
	prefixAlbum    = "album:"
	prefixPlaylist = "playlist:"
)

// LibrarySource browses a scanned library by artist, album, track and playlist.
type LibrarySource struct {
	lib *library.Library
}

func NewLibrarySource(lib *library.Library) *LibrarySource {
	return &LibrarySource{lib: lib}
}

func (s *LibrarySource) ID() string   { return "library" }
func (s *LibrarySource) Name() string { return "Music Library" }

func (s *LibrarySource) Browse(ctx context.Context, parentID string) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch parentID {
	case "":
		return []Item{
			{ID: idArtists, Title: "Artists", Subtitle: count(len(s.lib.Artists), "artist")},
			{ID: idAlbums, Title: "Albums", Subtitle: count(len(s.lib.Albums), "album")},
			{ID: idTracks, Title: "Songs", Subtitle: count(len(s.lib.Tracks), "song")},
			{ID: idPlaylists, Title: "Playlists", Subtitle: count(len(s.lib.Playlists), "playlist")},
		}, nil
	case idArtists:
		res := make([]Item, len(s.lib.Artists))
		for i, a := range s.lib.Artists {
			res[i] = Item{ID: prefixArtist + a.Name, Title: a.Name, Subtitle: count(len(a.Albums), "album")}
		}
		return res, nil
	case idAlbums:
		return albumItems(s.lib.Albums), nil
	case idTracks:
		return trackItems(s.lib.Tracks), nil
	case idPlaylists:
		res := make([]Item, len(s.lib.Playlists))
		for i, pl := range s.lib.Playlists {
			res[i] = Item{ID: prefixPlaylist + strconv.Itoa(i), Title: pl.Name, Subtitle: count(len(pl.Tracks), "song")}
		}
		return res, nil
	}

	switch {
	case strings.HasPrefix(parentID, prefixArtist):
		if a, ok := s.lib.ArtistsByName[strings.TrimPrefix(parentID, prefixArtist)]; ok {
			return albumItems(a.Albums), nil
		}
	case strings.HasPrefix(parentID, prefixAlbum):
		if a, ok := s.lib.AlbumsByKey[strings.TrimPrefix(parentID, prefixAlbum)]; ok {
			return trackItems(a.Tracks), nil
		}
	case strings.HasPrefix(parentID, prefixPlaylist):
		i, err := strconv.Atoi(strings.TrimPrefix(parentID, prefixPlaylist))
		if err == nil && i >= 0 && i < len(s.lib.Playlists) {
			return trackItems(s.lib.Playlists[i].Tracks), nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "library container %q", parentID)
}

func albumItems(albums []*library.Album) []Item {
	res := make([]Item, len(albums))
	for i, a := range albums {
		res[i] = Item{ID: prefixAlbum + a.Key(), Title: a.Name, Subtitle: a.Artist}
	}
	return res
}

func trackItems(tracks []*library.Track) []Item {
	res := make([]Item, len(tracks))
	for i, t := range tracks {
		res[i] = Item{ID: t.Path, Title: t.Title, Subtitle: t.Artist, Kind: KindTrack, Path: t.Path}
	}
	return res
}

func count(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
