// Package library builds and persists the music library: tracks read from
// audio file tags, grouped into albums and artists, plus M3U playlists.
package library

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Library is the scanned music collection. The slices are sorted by name;
// the maps are lookup indexes rebuilt on load.
type Library struct {
	Tracks    []*Track    `json:"tracks"`
	Albums    []*Album    `json:"albums"`
	Artists   []*Artist   `json:"artists"`
	Playlists []*Playlist `json:"playlists"`

	TracksByPath  map[string]*Track  `json:"-"`
	AlbumsByKey   map[string]*Album  `json:"-"`
	ArtistsByName map[string]*Artist `json:"-"`
}

// New returns an empty library.
func New() *Library {
	return &Library{
		TracksByPath:  make(map[string]*Track),
		AlbumsByKey:   make(map[string]*Album),
		ArtistsByName: make(map[string]*Artist),
	}
}

// Add registers a track, creating its album and artist on first sight.
// Tracks with a path that is already known are ignored.
func (lib *Library) Add(track *Track) *Album {
	if _, ok := lib.TracksByPath[track.Path]; ok {
		return nil
	}
	lib.Tracks = append(lib.Tracks, track)
	lib.TracksByPath[track.Path] = track

	albumArtist := track.AlbumArtistOrArtist()
	key := AlbumKey(albumArtist, track.Album)
	album, ok := lib.AlbumsByKey[key]
	if !ok {
		album = &Album{Name: track.Album, Artist: albumArtist}
		lib.AlbumsByKey[key] = album
		lib.Albums = append(lib.Albums, album)
	}
	album.Tracks = append(album.Tracks, track)

	artist, ok := lib.ArtistsByName[albumArtist]
	if !ok {
		artist = &Artist{Name: albumArtist}
		lib.ArtistsByName[albumArtist] = artist
		lib.Artists = append(lib.Artists, artist)
	}
	for _, a := range artist.Albums {
		if a == album {
			return album
		}
	}
	artist.Albums = append(artist.Albums, album)
	return album
}

// Sort orders tracks by title, albums and artists by name, album tracks by
// disc and track number.
func (lib *Library) Sort() {
	sort.SliceStable(lib.Tracks, func(i, j int) bool {
		return strings.ToLower(lib.Tracks[i].Title) < strings.ToLower(lib.Tracks[j].Title)
	})
	sortAlbums(lib.Albums)
	sort.SliceStable(lib.Artists, func(i, j int) bool {
		return strings.ToLower(lib.Artists[i].Name) < strings.ToLower(lib.Artists[j].Name)
	})
	sort.SliceStable(lib.Playlists, func(i, j int) bool {
		return strings.ToLower(lib.Playlists[i].Name) < strings.ToLower(lib.Playlists[j].Name)
	})
	for _, album := range lib.Albums {
		tracks := album.Tracks
		sort.SliceStable(tracks, func(i, j int) bool {
			if tracks[i].DiscNum != tracks[j].DiscNum {
				return tracks[i].DiscNum < tracks[j].DiscNum
			}
			return tracks[i].TrackNum < tracks[j].TrackNum
		})
	}
	for _, artist := range lib.Artists {
		sortAlbums(artist.Albums)
	}
}

func sortAlbums(albums []*Album) {
	sort.SliceStable(albums, func(i, j int) bool {
		return strings.ToLower(albums[i].Name) < strings.ToLower(albums[j].Name)
	})
}

// Save writes the library as JSON.
func (lib *Library) Save(path string) error {
	data, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal library")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "write library %s", path)
	}
	return nil
}

// Load reads a library written by Save and rebuilds the lookup maps, the
// album and artist relations and the playlist contents.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read library %s", path)
	}

	var stored Library
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, errors.Wrapf(err, "unmarshal library %s", path)
	}

	lib := New()
	for _, t := range stored.Tracks {
		lib.Add(t)
	}
	// album metadata not derivable from tracks
	for _, a := range stored.Albums {
		if album, ok := lib.AlbumsByKey[a.Key()]; ok {
			album.ArtPath = a.ArtPath
		}
	}
	lib.Playlists = stored.Playlists
	for _, pl := range lib.Playlists {
		pl.Tracks = nil
		// a playlist file that vanished just comes back empty
		_ = lib.ParsePlaylist(pl)
	}
	lib.Sort()
	return lib, nil
}
