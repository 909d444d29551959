package library

import "strings"

const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

type Track struct {
	Path        string `json:"path"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	AlbumArtist string `json:"album_artist"`
	TrackNum    int    `json:"track_num"`
	TrackTotal  int    `json:"track_total"`
	DiscNum     int    `json:"disc_num"`
	Year        int    `json:"year"`
	Genre       string `json:"genre"`
	Format      string `json:"format,omitempty"`
	HasArt      bool   `json:"has_art"`
}

// AlbumArtistOrArtist returns the artist an album of this track is filed under.
func (t *Track) AlbumArtistOrArtist() string {
	if t.AlbumArtist != "" {
		return t.AlbumArtist
	}
	return t.Artist
}

type Album struct {
	Name    string   `json:"name"`
	Artist  string   `json:"artist"`
	ArtPath string   `json:"art_path,omitempty"`
	Tracks  []*Track `json:"-"` // rebuilt from library tracks
}

// Key returns the lookup key of the album in Library.AlbumsByKey.
func (a *Album) Key() string {
	return AlbumKey(a.Artist, a.Name)
}

type Artist struct {
	Name   string   `json:"name"`
	Albums []*Album `json:"-"` // rebuilt from library albums
}

type Playlist struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Tracks []*Track `json:"-"` // rebuilt from the playlist file
}

// AlbumKey builds the key albums are indexed by.
func AlbumKey(artist, album string) string {
	return artist + "|" + album
}

// supportedExt reports whether a file extension (with dot, any case) is an audio format we read tags from.
func supportedExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".mp3", ".m4a", ".flac", ".ogg":
		return true
	}
	return false
}

// IsAudioFile reports whether name has an extension the scanner picks up.
func IsAudioFile(name string) bool {
	i := strings.LastIndexByte(name, '.')
	return i >= 0 && supportedExt(name[i:])
}

func isPlaylistExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".m3u", ".m3u8":
		return true
	}
	return false
}
