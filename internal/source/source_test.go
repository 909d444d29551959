package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/danfragoso/orpheus/internal/library"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLibrary() *library.Library {
	lib := library.New()
	lib.Add(&library.Track{Path: "/m/b1.mp3", Title: "Song B1", Artist: "Band", Album: "Blue", TrackNum: 1})
	lib.Add(&library.Track{Path: "/m/b2.mp3", Title: "Song B2", Artist: "Band", Album: "Blue", TrackNum: 2})
	lib.Add(&library.Track{Path: "/m/r1.mp3", Title: "Song R1", Artist: "Band", Album: "Red", TrackNum: 1})
	lib.Add(&library.Track{Path: "/m/s1.mp3", Title: "Alone", Artist: "Singer", Album: "Solo"})
	lib.Playlists = []*library.Playlist{{Name: "Fav", Tracks: []*library.Track{lib.TracksByPath["/m/r1.mp3"]}}}
	lib.Sort()
	return lib
}

func titles(items []Item) []string {
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.Title
	}
	return res
}

func TestLibrarySource(t *testing.T) {
	ctx := context.Background()
	s := NewLibrarySource(testLibrary())

	root, err := s.Browse(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Artists", "Albums", "Songs", "Playlists"}, titles(root))
	assert.Equal(t, "2 artists", root[0].Subtitle)
	assert.Equal(t, "1 playlist", root[3].Subtitle)

	artists, err := s.Browse(ctx, root[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Band", "Singer"}, titles(artists))

	albums, err := s.Browse(ctx, artists[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blue", "Red"}, titles(albums))

	tracks, err := s.Browse(ctx, albums[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Song B1", "Song B2"}, titles(tracks))
	assert.Equal(t, KindTrack, tracks[0].Kind)
	assert.Equal(t, "/m/b1.mp3", tracks[0].Path)

	all, err := s.Browse(ctx, idTracks)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	pls, err := s.Browse(ctx, idPlaylists)
	require.NoError(t, err)
	require.Len(t, pls, 1)
	plTracks, err := s.Browse(ctx, pls[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Song R1"}, titles(plTracks))

	for _, id := range []string{"bogus", "artist:Nobody", "album:x|y", "playlist:7", "playlist:x"} {
		_, err := s.Browse(ctx, id)
		assert.Equal(t, ErrNotFound, errors.Cause(err), id)
	}
}

func TestFolderSource(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "b-dir", "inner"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "A-dir"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".cache"), 0755))
	for _, f := range []string{"z.mp3", "Y.flac", "readme.txt", ".hidden.mp3", "b-dir/in.ogg"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, f), nil, 0644))
	}

	s := NewFolderSource(root)
	items, err := s.Browse(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A-dir", "b-dir", "Y", "z"}, titles(items))
	assert.Equal(t, KindContainer, items[0].Kind)
	assert.Equal(t, KindTrack, items[2].Kind)
	assert.Equal(t, filepath.Join(root, "Y.flac"), items[2].Path)

	sub, err := s.Browse(ctx, items[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"inner", "in"}, titles(sub))
	assert.Equal(t, "b-dir/in.ogg", sub[1].ID)

	for _, id := range []string{"../", "..", "/etc", "missing", "z.mp3", "b-dir/in.ogg"} {
		_, err := s.Browse(ctx, id)
		assert.Equal(t, ErrNotFound, errors.Cause(err), id)
	}
}

func TestRegistry(t *testing.T) {
	lib := NewLibrarySource(library.New())
	folders := NewFolderSource(t.TempDir())
	r, err := NewRegistry(lib, folders)
	require.NoError(t, err)

	got, err := r.Get("folders")
	require.NoError(t, err)
	assert.Equal(t, folders, got)

	_, err = r.Get("upnp")
	assert.Equal(t, ErrNotFound, errors.Cause(err))

	err = r.Register(NewFolderSource("/"))
	assert.Equal(t, ErrDuplicate, errors.Cause(err))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "folders", list[0].ID())
	assert.Equal(t, "library", list[1].ID())
}

func TestBrowseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLibrarySource(library.New()).Browse(ctx, "")
	assert.Error(t, err)
	_, err = NewFolderSource(t.TempDir()).Browse(ctx, "")
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	items := []Item{
		{Title: "Alone", Subtitle: "Singer"},
		{Title: "Song B1", Subtitle: "Band"},
		{Title: "Song R1", Subtitle: "Band"},
	}
	assert.Equal(t, items, Filter(items, ""))
	assert.Equal(t, []string{"Song R1"}, titles(Filter(items, " r1 ")))
	assert.Equal(t, []string{"Song B1", "Song R1"}, titles(Filter(items, "BAND")))
	assert.Empty(t, Filter(items, "nothing like it"))
}

func TestFiltered(t *testing.T) {
	ctx := context.Background()
	lib := NewLibrarySource(testLibrary())
	assert.Equal(t, Source(lib), Filtered(lib, "  "))

	s := Filtered(lib, "song b")
	assert.Equal(t, "library", s.ID())
	items, err := s.Browse(ctx, "tracks")
	require.NoError(t, err)
	assert.Equal(t, []string{"Song B1", "Song B2"}, titles(items))

	_, err = s.Browse(ctx, "nope")
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}
