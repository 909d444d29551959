package artwork

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBrainz struct {
	t       *testing.T
	covers  map[string][]byte
	queries []string
	agent   string
}

func (f *fakeBrainz) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.agent = r.Header.Get("User-Agent")
	switch {
	case r.URL.Path == "/ws/2/release/":
		q := r.URL.Query().Get("query")
		f.queries = append(f.queries, q)
		assert.Equal(f.t, "json", r.URL.Query().Get("fmt"))
		if strings.Contains(q, "Broken") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if strings.Contains(q, "Nobody") {
			w.Write([]byte(`{"releases":[]}`))
			return
		}
		w.Write([]byte(`{"releases":[{"id":"r1"},{"id":"r2"},{"id":"r3"}]}`))
	case strings.HasPrefix(r.URL.Path, "/release/"):
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/release/"), "/front")
		data, ok := f.covers[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if data == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	default:
		http.NotFound(w, r)
	}
}

func newTestBrainz(t *testing.T, covers map[string][]byte) (*MusicBrainz, *fakeBrainz) {
	fake := &fakeBrainz{t: t, covers: covers}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cfg := DefaultMusicBrainzConfig("test")
	cfg.APIURL = srv.URL + "/ws/2/"
	cfg.CoverArtURL = srv.URL + "/release/%s/front"
	cfg.Interval = 0
	cfg.RetryMax = 0
	return NewMusicBrainz(cfg, nil), fake
}

func TestSearchReleases(t *testing.T) {
	mb, fake := newTestBrainz(t, nil)
	ctx := context.Background()

	ids, err := mb.SearchReleases(ctx, "The Band", `Say "Hi"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids)
	require.Len(t, fake.queries, 1)
	assert.Equal(t, `artist:"The Band" AND release:"Say \"Hi\""`, fake.queries[0])
	assert.Equal(t, "Orpheus/test (https://github.com/danfragoso/orpheus)", fake.agent)

	ids, err = mb.SearchReleases(ctx, "Nobody", "Nothing")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = mb.SearchReleases(ctx, "Broken", "Request")
	assert.Error(t, err)
}

func TestCoverArt(t *testing.T) {
	img := pngBytes(t, 8, 8)
	mb, _ := newTestBrainz(t, map[string][]byte{"r2": img, "r3": nil})
	ctx := context.Background()

	data, mime, err := mb.CoverArt(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, img, data)
	assert.Equal(t, "image/png", mime)

	data, _, err = mb.CoverArt(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, data)

	_, _, err = mb.CoverArt(ctx, "r3")
	assert.Error(t, err)
}

func TestMusicBrainzCancelled(t *testing.T) {
	mb, _ := newTestBrainz(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := mb.SearchReleases(ctx, "a", "b")
	assert.Error(t, err)
}

func TestSanitizeSearchTerm(t *testing.T) {
	assert.Equal(t, "Solo", sanitizeSearchTerm("  Solo "))
	assert.Equal(t, `"Two Words"`, sanitizeSearchTerm("Two Words"))
	assert.Equal(t, `a\"b`, sanitizeSearchTerm(`a"b`))
}
