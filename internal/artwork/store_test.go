package artwork

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	assert.Equal(t, CacheKey("The Band", "Album"), CacheKey("the band", "ALBUM"))
	assert.NotEqual(t, CacheKey("a", "bc"), CacheKey("ab", "c"))
	assert.Len(t, CacheKey("x", "y"), 32)
}

func TestStorePutLookup(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "art"), 0, 64, nil)
	require.NoError(t, err)

	_, ok := s.Lookup("Band", "Album")
	assert.False(t, ok)

	p, err := s.Put("Band", "Album", pngBytes(t, 128, 128))
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(p))

	got, ok := s.Lookup("band", "album")
	require.True(t, ok)
	assert.Equal(t, p, got)

	img, err := s.Image("Band", "Album")
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())

	// A jpeg replaces the png rather than sitting next to it.
	p2, err := s.PutEmbedded("Band", "Album", jpegBytes(t, 10, 10), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(p2))
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))

	// Tags often carry the wrong MIME type; the data decides.
	p3, err := s.PutEmbedded("Band", "Other", jpegBytes(t, 10, 10), "image/png")
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(p3))

	_, err = s.Put("Band", "Album", nil)
	assert.Error(t, err)
	_, err = s.Image("Nobody", "Nothing")
	assert.Error(t, err)
}

func TestStoreEviction(t *testing.T) {
	data := pngBytes(t, 16, 16)
	size := int64(len(data))
	s, err := NewStore(t.TempDir(), 2*size+size/2, 64, nil)
	require.NoError(t, err)

	pa, err := s.Put("A", "a", data)
	require.NoError(t, err)
	pb, err := s.Put("B", "b", data)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, os.Chtimes(pa, now.Add(-2*time.Hour), now.Add(-2*time.Hour)))
	require.NoError(t, os.Chtimes(pb, now.Add(-time.Hour), now.Add(-time.Hour)))

	// Touching A makes B the least recently used picture.
	_, ok := s.Lookup("A", "a")
	require.True(t, ok)

	pc, err := s.Put("C", "c", data)
	require.NoError(t, err)

	_, ok = s.Lookup("B", "b")
	assert.False(t, ok)
	for _, p := range []string{pa, pc} {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}

	total, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, 2*size, total)
}

func TestStoreKeepsNewest(t *testing.T) {
	data := pngBytes(t, 16, 16)
	s, err := NewStore(t.TempDir(), 1, 64, nil)
	require.NoError(t, err)

	_, err = s.Put("A", "a", data)
	require.NoError(t, err)
	p, err := s.Put("B", "b", data)
	require.NoError(t, err)

	_, ok := s.Lookup("A", "a")
	assert.False(t, ok)
	got, ok := s.Lookup("B", "b")
	assert.True(t, ok)
	assert.Equal(t, p, got)
}
