// Package artwork finds, fetches and caches album artwork. Pictures live in
// a size-bounded directory keyed by a hash of artist and album; the least
// recently used ones are dropped when the directory grows past its limit.
package artwork

import (
	"crypto/md5"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Store is the on-disk artwork cache. It is safe for concurrent use.
type Store struct {
	dir      string
	maxBytes int64
	maxSize  int
	logger   *zap.Logger

	mu sync.Mutex
}

// NewStore opens (creating if needed) the artwork directory dir. Pictures
// are downscaled to maxSize pixels per edge; the directory is kept below
// maxBytes, 0 meaning no limit.
func NewStore(dir string, maxBytes int64, maxSize int, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "create artwork directory %s", dir)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, maxBytes: maxBytes, maxSize: maxSize, logger: logger}, nil
}

// CacheKey returns the file name stem artwork of an album is stored under.
func CacheKey(artist, album string) string {
	key := strings.ToLower(artist) + "|" + strings.ToLower(album)
	return fmt.Sprintf("%x", md5.Sum([]byte(key)))
}

// Lookup returns the path of the stored picture of an album and marks it as
// recently used.
func (s *Store) Lookup(artist, album string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.find(CacheKey(artist, album))
	if ok {
		now := time.Now()
		_ = os.Chtimes(p, now, now)
	}
	return p, ok
}

// Put downscales and stores a picture for an album, returning its path.
func (s *Store) Put(artist, album string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("no artwork data to save")
	}
	data, mimeType, err := Downscale(data, s.maxSize)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := CacheKey(artist, album)
	if old, ok := s.find(key); ok {
		os.Remove(old)
	}
	p := filepath.Join(s.dir, key+extFor(mimeType))
	if err := os.WriteFile(p, data, 0644); err != nil {
		return "", errors.Wrapf(err, "write artwork %s", p)
	}
	s.logger.Debug("artwork saved", zap.String("artist", artist), zap.String("album", album), zap.String("path", p))

	if err := s.evict(p); err != nil {
		s.logger.Warn("artwork eviction failed", zap.Error(err))
	}
	return p, nil
}

// PutEmbedded stores a picture found in an audio file's tags. The format is
// sniffed from the data, the tag's MIME type is not trusted.
func (s *Store) PutEmbedded(artist, album string, data []byte, _ string) (string, error) {
	return s.Put(artist, album, data)
}

// Image decodes the stored picture of an album.
func (s *Store) Image(artist, album string) (image.Image, error) {
	p, ok := s.Lookup(artist, album)
	if !ok {
		return nil, errors.Errorf("no artwork for %s - %s", artist, album)
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrapf(err, "open artwork %s", p)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, errors.Wrapf(err, "decode artwork %s", p)
}

// Size returns the total bytes stored.
func (s *Store) Size() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := s.files()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, f := range files {
		total += f.size
	}
	return total, nil
}

func (s *Store) find(key string) (string, bool) {
	for _, ext := range []string{".jpg", ".png"} {
		p := filepath.Join(s.dir, key+ext)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

type storedFile struct {
	path  string
	size  int64
	mtime time.Time
}

func (s *Store) files() ([]storedFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read artwork directory %s", s.dir)
	}
	res := make([]storedFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		res = append(res, storedFile{path: filepath.Join(s.dir, e.Name()), size: fi.Size(), mtime: fi.ModTime()})
	}
	return res, nil
}

// evict drops the least recently used pictures until the store fits in
// maxBytes. keep is never dropped.
func (s *Store) evict(keep string) error {
	if s.maxBytes <= 0 {
		return nil
	}
	files, err := s.files()
	if err != nil {
		return err
	}
	var total int64
	for _, f := range files {
		total += f.size
	}
	if total <= s.maxBytes {
		return nil
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mtime.Before(files[j].mtime) })
	for _, f := range files {
		if total <= s.maxBytes {
			break
		}
		if f.path == keep {
			continue
		}
		if err := os.Remove(f.path); err != nil {
			return errors.Wrapf(err, "remove %s", f.path)
		}
		total -= f.size
		s.logger.Debug("artwork evicted", zap.String("path", f.path), zap.Int64("size", f.size))
	}
	return nil
}
