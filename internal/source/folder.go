package source

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danfragoso/orpheus/internal/library"
	"github.com/pkg/errors"
)

// FolderSource browses the music folder as a plain directory tree. Item IDs
// are slash separated paths relative to the root.
type FolderSource struct {
	root string
}

func NewFolderSource(root string) *FolderSource {
	return &FolderSource{root: filepath.Clean(root)}
}

func (s *FolderSource) ID() string   { return "folders" }
func (s *FolderSource) Name() string { return "Folders" }

func (s *FolderSource) Browse(ctx context.Context, parentID string) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel := filepath.Clean(filepath.FromSlash(parentID))
	if rel == "." {
		rel = ""
	}
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, errors.Wrapf(ErrNotFound, "folder %q is outside the music root", parentID)
	}

	dir := filepath.Join(s.root, rel)
	fi, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return nil, errors.Wrapf(ErrNotFound, "folder %q", parentID)
	case err != nil:
		return nil, errors.Wrapf(err, "stat folder %q", parentID)
	case !fi.IsDir():
		return nil, errors.Wrapf(ErrNotFound, "%q is not a folder", parentID)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read folder %q", parentID)
	}

	var dirs, files []Item
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		id := filepath.ToSlash(filepath.Join(rel, name))
		switch {
		case e.IsDir():
			dirs = append(dirs, Item{ID: id, Title: name})
		case library.IsAudioFile(name):
			files = append(files, Item{
				ID:    id,
				Title: strings.TrimSuffix(name, filepath.Ext(name)),
				Kind:  KindTrack,
				Path:  filepath.Join(dir, name),
			})
		}
	}
	byTitle := func(items []Item) {
		sort.Slice(items, func(i, j int) bool {
			return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
		})
	}
	byTitle(dirs)
	byTitle(files)
	return append(dirs, files...), nil
}
