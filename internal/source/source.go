// Package source defines the content-source plugin API and the sources
// built into Orpheus. A source exposes a browsable tree of containers and
// tracks; the root of every source has the empty ID.
package source

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned for unknown sources and unknown container IDs.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a source ID is registered twice.
	ErrDuplicate = errors.New("source already registered")
)

// Kind tells containers from playable tracks.
type Kind int

const (
	KindContainer Kind = iota
	KindTrack
)

func (k Kind) String() string {
	if k == KindTrack {
		return "track"
	}
	return "container"
}

type (
	// Item is one entry of a browse result.
	Item struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Subtitle string `json:"subtitle,omitempty"`
		Kind     Kind   `json:"kind"`
		// Path is the file of a track item.
		Path string `json:"path,omitempty"`
	}

	// Source is a content provider. Browse lists the children of the
	// container parentID, "" being the root.
	Source interface {
		ID() string
		Name() string
		Browse(ctx context.Context, parentID string) ([]Item, error)
	}

	// Registry keeps the sources by ID. It is safe for concurrent use.
	Registry struct {
		mu      sync.RWMutex
		sources map[string]Source
	}
)

// NewRegistry returns a registry holding the given sources.
func NewRegistry(srcs ...Source) (*Registry, error) {
	r := &Registry{sources: make(map[string]Source)}
	for _, s := range srcs {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds s. IDs must be unique.
func (r *Registry) Register(s Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sources[s.ID()]; ok {
		return errors.Wrapf(ErrDuplicate, "source %q", s.ID())
	}
	r.sources[s.ID()] = s
	return nil
}

// Get returns the source with the given ID.
func (r *Registry) Get(id string) (Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "source %q", id)
	}
	return s, nil
}

// List returns all sources ordered by ID.
func (r *Registry) List() []Source {
	r.mu.RLock()
	res := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		res = append(res, s)
	}
	r.mu.RUnlock()
	sort.Slice(res, func(i, j int) bool { return res[i].ID() < res[j].ID() })
	return res
}
