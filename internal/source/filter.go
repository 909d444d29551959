package source

import (
	"context"
	"strings"
)

// Filter returns the items whose title or subtitle contains query, ignoring
// case. An empty query keeps everything.
func Filter(items []Item, query string) []Item {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}
	res := make([]Item, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Title), query) ||
			strings.Contains(strings.ToLower(it.Subtitle), query) {
			res = append(res, it)
		}
	}
	return res
}

type filtered struct {
	Source
	query string
}

// Filtered wraps src so that every browse result is narrowed with Filter.
func Filtered(src Source, query string) Source {
	if strings.TrimSpace(query) == "" {
		return src
	}
	return &filtered{Source: src, query: query}
}

func (f *filtered) Browse(ctx context.Context, parentID string) ([]Item, error) {
	items, err := f.Source.Browse(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return Filter(items, f.query), nil
}
