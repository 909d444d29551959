// Package browser serves source browse results page by page. A browse runs
// the source query once, parks the full result in a pagecache.Cache and
// hands out pages with continuation tokens until the result is exhausted.
package browser

import (
	"context"

	"github.com/danfragoso/orpheus/internal/pagecache"
	"github.com/danfragoso/orpheus/internal/source"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type (
	// Page is one page of a browse result. Token is empty on the last page.
	Page struct {
		Items []source.Item
		Token string
	}

	Browser struct {
		sources *source.Registry
		cache   *pagecache.Cache[source.Item]
		logger  *zap.Logger
	}
)

// New creates a browser over the registered sources, keeping at most
// maxResults browse results alive.
func New(sources *source.Registry, maxResults int, logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Browser{
		sources: sources,
		cache:   pagecache.New[source.Item](maxResults, logger.Named("pagecache")),
		logger:  logger,
	}
}

// Browse queries the source for the children of parentID and returns the
// first page of the result.
func (b *Browser) Browse(ctx context.Context, sourceID, parentID string, pageSize int) (Page, error) {
	if pageSize <= 0 {
		return Page{}, errors.Wrapf(pagecache.ErrInvalidPageSize, "got %d", pageSize)
	}
	src, err := b.sources.Get(sourceID)
	if err != nil {
		return Page{}, err
	}
	items, err := src.Browse(ctx, parentID)
	if err != nil {
		return Page{}, errors.Wrapf(err, "browse %s/%s", sourceID, parentID)
	}

	key := uuid.New().String()
	b.cache.Put(key, items)
	b.logger.Debug("browse result cached",
		zap.String("source", sourceID), zap.String("parent", parentID),
		zap.String("key", key), zap.Int("items", len(items)))
	return b.page(key, 0, pageSize)
}

// Next returns the page a token from an earlier page points at. Results that
// have been evicted read as empty.
func (b *Browser) Next(token string, pageSize int) (Page, error) {
	tk, err := pagecache.ParseToken(token)
	if err != nil {
		return Page{}, err
	}
	return b.page(tk.Key, tk.Start, pageSize)
}

// Resume continues a browse from a token, possibly one handed out by another
// process. When the token's result is no longer cached the source is queried
// again and the result stored under the token's key, so paging carries on as
// long as the source answers the same way.
func (b *Browser) Resume(ctx context.Context, sourceID, parentID, token string, pageSize int) (Page, error) {
	if pageSize <= 0 {
		return Page{}, errors.Wrapf(pagecache.ErrInvalidPageSize, "got %d", pageSize)
	}
	tk, err := pagecache.ParseToken(token)
	if err != nil {
		return Page{}, err
	}
	if !b.cache.Has(tk.Key) {
		src, err := b.sources.Get(sourceID)
		if err != nil {
			return Page{}, err
		}
		items, err := src.Browse(ctx, parentID)
		if err != nil {
			return Page{}, errors.Wrapf(err, "browse %s/%s", sourceID, parentID)
		}
		b.cache.Put(tk.Key, items)
		b.logger.Debug("browse result restored",
			zap.String("source", sourceID), zap.String("parent", parentID),
			zap.String("key", tk.Key), zap.Int("items", len(items)))
	}
	return b.page(tk.Key, tk.Start, pageSize)
}

// All browses parentID and follows tokens until the result is exhausted.
func (b *Browser) All(ctx context.Context, sourceID, parentID string, pageSize int) ([]source.Item, error) {
	p, err := b.Browse(ctx, sourceID, parentID, pageSize)
	if err != nil {
		return nil, err
	}
	items := p.Items
	for p.Token != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p, err = b.Next(p.Token, pageSize); err != nil {
			return nil, err
		}
		items = append(items, p.Items...)
	}
	return items, nil
}

// Release drops the result a token belongs to. Consumers that stop paging
// early call it to free the result before it ages out.
func (b *Browser) Release(token string) {
	if tk, err := pagecache.ParseToken(token); err == nil {
		b.cache.Remove(tk.Key)
	}
}

func (b *Browser) page(key string, start, pageSize int) (Page, error) {
	var p Page
	err := b.cache.Get(key, start, pageSize, func(items []source.Item, next *pagecache.Token) {
		p.Items = items
		if next != nil {
			p.Token = next.String()
		}
	})
	return p, err
}
