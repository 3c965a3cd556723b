// Package cached decorates a page source with the on-disk page cache.
package cached

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/rshade/carelist/internal/cache"
	"github.com/rshade/carelist/internal/logging"
	"github.com/rshade/carelist/internal/paging"
	"github.com/rshade/carelist/internal/session"
)

// store is the part of cache.FileStore the decorator needs.
type store interface {
	Get(key string) (*cache.Entry, error)
	Set(key string, data json.RawMessage) error
}

// wirePage is the cached form of a page.
type wirePage[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// Source serves pages from the cache and fills it from the wrapped source.
// Cache failures are logged and never fail a fetch.
type Source[T any] struct {
	next   paging.PageSource[T]
	store  store
	name   string
	logger zerolog.Logger
}

// Wrap caches pages of next under the source name.
func Wrap[T any](next paging.PageSource[T], st store, name string, logger zerolog.Logger) *Source[T] {
	return &Source[T]{
		next:   next,
		store:  st,
		name:   name,
		logger: logging.ComponentLogger(logger, "page-cache"),
	}
}

// FetchPage returns a cached page when a live entry exists.
func (s *Source[T]) FetchPage(ctx context.Context, req paging.Request) (paging.Page[T], error) {
	key, err := cache.GenerateKey(cache.KeyParams{
		Source:    s.name,
		Workspace: workspace(ctx),
		Sort:      req.Sort,
		Order:     req.Order,
		Offset:    req.Offset,
		Limit:     req.Limit,
	})
	if err != nil {
		s.logger.Debug().Err(err).Msg("cache key")
		return s.next.FetchPage(ctx, req)
	}

	if page, ok := s.lookup(key); ok {
		s.logger.Debug().Int("offset", req.Offset).Msg("cache hit")
		return page, nil
	}

	page, err := s.next.FetchPage(ctx, req)
	if err != nil {
		return page, err
	}

	raw, err := json.Marshal(wirePage[T]{Items: page.Items, Total: page.Total, HasMore: page.HasMore})
	if err == nil {
		err = s.store.Set(key, raw)
	}
	if err != nil && !errors.Is(err, cache.ErrDisabled) {
		s.logger.Warn().Err(err).Msg("storing page")
	}
	return page, nil
}

func (s *Source[T]) lookup(key string) (paging.Page[T], bool) {
	entry, err := s.store.Get(key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) && !errors.Is(err, cache.ErrExpired) && !errors.Is(err, cache.ErrDisabled) {
			s.logger.Warn().Err(err).Msg("reading page")
		}
		return paging.Page[T]{}, false
	}

	var wp wirePage[T]
	if err := entry.Decode(&wp); err != nil {
		s.logger.Warn().Err(err).Msg("decoding cached page")
		return paging.Page[T]{}, false
	}
	return paging.Page[T]{Items: wp.Items, Total: wp.Total, HasMore: wp.HasMore}, true
}

func workspace(ctx context.Context) string {
	if s := session.FromContext(ctx); s.Active() {
		return s.Workspace()
	}
	return ""
}
