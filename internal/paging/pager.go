package paging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rshade/carelist/internal/logging"
)

// Pager errors.
var (
	ErrPageInFlight = errors.New("a page is already being fetched")
	ErrNilSource    = errors.New("page source is nil")
)

// Request asks a source for one page of records.
type Request struct {
	Offset int
	Limit  int
	Sort   string
	Order  string
}

// Page is one fetched slice of records.
type Page[T any] struct {
	Items []T
	// Total is the number of records the source holds, or -1 when unknown.
	Total   int
	HasMore bool
}

// PageSource fetches pages of records.
type PageSource[T any] interface {
	FetchPage(ctx context.Context, req Request) (Page[T], error)
}

// SourceFunc adapts a function to PageSource.
type SourceFunc[T any] func(ctx context.Context, req Request) (Page[T], error)

// FetchPage calls f.
func (f SourceFunc[T]) FetchPage(ctx context.Context, req Request) (Page[T], error) {
	return f(ctx, req)
}

// Option configures a Pager.
type Option func(*options)

type options struct {
	logger zerolog.Logger
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Pager accumulates pages from a source. It is safe for concurrent use:
// fetches run on command goroutines while renders read snapshots.
type Pager[T any] struct {
	source PageSource[T]
	params Params
	logger zerolog.Logger

	mu          sync.RWMutex
	items       []T
	total       int
	pagesLoaded int
	hasNext     bool
	loadingNext bool
	err         error
	generation  uint64
}

// NewPager creates a Pager that has not fetched anything yet and reports a
// next page so the first render triggers a load.
func NewPager[T any](source PageSource[T], params Params, opts ...Option) (*Pager[T], error) {
	if source == nil {
		return nil, ErrNilSource
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.Order == "" {
		params.Order = DefaultSortOrder
	}

	o := options{logger: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Pager[T]{
		source:  source,
		params:  params,
		logger:  logging.ComponentLogger(o.logger, "paging"),
		total:   -1,
		hasNext: true,
	}, nil
}

// LoadNextPage fetches the page after the loaded records and appends it.
// It returns ErrPageInFlight when a fetch is already running and nil when
// there is nothing left to load. A failed fetch is recorded in Err and
// leaves HasNextPage unchanged so the next trigger retries.
func (p *Pager[T]) LoadNextPage(ctx context.Context) error {
	p.mu.Lock()
	if p.loadingNext {
		p.mu.Unlock()
		return ErrPageInFlight
	}
	if !p.hasNext {
		p.mu.Unlock()
		return nil
	}
	req := p.nextRequest()
	gen := p.generation
	p.loadingNext = true
	p.mu.Unlock()

	log := p.logger.With().Int("offset", req.Offset).Int("limit", req.Limit).Logger()
	log.Debug().Msg("fetching page")

	page, err := p.source.FetchPage(ctx, req)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		log.Debug().Msg("discarding page fetched before reset")
		return nil
	}
	p.loadingNext = false

	if err != nil {
		p.err = err
		log.Warn().Err(err).Msg("page fetch failed")
		return fmt.Errorf("fetching page at offset %d: %w", req.Offset, err)
	}

	items := page.Items
	if p.params.MaxItems > 0 && len(p.items)+len(items) > p.params.MaxItems {
		items = items[:p.params.MaxItems-len(p.items)]
	}
	p.items = append(p.items, items...)
	p.pagesLoaded++
	p.err = nil
	if page.Total >= 0 {
		p.total = page.Total
	}
	p.hasNext = page.HasMore && len(items) > 0 && !p.capped()

	log.Debug().
		Int("received", len(items)).
		Int("loaded", len(p.items)).
		Bool("has_next", p.hasNext).
		Msg("page appended")
	return nil
}

// nextRequest builds the request for the page after the loaded items.
// Callers hold the lock.
func (p *Pager[T]) nextRequest() Request {
	limit := p.params.PageSize
	if p.params.MaxItems > 0 {
		if remaining := p.params.MaxItems - len(p.items); remaining < limit {
			limit = remaining
		}
	}
	return Request{
		Offset: len(p.items),
		Limit:  limit,
		Sort:   p.params.Sort,
		Order:  p.params.Order,
	}
}

func (p *Pager[T]) capped() bool {
	return p.params.MaxItems > 0 && len(p.items) >= p.params.MaxItems
}

// Len returns the number of loaded records.
func (p *Pager[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

// Item returns the record at index when it is loaded.
func (p *Pager[T]) Item(index int) (T, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var zero T
	if index < 0 || index >= len(p.items) {
		return zero, false
	}
	return p.items[index], true
}

// IsItemLoaded reports whether index holds a loaded record.
func (p *Pager[T]) IsItemLoaded(index int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return index >= 0 && index < len(p.items)
}

// Items returns a copy of the loaded records.
func (p *Pager[T]) Items() []T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]T, len(p.items))
	copy(out, p.items)
	return out
}

// HasNextPage reports whether another page may exist.
func (p *Pager[T]) HasNextPage() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hasNext
}

// IsNextPageLoading reports whether a fetch is running.
func (p *Pager[T]) IsNextPageLoading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loadingNext
}

// Loading reports whether the first page is still being fetched.
func (p *Pager[T]) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loadingNext && len(p.items) == 0
}

// Err returns the error from the last fetch, or nil after a success.
func (p *Pager[T]) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}

// Params returns the paging parameters.
func (p *Pager[T]) Params() Params {
	return p.params
}

// Reset drops every loaded record. A fetch running during the reset is
// discarded when it completes.
func (p *Pager[T]) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = nil
	p.total = -1
	p.pagesLoaded = 0
	p.hasNext = true
	p.loadingNext = false
	p.err = nil
	p.generation++
}

// Meta summarizes the loaded pages.
func (p *Pager[T]) Meta() Meta {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return NewMeta(p.params.PageSize, p.pagesLoaded, len(p.items), p.total, p.hasNext)
}
