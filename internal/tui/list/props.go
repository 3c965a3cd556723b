package listview

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rshade/carelist/internal/binder"
)

// Defaults applied to zero-valued Props fields.
const (
	// DefaultOverscan is the number of extra rows rendered above and below the viewport.
	DefaultOverscan = 5

	// DefaultEstimatedItemSize is the height of rows whose size is not known.
	DefaultEstimatedItemSize = 1

	// DefaultCompactWidth is the width below which the viewport counts as compact.
	DefaultCompactWidth = 60
)

// DataSource is the read side of the caller's paging store.
type DataSource[T any] interface {
	// Len returns the number of loaded records.
	Len() int
	// Item returns the record at index.
	Item(index int) (T, bool)
	// HasNextPage reports whether more records may exist.
	HasNextPage() bool
	// IsNextPageLoading reports whether a fetch is running.
	IsNextPageLoading() bool
	// Loading reports whether the first page is still being fetched.
	Loading() bool
}

// Props configure a WindowedListModel.
type Props[T any] struct {
	Data DataSource[T]

	// LoadNextPage fetches and appends the next page. It runs on a command
	// goroutine and is never called again before it returns.
	LoadNextPage func(ctx context.Context) error

	RenderItem binder.ItemFunc[T]

	// ItemHeight returns the height of a loaded row. Nil means every row
	// is EstimatedItemSize tall.
	ItemHeight     func(index int, item T, width int) int
	RenderSkeleton binder.SkeletonFunc
	RenderEmpty    func(width, height int) string

	EstimatedItemSize int
	Overscan          int
	Threshold         int
	MinimumBatchSize  int
	CompactWidth      int
	TapThreshold      int

	// StrictSizes fails layout on non-positive heights instead of clamping.
	StrictSizes  bool
	SmoothScroll bool

	OnItemClick func(item T, index int) tea.Cmd

	Logger *zerolog.Logger
}

func (p Props[T]) withDefaults() Props[T] {
	if p.EstimatedItemSize <= 0 {
		p.EstimatedItemSize = DefaultEstimatedItemSize
	}
	if p.Overscan <= 0 {
		p.Overscan = DefaultOverscan
	}
	if p.CompactWidth <= 0 {
		p.CompactWidth = DefaultCompactWidth
	}
	if p.TapThreshold <= 0 {
		p.TapThreshold = binder.DefaultTapThreshold
	}
	return p
}
