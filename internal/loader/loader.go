// Package loader triggers incremental page loads for a windowed list.
//
// The list reports which indices it is about to render; the loader looks for
// not-yet-loaded indices within a threshold of that range and, when no load is
// already running, hands back a Fetch for them. Only one Fetch per Loader can
// be outstanding. The guard is released when the load function returns,
// whether it succeeded or failed, so the next render check retries a failed
// page. Loads are never retried automatically.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/rshade/carelist/internal/logging"
)

// Loader defaults.
const (
	// DefaultThreshold is how many unloaded rows ahead of the rendered range trigger a load.
	DefaultThreshold = 15

	// DefaultMinimumBatchSize is the smallest index range requested per load.
	DefaultMinimumBatchSize = 10
)

// Loader errors.
var (
	ErrNilLoadFunc      = errors.New("load function cannot be nil")
	ErrInvalidThreshold = errors.New("threshold must be >= 0")
	ErrInvalidBatchSize = errors.New("minimum batch size must be >= 1")
)

// LoadFunc fetches the items for indices [startIndex, stopIndex].
type LoadFunc func(ctx context.Context, startIndex, stopIndex int) error

// Range is an inclusive index range.
type Range struct {
	Start int
	Stop  int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	if r.Stop < r.Start {
		return 0
	}
	return r.Stop - r.Start + 1
}

// ItemCount returns the logical item count reported to the renderer: every
// loaded record plus one placeholder slot while another page exists.
func ItemCount(loaded int, hasNextPage bool) int {
	if loaded < 0 {
		loaded = 0
	}
	if hasNextPage {
		return loaded + 1
	}
	return loaded
}

// Stats counts loader activity.
type Stats struct {
	Triggered int64
	Skipped   int64
	Failed    int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithThreshold sets how close to the unloaded edge the rendered range may come.
func WithThreshold(n int) Option {
	return func(l *Loader) {
		l.threshold = n
	}
}

// WithMinimumBatchSize sets the smallest range passed to the load function.
func WithMinimumBatchSize(n int) Option {
	return func(l *Loader) {
		l.minBatch = n
	}
}

// WithLogger sets the logger used for load failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// Loader decides when to load more items and guards against overlapping loads.
type Loader struct {
	load      LoadFunc
	threshold int
	minBatch  int
	logger    zerolog.Logger

	// guard admits one Fetch at a time.
	guard *semaphore.Weighted

	triggered atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// New creates a Loader around load.
func New(load LoadFunc, opts ...Option) (*Loader, error) {
	if load == nil {
		return nil, ErrNilLoadFunc
	}

	l := &Loader{
		load:      load,
		threshold: DefaultThreshold,
		minBatch:  DefaultMinimumBatchSize,
		logger:    logging.Nop(),
		guard:     semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.threshold < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidThreshold, l.threshold)
	}
	if l.minBatch < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, l.minBatch)
	}
	return l, nil
}

// Threshold returns the configured threshold.
func (l *Loader) Threshold() int {
	return l.threshold
}

// Plan returns the unloaded range near rendered that should be requested.
// ok is false when every index within the threshold is loaded.
//
//nolint:nonamedreturns // Named returns document the pair.
func (l *Loader) Plan(rendered Range, itemCount int, isLoaded func(int) bool) (want Range, ok bool) {
	if itemCount <= 0 || isLoaded == nil {
		return Range{}, false
	}

	from := max(0, rendered.Start-l.threshold)
	to := min(itemCount-1, rendered.Stop+l.threshold)
	if from > to {
		return Range{}, false
	}

	first, last := -1, -1
	for i := from; i <= to; i++ {
		if isLoaded(i) {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return Range{}, false
	}

	// Pages are appended in index order, so widening the request past the
	// scanned window only ever covers slots that are unloaded as well.
	last = min(itemCount-1, max(last, first+l.minBatch-1))
	return Range{Start: first, Stop: last}, true
}

// Trigger plans a load for the rendered range and, when one is needed and no
// other Fetch is outstanding, returns it. The caller must call Run on the
// returned Fetch exactly once; until then further triggers are ignored.
func (l *Loader) Trigger(rendered Range, itemCount int, isLoaded func(int) bool) (*Fetch, bool) {
	want, ok := l.Plan(rendered, itemCount, isLoaded)
	if !ok {
		return nil, false
	}

	if !l.guard.TryAcquire(1) {
		l.skipped.Add(1)
		return nil, false
	}

	l.triggered.Add(1)
	return &Fetch{Range: want, loader: l}, true
}

// InFlight reports whether a Fetch is outstanding.
func (l *Loader) InFlight() bool {
	if l.guard.TryAcquire(1) {
		l.guard.Release(1)
		return false
	}
	return true
}

// Stats returns a snapshot of the loader counters.
func (l *Loader) Stats() Stats {
	return Stats{
		Triggered: l.triggered.Load(),
		Skipped:   l.skipped.Load(),
		Failed:    l.failed.Load(),
	}
}

// Fetch is one admitted load.
type Fetch struct {
	Range Range

	loader *Loader
	once   sync.Once
}

// Run invokes the load function for the fetch range and releases the guard
// once it settles. Calls after the first return nil without loading again.
func (f *Fetch) Run(ctx context.Context) error {
	var err error
	f.once.Do(func() {
		defer f.loader.guard.Release(1)

		err = f.loader.load(ctx, f.Range.Start, f.Range.Stop)
		if err != nil {
			f.loader.failed.Add(1)
			f.loader.logger.Warn().
				Ctx(ctx).
				Err(err).
				Int("start", f.Range.Start).
				Int("stop", f.Range.Stop).
				Msg("load more items failed")
		}
	})
	return err
}
