package window

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultMinItemSize is the height non-positive sizes are clamped to.
const DefaultMinItemSize = 1

// Layout errors.
var (
	ErrInvalidSize   = errors.New("item size must be positive")
	ErrNegativeCount = errors.New("item count cannot be negative")
	ErrIndexRange    = errors.New("index out of range")
	ErrNilSizeFunc   = errors.New("size function cannot be nil")
)

// InvalidSizeError reports a non-positive size returned for an index.
type InvalidSizeError struct {
	Index int
	Size  int
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("item %d: size %d: %v", e.Index, e.Size, ErrInvalidSize)
}

func (e *InvalidSizeError) Unwrap() error {
	return ErrInvalidSize
}

// SizeFunc returns the height of the item at index.
type SizeFunc func(index int) int

// Fixed returns a SizeFunc giving every item the same height.
func Fixed(size int) SizeFunc {
	return func(int) int { return size }
}

// Option configures a Layout.
type Option func(*Layout)

// WithMinItemSize sets the height non-positive sizes are clamped to.
func WithMinItemSize(n int) Option {
	return func(l *Layout) {
		if n > 0 {
			l.minSize = n
		}
	}
}

// Strict makes the layout reject non-positive sizes with *InvalidSizeError
// instead of clamping them.
func Strict() Option {
	return func(l *Layout) {
		l.strict = true
	}
}

// Layout holds row geometry for a list of items.
// offsets has one more entry than sizes: offsets[i] is where item i starts and
// offsets[len(sizes)] is the total height.
type Layout struct {
	sizes   []int
	offsets []int

	minSize int
	strict  bool

	// clamped counts sizes replaced by minSize since the layout was created.
	clamped int
}

// NewLayout measures count items with size.
func NewLayout(count int, size SizeFunc, opts ...Option) (*Layout, error) {
	l := &Layout{
		minSize: DefaultMinItemSize,
		offsets: []int{0},
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.Reset(0, count, size); err != nil {
		return nil, err
	}
	return l, nil
}

// Reset keeps the geometry of items before from and re-measures items
// [from, count) with size. It is used both when the list grows (the old
// placeholder slot becomes a real row) and when everything must be measured
// again (from = 0).
func (l *Layout) Reset(from, count int, size SizeFunc) error {
	if count < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeCount, count)
	}
	if from < 0 {
		from = 0
	}
	if from > len(l.sizes) {
		from = len(l.sizes)
	}
	if from > count {
		from = count
	}
	if count > from && size == nil {
		return ErrNilSizeFunc
	}

	sizes := make([]int, count)
	copy(sizes, l.sizes[:from])
	for i := from; i < count; i++ {
		s, err := l.measure(i, size(i))
		if err != nil {
			return err
		}
		sizes[i] = s
	}

	l.sizes = sizes
	l.recompute(from)
	return nil
}

// SetSize changes the height of one item and shifts every later offset.
func (l *Layout) SetSize(index, size int) error {
	if index < 0 || index >= len(l.sizes) {
		return fmt.Errorf("%w: %d (count %d)", ErrIndexRange, index, len(l.sizes))
	}
	s, err := l.measure(index, size)
	if err != nil {
		return err
	}
	if l.sizes[index] == s {
		return nil
	}
	l.sizes[index] = s
	l.recompute(index)
	return nil
}

func (l *Layout) measure(index, size int) (int, error) {
	if size > 0 {
		return size, nil
	}
	if l.strict {
		return 0, &InvalidSizeError{Index: index, Size: size}
	}
	l.clamped++
	return l.minSize, nil
}

// recompute rebuilds offsets from index from onward.
func (l *Layout) recompute(from int) {
	n := len(l.sizes)
	if cap(l.offsets) < n+1 {
		offsets := make([]int, n+1)
		copy(offsets, l.offsets[:min(len(l.offsets), from+1)])
		l.offsets = offsets
	} else {
		l.offsets = l.offsets[:n+1]
	}
	l.offsets[0] = 0
	for i := from; i < n; i++ {
		l.offsets[i+1] = l.offsets[i] + l.sizes[i]
	}
}

// Count returns the number of items in the layout.
func (l *Layout) Count() int {
	return len(l.sizes)
}

// TotalHeight returns the summed height of all items.
func (l *Layout) TotalHeight() int {
	return l.offsets[len(l.sizes)]
}

// Offset returns the scroll offset at which item index starts.
// An index equal to Count returns TotalHeight.
func (l *Layout) Offset(index int) int {
	if index <= 0 {
		return 0
	}
	if index >= len(l.sizes) {
		return l.TotalHeight()
	}
	return l.offsets[index]
}

// Size returns the height of item index, or 0 when out of range.
func (l *Layout) Size(index int) int {
	if index < 0 || index >= len(l.sizes) {
		return 0
	}
	return l.sizes[index]
}

// Clamped returns how many sizes were replaced by the minimum item size.
func (l *Layout) Clamped() int {
	return l.clamped
}

// IndexAt returns the item covering content offset y, or -1.
func (l *Layout) IndexAt(y int) int {
	n := len(l.sizes)
	if y < 0 || y >= l.TotalHeight() {
		return -1
	}
	return sort.Search(n, func(i int) bool { return l.offsets[i+1] > y })
}

// ClampScroll bounds scrollTop to [0, TotalHeight-viewportHeight].
func (l *Layout) ClampScroll(scrollTop, viewportHeight int) int {
	maxScroll := l.TotalHeight() - viewportHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	if scrollTop > maxScroll {
		return maxScroll
	}
	if scrollTop < 0 {
		return 0
	}
	return scrollTop
}
