package window

import "sort"

// overscanDivisor halves overscan on compact viewports.
const overscanDivisor = 2

// minCompactOverscan is the floor for overscan on compact viewports.
const minCompactOverscan = 1

// Slot is an item chosen for rendering and where it sits in content space.
type Slot struct {
	Index     int
	OffsetTop int
	Height    int
}

// Bottom returns the content offset just past the slot.
func (s Slot) Bottom() int {
	return s.OffsetTop + s.Height
}

// Range returns the first and last item indices intersecting
// [scrollTop, scrollTop+viewportHeight). ok is false when nothing does.
//
//nolint:nonamedreturns // Named returns document the pair.
func (l *Layout) Range(scrollTop, viewportHeight int) (first, last int, ok bool) {
	n := len(l.sizes)
	if n == 0 || viewportHeight <= 0 {
		return 0, 0, false
	}

	top := scrollTop
	bottom := scrollTop + viewportHeight
	if bottom <= 0 || top >= l.TotalHeight() {
		return 0, 0, false
	}

	// First item whose end lies below the viewport top.
	first = sort.Search(n, func(i int) bool { return l.offsets[i+1] > top })
	// Last item starting above the viewport bottom.
	last = sort.Search(n, func(i int) bool { return l.offsets[i] >= bottom }) - 1

	if first > last {
		return 0, 0, false
	}
	return first, last, true
}

// Visible returns the slots to materialize for the viewport: every item
// intersecting it plus overscan items on each side.
func (l *Layout) Visible(scrollTop, viewportHeight, overscan int) []Slot {
	first, last, ok := l.Range(scrollTop, viewportHeight)
	if !ok {
		return nil
	}

	if overscan < 0 {
		overscan = 0
	}
	first = max(0, first-overscan)
	last = min(len(l.sizes)-1, last+overscan)

	slots := make([]Slot, 0, last-first+1)
	for i := first; i <= last; i++ {
		slots = append(slots, Slot{
			Index:     i,
			OffsetTop: l.offsets[i],
			Height:    l.sizes[i],
		})
	}
	return slots
}

// EffectiveOverscan applies the viewport policy to a configured overscan
// count: compact viewports render half as many extra rows, but never fewer
// than one.
func EffectiveOverscan(base int, compact bool) int {
	if base < 0 {
		base = 0
	}
	if !compact {
		return base
	}
	return max(minCompactOverscan, base/overscanDivisor)
}
