package binder

// DefaultTapThreshold is the movement, in cells on either axis, below which a
// press/release pair counts as a tap.
const DefaultTapThreshold = 10

// IsTap reports whether a pointer moved less than threshold on both axes.
func IsTap(dx, dy, threshold int) bool {
	return abs(dx) < threshold && abs(dy) < threshold
}

// TapDetector tells taps apart from drags and scrolls.
// Coordinates passed to it should be in content space (viewport y plus
// scroll offset) so a list that scrolled under the pointer reads as movement.
type TapDetector struct {
	Threshold int

	active bool
	startX int
	startY int
	index  int
}

// NewTapDetector returns a detector using threshold, or the default when
// threshold is not positive.
func NewTapDetector(threshold int) TapDetector {
	if threshold <= 0 {
		threshold = DefaultTapThreshold
	}
	return TapDetector{Threshold: threshold}
}

// Press records the start of a touch or click on the item at index.
func (d *TapDetector) Press(x, y, index int) {
	d.active = true
	d.startX = x
	d.startY = y
	d.index = index
}

// Release ends the gesture and returns the pressed index and whether the
// gesture was a tap. A release without a press is never a tap.
//
//nolint:nonamedreturns // Named returns document the pair.
func (d *TapDetector) Release(x, y int) (index int, tap bool) {
	if !d.active {
		return -1, false
	}
	d.active = false

	threshold := d.Threshold
	if threshold <= 0 {
		threshold = DefaultTapThreshold
	}
	return d.index, IsTap(x-d.startX, y-d.startY, threshold)
}

// Cancel drops a gesture in progress.
func (d *TapDetector) Cancel() {
	d.active = false
}

// Active reports whether a press is waiting for its release.
func (d *TapDetector) Active() bool {
	return d.active
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
