package window

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indices(slots []Slot) []int {
	out := make([]int, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Index)
	}
	return out
}

// TestNewLayout_Offsets verifies prefix offsets under variable sizes.
func TestNewLayout_Offsets(t *testing.T) {
	sizes := []int{1, 3, 2, 5}
	l, err := NewLayout(len(sizes), func(i int) int { return sizes[i] })
	require.NoError(t, err)

	assert.Equal(t, 4, l.Count())
	assert.Equal(t, 11, l.TotalHeight())
	assert.Equal(t, 0, l.Offset(0))
	assert.Equal(t, 1, l.Offset(1))
	assert.Equal(t, 4, l.Offset(2))
	assert.Equal(t, 6, l.Offset(3))
	assert.Equal(t, 11, l.Offset(4))
	assert.Equal(t, 3, l.Size(1))
	assert.Equal(t, 0, l.Size(9))
}

// TestNewLayout_Empty verifies an empty layout renders nothing.
func TestNewLayout_Empty(t *testing.T) {
	l, err := NewLayout(0, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, l.TotalHeight())
	assert.Empty(t, l.Visible(0, 20, 3))
	assert.Equal(t, -1, l.IndexAt(0))
}

// TestNewLayout_NegativeCount verifies negative counts are rejected.
func TestNewLayout_NegativeCount(t *testing.T) {
	_, err := NewLayout(-1, Fixed(1))
	assert.ErrorIs(t, err, ErrNegativeCount)
}

// TestLayout_InvalidSizes covers clamping and strict mode.
func TestLayout_InvalidSizes(t *testing.T) {
	size := func(i int) int {
		if i == 2 {
			return 0
		}
		if i == 3 {
			return -4
		}
		return 2
	}

	t.Run("clamped to minimum", func(t *testing.T) {
		l, err := NewLayout(5, size)
		require.NoError(t, err)
		assert.Equal(t, DefaultMinItemSize, l.Size(2))
		assert.Equal(t, DefaultMinItemSize, l.Size(3))
		assert.Equal(t, 2, l.Clamped())
		assert.Equal(t, 8, l.TotalHeight())
	})

	t.Run("custom minimum", func(t *testing.T) {
		l, err := NewLayout(5, size, WithMinItemSize(3))
		require.NoError(t, err)
		assert.Equal(t, 3, l.Size(2))
		assert.Equal(t, 12, l.TotalHeight())
	})

	t.Run("strict rejects", func(t *testing.T) {
		_, err := NewLayout(5, size, Strict())
		require.Error(t, err)

		var sizeErr *InvalidSizeError
		require.True(t, errors.As(err, &sizeErr))
		assert.Equal(t, 2, sizeErr.Index)
		assert.Equal(t, 0, sizeErr.Size)
		assert.ErrorIs(t, err, ErrInvalidSize)
	})
}

// TestLayout_SetSize verifies later offsets shift when one size changes.
func TestLayout_SetSize(t *testing.T) {
	l, err := NewLayout(4, Fixed(2))
	require.NoError(t, err)

	require.NoError(t, l.SetSize(1, 5))
	assert.Equal(t, 0, l.Offset(0))
	assert.Equal(t, 2, l.Offset(1))
	assert.Equal(t, 7, l.Offset(2))
	assert.Equal(t, 9, l.Offset(3))
	assert.Equal(t, 11, l.TotalHeight())

	assert.ErrorIs(t, l.SetSize(4, 1), ErrIndexRange)
}

// TestLayout_Reset verifies growth keeps earlier geometry and re-measures the rest.
func TestLayout_Reset(t *testing.T) {
	l, err := NewLayout(3, Fixed(1))
	require.NoError(t, err)

	// The trailing placeholder (index 2) becomes a taller real row; two rows are appended.
	require.NoError(t, l.Reset(2, 5, Fixed(3)))
	assert.Equal(t, 5, l.Count())
	assert.Equal(t, 1, l.Size(1))
	assert.Equal(t, 3, l.Size(2))
	assert.Equal(t, 2, l.Offset(2))
	assert.Equal(t, 11, l.TotalHeight())

	// Shrinking truncates.
	require.NoError(t, l.Reset(5, 2, nil))
	assert.Equal(t, 2, l.Count())
	assert.Equal(t, 2, l.TotalHeight())
}

// TestLayout_IndexAt verifies content offsets map back to items.
func TestLayout_IndexAt(t *testing.T) {
	sizes := []int{2, 1, 3}
	l, err := NewLayout(3, func(i int) int { return sizes[i] })
	require.NoError(t, err)

	tests := []struct {
		y    int
		want int
	}{
		{-1, -1},
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{5, 2},
		{6, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, l.IndexAt(tt.y), "y=%d", tt.y)
	}
}

// TestLayout_Visible covers the windowing range with and without overscan.
func TestLayout_Visible(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		size      SizeFunc
		scrollTop int
		height    int
		overscan  int
		want      []int
	}{
		{
			name:      "top of uniform list",
			count:     100,
			size:      Fixed(1),
			scrollTop: 0,
			height:    5,
			want:      []int{0, 1, 2, 3, 4},
		},
		{
			name:      "middle with overscan",
			count:     100,
			size:      Fixed(1),
			scrollTop: 50,
			height:    3,
			overscan:  2,
			want:      []int{48, 49, 50, 51, 52, 53, 54},
		},
		{
			name:      "overscan clamped at ends",
			count:     4,
			size:      Fixed(1),
			scrollTop: 0,
			height:    10,
			overscan:  5,
			want:      []int{0, 1, 2, 3},
		},
		{
			name:      "partially visible rows included",
			count:     10,
			size:      Fixed(3),
			scrollTop: 4,
			height:    4,
			want:      []int{1, 2},
		},
		{
			name:      "scrolled past the end",
			count:     10,
			size:      Fixed(1),
			scrollTop: 10,
			height:    5,
			want:      []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLayout(tt.count, tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.want, indices(l.Visible(tt.scrollTop, tt.height, tt.overscan)))
		})
	}
}

// TestLayout_VisibleMatchesIntersection checks every rendered index intersects the
// viewport and no intersecting index is missed, across offsets and sizes.
func TestLayout_VisibleMatchesIntersection(t *testing.T) {
	sizes := []int{1, 4, 2, 2, 7, 1, 1, 3, 5, 2, 1, 6}
	l, err := NewLayout(len(sizes), func(i int) int { return sizes[i] })
	require.NoError(t, err)

	for height := 1; height <= 12; height++ {
		for top := 0; top <= l.TotalHeight(); top++ {
			want := []int{}
			for i := range sizes {
				start := l.Offset(i)
				end := start + sizes[i]
				if start < top+height && end > top {
					want = append(want, i)
				}
			}
			assert.Equal(t, want, indices(l.Visible(top, height, 0)), "top=%d height=%d", top, height)
		}
	}
}

// TestLayout_SlotsCarryGeometry verifies slot offsets and heights.
func TestLayout_SlotsCarryGeometry(t *testing.T) {
	sizes := []int{2, 1, 3}
	l, err := NewLayout(3, func(i int) int { return sizes[i] })
	require.NoError(t, err)

	slots := l.Visible(0, 10, 0)
	require.Len(t, slots, 3)
	assert.Equal(t, Slot{Index: 2, OffsetTop: 3, Height: 3}, slots[2])
	assert.Equal(t, 6, slots[2].Bottom())
}

// TestLayout_ClampScroll verifies scroll bounds.
func TestLayout_ClampScroll(t *testing.T) {
	l, err := NewLayout(10, Fixed(2))
	require.NoError(t, err)

	assert.Equal(t, 0, l.ClampScroll(-3, 5))
	assert.Equal(t, 15, l.ClampScroll(40, 5))
	assert.Equal(t, 7, l.ClampScroll(7, 5))
	assert.Equal(t, 0, l.ClampScroll(7, 50))
}

// TestEffectiveOverscan verifies the compact viewport policy.
func TestEffectiveOverscan(t *testing.T) {
	tests := []struct {
		base    int
		compact bool
		want    int
	}{
		{base: 6, compact: false, want: 6},
		{base: 6, compact: true, want: 3},
		{base: 3, compact: true, want: 1},
		{base: 1, compact: true, want: 1},
		{base: 0, compact: true, want: 1},
		{base: -2, compact: false, want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EffectiveOverscan(tt.base, tt.compact), "base=%d compact=%v", tt.base, tt.compact)
	}
}
