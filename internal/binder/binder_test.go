package binder

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceSource reports indices below loaded as loaded, but only holds records
// for the indices present in items, mimicking a count/data race.
type sliceSource struct {
	loaded int
	items  map[int]string
}

func (s sliceSource) IsItemLoaded(index int) bool { return index >= 0 && index < s.loaded }

func (s sliceSource) Item(index int) (string, bool) {
	v, ok := s.items[index]
	return v, ok
}

func TestBind(t *testing.T) {
	src := sliceSource{loaded: 2, items: map[int]string{0: "Ada"}}

	tests := []struct {
		name  string
		index int
		want  State
	}{
		{name: "bound record", index: 0, want: StateBound},
		{name: "loaded but missing record", index: 1, want: StateFallback},
		{name: "past the loaded records", index: 2, want: StateSkeleton},
		{name: "negative index", index: -1, want: StateSkeleton},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Bind[string](src, tt.index)
			assert.Equal(t, tt.want, b.State)
			assert.Equal(t, tt.index, b.Index)
		})
	}

	assert.Equal(t, "Ada", Bind[string](src, 0).Item)
	assert.Equal(t, StateSkeleton, Bind[string](nil, 0).State)
}

func TestRenderer_Render(t *testing.T) {
	r := Renderer[string]{
		RenderItem: func(item string, index int, selected bool, _ int) string {
			mark := " "
			if selected {
				mark = ">"
			}
			return fmt.Sprintf("%s%d %s", mark, index, item)
		},
	}

	t.Run("bound", func(t *testing.T) {
		out := r.Render(Binding[string]{Index: 3, State: StateBound, Item: "Ada"}, true, 20, 1)
		assert.Equal(t, ">3 Ada", out)
	})

	t.Run("fallback never fails", func(t *testing.T) {
		out := r.Render(Binding[string]{Index: 3, State: StateFallback}, false, 20, 2)
		assert.Contains(t, out, FallbackText)
		assert.Len(t, strings.Split(out, "\n"), 2)
	})

	t.Run("default skeleton", func(t *testing.T) {
		out := r.Render(Binding[string]{Index: 5, State: StateSkeleton}, false, 20, 2)
		assert.Contains(t, out, skeletonRune)
		assert.NotContains(t, out, FallbackText)
		assert.Len(t, strings.Split(out, "\n"), 2)
	})

	t.Run("caller skeleton", func(t *testing.T) {
		r := r
		r.RenderSkeleton = func(index, _, _ int) string { return fmt.Sprintf("wait %d", index) }
		out := r.Render(Binding[string]{Index: 7, State: StateSkeleton}, false, 20, 1)
		assert.Equal(t, "wait 7", out)
	})

	t.Run("bound without item renderer", func(t *testing.T) {
		out := Renderer[string]{}.Render(Binding[string]{State: StateBound, Item: "x"}, false, 10, 1)
		assert.Contains(t, out, FallbackText)
	})
}

func TestFitHeight(t *testing.T) {
	assert.Equal(t, "a\n", FitHeight("a", 2))
	assert.Equal(t, "a\nb", FitHeight("a\nb\nc", 2))
	assert.Empty(t, FitHeight("a", 0))
}

func TestIsTap(t *testing.T) {
	tests := []struct {
		dx, dy int
		want   bool
	}{
		{0, 0, true},
		{9, -9, true},
		{-9, 9, true},
		{10, 0, false},
		{0, 10, false},
		{-10, 0, false},
		{3, 25, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTap(tt.dx, tt.dy, DefaultTapThreshold), "dx=%d dy=%d", tt.dx, tt.dy)
	}
}

func TestTapDetector(t *testing.T) {
	t.Run("small movement is a tap", func(t *testing.T) {
		d := NewTapDetector(0)
		require.Equal(t, DefaultTapThreshold, d.Threshold)

		d.Press(10, 40, 7)
		assert.True(t, d.Active())
		index, tap := d.Release(14, 45)
		assert.True(t, tap)
		assert.Equal(t, 7, index)
		assert.False(t, d.Active())
	})

	t.Run("vertical drag is suppressed", func(t *testing.T) {
		d := NewTapDetector(DefaultTapThreshold)
		d.Press(10, 40, 7)
		_, tap := d.Release(10, 50)
		assert.False(t, tap)
	})

	t.Run("horizontal drag is suppressed", func(t *testing.T) {
		d := NewTapDetector(DefaultTapThreshold)
		d.Press(10, 40, 7)
		_, tap := d.Release(0, 40)
		assert.False(t, tap)
	})

	t.Run("release without press", func(t *testing.T) {
		d := NewTapDetector(2)
		index, tap := d.Release(0, 0)
		assert.False(t, tap)
		assert.Equal(t, -1, index)
	})

	t.Run("cancelled gesture", func(t *testing.T) {
		d := NewTapDetector(2)
		d.Press(1, 1, 0)
		d.Cancel()
		_, tap := d.Release(1, 1)
		assert.False(t, tap)
	})

	t.Run("custom threshold", func(t *testing.T) {
		d := NewTapDetector(2)
		d.Press(0, 0, 1)
		_, tap := d.Release(1, 1)
		assert.True(t, tap)

		d.Press(0, 0, 1)
		_, tap = d.Release(0, 2)
		assert.False(t, tap)
	})
}
