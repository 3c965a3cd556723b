// Package binder decides what each rendered list slot shows and turns raw
// pointer events into item clicks.
package binder

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FallbackText is shown for a slot whose index is loaded but whose record is
// not there yet.
const FallbackText = "Loading…"

// skeletonRune fills default skeleton rows.
const skeletonRune = "░"

// skeletonMinWidth keeps default skeletons visible in very narrow viewports.
const skeletonMinWidth = 4

// State is what a slot displays.
type State int

// Slot states.
const (
	// StateSkeleton marks an index past the loaded records.
	StateSkeleton State = iota
	// StateFallback marks a loaded index whose record is missing.
	StateFallback
	// StateBound marks a slot showing its record.
	StateBound
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateSkeleton:
		return "skeleton"
	case StateFallback:
		return "fallback"
	case StateBound:
		return "bound"
	default:
		return "unknown"
	}
}

// Source is the read side of an item list.
type Source[T any] interface {
	// IsItemLoaded reports whether a record exists at index.
	IsItemLoaded(index int) bool
	// Item returns the record at index; ok is false when it is missing.
	Item(index int) (T, bool)
}

// Binding is the decision for one slot.
type Binding[T any] struct {
	Index int
	State State
	Item  T
}

// Bind decides what the slot at index shows.
func Bind[T any](src Source[T], index int) Binding[T] {
	b := Binding[T]{Index: index, State: StateSkeleton}
	if src == nil || !src.IsItemLoaded(index) {
		return b
	}

	item, ok := src.Item(index)
	if !ok {
		b.State = StateFallback
		return b
	}
	b.State = StateBound
	b.Item = item
	return b
}

// ItemFunc renders a bound record.
type ItemFunc[T any] func(item T, index int, selected bool, width int) string

// SkeletonFunc renders a placeholder for an unloaded index.
type SkeletonFunc func(index, width, height int) string

// Renderer turns bindings into slot content.
type Renderer[T any] struct {
	RenderItem     ItemFunc[T]
	RenderSkeleton SkeletonFunc

	// Styles used by the default skeleton and fallback rows.
	SkeletonStyle lipgloss.Style
	FallbackStyle lipgloss.Style
}

// Render returns the content for b, exactly height lines tall.
func (r Renderer[T]) Render(b Binding[T], selected bool, width, height int) string {
	var content string
	switch b.State {
	case StateBound:
		if r.RenderItem != nil {
			content = r.RenderItem(b.Item, b.Index, selected, width)
		} else {
			content = r.FallbackStyle.Render(FallbackText)
		}
	case StateFallback:
		content = r.FallbackStyle.Render(FallbackText)
	default:
		if r.RenderSkeleton != nil {
			content = r.RenderSkeleton(b.Index, width, height)
		} else {
			content = r.defaultSkeleton(b.Index, width, height)
		}
	}
	return FitHeight(content, height)
}

// defaultSkeleton draws shaded bars of varying length so consecutive
// placeholders do not look like one block.
func (r Renderer[T]) defaultSkeleton(index, width, height int) string {
	if height < 1 {
		height = 1
	}
	lines := make([]string, height)
	for i := range lines {
		w := width - (index+i)%3*width/6
		lines[i] = r.SkeletonStyle.Render(strings.Repeat(skeletonRune, max(skeletonMinWidth, w-2)))
	}
	return strings.Join(lines, "\n")
}

// FitHeight pads or truncates s to exactly height lines.
func FitHeight(s string, height int) string {
	if height < 1 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
