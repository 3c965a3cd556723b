// Package window computes which rows of a logical list intersect a viewport.
//
// A Layout holds the height of every row and the prefix offsets derived from
// them, so the row at a given scroll offset is found with a binary search and
// the render cost stays proportional to the viewport, not the list:
//   - Variable row heights, recomputed from any index onward when they change
//   - Overscan rows above/below the viewport for smooth scrolling
//   - Non-positive heights clamped to a minimum, or rejected in strict mode
//
// Heights and offsets are terminal cells.
package window
