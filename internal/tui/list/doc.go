// Package listview provides a windowed, incrementally loaded list for Bubble
// Tea applications.
//
// Only the rows intersecting the viewport (plus a few overscan rows) are
// rendered, so the cost of a frame does not depend on how many records are
// loaded. Key features:
//   - Variable row heights with prefix-offset layout
//   - Automatic "load next page" requests as the viewport nears the end
//   - Skeleton rows for unloaded indices and an empty-state view
//   - Keyboard navigation (up/down, pgup/pgdn, home/end, enter)
//   - Mouse wheel scrolling and tap detection for row clicks
//   - Optional spring-animated scrolling
//
// The list never owns the records. It reads them through a DataSource and
// asks for more through the LoadNextPage callback.
package listview
