package listview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/carelist/internal/binder"
)

// EmptyText is shown when the list has no records and nothing is loading.
const EmptyText = "No items"

//nolint:gochecknoglobals // Shared list styles.
var (
	skeletonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	fallbackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	emptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// View renders the rows intersecting the viewport, exactly Height lines.
func (m *WindowedListModel[T]) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	data := m.props.Data
	if data.Len() == 0 && data.Loading() {
		return m.loadingView()
	}
	if m.layout.Count() == 0 {
		return m.emptyView()
	}

	offset := m.ScrollOffset()
	lines := make([]string, m.height)
	clip := lipgloss.NewStyle().MaxWidth(m.width)

	// Overscan slots are bound and rendered too so their rows are ready when
	// they scroll in; only lines inside the viewport are kept.
	for _, slot := range m.layout.Visible(offset, m.height, m.overscan()) {
		b := binder.Bind[T](m.source(), slot.Index)
		content := m.renderer.Render(b, slot.Index == m.selected, m.width, slot.Height)
		for i, line := range strings.Split(content, "\n") {
			row := slot.OffsetTop + i - offset
			if row >= 0 && row < m.height {
				lines[row] = clip.Render(line)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// loadingView fills the viewport with skeleton rows while the first page loads.
func (m *WindowedListModel[T]) loadingView() string {
	size := m.props.EstimatedItemSize
	rows := m.height / size
	lines := make([]string, 0, m.height)
	for i := range rows {
		content := m.renderer.Render(binder.Binding[T]{Index: i, State: binder.StateSkeleton}, false, m.width, size)
		lines = append(lines, strings.Split(content, "\n")...)
	}
	for len(lines) < m.height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m *WindowedListModel[T]) emptyView() string {
	if m.props.RenderEmpty != nil {
		return binder.FitHeight(m.props.RenderEmpty(m.width, m.height), m.height)
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, emptyStyle.Render(EmptyText))
}
