package listview

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rshade/carelist/internal/binder"
	"github.com/rshade/carelist/internal/loader"
	"github.com/rshade/carelist/internal/logging"
	"github.com/rshade/carelist/internal/window"
)

// wheelStep is how many rows one mouse wheel notch scrolls.
const wheelStep = 3

// List errors.
var (
	ErrNilData     = errors.New("list data source is nil")
	ErrNilLoadFunc = errors.New("list load function is nil")
)

//nolint:gochecknoglobals // List identity counter.
var lastListID atomic.Int64

// LoadSettledMsg reports that a LoadNextPage call returned. The fetch guard
// is already released when it arrives.
type LoadSettledMsg struct {
	ListID int64
	Range  loader.Range
	Err    error
}

// WindowedListModel renders the visible window of a long, partially loaded
// list and requests more records as the viewport approaches the end.
type WindowedListModel[T any] struct {
	props    Props[T]
	ctx      context.Context
	id       int64
	keys     KeyMap
	logger   zerolog.Logger
	layout   *window.Layout
	loader   *loader.Loader
	renderer binder.Renderer[T]
	tap      binder.TapDetector
	scroll   scroller

	width   int
	height  int
	originX int
	originY int

	// selected is an index into the rendered item count.
	selected int

	// laidOut and laidWidth record what the layout was measured for.
	laidOut   int
	laidWidth int

	lastErr error
}

// New creates a list over props.Data. Fetches run with ctx.
func New[T any](ctx context.Context, props Props[T]) (*WindowedListModel[T], error) {
	if props.Data == nil {
		return nil, ErrNilData
	}
	if props.LoadNextPage == nil {
		return nil, ErrNilLoadFunc
	}
	props = props.withDefaults()

	logger := logging.Nop()
	if props.Logger != nil {
		logger = *props.Logger
	}
	logger = logging.ComponentLogger(logger, "listview")

	loadOpts := []loader.Option{loader.WithLogger(logger)}
	if props.Threshold > 0 {
		loadOpts = append(loadOpts, loader.WithThreshold(props.Threshold))
	}
	if props.MinimumBatchSize > 0 {
		loadOpts = append(loadOpts, loader.WithMinimumBatchSize(props.MinimumBatchSize))
	}
	next := props.LoadNextPage
	ld, err := loader.New(func(ctx context.Context, _, _ int) error {
		return next(ctx)
	}, loadOpts...)
	if err != nil {
		return nil, err
	}

	var layoutOpts []window.Option
	if props.StrictSizes {
		layoutOpts = append(layoutOpts, window.Strict())
	}
	layout, err := window.NewLayout(0, nil, layoutOpts...)
	if err != nil {
		return nil, err
	}

	m := &WindowedListModel[T]{
		props:  props,
		ctx:    ctx,
		id:     lastListID.Add(1),
		keys:   DefaultKeyMap(),
		logger: logger,
		layout: layout,
		loader: ld,
		renderer: binder.Renderer[T]{
			RenderItem:     props.RenderItem,
			RenderSkeleton: props.RenderSkeleton,
			SkeletonStyle:  skeletonStyle,
			FallbackStyle:  fallbackStyle,
		},
		tap:    binder.NewTapDetector(props.TapThreshold),
		scroll: newScroller(props.SmoothScroll),
	}
	m.relayout()
	return m, nil
}

// Init requests the first page when the viewport already has a size.
func (m *WindowedListModel[T]) Init() tea.Cmd {
	return m.checkLoad()
}

// Update handles resize, keyboard, mouse, load and animation messages.
func (m *WindowedListModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, m.checkLoad()

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m, m.handleMouseMsg(msg)

	case LoadSettledMsg:
		if msg.ListID != m.id {
			return m, nil
		}
		m.lastErr = msg.Err
		m.relayout()
		if msg.Err != nil {
			// No automatic retry; the next scroll or Refresh checks again.
			return m, nil
		}
		return m, m.checkLoad()

	case frameMsg:
		if msg.listID != m.id {
			return m, nil
		}
		if cmd := m.scroll.step(msg.gen, m.id); cmd != nil {
			return m, tea.Batch(cmd, m.checkLoad())
		}
		return m, m.checkLoad()
	}

	return m, nil
}

// handleKeyMsg moves the selection and scrolls to keep it visible.
func (m *WindowedListModel[T]) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	count := m.layout.Count()
	if count == 0 {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		return m.selectIndex(m.selected - 1)
	case key.Matches(msg, m.keys.Down):
		return m.selectIndex(m.selected + 1)
	case key.Matches(msg, m.keys.PageUp):
		return m.page(-1)
	case key.Matches(msg, m.keys.PageDown):
		return m.page(1)
	case key.Matches(msg, m.keys.Home):
		return m.selectIndex(0)
	case key.Matches(msg, m.keys.End):
		return m.selectIndex(count - 1)
	case key.Matches(msg, m.keys.Select):
		return m.click(m.selected)
	}
	return nil
}

// page moves the viewport one screen in dir and carries the selection with it.
func (m *WindowedListModel[T]) page(dir int) tea.Cmd {
	y := m.layout.Offset(m.selected) + dir*m.height
	index := m.layout.IndexAt(y)
	if index < 0 {
		if dir < 0 {
			index = 0
		} else {
			index = m.layout.Count() - 1
		}
	}
	m.selected = index
	target := m.layout.ClampScroll(m.scroll.target+dir*m.height, m.height)
	return m.scrollTo(m.keepVisible(target, index))
}

// selectIndex selects index (clamped) and scrolls just enough to show it.
func (m *WindowedListModel[T]) selectIndex(index int) tea.Cmd {
	count := m.layout.Count()
	m.selected = max(0, min(index, count-1))
	return m.scrollTo(m.keepVisible(m.scroll.target, m.selected))
}

// keepVisible returns the scroll offset closest to scrollTop that shows index.
func (m *WindowedListModel[T]) keepVisible(scrollTop, index int) int {
	top := m.layout.Offset(index)
	bottom := top + m.layout.Size(index)
	switch {
	case top < scrollTop:
		scrollTop = top
	case bottom > scrollTop+m.height:
		scrollTop = bottom - m.height
	}
	return m.layout.ClampScroll(scrollTop, m.height)
}

// ScrollBy moves the viewport by delta rows without changing the selection.
func (m *WindowedListModel[T]) ScrollBy(delta int) tea.Cmd {
	return m.scrollTo(m.layout.ClampScroll(m.scroll.target+delta, m.height))
}

func (m *WindowedListModel[T]) scrollTo(target int) tea.Cmd {
	return tea.Batch(m.scroll.to(target, m.id), m.checkLoad())
}

// handleMouseMsg scrolls on the wheel and turns press/release pairs into
// clicks when the pointer barely moved.
func (m *WindowedListModel[T]) handleMouseMsg(msg tea.MouseMsg) tea.Cmd {
	x := msg.X - m.originX
	y := msg.Y - m.originY

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		return m.ScrollBy(-wheelStep)
	case msg.Button == tea.MouseButtonWheelDown:
		return m.ScrollBy(wheelStep)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !m.inBounds(x, y) {
			m.tap.Cancel()
			return nil
		}
		contentY := y + m.ScrollOffset()
		if index := m.layout.IndexAt(contentY); index >= 0 {
			m.tap.Press(x, contentY, index)
		}
		return nil
	case msg.Action == tea.MouseActionRelease:
		index, tap := m.tap.Release(x, y+m.ScrollOffset())
		if !tap {
			return nil
		}
		return m.click(index)
	}
	return nil
}

func (m *WindowedListModel[T]) inBounds(x, y int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < m.height
}

// click selects a bound row and calls OnItemClick. Skeleton and fallback
// rows ignore clicks.
func (m *WindowedListModel[T]) click(index int) tea.Cmd {
	b := binder.Bind[T](m.source(), index)
	if b.State != binder.StateBound {
		return nil
	}
	m.selected = index
	if m.props.OnItemClick == nil {
		return nil
	}
	return m.props.OnItemClick(b.Item, index)
}

// checkLoad asks the loader whether the rendered window needs more records
// and returns the fetch command when it does.
func (m *WindowedListModel[T]) checkLoad() tea.Cmd {
	slots := m.layout.Visible(m.ScrollOffset(), m.height, m.overscan())
	if len(slots) == 0 {
		return nil
	}
	rendered := loader.Range{Start: slots[0].Index, Stop: slots[len(slots)-1].Index}

	fetch, ok := m.loader.Trigger(rendered, m.layout.Count(), m.isLoaded)
	if !ok {
		return nil
	}

	m.logger.Debug().
		Int("start", fetch.Range.Start).
		Int("stop", fetch.Range.Stop).
		Msg("requesting next page")

	ctx, id := m.ctx, m.id
	return func() tea.Msg {
		err := fetch.Run(ctx)
		return LoadSettledMsg{ListID: id, Range: fetch.Range, Err: err}
	}
}

// Refresh re-reads the data source and checks whether a load is needed.
// Callers use it after resetting or retrying the paging store.
func (m *WindowedListModel[T]) Refresh() tea.Cmd {
	m.lastErr = nil
	m.relayout()
	return m.checkLoad()
}

// relayout measures rows that appeared since the last layout. A width change
// re-measures everything.
func (m *WindowedListModel[T]) relayout() {
	loaded := m.props.Data.Len()
	count := loader.ItemCount(loaded, m.props.Data.HasNextPage())

	from := min(m.laidOut, loaded)
	if m.width != m.laidWidth {
		from = 0
	}
	if err := m.layout.Reset(from, count, m.sizeAt); err != nil {
		m.logger.Error().Err(err).Int("count", count).Msg("layout failed")
		m.lastErr = err
		return
	}
	m.laidOut = loaded
	m.laidWidth = m.width

	m.scroll.clamp(m.layout.ClampScroll(m.scroll.target, m.height))
	m.selected = max(0, min(m.selected, count-1))
}

func (m *WindowedListModel[T]) sizeAt(index int) int {
	if m.props.ItemHeight == nil || index >= m.props.Data.Len() {
		return m.props.EstimatedItemSize
	}
	item, ok := m.props.Data.Item(index)
	if !ok {
		return m.props.EstimatedItemSize
	}
	return m.props.ItemHeight(index, item, m.width)
}

func (m *WindowedListModel[T]) isLoaded(index int) bool {
	return index < m.props.Data.Len()
}

func (m *WindowedListModel[T]) overscan() int {
	return window.EffectiveOverscan(m.props.Overscan, m.width < m.props.CompactWidth)
}

func (m *WindowedListModel[T]) source() binder.Source[T] {
	return dataSource[T]{m.props.Data}
}

// dataSource adapts a DataSource to the binder.
type dataSource[T any] struct {
	DataSource[T]
}

func (d dataSource[T]) IsItemLoaded(index int) bool {
	return index >= 0 && index < d.Len()
}

// SetSize resizes the viewport and re-measures rows if the width changed.
func (m *WindowedListModel[T]) SetSize(width, height int) {
	m.width = max(0, width)
	m.height = max(0, height)
	m.relayout()
}

// SetOrigin records where the list is drawn on screen for mouse hit-testing.
func (m *WindowedListModel[T]) SetOrigin(x, y int) {
	m.originX = x
	m.originY = y
}

// SetKeyMap replaces the navigation bindings.
func (m *WindowedListModel[T]) SetKeyMap(keys KeyMap) {
	m.keys = keys
}

// KeyMap returns the navigation bindings.
func (m *WindowedListModel[T]) KeyMap() KeyMap {
	return m.keys
}

// ID identifies this list in its messages.
func (m *WindowedListModel[T]) ID() int64 {
	return m.id
}

// ItemCount returns the rendered item count, including the placeholder slot
// for the next page.
func (m *WindowedListModel[T]) ItemCount() int {
	return m.layout.Count()
}

// Selected returns the selected index.
func (m *WindowedListModel[T]) Selected() int {
	return m.selected
}

// SetSelected selects index, clamped to the item count, and scrolls to it.
func (m *WindowedListModel[T]) SetSelected(index int) tea.Cmd {
	if m.layout.Count() == 0 {
		m.selected = 0
		return nil
	}
	return m.selectIndex(index)
}

// SelectedItem returns the selected record when it is loaded.
func (m *WindowedListModel[T]) SelectedItem() (T, bool) {
	return m.props.Data.Item(m.selected)
}

// ScrollOffset returns the scroll offset currently drawn.
func (m *WindowedListModel[T]) ScrollOffset() int {
	return m.scroll.offset()
}

// VisibleRange returns the first and last indices intersecting the viewport.
//
//nolint:nonamedreturns // Named returns document the triple.
func (m *WindowedListModel[T]) VisibleRange() (first, last int, ok bool) {
	return m.layout.Range(m.ScrollOffset(), m.height)
}

// Err returns the error of the last load, or nil.
func (m *WindowedListModel[T]) Err() error {
	return m.lastErr
}

// LoaderStats returns the load trigger counters.
func (m *WindowedListModel[T]) LoaderStats() loader.Stats {
	return m.loader.Stats()
}

// Height returns the viewport height.
func (m *WindowedListModel[T]) Height() int {
	return m.height
}

// Width returns the viewport width.
func (m *WindowedListModel[T]) Width() int {
	return m.width
}
