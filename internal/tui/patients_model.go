package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/carelist/internal/logging"
	"github.com/rshade/carelist/internal/paging"
	"github.com/rshade/carelist/internal/patient"
	"github.com/rshade/carelist/internal/reservation"
	listview "github.com/rshade/carelist/internal/tui/list"
)

// Zone ids of the clickable buttons.
const (
	zoneRetry = "patients-retry"
	zoneClose = "patients-close"
)

// Screen chrome heights.
const (
	headerHeight = 1
	alertHeight  = 1
	footerHeight = 1
)

// ErrNilPager is returned when the screen has nothing to page through.
var ErrNilPager = errors.New("patients screen needs a pager")

// ViewState is the screen the patients model is showing.
type ViewState int

const (
	ViewStateList ViewState = iota
	ViewStateDetail
	ViewStateQuitting
)

// PatientSelectedMsg opens the detail pane for a clicked or entered row.
type PatientSelectedMsg struct {
	Index   int
	Patient patient.Summary
}

// PatientsOptions configure the patients screen.
type PatientsOptions struct {
	Pager *paging.Pager[patient.Summary]
	Title string

	// HoldDuration is how long a pickup slot stays reserved after opening a patient.
	HoldDuration time.Duration
	// HoldInterval is the countdown redraw cadence.
	HoldInterval time.Duration

	List ListTuning

	// Zones hit-tests the buttons. Nil creates a private manager.
	Zones  *zone.Manager
	Now    func() time.Time
	Logger *zerolog.Logger
}

// ListTuning passes list settings through to the windowed list. Zero values
// use the list defaults.
type ListTuning struct {
	Overscan          int
	Threshold         int
	MinimumBatchSize  int
	EstimatedItemSize int
	SmoothScroll      bool
	StrictSizes       bool
}

type patientsKeys struct {
	Retry key.Binding
	Close key.Binding
	Quit  key.Binding
}

func defaultPatientsKeys() patientsKeys {
	return patientsKeys{
		Retry: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Close: key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "close")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// PatientsModel is the Bubble Tea model for the interactive patient list.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type PatientsModel struct {
	state ViewState
	ctx   context.Context
	title string

	pager   *paging.Pager[patient.Summary]
	list    *listview.WindowedListModel[patient.Summary]
	spinner spinner.Model
	help    help.Model
	keys    patientsKeys
	zones   *zone.Manager
	printer *message.Printer
	logger  zerolog.Logger
	now     func() time.Time

	detail       *PatientSelectedMsg
	timer        *reservation.Timer
	holdExpired  bool
	holdDuration time.Duration
	holdInterval time.Duration

	width  int
	height int
}

// NewPatientsModel builds the screen over opts.Pager. The first page is
// requested once the terminal size is known.
func NewPatientsModel(ctx context.Context, opts PatientsOptions) (PatientsModel, error) {
	if opts.Pager == nil {
		return PatientsModel{}, ErrNilPager
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HoldDuration <= 0 {
		opts.HoldDuration = reservation.DefaultHoldDuration
	}
	if opts.Title == "" {
		opts.Title = "Patients"
	}
	zones := opts.Zones
	if zones == nil {
		zones = zone.New()
	}

	logger := logging.FromContext(ctx)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger = logging.ComponentLogger(logger, "tui")

	pager := opts.Pager
	list, err := listview.New(ctx, listview.Props[patient.Summary]{
		Data:         pager,
		LoadNextPage: pager.LoadNextPage,
		RenderItem:   PatientRow(opts.Now),
		ItemHeight:   RowHeight,

		Overscan:          opts.List.Overscan,
		Threshold:         opts.List.Threshold,
		MinimumBatchSize:  opts.List.MinimumBatchSize,
		EstimatedItemSize: opts.List.EstimatedItemSize,
		SmoothScroll:      opts.List.SmoothScroll,
		StrictSizes:       opts.List.StrictSizes,

		OnItemClick: func(p patient.Summary, index int) tea.Cmd {
			return func() tea.Msg { return PatientSelectedMsg{Index: index, Patient: p} }
		},
		Logger: &logger,
	})
	if err != nil {
		return PatientsModel{}, err
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = MutedStyle

	return PatientsModel{
		state:        ViewStateList,
		ctx:          ctx,
		title:        opts.Title,
		pager:        pager,
		list:         list,
		spinner:      sp,
		help:         help.New(),
		keys:         defaultPatientsKeys(),
		zones:        zones,
		printer:      message.NewPrinter(language.English),
		logger:       logger,
		now:          opts.Now,
		holdDuration: opts.HoldDuration,
		holdInterval: opts.HoldInterval,
	}, nil
}

// Init starts the spinner and the list (Bubble Tea interface).
func (m PatientsModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.list.Init())
}

// Update handles messages and updates the model state (Bubble Tea interface).
func (m PatientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		top, height := m.listBounds()
		m.list.SetOrigin(0, top)
		_, cmd := m.list.Update(tea.WindowSizeMsg{Width: m.width, Height: height})
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listview.LoadSettledMsg:
		if msg.Err != nil {
			m.logger.Warn().Ctx(m.ctx).Err(msg.Err).Msg("patient page failed to load")
		}
		// The alert line may have appeared or gone; size the list before it
		// checks its window again.
		m.resizeList()
		_, cmd := m.list.Update(msg)
		return m, cmd

	case PatientSelectedMsg:
		return m.openDetail(msg)

	case reservation.TickMsg:
		if m.timer == nil {
			return m, nil
		}
		cmd, _ := m.timer.Handle(msg)
		return m, cmd

	case reservation.ExpiredMsg:
		if m.timer != nil && msg.ID == m.timer.ID() {
			m.holdExpired = true
			m.logger.Info().Ctx(m.ctx).Str("slot", msg.SlotID).Msg("pickup hold expired")
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	// Animation frames and anything else the list owns.
	_, cmd := m.list.Update(msg)
	return m, cmd
}

func (m PatientsModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}

	if m.state == ViewStateDetail {
		if key.Matches(msg, m.keys.Close) {
			return m.closeDetail(), nil
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Retry) && m.pager.Err() != nil {
		return m, m.retry()
	}

	_, cmd := m.list.Update(msg)
	return m, cmd
}

func (m PatientsModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	released := msg.Action == tea.MouseActionRelease
	if m.state == ViewStateDetail {
		if released && m.zones.Get(zoneClose).InBounds(msg) {
			return m.closeDetail(), nil
		}
		return m, nil
	}

	if released && m.pager.Err() != nil && m.zones.Get(zoneRetry).InBounds(msg) {
		return m, m.retry()
	}

	_, cmd := m.list.Update(msg)
	return m, cmd
}

func (m PatientsModel) quit() (tea.Model, tea.Cmd) {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.state = ViewStateQuitting
	return m, tea.Quit
}

// retry asks the list to re-check its window; the failed page is still the
// next one, so the check fetches it again.
func (m PatientsModel) retry() tea.Cmd {
	m.logger.Info().Ctx(m.ctx).Msg("retrying patient page")
	m.resizeList()
	return m.list.Refresh()
}

// openDetail shows the patient and reserves a pickup slot for them.
func (m PatientsModel) openDetail(msg PatientSelectedMsg) (tea.Model, tea.Cmd) {
	if m.timer != nil {
		m.timer.Stop()
	}

	hold, err := reservation.HoldFor("pickup-"+msg.Patient.ID, m.now(), m.holdDuration)
	if err != nil {
		m.logger.Error().Ctx(m.ctx).Err(err).Msg("could not reserve pickup slot")
		m.timer = nil
	} else {
		m.timer = reservation.NewTimer(hold, m.holdInterval)
	}

	m.detail = &msg
	m.holdExpired = false
	m.state = ViewStateDetail

	if m.timer == nil {
		return m, nil
	}
	return m, m.timer.Start()
}

func (m PatientsModel) closeDetail() PatientsModel {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.detail = nil
	m.holdExpired = false
	m.state = ViewStateList
	return m
}

// listBounds returns the first screen row of the list and the rows left
// over by the chrome.
func (m PatientsModel) listBounds() (top, height int) {
	top = headerHeight
	if m.pager.Err() != nil {
		top += alertHeight
	}
	return top, max(m.height-top-footerHeight, 1)
}

// resizeList fits the list between the chrome without checking for loads.
func (m PatientsModel) resizeList() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	top, height := m.listBounds()
	m.list.SetOrigin(0, top)
	m.list.SetSize(m.width, height)
}

// State returns the current view state.
func (m PatientsModel) State() ViewState {
	return m.state
}

// List returns the embedded list.
func (m PatientsModel) List() *listview.WindowedListModel[patient.Summary] {
	return m.list
}

// Detail returns the patient shown in the detail pane.
func (m PatientsModel) Detail() (patient.Summary, bool) {
	if m.detail == nil {
		return patient.Summary{}, false
	}
	return m.detail.Patient, true
}

// Hold returns the pickup hold of the open patient.
func (m PatientsModel) Hold() (reservation.Hold, bool) {
	if m.timer == nil {
		return reservation.Hold{}, false
	}
	return m.timer.Hold, true
}

// HoldExpired reports whether the open patient's hold lapsed.
func (m PatientsModel) HoldExpired() bool {
	return m.holdExpired
}
