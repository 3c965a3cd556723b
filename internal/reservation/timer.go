package reservation

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultInterval is the redraw cadence of a Timer.
const DefaultInterval = time.Second

//nolint:gochecknoglobals // Timer identity counter.
var lastTimerID atomic.Int64

// TickMsg asks the owner of a Timer to redraw its countdown.
type TickMsg struct {
	ID   int64
	gen  int
	Time time.Time
}

// ExpiredMsg reports that a hold lapsed while its timer was running.
type ExpiredMsg struct {
	ID     int64
	SlotID string
}

// Timer emits ticks until its hold expires or it is stopped. Ticks from a
// stopped or restarted timer, or from another timer, are ignored.
type Timer struct {
	Hold     Hold
	Interval time.Duration

	id      int64
	gen     int
	running bool
	last    time.Time
}

// NewTimer creates a stopped timer for hold.
func NewTimer(hold Hold, interval time.Duration) *Timer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Timer{
		Hold:     hold,
		Interval: interval,
		id:       lastTimerID.Add(1),
	}
}

// ID identifies the timer in its messages.
func (t *Timer) ID() int64 { return t.id }

// Running reports whether ticks are being scheduled.
func (t *Timer) Running() bool { return t.running }

// Start begins ticking. Restarting invalidates ticks already scheduled.
func (t *Timer) Start() tea.Cmd {
	t.gen++
	t.running = true
	return t.tick()
}

// Stop disposes of the timer; pending ticks become no-ops.
func (t *Timer) Stop() {
	t.gen++
	t.running = false
}

// Handle processes a tick. It reports false for ticks that belong to another
// timer or to a stopped generation of this one.
func (t *Timer) Handle(msg TickMsg) (tea.Cmd, bool) {
	if msg.ID != t.id || msg.gen != t.gen || !t.running {
		return nil, false
	}
	t.last = msg.Time

	if t.Hold.Expired(msg.Time) {
		t.running = false
		id, slot := t.id, t.Hold.SlotID
		return func() tea.Msg { return ExpiredMsg{ID: id, SlotID: slot} }, true
	}
	return t.tick(), true
}

// View renders the countdown at now.
func (t *Timer) View(now time.Time) string {
	return t.Hold.Format(now)
}

// LastTick returns the time of the last accepted tick.
func (t *Timer) LastTick() time.Time { return t.last }

func (t *Timer) tick() tea.Cmd {
	id, gen := t.id, t.gen
	return tea.Tick(t.Interval, func(now time.Time) tea.Msg {
		return TickMsg{ID: id, gen: gen, Time: now}
	})
}
