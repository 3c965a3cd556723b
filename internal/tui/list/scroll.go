package listview

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
)

// Spring parameters for animated scrolling.
const (
	scrollFPS       = 60
	springFrequency = 8.0
	springDamping   = 1.0

	// settleDistance is how close, in rows, the animation must get before it snaps.
	settleDistance = 0.5
)

// frameMsg advances a scroll animation.
type frameMsg struct {
	listID int64
	gen    int
}

// scroller tracks the scroll target and, when smooth, the animated position.
type scroller struct {
	smooth bool
	spring harmonica.Spring

	target    int
	pos       float64
	vel       float64
	animating bool
	gen       int
}

func newScroller(smooth bool) scroller {
	return scroller{
		smooth: smooth,
		spring: harmonica.NewSpring(harmonica.FPS(scrollFPS), springFrequency, springDamping),
	}
}

// offset returns the row offset to draw.
func (s *scroller) offset() int {
	if !s.animating {
		return s.target
	}
	return int(math.Round(s.pos))
}

// to sets a new target. Smooth scrollers start or continue an animation and
// return the next frame; others jump.
func (s *scroller) to(target int, listID int64) tea.Cmd {
	if !s.smooth {
		s.target = target
		s.pos = float64(target)
		return nil
	}
	if !s.animating {
		s.pos = float64(s.target)
		s.vel = 0
	}
	s.target = target
	if s.settled() {
		s.stop()
		return nil
	}
	if s.animating {
		return nil
	}
	s.animating = true
	s.gen++
	return s.frame(listID)
}

// clamp moves the target into bounds after a relayout, without animating.
func (s *scroller) clamp(target int) {
	if target == s.target {
		return
	}
	s.target = target
	if !s.animating {
		s.pos = float64(target)
	}
}

// step advances the animation by one frame and returns the next frame, or
// nil once the position has settled.
func (s *scroller) step(gen int, listID int64) tea.Cmd {
	if !s.animating || gen != s.gen {
		return nil
	}
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, float64(s.target))
	if s.settled() {
		s.stop()
		return nil
	}
	return s.frame(listID)
}

func (s *scroller) settled() bool {
	return math.Abs(s.pos-float64(s.target)) < settleDistance && math.Abs(s.vel) < settleDistance
}

func (s *scroller) stop() {
	s.animating = false
	s.pos = float64(s.target)
	s.vel = 0
}

func (s *scroller) frame(listID int64) tea.Cmd {
	gen := s.gen
	return tea.Tick(time.Second/scrollFPS, func(time.Time) tea.Msg {
		return frameMsg{listID: listID, gen: gen}
	})
}
