package tui

import (
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/arcade/internal/session"
)

// frameMsg is one render frame. gen discards frames from a stopped loop.
type frameMsg struct {
	gen int
}

// timerMsg fires a host timer by id.
type timerMsg struct {
	id int
}

type hostTimer struct {
	host *frameHost
	id   int
	fn   func()
}

func (t *hostTimer) Stop() bool {
	if _, ok := t.host.timers[t.id]; !ok {
		return false
	}
	delete(t.host.timers, t.id)
	return true
}

// frameHost is the session.Host of the terminal UI. Everything runs inside
// the Bubble Tea Update loop: frames and timers arrive as messages, and
// cancelling a timer just forgets its id.
type frameHost struct {
	now       func() time.Time
	width     int
	height    int
	flags     map[string]bool
	ticks     map[int]func(time.Duration)
	nextTick  int
	timers    map[int]*hostTimer
	nextTimer int
	nodes     []*session.Node
	lastFrame time.Time
	pending   []tea.Cmd
}

func newFrameHost(now func() time.Time) *frameHost {
	if now == nil {
		now = time.Now
	}
	return &frameHost{
		now:    now,
		width:  80,
		height: 24,
		flags:  map[string]bool{"terminal": true},
		ticks:  map[int]func(time.Duration){},
		timers: map[int]*hostTimer{},
	}
}

func (h *frameHost) Now() time.Time { return h.now() }

func (h *frameHost) SubscribeTick(fn func(time.Duration)) func() {
	h.nextTick++
	id := h.nextTick
	h.ticks[id] = fn
	if len(h.ticks) == 1 {
		h.lastFrame = h.now()
	}
	return func() { delete(h.ticks, id) }
}

func (h *frameHost) AfterFunc(d time.Duration, fn func()) session.Timer {
	h.nextTimer++
	t := &hostTimer{host: h, id: h.nextTimer, fn: fn}
	h.timers[t.id] = t
	id := t.id
	h.pending = append(h.pending, tea.Tick(d, func(time.Time) tea.Msg {
		return timerMsg{id: id}
	}))
	return t
}

func (h *frameHost) Attach(node *session.Node) {
	if node == nil {
		return
	}
	h.nodes = append(h.nodes, node)
}

func (h *frameHost) Detach(node *session.Node) {
	kept := h.nodes[:0]
	for _, n := range h.nodes {
		if n != node {
			kept = append(kept, n)
		}
	}
	h.nodes = kept
}

func (h *frameHost) Viewport() (int, int) { return h.width, h.height }

func (h *frameHost) Flags() map[string]bool {
	out := make(map[string]bool, len(h.flags))
	for k, v := range h.flags {
		out[k] = v
	}
	return out
}

func (h *frameHost) resize(width, height int) {
	h.width, h.height = width, height
}

// frame delivers one tick to every subscriber with the wall-clock delta since
// the previous frame.
func (h *frameHost) frame() {
	now := h.now()
	delta := now.Sub(h.lastFrame)
	h.lastFrame = now
	ids := make([]int, 0, len(h.ticks))
	for id := range h.ticks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := h.ticks[id]; ok {
			fn(delta)
		}
	}
}

// fire runs the timer with id unless it was stopped.
func (h *frameHost) fire(id int) {
	t, ok := h.timers[id]
	if !ok {
		return
	}
	delete(h.timers, id)
	t.fn()
}

func (h *frameHost) subscribed() bool { return len(h.ticks) > 0 }

// drain returns the commands queued by AfterFunc since the last call.
func (h *frameHost) drain() []tea.Cmd {
	cmds := h.pending
	h.pending = nil
	return cmds
}
