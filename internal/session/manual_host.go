package session

import (
	"sort"
	"time"
)

// ManualHost is a headless Host whose clock only moves when told to. Status
// probes, the headless runner and tests use it; frames and timers are
// delivered synchronously from Step and Advance.
type ManualHost struct {
	now      time.Time
	width    int
	height   int
	flags    map[string]bool
	nextID   int
	ticks    map[int]func(time.Duration)
	timers   []*manualTimer
	attached map[*Node]struct{}

	// Counters exposed for assertions and diagnostics.
	Subscribes   int
	Unsubscribes int
	TimersArmed  int
	TimersStops  int
}

type manualTimer struct {
	host    *ManualHost
	id      int
	due     time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t == nil || t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.host.TimersStops++
	return true
}

// NewManualHost returns a host starting at a fixed epoch with an 80x24 viewport.
func NewManualHost() *ManualHost {
	return &ManualHost{
		now:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		width:    80,
		height:   24,
		flags:    map[string]bool{"headless": true},
		ticks:    map[int]func(time.Duration){},
		attached: map[*Node]struct{}{},
	}
}

// Now implements Host.
func (h *ManualHost) Now() time.Time { return h.now }

// SubscribeTick implements Host.
func (h *ManualHost) SubscribeTick(fn func(time.Duration)) func() {
	h.nextID++
	id := h.nextID
	h.ticks[id] = fn
	h.Subscribes++
	return func() {
		if _, ok := h.ticks[id]; !ok {
			return
		}
		delete(h.ticks, id)
		h.Unsubscribes++
	}
}

// AfterFunc implements Host.
func (h *ManualHost) AfterFunc(d time.Duration, fn func()) Timer {
	h.nextID++
	t := &manualTimer{host: h, id: h.nextID, due: h.now.Add(d), fn: fn}
	h.timers = append(h.timers, t)
	h.TimersArmed++
	return t
}

// Attach implements Host.
func (h *ManualHost) Attach(node *Node) {
	if node != nil {
		h.attached[node] = struct{}{}
	}
}

// Detach implements Host.
func (h *ManualHost) Detach(node *Node) {
	delete(h.attached, node)
}

// Viewport implements Host.
func (h *ManualHost) Viewport() (int, int) { return h.width, h.height }

// Flags implements Host.
func (h *ManualHost) Flags() map[string]bool {
	out := make(map[string]bool, len(h.flags))
	for k, v := range h.flags {
		out[k] = v
	}
	return out
}

// SetViewport changes the reported viewport.
func (h *ManualHost) SetViewport(width, height int) {
	h.width, h.height = width, height
}

// Subscribers returns how many tick callbacks are registered.
func (h *ManualHost) Subscribers() int { return len(h.ticks) }

// Attached returns how many nodes are in the scene.
func (h *ManualHost) Attached() int { return len(h.attached) }

// Nodes returns the attached nodes in name order.
func (h *ManualHost) Nodes() []*Node {
	out := make([]*Node, 0, len(h.attached))
	for node := range h.attached {
		out = append(out, node)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PendingTimers returns how many timers are armed and not yet fired.
func (h *ManualHost) PendingTimers() int {
	n := 0
	for _, t := range h.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Step moves the clock by delta, delivers one frame, then fires any timers
// that came due. The frame always completes before a timer runs.
func (h *ManualHost) Step(delta time.Duration) {
	h.now = h.now.Add(delta)
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
	h.fireDue()
}

// Advance steps frame by frame until total has elapsed.
func (h *ManualHost) Advance(total, frame time.Duration) {
	if frame <= 0 {
		frame = total
	}
	for total > 0 {
		step := frame
		if step > total {
			step = total
		}
		h.Step(step)
		total -= step
	}
}

// Sleep moves the clock without delivering frames, then fires due timers.
// It models a throttled host that stopped rendering.
func (h *ManualHost) Sleep(d time.Duration) {
	h.now = h.now.Add(d)
	h.fireDue()
}

func (h *ManualHost) fireDue() {
	for {
		var next *manualTimer
		for _, t := range h.timers {
			if t.stopped || t.fired || t.due.After(h.now) {
				continue
			}
			if next == nil || t.due.Before(next.due) || (t.due.Equal(next.due) && t.id < next.id) {
				next = t
			}
		}
		if next == nil {
			break
		}
		next.fired = true
		next.fn()
	}
	kept := h.timers[:0]
	for _, t := range h.timers {
		if !t.stopped && !t.fired {
			kept = append(kept, t)
		}
	}
	h.timers = kept
}
