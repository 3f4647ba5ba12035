package session

import "time"

// Host is the runtime that owns the render loop a session plays inside.
//
// Every callback a Host delivers (ticks and timers) runs on the host's single
// scheduling domain, so sessions never need their own locking.
type Host interface {
	// Now returns the wall clock. Sessions derive elapsed time from it rather
	// than from tick or timer counts.
	Now() time.Time
	// SubscribeTick registers fn to run once per rendered frame.
	SubscribeTick(fn func(delta time.Duration)) (unsubscribe func())
	// AfterFunc schedules fn once after d. Delivery is imprecise.
	AfterFunc(d time.Duration, fn func()) Timer
	// Attach adds a drawable root to the host scene.
	Attach(node *Node)
	// Detach removes a previously attached root.
	Detach(node *Node)
	// Viewport reports the drawable area in cells.
	Viewport() (width, height int)
	// Flags reports device capabilities (color, tty, reduced motion...).
	Flags() map[string]bool
}

// Timer is a cancellable deferred callback handed out by a Host.
type Timer interface {
	// Stop cancels the timer. It reports false if the timer already fired or
	// was stopped before.
	Stop() bool
}

// Node is the drawable root a session owns in the host scene.
type Node struct {
	Name   string
	render func(width, height int) string
}

// NewNode returns an empty root labelled name.
func NewNode(name string) *Node {
	return &Node{Name: name}
}

// SetRenderer installs the draw function for this node.
func (n *Node) SetRenderer(fn func(width, height int) string) {
	if n == nil {
		return
	}
	n.render = fn
}

// Render draws the node into a width x height area.
func (n *Node) Render(width, height int) string {
	if n == nil || n.render == nil {
		return ""
	}
	return n.render(width, height)
}
