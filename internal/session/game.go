package session

import "time"

// Frame is the per-tick input handed to a Game.
type Frame struct {
	Delta    time.Duration
	Elapsed  time.Duration
	Settings Settings
	Effects  *Effects
}

// Game is the module-specific part of a session: the playable content the
// lifecycle drives.
type Game interface {
	// Build populates the session's root node. Called once from Initialize.
	Build(root *Node)
	// Update advances the game by one frame. A returned error fails the
	// session.
	Update(frame Frame) error
	// Score reports the current score.
	Score() int
}

// InputHandler is implemented by games that react to key presses.
type InputHandler interface {
	HandleInput(key string)
}

// Session is the contract the host drives. Lifecycle implements it; fallback
// decorators wrap it.
type Session interface {
	Kind() string
	Presentation() Presentation
	Settings() Settings
	Initialize()
	Start()
	Destroy()
	State() State
	Score() int
	HandleInput(key string)
	Fail(err error)
	Result() (Result, bool)
}
