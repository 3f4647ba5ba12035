// Package reaction implements the reaction game: wait for the signal, then
// press space. Faster reactions score more; jumping the gun costs a point.
package reaction

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/kingrea/arcade/internal/module"
	"github.com/kingrea/arcade/internal/session"
)

// Kind identifies the reaction game.
const Kind = "reaction"

const (
	minWait = 600 * time.Millisecond
	maxWait = 2 * time.Second
)

var metadata = module.Metadata{
	Name:         "Reaction",
	Instructions: "Wait for GO, then press space. Early presses cost a point.",
	Description:  "Reflexes under a deadline.",
	Version:      "1.0.0",
}

// Descriptor returns the registry entry for the reaction game.
func Descriptor() module.Descriptor {
	return module.Descriptor{
		ID:       Kind,
		Metadata: metadata,
		Defaults: session.Settings{DurationSeconds: 20, TargetScore: 25, Difficulty: session.DifficultyNormal},
		Constructor: func(_ context.Context, host session.Host, settings session.Settings, opts ...session.Option) (session.Session, error) {
			s, err := New(host, settings, opts...)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		Status: module.StatusImplemented,
	}
}

// Register installs the reaction game into reg.
func Register(reg *module.Registry) error {
	return reg.Register(Descriptor())
}

// New builds a reaction session. Signal timing is seeded from the host clock
// so a ManualHost replays identically.
func New(host session.Host, settings session.Settings, opts ...session.Option) (*session.Lifecycle, error) {
	if host == nil {
		return nil, fmt.Errorf("reaction: host is required")
	}
	settings = settings.WithDefaults(Descriptor().Defaults)
	seed := uint64(host.Now().UnixNano())
	g := &game{
		rng:    rand.New(rand.NewPCG(seed, seed>>1|1)),
		window: time.Duration(float64(time.Second) / settings.Difficulty.Multiplier()),
	}
	opts = append([]session.Option{session.WithPresentation(metadata.Presentation())}, opts...)
	return session.New(Kind, host, g, settings, opts...)
}

type phase int

const (
	phaseWaiting phase = iota
	phaseSignal
)

type game struct {
	rng     *rand.Rand
	window  time.Duration
	phase   phase
	now     time.Duration
	signal  time.Duration
	score   int
	last    time.Duration
	pressed bool
	early   bool
	effects *session.Effects
}

func (g *game) Build(root *session.Node) {
	root.SetRenderer(g.render)
}

func (g *game) Update(frame session.Frame) error {
	g.now = frame.Elapsed
	g.effects = frame.Effects
	if g.signal == 0 {
		g.arm()
	}
	if g.early {
		frame.Effects.Add("early", 300*time.Millisecond, session.Pulse)
		g.early = false
	}
	switch g.phase {
	case phaseWaiting:
		if g.now >= g.signal {
			g.phase = phaseSignal
		}
	case phaseSignal:
		if g.pressed {
			g.last = g.now - g.signal
			g.score += points(g.last, g.window)
			frame.Effects.Add("hit", 200*time.Millisecond, session.FadeOut)
			g.arm()
		} else if g.now-g.signal > g.window {
			g.arm()
		}
	}
	g.pressed = false
	return nil
}

// points awards 1 to 5 points, linearly by how much of window is left.
func points(reaction, window time.Duration) int {
	if reaction >= window {
		return 1
	}
	return 1 + int(4*(window-reaction)/window)
}

func (g *game) arm() {
	g.phase = phaseWaiting
	g.signal = g.now + minWait + time.Duration(g.rng.Int64N(int64(maxWait-minWait)))
}

func (g *game) Score() int { return g.score }

func (g *game) HandleInput(key string) {
	if key != " " && key != "space" {
		return
	}
	if g.phase == phaseWaiting {
		g.score = max(g.score-1, 0)
		g.early = true
		return
	}
	g.pressed = true
}

func (g *game) render(int, int) string {
	status := "wait..."
	if g.phase == phaseSignal {
		status = ">>> GO <<<"
	}
	if g.effects.Amplitude("early") > 0 {
		status = "too early!"
	}
	line := fmt.Sprintf("%s\nscore %d", status, g.score)
	if g.last > 0 {
		line += fmt.Sprintf("  last %dms", g.last.Milliseconds())
	}
	return line
}
