// Package catch implements the catch game: move the basket with the arrow
// keys and catch the falling stars.
package catch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/arcade/internal/module"
	"github.com/kingrea/arcade/internal/session"
)

// Kind identifies the catch game.
const Kind = "catch"

const (
	columns = 7
	rows    = 8
	// baseFall is how long a star takes to drop one row on normal.
	baseFall = 120 * time.Millisecond
)

var metadata = module.Metadata{
	Name:         "Catch",
	Instructions: "Move with left/right (or h/l) and catch the falling stars.",
	Description:  "Track and intercept.",
	Version:      "1.0.0",
}

// Descriptor returns the registry entry for the catch game.
func Descriptor() module.Descriptor {
	return module.Descriptor{
		ID:       Kind,
		Metadata: metadata,
		Defaults: session.Settings{DurationSeconds: 30, TargetScore: 15, Difficulty: session.DifficultyNormal},
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

// Register installs the catch game into reg.
func Register(reg *module.Registry) error {
	return reg.Register(Descriptor())
}

// New builds a catch session.
func New(host session.Host, settings session.Settings, opts ...session.Option) (*session.Lifecycle, error) {
	settings = settings.WithDefaults(Descriptor().Defaults)
	g := &game{
		basket: columns / 2,
		fall:   time.Duration(float64(baseFall) / settings.Difficulty.Multiplier()),
	}
	g.drop(0)
	opts = append([]session.Option{session.WithPresentation(metadata.Presentation())}, opts...)
	return session.New(Kind, host, g, settings, opts...)
}

type game struct {
	basket  int
	fall    time.Duration
	star    int
	row     int
	acc     time.Duration
	score   int
	missed  int
	spawned int
	effects *session.Effects
}

// drop places a new star at the top. Columns follow a fixed stride so runs
// are reproducible.
func (g *game) drop(offset int) {
	g.spawned++
	g.star = (g.spawned*3 + offset) % columns
	g.row = 0
}

func (g *game) Build(root *session.Node) {
	root.SetRenderer(g.render)
}

func (g *game) Update(frame session.Frame) error {
	g.effects = frame.Effects
	g.acc += frame.Delta
	for g.acc >= g.fall {
		g.acc -= g.fall
		g.row++
		if g.row < rows-1 {
			continue
		}
		if g.star == g.basket {
			g.score++
			frame.Effects.Add("catch", 200*time.Millisecond, session.FadeOut)
		} else {
			g.missed++
			frame.Effects.Add("miss", 200*time.Millisecond, session.FadeOut)
		}
		g.drop(g.missed)
	}
	return nil
}

func (g *game) Score() int { return g.score }

func (g *game) HandleInput(key string) {
	switch key {
	case "left", "h", "a":
		g.basket = max(g.basket-1, 0)
	case "right", "l", "d":
		g.basket = min(g.basket+1, columns-1)
	}
}

func (g *game) render(int, int) string {
	var b strings.Builder
	for r := 0; r < rows-1; r++ {
		line := []byte(strings.Repeat(" .", columns))
		if r == g.row {
			line[g.star*2+1] = '*'
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	basket := []byte(strings.Repeat("  ", columns))
	mark := byte('U')
	if g.effects.Amplitude("catch") > 0 {
		mark = '@'
	}
	basket[g.basket*2+1] = mark
	b.Write(basket)
	fmt.Fprintf(&b, "\ncaught %d  missed %d", g.score, g.missed)
	return b.String()
}
