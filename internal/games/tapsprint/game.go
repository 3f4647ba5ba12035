// Package tapsprint implements the tap sprint game: hammer the space bar to
// reach the target before the clock runs out. Wrong keys cost points, more
// of them on harder difficulties.
package tapsprint

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/arcade/internal/module"
	"github.com/kingrea/arcade/internal/session"
)

// Kind identifies the tap sprint game.
const Kind = "tap_sprint"

var metadata = module.Metadata{
	Name:         "Tap Sprint",
	Instructions: "Press space as fast as you can. Other keys cost points.",
	Description:  "A pure speed test.",
	Version:      "1.0.0",
}

// Descriptor returns the registry entry for tap sprint.
func Descriptor() module.Descriptor {
	return module.Descriptor{
		ID:       Kind,
		Metadata: metadata,
		Defaults: session.Settings{DurationSeconds: 10, TargetScore: 40, Difficulty: session.DifficultyNormal},
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

// Register installs tap sprint into reg.
func Register(reg *module.Registry) error {
	return reg.Register(Descriptor())
}

// New builds a tap sprint session on host.
func New(host session.Host, settings session.Settings, opts ...session.Option) (*session.Lifecycle, error) {
	settings = settings.WithDefaults(Descriptor().Defaults)
	opts = append([]session.Option{session.WithPresentation(metadata.Presentation())}, opts...)
	return session.New(Kind, host, &game{penalty: penaltyFor(settings.Difficulty)}, settings, opts...)
}

func penaltyFor(d session.Difficulty) int {
	switch d {
	case session.DifficultyEasy:
		return 0
	case session.DifficultyHard:
		return 2
	default:
		return 1
	}
}

type game struct {
	score   int
	target  int
	penalty int
	misses  int
	hits    int
	effects *session.Effects
}

func (g *game) Build(root *session.Node) {
	root.SetRenderer(g.render)
}

func (g *game) Update(frame session.Frame) error {
	g.target = frame.Settings.TargetScore
	g.effects = frame.Effects
	if g.hits > 0 {
		frame.Effects.Add("tap", 150*time.Millisecond, session.FadeOut)
		g.hits = 0
	}
	return nil
}

func (g *game) Score() int { return g.score }

func (g *game) HandleInput(key string) {
	if key == " " || key == "space" {
		g.score++
		g.hits++
		return
	}
	g.misses++
	g.score = max(g.score-g.penalty, 0)
}

func (g *game) render(width, _ int) string {
	if g.target <= 0 {
		return "get ready"
	}
	span := max(width-12, 10)
	filled := min(g.score*span/g.target, span)
	fill := "="
	if g.effects.Amplitude("tap") > 0 {
		fill = "#"
	}
	track := strings.Repeat(fill, filled) + strings.Repeat(".", span-filled)
	return fmt.Sprintf("[%s] %d/%d\nmisses: %d", track, g.score, g.target, g.misses)
}
