// Package generic provides the always-available session kind used when a
// requested game cannot be built. Any key scores a point.
package generic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/arcade/internal/session"
)

// Kind identifies the generic session kind.
const Kind = "generic"

const flashDuration = 250 * time.Millisecond

type game struct {
	score   int
	pending int
	effects *session.Effects
}

// New builds a generic session. It satisfies module.FallbackBuilder.
func New(_ context.Context, host session.Host, settings session.Settings, opts ...session.Option) (session.Session, error) {
	opts = append([]session.Option{session.WithPresentation(session.Presentation{
		Name:         "Quick Tap",
		Instructions: "Press any key to score a point.",
	})}, opts...)
	s, err := session.New(Kind, host, &game{}, settings, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (g *game) Build(root *session.Node) {
	root.SetRenderer(g.render)
}

func (g *game) Update(frame session.Frame) error {
	g.effects = frame.Effects
	for ; g.pending > 0; g.pending-- {
		frame.Effects.Add("hit", flashDuration, session.FadeOut)
	}
	return nil
}

func (g *game) Score() int { return g.score }

func (g *game) HandleInput(string) {
	g.score++
	g.pending++
}

func (g *game) render(width, _ int) string {
	marker := "o"
	if g.effects.Amplitude("hit") > 0.5 {
		marker = "O"
	}
	bar := strings.Repeat(marker, min(g.score, max(width-10, 1)))
	return fmt.Sprintf("score %d\n%s", g.score, bar)
}
