package catch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/arcade/internal/session"
)

func TestBasketStaysOnBoard(t *testing.T) {
	g := &game{basket: 0}
	g.HandleInput("left")
	assert.Equal(t, 0, g.basket)
	for i := 0; i < columns+3; i++ {
		g.HandleInput("l")
	}
	assert.Equal(t, columns-1, g.basket)
}

func TestTrackingPlayerWins(t *testing.T) {
	host := session.NewManualHost()
	g := &game{basket: columns / 2, fall: baseFall}
	g.drop(0)
	var won bool
	s, err := session.New(Kind, host, g, session.Settings{DurationSeconds: 30, TargetScore: 5},
		session.WithCompletion(func(success bool, _ int) { won = success }))
	require.NoError(t, err)
	s.Initialize()
	s.Start()

	for i := 0; i < 2000 && !won; i++ {
		switch {
		case g.basket < g.star:
			s.HandleInput("right")
		case g.basket > g.star:
			s.HandleInput("left")
		}
		host.Step(20 * time.Millisecond)
	}
	assert.True(t, won)
	assert.Zero(t, g.missed)
}

func TestIdlePlayerMisses(t *testing.T) {
	g := &game{basket: 0, fall: baseFall}
	g.drop(0)
	effects := &session.Effects{}
	for i := 0; i < rows*4; i++ {
		require.NoError(t, g.Update(session.Frame{Delta: baseFall, Effects: effects}))
	}
	assert.Positive(t, g.missed)
	assert.Contains(t, g.render(0, 0), "missed")
}
