package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 100 * time.Millisecond

// scriptedGame scores according to a function of elapsed time.
type scriptedGame struct {
	scoreAt   func(elapsed time.Duration) int
	score     int
	updateErr error
	panicMsg  string
	built     int
	inputs    []string
}

func (g *scriptedGame) Build(root *Node) {
	g.built++
	root.SetRenderer(func(int, int) string { return "scripted" })
}

func (g *scriptedGame) Update(f Frame) error {
	if g.panicMsg != "" {
		panic(g.panicMsg)
	}
	if g.updateErr != nil {
		return g.updateErr
	}
	if g.scoreAt != nil {
		g.score = g.scoreAt(f.Elapsed)
	}
	return nil
}

func (g *scriptedGame) Score() int { return g.score }

func (g *scriptedGame) HandleInput(key string) {
	g.inputs = append(g.inputs, key)
	g.score++
}

type completion struct {
	calls   int
	success bool
	score   int
	at      time.Duration
}

func newTestLifecycle(t *testing.T, host *ManualHost, game Game, settings Settings, opts ...Option) (*Lifecycle, *completion) {
	t.Helper()
	done := &completion{}
	start := host.Now()
	opts = append([]Option{WithCompletion(func(success bool, score int) {
		done.calls++
		done.success = success
		done.score = score
		done.at = host.Now().Sub(start)
	})}, opts...)
	l, err := New("test_game", host, game, settings, opts...)
	require.NoError(t, err)
	return l, done
}

func TestStartIsNoOpUnlessReady(t *testing.T) {
	host := NewManualHost()
	l, _ := newTestLifecycle(t, host, &scriptedGame{}, Settings{DurationSeconds: 10, TargetScore: 5})

	l.Start()
	require.Equal(t, StateCreated, l.State())
	require.Equal(t, 0, host.TimersArmed)

	l.Initialize()
	require.Equal(t, StateReady, l.State())
	l.Start()
	started := l.startedAt
	host.Step(frame)
	l.Start()

	assert.Equal(t, StatePlaying, l.State())
	assert.Equal(t, 1, host.TimersArmed, "second Start must not arm another deadline")
	assert.Equal(t, 1, host.Subscribes)
	assert.Equal(t, started, l.startedAt, "second Start must not reset the start time")
}

func TestInitializeBuildsSceneOnce(t *testing.T) {
	host := NewManualHost()
	game := &scriptedGame{}
	l, _ := newTestLifecycle(t, host, game, Settings{DurationSeconds: 1, TargetScore: 1})

	l.Initialize()
	l.Initialize()

	assert.Equal(t, 1, game.built)
	assert.Equal(t, 1, host.Attached())
	assert.Equal(t, "scripted", host.Nodes()[0].Render(10, 10))
}

func TestWinBeforeDeadlineCompletesEarly(t *testing.T) {
	host := NewManualHost()
	game := &scriptedGame{scoreAt: func(elapsed time.Duration) int {
		if elapsed >= 4*time.Second {
			return 30
		}
		return int(elapsed / (200 * time.Millisecond))
	}}
	l, done := newTestLifecycle(t, host, game, Settings{DurationSeconds: 10, TargetScore: 30, Difficulty: DifficultyNormal})
	l.Initialize()
	l.Start()

	host.Advance(10*time.Second, frame)

	require.Equal(t, 1, done.calls)
	assert.True(t, done.success)
	assert.Equal(t, 30, done.score)
	assert.Equal(t, 4*time.Second, done.at)
	assert.Equal(t, StateCompleted, l.State())
	result, ok := l.Result()
	require.True(t, ok)
	assert.InDelta(t, 4.0, result.ElapsedSeconds, 0.001)
	assert.Equal(t, 0, host.PendingTimers(), "deadline must be cancelled before the terminal state")
	assert.Equal(t, 0, host.Subscribers())
}

func TestDeadlineWithoutWinFails(t *testing.T) {
	host := NewManualHost()
	game := &scriptedGame{scoreAt: func(time.Duration) int { return 3 }}
	l, done := newTestLifecycle(t, host, game, Settings{DurationSeconds: 10, TargetScore: 30})
	l.Initialize()
	l.Start()

	host.Advance(9*time.Second, frame)
	require.Equal(t, 0, done.calls)
	host.Advance(2*time.Second, frame)

	require.Equal(t, 1, done.calls)
	assert.False(t, done.success)
	assert.Equal(t, 3, done.score)
	assert.Equal(t, StateFailed, l.State())
	assert.Equal(t, 0, host.Subscribers())
}

func TestDeadlineReevaluatesWinPredicate(t *testing.T) {
	host := NewManualHost()
	game := &scriptedGame{}
	l, done := newTestLifecycle(t, host, game, Settings{DurationSeconds: 2, TargetScore: 3})
	l.Initialize()
	l.Start()

	// The host stops rendering; the score changes through input only.
	l.HandleInput("space")
	l.HandleInput("space")
	l.HandleInput("space")
	host.Sleep(3 * time.Second)

	require.Equal(t, 1, done.calls)
	assert.True(t, done.success)
	result, _ := l.Result()
	assert.InDelta(t, 3.0, result.ElapsedSeconds, 0.001, "elapsed comes from the wall clock, not the timer")
}

func TestDestroyIsIdempotent(t *testing.T) {
	host := NewManualHost()
	l, done := newTestLifecycle(t, host, &scriptedGame{}, Settings{DurationSeconds: 5, TargetScore: 5})
	l.Initialize()
	l.Start()

	l.Destroy()
	l.Destroy()

	assert.Equal(t, 1, host.Unsubscribes)
	assert.Equal(t, 1, host.TimersStops)
	assert.Equal(t, 0, host.Attached())
	host.Advance(10*time.Second, frame)
	assert.Equal(t, 0, done.calls, "destroyed sessions never complete")
}

func TestDestroyFromCompletionCallback(t *testing.T) {
	host := NewManualHost()
	game := &scriptedGame{scoreAt: func(time.Duration) int { return 1 }}
	var l *Lifecycle
	offered := false
	l, err := New("reentrant", host, game, Settings{DurationSeconds: 5, TargetScore: 1},
		WithCompletion(func(bool, int) { l.Destroy() }),
		WithRestartOffer(func() { offered = true }),
	)
	require.NoError(t, err)
	l.Initialize()
	l.Start()

	require.NotPanics(t, func() { host.Advance(time.Second, frame) })
	assert.Equal(t, StateCompleted, l.State())
	assert.Equal(t, 1, host.Unsubscribes)
	assert.Equal(t, 0, host.PendingTimers())
	assert.False(t, offered)
}

func TestRestartOfferFiresAfterDelay(t *testing.T) {
	host := NewManualHost()
	game := &scriptedGame{scoreAt: func(time.Duration) int { return 2 }}
	offered := 0
	l, _ := newTestLifecycle(t, host, game, Settings{DurationSeconds: 5, TargetScore: 2},
		WithRestartOffer(func() { offered++ }),
		WithRestartDelay(time.Second),
	)
	l.Initialize()
	l.Start()

	host.Step(frame)
	require.Equal(t, StateCompleted, l.State())
	assert.Equal(t, 0, offered)
	host.Advance(time.Second, frame)
	assert.Equal(t, 1, offered)
}

func TestUpdateErrorFailsSession(t *testing.T) {
	host := NewManualHost()
	boom := errors.New("texture upload failed")
	var reported error
	l, done := newTestLifecycle(t, host, &scriptedGame{updateErr: boom}, Settings{DurationSeconds: 5, TargetScore: 5},
		WithFailureHandler(func(err error) { reported = err }),
	)
	l.Initialize()
	l.Start()
	host.Step(frame)

	assert.ErrorIs(t, reported, boom)
	assert.Equal(t, StateFailed, l.State())
	assert.Equal(t, 1, done.calls)
	assert.False(t, done.success)
	assert.Equal(t, 0, host.PendingTimers())
}

func TestUpdatePanicIsRecovered(t *testing.T) {
	host := NewManualHost()
	var reported error
	l, _ := newTestLifecycle(t, host, &scriptedGame{panicMsg: "nil sprite"}, Settings{DurationSeconds: 5, TargetScore: 5},
		WithFailureHandler(func(err error) { reported = err }),
	)
	l.Initialize()
	l.Start()

	require.NotPanics(t, func() { host.Step(frame) })
	require.Error(t, reported)
	assert.Contains(t, reported.Error(), "nil sprite")
	assert.Equal(t, StateFailed, l.State())
}

// brokenBuild panics while building its scene.
type brokenBuild struct{ scriptedGame }

func (g *brokenBuild) Build(*Node) { panic("nil sprite sheet") }

func TestBuildPanicFailsSessionWithoutAttaching(t *testing.T) {
	host := NewManualHost()
	var reported error
	var result Result
	l, done := newTestLifecycle(t, host, &brokenBuild{}, Settings{DurationSeconds: 5, TargetScore: 5},
		WithFailureHandler(func(err error) { reported = err }),
		WithResultHandler(func(r Result) { result = r }),
		WithRestartOffer(func() {}),
	)

	require.NotPanics(t, l.Initialize)
	require.Error(t, reported)
	assert.Contains(t, reported.Error(), "nil sprite sheet")
	assert.Equal(t, StateFailed, l.State())
	assert.Equal(t, 1, done.calls)
	assert.False(t, result.Success)
	assert.Zero(t, result.ElapsedSeconds)
	assert.Equal(t, 0, host.Attached())

	l.Start()
	assert.Equal(t, StateFailed, l.State())
	assert.Equal(t, 1, host.PendingTimers(), "only the restart offer is armed")
	require.NotPanics(t, l.Destroy)
	assert.Equal(t, 0, host.PendingTimers())
}

func TestSettingsAreCopiedAtConstruction(t *testing.T) {
	host := NewManualHost()
	settings := Settings{DurationSeconds: 5, TargetScore: 5}
	l, _ := newTestLifecycle(t, host, &scriptedGame{}, settings)
	settings.TargetScore = 1

	assert.Equal(t, 5, l.Settings().TargetScore)
	assert.Equal(t, DifficultyNormal, l.Settings().Difficulty)
}

func TestNewStoresCanonicalDifficulty(t *testing.T) {
	l, _ := newTestLifecycle(t, NewManualHost(), &scriptedGame{}, Settings{DurationSeconds: 5, TargetScore: 5, Difficulty: "Hard"})

	assert.Equal(t, DifficultyHard, l.Settings().Difficulty)
	assert.Equal(t, 1.5, l.Settings().Difficulty.Multiplier())
	assert.Equal(t, DifficultyEasy, Settings{Difficulty: " EASY "}.WithDefaults(DefaultSettings()).Difficulty)
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	_, err := New("bad", NewManualHost(), &scriptedGame{}, Settings{DurationSeconds: 5, TargetScore: 5, Difficulty: "nightmare"})
	require.Error(t, err)
	_, err = New("bad", nil, &scriptedGame{}, DefaultSettings())
	require.Error(t, err)
}

func TestEffectsDecayOverTicks(t *testing.T) {
	host := NewManualHost()
	game := &flashGame{}
	l, _ := newTestLifecycle(t, host, game, Settings{DurationSeconds: 10, TargetScore: 100})
	l.Initialize()
	l.Start()

	host.Step(frame)
	require.Equal(t, 1, l.Effects().Len())
	assert.InDelta(t, 1.0, l.Effects().Amplitude("hit"), 0.001)
	host.Step(250 * time.Millisecond)
	assert.InDelta(t, 0.5, l.Effects().Amplitude("hit"), 0.001)
	host.Step(300 * time.Millisecond)
	assert.Equal(t, 0, l.Effects().Len())
}

type flashGame struct{ fired bool }

func (g *flashGame) Build(*Node) {}

func (g *flashGame) Update(f Frame) error {
	if !g.fired {
		g.fired = true
		f.Effects.Add("hit", 500*time.Millisecond, FadeOut)
	}
	return nil
}

func (g *flashGame) Score() int { return 0 }
