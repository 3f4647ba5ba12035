package session

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// DefaultRestartDelay is how long after a terminal transition the restart
// affordance is offered.
const DefaultRestartDelay = 1500 * time.Millisecond

// CompletionFunc receives the outcome of a session exactly once.
type CompletionFunc func(success bool, score int)

// Option customizes a Lifecycle.
type Option func(*Lifecycle)

// WithCompletion registers the host's completion callback.
func WithCompletion(fn CompletionFunc) Option {
	return func(l *Lifecycle) {
		l.onComplete = fn
	}
}

// WithResultHandler receives the full Result alongside the completion callback.
func WithResultHandler(fn func(Result)) Option {
	return func(l *Lifecycle) {
		l.onResult = fn
	}
}

// WithRestartOffer registers the callback fired RestartDelay after the session ends.
func WithRestartOffer(fn func()) Option {
	return func(l *Lifecycle) {
		l.onRestartOffer = fn
	}
}

// WithRestartDelay overrides DefaultRestartDelay.
func WithRestartDelay(d time.Duration) Option {
	return func(l *Lifecycle) {
		if d > 0 {
			l.restartDelay = d
		}
	}
}

// WithFailureHandler receives runtime failures raised while playing.
func WithFailureHandler(fn func(error)) Option {
	return func(l *Lifecycle) {
		l.onFailure = fn
	}
}

// WithLogger routes lifecycle diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lifecycle) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithPresentation sets the player-facing name and instructions.
func WithPresentation(p Presentation) Option {
	return func(l *Lifecycle) {
		l.presentation = p
	}
}

// Lifecycle drives one play attempt of a Game: Ready -> Playing -> Completed
// or Failed. It is not safe for concurrent use; all calls must come from the
// host's scheduling domain.
type Lifecycle struct {
	kind         string
	host         Host
	game         Game
	settings     Settings
	presentation Presentation
	logger       *slog.Logger

	onComplete     CompletionFunc
	onResult       func(Result)
	onRestartOffer func()
	onFailure      func(error)
	restartDelay   time.Duration

	state       State
	root        *Node
	attached    bool
	startedAt   time.Time
	deadline    Timer
	restart     Timer
	unsubscribe func()
	effects     Effects
	score       int
	result      Result
	finished    bool
	destroyed   bool
}

// New builds a lifecycle for game running on host. Settings are copied.
func New(kind string, host Host, game Game, settings Settings, opts ...Option) (*Lifecycle, error) {
	if host == nil {
		return nil, fmt.Errorf("session: host is required for %s", kind)
	}
	if game == nil {
		return nil, fmt.Errorf("session: game is required for %s", kind)
	}
	settings = settings.WithDefaults(DefaultSettings())
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	l := &Lifecycle{
		kind:         kind,
		host:         host,
		game:         game,
		settings:     settings,
		presentation: Presentation{Name: kind},
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		restartDelay: DefaultRestartDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	l.logger = l.logger.With("session_kind", kind)
	return l, nil
}

// Kind returns the game-type identifier of the session.
func (l *Lifecycle) Kind() string { return l.kind }

// Presentation returns the player-facing label.
func (l *Lifecycle) Presentation() Presentation { return l.presentation }

// Settings returns the session's settings copy.
func (l *Lifecycle) Settings() Settings { return l.settings }

// State returns the current lifecycle state.
func (l *Lifecycle) State() State { return l.state }

// Score returns the last score read from the game.
func (l *Lifecycle) Score() int { return l.score }

// Effects exposes the active timed effects for renderers.
func (l *Lifecycle) Effects() *Effects { return &l.effects }

// Result returns the outcome once the session reached a terminal state.
func (l *Lifecycle) Result() (Result, bool) {
	return l.result, l.finished
}

// Elapsed returns wall-clock time since Start, or zero before it.
func (l *Lifecycle) Elapsed() time.Duration {
	if l.startedAt.IsZero() {
		return 0
	}
	if l.finished {
		return time.Duration(l.result.ElapsedSeconds * float64(time.Second))
	}
	return l.host.Now().Sub(l.startedAt)
}

// Remaining returns the time left before the deadline while playing.
func (l *Lifecycle) Remaining() time.Duration {
	if l.state != StatePlaying {
		return 0
	}
	left := l.duration() - l.Elapsed()
	if left < 0 {
		return 0
	}
	return left
}

// Initialize builds the session scene and attaches it to the host. A game
// that fails to build ends the session as Failed without ever being attached.
func (l *Lifecycle) Initialize() {
	if l.state != StateCreated || l.destroyed {
		return
	}
	root := NewNode(l.kind)
	if err := l.guard("initialize", func() error {
		l.game.Build(root)
		return nil
	}); err != nil {
		l.logger.Warn("session build failed", "error", err)
		if l.onFailure != nil {
			l.onFailure(err)
		}
		l.finish(false)
		return
	}
	l.root = root
	l.host.Attach(l.root)
	l.attached = true
	l.state = StateReady
	l.logger.Debug("session initialized")
}

// Start arms the deadline and subscribes to ticks. It is a no-op unless the
// session is Ready.
func (l *Lifecycle) Start() {
	if l.state != StateReady || l.destroyed {
		return
	}
	l.startedAt = l.host.Now()
	l.deadline = l.host.AfterFunc(l.duration(), l.onDeadline)
	l.unsubscribe = l.host.SubscribeTick(l.onTick)
	l.state = StatePlaying
	l.logger.Info("session started",
		"duration_seconds", l.settings.DurationSeconds,
		"target_score", l.settings.TargetScore,
		"difficulty", string(l.settings.Difficulty),
	)
}

// HandleInput forwards a key press to the game while playing.
func (l *Lifecycle) HandleInput(key string) {
	if l.state != StatePlaying || l.destroyed {
		return
	}
	handler, ok := l.game.(InputHandler)
	if !ok {
		return
	}
	if err := l.guard("input", func() error {
		handler.HandleInput(key)
		return nil
	}); err != nil {
		l.Fail(err)
	}
}

// Fail ends a playing session as Failed and reports err to the failure handler.
func (l *Lifecycle) Fail(err error) {
	if l.state != StatePlaying || l.finished {
		return
	}
	if err != nil {
		l.logger.Warn("session failed", "error", err)
		if l.onFailure != nil {
			l.onFailure(err)
		}
	}
	if l.state == StatePlaying {
		l.finish(false)
	}
}

// Destroy releases every host resource the session holds. It is safe to call
// repeatedly, from any state, including from within the session's own
// callbacks, and never panics.
func (l *Lifecycle) Destroy() {
	if l == nil || l.destroyed {
		return
	}
	l.destroyed = true
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("session destroy recovered", "panic", fmt.Sprint(r))
		}
	}()
	l.cancelTimers()
	l.detach()
	l.logger.Debug("session destroyed", "state", l.state.String())
}

func (l *Lifecycle) onTick(delta time.Duration) {
	if l.state != StatePlaying {
		return
	}
	elapsed := l.host.Now().Sub(l.startedAt)
	l.effects.advance(elapsed)
	err := l.guard("update", func() error {
		return l.game.Update(Frame{
			Delta:    delta,
			Elapsed:  elapsed,
			Settings: l.settings,
			Effects:  &l.effects,
		})
	})
	if err != nil {
		l.Fail(err)
		return
	}
	l.score = l.game.Score()
	if l.won() {
		l.finish(true)
	}
}

func (l *Lifecycle) onDeadline() {
	l.deadline = nil
	if l.state != StatePlaying {
		return
	}
	l.score = l.game.Score()
	l.finish(l.won())
}

func (l *Lifecycle) finish(success bool) {
	if l.finished {
		return
	}
	l.finished = true
	if success {
		l.state = StateCompleted
	} else {
		l.state = StateFailed
	}
	l.cancelTimers()
	l.result = Result{Success: success, Score: l.score}
	if !l.startedAt.IsZero() {
		l.result.ElapsedSeconds = l.host.Now().Sub(l.startedAt).Seconds()
	}
	l.logger.Info("session finished",
		"state", l.state.String(),
		"score", l.result.Score,
		"elapsed_seconds", l.result.ElapsedSeconds,
	)
	if l.onResult != nil {
		l.onResult(l.result)
	}
	if l.onComplete != nil {
		l.onComplete(success, l.score)
	}
	if l.destroyed || l.onRestartOffer == nil {
		return
	}
	l.restart = l.host.AfterFunc(l.restartDelay, func() {
		l.restart = nil
		if l.destroyed {
			return
		}
		l.onRestartOffer()
	})
}

func (l *Lifecycle) cancelTimers() {
	if l.deadline != nil {
		l.deadline.Stop()
		l.deadline = nil
	}
	if l.destroyed && l.restart != nil {
		l.restart.Stop()
		l.restart = nil
	}
	if l.unsubscribe != nil {
		unsubscribe := l.unsubscribe
		l.unsubscribe = nil
		unsubscribe()
	}
}

func (l *Lifecycle) detach() {
	if !l.attached {
		return
	}
	l.attached = false
	l.host.Detach(l.root)
	l.root = nil
}

func (l *Lifecycle) won() bool {
	return l.score >= l.settings.TargetScore
}

func (l *Lifecycle) duration() time.Duration {
	return time.Duration(l.settings.DurationSeconds * float64(time.Second))
}

// guard runs fn and converts a panic into an error.
func (l *Lifecycle) guard(stage string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session %s: %s panicked: %v", l.kind, stage, r)
		}
	}()
	return fn()
}
