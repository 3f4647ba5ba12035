package module

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/arcade/internal/session"
)

// EmergencyKind is the session kind of the last-resort fallback tier.
const EmergencyKind = "emergency"

// FallbackBuilder builds the generic, always-available session used when a
// descriptor's constructor fails.
type FallbackBuilder func(ctx context.Context, host session.Host, settings session.Settings, opts ...session.Option) (session.Session, error)

// relabeled presents a generic session under the failing module's name.
type relabeled struct {
	session.Session
	kind         string
	presentation session.Presentation
}

// Relabel wraps inner so it reports kind and p instead of its own labels.
func Relabel(inner session.Session, kind string, p session.Presentation) session.Session {
	return &relabeled{Session: inner, kind: kind, presentation: p}
}

func (r *relabeled) Kind() string { return r.kind }

func (r *relabeled) Presentation() session.Presentation { return r.presentation }

// Unwrap returns the generic session behind the label.
func (r *relabeled) Unwrap() session.Session { return r.Session }

// fallbackPresentation keeps the failing module's name and explains that a
// substitute is running.
func fallbackPresentation(desc Descriptor) session.Presentation {
	name := strings.TrimSpace(desc.Metadata.Name)
	if name == "" {
		name = desc.ID
	}
	instructions := strings.TrimSpace(desc.Metadata.Instructions)
	if instructions == "" {
		instructions = "Press any key to score."
	}
	return session.Presentation{
		Name:         name,
		Instructions: instructions + " (simplified version)",
	}
}

// emergencyGame is the dependency-free last tier: every key press scores.
type emergencyGame struct {
	score int
}

func (g *emergencyGame) Build(root *session.Node) {
	root.SetRenderer(func(width, height int) string {
		return fmt.Sprintf("Press any key to score: %d", g.score)
	})
}

func (g *emergencyGame) Update(session.Frame) error { return nil }

func (g *emergencyGame) Score() int { return g.score }

func (g *emergencyGame) HandleInput(string) { g.score++ }

func newEmergency(host session.Host, settings session.Settings, opts ...session.Option) (session.Session, error) {
	opts = append(opts, session.WithPresentation(session.Presentation{
		Name:         "Quick Tap",
		Instructions: "Press any key to score.",
	}))
	settings = settings.WithDefaults(session.DefaultSettings())
	if settings.Validate() != nil {
		settings = session.DefaultSettings()
	}
	s, err := session.New(EmergencyKind, host, &emergencyGame{}, settings, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// inert is returned only if the emergency tier itself cannot be built. It
// never panics and reports a failed session.
type inert struct {
	settings session.Settings
}

func (inert) Kind() string { return EmergencyKind }

func (inert) Presentation() session.Presentation {
	return session.Presentation{Name: "Game unavailable", Instructions: "Press esc to return to the menu."}
}

func (i inert) Settings() session.Settings { return i.settings }

func (inert) Initialize() {}

func (inert) Start() {}

func (inert) Destroy() {}

func (inert) State() session.State { return session.StateFailed }

func (inert) Score() int { return 0 }

func (inert) HandleInput(string) {}

func (inert) Fail(error) {}

func (inert) Result() (session.Result, bool) { return session.Result{}, true }

// Elapsed lets hosts treat inert like a lifecycle when drawing timers.
func (inert) Elapsed() time.Duration { return 0 }
