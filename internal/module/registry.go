package module

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/kingrea/arcade/internal/failure"
	"github.com/kingrea/arcade/internal/session"
)

// FailureRecorder receives construction failures intercepted by the registry.
// *failure.Classifier satisfies it.
type FailureRecorder interface {
	Record(ctx context.Context, err error, sessionKind string, snapshot failure.Context) *failure.Record
}

// Loader bulk-registers descriptors. Loaders run once, on the first
// EnsureInitialized call.
type Loader func(*Registry) error

// Option customizes a Registry.
type Option func(*Registry)

// WithLoader appends a bulk registration step.
func WithLoader(loader Loader) Option {
	return func(r *Registry) {
		if loader != nil {
			r.loaders = append(r.loaders, loader)
		}
	}
}

// WithFallback sets the generic builder used by the customized fallback tier.
func WithFallback(builder FallbackBuilder) Option {
	return func(r *Registry) {
		r.fallback = builder
	}
}

// WithRecorder routes intercepted failures to recorder.
func WithRecorder(recorder FailureRecorder) Option {
	return func(r *Registry) {
		r.recorder = recorder
	}
}

// WithLogger routes registry diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Registry maps game-type identifiers to descriptors and resolves them into
// running sessions.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]Descriptor
	host        session.Host
	loaders     []Loader
	fallback    FallbackBuilder
	recorder    FailureRecorder
	logger      *slog.Logger

	initMu      sync.Mutex
	initialized bool
}

// NewRegistry returns an empty registry building sessions on host.
func NewRegistry(host session.Host, opts ...Option) *Registry {
	r := &Registry{
		descriptors: map[string]Descriptor{},
		host:        host,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register installs desc, replacing any descriptor with the same id.
func (r *Registry) Register(desc Descriptor) error {
	if desc.Status == "" {
		desc.Status = StatusImplemented
	}
	if err := desc.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.descriptors[desc.ID]; exists {
		r.logger.Debug("descriptor replaced", "game", desc.ID)
	}
	r.descriptors[desc.ID] = desc
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(desc Descriptor) {
	if err := r.Register(desc); err != nil {
		panic(err)
	}
}

// EnsureInitialized runs the configured loaders exactly once. Loader errors
// are logged and do not stop the remaining loaders.
func (r *Registry) EnsureInitialized() {
	r.initMu.Lock()
	defer r.initMu.Unlock()
	if r.initialized {
		return
	}
	r.initialized = true
	for i, loader := range r.loaders {
		if err := loader(r); err != nil {
			r.logger.Warn("game loader failed", "loader", i, "error", err)
		}
	}
	r.logger.Info("registry initialized", "games", len(r.IDs()))
}

// Descriptor returns the descriptor registered under id.
func (r *Registry) Descriptor(id string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.descriptors[id]
	return desc, ok
}

// IDs returns a sorted list of registered game identifiers.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.descriptors))
	for id := range r.descriptors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Upgrade swaps the constructor of gameType and marks it implemented.
// Sessions already built from the old constructor are unaffected.
func (r *Registry) Upgrade(gameType string, constructor Constructor) error {
	if constructor == nil {
		return fmt.Errorf("module: constructor is required for %s", gameType)
	}
	r.mu.RLock()
	desc, ok := r.descriptors[gameType]
	r.mu.RUnlock()
	if !ok {
		desc = Descriptor{ID: gameType, Metadata: Metadata{Name: gameType}}
	}
	desc.Constructor = constructor
	desc.Status = StatusImplemented
	if err := r.Register(desc); err != nil {
		return err
	}
	r.logger.Info("game upgraded", "game", gameType)
	return nil
}

// Resolve builds a session for gameType. It never returns nil and never
// panics: construction failures are recorded and replaced by a fallback.
func (r *Registry) Resolve(ctx context.Context, gameType string, settings session.Settings, opts ...session.Option) session.Session {
	r.EnsureInitialized()
	return r.resolveOn(ctx, r.host, gameType, settings, opts...)
}

func (r *Registry) resolveOn(ctx context.Context, host session.Host, gameType string, settings session.Settings, opts ...session.Option) session.Session {
	desc, ok := r.Descriptor(gameType)
	if !ok {
		err := fmt.Errorf("failed to load game module %q: no descriptor registered", gameType)
		r.logger.Warn("unknown game type", "game", gameType)
		r.record(ctx, host, err, gameType)
		return r.emergency(host, settings, opts...)
	}

	settings = settings.WithDefaults(desc.Defaults)
	s, err := construct(func() (session.Session, error) {
		return desc.Constructor(ctx, host, settings, opts...)
	})
	if err == nil {
		return s
	}
	r.logger.Warn("game constructor failed", "game", gameType, "status", string(desc.Status), "error", err)
	r.record(ctx, host, err, gameType)

	if r.fallback != nil {
		generic, ferr := construct(func() (session.Session, error) {
			return r.fallback(ctx, host, settings, opts...)
		})
		if ferr == nil {
			return Relabel(generic, gameType, fallbackPresentation(desc))
		}
		r.logger.Warn("customized fallback failed", "game", gameType, "error", ferr)
	}
	return r.emergency(host, settings, opts...)
}

func (r *Registry) emergency(host session.Host, settings session.Settings, opts ...session.Option) session.Session {
	s, err := construct(func() (session.Session, error) {
		return newEmergency(host, settings, opts...)
	})
	if err != nil {
		r.logger.Error("emergency fallback failed", "error", err)
		return inert{settings: settings.WithDefaults(session.DefaultSettings())}
	}
	return s
}

func (r *Registry) record(ctx context.Context, host session.Host, err error, gameType string) {
	if r.recorder == nil {
		return
	}
	snapshot := failure.Context{State: "created"}
	if host != nil {
		snapshot.ViewportWidth, snapshot.ViewportHeight = host.Viewport()
		snapshot.Flags = host.Flags()
	}
	r.recorder.Record(ctx, err, gameType, snapshot)
}

// construct runs build inside a failure boundary. An instance returned
// together with an error is destroyed, never handed out.
func construct(build func() (session.Session, error)) (s session.Session, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s = nil
			err = fmt.Errorf("module: constructor panicked: %v", rec)
		}
	}()
	s, err = build()
	if err != nil {
		if s != nil {
			safeDestroy(s)
		}
		return nil, err
	}
	if s == nil {
		return nil, errors.New("module: constructor returned no session")
	}
	return s, nil
}

func safeDestroy(s session.Session) {
	defer func() { _ = recover() }()
	s.Destroy()
}
