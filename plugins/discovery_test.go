package plugins

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/arcade/internal/config"
	"github.com/kingrea/arcade/internal/games"
	"github.com/kingrea/arcade/internal/module"
	"github.com/kingrea/arcade/internal/session"
)

const sampleYAML = `id: turbo_sprint
name: Turbo Sprint
version: 1.0.0
base: tap_sprint
defaults:
  target_score: 5
`

func TestRegisterGamePlugins(t *testing.T) {
	cfg := initTestConfig(t)
	writePlugin(t, cfg, "turbo.yaml", sampleYAML)
	writePlugin(t, cfg, "more.hcl", hclPluginSource)
	writePlugin(t, cfg, "games.go", goPluginSource)

	host := session.NewManualHost()
	reg := module.NewRegistry(host,
		module.WithLoader(games.RegisterBuiltins),
		module.WithLoader(Loader(cfg)),
		module.WithFallback(games.Fallback),
	)
	reg.EnsureInitialized()

	for _, id := range []string{"turbo_sprint", "night_catch", "word_chain", "puzzle_box", "turbo_tap"} {
		if _, ok := reg.Descriptor(id); !ok {
			t.Fatalf("expected %s to be registered; have %v", id, reg.IDs())
		}
	}

	var won bool
	s := reg.Resolve(context.Background(), "turbo_sprint", session.Settings{},
		session.WithCompletion(func(success bool, _ int) { won = success }))
	if s.Kind() != "turbo_sprint" || s.Presentation().Name != "Turbo Sprint" {
		t.Fatalf("unexpected session %s %+v", s.Kind(), s.Presentation())
	}
	if s.Settings().TargetScore != 5 || s.Settings().DurationSeconds != 10 {
		t.Fatalf("expected plugin defaults over base defaults, got %+v", s.Settings())
	}
	s.Initialize()
	s.Start()
	for i := 0; i < 5; i++ {
		s.HandleInput(" ")
	}
	host.Step(time.Millisecond)
	if !won {
		t.Fatalf("expected the variant to play like its base")
	}

	report := reg.CheckStatus(context.Background(), "word_chain")
	if report.Implemented || report.Status != module.StatusFallback {
		t.Fatalf("unexpected status report %+v", report)
	}
}

func TestRegisterGamePluginsRejectsDuplicates(t *testing.T) {
	cfg := initTestConfig(t)
	writePlugin(t, cfg, "a.yaml", sampleYAML)
	writePlugin(t, cfg, "b.yml", sampleYAML)
	if err := RegisterGamePlugins(module.NewRegistry(session.NewManualHost()), cfg); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestRegisterGamePluginsRejectsPluginBase(t *testing.T) {
	cfg := initTestConfig(t)
	writePlugin(t, cfg, "a.yaml", sampleYAML)
	writePlugin(t, cfg, "b.yaml", "id: turbo_two\nname: Turbo Two\nversion: 1\nbase: turbo_sprint\n")
	if err := RegisterGamePlugins(module.NewRegistry(session.NewManualHost()), cfg); err == nil {
		t.Fatalf("expected plugin-on-plugin base to be rejected")
	}
}

func TestRegisterGamePluginsSkipsBrokenFiles(t *testing.T) {
	cfg := initTestConfig(t)
	writePlugin(t, cfg, "turbo.yaml", sampleYAML)
	writePlugin(t, cfg, "broken.yaml", "id: [unterminated\n")
	writePlugin(t, cfg, "broken.hcl", "game \"half\" {\n")

	reg := module.NewRegistry(session.NewManualHost())
	err := RegisterGamePlugins(reg, cfg)
	if err == nil {
		t.Fatalf("expected the broken files to be reported")
	}
	for _, name := range []string{"broken.yaml", "broken.hcl"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("expected %s in error, got %v", name, err)
		}
	}
	if _, ok := reg.Descriptor("turbo_sprint"); !ok {
		t.Fatalf("expected the valid plugin to be registered; have %v", reg.IDs())
	}
}

func TestRegisterGamePluginsKeepsBuiltins(t *testing.T) {
	cfg := initTestConfig(t)
	writePlugin(t, cfg, "shadow.yaml", "id: catch\nname: Shadow Catch\nversion: 1\nstatus: missing\n")
	writePlugin(t, cfg, "night.yaml", "id: night_catch\nname: Night Catch\nversion: 1\nbase: catch\n")

	reg := module.NewRegistry(session.NewManualHost(), module.WithLoader(games.RegisterBuiltins))
	reg.EnsureInitialized()
	err := RegisterGamePlugins(reg, cfg)
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("expected the colliding id to be reported, got %v", err)
	}
	builtin, _ := reg.Descriptor("catch")
	if builtin.Status != module.StatusImplemented || builtin.Metadata.Name == "Shadow Catch" {
		t.Fatalf("built-in catch was replaced: %+v", builtin.Metadata)
	}
	if _, ok := reg.Descriptor("night_catch"); !ok {
		t.Fatalf("expected the variant of catch to be registered")
	}
	s := reg.Resolve(context.Background(), "night_catch", session.Settings{})
	if s.Presentation().Name != "Night Catch" {
		t.Fatalf("expected the variant to build on catch, got %+v", s.Presentation())
	}
}

func TestVariantWithUnknownBaseFallsBack(t *testing.T) {
	cfg := initTestConfig(t)
	writePlugin(t, cfg, "ghost.yaml", "id: ghost\nname: Ghost\nversion: 1\nbase: nowhere\n")
	reg := module.NewRegistry(session.NewManualHost(), module.WithLoader(Loader(cfg)), module.WithFallback(games.Fallback))

	s := reg.Resolve(context.Background(), "ghost", session.Settings{})
	if s == nil || s.Presentation().Name != "Ghost" {
		t.Fatalf("expected customized fallback for ghost, got %+v", s)
	}
	report := reg.CheckStatus(context.Background(), "ghost")
	if report.Implemented {
		t.Fatalf("expected probe to fail for a missing base")
	}
}

func writePlugin(t *testing.T, cfg *config.Config, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(cfg.GamesDir(), name), []byte(content), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
}

func initTestConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	if err := config.InitArcadeDir(root); err != nil {
		t.Fatalf("init arcade: %v", err)
	}
	return &config.Config{
		ProjectDir:       root,
		ArcadeProjectDir: filepath.Join(root, ".arcade"),
	}
}
