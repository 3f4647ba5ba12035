package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/arcade/internal/failure"
	"github.com/kingrea/arcade/internal/session"
)

func newTestConfig(t *testing.T, configYAML string) *Config {
	t.Helper()
	projectDir := t.TempDir()
	arcadeDir := filepath.Join(projectDir, ".arcade")
	if err := os.MkdirAll(arcadeDir, 0755); err != nil {
		t.Fatal(err)
	}
	if configYAML != "" {
		if err := os.WriteFile(filepath.Join(arcadeDir, "config.yaml"), []byte(strings.TrimSpace(configYAML)), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return &Config{ProjectDir: projectDir, ArcadeProjectDir: arcadeDir, Project: defaultProjectConfig()}
}

func TestLoadProjectConfigDefaultsWhenMissing(t *testing.T) {
	c := newTestConfig(t, "")
	if err := c.loadProjectConfig(); err != nil {
		t.Fatalf("loadProjectConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if c.DefaultGame() != defaultGameID {
		t.Fatalf("expected default game %q, got %q", defaultGameID, c.DefaultGame())
	}
	if c.Project.Failures.Store != StoreFile {
		t.Fatalf("expected file store by default, got %q", c.Project.Failures.Store)
	}
	if got := c.FrameInterval(); got != time.Second/30 {
		t.Fatalf("unexpected frame interval %v", got)
	}
	if got := c.RestartDelay(); got != 1500*time.Millisecond {
		t.Fatalf("unexpected restart delay %v", got)
	}
	if got := c.SettingsFor("catch"); got != (session.Settings{}) {
		t.Fatalf("expected games to keep their own defaults, got %+v", got)
	}
}

func TestLoadProjectConfigParsesYaml(t *testing.T) {
	c := newTestConfig(t, `
version: 1
games:
  default: catch
  settings:
    duration_seconds: 20
  overrides:
    catch:
      difficulty: hard
failures:
  store: SQLite
  policies:
    network:
      max_retries: 5
    input:
      auto_retry: true
      max_retries: 1
      remediation_hint: Replug the keyboard.
logging:
  level: DEBUG
  format: json
display:
  fps: 60
  restart_delay: 2s
`)
	if err := c.loadProjectConfig(); err != nil {
		t.Fatalf("loadProjectConfig returned error: %v", err)
	}
	if c.DefaultGame() != "catch" {
		t.Fatalf("wrong default game: %s", c.DefaultGame())
	}
	if c.Project.Failures.Store != StoreSQLite {
		t.Fatalf("expected store to be normalized, got %q", c.Project.Failures.Store)
	}
	if c.Project.Logging.Level != "debug" {
		t.Fatalf("expected level to be normalized, got %q", c.Project.Logging.Level)
	}
	want := session.Settings{DurationSeconds: 20, Difficulty: session.DifficultyHard}
	if got := c.SettingsFor("catch"); got != want {
		t.Fatalf("unexpected catch settings %+v", got)
	}
	if got := c.SettingsFor("reaction"); got != (session.Settings{DurationSeconds: 20}) {
		t.Fatalf("expected only the global duration for reaction, got %+v", got)
	}
	if c.RestartDelay() != 2*time.Second {
		t.Fatalf("unexpected restart delay %v", c.RestartDelay())
	}

	policies := c.FailurePolicies()
	if policies[failure.KindNetwork].MaxRetries != 5 {
		t.Fatalf("expected network override, got %+v", policies[failure.KindNetwork])
	}
	input := policies[failure.KindInput]
	if !input.AutoRetry || input.MaxRetries != 1 || input.RemediationHint != "Replug the keyboard." {
		t.Fatalf("unexpected input policy %+v", input)
	}
	if policies[failure.KindInit].MaxRetries != 2 {
		t.Fatalf("untouched policies keep their defaults")
	}
}

func TestLoadProjectConfigNormalizesDifficulty(t *testing.T) {
	c := newTestConfig(t, `
games:
  settings:
    difficulty: " Easy"
  overrides:
    catch:
      difficulty: HARD
`)
	if err := c.loadProjectConfig(); err != nil {
		t.Fatalf("loadProjectConfig returned error: %v", err)
	}
	if got := c.SettingsFor("catch").Difficulty; got != session.DifficultyHard {
		t.Fatalf("expected catch override normalized to hard, got %q", got)
	}
	if got := c.SettingsFor("reaction").Difficulty; got != session.DifficultyEasy {
		t.Fatalf("expected global difficulty normalized to easy, got %q", got)
	}
	if m := c.SettingsFor("catch").Difficulty.Multiplier(); m <= 1 {
		t.Fatalf("expected hard multiplier above 1, got %v", m)
	}
}

func TestLoadProjectConfigValidation(t *testing.T) {
	cases := map[string]string{
		"store":      "failures:\n  store: redis\n",
		"policy":     "failures:\n  policies:\n    cosmic_ray:\n      max_retries: 1\n",
		"difficulty": "games:\n  overrides:\n    catch:\n      difficulty: nightmare\n",
		"fps":        "display:\n  fps: 500\n",
		"delay":      "display:\n  restart_delay: soon\n",
		"level":      "logging:\n  level: loud\n",
		"settings":   "games:\n  settings:\n    difficulty: nightmare\n",
	}
	for name, configYAML := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestConfig(t, configYAML)
			if err := c.loadProjectConfig(); err == nil {
				t.Fatalf("expected validation error but got none")
			}
		})
	}
}

func TestNewConfigAppliesEnvOverrides(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitArcadeDir(projectDir); err != nil {
		t.Fatalf("InitArcadeDir returned error: %v", err)
	}
	t.Setenv("ARCADE_LOG_LEVEL", "warn")
	t.Setenv("ARCADE_FAILURE_STORE", "memory")
	t.Setenv("ARCADE_FPS", "12")
	t.Setenv("ARCADE_DEFAULT_GAME", "reaction")

	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Logging.Level != "warn" || c.Project.Failures.Store != StoreMemory {
		t.Fatalf("env overrides not applied: %+v", c.Project)
	}
	if c.Project.Display.FPS != 12 || c.DefaultGame() != "reaction" {
		t.Fatalf("env overrides not applied: %+v", c.Project)
	}

	t.Setenv("ARCADE_FAILURE_STORE", "redis")
	if _, err := NewConfig(projectDir); err == nil {
		t.Fatalf("expected invalid env override to be rejected")
	}
}

func TestInitArcadeDirAndSetDefaultGame(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitArcadeDir(projectDir); err != nil {
		t.Fatalf("InitArcadeDir returned error: %v", err)
	}
	for _, dir := range []string{"games", "logs", "state"} {
		if info, err := os.Stat(filepath.Join(projectDir, ".arcade", dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory, got err %v", dir, err)
		}
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if err := c.SetDefaultGame("catch"); err != nil {
		t.Fatalf("SetDefaultGame returned error: %v", err)
	}
	reloaded, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if reloaded.DefaultGame() != "catch" {
		t.Fatalf("expected persisted default game, got %q", reloaded.DefaultGame())
	}
	if err := c.SetDefaultGame(" "); err == nil {
		t.Fatalf("expected empty id to be rejected")
	}
}
