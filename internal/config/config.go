// internal/config/config.go
//
// This package handles configuration and the .arcade directory structure.
// Every directory the arcade runs in gets a .arcade/ folder.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/arcade/internal/failure"
	"github.com/kingrea/arcade/internal/session"
)

const (
	// ArcadeDir is the name of the directory we create in each project
	ArcadeDir = ".arcade"

	defaultGameID       = "tap_sprint"
	defaultFPS          = 30
	defaultRestartDelay = "1.5s"
)

// Failure store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

const defaultProjectConfigYAML = `# arcade configuration
version: 1

games:
  default: tap_sprint
  # Settings applied to every game. Fields left out fall back to each
  # game's own defaults.
  # settings:
  #   duration_seconds: 30
  #   target_score: 30
  #   difficulty: normal
  # Per-game overrides, keyed by game id.
  # overrides:
  #   catch:
  #     difficulty: hard

failures:
  # file, sqlite or memory
  store: file
  language: en
  # policies:
  #   network:
  #     max_retries: 5

logging:
  level: info
  format: text

display:
  fps: 30
  restart_delay: 1.5s
`

// GamesConfig selects the default game and session settings.
type GamesConfig struct {
	Default   string                      `yaml:"default"`
	Settings  session.Settings            `yaml:"settings"`
	Overrides map[string]session.Settings `yaml:"overrides,omitempty"`
}

// PolicyOverride adjusts one entry of the failure policy table.
type PolicyOverride struct {
	AutoRetry       *bool  `yaml:"auto_retry,omitempty"`
	MaxRetries      *int   `yaml:"max_retries,omitempty"`
	RemediationHint string `yaml:"remediation_hint,omitempty"`
}

// FailuresConfig configures the failure classifier.
type FailuresConfig struct {
	Store    string                    `yaml:"store"`
	Language string                    `yaml:"language,omitempty"`
	Policies map[string]PolicyOverride `yaml:"policies,omitempty"`
}

// LoggingConfig configures the log file.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DisplayConfig configures the terminal host.
type DisplayConfig struct {
	FPS          int    `yaml:"fps"`
	RestartDelay string `yaml:"restart_delay"`
}

// ProjectConfig models .arcade/config.yaml.
type ProjectConfig struct {
	Version  int            `yaml:"version"`
	Games    GamesConfig    `yaml:"games"`
	Failures FailuresConfig `yaml:"failures"`
	Logging  LoggingConfig  `yaml:"logging"`
	Display  DisplayConfig  `yaml:"display"`
}

// EnvOverrides are environment variables that win over config.yaml.
type EnvOverrides struct {
	LogLevel     string `env:"ARCADE_LOG_LEVEL"`
	LogFormat    string `env:"ARCADE_LOG_FORMAT"`
	FailureStore string `env:"ARCADE_FAILURE_STORE"`
	FPS          int    `env:"ARCADE_FPS"`
	DefaultGame  string `env:"ARCADE_DEFAULT_GAME"`
}

// Config holds the runtime configuration for the arcade.
type Config struct {
	// ProjectDir is the directory where the user ran `arcade` from
	ProjectDir string

	// ArcadeProjectDir is ProjectDir/.arcade
	ArcadeProjectDir string

	Project ProjectConfig
}

// InitArcadeDir creates the .arcade directory structure in the given project directory.
//
// Structure created:
// .arcade/
// ├── games/    <- Game plugin definitions (yaml, hcl, go)
// ├── logs/     <- arcade.log and the play journal
// └── state/    <- Persisted failure log
func InitArcadeDir(projectDir string) error {
	arcadeDir := filepath.Join(projectDir, ArcadeDir)

	dirs := []string{
		filepath.Join(arcadeDir, "games"),
		filepath.Join(arcadeDir, "logs"),
		filepath.Join(arcadeDir, "state"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return ensureProjectConfig(filepath.Join(arcadeDir, "config.yaml"))
}

// NewConfig creates a new Config populated from config.yaml and the
// environment.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:       projectDir,
		ArcadeProjectDir: filepath.Join(projectDir, ArcadeDir),
		Project:          defaultProjectConfig(),
	}

	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// GamesDir returns the directory scanned for game plugin definitions
func (c *Config) GamesDir() string {
	return filepath.Join(c.ArcadeProjectDir, "games")
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.ArcadeProjectDir, "logs")
}

// StateDir returns the path to the state directory
func (c *Config) StateDir() string {
	return filepath.Join(c.ArcadeProjectDir, "state")
}

// LogPath returns the arcade log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "arcade.log")
}

// JournalPath returns the play journal file.
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir(), "plays.log")
}

// DatabasePath returns the SQLite file used by the sqlite failure store.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.StateDir(), "arcade.db")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.ArcadeProjectDir, "config.yaml")
}

// DefaultGame returns the game selected when the menu opens.
func (c *Config) DefaultGame() string {
	return c.Project.Games.Default
}

// SetDefaultGame updates the default game and persists it to config.yaml.
func (c *Config) SetDefaultGame(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("config: game id is required")
	}
	c.Project.Games.Default = id
	return c.saveProjectConfig()
}

// SettingsFor returns the configured settings for a game: its override, then
// the global settings. Zero fields are left for the game's own defaults.
func (c *Config) SettingsFor(id string) session.Settings {
	settings := c.Project.Games.Settings
	if override, ok := c.Project.Games.Overrides[id]; ok {
		settings = override.WithDefaults(settings)
	}
	return settings
}

// FrameInterval returns the duration of one host frame.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Project.Display.FPS)
}

// RestartDelay returns how long the restart offer waits after a session ends.
func (c *Config) RestartDelay() time.Duration {
	d, err := time.ParseDuration(c.Project.Display.RestartDelay)
	if err != nil {
		return session.DefaultRestartDelay
	}
	return d
}

// FailurePolicies merges configured overrides onto the default policy table.
func (c *Config) FailurePolicies() map[failure.Kind]failure.Policy {
	policies := failure.DefaultPolicies()
	for name, override := range c.Project.Failures.Policies {
		kind, ok := failure.ParseKind(name)
		if !ok {
			continue
		}
		policy := policies[kind]
		if override.AutoRetry != nil {
			policy.AutoRetry = *override.AutoRetry
		}
		if override.MaxRetries != nil {
			policy.MaxRetries = *override.MaxRetries
		}
		if hint := strings.TrimSpace(override.RemediationHint); hint != "" {
			policy.RemediationHint = hint
		}
		policies[kind] = policy
	}
	return policies
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func (c *Config) applyEnv() error {
	var overrides EnvOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	if overrides.LogLevel != "" {
		c.Project.Logging.Level = overrides.LogLevel
	}
	if overrides.LogFormat != "" {
		c.Project.Logging.Format = overrides.LogFormat
	}
	if overrides.FailureStore != "" {
		c.Project.Failures.Store = overrides.FailureStore
	}
	if overrides.FPS != 0 {
		c.Project.Display.FPS = overrides.FPS
	}
	if overrides.DefaultGame != "" {
		c.Project.Games.Default = overrides.DefaultGame
	}
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

func defaultProjectConfig() ProjectConfig {
	pc := ProjectConfig{}
	pc.applyDefaults()
	return pc
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Games.Default) == "" {
		pc.Games.Default = defaultGameID
	}
	if strings.TrimSpace(pc.Failures.Store) == "" {
		pc.Failures.Store = StoreFile
	}
	if strings.TrimSpace(pc.Failures.Language) == "" {
		pc.Failures.Language = "en"
	}
	if strings.TrimSpace(pc.Logging.Level) == "" {
		pc.Logging.Level = "info"
	}
	if strings.TrimSpace(pc.Logging.Format) == "" {
		pc.Logging.Format = "text"
	}
	if pc.Display.FPS == 0 {
		pc.Display.FPS = defaultFPS
	}
	if strings.TrimSpace(pc.Display.RestartDelay) == "" {
		pc.Display.RestartDelay = defaultRestartDelay
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Games.Default = strings.TrimSpace(pc.Games.Default)
	pc.Failures.Store = strings.ToLower(strings.TrimSpace(pc.Failures.Store))
	pc.Failures.Language = strings.TrimSpace(pc.Failures.Language)
	pc.Logging.Level = strings.ToLower(strings.TrimSpace(pc.Logging.Level))
	pc.Logging.Format = strings.ToLower(strings.TrimSpace(pc.Logging.Format))
	pc.Display.RestartDelay = strings.TrimSpace(pc.Display.RestartDelay)
	pc.Games.Settings.Difficulty = normalizeDifficulty(pc.Games.Settings.Difficulty)
	for id, override := range pc.Games.Overrides {
		override.Difficulty = normalizeDifficulty(override.Difficulty)
		pc.Games.Overrides[id] = override
	}
}

func normalizeDifficulty(d session.Difficulty) session.Difficulty {
	return session.Difficulty(strings.ToLower(strings.TrimSpace(string(d))))
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Games.Default == "" {
		return fmt.Errorf("games.default is required")
	}
	if err := pc.Games.Settings.WithDefaults(session.DefaultSettings()).Validate(); err != nil {
		return fmt.Errorf("games.settings: %w", err)
	}
	for id, override := range pc.Games.Overrides {
		if override.Difficulty == "" {
			continue
		}
		if _, err := session.ParseDifficulty(string(override.Difficulty)); err != nil {
			return fmt.Errorf("games.overrides[%s]: %w", id, err)
		}
	}
	switch pc.Failures.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("failures.store must be 'file', 'sqlite' or 'memory'")
	}
	for name, override := range pc.Failures.Policies {
		if _, ok := failure.ParseKind(name); !ok {
			return fmt.Errorf("failures.policies[%s]: unknown failure kind", name)
		}
		if override.MaxRetries != nil && *override.MaxRetries < 0 {
			return fmt.Errorf("failures.policies[%s]: max_retries must be >= 0", name)
		}
	}
	switch pc.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	switch pc.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be 'text' or 'json'")
	}
	if pc.Display.FPS < 1 || pc.Display.FPS > 120 {
		return fmt.Errorf("display.fps must be between 1 and 120")
	}
	if _, err := time.ParseDuration(pc.Display.RestartDelay); err != nil {
		return fmt.Errorf("display.restart_delay: %w", err)
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.ArcadeProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure arcade dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
