package session

import (
	"fmt"
	"strings"
)

// State enumerates the lifecycle phases of a single play attempt.
type State int

const (
	StateCreated   State = iota // constructed, Initialize not yet called
	StateReady                  // scene built, waiting for Start
	StatePlaying                // ticking and counting down
	StateCompleted              // target reached
	StateFailed                 // deadline missed, build failed or externally failed
)

// String returns the lowercase state name used in logs and failure snapshots.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Difficulty scales how demanding a game module is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalizes user or config input into a Difficulty.
func ParseDifficulty(value string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(value))) {
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyNormal, "":
		return DifficultyNormal, nil
	case DifficultyHard:
		return DifficultyHard, nil
	default:
		return "", fmt.Errorf("session: unknown difficulty %q", value)
	}
}

// normalized returns the canonical spelling of d. Empty and unknown values are
// returned unchanged so defaults can still fill them and Validate can reject them.
func (d Difficulty) normalized() Difficulty {
	if strings.TrimSpace(string(d)) == "" {
		return d
	}
	if parsed, err := ParseDifficulty(string(d)); err == nil {
		return parsed
	}
	return d
}

// Multiplier returns a speed factor games use to scale their pacing.
func (d Difficulty) Multiplier() float64 {
	switch d {
	case DifficultyEasy:
		return 0.75
	case DifficultyHard:
		return 1.5
	default:
		return 1
	}
}

const (
	defaultDurationSeconds = 30
	defaultTargetScore     = 30
)

// Settings configures one play attempt. The lifecycle keeps its own copy, so
// a caller mutating its value after Start has no effect.
type Settings struct {
	DurationSeconds float64    `yaml:"duration_seconds" json:"duration_seconds"`
	TargetScore     int        `yaml:"target_score" json:"target_score"`
	Difficulty      Difficulty `yaml:"difficulty" json:"difficulty"`
}

// DefaultSettings returns the settings used when nothing else is configured.
func DefaultSettings() Settings {
	return Settings{
		DurationSeconds: defaultDurationSeconds,
		TargetScore:     defaultTargetScore,
		Difficulty:      DifficultyNormal,
	}
}

// WithDefaults fills zero-valued fields from fallback.
func (s Settings) WithDefaults(fallback Settings) Settings {
	if s.DurationSeconds <= 0 {
		s.DurationSeconds = fallback.DurationSeconds
	}
	if s.TargetScore <= 0 {
		s.TargetScore = fallback.TargetScore
	}
	if strings.TrimSpace(string(s.Difficulty)) == "" {
		s.Difficulty = fallback.Difficulty
	}
	s.Difficulty = s.Difficulty.normalized()
	return s
}

// Validate ensures the settings describe a playable session.
func (s Settings) Validate() error {
	if s.DurationSeconds <= 0 {
		return fmt.Errorf("session: duration must be positive, got %v", s.DurationSeconds)
	}
	if s.TargetScore <= 0 {
		return fmt.Errorf("session: target score must be positive, got %d", s.TargetScore)
	}
	if _, err := ParseDifficulty(string(s.Difficulty)); err != nil {
		return err
	}
	return nil
}

// Result captures the outcome of a finished session.
type Result struct {
	Success        bool    `json:"success"`
	Score          int     `json:"score"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Presentation is the player-facing label of a session kind.
type Presentation struct {
	Name         string
	Instructions string
}
