package plugins

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kingrea/arcade/internal/module"
	"github.com/kingrea/arcade/internal/session"
)

var idPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// GameDefinition describes a game loaded from .arcade/games.
//
// A definition with a base reuses a registered game's constructor under its
// own name and defaults. Without a base the entry is listed with status
// fallback (played through the generic fallback) or missing.
type GameDefinition struct {
	ID           string           `json:"id" yaml:"id"`
	Name         string           `json:"name" yaml:"name"`
	Description  string           `json:"description,omitempty" yaml:"description,omitempty"`
	Instructions string           `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Version      string           `json:"version" yaml:"version"`
	Base         string           `json:"base,omitempty" yaml:"base,omitempty"`
	Status       string           `json:"status,omitempty" yaml:"status,omitempty"`
	Defaults     session.Settings `json:"defaults,omitempty" yaml:"defaults,omitempty"`
}

// Normalized returns a trimmed copy of the definition.
func (def GameDefinition) Normalized() GameDefinition {
	clone := GameDefinition{
		ID:           strings.ToLower(strings.TrimSpace(def.ID)),
		Name:         strings.TrimSpace(def.Name),
		Description:  strings.TrimSpace(def.Description),
		Instructions: strings.TrimSpace(def.Instructions),
		Version:      strings.TrimSpace(def.Version),
		Base:         strings.ToLower(strings.TrimSpace(def.Base)),
		Status:       strings.ToLower(strings.TrimSpace(def.Status)),
		Defaults:     def.Defaults,
	}
	clone.Defaults.Difficulty = session.Difficulty(strings.ToLower(strings.TrimSpace(string(clone.Defaults.Difficulty))))
	if clone.Status == "" {
		if clone.Base != "" {
			clone.Status = string(module.StatusImplemented)
		} else {
			clone.Status = string(module.StatusFallback)
		}
	}
	return clone
}

// Validate ensures the definition is well-formed.
func (def GameDefinition) Validate() error {
	normalized := def.Normalized()
	if normalized.ID == "" {
		return fmt.Errorf("plugin: id is required")
	}
	if !idPattern.MatchString(normalized.ID) {
		return fmt.Errorf("plugin %s: id must be lower snake case", normalized.ID)
	}
	if normalized.Name == "" {
		return fmt.Errorf("plugin %s: name is required", normalized.ID)
	}
	if normalized.Version == "" {
		return fmt.Errorf("plugin %s: version is required", normalized.ID)
	}
	if normalized.Base == normalized.ID {
		return fmt.Errorf("plugin %s: base cannot reference itself", normalized.ID)
	}
	switch module.Status(normalized.Status) {
	case module.StatusImplemented:
		if normalized.Base == "" {
			return fmt.Errorf("plugin %s: status implemented requires a base game", normalized.ID)
		}
	case module.StatusFallback, module.StatusMissing:
		if normalized.Base != "" {
			return fmt.Errorf("plugin %s: a game with a base is implemented", normalized.ID)
		}
	default:
		return fmt.Errorf("plugin %s: unknown status %q", normalized.ID, normalized.Status)
	}
	if normalized.Defaults != (session.Settings{}) {
		if err := normalized.Defaults.WithDefaults(session.DefaultSettings()).Validate(); err != nil {
			return fmt.Errorf("plugin %s: defaults: %w", normalized.ID, err)
		}
	}
	return nil
}

// Metadata converts the definition into registry metadata.
func (def GameDefinition) Metadata() module.Metadata {
	return module.Metadata{
		Name:         def.Name,
		Instructions: def.Instructions,
		Description:  def.Description,
		Version:      def.Version,
	}
}
