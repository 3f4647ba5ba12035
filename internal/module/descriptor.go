package module

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kingrea/arcade/internal/session"
)

var (
	// ErrNotImplemented is returned by constructors of descriptors that are
	// listed but have no playable implementation yet.
	ErrNotImplemented = errors.New("module: not implemented")
	// ErrUnknownGame reports a game type with no descriptor.
	ErrUnknownGame = errors.New("module: unknown game type")
)

// Metadata describes a game module's identity and how it presents itself.
type Metadata struct {
	Name         string
	Instructions string
	Description  string
	Version      string
}

// Presentation converts the metadata into a session label.
func (m Metadata) Presentation() session.Presentation {
	return session.Presentation{Name: m.Name, Instructions: m.Instructions}
}

// Status enumerates how complete a registered module is.
type Status string

const (
	StatusImplemented Status = "implemented"
	StatusFallback    Status = "fallback"
	StatusMissing     Status = "missing"
)

// Constructor builds a playable session on host. Implementations return
// either a fully usable session or an error, never both.
type Constructor func(ctx context.Context, host session.Host, settings session.Settings, opts ...session.Option) (session.Session, error)

// Descriptor is one entry of the registry's game table.
type Descriptor struct {
	ID          string
	Metadata    Metadata
	Defaults    session.Settings
	Constructor Constructor
	Status      Status
}

// Validate ensures the descriptor is well-formed.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("module: id is required")
	}
	if strings.TrimSpace(d.Metadata.Name) == "" {
		return fmt.Errorf("module: name is required for %s", d.ID)
	}
	if d.Constructor == nil {
		return fmt.Errorf("module: constructor is required for %s", d.ID)
	}
	switch d.Status {
	case StatusImplemented, StatusFallback, StatusMissing:
	default:
		return fmt.Errorf("module: unknown status %q for %s", d.Status, d.ID)
	}
	if d.Defaults != (session.Settings{}) {
		if err := d.Defaults.WithDefaults(session.DefaultSettings()).Validate(); err != nil {
			return fmt.Errorf("module: defaults for %s: %w", d.ID, err)
		}
	}
	return nil
}

// MissingConstructor returns a constructor that always reports
// ErrNotImplemented for id.
func MissingConstructor(id string) Constructor {
	return func(context.Context, session.Host, session.Settings, ...session.Option) (session.Session, error) {
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, id)
	}
}
