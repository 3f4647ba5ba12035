package games

import (
	"errors"

	"github.com/kingrea/arcade/internal/games/catch"
	"github.com/kingrea/arcade/internal/games/generic"
	"github.com/kingrea/arcade/internal/games/reaction"
	"github.com/kingrea/arcade/internal/games/tapsprint"
	"github.com/kingrea/arcade/internal/module"
)

// Fallback is the generic builder used by the registry's customized fallback
// tier.
var Fallback module.FallbackBuilder = generic.New

// Listed but not yet playable. Fallback entries run as a relabeled generic
// session; missing ones are listed for the status dashboard.
var placeholders = []module.Descriptor{
	{
		ID: "memory_match",
		Metadata: module.Metadata{
			Name:         "Memory Match",
			Instructions: "Remember the sequence and repeat it.",
		},
		Constructor: module.MissingConstructor("memory_match"),
		Status:      module.StatusFallback,
	},
	{
		ID: "rhythm_tap",
		Metadata: module.Metadata{
			Name:         "Rhythm Tap",
			Instructions: "Tap on the beat.",
		},
		Constructor: module.MissingConstructor("rhythm_tap"),
		Status:      module.StatusMissing,
	},
}

// RegisterBuiltins installs all of the built-in games into the provided
// registry. It has the module.Loader signature.
func RegisterBuiltins(reg *module.Registry) error {
	if reg == nil {
		return nil
	}
	errs := []error{
		tapsprint.Register(reg),
		reaction.Register(reg),
		catch.Register(reg),
	}
	for _, desc := range placeholders {
		errs = append(errs, reg.Register(desc))
	}
	return errors.Join(errs...)
}
