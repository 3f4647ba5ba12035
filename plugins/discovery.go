package plugins

import (
	"context"
	"errors"
	"fmt"

	"github.com/kingrea/arcade/internal/config"
	"github.com/kingrea/arcade/internal/module"
	"github.com/kingrea/arcade/internal/session"
)

// RegisterGamePlugins discovers YAML, HCL and Go game definitions under
// .arcade/games and registers them. Broken files, duplicate ids and ids that
// collide with an already registered game are skipped and reported in the
// returned error; every other definition is still registered.
func RegisterGamePlugins(reg *module.Registry, cfg *config.Config) error {
	if reg == nil || cfg == nil {
		return nil
	}
	defs, loadErr := loadAllDefinitionFiles(cfg.GamesDir())
	errs := []error{loadErr}
	var accepted []DefinitionFile
	seen := make(map[string]string)
	for _, file := range defs {
		def := file.Definition
		if _, ok := reg.Descriptor(def.ID); ok {
			errs = append(errs, fmt.Errorf("plugin: %s from %s: id is already registered", def.ID, file.Path))
			continue
		}
		if existing, ok := seen[def.ID]; ok {
			errs = append(errs, fmt.Errorf("plugin: duplicate game id %s (%s and %s)", def.ID, existing, file.Path))
			continue
		}
		seen[def.ID] = file.Path
		accepted = append(accepted, file)
	}
	for _, file := range accepted {
		def := file.Definition
		if _, ok := seen[def.Base]; ok {
			errs = append(errs, fmt.Errorf("plugin: %s from %s: base %s must be a built-in game", def.ID, file.Path, def.Base))
			continue
		}
		if err := reg.Register(descriptorFor(reg, def)); err != nil {
			errs = append(errs, fmt.Errorf("plugin: register %s from %s: %w", def.ID, file.Path, err))
		}
	}
	return errors.Join(errs...)
}

// Loader adapts RegisterGamePlugins to module.Loader.
func Loader(cfg *config.Config) module.Loader {
	return func(reg *module.Registry) error {
		return RegisterGamePlugins(reg, cfg)
	}
}

func loadAllDefinitionFiles(dir string) ([]DefinitionFile, error) {
	var all []DefinitionFile
	var errs []error
	for _, load := range []func(string) ([]DefinitionFile, error){
		LoadDefinitionDir,
		LoadHCLDefinitionDir,
		LoadGoDefinitionDir,
	} {
		defs, err := load(dir)
		if err != nil {
			errs = append(errs, err)
		}
		all = append(all, defs...)
	}
	return all, errors.Join(errs...)
}

func descriptorFor(reg *module.Registry, def GameDefinition) module.Descriptor {
	desc := module.Descriptor{
		ID:          def.ID,
		Metadata:    def.Metadata(),
		Defaults:    def.Defaults,
		Constructor: module.MissingConstructor(def.ID),
		Status:      module.Status(def.Status),
	}
	if def.Base != "" {
		desc.Constructor = variantConstructor(reg, def)
	}
	return desc
}

// variantConstructor builds the base game under the definition's label. The
// base is looked up on every call, so it may be registered after the plugin.
func variantConstructor(reg *module.Registry, def GameDefinition) module.Constructor {
	presentation := def.Metadata().Presentation()
	return func(ctx context.Context, host session.Host, settings session.Settings, opts ...session.Option) (session.Session, error) {
		base, ok := reg.Descriptor(def.Base)
		if !ok {
			return nil, fmt.Errorf("failed to load game module %q: base game %q is not registered", def.ID, def.Base)
		}
		if base.Status != module.StatusImplemented {
			return nil, fmt.Errorf("failed to load game module %q: base game %q is %s", def.ID, def.Base, base.Status)
		}
		settings = settings.WithDefaults(def.Defaults).WithDefaults(base.Defaults)
		inner, err := base.Constructor(ctx, host, settings, opts...)
		if err != nil {
			return nil, err
		}
		label := presentation
		if label.Instructions == "" {
			label.Instructions = inner.Presentation().Instructions
		}
		return module.Relabel(inner, def.ID, label), nil
	}
}
