package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefinitionFile pairs a parsed game definition with its on-disk source.
type DefinitionFile struct {
	Definition GameDefinition
	Path       string
}

// ParseDefinitionYAML decodes and validates a single game definition payload.
func ParseDefinitionYAML(data []byte) (GameDefinition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return GameDefinition{}, fmt.Errorf("plugin: definition payload is empty")
	}
	var def GameDefinition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return GameDefinition{}, fmt.Errorf("plugin: decode definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return GameDefinition{}, err
	}
	return def.Normalized(), nil
}

// LoadDefinitionFile reads a YAML file from disk and returns the parsed game definition.
func LoadDefinitionFile(path string) (DefinitionFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return DefinitionFile{}, fmt.Errorf("plugin: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return DefinitionFile{}, fmt.Errorf("plugin: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return DefinitionFile{}, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	def, err := ParseDefinitionYAML(data)
	if err != nil {
		return DefinitionFile{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	return DefinitionFile{Definition: def, Path: filepath.Clean(path)}, nil
}

// LoadDefinitionDir scans a directory for *.yaml games and returns the parsed definitions.
// Missing directories are treated as "no plugins" to simplify startup.
func LoadDefinitionDir(dir string) ([]DefinitionFile, error) {
	return loadDir(dir, isYAMLFile, func(path string) ([]DefinitionFile, error) {
		def, err := LoadDefinitionFile(path)
		if err != nil {
			return nil, err
		}
		return []DefinitionFile{def}, nil
	})
}

// loadDir applies load to every regular file in dir accepted by match and
// returns the definitions sorted by path. A file that fails to load does not
// stop the others; its error is joined into the returned error.
func loadDir(dir string, match func(string) bool, load func(string) ([]DefinitionFile, error)) ([]DefinitionFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var defs []DefinitionFile
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !match(entry.Name()) {
			continue
		}
		fileDefs, err := load(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		defs = append(defs, fileDefs...)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Path < defs[j].Path })
	return defs, errors.Join(errs...)
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
