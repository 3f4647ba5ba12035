package plugins

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/kingrea/arcade/internal/session"
)

// hclGamesFile is the top-level structure of a games .hcl file:
//
//	game "star_hunt" {
//	  name    = "Star Hunt"
//	  version = "1.0.0"
//	  base    = "catch"
//	  defaults {
//	    target_score = 10
//	  }
//	}
type hclGamesFile struct {
	Games []*hclGame `hcl:"game,block"`
}

type hclGame struct {
	ID           string       `hcl:"id,label"`
	Name         string       `hcl:"name"`
	Version      string       `hcl:"version"`
	Description  string       `hcl:"description,optional"`
	Instructions string       `hcl:"instructions,optional"`
	Base         string       `hcl:"base,optional"`
	Status       string       `hcl:"status,optional"`
	Defaults     *hclDefaults `hcl:"defaults,block"`
}

type hclDefaults struct {
	DurationSeconds float64 `hcl:"duration_seconds,optional"`
	TargetScore     int     `hcl:"target_score,optional"`
	Difficulty      string  `hcl:"difficulty,optional"`
}

func (g hclGame) definition() GameDefinition {
	def := GameDefinition{
		ID:           g.ID,
		Name:         g.Name,
		Version:      g.Version,
		Description:  g.Description,
		Instructions: g.Instructions,
		Base:         g.Base,
		Status:       g.Status,
	}
	if g.Defaults != nil {
		def.Defaults = session.Settings{
			DurationSeconds: g.Defaults.DurationSeconds,
			TargetScore:     g.Defaults.TargetScore,
			Difficulty:      session.Difficulty(g.Defaults.Difficulty),
		}
	}
	return def
}

// LoadHCLDefinitionDir parses every .hcl file in dir and returns the game blocks.
func LoadHCLDefinitionDir(dir string) ([]DefinitionFile, error) {
	parser := hclparse.NewParser()
	return loadDir(dir, func(name string) bool {
		return strings.EqualFold(filepath.Ext(name), ".hcl")
	}, func(path string) ([]DefinitionFile, error) {
		return loadHCLDefinitionFile(path, parser)
	})
}

func loadHCLDefinitionFile(path string, parser *hclparse.Parser) ([]DefinitionFile, error) {
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("plugin: parse %s: %w", path, diags)
	}
	var parsed hclGamesFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("plugin: decode %s: %w", path, diags)
	}
	files := make([]DefinitionFile, 0, len(parsed.Games))
	for idx, game := range parsed.Games {
		def := game.definition()
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("plugin: %s game[%d]: %w", path, idx, err)
		}
		files = append(files, DefinitionFile{Definition: def.Normalized(), Path: fmt.Sprintf("%s#%d", filepath.Clean(path), idx+1)})
	}
	return files, nil
}
