package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kingrea/arcade/internal/session"
)

const hclPluginSource = `
game "night_catch" {
  name         = "Night Catch"
  version      = "1.2.0"
  base         = "catch"
  instructions = "Catch stars in the dark."

  defaults {
    target_score = 12
    difficulty   = "easy"
  }
}

game "word_chain" {
  name    = "Word Chain"
  version = "0.0.1"
}
`

func TestLoadHCLDefinitionDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "games.hcl"), []byte(hclPluginSource), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	defs, err := LoadHCLDefinitionDir(dir)
	if err != nil {
		t.Fatalf("load hcl defs: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	night := defs[0].Definition
	if night.ID != "night_catch" || night.Base != "catch" {
		t.Fatalf("unexpected definition: %+v", night)
	}
	if night.Defaults != (session.Settings{TargetScore: 12, Difficulty: session.DifficultyEasy}) {
		t.Fatalf("unexpected defaults: %+v", night.Defaults)
	}
	if defs[1].Definition.Status != "fallback" {
		t.Fatalf("expected a game without base to be fallback, got %q", defs[1].Definition.Status)
	}
}

func TestLoadHCLDefinitionDirErrors(t *testing.T) {
	cases := map[string]string{
		"syntax":   `game "x" {`,
		"required": "game \"x\" {\n  version = \"1\"\n}\n",
		"invalid":  "game \"x\" {\n  name = \"X\"\n  version = \"1\"\n  status = \"beta\"\n}\n",
	}
	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "broken.hcl"), []byte(source), 0644); err != nil {
				t.Fatalf("write plugin: %v", err)
			}
			if _, err := LoadHCLDefinitionDir(dir); err == nil {
				t.Fatalf("expected %s error", name)
			}
		})
	}
}
