package plugins

import (
	"os"
	"path/filepath"
	"testing"
)

const goPluginSource = `package main

func GameDefinitions() ([]map[string]any, error) {
	return []map[string]any{
		{
			"id":      "puzzle_box",
			"name":    "Puzzle Box",
			"version": "0.1.0",
			"status":  "missing",
		},
		{
			"id":      "turbo_tap",
			"name":    "Turbo Tap",
			"version": "1.0.0",
			"base":    "tap_sprint",
			"defaults": map[string]any{
				"target_score": 80,
			},
		},
	}, nil
}`

func TestLoadGoDefinitionDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "games.go"), []byte(goPluginSource), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	defs, err := LoadGoDefinitionDir(dir)
	if err != nil {
		t.Fatalf("load go defs: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Definition.ID != "puzzle_box" || defs[0].Definition.Status != "missing" {
		t.Fatalf("unexpected first definition: %+v", defs[0].Definition)
	}
	if defs[1].Definition.Defaults.TargetScore != 80 {
		t.Fatalf("unexpected defaults: %+v", defs[1].Definition.Defaults)
	}
}

func TestLoadGoDefinitionDirMissingFunc(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.go"), []byte("package main\n"), 0644); err != nil {
		t.Fatalf("write broken plugin: %v", err)
	}
	if _, err := LoadGoDefinitionDir(dir); err == nil {
		t.Fatalf("expected error for missing GameDefinitions function")
	}
}
