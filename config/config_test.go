package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("embedded defaults must load: %v", err)
	}

	if len(cfg.Species) == 0 {
		t.Fatalf("defaults define no species")
	}
	if cfg.Derived.DT32 <= 0 {
		t.Errorf("derived DT32 = %f", cfg.Derived.DT32)
	}
	for _, sp := range cfg.Species {
		if _, ok := cfg.Derived.SpeciesIndex[sp.Name]; !ok {
			t.Errorf("species %q missing from the index", sp.Name)
		}
		if sp.Locomotion == "" {
			t.Errorf("species %q has no locomotion after defaulting", sp.Name)
		}
		if sp.Variants < 1 {
			t.Errorf("species %q variants = %d", sp.Name, sp.Variants)
		}
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "world:\n  half_width: 123\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.HalfWidth != 123 {
		t.Errorf("override not applied: half_width = %v", cfg.World.HalfWidth)
	}
	// Untouched fields keep their defaults.
	if cfg.World.FloorDepth >= 0 {
		t.Errorf("default floor_depth lost: %v", cfg.World.FloorDepth)
	}
}

func TestLoadRejectsDuplicateSpecies(t *testing.T) {
	path := writeConfig(t, `
species:
  - name: twin
    type: fish
  - name: twin
    type: ray
`)
	if _, err := Load(path); err == nil {
		t.Errorf("duplicate species names must be rejected")
	}
}

func TestLoadRejectsUnknownLocomotion(t *testing.T) {
	path := writeConfig(t, `
species:
  - name: walker
    type: crab
    locomotion: walk
`)
	if _, err := Load(path); err == nil {
		t.Errorf("unknown locomotion must be rejected")
	}
}

func TestLoadRejectsInvertedDepths(t *testing.T) {
	path := writeConfig(t, "world:\n  surface_depth: -300\n")
	if _, err := Load(path); err == nil {
		t.Errorf("surface below the floor must be rejected")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
