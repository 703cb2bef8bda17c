package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"portalphys/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scenario != DefaultScenario {
		t.Errorf("expected scenario %s, got %s", DefaultScenario, cfg.Scenario)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
	if cfg.Physics.SolverIterations != physics.DefaultSolverIterations {
		t.Errorf("expected %d solver iterations, got %d", physics.DefaultSolverIterations, cfg.Physics.SolverIterations)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portalsim.yaml")

	cfg := DefaultConfig()
	cfg.Scenario = "box_stack"
	cfg.Ticks = 120
	cfg.Physics.Gravity = -20
	cfg.Viewer.ShowContacts = false

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Scenario != "box_stack" || loaded.Ticks != 120 {
		t.Errorf("expected box_stack for 120 ticks, got %s for %d", loaded.Scenario, loaded.Ticks)
	}
	if loaded.Physics.Gravity != -20 {
		t.Errorf("expected gravity -20, got %f", loaded.Physics.Gravity)
	}
	if loaded.Viewer.ShowContacts {
		t.Error("expected show_contacts to stay false")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("physics:\n  solver_iterations: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Physics.SolverIterations != 4 {
		t.Errorf("expected 4 iterations, got %d", cfg.Physics.SolverIterations)
	}
	if cfg.Physics.Damping != physics.DefaultDamping {
		t.Errorf("expected default damping, got %f", cfg.Physics.Damping)
	}
	if cfg.Ticks != DefaultTicks {
		t.Errorf("expected default ticks, got %d", cfg.Ticks)
	}
}

func TestLoadRejectsInvalidPhysics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("physics:\n  damping: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, physics.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
