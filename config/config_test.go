package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/retroterm/arcade"
	"github.com/pthm-cable/retroterm/screen"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Evolution.Population != 60 {
		t.Errorf("population = %d, want 60", cfg.Evolution.Population)
	}
	if cfg.Scene.CameraDistance != 5 {
		t.Errorf("camera distance = %v, want 5", cfg.Scene.CameraDistance)
	}
	if cfg.Pong.MaxTicks != 3000 {
		t.Errorf("pong max ticks = %d, want 3000", cfg.Pong.MaxTicks)
	}

	topo := cfg.Derived.Topology
	if topo.Inputs != arcade.PongInputs || topo.Outputs != arcade.PongActions {
		t.Errorf("topology = %+v", topo)
	}
	if err := arcade.ValidateEncoder(arcade.PongFactory{Config: cfg.Pong}, topo); err != nil {
		t.Errorf("default config does not fit the encoder: %v", err)
	}
	if cfg.Derived.ForegroundColor != screen.RGB(51, 255, 102) {
		t.Errorf("foreground = %v", cfg.Derived.ForegroundColor)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	overlay := "evolution:\n  population: 12\n  min_population: 4\nbrain:\n  hidden_layers: [3]\n"
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Evolution.Population != 12 || cfg.Evolution.MinPopulation != 4 {
		t.Errorf("evolution = %+v", cfg.Evolution)
	}
	// Untouched keys keep their defaults
	if cfg.Evolution.ShrinkStep != 2 {
		t.Errorf("shrink step = %d, want default 2", cfg.Evolution.ShrinkStep)
	}
	if len(cfg.Derived.Topology.Hidden) != 1 || cfg.Derived.Topology.Hidden[0] != 3 {
		t.Errorf("hidden = %v, want [3]", cfg.Derived.Topology.Hidden)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		overlay string
	}{
		{"zero population", "evolution:\n  population: 0\n"},
		{"floor above population", "evolution:\n  population: 5\n  min_population: 6\n"},
		{"elite fraction", "evolution:\n  elite_fraction: 1.5\n"},
		{"empty hidden layer", "brain:\n  hidden_layers: [4, 0]\n"},
		{"tiny landscape", "landscape:\n  grid_size: 1\n"},
		{"negative shrink step", "evolution:\n  shrink_step: -1\n"},
		{"flat paddle", "pong:\n  paddle_height: 0\n"},
		{"paddle taller than arena", "pong:\n  paddle_height: 50\n"},
		{"no points to win", "pong:\n  points_to_win: 0\n"},
		{"no ticks", "pong:\n  max_ticks: 0\n"},
		{"stalled ball", "pong:\n  ball_speed: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if err := os.WriteFile(path, []byte(tt.overlay), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Evolution.Seed = 1234

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if back.Evolution.Seed != 1234 {
		t.Errorf("seed = %d, want 1234", back.Evolution.Seed)
	}
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Cfg()
}
