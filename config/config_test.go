package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Fluid.Size != 128 {
		t.Errorf("Fluid.Size = %d, want 128", cfg.Fluid.Size)
	}
	if cfg.Fluid.PressureMode != PressureRetain {
		t.Errorf("Fluid.PressureMode = %q, want %q", cfg.Fluid.PressureMode, PressureRetain)
	}
	if cfg.Lines.GridSpacing != 15 {
		t.Errorf("Lines.GridSpacing = %d, want 15", cfg.Lines.GridSpacing)
	}
	if len(cfg.NoiseChannels) != 3 {
		t.Fatalf("len(NoiseChannels) = %d, want 3", len(cfg.NoiseChannels))
	}
	if cfg.NoiseChannels[0].Scale != 2.5 {
		t.Errorf("NoiseChannels[0].Scale = %v, want 2.5", cfg.NoiseChannels[0].Scale)
	}
	if cfg.Mode != ModeNormal {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeNormal)
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.yaml")
	user := []byte("fluid:\n  viscosity: 1.2\nlines:\n  grid_spacing: 20\n")
	if err := os.WriteFile(path, user, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.Fluid.Viscosity != 1.2 {
		t.Errorf("Fluid.Viscosity = %v, want 1.2 (from user file)", cfg.Fluid.Viscosity)
	}
	if cfg.Lines.GridSpacing != 20 {
		t.Errorf("Lines.GridSpacing = %d, want 20 (from user file)", cfg.Lines.GridSpacing)
	}
	// Untouched fields keep defaults.
	if cfg.Fluid.Size != 128 {
		t.Errorf("Fluid.Size = %d, want 128 (default)", cfg.Fluid.Size)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero grid spacing", func(c *Config) { c.Lines.GridSpacing = 0 }},
		{"non-positive fluid size", func(c *Config) { c.Fluid.Size = 0 }},
		{"negative timestep", func(c *Config) { c.Fluid.Timestep = -0.01 }},
		{"zero viscosity", func(c *Config) { c.Fluid.Viscosity = 0 }},
		{"unknown pressure mode", func(c *Config) { c.Fluid.PressureMode = "invert" }},
		{"unknown render mode", func(c *Config) { c.Mode = "wireframe" }},
		{"no noise channels", func(c *Config) { c.NoiseChannels = nil }},
		{"zero channel scale", func(c *Config) { c.NoiseChannels[0].Scale = 0 }},
		{"unknown color preset", func(c *Config) { c.Color.Preset = "neon" }},
		{"image mode without path", func(c *Config) { c.Color.Mode = ColorModeImage; c.Color.ImagePath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestDerivedMirrors(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Derived.Viscosity32 != float32(cfg.Fluid.Viscosity) {
		t.Errorf("Viscosity32 = %v, want %v", cfg.Derived.Viscosity32, float32(cfg.Fluid.Viscosity))
	}
	if cfg.Derived.ViewScale32 != float32(cfg.Lines.ViewScale) {
		t.Errorf("ViewScale32 = %v, want %v", cfg.Derived.ViewScale32, float32(cfg.Lines.ViewScale))
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load of snapshot error: %v", err)
	}
	if loaded.Fluid.Viscosity != cfg.Fluid.Viscosity || loaded.Lines.GridSpacing != cfg.Lines.GridSpacing {
		t.Error("snapshot round trip changed values")
	}
}
