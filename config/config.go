// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Render modes.
const (
	ModeNormal          = "normal"
	ModeDebugNoise      = "noise"
	ModeDebugFluid      = "fluid"
	ModeDebugPressure   = "pressure"
	ModeDebugDivergence = "divergence"
)

// Pressure modes.
const (
	PressureRetain = "retain"
	PressureClear  = "clear"
)

// Color modes.
const (
	ColorModePreset = "preset"
	ColorModeImage  = "image"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen        ScreenConfig         `yaml:"screen"`
	Mode          string               `yaml:"mode"`
	Seed          string               `yaml:"seed"`
	Fluid         FluidConfig          `yaml:"fluid"`
	Lines         LinesConfig          `yaml:"lines"`
	Color         ColorConfig          `yaml:"color"`
	NoiseChannels []NoiseChannelConfig `yaml:"noise_channels"`
	Telemetry     TelemetryConfig      `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// FluidConfig holds the solver parameters.
type FluidConfig struct {
	Size                int     `yaml:"size"`       // Base texture dimension; scaled by the lattice ratio
	FrameRate           float64 `yaml:"frame_rate"` // Sub-steps per second
	Timestep            float64 `yaml:"timestep"`   // Fixed dt per sub-step
	Viscosity           float64 `yaml:"viscosity"`
	VelocityDissipation float64 `yaml:"velocity_dissipation"` // Decay per second applied during advection
	PressureMode        string  `yaml:"pressure_mode"`        // retain | clear
	ClearPressure       float64 `yaml:"clear_pressure"`       // Fill value when pressure_mode is clear
	DiffusionIterations int     `yaml:"diffusion_iterations"`
	PressureIterations  int     `yaml:"pressure_iterations"`
}

// LinesConfig holds line appearance and placement parameters.
type LinesConfig struct {
	Length      float64 `yaml:"length"`
	Width       float64 `yaml:"width"`
	BeginOffset float64 `yaml:"begin_offset"` // Fade-in start along the line, 0..1
	Variance    float64 `yaml:"variance"`     // Per-line jitter strength, 0..1
	GridSpacing int     `yaml:"grid_spacing"` // Logical pixels between basepoints
	ViewScale   float64 `yaml:"view_scale"`
}

// ColorConfig selects how lines are colored.
type ColorConfig struct {
	Mode      string `yaml:"mode"`       // preset | image
	Preset    string `yaml:"preset"`     // original | plasma | poolside | freedom
	ImagePath string `yaml:"image_path"` // RGBA image sampled by basepoint when mode is image
}

// NoiseChannelConfig holds one forcing channel.
type NoiseChannelConfig struct {
	Scale           float64 `yaml:"scale"`            // Spatial frequency before lattice scaling
	Multiplier      float64 `yaml:"multiplier"`       // Injection weight
	OffsetIncrement float64 `yaml:"offset_increment"` // Phase advance per second
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	Enabled             bool   `yaml:"enabled"`
	PerfCollectorWindow int    `yaml:"perf_collector_window"`
	OutputDir           string `yaml:"output_dir"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Timestep32    float32 // Fluid.Timestep as float32
	Viscosity32   float32 // Fluid.Viscosity as float32
	Dissipation32 float32 // Fluid.VelocityDissipation as float32
	LineLength32  float32
	LineWidth32   float32
	BeginOffset32 float32
	Variance32    float32
	ViewScale32   float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate rejects configurations no component can be built from.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeNormal, ModeDebugNoise, ModeDebugFluid, ModeDebugPressure, ModeDebugDivergence:
	default:
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}
	if c.Fluid.Size <= 0 {
		return fmt.Errorf("config: fluid size must be positive, got %d", c.Fluid.Size)
	}
	if c.Fluid.Timestep <= 0 {
		return fmt.Errorf("config: fluid timestep must be positive, got %v", c.Fluid.Timestep)
	}
	if c.Fluid.FrameRate <= 0 {
		return fmt.Errorf("config: fluid frame rate must be positive, got %v", c.Fluid.FrameRate)
	}
	if c.Fluid.Viscosity <= 0 {
		return fmt.Errorf("config: viscosity must be positive, got %v", c.Fluid.Viscosity)
	}
	switch c.Fluid.PressureMode {
	case PressureRetain, PressureClear:
	default:
		return fmt.Errorf("config: unknown pressure mode %q", c.Fluid.PressureMode)
	}
	if c.Fluid.DiffusionIterations < 0 || c.Fluid.PressureIterations < 0 {
		return fmt.Errorf("config: iteration counts must be non-negative")
	}
	if c.Lines.GridSpacing <= 0 {
		return fmt.Errorf("config: grid spacing must be positive, got %d", c.Lines.GridSpacing)
	}
	switch c.Color.Mode {
	case ColorModePreset:
		switch c.Color.Preset {
		case "original", "plasma", "poolside", "freedom":
		default:
			return fmt.Errorf("config: unknown color preset %q", c.Color.Preset)
		}
	case ColorModeImage:
		if c.Color.ImagePath == "" {
			return fmt.Errorf("config: color mode image requires image_path")
		}
	default:
		return fmt.Errorf("config: unknown color mode %q", c.Color.Mode)
	}
	if len(c.NoiseChannels) == 0 {
		return fmt.Errorf("config: at least one noise channel is required")
	}
	for i, ch := range c.NoiseChannels {
		if ch.Scale <= 0 {
			return fmt.Errorf("config: noise channel %d scale must be positive, got %v", i, ch.Scale)
		}
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config. Callers that
// mutate the config at runtime must call this again before handing it to
// components.
func (c *Config) ComputeDerived() {
	c.Derived.Timestep32 = float32(c.Fluid.Timestep)
	c.Derived.Viscosity32 = float32(c.Fluid.Viscosity)
	c.Derived.Dissipation32 = float32(c.Fluid.VelocityDissipation)
	c.Derived.LineLength32 = float32(c.Lines.Length)
	c.Derived.LineWidth32 = float32(c.Lines.Width)
	c.Derived.BeginOffset32 = float32(c.Lines.BeginOffset)
	c.Derived.Variance32 = float32(c.Lines.Variance)
	c.Derived.ViewScale32 = float32(c.Lines.ViewScale)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
