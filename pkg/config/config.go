// Package config provides configuration loading and management for
// kspaceexplorer. It handles loading recompute settings from YAML files and
// provides default values matching a fully sampled, unfiltered acquisition.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"kspaceexplorer/pkg/engine"
)

// Config represents the application configuration loaded from YAML.
// The filter section mirrors the engine's recompute surface one to one.
type Config struct {
	// Filters configures the eleven k-space operations
	Filters struct {
		// SignalToNoise is the target SNR in dB; 30 or more disables noise
		SignalToNoise float64 `yaml:"signalToNoise"`

		// ReducedScan controls phase-direction line deletion
		ReducedScan struct {
			Enabled bool    `yaml:"enabled"`
			Percent float64 `yaml:"percent"`
		} `yaml:"reducedScan"`

		// PartialFourier controls half-scan simulation
		PartialFourier struct {
			Enabled  bool    `yaml:"enabled"`
			Percent  float64 `yaml:"percent"`
			ZeroFill bool    `yaml:"zeroFill"`
		} `yaml:"partialFourier"`

		// HighPassPercent is the high-pass mask radius (0 disables)
		HighPassPercent float64 `yaml:"highPassPercent"`

		// LowPassPercent is the low-pass mask radius (100 disables)
		LowPassPercent float64 `yaml:"lowPassPercent"`

		// Undersample controls line skipping and rectangular FOV compression
		Undersample struct {
			Factor   int  `yaml:"factor"`
			Compress bool `yaml:"compress"`
		} `yaml:"undersample"`

		// DecreaseDCPercent reduces the DC term (1 or less disables)
		DecreaseDCPercent int `yaml:"decreaseDCPercent"`

		// Hamming applies the 2D Hamming window
		Hamming bool `yaml:"hamming"`

		// Fill controls the acquisition fill simulation
		Fill struct {
			Percent float64 `yaml:"percent"`
			Mode    string  `yaml:"mode"`
		} `yaml:"fill"`
	} `yaml:"filters"`

	// Display configures the render buffers
	Display struct {
		// KSpaceScaleExp scales k-space magnitudes by 10^exp before log
		// compression
		KSpaceScaleExp int `yaml:"kspaceScaleExp"`

		// Windowed enables intensity windowing of the image display
		Windowed bool `yaml:"windowed"`

		// WindowWidth and WindowCenter are fractions of the image's
		// maximum intensity
		WindowWidth  float64 `yaml:"windowWidth"`
		WindowCenter float64 `yaml:"windowCenter"`
	} `yaml:"display"`

	// Output configures where the CLI saves results
	Output struct {
		// Dir is the directory for saved images
		Dir string `yaml:"dir"`

		// Format is "png" (8-bit) or "tiff" (16-bit lossless)
		Format string `yaml:"format"`
	} `yaml:"output"`
}

// fillModes maps the configuration names onto engine trajectories.
var fillModes = map[string]engine.FillMode{
	"linear":  engine.FillLinear,
	"centric": engine.FillCentric,
	"epi":     engine.FillSSEPIBlipped,
	"spiral":  engine.FillSpiral,
}

// DefaultConfig returns a configuration with every filter disabled and
// default display settings.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Filters.SignalToNoise = engine.NoNoiseSNR
	cfg.Filters.ReducedScan.Percent = 100
	cfg.Filters.PartialFourier.Percent = 100
	cfg.Filters.HighPassPercent = 0
	cfg.Filters.LowPassPercent = 100
	cfg.Filters.Undersample.Factor = 1
	cfg.Filters.DecreaseDCPercent = 0
	cfg.Filters.Fill.Percent = 100
	cfg.Filters.Fill.Mode = "linear"

	cfg.Display.KSpaceScaleExp = engine.DefaultKSpaceScaleExp
	cfg.Display.Windowed = false
	cfg.Display.WindowWidth = 1
	cfg.Display.WindowCenter = 0.5

	cfg.Output.Dir = "output"
	cfg.Output.Format = "png"

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the
// specified path.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}

// Options converts the configuration into the engine's recompute options.
// Unknown fill mode names fall back to linear filling.
func (c *Config) Options() engine.Options {
	opts := engine.DefaultOptions()

	opts.SignalToNoise = c.Filters.SignalToNoise
	opts.ReducedScan = c.Filters.ReducedScan.Enabled
	opts.ReducedScanPercent = c.Filters.ReducedScan.Percent
	opts.PartialFourier = c.Filters.PartialFourier.Enabled
	opts.PartialFourierPercent = c.Filters.PartialFourier.Percent
	opts.ZeroFill = c.Filters.PartialFourier.ZeroFill
	opts.HighPassPercent = c.Filters.HighPassPercent
	opts.LowPassPercent = c.Filters.LowPassPercent
	opts.UndersampleFactor = c.Filters.Undersample.Factor
	opts.Compress = c.Filters.Undersample.Compress
	opts.DecreaseDCPercent = c.Filters.DecreaseDCPercent
	opts.Hamming = c.Filters.Hamming
	opts.FillPercent = c.Filters.Fill.Percent
	if mode, ok := fillModes[c.Filters.Fill.Mode]; ok {
		opts.FillMode = mode
	}

	opts.KSpaceScaleExp = c.Display.KSpaceScaleExp
	if c.Display.Windowed {
		opts.Window = &engine.Window{
			Width:  c.Display.WindowWidth,
			Center: c.Display.WindowCenter,
		}
	}

	return opts
}
