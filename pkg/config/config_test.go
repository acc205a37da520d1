package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kspaceexplorer/pkg/engine"
)

func TestDefaultConfigDisablesEveryFilter(t *testing.T) {
	opts := DefaultConfig().Options()
	assert.Equal(t, engine.DefaultOptions(), opts,
		"default config must map onto the engine's all-disabled options")
}

func TestOptionsMapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Filters.SignalToNoise = 12
	cfg.Filters.ReducedScan.Enabled = true
	cfg.Filters.ReducedScan.Percent = 70
	cfg.Filters.PartialFourier.Enabled = true
	cfg.Filters.PartialFourier.Percent = 60
	cfg.Filters.PartialFourier.ZeroFill = true
	cfg.Filters.HighPassPercent = 5
	cfg.Filters.LowPassPercent = 80
	cfg.Filters.Undersample.Factor = 3
	cfg.Filters.Undersample.Compress = true
	cfg.Filters.DecreaseDCPercent = 40
	cfg.Filters.Hamming = true
	cfg.Filters.Fill.Percent = 30
	cfg.Filters.Fill.Mode = "epi"
	cfg.Display.KSpaceScaleExp = -2
	cfg.Display.Windowed = true
	cfg.Display.WindowWidth = 0.5
	cfg.Display.WindowCenter = 0.4

	opts := cfg.Options()
	assert.Equal(t, 12.0, opts.SignalToNoise)
	assert.True(t, opts.ReducedScan)
	assert.Equal(t, 70.0, opts.ReducedScanPercent)
	assert.True(t, opts.PartialFourier)
	assert.Equal(t, 60.0, opts.PartialFourierPercent)
	assert.True(t, opts.ZeroFill)
	assert.Equal(t, 5.0, opts.HighPassPercent)
	assert.Equal(t, 80.0, opts.LowPassPercent)
	assert.Equal(t, 3, opts.UndersampleFactor)
	assert.True(t, opts.Compress)
	assert.Equal(t, 40, opts.DecreaseDCPercent)
	assert.True(t, opts.Hamming)
	assert.Equal(t, 30.0, opts.FillPercent)
	assert.Equal(t, engine.FillSSEPIBlipped, opts.FillMode)
	assert.Equal(t, -2, opts.KSpaceScaleExp)
	require.NotNil(t, opts.Window)
	assert.Equal(t, 0.5, opts.Window.Width)
	assert.Equal(t, 0.4, opts.Window.Center)
}

func TestUnknownFillModeFallsBackToLinear(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Filters.Fill.Mode = "zigzag"
	assert.Equal(t, engine.FillLinear, cfg.Options().FillMode)
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cfg.yaml")

	cfg := DefaultConfig()
	cfg.Filters.Hamming = true
	cfg.Filters.Undersample.Factor = 2
	cfg.Filters.Fill.Mode = "centric"
	cfg.Output.Format = "tiff"

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("filters: [not a map"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)
}
