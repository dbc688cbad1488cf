package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "png", cfg.Format)
	assert.Equal(t, 300.0, cfg.DPI)
	assert.GreaterOrEqual(t, cfg.Jobs, 1)
	assert.True(t, cfg.Record)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().ListenAddr, cfg.ListenAddr)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "slidefigs.yaml")

	cfg := DefaultConfig()
	cfg.OutputDir = "out"
	cfg.Format = "svg"
	cfg.DPI = 150
	cfg.Jobs = 2
	cfg.Log.Level = "debug"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out", loaded.OutputDir)
	assert.Equal(t, "svg", loaded.Format)
	assert.Equal(t, 150.0, loaded.DPI)
	assert.Equal(t, 2, loaded.Jobs)
	assert.Equal(t, "debug", loaded.Log.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slidefigs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dpi: 150\nformat: png\n"), 0644))

	t.Setenv("SLIDEFIGS_DPI", "72")
	t.Setenv("SLIDEFIGS_FORMAT", "SVG")
	t.Setenv("SLIDEFIGS_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 72.0, cfg.DPI)
	assert.Equal(t, "svg", cfg.Format)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dpi: [nope"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"format":   func(c *Config) { c.Format = "gif" },
		"dpi":      func(c *Config) { c.DPI = 0 },
		"dpi-nan":  func(c *Config) { c.DPI = math.NaN() },
		"dpi-inf":  func(c *Config) { c.DPI = math.Inf(1) },
		"jobs":     func(c *Config) { c.Jobs = 0 },
		"output":   func(c *Config) { c.OutputDir = "" },
		"record":   func(c *Config) { c.DBPath = "" },
		"level":    func(c *Config) { c.Log.Level = "loud" },
		"encoding": func(c *Config) { c.Log.Encoding = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
