// Package config loads slidefigs settings.
//
// Values are layered: built-in defaults, then an optional YAML file,
// then SLIDEFIGS_* environment variables. Command-line flags are applied
// last by the commands themselves.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file read when --config is not given.
const DefaultFile = "slidefigs.yaml"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// LogConfig configures the zap logger.
type LogConfig struct {
	Level    string `yaml:"level" env:"SLIDEFIGS_LOG_LEVEL"`       // debug, info, warn, error
	Encoding string `yaml:"encoding" env:"SLIDEFIGS_LOG_ENCODING"` // json, console
}

// Config is the full slidefigs configuration.
type Config struct {
	// OutputDir receives the rendered images and manifest.json.
	OutputDir string `yaml:"output_dir" env:"SLIDEFIGS_OUTPUT_DIR"`
	// Format is "png" or "svg".
	Format string  `yaml:"format" env:"SLIDEFIGS_FORMAT"`
	DPI    float64 `yaml:"dpi" env:"SLIDEFIGS_DPI"`
	// Jobs bounds how many figures render at once.
	Jobs int `yaml:"jobs" env:"SLIDEFIGS_JOBS"`

	// DBPath is the sqlite history database written when Record is set.
	DBPath string `yaml:"db_path" env:"SLIDEFIGS_DB"`
	Record bool   `yaml:"record" env:"SLIDEFIGS_RECORD"`

	// ListenAddr is where the gallery server listens.
	ListenAddr string `yaml:"listen_addr" env:"SLIDEFIGS_LISTEN"`

	Log LogConfig `yaml:"log"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:  ".",
		Format:     "png",
		DPI:        300,
		Jobs:       runtime.NumCPU(),
		DBPath:     DefaultDBPath(),
		Record:     true,
		ListenAddr: "127.0.0.1:7711",
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// DefaultDBPath returns ~/.slidefigs/history.db, or a relative path when
// the home directory is unknown.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".slidefigs", "history.db")
	}
	return filepath.Join(home, ".slidefigs", "history.db")
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error; an empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Validate normalizes and checks the configuration.
func (c *Config) Validate() error {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format != "png" && c.Format != "svg" {
		return fmt.Errorf("%w: format %q (valid: png, svg)", ErrInvalid, c.Format)
	}
	if !(c.DPI > 0 && c.DPI <= 1200) {
		return fmt.Errorf("%w: dpi %.0f out of range (0, 1200]", ErrInvalid, c.DPI)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("%w: jobs must be at least 1, got %d", ErrInvalid, c.Jobs)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir is empty", ErrInvalid)
	}
	if c.Record && c.DBPath == "" {
		return fmt.Errorf("%w: record is on but db_path is empty", ErrInvalid)
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	valid := false
	for _, l := range validLevels {
		if c.Log.Level == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: log level %q (valid: %v)", ErrInvalid, c.Log.Level, validLevels)
	}
	if c.Log.Encoding != "json" && c.Log.Encoding != "console" {
		return fmt.Errorf("%w: log encoding %q (valid: json, console)", ErrInvalid, c.Log.Encoding)
	}
	return nil
}
