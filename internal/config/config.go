// Package config loads the besselx TOML configuration file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/roach88/besselx/pkg/kernel/series"
)

// EnvVar names the environment variable consulted when no --config flag is given.
const EnvVar = "BESSELX_CONFIG"

// Config holds the complete application configuration.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Kernel KernelConfig `toml:"kernel"`
	Store  StoreConfig  `toml:"store"`
}

// LogConfig controls the slog handler installed by the CLI.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // tint, text, json
}

// KernelConfig selects and tunes the kernel backend.
type KernelConfig struct {
	Backend             string  `toml:"backend"`
	MaxTerms            int     `toml:"max_terms"`
	Tolerance           float64 `toml:"tolerance"`
	MaxModulus          float64 `toml:"max_modulus"`
	LossThreshold       float64 `toml:"loss_threshold"`
	SevereLossThreshold float64 `toml:"severe_loss_threshold"`
}

// StoreConfig locates the evaluation log.
type StoreConfig struct {
	Path string `toml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load reads a TOML file, fills in defaults and validates the result.
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Resolve loads path if set, else the file named by BESSELX_CONFIG, else
// returns Default.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "tint"
	}

	def := series.DefaultConfig()
	if c.Kernel.Backend == "" {
		c.Kernel.Backend = "series"
	}
	if c.Kernel.MaxTerms == 0 {
		c.Kernel.MaxTerms = def.MaxTerms
	}
	if c.Kernel.Tolerance == 0 {
		c.Kernel.Tolerance = def.Tolerance
	}
	if c.Kernel.MaxModulus == 0 {
		c.Kernel.MaxModulus = def.MaxModulus
	}
	if c.Kernel.LossThreshold == 0 {
		c.Kernel.LossThreshold = def.LossThreshold
	}
	if c.Kernel.SevereLossThreshold == 0 {
		c.Kernel.SevereLossThreshold = def.SevereLossThreshold
	}

	if c.Store.Path == "" {
		c.Store.Path = "besselx.db"
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "tint", "text", "json":
	default:
		return fmt.Errorf("log.format must be tint, text or json, got %q", c.Log.Format)
	}
	if c.Kernel.Backend != "series" {
		return fmt.Errorf("kernel.backend %q is not available (only \"series\")", c.Kernel.Backend)
	}
	if err := c.Series().Validate(); err != nil {
		return fmt.Errorf("kernel: %w", err)
	}
	return nil
}

// Series returns the series backend settings.
func (c *Config) Series() series.Config {
	return series.Config{
		MaxTerms:            c.Kernel.MaxTerms,
		Tolerance:           c.Kernel.Tolerance,
		MaxModulus:          c.Kernel.MaxModulus,
		LossThreshold:       c.Kernel.LossThreshold,
		SevereLossThreshold: c.Kernel.SevereLossThreshold,
	}
}
