package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
)

const envPrefix = "PFDEDIT_"

// Config holds editor settings.
type Config struct {
	CellWidth    float64 `koanf:"cell_width"`  // scene units per terminal column
	CellHeight   float64 `koanf:"cell_height"` // scene units per terminal row
	RotateStep   float64 `koanf:"rotate_step"` // degrees per Q/E press
	Watch        bool    `koanf:"watch"`
	LogFile      string  `koanf:"log_file"`
	LogLevel     string  `koanf:"log_level"`
	DefaultShape string  `koanf:"default_shape"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"cell_width":    10.0,
		"cell_height":   20.0,
		"rotate_step":   1.0,
		"watch":         true,
		"log_file":      "",
		"log_level":     "info",
		"default_shape": "tank",
	}
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pfdedit.toml"
	}
	return filepath.Join(home, ".pfdedit.toml")
}

// LoadConfig layers defaults, the config file at path, PFDEDIT_* variables
// and flags, later sources winning. A missing file is not an error.
func LoadConfig(path string, f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	// PFDEDIT_ROTATE_STEP -> rotate_step
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, interface{}) {
			return strings.ReplaceAll(fl.Name, "-", "_"), posflag.FlagVal(f, fl)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) check() error {
	if c.CellWidth <= 0 || c.CellHeight <= 0 {
		return fmt.Errorf("cell size must be positive, got %gx%g", c.CellWidth, c.CellHeight)
	}
	if c.RotateStep <= 0 || c.RotateStep >= 360 {
		return fmt.Errorf("rotate_step must be in (0, 360), got %g", c.RotateStep)
	}
	if _, ok := diagram.DefaultIcons().Icon(c.DefaultShape); !ok {
		return fmt.Errorf("default_shape %q: %w", c.DefaultShape, diagram.ErrUnknownShape)
	}
	return nil
}

// flagSet declares the command line flags that override config keys.
func flagSet() *pflag.FlagSet {
	f := pflag.NewFlagSet("pfdedit", pflag.ContinueOnError)
	f.String("config", ConfigPath(), "Config file")
	f.Float64("cell-width", 0, "Scene units per terminal column")
	f.Float64("cell-height", 0, "Scene units per terminal row")
	f.Float64("rotate-step", 0, "Degrees per rotate key press")
	f.Bool("watch", true, "Reload the file when it changes on disk")
	f.String("log-file", "", "Write logs to this file")
	f.String("log-level", "", "Log level (debug, info, warn, error)")
	f.String("default-shape", "", "Shape placed by the n key")
	return f
}

// mapProvider feeds a plain map into koanf.
type mapProvider map[string]interface{}

func (p mapProvider) Read() (map[string]interface{}, error) {
	return p, nil
}

func (p mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("not implemented")
}
