// Package config loads the YAML configuration file of the blinknote CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/blinknote/internal/platform"
)

// Config is the content of the configuration file. Command-line flags
// override the values read from it.
type Config struct {
	File string `yaml:"-"`

	Adapter string       `yaml:"adapter" default:"auto"`
	Key     string       `yaml:"key" default:"blinknote-items"`
	Shared  SharedConfig `yaml:"shared"`
	Local   LocalConfig  `yaml:"local"`
	Log     LogConfig    `yaml:"log"`
}

// SharedConfig configures the shared (observable) backend.
type SharedConfig struct {
	// Dir enables the shared backend when set and writable.
	Dir      string `yaml:"dir"`
	Debounce string `yaml:"debounce" default:"50ms"`
}

// LocalConfig configures the local fallback backend.
type LocalConfig struct {
	// Path defaults to <user config dir>/blinknote/local.db.
	Path string `yaml:"path"`
}

// LogConfig sets the CLI log level (debug, info, warn or error).
type LogConfig struct {
	Level string `yaml:"level" default:"info"`
}

// DefaultPath returns <user config dir>/blinknote/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "blinknote", "config.yaml"), nil
}

// Default returns a configuration holding only default values.
func Default() *Config {
	c := new(Config)
	// defaults.Set only fails on malformed tags
	if err := defaults.Set(c); err != nil {
		panic(err)
	}
	return c
}

// Load reads the file at path. An empty path, or a missing file when
// optional is set, yields the defaults.
func Load(path string, optional bool) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	realpath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	c.File = filepath.Clean(realpath)

	data, err := os.ReadFile(c.File)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config file failed: %w", err)
	}
	// fill fields present in the file but left empty
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("set default config failed: %w", err)
	}
	if _, err := c.debounce(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) debounce() (time.Duration, error) {
	d, err := time.ParseDuration(c.Shared.Debounce)
	if err != nil {
		return 0, fmt.Errorf("invalid shared.debounce %q: %w", c.Shared.Debounce, err)
	}
	return d, nil
}

// Options translates the configuration into platform options.
func (c *Config) Options() []platform.Option {
	opts := []platform.Option{
		platform.WithAdapter(c.Adapter),
		platform.WithKey(c.Key),
		platform.WithSharedDir(c.Shared.Dir),
		platform.WithLocalPath(c.Local.Path),
	}
	if d, err := c.debounce(); err == nil {
		opts = append(opts, platform.WithDebounce(d))
	}
	return opts
}
