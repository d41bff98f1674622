// Package config loads default run settings from a YAML file.
//
// The file is optional. When no path is given it is looked up as
// tldball/config.yaml under the XDG config directories. Values set on the
// command line take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Default values for a run.
const (
	AppName          = "tldball"
	DefaultDepth     = 2
	DefaultWorkers   = 1
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "tldball/1.0"
	DefaultFormat    = "dot"
)

var (
	// ErrConfigNotFound is returned when an explicitly requested file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	ErrInvalidDepth   = errors.New("invalid depth: must be positive")
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")
	ErrInvalidRetries = errors.New("invalid retries: must be non-negative")
	ErrInvalidDelay   = errors.New("invalid delay: must be non-negative")
	ErrInvalidRPS     = errors.New("invalid rps: must be non-negative")
	ErrInvalidFormat  = errors.New("invalid format: must be dot or json")
)

// Config holds the settings of a run.
type Config struct {
	Center    string        `yaml:"center"`
	Depth     int           `yaml:"depth"`
	Workers   int           `yaml:"workers"`
	Timeout   time.Duration `yaml:"timeout"`
	Retries   int           `yaml:"retries"`
	Delay     time.Duration `yaml:"delay"`
	RPS       float64       `yaml:"rps"`
	UserAgent string        `yaml:"user_agent"`
	Output    string        `yaml:"output"`
	Format    string        `yaml:"format"`
	Verbose   bool          `yaml:"verbose"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Depth:     DefaultDepth,
		Workers:   DefaultWorkers,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Format:    DefaultFormat,
	}
}

// Load returns Default overlaid with the YAML file at path.
// An empty path searches the XDG config directories and falls back to Default
// when nothing is found; a non-empty path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		found, err := xdg.SearchConfigFile(AppName + "/config.yaml")
		if err != nil {
			return cfg, nil
		}
		path = found
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks numeric settings and the output format.
func (c Config) Validate() error {
	switch {
	case c.Depth < 1:
		return ErrInvalidDepth
	case c.Workers < 1:
		return ErrInvalidWorkers
	case c.Timeout < 0:
		return ErrInvalidTimeout
	case c.Retries < 0:
		return ErrInvalidRetries
	case c.Delay < 0:
		return ErrInvalidDelay
	case c.RPS < 0:
		return ErrInvalidRPS
	case c.Format != "dot" && c.Format != "json":
		return ErrInvalidFormat
	}

	return nil
}

// OutputPath is the file the graph is written to: Output if set, otherwise "<center>.gv".
func (c Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}

	if c.Format == "json" {
		return c.Center + ".json"
	}

	return c.Center + ".gv"
}
