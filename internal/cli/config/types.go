// Package config provides configuration management for the chisel CLI.
//
// It extends the shared project configuration from internal/config
// with CLI-specific fields, and loads everything through koanf with
// the precedence flags > env vars > config file > defaults.
package config

import (
	"fmt"

	intconfig "github.com/chiselkit/chisel/internal/config"
)

// Config holds all CLI configuration options.
type Config struct {
	PlansDir     string `koanf:"plans_dir"`
	OutputFormat string `koanf:"output"`
	Verbose      bool   `koanf:"verbose"`
	Parallel     int    `koanf:"parallel"`
	Shim         bool   `koanf:"shim"`
	IndentWidth  int    `koanf:"indent_width"`

	// ProjectRoot is the directory relative paths resolve against.
	// Derived, never loaded from a provider.
	ProjectRoot string `koanf:"-"`
}

// FromProject builds a CLI config from the shared project form.
func FromProject(p *intconfig.ProjectConfig) *Config {
	return &Config{
		PlansDir:     p.PlansDir,
		OutputFormat: p.Output,
		Verbose:      p.Verbose,
		Parallel:     p.Parallel,
		Shim:         p.Shim,
		IndentWidth:  p.IndentWidth,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("invalid output format %q (want auto, text, markdown or json)", c.OutputFormat)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	if c.IndentWidth < 1 {
		return fmt.Errorf("indent_width must be at least 1, got %d", c.IndentWidth)
	}
	return nil
}
