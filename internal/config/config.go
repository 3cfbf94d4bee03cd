// Package config provides shared configuration types for chisel.
// This package is decoupled from CLI concerns so other tools can load
// project configuration without pulling in cobra.
package config

// Default configuration values.
const (
	DefaultPlansDir    = "plans"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultParallel    = 1
	DefaultIndentWidth = 2
)

// ProjectConfig holds project-level settings shared by the CLI and the
// engine.
type ProjectConfig struct {
	// PlansDir is where bare plan names are resolved.
	PlansDir string `koanf:"plans_dir"`
	// Output selects the render mode: auto, text, markdown or json.
	Output string `koanf:"output"`
	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
	// Parallel caps concurrent documents in a batch run.
	Parallel int `koanf:"parallel"`
	// Shim, when set, rewrites every source into a re-export shim
	// regardless of the plan's own flag.
	Shim bool `koanf:"shim"`
	// IndentWidth is the markup cleaner's indentation unit.
	IndentWidth int `koanf:"indent_width"`
}

// ApplyDefaults fills unset fields with defaults.
func ApplyDefaults(c *ProjectConfig) {
	if c == nil {
		return
	}
	if c.PlansDir == "" {
		c.PlansDir = DefaultPlansDir
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Parallel == 0 {
		c.Parallel = DefaultParallel
	}
	if c.IndentWidth == 0 {
		c.IndentWidth = DefaultIndentWidth
	}
}
