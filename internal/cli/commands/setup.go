// Package commands implements the chisel subcommands.
package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chiselkit/chisel/internal/cli/config"
	"github.com/chiselkit/chisel/internal/cli/output"
	intconfig "github.com/chiselkit/chisel/internal/config"
	"github.com/chiselkit/chisel/internal/planfile"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext assembles the config, logger and renderer for a
// command invocation.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the loaded configuration, falling back to defaults
// when a command runs without the root's PersistentPreRunE (tests,
// mostly).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	shared := &intconfig.ProjectConfig{}
	intconfig.ApplyDefaults(shared)
	return config.FromProject(shared)
}

// resolvePlanPath turns a plan argument into a file path: an existing
// path wins, then a bare name is tried under the plans directory, with
// and without the .yaml extension.
func resolvePlanPath(cfg *config.Config, arg string) string {
	if _, err := os.Stat(arg); err == nil || filepath.IsAbs(arg) {
		return arg
	}
	if cfg.PlansDir == "" {
		return arg
	}
	for _, candidate := range []string{
		filepath.Join(cfg.PlansDir, arg),
		filepath.Join(cfg.PlansDir, arg+".yaml"),
		filepath.Join(cfg.PlansDir, arg+".yml"),
	} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return arg
}

// loadPlans loads every plan argument, failing on the first bad one.
func loadPlans(cfg *config.Config, args []string) ([]*planfile.Plan, error) {
	plans := make([]*planfile.Plan, 0, len(args))
	for _, arg := range args {
		plan, err := planfile.Load(resolvePlanPath(cfg, arg))
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
