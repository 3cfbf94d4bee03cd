package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	intconfig "github.com/chiselkit/chisel/internal/config"
)

// maxUpwardSearchLevels limits how far up the directory tree to search
// for config files.
const maxUpwardSearchLevels = 10

var configFileUsed string

func configExistsIn(dir string) string {
	for _, name := range []string{"chisel.yaml", "chisel.yml"} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findProjectRootUpward searches upward from startDir for a chisel
// config file. Returns empty when none is found within
// maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// LoadConfig loads configuration from file, environment variables, and
// flags. Precedence (highest to lowest): flags > env vars > config
// file > defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	projectRoot := ""
	if cfgFile != "" {
		abs, err := filepath.Abs(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("resolve config path %s: %w", cfgFile, err)
		}
		projectRoot = filepath.Dir(abs)
	} else if cwd, err := os.Getwd(); err == nil {
		if root := findProjectRootUpward(cwd); root != "" {
			projectRoot = root
			cfgFile = configExistsIn(root)
		} else {
			projectRoot = cwd
		}
	}

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"plans_dir":    intconfig.DefaultPlansDir,
		"output":       intconfig.DefaultOutput,
		"verbose":      false,
		"parallel":     intconfig.DefaultParallel,
		"shim":         false,
		"indent_width": intconfig.DefaultIndentWidth,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed = cfgFile
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment variables: CHISEL_PLANS_DIR -> plans_dir
	if err := k.Load(env.Provider("CHISEL_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CHISEL_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.ProjectRoot = projectRoot
	if cfg.PlansDir != "" && !filepath.IsAbs(cfg.PlansDir) && projectRoot != "" {
		cfg.PlansDir = filepath.Join(projectRoot, cfg.PlansDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}

// ConfigFileUsed returns the path of the config file consulted by the
// last LoadConfig call, if any.
func ConfigFileUsed() string {
	return configFileUsed
}
