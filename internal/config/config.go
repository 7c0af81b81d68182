// Package config loads cmkit's configuration: lifecycle options (jobs,
// build directory, extra configure arguments), discovery roots, and
// hand-authored kit entries that bypass scanning.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"

	"github.com/cmkit/cmkit/internal/kit"
	"github.com/cmkit/cmkit/pkgs/buildsys"
)

// AppName is the application name, used for config and cache directories.
const AppName = "cmkit"

// ShellEntry mirrors kit.ShellDescriptor in config form.
type ShellEntry struct {
	Program string   `mapstructure:"program"`
	Args    []string `mapstructure:"args"`
}

// KitEntry is a hand-authored kit. Env is a plain map in the file; entries
// are applied in name order so the resulting delta is deterministic.
type KitEntry struct {
	Name      string            `mapstructure:"name"`
	CMake     string            `mapstructure:"cmake"`
	CTest     string            `mapstructure:"ctest"`
	Clangd    string            `mapstructure:"clangd"`
	Generator string            `mapstructure:"generator"`
	Env       map[string]string `mapstructure:"env"`
	Shell     *ShellEntry       `mapstructure:"shell"`
}

// Config is the loaded configuration. Zero values mean "unset" everywhere.
type Config struct {
	Jobs          int        `mapstructure:"jobs"`
	BuildDir      string     `mapstructure:"build_dir"`
	DefaultKit    string     `mapstructure:"default_kit"`
	ConfigureArgs []string   `mapstructure:"configure_args"`
	MSYSRoot      string     `mapstructure:"msys_root"`
	Bridge        string     `mapstructure:"bridge"`
	Kits          []KitEntry `mapstructure:"kits"`
}

// Load reads cmkit.yaml from the project root, falling back to the user
// config directory. A missing file yields the zero config; CMKIT_* variables
// override file values either way.
func Load(projectRoot string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(AppName)
	v.SetConfigType("yaml")
	if projectRoot != "" {
		v.AddConfigPath(projectRoot)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, AppName))
	}
	v.SetEnvPrefix("CMKIT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for _, entry := range cfg.Kits {
		if entry.Name == "" {
			return nil, errors.New("config: every kits entry needs a name")
		}
	}
	return &cfg, nil
}

// Kit converts a hand-authored entry into a kit record.
func (e KitEntry) Kit() kit.Kit {
	k := kit.Kit{
		Name:      e.Name,
		CMake:     e.CMake,
		CTest:     e.CTest,
		Clangd:    e.Clangd,
		Generator: e.Generator,
	}
	if len(e.Env) > 0 {
		names := make([]string, 0, len(e.Env))
		for name := range e.Env {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			k.Env = append(k.Env, buildsys.EnvVar{Name: name, Value: e.Env[name]})
		}
	}
	// The kit's env delta is applied by whoever launches the shell; the
	// descriptor only carries shell-specific variables, of which config
	// entries have none.
	if e.Shell != nil {
		k.Shell = &kit.ShellDescriptor{Program: e.Shell.Program, Args: e.Shell.Args}
	}
	return k
}
