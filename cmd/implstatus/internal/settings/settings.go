// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings resolves the configuration, logger and registry shared by
// every implstatus command.
package settings

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bartekus/implstatus/cmd/implstatus/internal/clierr"
	"github.com/bartekus/implstatus/internal/artifact"
	"github.com/bartekus/implstatus/internal/config"
	"github.com/bartekus/implstatus/internal/logging"
	"github.com/bartekus/implstatus/internal/registry"
)

// Flag names bound to config keys. Commands define the subset they accept.
const (
	FlagConfig        = "config"
	FlagLogLevel      = "log-level"
	FlagLogFormat     = "log-format"
	FlagRoot          = "root"
	FlagRegistry      = "registry"
	FlagMigrationsDir = "migrations-dir"
	FlagMigrationExt  = "migration-ext"
	FlagLockfile      = "lockfile"
	FlagFormat        = "format"
	FlagOutput        = "output"
	FlagWorkers       = "workers"
)

// Settings is the resolved state of one command invocation.
type Settings struct {
	Config *config.Config
	Log    *zap.Logger
}

// Load merges the config file, environment and the flags the user set on cmd.
// Logs go to cmd's error stream.
func Load(cmd *cobra.Command) (*Settings, error) {
	path, _ := cmd.Flags().GetString(FlagConfig)

	cfg, err := config.Load(path)
	if err != nil {
		return nil, clierr.Wrap(clierr.ExitUsage, "load config", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, clierr.Wrap(clierr.ExitUsage, "read flags", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, clierr.Wrap(clierr.ExitUsage, "invalid settings", err)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, clierr.Wrap(clierr.ExitUsage, "configure logging", err)
	}

	return &Settings{Config: cfg, Log: log}, nil
}

// applyFlags copies explicitly set flags over cfg. Unset flags keep the
// value from the file, environment or defaults.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()

	stringFlags := map[string]*string{
		FlagRoot:          &cfg.Root,
		FlagRegistry:      &cfg.Registry,
		FlagMigrationsDir: &cfg.MigrationsDir,
		FlagLockfile:      &cfg.Lockfile,
		FlagFormat:        &cfg.Format,
		FlagOutput:        &cfg.Output,
		FlagLogLevel:      &cfg.Log.Level,
		FlagLogFormat:     &cfg.Log.Format,
	}
	for name, dst := range stringFlags {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if fs.Changed(FlagWorkers) {
		n, err := fs.GetInt(FlagWorkers)
		if err != nil {
			return err
		}
		cfg.Workers = n
	}

	if fs.Changed(FlagMigrationExt) {
		exts, err := fs.GetStringSlice(FlagMigrationExt)
		if err != nil {
			return err
		}
		cfg.MigrationExtensions = exts
	}

	return nil
}

// Registry returns the configured registry, or the built-in one when no
// registry file is set.
func (s *Settings) Registry() (*registry.Registry, error) {
	return LoadRegistry(s.Config.Registry)
}

// LoadRegistry loads path, or the built-in registry when path is empty.
// Invalid registries map to ExitInvalidRegistry.
func LoadRegistry(path string) (*registry.Registry, error) {
	var (
		reg *registry.Registry
		err error
	)
	if path == "" {
		reg, err = registry.Default()
	} else {
		reg, err = registry.Load(path)
	}

	switch {
	case err == nil:
		return reg, nil
	case errors.Is(err, registry.ErrInvalidRegistry), errors.Is(err, artifact.ErrMalformedDescriptor):
		return nil, clierr.Wrap(clierr.ExitInvalidRegistry, "load registry", err)
	default:
		return nil, clierr.Wrap(clierr.ExitUsage, "load registry", err)
	}
}

// Prober builds the artifact prober described by the settings.
func (s *Settings) Prober() *artifact.Prober {
	return artifact.NewProber(s.Config.ProberOptions(), s.Log)
}
