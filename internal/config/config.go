// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads tool settings.
//
// Precedence (highest to lowest):
//  1. Command flags (applied by the CLI)
//  2. Environment variables prefixed with IMPLSTATUS_
//  3. YAML config file (.implstatus.yaml in the working directory, or --config)
//  4. Defaults
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/bartekus/implstatus/internal/artifact"
	"github.com/bartekus/implstatus/internal/logging"
	"github.com/bartekus/implstatus/internal/render"
)

const (
	// DefaultFile is looked up in the working directory when no path is given.
	DefaultFile = ".implstatus.yaml"

	// EnvPrefix prefixes environment overrides, e.g. IMPLSTATUS_LOCKFILE.
	EnvPrefix = "IMPLSTATUS_"

	maxConfigFileSize = 1024 * 1024
)

// Config holds all settings of a run.
type Config struct {
	// Root is the project directory to inspect.
	Root string `koanf:"root"`

	// Registry is a registry YAML file. Empty selects the built-in registry.
	Registry string `koanf:"registry"`

	// MigrationsDir is relative to Root.
	MigrationsDir string `koanf:"migrations_dir"`

	// MigrationExtensions restricts which migration entries are considered.
	MigrationExtensions []string `koanf:"migration_extensions"`

	// Lockfile is relative to Root.
	Lockfile string `koanf:"lockfile"`

	// Format is one of render.Formats.
	Format string `koanf:"format"`

	// Output, when set, receives the rendered report instead of stdout.
	Output string `koanf:"output"`

	// Workers bounds concurrent feature probing. 1 keeps the run sequential.
	Workers int `koanf:"workers"`

	Log LogConfig `koanf:"log"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() Config {
	return Config{
		Root:          ".",
		MigrationsDir: artifact.DefaultMigrationsDir,
		Lockfile:      artifact.DefaultLockfile,
		Format:        string(render.FormatText),
		Workers:       1,
		Log: LogConfig{
			Level:  "warn",
			Format: logging.FormatConsole,
		},
	}
}

// Load builds a Config from defaults, the config file and the environment.
// An empty path falls back to DefaultFile when it exists; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	content, err := readConfigFile(path)
	switch {
	case err == nil:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no config file
	default:
		return nil, err
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps IMPLSTATUS_LOG_LEVEL to log.level and IMPLSTATUS_MIGRATIONS_DIR
// to migrations_dir. Comma-separated lists become slices.
func envKey(key, value string) (string, interface{}) {
	k := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if rest, ok := strings.CutPrefix(k, "log_"); ok {
		k = "log." + rest
	}
	if k == "migration_extensions" {
		var exts []string
		for _, e := range strings.Split(value, ",") {
			if e = strings.TrimSpace(e); e != "" {
				exts = append(exts, e)
			}
		}
		return k, exts
	}
	return k, value
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // config path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return errors.New("root must not be empty")
	}
	if strings.TrimSpace(c.MigrationsDir) == "" {
		return errors.New("migrations_dir must not be empty")
	}
	if strings.TrimSpace(c.Lockfile) == "" {
		return errors.New("lockfile must not be empty")
	}
	if _, err := render.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid workers: %d (must be at least 1)", c.Workers)
	}
	return nil
}

// ProberOptions returns the artifact lookup options described by c.
func (c *Config) ProberOptions() artifact.Options {
	return artifact.Options{
		MigrationsDir:       c.MigrationsDir,
		MigrationExtensions: c.MigrationExtensions,
		Lockfile:            c.Lockfile,
	}
}
