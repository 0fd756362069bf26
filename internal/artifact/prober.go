// SPDX-License-Identifier: AGPL-3.0-or-later

package artifact

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"
)

const (
	DefaultMigrationsDir = "database/migrations"
	DefaultLockfile      = "composer.lock"
)

// Options controls where the prober looks for migrations and dependencies.
// Paths are relative to the project root.
type Options struct {
	// MigrationsDir is listed non-recursively for migration lookups.
	MigrationsDir string

	// MigrationExtensions restricts migration lookups to entries ending in
	// one of the extensions (e.g. ".php"). Empty means every entry.
	MigrationExtensions []string

	// Lockfile is searched as raw text for dependency lookups.
	Lockfile string
}

// DefaultOptions returns the standard lookup locations.
func DefaultOptions() Options {
	return Options{
		MigrationsDir: DefaultMigrationsDir,
		Lockfile:      DefaultLockfile,
	}
}

// Prober answers whether a described artifact exists under a project root.
// It never caches: every call reflects what is on disk at that moment.
type Prober struct {
	opts Options
	log  *zap.Logger
}

// NewProber creates a prober. A nil logger disables logging.
func NewProber(opts Options, log *zap.Logger) *Prober {
	if opts.MigrationsDir == "" {
		opts.MigrationsDir = DefaultMigrationsDir
	}
	if opts.Lockfile == "" {
		opts.Lockfile = DefaultLockfile
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Prober{opts: opts, log: log.Named("prober")}
}

// Options returns the lookup options in effect.
func (p *Prober) Options() Options {
	return p.opts
}

// Probe reports whether d is present under root. I/O failures are logged and
// count as absent so one unreadable artifact cannot abort a run.
func (p *Prober) Probe(d Descriptor, root string) bool {
	switch d.Kind {
	case KindFile:
		return p.probeFile(root, d.Value)
	case KindMigration:
		return p.probeMigration(root, d.Value)
	case KindDependency:
		return p.probeDependency(root, d.Value)
	default:
		p.log.Warn("unknown artifact kind", zap.String("kind", string(d.Kind)), zap.String("value", d.Value))
		return false
	}
}

func (p *Prober) probeFile(root, relativePath string) bool {
	target := filepath.Join(root, filepath.FromSlash(relativePath))
	if _, err := os.Stat(target); err != nil {
		p.logFailure(err, "stat file artifact", target)
		return false
	}
	return true
}

func (p *Prober) probeMigration(root, fragment string) bool {
	dir := filepath.Join(root, filepath.FromSlash(p.opts.MigrationsDir))
	entries, err := os.ReadDir(dir)
	if err != nil {
		p.logFailure(err, "read migrations directory", dir)
		return false
	}
	for _, e := range entries {
		name := e.Name()
		if !hasExtension(name, p.opts.MigrationExtensions) {
			continue
		}
		if strings.Contains(name, fragment) {
			return true
		}
	}
	return false
}

func (p *Prober) probeDependency(root, packageName string) bool {
	lockfile := filepath.Join(root, filepath.FromSlash(p.opts.Lockfile))
	data, err := os.ReadFile(lockfile) //nolint:gosec // lockfile path comes from tool configuration
	if err != nil {
		p.logFailure(err, "read lockfile", lockfile)
		return false
	}
	// Plain containment: a name that is a substring of another package also matches.
	return strings.Contains(string(data), packageName)
}

// logFailure logs failures that are not a plain "does not exist".
func (p *Prober) logFailure(err error, op, target string) {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return
	}
	p.log.Warn("probe failed, treating artifact as absent",
		zap.String("op", op),
		zap.String("path", target),
		zap.Error(err),
	)
}

func hasExtension(name string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
