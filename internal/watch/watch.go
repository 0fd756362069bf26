// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch triggers a callback whenever a watched project directory
// changes. Bursts of events are coalesced into a single call.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/bartekus/implstatus/internal/projection"
)

// DefaultDebounce is the quiet period required before a change is reported.
const DefaultDebounce = 300 * time.Millisecond

var (
	// ErrWatcherFailed indicates the filesystem watcher could not be created.
	ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

	// ErrNothingToWatch is returned when none of the resolved directories could be watched.
	ErrNothingToWatch = errors.New("no directory could be watched")
)

// Watcher observes the directories returned by a resolver.
type Watcher struct {
	resolve  func() []string
	debounce time.Duration
	log      *zap.Logger
	ignore   func(path string) bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithIgnore drops events for paths matching ignore.
func WithIgnore(ignore func(path string) bool) Option {
	return func(w *Watcher) { w.ignore = ignore }
}

// New creates a Watcher. resolve is called at start and again after every
// change so directories created in the meantime get picked up.
func New(resolve func() []string, debounce time.Duration, log *zap.Logger, opts ...Option) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	w := &Watcher{resolve: resolve, debounce: debounce, log: log.Named("watch")}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// IgnoreOutput matches the report file at output and the temporary files
// written next to it while it is replaced. An empty output matches nothing.
func IgnoreOutput(output string) func(path string) bool {
	if output == "" {
		return func(string) bool { return false }
	}
	target := absPath(output)
	dir := filepath.Dir(target)
	return func(path string) bool {
		p := absPath(path)
		if p == target {
			return true
		}
		if filepath.Dir(p) != dir {
			return false
		}
		ok, _ := filepath.Match(projection.TempPattern, filepath.Base(p))
		return ok
	}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Run blocks until ctx is done, calling onChange once per burst of changes.
// Errors from onChange are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	defer func() { _ = fw.Close() }()

	watched := map[string]bool{}
	if w.sync(fw, watched) == 0 {
		return ErrNothingToWatch
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod || (w.ignore != nil && w.ignore(ev.Name)) {
				continue
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				delete(watched, ev.Name)
			}
			w.log.Debug("change detected", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			w.sync(fw, watched)
			if err := onChange(ctx); err != nil {
				w.log.Error("refresh failed", zap.Error(err))
			}
		}
	}
}

// sync adds newly resolved directories and returns how many are watched.
func (w *Watcher) sync(fw *fsnotify.Watcher, watched map[string]bool) int {
	for _, dir := range w.resolve() {
		if watched[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			w.log.Warn("cannot watch directory", zap.String("path", dir), zap.Error(err))
			continue
		}
		watched[dir] = true
		w.log.Debug("watching", zap.String("path", dir))
	}
	return len(watched)
}
