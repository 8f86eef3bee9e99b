// SPDX-License-Identifier: MPL-2.0

// Package watch re-evaluates config files when they change.
//
// A Watcher monitors explicit files and doublestar glob patterns under a base
// directory. Filesystem events are coalesced over a debounce window and the
// callback receives the sorted set of changed paths once the window closes.
// Callbacks run on the Run goroutine, so they never overlap.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is unset.
// Editors commonly write a temp file and rename it; both events fall inside it.
const DefaultDebounce = 300 * time.Millisecond

// defaultIgnores are never reported, whatever the patterns say.
var defaultIgnores = []string{
	"**/.git/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
	"**/*.tmp",
	// Atomic writes from cfgstore.
	"**/.*.tmp-*",
}

var (
	// ErrNothingToWatch is returned when neither files nor patterns are given.
	ErrNothingToWatch = errors.New("nothing to watch")
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watcher already running")
	// ErrWatchLost is returned by Run when the OS stops delivering events,
	// typically after a watch or descriptor limit is reached.
	ErrWatchLost = errors.New("file watch lost")
)

type (
	// Options configures a Watcher.
	Options struct {
		// Files are watched individually; their parent directories are
		// registered non-recursively.
		Files []string
		// Patterns are doublestar globs relative to BaseDir, e.g. "**/*.yaml".
		// Every directory under BaseDir is registered when set.
		Patterns []string
		// Ignore adds to the built-in ignore globs.
		Ignore []string
		// BaseDir anchors Patterns and the reported relative paths. Defaults to
		// the working directory.
		BaseDir string
		// Debounce is the quiet period after the last event. Zero means
		// DefaultDebounce.
		Debounce time.Duration
		// OnChange receives paths relative to BaseDir. A returned error is
		// logged and watching continues.
		OnChange func(ctx context.Context, changed []string) error
	}

	// Watcher reports debounced changes to config files.
	Watcher struct {
		opts    Options
		fsw     *fsnotify.Watcher
		baseDir string
		files   map[string]struct{}
		ignores []string
		started atomic.Bool
	}
)

// New validates opts and registers the directories to monitor.
func New(opts Options) (*Watcher, error) {
	if len(opts.Files) == 0 && len(opts.Patterns) == 0 {
		return nil, ErrNothingToWatch
	}
	if err := validatePatterns(opts.Patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(opts.Ignore, "ignore"); err != nil {
		return nil, err
	}

	baseDir := opts.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		baseDir = wd
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		opts:    opts,
		fsw:     fsw,
		baseDir: absBase,
		files:   make(map[string]struct{}, len(opts.Files)),
		ignores: slices.Concat(defaultIgnores, opts.Ignore),
	}
	if err := w.register(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			slog.Warn("watch: close after init failure", "error", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is canceled, which returns nil. Fatal
// watcher errors are returned. Run may be called once.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			slog.Warn("watch: close fsnotify", "error", err)
		}
	}()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}
			rel, ok := w.relevant(evt.Name)
			if !ok {
				continue
			}
			slog.Debug("watch: change", "path", rel, "op", evt.Op.String())
			pending[rel] = struct{}{}
			timer.Reset(w.opts.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			if w.opts.OnChange == nil {
				continue
			}
			if err := w.opts.OnChange(ctx, changed); err != nil {
				slog.Error("watch: re-evaluation failed", "changed", changed, "error", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if watchLost(err) {
				return fmt.Errorf("%w: %w", ErrWatchLost, err)
			}
			slog.Warn("watch: fsnotify error", "error", err)
		}
	}
}

// register adds the parent directory of every file and, with patterns, every
// non-ignored directory under the base directory.
func (w *Watcher) register() error {
	dirs := make(map[string]struct{})
	for _, f := range w.opts.Files {
		abs := f
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(w.baseDir, f)
		}
		abs = filepath.Clean(abs)
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for _, dir := range slices.Sorted(maps.Keys(dirs)) {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", dir, err)
		}
	}
	if len(w.opts.Patterns) == 0 {
		return nil
	}

	err := filepath.WalkDir(w.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			slog.Warn("watch: skipping inaccessible path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignoredDir(path) {
			return filepath.SkipDir
		}
		if _, seen := dirs[path]; seen {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk directory tree: %w", err)
	}
	return nil
}

// maybeAddDir extends a pattern watch to directories created after startup.
func (w *Watcher) maybeAddDir(path string) {
	if len(w.opts.Patterns) == 0 {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.ignoredDir(path) {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		slog.Warn("watch: add new directory", "path", path, "error", err)
	}
}

// relevant reports whether an event path should be delivered and returns it
// relative to the base directory.
func (w *Watcher) relevant(path string) (string, bool) {
	abs := filepath.Clean(path)
	rel, err := filepath.Rel(w.baseDir, abs)
	if err != nil {
		rel = abs
	}
	rel = filepath.ToSlash(rel)
	if matchAny(w.ignores, rel) {
		return "", false
	}
	if _, ok := w.files[abs]; ok {
		return rel, true
	}
	return rel, matchAny(w.opts.Patterns, rel)
}

func (w *Watcher) ignoredDir(path string) bool {
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	return matchAny(w.ignores, rel) || matchAny(w.ignores, rel+"/")
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore globs.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q: %w", label, pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}

// watchLost reports whether err leaves the OS watch unusable.
func watchLost(err error) bool {
	return slices.ContainsFunc(lostWatchErrnos, func(errno syscall.Errno) bool {
		return errors.Is(err, errno)
	})
}
