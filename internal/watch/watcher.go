// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when descriptor files change.
//
// A Watcher monitors a set of roots (descriptor directories or single
// descriptor files) and invokes OnChange once the filesystem has been quiet
// for the debounce period. Events inside the window are coalesced so the
// callback sees the full set of changed paths.
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
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 300 * time.Millisecond

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

// defaultIgnores are never watched inside directory roots.
var defaultIgnores = []string{
	"**/.git/**",
	"**/.git",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.#*",
	"**/.DS_Store",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Roots are the descriptor directories and files to watch. At least
		// one is required and each must exist.
		Roots []string

		// Patterns are doublestar globs, relative to a directory root, that
		// select which files trigger the callback. Empty matches every
		// non-ignored file. File roots always match.
		Patterns []string

		// Ignore extends the built-in ignore patterns.
		Ignore []string

		Debounce time.Duration

		// OnChange receives the sorted, deduplicated changed paths. A nil
		// callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		Logger *slog.Logger
	}

	// Watcher monitors the configured roots. Run may be called once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		roots    []root
		ignores  []string
		debounce time.Duration
		logger   *slog.Logger
		started  atomic.Bool
	}

	root struct {
		path string
		dir  bool
	}
)

// New validates cfg and registers every root with fsnotify. Directory roots
// are watched recursively; a file root is watched through its parent
// directory.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Roots) == 0 {
		return nil, errors.New("watch: no roots to watch")
	}
	if err := validatePatterns(cfg.Patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	roots := make([]root, 0, len(cfg.Roots))
	for _, p := range cfg.Roots {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %q: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("watch: %w", err)
		}
		roots = append(roots, root{path: abs, dir: info.IsDir()})
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		roots:    roots,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		debounce: debounce,
		logger:   logger,
	}
	if err := w.register(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close watcher after init failure", "error", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Watched returns the directories registered with fsnotify, sorted.
func (w *Watcher) Watched() []string {
	list := w.fsw.WatchList()
	slices.Sort(list)
	return list
}

// Run processes events until ctx is cancelled, which returns nil. Resource
// exhaustion reported by fsnotify is fatal; other fsnotify errors are logged.
// While a callback is running, later batches wait for it instead of running
// concurrently.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("previous run still in progress, deferring")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		w.logger.Info("descriptors changed", "files", len(changed))
		if w.cfg.OnChange == nil {
			return
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Error("re-run failed", "error", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}
			if !w.matches(evt.Name) {
				continue
			}
			w.logger.Debug("event", "op", evt.Op.String(), "path", evt.Name)

			mu.Lock()
			pending[filepath.Clean(evt.Name)] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

// register adds every directory root recursively and the parent of every
// file root.
func (w *Watcher) register() error {
	for _, r := range w.roots {
		if !r.dir {
			if err := w.add(filepath.Dir(r.path)); err != nil {
				return err
			}
			continue
		}
		err := filepath.WalkDir(r.path, func(path string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				w.logger.Warn("skipping inaccessible path", "path", path, "error", walkErr)
				return nil //nolint:nilerr // unreadable subtrees are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != r.path && w.ignored(r, path) {
				return filepath.SkipDir
			}
			return w.add(path)
		})
		if err != nil {
			return fmt.Errorf("watch: walk %q: %w", r.path, err)
		}
	}
	return nil
}

func (w *Watcher) add(dir string) error {
	if slices.Contains(w.fsw.WatchList(), dir) {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch: add %q: %w", dir, err)
	}
	return nil
}

// maybeAddDir extends recursive watching to directories created after New.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	r, ok := w.dirRootOf(path)
	if !ok || w.ignored(r, path) {
		return
	}
	if err := w.add(path); err != nil {
		w.logger.Warn("watch new directory", "path", path, "error", err)
	}
}

// matches reports whether an event on path should schedule the callback.
func (w *Watcher) matches(path string) bool {
	clean := filepath.Clean(path)
	for _, r := range w.roots {
		if !r.dir && r.path == clean {
			return true
		}
	}
	r, ok := w.dirRootOf(clean)
	if !ok || w.ignored(r, clean) {
		return false
	}
	if len(w.cfg.Patterns) == 0 {
		return true
	}
	return matchAny(w.cfg.Patterns, relTo(r, clean))
}

// dirRootOf returns the directory root containing path.
func (w *Watcher) dirRootOf(path string) (root, bool) {
	for _, r := range w.roots {
		if !r.dir {
			continue
		}
		rel, err := filepath.Rel(r.path, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return r, true
	}
	return root{}, false
}

func (w *Watcher) ignored(r root, path string) bool {
	return matchAny(w.ignores, relTo(r, path))
}

func relTo(r root, path string) string {
	rel, err := filepath.Rel(r.path, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// PatternsForExtensions returns one recursive glob per file extension,
// e.g. ".yaml" becomes "**/*.yaml".
func PatternsForExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		out = append(out, "**/*"+ext)
	}
	return out
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q", label, pat)
		}
	}
	return nil
}
