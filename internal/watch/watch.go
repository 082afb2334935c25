// Package watch reruns a callback when Go sources change.
//
// Every directory under the root is watched. Events are filtered through
// doublestar patterns and coalesced until the tree has been quiet for the
// debounce period. Callbacks run on the goroutine that called Run, one at a
// time.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// DefaultPatterns select the files that trigger a rerun.
var DefaultPatterns = []string{"**/*.go", "**/go.mod", "**/shadow.yaml"}

var defaultIgnores = []string{
	"**/.git/**",
	"**/.*.swp",
	"**/*~",
}

// Config configures a Watcher.
type Config struct {
	// Dir is the root of the watched tree. Empty means the current directory.
	Dir string

	// Patterns select the files that trigger OnChange, relative to Dir.
	// Default: DefaultPatterns
	Patterns []string

	// Ignore excludes files and directories. Generated output belongs here so
	// that writing it does not trigger another run.
	Ignore []string

	// Debounce is the quiet period after the last event.
	Debounce time.Duration

	// OnChange receives the sorted changed paths, relative to Dir.
	OnChange func(ctx context.Context, changed []string) error

	// Logger reports watch errors. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Watcher watches a directory tree.
type Watcher struct {
	cfg      Config
	root     string
	patterns []string
	ignores  []string
	debounce time.Duration
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
}

// New creates a Watcher and registers every directory under cfg.Dir.
func New(cfg Config) (*Watcher, error) {
	root := cfg.Dir
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}

	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	ignores := append(append([]string{}, defaultIgnores...), cfg.Ignore...)
	for _, p := range append(append([]string{}, patterns...), ignores...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid watch pattern %q", p)
		}
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		root:     root,
		patterns: patterns,
		ignores:  ignores,
		debounce: debounce,
		logger:   logger,
		fsw:      fsw,
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the underlying watcher. It is called by Run.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run processes events until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			rel, ok := w.relative(evt.Name)
			if !ok || w.Ignored(rel) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
					if err := w.addTree(evt.Name); err != nil {
						w.logger.Warn("failed to watch new directory", slog.String("dir", rel), slog.Any("error", err))
					}
					continue
				}
			}
			if !w.Matches(rel) {
				continue
			}
			pending[rel] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			w.logger.Warn("watch error", slog.Any("error", err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			if w.cfg.OnChange != nil {
				if err := w.cfg.OnChange(ctx, changed); err != nil {
					w.logger.Error("rerun failed", slog.Any("error", err))
				}
			}
		}
	}
}

// Matches reports whether rel, relative to the root, triggers a rerun.
func (w *Watcher) Matches(rel string) bool {
	return matchAny(w.patterns, rel) && !w.Ignored(rel)
}

// Ignored reports whether rel, relative to the root, is excluded.
func (w *Watcher) Ignored(rel string) bool {
	return matchAny(w.ignores, rel) || matchAny(w.ignores, rel+"/")
}

func matchAny(patterns []string, rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (w *Watcher) relative(name string) (string, bool) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("skipping unreadable path", slog.String("path", path), slog.Any("error", err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := w.relative(path); ok && rel != "." && w.Ignored(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
