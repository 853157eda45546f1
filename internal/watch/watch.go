// Package watch rebuilds the site when its sources change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc runs one build. Its error is logged; watching continues.
type RebuildFunc func(ctx context.Context) error

// Watcher triggers rebuilds for changes below a set of directories.
type Watcher struct {
	roots    []string
	debounce time.Duration
	rebuild  RebuildFunc
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New returns a Watcher over roots. Missing roots are skipped at Run time.
func New(roots []string, rebuild RebuildFunc, opts ...Option) *Watcher {
	w := &Watcher{roots: roots, debounce: DefaultDebounce, rebuild: rebuild}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the content root, the static directory and the layout
// directory of cfg until ctx is done.
func Run(ctx context.Context, cfg *config.Config, rebuild RebuildFunc) error {
	return New(Roots(cfg), rebuild).Run(ctx)
}

// Roots lists the directories a build reads from.
func Roots(cfg *config.Config) []string {
	roots := []string{cfg.Content.Root}
	for _, dir := range []string{cfg.Content.StaticDir, cfg.Theme.LayoutDir} {
		if dir != "" {
			roots = append(roots, dir)
		}
	}
	return roots
}

// Run blocks until ctx is done. A rebuild in progress is allowed to observe
// the cancellation before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create file watcher").Build()
	}
	defer func() { _ = fw.Close() }()

	watched := 0
	for _, root := range w.roots {
		if _, statErr := os.Stat(root); statErr != nil {
			slog.Debug("Skipping missing watch root", logfields.Path(root))
			continue
		}
		addDirsRecursive(fw, root)
		watched++
	}
	if watched == 0 {
		return ferrors.FileSystemError("nothing to watch").
			WithContext("roots", strings.Join(w.roots, ", ")).
			Build()
	}

	sched := newScheduler(w.rebuild)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.run(ctx)
	}()
	defer wg.Wait()

	deb := newDebouncer(w.debounce, sched.request)
	defer deb.stop()

	slog.Info("Watching for changes", logfields.Count(watched), slog.Duration("debounce", w.debounce))
	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopped watching")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if handleEvent(fw, ev) {
				deb.trigger()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("File watcher error", logfields.Error(err))
		}
	}
}

// handleEvent reports whether ev should cause a rebuild, and starts
// watching directories created below a root.
func handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ignored(ev.Name) || ev.Op == fsnotify.Chmod {
		return false
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			addDirsRecursive(fw, ev.Name)
		}
	}
	slog.Debug("Change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	return true
}

func addDirsRecursive(fw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && ignored(path) {
			return filepath.SkipDir
		}
		if addErr := fw.Add(path); addErr != nil {
			slog.Warn("Failed to watch directory", logfields.Path(path), logfields.Error(addErr))
		}
		return nil
	})
}

// ignored matches hidden files and editor temporaries.
func ignored(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"),
		strings.HasSuffix(base, ".tmp"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "4913", base == "Thumbs.db":
		// 4913 is vim's write probe.
		return true
	}
	return false
}
