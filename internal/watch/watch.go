// Package watch re-runs the audit when files under the project root change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"bytemomo/remora/internal/config"
)

// skipDirs are never watched. They churn constantly and are excluded from
// scans anyway.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".hg":          true,
	".svn":         true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
}

// Watcher debounces filesystem events under the project root and invokes
// the rescan callback once the tree settles.
type Watcher struct {
	cfg      *config.Audit
	debounce time.Duration
	rescan   func(context.Context)
}

func New(cfg *config.Audit, rescan func(context.Context)) *Watcher {
	return &Watcher{cfg: cfg, debounce: 500 * time.Millisecond, rescan: rescan}
}

// Run blocks until the context is cancelled. Every burst of file events
// triggers exactly one rescan after the debounce window. Rescans are
// serialized through a single worker, and Run does not return while one is
// still in flight, so callers may tear down shared sinks afterwards.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addRecursive(fw, w.cfg.Root); err != nil {
		return err
	}
	log.WithField("root", w.cfg.Root).Info("Watching for changes")

	outDir, _ := filepath.Abs(w.cfg.OutputDir)

	// A buffered trigger coalesces debounce firings that land while a
	// rescan is running; the single worker keeps rescans sequential.
	trigger := make(chan struct{}, 1)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case <-trigger:
				select {
				case <-done:
					return
				default:
				}
				log.Info("Change detected, rescanning")
				w.rescan(ctx)
			}
		}
	}()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		close(done)
		wg.Wait()
	}()

	fire := func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.ignored(ev.Name, outDir) {
				continue
			}
			// New directories need explicit registration.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addRecursive(fw, ev.Name)
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, fire)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("Watch error")
		}
	}
}

// ignored filters events from the output directory and the churn-heavy
// trees that scans never look at.
func (w *Watcher) ignored(name, outDir string) bool {
	if abs, err := filepath.Abs(name); err == nil && outDir != "" && strings.HasPrefix(abs, outDir+string(filepath.Separator)) {
		return true
	}
	for _, part := range strings.Split(name, string(filepath.Separator)) {
		if skipDirs[part] {
			return true
		}
	}
	return false
}

func addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if skipDirs[info.Name()] {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}
