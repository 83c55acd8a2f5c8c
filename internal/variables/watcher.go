package variables

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// pollFloor is the minimum interval between polling passes over watched
// files, independent of fsnotify events firing. §5 requires context/globals
// changes to surface within 2s even on filesystems where fsnotify is
// unreliable (network mounts, some containers).
const pollFloor = 2 * time.Second

// Watcher keeps Globals and Contexts live as their backing files change,
// combining fsnotify events with a poll-floor fallback -- the same
// belt-and-suspenders approach the ingress uses for its own watchdog.
type Watcher struct {
	log      *zap.SugaredLogger
	globals  *Globals
	contexts *Contexts
	dir      string

	mu        sync.Mutex
	callbacks []func()

	stop chan struct{}
	done chan struct{}
}

// NewWatcher builds a watcher over globalsPath and every known source's
// context file under contextDir.
func NewWatcher(log *zap.SugaredLogger, globals *Globals, contexts *Contexts, globalsPath, contextDir string) (*Watcher, error) {
	w := &Watcher{
		log:      log,
		globals:  globals,
		contexts: contexts,
		dir:      contextDir,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	return w, nil
}

// OnChange registers a callback invoked after any reload.
func (w *Watcher) OnChange(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

func (w *Watcher) notify() {
	w.mu.Lock()
	cbs := append([]func(){}, w.callbacks...)
	w.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

// Run watches until Stop is called. Intended to be run in its own goroutine.
func (w *Watcher) Run(globalsPath string) {
	defer close(w.done)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Warnw("fsnotify unavailable, falling back to polling only", "error", err)
		w.pollLoop(globalsPath, nil)
		return
	}
	defer fsw.Close()

	watchPath := func(p string) {
		if err := fsw.Add(filepath.Dir(p)); err != nil {
			w.log.Debugw("watch dir failed", "path", p, "error", err)
		}
	}
	watchPath(globalsPath)
	watchPath(w.dir)

	w.pollLoop(globalsPath, fsw.Events)
}

func (w *Watcher) pollLoop(globalsPath string, events <-chan fsnotify.Event) {
	mtimes := make(map[string]time.Time)
	check := func() {
		changed := w.checkFile(globalsPath, mtimes, w.reloadGlobals)
		for _, src := range KnownSources {
			p := w.contexts.pathFor(src)
			if w.checkFile(p, mtimes, w.reloadContextFor(src)) {
				changed = true
			}
		}
		if changed {
			w.notify()
		}
	}

	check()
	ticker := time.NewTicker(pollFloor)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			check()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				check()
			}
		}
	}
}

// checkFile stats path, compares against the cached mtime, and invokes
// onChange when the mtime moved (including first-seen and disappearance).
// Returns whether anything changed.
func (w *Watcher) checkFile(path string, mtimes map[string]time.Time, onChange func()) bool {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if _, existed := mtimes[path]; existed {
				delete(mtimes, path)
				onChange()
				return true
			}
		}
		return false
	}
	prev, seen := mtimes[path]
	if !seen || info.ModTime().After(prev) {
		mtimes[path] = info.ModTime()
		onChange()
		return true
	}
	return false
}

func (w *Watcher) reloadGlobals() {
	if err := w.globals.Reload(); err != nil {
		if os.IsNotExist(err) {
			w.globals.Clear()
			return
		}
		w.log.Warnw("reloading global variables failed", "error", err)
	}
}

func (w *Watcher) reloadContextFor(src Source) func() {
	return func() {
		if err := w.contexts.Reload(src); err != nil {
			w.log.Warnw("reloading source context failed", "source", src, "error", err)
		}
	}
}

// Stop halts the watcher goroutine and waits for it to exit.
func (w *Watcher) Stop() {
	close(w.stop)
	<-w.done
}
