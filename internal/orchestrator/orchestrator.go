// Package orchestrator implements §4.J: the process that owns every other
// component's lifecycle (store, resolver, ledger, watcher, monitor,
// executor), wires the monitor's match callback into the executor, and
// tears everything down on a shutdown signal. Grounded in the teacher's
// core.Engine construction/shutdown shape and its ModuleManager.Emit
// dispatch idiom (internal/core/modules.go), adapted to Kodex's single
// match-callback rather than a multi-hook event bus.
package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gofrs/flock"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/anthropics/kodex/internal/atomicfile"
	"github.com/anthropics/kodex/internal/executor"
	"github.com/anthropics/kodex/internal/keyhook"
	"github.com/anthropics/kodex/internal/ledger"
	"github.com/anthropics/kodex/internal/matcher"
	"github.com/anthropics/kodex/internal/sender"
	"github.com/anthropics/kodex/internal/store"
	"github.com/anthropics/kodex/internal/variables"
)

// Paths collects every file/directory the orchestrator's components touch,
// all rooted under one data directory.
type Paths struct {
	DataDir      string // e.g. ~/.kodex
	DocumentsDir string // CSV export target for §4.I
}

func (p Paths) dbPath() string         { return filepath.Join(p.DataDir, "kodex.db") }
func (p Paths) globalsPath() string    { return filepath.Join(p.DataDir, "global_variables.json") }
func (p Paths) contextsDir() string    { return filepath.Join(p.DataDir, "contexts") }
func (p Paths) ledgerPath() string     { return filepath.Join(p.DataDir, "time_tracking.json") }
func (p Paths) archiveDir() string     { return filepath.Join(p.DataDir, "archive") }
func (p Paths) pidPath() string        { return filepath.Join(p.DataDir, "kodex.pid") }
func (p Paths) dataLockPath() string   { return filepath.Join(p.DataDir, "kodex.lock") }

// Options configures Open. Provider/KeySender/Clipboard default to the
// build's platform backend (keyhook.DefaultProvider, sender.DefaultKeySender,
// sender.SystemClipboard) when nil, and to fakes in tests.
type Options struct {
	Paths
	Log       *zap.SugaredLogger
	Provider  keyhook.Provider
	KeySender sender.KeySender
	Clipboard sender.Clipboard
}

// Orchestrator owns every long-lived component and the goroutines that keep
// them live.
type Orchestrator struct {
	log   *zap.SugaredLogger
	paths Paths

	store    *store.Store
	globals  *variables.Globals
	contexts *variables.Contexts
	resolver *variables.Resolver
	watcher  *variables.Watcher
	ledger   *ledger.Ledger
	schedule *ledger.Scheduler
	matcher  *matcher.Matcher
	monitor  *keyhook.Monitor
	exec     *executor.Executor

	// hotstrings caches recently-matched records by ID so a repeated
	// expansion doesn't round-trip to the Store on every keystroke match.
	// Purged whenever ReloadHotstrings runs, since IDs can be reused after
	// a delete+recreate.
	hotstrings *lru.Cache[int64, *store.Hotstring]

	// DataLock is the kodex.lock file lock, held while the pid file is
	// written. Globals and context file writes do not take it, and the
	// ledger uses its own lock file.
	DataLock *flock.Flock

	mu sync.Mutex // guards matcher rebuilds
}

// Open constructs every component (the store starts its own hot-reload poll)
// but does not start the watcher, scheduler or input monitor -- call Start
// for that.
func Open(opts Options) (*Orchestrator, error) {
	if opts.Log == nil {
		return nil, fmt.Errorf("orchestrator: Log is required")
	}
	for _, dir := range []string{opts.DataDir, opts.contextsDir(), opts.archiveDir(), opts.DocumentsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("orchestrator: creating %s: %w", dir, err)
		}
	}

	hotstrings, err := lru.New[int64, *store.Hotstring](256)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: building hotstring cache: %w", err)
	}

	o := &Orchestrator{
		log:        opts.Log,
		paths:      opts.Paths,
		DataLock:   flock.New(opts.dataLockPath()),
		hotstrings: hotstrings,
	}

	o.store, err = store.Open(o.paths.dbPath(), opts.Log.Named("store"))
	if err != nil {
		return nil, err
	}

	o.globals, err = variables.NewGlobals(o.paths.globalsPath())
	if err != nil {
		o.store.Close()
		return nil, err
	}
	o.contexts = variables.NewContexts(o.paths.contextsDir())

	o.ledger, err = ledger.Open(o.paths.ledgerPath(), o.paths.archiveDir(), opts.DocumentsDir, ledger.Options{
		Log: opts.Log.Named("ledger"),
	})
	if err != nil {
		o.store.Close()
		return nil, err
	}

	clipboard := opts.Clipboard
	if clipboard == nil {
		clipboard = sender.SystemClipboard{}
	}

	o.resolver = &variables.Resolver{
		Globals:        o.globals,
		Contexts:       o.contexts,
		Ledger:         o.ledger,
		Clipboard:      clipboard,
		TimeLongStrict: o.store.GetConfigBool("time_long_strict", false),
	}

	o.watcher, err = variables.NewWatcher(opts.Log.Named("watcher"), o.globals, o.contexts, o.paths.globalsPath(), o.paths.contextsDir())
	if err != nil {
		o.store.Close()
		return nil, err
	}

	keys := opts.KeySender
	if keys == nil {
		keys = senderOrNoop(opts.Log)
	}
	o.exec = &executor.Executor{
		Sender:    &sender.Sender{Keys: keys, Clipboard: clipboard},
		Resolver:  o.resolver,
		PlaySound: func(path string) { opts.Log.Debugw("play sound", "path", path) },
		Log:       opts.Log.Named("executor"),
	}

	o.matcher = matcher.New(false)
	if err := o.ReloadHotstrings(); err != nil {
		o.store.Close()
		return nil, err
	}
	o.store.OnChange(func(string) {
		if err := o.ReloadHotstrings(); err != nil {
			o.log.Warnw("reloading hotstrings after change notification failed", "error", err)
		}
	})

	provider := opts.Provider
	if provider == nil {
		provider, err = keyhook.DefaultProvider()
		if err != nil {
			o.store.Close()
			return nil, fmt.Errorf("orchestrator: selecting input provider: %w", err)
		}
	}
	o.monitor = keyhook.NewMonitor(provider, o.matcher, o.onMatch, opts.Log.Named("monitor"))

	o.schedule = ledger.NewScheduler(o.ledger)

	return o, nil
}

func senderOrNoop(log *zap.SugaredLogger) sender.KeySender {
	keys, err := sender.DefaultKeySender()
	if err != nil {
		log.Warnw("key sender unavailable, expansions will not type", "error", err)
		return sender.NoopKeySender{}
	}
	return keys
}

// ReloadHotstrings fetches the enabled hotstring set and rebuilds the
// matcher atomically. Idempotent; safe to call from the store's OnChange
// hook or an explicit CLI-triggered reload.
func (o *Orchestrator) ReloadHotstrings() error {
	rows, err := o.store.ListHotstrings(0, true)
	if err != nil {
		return fmt.Errorf("orchestrator: listing enabled hotstrings: %w", err)
	}

	entries := make([]matcher.Entry, 0, len(rows))
	for _, h := range rows {
		entries = append(entries, matcher.Entry{
			Name:        h.Name,
			HotstringID: h.ID,
			Triggers:    toMatcherTriggers(h.Triggers),
		})
	}

	o.mu.Lock()
	o.matcher.Rebuild(entries)
	o.mu.Unlock()

	// IDs can be reused after a delete+recreate, so a reload invalidates
	// everything rather than trying to patch individual entries.
	o.hotstrings.Purge()

	o.log.Debugw("reloaded hotstrings", "count", len(entries))
	return nil
}

func toMatcherTriggers(src map[store.TriggerType]bool) map[matcher.Trigger]bool {
	out := make(map[matcher.Trigger]bool, len(src))
	for t, v := range src {
		if !v {
			continue
		}
		switch t {
		case store.TriggerEnter:
			out[matcher.TriggerEnter] = true
		case store.TriggerTab:
			out[matcher.TriggerTab] = true
		case store.TriggerSpace:
			out[matcher.TriggerSpace] = true
		case store.TriggerInstant:
			out[matcher.TriggerInstant] = true
		}
	}
	return out
}

// onMatch is the monitor's match callback: fetch the hotstring, build the
// executor request from config, execute, and update stats (§4.J).
func (o *Orchestrator) onMatch(m *matcher.Match, trigger *matcher.Trigger) {
	h, ok := o.hotstrings.Get(m.HotstringID)
	if !ok {
		var err error
		h, err = o.store.GetHotstring(m.HotstringID)
		if err != nil {
			o.log.Warnw("matched hotstring vanished before execution", "id", m.HotstringID, "error", err)
			return
		}
		o.hotstrings.Add(m.HotstringID, h)
	}

	sendMode := store.SendMode(o.store.GetConfig("send_mode", string(store.SendModeDirect)))
	req := executor.Request{
		Name:        h.Name,
		Replacement: h.Replacement,
		IsScript:    h.IsScript,
		SendMode:    sendMode,
		PlaySound:   o.store.GetConfigBool("play_sound", true),
		TriggerChar: trigger != nil,
		Stats: func(chars int) {
			if err := o.store.IncrementStat("expanded", 1); err != nil {
				o.log.Warnw("incrementing expanded stat failed", "error", err)
			}
			if err := o.store.IncrementStat("chars_saved", int64(chars)); err != nil {
				o.log.Warnw("incrementing chars_saved stat failed", "error", err)
			}
		},
	}
	o.exec.Execute(req)
}

// Start begins the background watcher/scheduler/monitor goroutines and
// writes the pid file.
func (o *Orchestrator) Start() error {
	go o.watcher.Run(o.paths.globalsPath())
	o.schedule.Start()
	if err := o.monitor.Start(); err != nil {
		return fmt.Errorf("orchestrator: starting input monitor: %w", err)
	}
	if err := o.writePID(); err != nil {
		return err
	}
	o.log.Info("orchestrator started")
	return nil
}

func (o *Orchestrator) writePID() error {
	if err := o.DataLock.Lock(); err != nil {
		return fmt.Errorf("orchestrator: locking data dir: %w", err)
	}
	defer o.DataLock.Unlock()
	return atomicfile.Write(o.paths.pidPath(), []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// Stop tears down every component in §4.J's stop order: scheduler, watcher,
// input monitor, then the store.
func (o *Orchestrator) Stop() error {
	o.schedule.Stop()
	o.watcher.Stop()
	if err := o.monitor.Stop(); err != nil {
		o.log.Warnw("stopping input monitor failed", "error", err)
	}
	if err := o.store.Close(); err != nil {
		o.log.Warnw("closing store failed", "error", err)
		return err
	}
	o.log.Info("orchestrator stopped")
	return nil
}

// Store exposes the underlying store for the CLI's CRUD verbs.
func (o *Orchestrator) Store() *store.Store { return o.store }

// Ledger exposes the underlying ledger for the CLI's time-log verb.
func (o *Orchestrator) Ledger() *ledger.Ledger { return o.ledger }
