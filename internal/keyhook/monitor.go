package keyhook

import (
	"sync"

	"go.uber.org/zap"

	"github.com/anthropics/kodex/internal/matcher"
)

// triggerKeys maps the three trigger keys the matcher cares about to their
// matcher.Trigger counterpart. Backspace, reset keys, and modifiers are
// handled separately below.
var triggerKeys = map[Key]matcher.Trigger{
	KeyEnter: matcher.TriggerEnter,
	KeyTab:   matcher.TriggerTab,
	KeySpace: matcher.TriggerSpace,
}

// OnMatch is invoked whenever the matcher recognizes a hotstring. trigger is
// the finalizing key, or nil when an Instant-triggered hotstring matched
// mid-stream (no trigger key involved).
type OnMatch func(m *matcher.Match, trigger *matcher.Trigger)

// Monitor bridges a Provider's raw events into a matcher.Matcher, replaying
// the Python original's reset/backspace/trigger handling (see
// original_source/src/kodex_py/engine/input_monitor.py).
type Monitor struct {
	provider Provider
	matcher  *matcher.Matcher
	onMatch  OnMatch
	log      *zap.SugaredLogger

	mu       sync.Mutex
	disabled bool
}

// NewMonitor wires provider's events into matcher, invoking onMatch on every
// recognized hotstring.
func NewMonitor(provider Provider, m *matcher.Matcher, onMatch OnMatch, log *zap.SugaredLogger) *Monitor {
	return &Monitor{provider: provider, matcher: m, onMatch: onMatch, log: log}
}

// Start begins delivering input to the matcher.
func (mon *Monitor) Start() error {
	if err := mon.provider.Start(mon.handle); err != nil {
		return err
	}
	if mon.log != nil {
		mon.log.Info("input monitor started")
	}
	return nil
}

// Stop halts input delivery.
func (mon *Monitor) Stop() error {
	err := mon.provider.Stop()
	if mon.log != nil {
		mon.log.Info("input monitor stopped")
	}
	return err
}

// SetDisabled mirrors the Python `disabled` property: disabling also resets
// the buffer so re-enabling starts clean.
func (mon *Monitor) SetDisabled(v bool) {
	mon.mu.Lock()
	mon.disabled = v
	mon.mu.Unlock()
	if v {
		mon.matcher.Reset()
	}
}

func (mon *Monitor) isDisabled() bool {
	mon.mu.Lock()
	defer mon.mu.Unlock()
	return mon.disabled
}

func (mon *Monitor) handle(ev Event) {
	if mon.isDisabled() {
		return
	}

	switch ev.Type {
	case EventMouseClick:
		mon.matcher.Reset()
		return
	case EventKeyRelease:
		return
	}

	if trig, ok := triggerKeys[ev.Key]; ok {
		if m := mon.matcher.CheckTriggered(trig); m != nil {
			mon.fire(m, &trig)
		}
		return
	}

	if resetKeys[ev.Key] {
		mon.matcher.Reset()
		return
	}

	if modifierKeys[ev.Key] {
		return
	}

	if ev.Key == KeyBackspace {
		mon.rebuildMinusLastChar()
		return
	}

	if ev.Key == KeyNone && ev.Rune != 0 {
		if m := mon.matcher.Feed(ev.Rune); m != nil {
			mon.fire(m, nil)
		}
	}
}

// rebuildMinusLastChar replays the buffer minus its last rune through a
// fresh Reset+Feed pass. The Python original calls this "hacky but
// effective" since the matcher has no native backspace primitive.
func (mon *Monitor) rebuildMinusLastChar() {
	buf := []rune(mon.matcher.Buffer())
	if len(buf) == 0 {
		return
	}
	buf = buf[:len(buf)-1]
	mon.matcher.Reset()
	for _, ch := range buf {
		mon.matcher.Feed(ch)
	}
}

func (mon *Monitor) fire(m *matcher.Match, trigger *matcher.Trigger) {
	if mon.onMatch != nil {
		mon.onMatch(m, trigger)
	}
}
