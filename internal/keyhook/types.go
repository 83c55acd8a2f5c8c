// Package keyhook defines the OS keyboard/mouse hooking capability and the
// monitor that bridges raw input events into the §4.E matcher. Grounded in
// original_source/src/kodex_py/engine/input_monitor.py; the Provider
// interface shape follows the teacher's internal/providers capability
// interface (ID/IsAvailable-style pluggable backends selected by platform).
package keyhook

// EventType distinguishes the three raw input signals the monitor cares
// about.
type EventType int

const (
	EventKeyPress EventType = iota
	EventKeyRelease
	EventMouseClick
)

// Key names the non-printable keys the monitor treats specially. Printable
// characters are carried in Event.Rune instead, mirroring pynput's
// char-vs-named-key split.
type Key int

const (
	KeyNone Key = iota
	KeyEnter
	KeyTab
	KeySpace
	KeyBackspace
	KeyEscape
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyDelete
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyShift
	KeyCtrl
	KeyAlt
	KeyMeta
)

// resetKeys mirrors the Python monitor's _RESET_KEYS: keys that indicate the
// caret moved away from where the buffer thinks it is, so the buffer must be
// dropped.
var resetKeys = map[Key]bool{
	KeyEscape: true, KeyLeft: true, KeyRight: true, KeyUp: true, KeyDown: true,
	KeyHome: true, KeyEnd: true, KeyPageUp: true, KeyPageDown: true, KeyDelete: true,
	KeyF1: true, KeyF2: true, KeyF3: true, KeyF4: true, KeyF5: true, KeyF6: true,
	KeyF7: true, KeyF8: true, KeyF9: true, KeyF10: true, KeyF11: true, KeyF12: true,
}

// modifierKeys are ignored outright: they neither feed nor reset the buffer.
var modifierKeys = map[Key]bool{
	KeyShift: true, KeyCtrl: true, KeyAlt: true, KeyMeta: true,
}

// Event is one raw input signal delivered by a Provider.
type Event struct {
	Type EventType
	Key  Key
	Rune rune // valid when Key == KeyNone and Type == EventKeyPress
}

// Provider is the platform capability interface for global keyboard/mouse
// hooking. Exactly one concrete implementation is active per process,
// selected at build time (Linux evdev) or falling back to Noop when the
// platform isn't supported or during tests.
type Provider interface {
	// Start begins delivering Events to handler on an internal goroutine
	// until Stop is called. handler must not block.
	Start(handler func(Event)) error
	// Stop halts delivery and releases any OS resources.
	Stop() error
}
