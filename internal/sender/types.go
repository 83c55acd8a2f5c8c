// Package sender implements the §4.G text-injection primitives: typing
// characters directly, erasing via backspace, pasting via the clipboard,
// and repositioning the caret for %cursor%. Grounded in
// original_source/src/kodex_py/engine/sender.py.
package sender

// KeyCode names the handful of keys the sender needs to synthesize.
// Printable characters go through TypeRune instead of a KeyCode.
type KeyCode int

const (
	KeyBackspace KeyCode = iota
	KeyLeft
	KeyCtrl
	KeyV
)

// KeySender is the platform capability for synthesizing key events. A
// concrete implementation owns an OS-level virtual input device (uinput on
// Linux); tests use a recording fake.
type KeySender interface {
	PressKey(k KeyCode) error
	ReleaseKey(k KeyCode) error
	TypeRune(r rune) error
}

// Clipboard abstracts the system clipboard, matching
// internal/variables.Clipboard's read side plus a write side for paste mode.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(s string) error
}
