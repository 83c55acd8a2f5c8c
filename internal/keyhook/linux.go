//go:build linux

package keyhook

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

// Linux evdev event codes we care about (linux/input-event-codes.h).
const (
	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02

	relWheel = 8

	btnLeft   = 0x110
	btnRight  = 0x111
	btnMiddle = 0x112
)

const (
	keyEsc        = 1
	keyTabCode    = 15
	keySpaceCode  = 57
	keyEnterCode  = 28
	keyBackspace  = 14
	keyLeftShift  = 42
	keyRightShift = 54
	keyLeftCtrl   = 29
	keyRightCtrl  = 97
	keyLeftAlt    = 56
	keyRightAlt   = 100
	keyLeftMeta   = 125
	keyRightMeta  = 126
	keyUp         = 103
	keyDown       = 108
	keyLeft       = 105
	keyRight      = 106
	keyHome       = 102
	keyEnd        = 107
	keyPageUp     = 104
	keyPageDown   = 109
	keyDelete     = 111
	keyF1         = 59
	keyF10        = 68
	keyF11        = 87
	keyF12        = 88
)

// namedKeys maps evdev keycodes to our platform-neutral Key enum. Codes not
// present here are either printable (handled via runeTable) or ignored.
var namedKeys = map[uint16]Key{
	keyEnterCode:  KeyEnter,
	keyTabCode:    KeyTab,
	keySpaceCode:  KeySpace,
	keyBackspace:  KeyBackspace,
	keyEsc:        KeyEscape,
	keyLeft:       KeyLeft,
	keyRight:      KeyRight,
	keyUp:         KeyUp,
	keyDown:       KeyDown,
	keyHome:       KeyHome,
	keyEnd:        KeyEnd,
	keyPageUp:     KeyPageUp,
	keyPageDown:   KeyPageDown,
	keyDelete:     KeyDelete,
	keyLeftShift:  KeyShift,
	keyRightShift: KeyShift,
	keyLeftCtrl:   KeyCtrl,
	keyRightCtrl:  KeyCtrl,
	keyLeftAlt:    KeyAlt,
	keyRightAlt:   KeyAlt,
	keyLeftMeta:   KeyMeta,
	keyRightMeta:  KeyMeta,
}

func init() {
	// F1-F10 are contiguous (59-68); F11/F12 sit apart at 87/88.
	for i := uint16(0); i <= keyF10-keyF1; i++ {
		namedKeys[keyF1+i] = Key(int(KeyF1) + int(i))
	}
	namedKeys[keyF11] = KeyF11
	namedKeys[keyF12] = KeyF12
}

// runeTable is a plain US-QWERTY layout for the printable keys, unshifted
// and shifted. Good enough for hotstring matching, which only needs the
// literal characters the user typed, not full IME/dead-key fidelity.
var runeTable = map[uint16][2]rune{
	2: {'1', '!'}, 3: {'2', '@'}, 4: {'3', '#'}, 5: {'4', '$'}, 6: {'5', '%'},
	7: {'6', '^'}, 8: {'7', '&'}, 9: {'8', '*'}, 10: {'9', '('}, 11: {'0', ')'},
	12: {'-', '_'}, 13: {'=', '+'},
	16: {'q', 'Q'}, 17: {'w', 'W'}, 18: {'e', 'E'}, 19: {'r', 'R'}, 20: {'t', 'T'},
	21: {'y', 'Y'}, 22: {'u', 'U'}, 23: {'i', 'I'}, 24: {'o', 'O'}, 25: {'p', 'P'},
	26: {'[', '{'}, 27: {']', '}'},
	30: {'a', 'A'}, 31: {'s', 'S'}, 32: {'d', 'D'}, 33: {'f', 'F'}, 34: {'g', 'G'},
	35: {'h', 'H'}, 36: {'j', 'J'}, 37: {'k', 'K'}, 38: {'l', 'L'},
	39: {';', ':'}, 40: {'\'', '"'}, 43: {'\\', '|'},
	44: {'z', 'Z'}, 45: {'x', 'X'}, 46: {'c', 'C'}, 47: {'v', 'V'}, 48: {'b', 'B'},
	49: {'n', 'N'}, 50: {'m', 'M'},
	51: {',', '<'}, 52: {'.', '>'}, 53: {'/', '?'},
}

// rawEvent mirrors struct input_event from linux/input.h, minus the
// timeval's platform-dependent padding (read and discarded separately).
type rawEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

// EvdevProvider reads global key/mouse events directly from /dev/input/eventN
// device nodes. Requires read access to those nodes (typically the `input`
// group on most distributions).
type EvdevProvider struct {
	mu      sync.Mutex
	fds     []int
	stopCh  chan struct{}
	doneCh  chan struct{}
	shifted bool
}

// NewEvdevProvider discovers all readable /dev/input/event* nodes.
func NewEvdevProvider() (*EvdevProvider, error) {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, fmt.Errorf("keyhook: globbing /dev/input: %w", err)
	}
	var fds []int
	for _, p := range paths {
		fd, err := unix.Open(p, unix.O_RDONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			continue
		}
		fds = append(fds, fd)
	}
	if len(fds) == 0 {
		return nil, fmt.Errorf("keyhook: no readable /dev/input/event* devices (check group membership)")
	}
	return &EvdevProvider{fds: fds}, nil
}

func (p *EvdevProvider) Start(handler func(Event)) error {
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{}, len(p.fds))
	for _, fd := range p.fds {
		go p.readLoop(fd, handler)
	}
	return nil
}

func (p *EvdevProvider) Stop() error {
	if p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
	}
	for range p.fds {
		<-p.doneCh
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, fd := range p.fds {
		unix.Close(fd)
	}
	p.fds = nil
	return nil
}

// input_event on 64-bit Linux is 24 bytes: 16-byte timeval + u16 type +
// u16 code + s32 value.
const inputEventSize = 24

func (p *EvdevProvider) readLoop(fd int, handler func(Event)) {
	defer func() { p.doneCh <- struct{}{} }()
	buf := make([]byte, inputEventSize)
	for {
		select {
		case <-p.stopCh:
			return
		default:
		}
		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				continue
			}
			return
		}
		if n < inputEventSize {
			continue
		}
		ev := rawEvent{
			Type:  binary.LittleEndian.Uint16(buf[16:18]),
			Code:  binary.LittleEndian.Uint16(buf[18:20]),
			Value: int32(binary.LittleEndian.Uint32(buf[20:24])),
		}
		p.dispatch(ev, handler)
	}
}

// dispatch translates one raw evdev event into zero or more Events.
// Value 1 is key-down, 0 is key-up, 2 is autorepeat (treated as a press).
func (p *EvdevProvider) dispatch(ev rawEvent, handler func(Event)) {
	switch ev.Type {
	case evKey:
		switch {
		case ev.Code == btnLeft || ev.Code == btnRight || ev.Code == btnMiddle:
			if ev.Value == 1 {
				handler(Event{Type: EventMouseClick})
			}
			return
		}
		if named, ok := namedKeys[ev.Code]; ok {
			if modifierKeys[named] {
				p.mu.Lock()
				p.shifted = named == KeyShift && ev.Value != 0
				p.mu.Unlock()
			}
			if ev.Value == 0 {
				handler(Event{Type: EventKeyRelease, Key: named})
				return
			}
			handler(Event{Type: EventKeyPress, Key: named})
			return
		}
		if ev.Value == 0 {
			return
		}
		if pair, ok := runeTable[ev.Code]; ok {
			p.mu.Lock()
			shifted := p.shifted
			p.mu.Unlock()
			r := pair[0]
			if shifted {
				r = pair[1]
			}
			handler(Event{Type: EventKeyPress, Rune: r})
		}
	}
}
