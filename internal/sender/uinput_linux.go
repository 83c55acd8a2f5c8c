//go:build linux

package sender

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux uinput ioctl constants and key codes (linux/uinput.h,
// linux/input-event-codes.h) needed to register and drive a virtual
// keyboard device.
const (
	uiSetEvBit  = 0x40045564
	uiSetKeyBit = 0x40045565
	uiDevCreate = 0x5501
	uiDevDestro = 0x5502

	evSyn = 0x00
	evKey = 0x01

	synReport = 0

	codeBackspace = 14
	codeLeft      = 105
	codeLeftCtrl  = 29
	codeV         = 47
)

var runeToKeycode = buildRuneKeycodeTable()

func buildRuneKeycodeTable() map[rune]uint16 {
	// Mirrors keyhook's runeTable inverted: same US-QWERTY assumption.
	pairs := map[uint16][2]rune{
		2: {'1', '!'}, 3: {'2', '@'}, 4: {'3', '#'}, 5: {'4', '$'}, 6: {'5', '%'},
		7: {'6', '^'}, 8: {'7', '&'}, 9: {'8', '*'}, 10: {'9', '('}, 11: {'0', ')'},
		16: {'q', 'Q'}, 17: {'w', 'W'}, 18: {'e', 'E'}, 19: {'r', 'R'}, 20: {'t', 'T'},
		21: {'y', 'Y'}, 22: {'u', 'U'}, 23: {'i', 'I'}, 24: {'o', 'O'}, 25: {'p', 'P'},
		30: {'a', 'A'}, 31: {'s', 'S'}, 32: {'d', 'D'}, 33: {'f', 'F'}, 34: {'g', 'G'},
		35: {'h', 'H'}, 36: {'j', 'J'}, 37: {'k', 'K'}, 38: {'l', 'L'},
		44: {'z', 'Z'}, 45: {'x', 'X'}, 46: {'c', 'C'}, 47: {'v', 'V'}, 48: {'b', 'B'},
		49: {'n', 'N'}, 50: {'m', 'M'}, 57: {' ', ' '},
	}
	out := make(map[rune]uint16, len(pairs)*2)
	for code, pair := range pairs {
		out[pair[0]] = code
		out[pair[1]] = code
	}
	return out
}

type inputID struct {
	BusType uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type uinputSetup struct {
	ID      inputID
	Name    [80]byte
	FFEffectsMax uint32
}

// UinputSender drives a virtual keyboard through /dev/uinput. Requires
// write access to that device node (typically the `input` group).
type UinputSender struct {
	fd int
}

// NewUinputSender opens and registers a virtual keyboard device.
func NewUinputSender() (*UinputSender, error) {
	fd, err := unix.Open("/dev/uinput", unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("sender: opening /dev/uinput: %w", err)
	}
	if err := ioctl(fd, uiSetEvBit, evKey); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("sender: UI_SET_EVBIT: %w", err)
	}
	for _, code := range []uintptr{codeBackspace, codeLeft, codeLeftCtrl, codeV} {
		if err := ioctl(fd, uiSetKeyBit, code); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("sender: UI_SET_KEYBIT %d: %w", code, err)
		}
	}
	for code := uintptr(1); code < 128; code++ {
		ioctl(fd, uiSetKeyBit, code)
	}

	var setup uinputSetup
	copy(setup.Name[:], "kodex-virtual-keyboard")
	setup.ID = inputID{BusType: 0x03, Vendor: 0x1, Product: 0x1, Version: 1}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(0x405c5503 /* UI_DEV_SETUP */), uintptr(unsafe.Pointer(&setup))); errno != 0 {
		unix.Close(fd)
		return nil, fmt.Errorf("sender: UI_DEV_SETUP: %w", errno)
	}
	if err := ioctl(fd, uiDevCreate, 0); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("sender: UI_DEV_CREATE: %w", err)
	}
	return &UinputSender{fd: fd}, nil
}

func ioctl(fd int, req, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

func (s *UinputSender) emit(code uint16, value int32) error {
	if err := s.writeEvent(evKey, code, value); err != nil {
		return err
	}
	return s.writeEvent(evSyn, synReport, 0)
}

func (s *UinputSender) writeEvent(typ, code uint16, value int32) error {
	buf := make([]byte, 24)
	le := func(off int, v uint64, n int) {
		for i := 0; i < n; i++ {
			buf[off+i] = byte(v >> (8 * i))
		}
	}
	le(16, uint64(typ), 2)
	le(18, uint64(code), 2)
	le(20, uint64(uint32(value)), 4)
	_, err := unix.Write(s.fd, buf)
	return err
}

func (s *UinputSender) keycodeFor(k KeyCode) uint16 {
	switch k {
	case KeyBackspace:
		return codeBackspace
	case KeyLeft:
		return codeLeft
	case KeyCtrl:
		return codeLeftCtrl
	case KeyV:
		return codeV
	}
	return 0
}

func (s *UinputSender) PressKey(k KeyCode) error   { return s.emit(s.keycodeFor(k), 1) }
func (s *UinputSender) ReleaseKey(k KeyCode) error { return s.emit(s.keycodeFor(k), 0) }

func (s *UinputSender) TypeRune(r rune) error {
	code, ok := runeToKeycode[r]
	if !ok {
		return fmt.Errorf("sender: no keycode mapping for rune %q", r)
	}
	if err := s.emit(code, 1); err != nil {
		return err
	}
	return s.emit(code, 0)
}

// Close destroys the virtual device and releases the fd.
func (s *UinputSender) Close() error {
	ioctl(s.fd, uiDevDestro, 0)
	return unix.Close(s.fd)
}
