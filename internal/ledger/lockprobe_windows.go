//go:build windows

package ledger

import "golang.org/x/sys/windows"

// windowsLockProbe mirrors the original's ctypes-based check: opening the
// input desktop with the minimum rights fails while the workstation is
// locked (it belongs to Winlogon instead).
type windowsLockProbe struct {
	user32          *windows.LazyDLL
	openInputDesktop *windows.LazyProc
	closeDesktop     *windows.LazyProc
}

const desktopSwitchDesktop = 0x0100

func newPlatformLockProbe() LockProbe {
	user32 := windows.NewLazySystemDLL("user32.dll")
	return &windowsLockProbe{
		user32:           user32,
		openInputDesktop: user32.NewProc("OpenInputDesktop"),
		closeDesktop:     user32.NewProc("CloseDesktop"),
	}
}

func (p *windowsLockProbe) IsLocked() bool {
	hdesk, _, _ := p.openInputDesktop.Call(0, 0, desktopSwitchDesktop)
	if hdesk == 0 {
		return true
	}
	p.closeDesktop.Call(hdesk)
	return false
}
