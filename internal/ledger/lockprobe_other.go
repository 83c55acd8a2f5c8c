//go:build !windows

package ledger

// unsupportedLockProbe always reports unlocked, per §4.I: "on unsupported
// platforms, the probe returns false."
type unsupportedLockProbe struct{}

func (unsupportedLockProbe) IsLocked() bool { return false }

func newPlatformLockProbe() LockProbe { return unsupportedLockProbe{} }
