package ledger

// LockProbe reports whether the workstation is currently locked, per
// §4.I's idle-gating rule. The only supported probe is Windows' input
// desktop check; every other platform always reports unlocked.
type LockProbe interface {
	IsLocked() bool
}

// DefaultLockProbe selects the build's platform-appropriate probe.
func DefaultLockProbe() LockProbe {
	return newPlatformLockProbe()
}
