package sender

// NoopKeySender discards every key event. Used as the orchestrator's
// fallback when the platform's real backend fails to initialize (e.g. no
// permission to open /dev/uinput), so the process still runs -- just
// without typing -- rather than crashing.
type NoopKeySender struct{}

func (NoopKeySender) PressKey(KeyCode) error   { return nil }
func (NoopKeySender) ReleaseKey(KeyCode) error { return nil }
func (NoopKeySender) TypeRune(rune) error      { return nil }
