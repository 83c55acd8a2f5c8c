//go:build linux

package sender

// DefaultKeySender selects this platform's real key-injection backend.
func DefaultKeySender() (KeySender, error) {
	return NewUinputSender()
}
