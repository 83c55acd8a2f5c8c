//go:build linux

package keyhook

// DefaultProvider selects this platform's real input-hooking backend.
func DefaultProvider() (Provider, error) {
	return NewEvdevProvider()
}
