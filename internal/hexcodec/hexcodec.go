// Package hexcodec implements the reversible per-codepoint hex encoding used
// by the legacy .kodex bundle trigger banks.
package hexcodec

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Encode converts s into two uppercase hex digits per byte, big-endian,
// one codepoint at a time. Codepoints above 0xFF are truncated to their low
// byte and logged; the result will not round-trip through Decode.
func Encode(log *zap.SugaredLogger, s string) string {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		v := uint32(r)
		if v > 0xFF {
			if log != nil {
				log.Warnw("hex codec: codepoint exceeds single byte, truncating", "codepoint", v, "name", s)
			}
			v &= 0xFF
		}
		fmt.Fprintf(&b, "%02X", v)
	}
	return b.String()
}

// Decode reverses Encode for inputs produced from byte-range codepoints. An
// odd-length or non-hex input is an error.
func Decode(s string) (string, error) {
	if len(s)%2 != 0 {
		return "", fmt.Errorf("hexcodec: odd-length input %q", s)
	}
	var b strings.Builder
	b.Grow(len(s) / 2)
	for i := 0; i < len(s); i += 2 {
		v, err := strconv.ParseUint(s[i:i+2], 16, 8)
		if err != nil {
			return "", fmt.Errorf("hexcodec: invalid hex pair %q: %w", s[i:i+2], err)
		}
		b.WriteByte(byte(v))
	}
	return b.String(), nil
}
