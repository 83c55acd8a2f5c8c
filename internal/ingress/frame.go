// Package ingress implements §4.K: the length-prefixed JSON IPC protocol a
// short-lived helper process (e.g. a browser extension's native messaging
// host) uses to push context frames into Kodex, plus the parent-liveness
// watchdog that keeps that helper process from outliving its caller.
// Grounded in original_source/src/kodex_py/native_messaging.py's
// _read_message/_write_message framing and watchdog thread.
package ingress

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxFrameSize rejects any frame whose declared length exceeds 1 MiB (§4.K
// step 1).
const maxFrameSize = 1 << 20

// ErrFrameTooLarge is returned by ReadFrame when the declared length prefix
// exceeds maxFrameSize. The caller treats this the same as EOF: the
// connection is no longer trustworthy and the loop should stop.
var ErrFrameTooLarge = errors.New("ingress: frame exceeds 1 MiB limit")

// ReadFrame reads one little-endian-length-prefixed JSON frame from r.
// Returns io.EOF itself (unwrapped) on a clean end of stream or a truncated
// length prefix, matching the protocol's shutdown-on-EOF contract.
func ReadFrame(r io.Reader) (map[string]interface{}, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])

	if n == 0 {
		return map[string]interface{}{}, nil
	}
	if n > maxFrameSize {
		// Drain so a well-behaved peer waiting for our next read doesn't
		// block forever, then report the oversized frame.
		io.CopyN(io.Discard, r, int64(n))
		return nil, ErrFrameTooLarge
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("ingress: short read: %w", err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(buf, &payload); err != nil {
		return nil, fmt.Errorf("ingress: decoding frame: %w", err)
	}
	return payload, nil
}

// WriteFrame writes payload as one little-endian-length-prefixed JSON frame
// to w.
func WriteFrame(w io.Writer, payload interface{}) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ingress: encoding frame: %w", err)
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(encoded)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := w.Write(encoded); err != nil {
		return err
	}
	return nil
}
