package ingress

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func TestWriteFrameThenReadFrameRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	payload := map[string]interface{}{"source": "chrome", "ticket_number": "1234"}
	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if got["source"] != "chrome" || got["ticket_number"] != "1234" {
		t.Fatalf("got %+v", got)
	}
}

func TestReadFrameEmptyPayloadIsPing(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, map[string]interface{}{}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty payload, got %+v", got)
	}
}

func TestReadFrameCleanEOFReturnsIOEOF(t *testing.T) {
	_, err := ReadFrame(&bytes.Buffer{})
	if err != io.EOF {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}

func TestReadFrameRejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	var lenPrefix [4]byte
	binary.LittleEndian.PutUint32(lenPrefix[:], maxFrameSize+1)
	buf.Write(lenPrefix[:])
	buf.Write(make([]byte, maxFrameSize+1))

	_, err := ReadFrame(&buf)
	if err != ErrFrameTooLarge {
		t.Fatalf("err = %v, want ErrFrameTooLarge", err)
	}
}
