package ingress

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/anthropics/kodex/internal/ledger"
)

type fakeLedger struct {
	calls []ledger.IngestPayload
	err   error
}

func (f *fakeLedger) Ingest(p ledger.IngestPayload) error {
	f.calls = append(f.calls, p)
	return f.err
}

func newTestHandler(t *testing.T) (*Handler, *fakeLedger, string) {
	t.Helper()
	dir := t.TempDir()
	fl := &fakeLedger{}
	h := &Handler{
		ContextDir: dir,
		Ledger:     fl,
		Log:        zap.NewNop().Sugar(),
		now:        func() time.Time { return time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC) },
	}
	return h, fl, dir
}

func TestHandleEmptyFrameIsPong(t *testing.T) {
	h, _, _ := newTestHandler(t)
	resp := h.Handle(map[string]interface{}{})
	if !resp.Success || !resp.Pong {
		t.Fatalf("resp = %+v, want pong", resp)
	}
}

func TestHandleWritesContextFileStrippingUnderscoreKeysAndStampingUpdatedAt(t *testing.T) {
	h, _, dir := newTestHandler(t)
	resp := h.Handle(map[string]interface{}{
		"source":        "chrome",
		"ticket_number": "1234",
		"url":           "https://example.com",
		"_internal":     "drop me",
	})
	if !resp.Success {
		t.Fatalf("resp = %+v, want success", resp)
	}

	path := filepath.Join(dir, "chrome_context.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading context file: %v", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, present := fields["_internal"]; present {
		t.Fatalf("expected leading-underscore key stripped, got %+v", fields)
	}
	if fields["url"] != "https://example.com" {
		t.Fatalf("fields = %+v", fields)
	}
	if fields["_updated_at"] != "2026-07-31T12:00:00Z" {
		t.Fatalf("_updated_at = %v", fields["_updated_at"])
	}
}

func TestHandleForwardsToLedger(t *testing.T) {
	h, fl, _ := newTestHandler(t)
	h.Handle(map[string]interface{}{"source": "terminal", "ticket_number": "5678"})
	if len(fl.calls) != 1 {
		t.Fatalf("ledger calls = %d, want 1", len(fl.calls))
	}
	if fl.calls[0].Source != "terminal" || fl.calls[0].TicketNumber != "5678" {
		t.Fatalf("call = %+v", fl.calls[0])
	}
}

func TestHandleTicketNumberAcceptsJSONNumber(t *testing.T) {
	h, fl, _ := newTestHandler(t)
	h.Handle(map[string]interface{}{"source": "terminal", "ticket_number": float64(42)})
	if fl.calls[0].TicketNumber != "42" {
		t.Fatalf("ticket = %q, want 42", fl.calls[0].TicketNumber)
	}
}

// TestHandleReportsFailureWhenLedgerIngestErrors matches the original's
// run() contract: the context file and the time-tracking update are one
// unit of work, so a ledger failure fails the whole reply.
func TestHandleReportsFailureWhenLedgerIngestErrors(t *testing.T) {
	h, fl, _ := newTestHandler(t)
	fl.err = errors.New("ledger: disk full")

	resp := h.Handle(map[string]interface{}{"source": "terminal"})
	if resp.Success {
		t.Fatal("expected Success=false when ledger ingest fails")
	}
	if resp.Error == "" {
		t.Fatal("expected an error message")
	}
}

func TestRunProcessesMultipleFramesUntilEOF(t *testing.T) {
	h, fl, _ := newTestHandler(t)
	var in bytes.Buffer
	if err := WriteFrame(&in, map[string]interface{}{"source": "a", "ticket_number": "1"}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := WriteFrame(&in, map[string]interface{}{"source": "b", "ticket_number": "2"}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	var out bytes.Buffer
	if err := Run(&in, &out, h); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(fl.calls) != 2 {
		t.Fatalf("ledger calls = %d, want 2", len(fl.calls))
	}

	first, err := ReadFrame(&out)
	if err != nil {
		t.Fatalf("ReadFrame first reply: %v", err)
	}
	if first["success"] != true || first["source"] != "a" {
		t.Fatalf("first reply = %+v", first)
	}
	second, err := ReadFrame(&out)
	if err != nil {
		t.Fatalf("ReadFrame second reply: %v", err)
	}
	if second["source"] != "b" {
		t.Fatalf("second reply = %+v", second)
	}
}

func TestRunStopsOnOversizedFrame(t *testing.T) {
	h, _, _ := newTestHandler(t)
	var in bytes.Buffer
	var lenPrefix [4]byte
	for i := range lenPrefix {
		lenPrefix[i] = 0xff
	}
	in.Write(lenPrefix[:])

	var out bytes.Buffer
	err := Run(&in, &out, h)
	if err != ErrFrameTooLarge {
		t.Fatalf("err = %v, want ErrFrameTooLarge", err)
	}
}
