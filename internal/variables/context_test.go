package variables

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeContextFile(t *testing.T, dir string, src Source, body string) {
	t.Helper()
	path := filepath.Join(dir, string(src)+"_context.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestContextsLoadAndGet(t *testing.T) {
	dir := t.TempDir()
	writeContextFile(t, dir, SourceFreshdesk, `{"_updated_at":"2026-07-31T10:00:00Z","ticket_id":"4821","requester":"J. Doe"}`)

	c := NewContexts(dir)
	v, ok := c.Get(SourceFreshdesk, "ticket_id")
	if !ok || v != "4821" {
		t.Fatalf("Get ticket_id = %v, %v", v, ok)
	}
	if _, ok := c.Get(SourceFreshdesk, "_updated_at"); ok {
		t.Fatal("underscore-prefixed keys must not be exposed as fields")
	}
}

func TestContextsMostRecentPicksLatest(t *testing.T) {
	dir := t.TempDir()
	writeContextFile(t, dir, SourceFreshdesk, `{"_updated_at":"2026-07-31T09:00:00Z","name":"old"}`)
	writeContextFile(t, dir, SourceCSR, `{"_updated_at":"2026-07-31T10:30:00Z","name":"new"}`)

	c := NewContexts(dir)
	src, ok := c.MostRecent()
	if !ok || src != SourceCSR {
		t.Fatalf("MostRecent = %v, %v, want csr", src, ok)
	}
}

func TestContextsReloadClearsOnDelete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gt3_context.json")
	writeContextFile(t, dir, SourceGT3, `{"_updated_at":"2026-07-31T10:00:00Z","x":"1"}`)

	c := NewContexts(dir)
	if _, ok := c.Get(SourceGT3, "x"); !ok {
		t.Fatal("expected x present after initial load")
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("removing context file: %v", err)
	}
	if err := c.Reload(SourceGT3); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if _, ok := c.Get(SourceGT3, "x"); ok {
		t.Fatal("expected cache cleared after file deletion")
	}
}

func TestContextsMostRecentEmptyWhenNothingLoaded(t *testing.T) {
	dir := t.TempDir()
	c := NewContexts(dir)
	if _, ok := c.MostRecent(); ok {
		t.Fatal("expected MostRecent to report false with no context files present")
	}
}

func TestContextsReloadMalformedUpdatedAtFallsBackToZeroTime(t *testing.T) {
	dir := t.TempDir()
	writeContextFile(t, dir, SourceFreshdesk, `{"_updated_at":"not-a-timestamp","ticket_id":"1"}`)
	c := NewContexts(dir)
	if v, ok := c.Get(SourceFreshdesk, "ticket_id"); !ok || v != "1" {
		t.Fatalf("expected field still readable despite bad timestamp, got %v, %v", v, ok)
	}
	ctx := c.data[SourceFreshdesk]
	if !ctx.updatedAt.Equal(time.Time{}) {
		t.Fatalf("expected zero time for malformed _updated_at, got %v", ctx.updatedAt)
	}
}
