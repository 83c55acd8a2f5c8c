package variables

import (
	"path/filepath"
	"testing"
	"time"
)

type stubClipboard struct {
	text string
	err  error
}

func (s stubClipboard) ReadText() (string, error) { return s.text, s.err }

type stubLedger struct {
	ticket  string
	source  string
	active  bool
	seconds float64
	found   bool
}

func (s stubLedger) ActiveTicket() (string, string, bool) { return s.ticket, s.source, s.active }
func (s stubLedger) SecondsToday(ticket string) (float64, bool) {
	if ticket != s.ticket {
		return 0, false
	}
	return s.seconds, s.found
}

func fixedNow() time.Time {
	return time.Date(2026, 7, 31, 9, 5, 0, 0, time.UTC)
}

func fixedAfternoon() time.Time {
	return time.Date(2026, 7, 31, 15, 5, 0, 0, time.UTC)
}

func TestSubstituteClipboard(t *testing.T) {
	r := &Resolver{Clipboard: stubClipboard{text: "copied text"}}
	got := r.Substitute("paste: %clipboard%", SubstituteOpts{})
	if got != "paste: copied text" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteClipboardErrorLeavesEmptyString(t *testing.T) {
	r := &Resolver{Clipboard: stubClipboard{err: errBoom}}
	got := r.Substitute("[%clipboard%]", SubstituteOpts{})
	if got != "[]" {
		t.Fatalf("got %q", got)
	}
}

var errBoom = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

func TestSubstituteTimeAndTimeLongAreDistinctTokens(t *testing.T) {
	r := &Resolver{Now: fixedNow}
	got := r.Substitute("%time% / %time_long%", SubstituteOpts{})
	if got != "9:05 am / 09:05:00 AM" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteTimeLongReproducesUpstreamBugByDefault(t *testing.T) {
	r := &Resolver{Now: fixedAfternoon}
	got := r.Substitute("%time_long%", SubstituteOpts{})
	if got != "15:05:00 PM" {
		t.Fatalf("expected buggy 24h+PM rendering, got %q", got)
	}
}

func TestSubstituteTimeLongStrictDropsAMPMSuffix(t *testing.T) {
	r := &Resolver{Now: fixedAfternoon, TimeLongStrict: true}
	got := r.Substitute("%time_long%", SubstituteOpts{})
	if got != "15:05:00" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteDateTokens(t *testing.T) {
	r := &Resolver{Now: fixedNow}
	got := r.Substitute("%date_short% | %date_long%", SubstituteOpts{})
	if got != "7/31/2026 | July 31, 2026" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstitutePromptWithValue(t *testing.T) {
	r := &Resolver{}
	v := "Acme Corp"
	got := r.Substitute("Hello %prompt%!", SubstituteOpts{PromptValue: &v})
	if got != "Hello Acme Corp!" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstitutePromptWithoutValueLeftLiteral(t *testing.T) {
	r := &Resolver{}
	got := r.Substitute("Hello %prompt%!", SubstituteOpts{})
	if got != "Hello %prompt%!" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteCursorNeverTouched(t *testing.T) {
	r := &Resolver{}
	got := r.Substitute("before%cursor%after", SubstituteOpts{})
	if got != "before%cursor%after" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstitutePrefixedSourceLookup(t *testing.T) {
	dir := t.TempDir()
	writeContextFile(t, dir, SourceFreshdesk, `{"_updated_at":"2026-07-31T10:00:00Z","ticket_id":"4821"}`)
	c := NewContexts(dir)
	r := &Resolver{Contexts: c}
	got := r.Substitute("Ticket #%freshdesk_ticket_id%", SubstituteOpts{})
	if got != "Ticket #4821" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteUnprefixedFallsBackToMostRecentSource(t *testing.T) {
	dir := t.TempDir()
	writeContextFile(t, dir, SourceFreshdesk, `{"_updated_at":"2026-07-31T09:00:00Z","requester":"old"}`)
	writeContextFile(t, dir, SourceCSR, `{"_updated_at":"2026-07-31T10:30:00Z","requester":"new"}`)
	c := NewContexts(dir)
	r := &Resolver{Contexts: c}
	got := r.Substitute("Hi %requester%", SubstituteOpts{})
	if got != "Hi new" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteTicketTimeFormatted(t *testing.T) {
	r := &Resolver{Ledger: stubLedger{ticket: "4821", active: true, seconds: 3725, found: true}}
	got := r.Substitute("%ticket_time_formatted%", SubstituteOpts{})
	if got != "01:02:05" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteTicketTimeRawSeconds(t *testing.T) {
	r := &Resolver{Ledger: stubLedger{ticket: "4821", active: true, seconds: 42, found: true}}
	got := r.Substitute("%ticket_time%", SubstituteOpts{})
	if got != "42" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteTicketTimeUnresolvedWhenNoActiveTicket(t *testing.T) {
	r := &Resolver{Ledger: stubLedger{active: false}}
	got := r.Substitute("%ticket_time%", SubstituteOpts{})
	if got != "%ticket_time%" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteGlobalVariableFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "global_variables.json")
	g, err := NewGlobals(path)
	if err != nil {
		t.Fatalf("NewGlobals: %v", err)
	}
	if err := g.Set("signature", "Best,\nJ", VarString); err != nil {
		t.Fatalf("Set: %v", err)
	}
	r := &Resolver{Globals: g}
	got := r.Substitute("%signature%", SubstituteOpts{})
	if got != "Best,\nJ" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteUnknownNameLeftLiteral(t *testing.T) {
	r := &Resolver{}
	got := r.Substitute("%nonexistent_thing%", SubstituteOpts{})
	if got != "%nonexistent_thing%" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstitutePrefixedMissingKeyDoesNotFallThroughToGlobal(t *testing.T) {
	dir := t.TempDir()
	writeContextFile(t, dir, SourceFreshdesk, `{"_updated_at":"2026-07-31T10:00:00Z","ticket_id":"4821"}`)
	c := NewContexts(dir)

	path := filepath.Join(t.TempDir(), "global_variables.json")
	g, _ := NewGlobals(path)
	g.Set("freshdesk_missing", "should not win", VarString)

	r := &Resolver{Contexts: c, Globals: g}
	got := r.Substitute("%freshdesk_missing%", SubstituteOpts{})
	if got != "%freshdesk_missing%" {
		t.Fatalf("got %q, expected prefixed-but-absent token to stay unresolved", got)
	}
}
