package ledger

import "testing"

func TestExtractTicketNumberFromFreshdeskURL(t *testing.T) {
	got := ExtractTicketNumber("https://example.freshdesk.com/a/tickets/4821")
	if got != "4821" {
		t.Fatalf("got %q, want 4821", got)
	}
}

func TestExtractTicketNumberFromBareDigits(t *testing.T) {
	got := ExtractTicketNumber("  4821  ")
	if got != "4821" {
		t.Fatalf("got %q, want 4821", got)
	}
}

func TestExtractTicketNumberRejectsNonMatchingText(t *testing.T) {
	if got := ExtractTicketNumber("not a ticket"); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestExtractTicketNumberRejectsOverlongDigitString(t *testing.T) {
	if got := ExtractTicketNumber("12345678901"); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}
