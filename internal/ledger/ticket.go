package ledger

import (
	"regexp"
	"strings"
)

// ticketRE mirrors plugins/ticket_tracker.py's _TICKET_RE: a Freshdesk
// ticket URL path segment.
var ticketRE = regexp.MustCompile(`(?i)tickets?/(\d+)`)

// ExtractTicketNumber pulls a ticket number out of arbitrary clipboard text:
// a Freshdesk URL path segment first, falling back to a bare numeric string
// of at most 10 digits. Returns "" if neither matches.
func ExtractTicketNumber(text string) string {
	if m := ticketRE.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	trimmed := strings.TrimSpace(text)
	if trimmed != "" && isAllDigits(trimmed) && len(trimmed) <= 10 {
		return trimmed
	}
	return ""
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
