// Package ledger implements §4.I: the persistent per-day, per-ticket time
// ledger, its idle/cutoff gating, the weekly archive + daily CSV export
// scheduler, and the LedgerLookup view the variable resolver's
// ticket_time/ticket_time_formatted tokens read from. Grounded in
// original_source/src/kodex_py/native_messaging.py (_update_time_tracking)
// and original_source/src/kodex_py/plugins/time_scheduler.py.
package ledger

import "time"

// TicketEntry is one ticket's accumulated time for a single date.
type TicketEntry struct {
	TotalSeconds float64   `json:"total_seconds"`
	Source       string    `json:"source"`
	LastSeen     time.Time `json:"last_seen"`
}

// dayEntries maps ticket number -> its entry for one date (YYYY-MM-DD).
type dayEntries map[string]*TicketEntry

// activeTicket is the in-progress ticket timer, if any.
type activeTicket struct {
	Ticket    string    `json:"ticket_number"`
	Source    string    `json:"source"`
	StartedAt time.Time `json:"started_at"`
}

// data is the on-disk shape of time_tracking.json.
type data struct {
	Entries map[string]dayEntries `json:"entries"`
	Active  *activeTicket         `json:"_active"`
}

// legacyData is the pre-date-based flat shape this migrates from (§4.I
// Backward compatibility), keyed directly by ticket number.
type legacyData struct {
	Tickets map[string]*TicketEntry `json:"tickets"`
}

// IngestPayload is the subset of an incoming context payload the ledger
// cares about; the rest is handled by internal/ingress's context-file write.
type IngestPayload struct {
	Source       string
	TicketNumber string // empty means absent
}
