package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/anthropics/kodex/internal/atomicfile"
)

const (
	defaultCutoffHour   = 17
	defaultCutoffMinute = 50
)

// Ledger is the persistent time-tracking store described by §4.I. Safe for
// concurrent use; writes are additionally serialized across processes via
// an advisory file lock, since the IPC ingress and the CLI's `time-log`
// verb may both touch the file.
type Ledger struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock

	archiveDir string
	docsDir    string

	cutoffHour   int
	cutoffMinute int

	lockProbe LockProbe
	clock     func() time.Time
	log       *zap.SugaredLogger

	d data

	lastExportDate  string
	lastArchiveDate string
}

// Options configures a Ledger beyond its required file paths.
type Options struct {
	CutoffHour   int // defaults to 17
	CutoffMinute int // defaults to 50
	LockProbe    LockProbe
	Clock        func() time.Time
	Log          *zap.SugaredLogger
}

// Open loads path, migrating the legacy flat shape in memory if needed, or
// initializes an empty ledger if the file doesn't exist.
func Open(path, archiveDir, docsDir string, opts Options) (*Ledger, error) {
	l := &Ledger{
		path:         path,
		lock:         flock.New(path + ".lock"),
		archiveDir:   archiveDir,
		docsDir:      docsDir,
		cutoffHour:   opts.CutoffHour,
		cutoffMinute: opts.CutoffMinute,
		lockProbe:    opts.LockProbe,
		clock:        opts.Clock,
		log:          opts.Log,
	}
	if l.cutoffHour == 0 && l.cutoffMinute == 0 {
		l.cutoffHour, l.cutoffMinute = defaultCutoffHour, defaultCutoffMinute
	}
	if l.lockProbe == nil {
		l.lockProbe = DefaultLockProbe()
	}
	if l.clock == nil {
		l.clock = time.Now
	}

	if err := l.load(); err != nil {
		return nil, fmt.Errorf("ledger: loading %s: %w", path, err)
	}
	return l, nil
}

func (l *Ledger) now() time.Time { return l.clock() }

func (l *Ledger) load() error {
	raw, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		l.d = data{Entries: make(map[string]dayEntries)}
		return nil
	}
	if err != nil {
		return err
	}

	var d data
	if err := json.Unmarshal(raw, &d); err == nil && d.Entries != nil {
		l.d = d
		return nil
	}

	var legacy legacyData
	if err := json.Unmarshal(raw, &legacy); err != nil || legacy.Tickets == nil {
		if l.log != nil {
			l.log.Warnw("time ledger unreadable, starting fresh", "path", l.path)
		}
		l.d = data{Entries: make(map[string]dayEntries)}
		return nil
	}

	today := l.now().Format("2006-01-02")
	l.d = data{Entries: map[string]dayEntries{today: dayEntries(legacy.Tickets)}}
	if l.log != nil {
		l.log.Infow("migrated legacy flat time ledger", "tickets", len(legacy.Tickets))
	}
	return nil
}

func (l *Ledger) save() error {
	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("ledger: acquiring file lock: %w", err)
	}
	defer l.lock.Unlock()
	return atomicfile.WriteJSON(l.path, l.d)
}

// shouldTrack reports whether elapsed time should be accumulated right now:
// not locked, and not past the configured cutoff.
func (l *Ledger) shouldTrack() bool {
	if l.lockProbe.IsLocked() {
		return false
	}
	now := l.now()
	if now.Hour() > l.cutoffHour || (now.Hour() == l.cutoffHour && now.Minute() >= l.cutoffMinute) {
		return false
	}
	return true
}

func (l *Ledger) todayEntries(today string) dayEntries {
	if l.d.Entries == nil {
		l.d.Entries = make(map[string]dayEntries)
	}
	d, ok := l.d.Entries[today]
	if !ok {
		d = make(dayEntries)
		l.d.Entries[today] = d
	}
	return d
}

// Ingest applies one incoming context payload per §4.I's algorithm.
func (l *Ledger) Ingest(p IngestPayload) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	today := now.Format("2006-01-02")
	shouldTrack := l.shouldTrack()

	active := l.d.Active
	if active != nil {
		elapsed := now.Sub(active.StartedAt).Seconds()
		if shouldTrack && elapsed > 0 {
			entries := l.todayEntries(today)
			entry, ok := entries[active.Ticket]
			if !ok {
				entry = &TicketEntry{Source: active.Source}
				entries[active.Ticket] = entry
			}
			entry.TotalSeconds += elapsed
			entry.LastSeen = now
			if l.log != nil {
				l.log.Debugw("accumulated ticket time", "ticket", active.Ticket,
					"elapsed_seconds", humanize.FormatFloat("#,###.##", elapsed),
					"today_total_seconds", humanize.FormatFloat("#,###.##", entry.TotalSeconds))
			}
		}

		if p.TicketNumber != "" && p.TicketNumber == active.Ticket && p.Source == active.Source {
			active.StartedAt = now
			return l.save()
		}
	}

	if p.TicketNumber != "" {
		entries := l.todayEntries(today)
		if _, ok := entries[p.TicketNumber]; !ok {
			entries[p.TicketNumber] = &TicketEntry{Source: p.Source, LastSeen: now}
		}
		l.d.Active = &activeTicket{Ticket: p.TicketNumber, Source: p.Source, StartedAt: now}
	} else {
		l.d.Active = nil
	}

	return l.save()
}

// ActiveTicket implements variables.LedgerLookup.
func (l *Ledger) ActiveTicket() (ticket, source string, active bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.d.Active == nil {
		return "", "", false
	}
	return l.d.Active.Ticket, l.d.Active.Source, true
}

// SecondsToday implements variables.LedgerLookup.
func (l *Ledger) SecondsToday(ticket string) (seconds float64, found bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	today := l.now().Format("2006-01-02")
	entries, ok := l.d.Entries[today]
	if !ok {
		return 0, false
	}
	entry, ok := entries[ticket]
	if !ok {
		return 0, false
	}
	return entry.TotalSeconds, true
}

// ExportCSV writes the CSV described by §4.I's export contract. Returns the
// path written to.
func (l *Ledger) ExportCSV() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exportCSVLocked()
}

func (l *Ledger) exportCSVLocked() (string, error) {
	type row struct {
		date   string
		ticket string
		total  float64
	}
	var rows []row
	var dates []string
	for d := range l.d.Entries {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for _, d := range dates {
		var tickets []string
		for t := range l.d.Entries[d] {
			tickets = append(tickets, t)
		}
		sort.Strings(tickets)
		for _, t := range tickets {
			csvDate, err := strftimeDateDot(d)
			if err != nil {
				csvDate = d
			}
			rows = append(rows, row{date: csvDate, ticket: t, total: l.d.Entries[d][t].TotalSeconds})
		}
	}

	if err := os.MkdirAll(l.docsDir, 0o755); err != nil {
		return "", fmt.Errorf("ledger: creating documents dir: %w", err)
	}
	name := l.now().Format("01.02.2006") + ".TimeTracking.csv"
	outPath := filepath.Join(l.docsDir, name)

	var b []byte
	for _, r := range rows {
		b = append(b, []byte(fmt.Sprintf("%s,%s,%.6f\r\n", r.date, r.ticket, r.total))...)
	}
	if err := os.WriteFile(outPath, b, 0o644); err != nil {
		return "", fmt.Errorf("ledger: writing csv %s: %w", outPath, err)
	}
	if l.log != nil {
		l.log.Infow("exported time tracking csv", "path", outPath, "rows", len(rows))
	}
	return outPath, nil
}

// strftimeDateDot reformats a YYYY-MM-DD date key to MM.DD.YYYY.
func strftimeDateDot(ymd string) (string, error) {
	t, err := time.Parse("2006-01-02", ymd)
	if err != nil {
		return "", err
	}
	return t.Format("01.02.2006"), nil
}

// ArchiveAndReset copies the current ledger to the weekly archive and
// starts a fresh one, per §4.I. If the archive copy fails, the reset does
// not happen.
func (l *Ledger) ArchiveAndReset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.archiveDir, 0o755); err != nil {
		return fmt.Errorf("ledger: creating archive dir: %w", err)
	}
	yesterday := l.now().AddDate(0, 0, -1).Format("2006-01-02")
	archivePath := filepath.Join(l.archiveDir, fmt.Sprintf("time_tracking_%s.json", yesterday))

	raw, err := json.MarshalIndent(l.d, "", "  ")
	if err != nil {
		return fmt.Errorf("ledger: marshaling for archive: %w", err)
	}
	if err := atomicfile.Write(archivePath, raw, 0o644); err != nil {
		return fmt.Errorf("ledger: archiving to %s: %w", archivePath, err)
	}

	if _, err := l.exportCSVLocked(); err != nil && l.log != nil {
		l.log.Warnw("csv export during archive failed", "error", err)
	}

	l.d = data{Entries: make(map[string]dayEntries)}
	if err := l.save(); err != nil {
		return fmt.Errorf("ledger: resetting after archive: %w", err)
	}
	if l.log != nil {
		l.log.Infow("archived and reset time ledger", "archive_path", archivePath)
	}
	return nil
}
