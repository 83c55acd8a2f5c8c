package ledger

import "time"

// Scheduler runs the weekly-archive and daily-CSV-export background tasks
// described by §4.I / §5's timing model: a tick once a minute is frequent
// enough to hit both the Monday-detection window and the cutoff-minute
// export window without drifting.
type Scheduler struct {
	ledger    *Ledger
	newTicker func() *time.Ticker
	stop      chan struct{}
	done      chan struct{}
}

// NewScheduler builds a scheduler over ledger, ticking once a minute.
func NewScheduler(l *Ledger) *Scheduler {
	return &Scheduler{
		ledger:    l,
		newTicker: func() *time.Ticker { return time.NewTicker(time.Minute) },
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start runs the scheduler loop in its own goroutine.
func (s *Scheduler) Start() {
	go s.run()
}

// Stop halts the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)
	ticker := s.newTicker()
	defer ticker.Stop()
	s.checkAndRun()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.checkAndRun()
		}
	}
}

func (s *Scheduler) checkAndRun() {
	now := s.ledger.now()
	today := now.Format("2006-01-02")

	if now.Weekday() == time.Monday && s.ledger.lastArchiveDate != today {
		if err := s.ledger.ArchiveAndReset(); err == nil {
			s.ledger.lastArchiveDate = today
		} else if s.ledger.log != nil {
			s.ledger.log.Warnw("weekly archive failed", "error", err)
		}
	}

	if now.Hour() == s.ledger.cutoffHour && now.Minute() == s.ledger.cutoffMinute && s.ledger.lastExportDate != today {
		if _, err := s.ledger.ExportCSV(); err == nil {
			s.ledger.lastExportDate = today
		} else if s.ledger.log != nil {
			s.ledger.log.Warnw("daily csv export failed", "error", err)
		}
	}
}
