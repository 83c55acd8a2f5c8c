package ingress

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// watchdogInterval mirrors the original's 2-second poll (§4.K shutdown
// triggers).
const watchdogInterval = 2 * time.Second

// processAlive abstracts gopsutil's liveness check for tests.
type processAlive func(pid int32) (bool, error)

func gopsutilAlive(pid int32) (bool, error) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return false, nil
	}
	return proc.IsRunning()
}

// Watchdog shuts the ingress connection down when either the parent process
// that spawned it, or the Kodex daemon it is relaying to, disappears.
// Grounded in original_source/src/kodex_py/native_messaging.py's
// _watchdog_thread / _is_kodex_running / _is_process_alive.
type Watchdog struct {
	ParentPID int32
	PIDPath   string
	Log       *zap.SugaredLogger
	Shutdown  func()

	alive    processAlive // overridable in tests
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// Start launches the polling goroutine. Call Stop to tear it down.
func (wd *Watchdog) Start() {
	if wd.alive == nil {
		wd.alive = gopsutilAlive
	}
	if wd.interval == 0 {
		wd.interval = watchdogInterval
	}
	wd.stop = make(chan struct{})
	wd.done = make(chan struct{})
	go wd.run()
}

// Stop ends the polling goroutine and waits for it to exit.
func (wd *Watchdog) Stop() {
	if wd.stop == nil {
		return
	}
	close(wd.stop)
	<-wd.done
}

func (wd *Watchdog) run() {
	defer close(wd.done)
	ticker := time.NewTicker(wd.interval)
	defer ticker.Stop()
	for {
		select {
		case <-wd.stop:
			return
		case <-ticker.C:
			if !wd.check() {
				wd.fire("watchdog: parent or daemon no longer running")
				return
			}
		}
	}
}

// check reports whether both the parent process and the Kodex daemon are
// still alive. Returns false to request shutdown.
func (wd *Watchdog) check() bool {
	if wd.ParentPID > 0 {
		alive, err := wd.alive(wd.ParentPID)
		if err != nil || !alive {
			return false
		}
	}
	if wd.PIDPath != "" {
		pid, ok := wd.readDaemonPID()
		if !ok {
			return false
		}
		alive, err := wd.alive(pid)
		if err != nil || !alive {
			return false
		}
	}
	return true
}

func (wd *Watchdog) readDaemonPID() (int32, bool) {
	data, err := os.ReadFile(wd.PIDPath)
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n <= 0 {
		return 0, false
	}
	return int32(n), true
}

func (wd *Watchdog) fire(reason string) {
	if wd.Log != nil {
		wd.Log.Warn(reason)
	}
	if wd.Shutdown != nil {
		wd.Shutdown()
	}
}
