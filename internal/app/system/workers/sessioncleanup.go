// internal/app/system/workers/sessioncleanup.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper drops expired entries from an in-process table and reports how
// many went.
type Sweeper interface {
	Sweep() int
}

// SessionCleanup is a background worker that sweeps expired sessions,
// revoked token ids and rate-limit windows held in memory.
type SessionCleanup struct {
	targets  map[string]Sweeper
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSessionCleanup creates a new session cleanup worker.
//
// Parameters:
//   - targets: named tables to sweep; nil entries are skipped
//   - logger: zap logger for logging
//   - interval: how often to run cleanup (e.g., 1 minute)
func NewSessionCleanup(targets map[string]Sweeper, logger *zap.Logger, interval time.Duration) *SessionCleanup {
	live := make(map[string]Sweeper, len(targets))
	for name, t := range targets {
		if t != nil {
			live[name] = t
		}
	}
	return &SessionCleanup{
		targets:  live,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *SessionCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("session cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Int("targets", len(w.targets)))
}

// Stop signals the worker to stop and waits for it to finish. It is safe to
// call more than once.
func (w *SessionCleanup) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("session cleanup worker stopped")
}

func (w *SessionCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Cleanup()
		}
	}
}

// Cleanup runs one sweep over every target and returns the total removed.
func (w *SessionCleanup) Cleanup() int {
	total := 0
	for name, t := range w.targets {
		n := t.Sweep()
		if n > 0 {
			w.log.Debug("swept expired entries", zap.String("table", name), zap.Int("count", n))
		}
		total += n
	}
	return total
}
