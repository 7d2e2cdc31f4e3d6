// internal/app/system/workers/driftcheck.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/tutorhub/internal/app/system/bookkeeping"
	"github.com/dalemusser/tutorhub/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Checker reports students whose stored balance disagrees with their
// attendance. *bookkeeping.Service implements it.
type Checker interface {
	CheckAll(ctx context.Context) (bookkeeping.DriftReport, error)
}

// DriftCheck is a background worker that periodically recomputes every
// student's balance and logs the ones that drifted. It never writes.
type DriftCheck struct {
	checker  Checker
	metrics  *metrics.Metrics
	log      *zap.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	started  bool
}

// NewDriftCheck creates the worker.
//
// Parameters:
//   - checker: the ledger service
//   - m: metrics to update after each run (may be nil)
//   - interval: how often to run; zero disables the worker
//   - timeout: upper bound for one run
func NewDriftCheck(checker Checker, m *metrics.Metrics, logger *zap.Logger, interval, timeout time.Duration) *DriftCheck {
	return &DriftCheck{
		checker:  checker,
		metrics:  m,
		log:      logger,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background loop. It does nothing when the interval is
// zero.
func (w *DriftCheck) Start() {
	if w.interval <= 0 {
		w.log.Info("drift check worker disabled")
		return
	}
	w.started = true
	w.wg.Add(1)
	go w.run()
	w.log.Info("drift check worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *DriftCheck) Stop() {
	if !w.started {
		return
	}
	close(w.stopCh)
	w.wg.Wait()
	w.started = false
	w.log.Info("drift check worker stopped")
}

func (w *DriftCheck) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check runs one pass and returns the number of drifted students, or -1
// when the pass failed.
func (w *DriftCheck) Check() int {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	start := time.Now()
	rep, err := w.checker.CheckAll(ctx)
	if err != nil {
		w.log.Error("drift check failed", zap.Error(err))
		return -1
	}
	if w.metrics != nil {
		w.metrics.DriftRuns.Inc()
		w.metrics.DriftDetected.Set(float64(len(rep.Drifted)))
	}

	if len(rep.Drifted) > 0 {
		ids := make([]string, 0, len(rep.Drifted))
		for _, d := range rep.Drifted {
			ids = append(ids, d.StudentID.Hex())
		}
		w.log.Warn("students with balance drift",
			zap.Int("checked", rep.Checked),
			zap.Int("drifted", len(rep.Drifted)),
			zap.Strings("student_ids", ids),
			zap.Duration("took", time.Since(start)))
		return len(rep.Drifted)
	}
	w.log.Debug("drift check clean", zap.Int("checked", rep.Checked), zap.Duration("took", time.Since(start)))
	return 0
}
