package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/qoit/pkg/utils/logging"
)

// Expirer moves every profile whose return time has passed back to available
type Expirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

// ExpiryWorker periodically returns past-due profiles to available, covering
// users who have no open dashboard session when their return time passes.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Running two instances is safe but duplicates provider syncs
type ExpiryWorker struct {
	expirer  Expirer
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewExpiryWorker creates a new worker sweeping expired statuses every interval
func NewExpiryWorker(expirer Expirer, interval time.Duration) *ExpiryWorker {
	return &ExpiryWorker{
		expirer:  expirer,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop. The first sweep runs immediately in
// the background and does not block server startup.
func (w *ExpiryWorker) Start(ctx context.Context) error {
	logging.Default().Info("Expiry worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *ExpiryWorker) Stop() {
	logging.Default().Info("Expiry worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Expiry worker stopped")
}

func (w *ExpiryWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)

		case <-w.stopCh:
			logging.Default().Info("Expiry worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Expiry worker context cancelled")
			return
		}
	}
}

// sweep logs failures and keeps the worker running
func (w *ExpiryWorker) sweep(ctx context.Context) {
	startTime := w.now()

	count, err := w.expirer.ExpireDue(ctx, startTime)
	if err != nil {
		logging.Default().Error("Expiry sweep failed (will retry next interval)",
			"error", err.Error())
		return
	}

	if count > 0 {
		logging.Default().Info("Expiry sweep completed",
			"expired", count,
			"duration", time.Since(startTime).String())
	}
}
