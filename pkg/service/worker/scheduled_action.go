package worker

import (
	"context"
	"time"

	"github.com/rigcse/modbridge/pkg/usecase"
	"github.com/rigcse/modbridge/pkg/utils/errutil"
	"github.com/rigcse/modbridge/pkg/utils/logging"
)

// DueProcessor executes due scheduled actions
type DueProcessor interface {
	ProcessDue(ctx context.Context) (*usecase.TickResult, error)
}

// ScheduledActionWorker polls the store for due actions on a fixed interval
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - Lock and unlock are idempotent, so a second instance only causes duplicate remote calls
type ScheduledActionWorker struct {
	processor DueProcessor
	interval  time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewScheduledActionWorker creates a new worker for executing scheduled actions
func NewScheduledActionWorker(processor DueProcessor, interval time.Duration) *ScheduledActionWorker {
	return &ScheduledActionWorker{
		processor: processor,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the polling loop in a background goroutine. The first tick runs immediately.
func (w *ScheduledActionWorker) Start(ctx context.Context) error {
	logging.From(ctx).Info("Scheduled action worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for the running tick to finish
func (w *ScheduledActionWorker) Stop() {
	logging.Default().Info("Scheduled action worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Scheduled action worker stopped")
}

// run is the main worker loop (runs in goroutine)
func (w *ScheduledActionWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	// A tick is never interrupted; stopping takes effect between ticks
	tickCtx := context.WithoutCancel(ctx)

	w.tick(tickCtx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(tickCtx)

		case <-w.stopCh:
			logging.Default().Info("Scheduled action worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Scheduled action worker context cancelled")
			return
		}
	}
}

func (w *ScheduledActionWorker) tick(ctx context.Context) {
	startTime := time.Now()

	result, err := w.processor.ProcessDue(ctx)
	if err != nil {
		// Log error but continue worker
		errutil.Handle(ctx, err, "Scheduled action tick failed (will retry next interval)")
		return
	}

	if result.Due == 0 {
		return
	}
	logging.From(ctx).Info("Scheduled action tick completed",
		"due", result.Due,
		"executed", result.Executed,
		"failed", result.Failed,
		"dead_lettered", result.DeadLettered,
		"duration", time.Since(startTime).String())
}
