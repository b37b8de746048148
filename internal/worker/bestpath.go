package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mtlprog/bestpath/internal/domain"
	"github.com/mtlprog/bestpath/internal/metrics"
	"github.com/mtlprog/bestpath/internal/oracle"
)

// ErrBusy is returned by Trigger while another recomputation is running.
var ErrBusy = errors.New("recomputation already in progress")

// Updater runs one best-path recomputation.
type Updater interface {
	Update(ctx context.Context) (oracle.Result, error)
}

// CycleObserver records the outcome of each cycle.
type CycleObserver interface {
	ObserveCycle(outcome string, elapsed time.Duration)
}

// AfterUpdateHook is called after each cycle that changed at least one best path.
type AfterUpdateHook interface {
	Export(ctx context.Context, changes []domain.PathChange) error
}

// BestPathWorker periodically recomputes best paths. At most one cycle runs at a time,
// whether started by the ticker or by Trigger.
type BestPathWorker struct {
	updater  Updater
	interval time.Duration
	observer CycleObserver
	hooks    []AfterUpdateHook

	mu sync.Mutex
}

// NewBestPathWorker creates a new BestPathWorker with optional post-update hooks.
func NewBestPathWorker(updater Updater, interval time.Duration, observer CycleObserver, hooks ...AfterUpdateHook) *BestPathWorker {
	return &BestPathWorker{
		updater:  updater,
		interval: interval,
		observer: observer,
		hooks:    hooks,
	}
}

// Trigger runs a cycle now unless one is already running, in which case it returns ErrBusy.
func (w *BestPathWorker) Trigger(ctx context.Context) (oracle.Result, error) {
	if !w.mu.TryLock() {
		w.observer.ObserveCycle(metrics.OutcomeSkipped, 0)
		return oracle.Result{}, ErrBusy
	}
	defer w.mu.Unlock()

	start := time.Now()
	res, err := w.updater.Update(ctx)
	elapsed := time.Since(start)
	switch {
	case err != nil:
		w.observer.ObserveCycle(metrics.OutcomeFailed, elapsed)
		return res, err
	case len(res.Changes) == 0:
		w.observer.ObserveCycle(metrics.OutcomeUnchanged, elapsed)
	default:
		w.observer.ObserveCycle(metrics.OutcomeChanged, elapsed)
		w.runHooks(ctx, res.Changes)
	}
	return res, nil
}

// runHooks calls every configured hook; failures are logged and do not stop the others.
func (w *BestPathWorker) runHooks(ctx context.Context, changes []domain.PathChange) {
	for _, h := range w.hooks {
		if err := h.Export(ctx, changes); err != nil {
			slog.Error("BestPathWorker: export hook failed", "error", err)
		} else {
			slog.Info("BestPathWorker: export hook completed")
		}
	}
}

func (w *BestPathWorker) tick(ctx context.Context, label string) {
	res, err := w.Trigger(ctx)
	switch {
	case errors.Is(err, ErrBusy):
		slog.Warn("BestPathWorker: "+label+" skipped, previous cycle still running")
	case err != nil:
		slog.Error("BestPathWorker: "+label+" failed", "error", err)
	default:
		slog.Info("BestPathWorker: "+label+" completed",
			"fetched", res.Fetched, "paths", res.Paths, "changes", len(res.Changes))
	}
}

// Run starts the worker loop. It blocks until the context is cancelled.
func (w *BestPathWorker) Run(ctx context.Context) {
	slog.Info("BestPathWorker: starting", "interval", w.interval)

	// Recompute immediately on startup
	w.tick(ctx, "initial recomputation")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("BestPathWorker: shutting down")
			return
		case <-ticker.C:
			w.tick(ctx, "recomputation")
		}
	}
}
