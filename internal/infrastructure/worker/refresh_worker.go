package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/timesheet-insights/internal/application/port"
	"github.com/garyjia/timesheet-insights/internal/application/service"
	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

// Refresher publishes a new snapshot from raw records
type Refresher interface {
	Refresh(ctx context.Context, raw entity.RawBatch) (*service.Snapshot, error)
}

// RefreshConfig holds refresh worker settings
type RefreshConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// RefreshWorker reloads the timesheet source on an interval and republishes
// the snapshot. Refreshes never overlap.
type RefreshWorker struct {
	source    port.TimesheetSource
	refresher Refresher
	logger    *zap.Logger

	interval time.Duration
	timeout  time.Duration

	// refreshMu serializes refreshes from the loop and from RefreshNow
	refreshMu sync.Mutex

	mu          sync.RWMutex
	isRunning   bool
	cancel      context.CancelFunc
	done        chan struct{}
	lastRefresh time.Time
	lastErr     error
}

// NewRefreshWorker creates a new refresh worker
func NewRefreshWorker(source port.TimesheetSource, refresher Refresher, cfg RefreshConfig, logger *zap.Logger) *RefreshWorker {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &RefreshWorker{
		source:    source,
		refresher: refresher,
		logger:    logger,
		interval:  cfg.Interval,
		timeout:   cfg.Timeout,
	}
}

// Start starts the refresh loop. The first refresh runs immediately.
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("refresh worker is already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.isRunning = true

	w.logger.Info("RefreshWorker started", zap.Duration("interval", w.interval))

	go w.loop(loopCtx, w.done)
	return nil
}

// Stop stops the loop and waits for an in-flight refresh to finish
func (w *RefreshWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	w.cancel()
	done := w.done
	w.mu.Unlock()

	<-done
	w.logger.Info("RefreshWorker stopped")
	return nil
}

// Name returns the worker name for identification
func (w *RefreshWorker) Name() string {
	return "RefreshWorker"
}

func (w *RefreshWorker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	_, _ = w.RefreshNow(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = w.RefreshNow(ctx)
		}
	}
}

// RefreshNow loads the source and publishes a new snapshot. On failure the
// previous snapshot stays published.
func (w *RefreshWorker) RefreshNow(ctx context.Context) (*service.Snapshot, error) {
	w.refreshMu.Lock()
	defer w.refreshMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	snap, err := w.refresh(ctx)

	w.mu.Lock()
	w.lastErr = err
	if err == nil {
		w.lastRefresh = snap.RefreshedAt
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("Snapshot refresh failed", zap.Error(err))
		return nil, err
	}
	return snap, nil
}

func (w *RefreshWorker) refresh(ctx context.Context) (*service.Snapshot, error) {
	raw, err := w.source.LoadBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("load timesheet batch: %w", err)
	}
	snap, err := w.refresher.Refresh(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("refresh snapshot: %w", err)
	}
	return snap, nil
}

// Status returns the time of the last successful refresh and the last error
func (w *RefreshWorker) Status() (time.Time, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastRefresh, w.lastErr
}

// IsRunning returns whether the loop is running
func (w *RefreshWorker) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.isRunning
}
