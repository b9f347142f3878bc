package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/mock-auction/internal/model"
)

// Saver is the store side of the writer.
type Saver interface {
	Save(ctx context.Context, snap model.Snapshot) error
}

// FlushObserver records flush outcomes (metrics).
type FlushObserver interface {
	ObserveFlush(err error)
}

// WriterConfig holds SnapshotWriter settings.
type WriterConfig struct {
	RetryInterval time.Duration // Delay before retrying a failed save
	SaveTimeout   time.Duration // Per-save deadline
}

// DefaultWriterConfig returns the default settings.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		RetryInterval: 2 * time.Second,
		SaveTimeout:   10 * time.Second,
	}
}

// WriterMetrics counts writer activity.
type WriterMetrics struct {
	Flushes     int64  // Successful saves
	Errors      int64  // Failed saves
	Coalesced   int64  // Snapshots dropped in favour of a newer one
	LastVersion uint64 // Version of the last saved snapshot
}

// SnapshotWriter saves the newest snapshot to a Saver from a background
// goroutine.
type SnapshotWriter struct {
	cfg      WriterConfig
	store    Saver
	observer FlushObserver
	logger   *slog.Logger

	mu      sync.Mutex
	pending *model.Snapshot
	metrics WriterMetrics
	wake    chan struct{}

	// Serializes saves between flushLoop and the final flush in Stop.
	saveMu sync.Mutex

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSnapshotWriter creates a SnapshotWriter. observer may be nil.
func NewSnapshotWriter(cfg WriterConfig, store Saver, observer FlushObserver, logger *slog.Logger) *SnapshotWriter {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultWriterConfig()
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = def.RetryInterval
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = def.SaveTimeout
	}
	return &SnapshotWriter{
		cfg:      cfg,
		store:    store,
		observer: observer,
		logger:   logger,
		wake:     make(chan struct{}, 1),
	}
}

// Start begins the flush loop.
func (w *SnapshotWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("snapshot writer started", "retry_interval", w.cfg.RetryInterval)
	return nil
}

// Stop shuts down the flush loop and saves whatever is still pending.
func (w *SnapshotWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping snapshot writer")

	if w.cancel != nil {
		w.cancel()
	}

	// Wait for goroutines
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("snapshot writer stop timed out")
		return ctx.Err()
	}

	// Final flush
	if err := w.flush(ctx); err != nil {
		w.logger.Error("final snapshot flush failed", "error", err)
		return err
	}

	w.logger.Info("snapshot writer stopped", "last_version", w.Stats().LastVersion)
	return nil
}

// Persist queues snap for saving. It never blocks. Snapshots older than
// the one already pending or saved are dropped.
func (w *SnapshotWriter) Persist(snap model.Snapshot) {
	w.mu.Lock()
	switch {
	case snap.Version != 0 && snap.Version <= w.metrics.LastVersion:
		w.metrics.Coalesced++
		w.mu.Unlock()
		return
	case w.pending != nil && snap.Version != 0 && snap.Version < w.pending.Version:
		w.metrics.Coalesced++
		w.mu.Unlock()
		return
	case w.pending != nil:
		w.metrics.Coalesced++
	}
	w.pending = &snap
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Stats returns current metrics.
func (w *SnapshotWriter) Stats() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// Pending reports whether a snapshot is waiting to be saved.
func (w *SnapshotWriter) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending != nil
}

// flushLoop saves on every wake-up and retries failures on a timer.
func (w *SnapshotWriter) flushLoop() {
	defer w.wg.Done()

	var retry <-chan time.Time
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.wake:
		case <-retry:
		}

		retry = nil
		if err := w.flush(w.ctx); err != nil {
			if w.ctx.Err() != nil {
				return
			}
			retry = time.After(w.cfg.RetryInterval)
		}
	}
}

// flush saves the pending snapshot, if any. On failure the snapshot is
// put back unless a newer one arrived meanwhile.
func (w *SnapshotWriter) flush(ctx context.Context) error {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	w.mu.Lock()
	snap := w.pending
	w.pending = nil
	w.mu.Unlock()

	if snap == nil {
		return nil
	}

	start := time.Now()
	saveCtx, cancel := context.WithTimeout(ctx, w.cfg.SaveTimeout)
	err := w.store.Save(saveCtx, *snap)
	cancel()

	if w.observer != nil {
		w.observer.ObserveFlush(err)
	}

	w.mu.Lock()
	if err != nil {
		w.metrics.Errors++
		if w.pending == nil {
			w.pending = snap
		}
		w.mu.Unlock()
		w.logger.Error("snapshot save failed",
			"version", snap.Version,
			"error", err,
		)
		return err
	}
	w.metrics.Flushes++
	if snap.Version > w.metrics.LastVersion {
		w.metrics.LastVersion = snap.Version
	}
	w.mu.Unlock()

	w.logger.Debug("snapshot saved",
		"version", snap.Version,
		"teams", len(snap.Teams),
		"players", len(snap.Players),
		"duration", time.Since(start),
	)
	return nil
}
