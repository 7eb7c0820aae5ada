package worker

import (
	"context"
	"sync"
	"time"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/logger"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/metrics"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/progress"
)

// RuntimePersister saves the global event runtime snapshot alongside profile
// flushes. The event engine implements it.
type RuntimePersister interface {
	PersistRuntime(ctx context.Context) error
}

// AutosaveWorker periodically flushes dirty profiles and the event runtime to
// storage. Flushes are fire-and-forget: a failed save stays dirty and is
// retried on the next cycle.
type AutosaveWorker struct {
	store    *progress.Store
	runtime  RuntimePersister
	interval time.Duration

	shutdown chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

// NewAutosaveWorker creates a new AutosaveWorker. runtime may be nil.
func NewAutosaveWorker(store *progress.Store, runtime RuntimePersister, interval time.Duration) *AutosaveWorker {
	return &AutosaveWorker{
		store:    store,
		runtime:  runtime,
		interval: interval,
		shutdown: make(chan struct{}),
	}
}

// Start launches the autosave loop.
func (w *AutosaveWorker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		logger.Info(LogMsgAutosaveStarted, "interval", w.interval)
		for {
			select {
			case <-ticker.C:
				w.runOnce()
			case <-w.shutdown:
				return
			}
		}
	}()
}

// runOnce performs a single flush cycle, skipping if one is still in flight.
func (w *AutosaveWorker) runOnce() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		logger.Info(LogMsgAutosaveSkipped)
		return
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
		}()

		ctx := context.Background()
		log := logger.FromContext(ctx)

		saved, err := w.store.FlushDirty(ctx)
		if saved > 0 {
			metrics.ProfilesFlushed.Add(float64(saved))
		}
		if err != nil {
			log.Error(LogMsgAutosaveFailed, "saved", saved, "error", err)
		} else if saved > 0 {
			log.Debug(LogMsgAutosaveCompleted, "saved", saved)
		}

		if w.runtime != nil {
			if err := w.runtime.PersistRuntime(ctx); err != nil {
				log.Error(LogMsgAutosaveFailed, "component", "event_runtime", "error", err)
			}
		}
	}()
}

// Shutdown stops the loop, waits for an in-flight flush and runs one final
// synchronous flush so nothing dirty is lost.
func (w *AutosaveWorker) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("Shutting down autosave worker")

	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("Autosave worker shutdown timeout")
		return ctx.Err()
	}

	saved, err := w.store.FlushDirty(ctx)
	if saved > 0 {
		metrics.ProfilesFlushed.Add(float64(saved))
	}
	if err != nil {
		return err
	}
	if w.runtime != nil {
		if err := w.runtime.PersistRuntime(ctx); err != nil {
			return err
		}
	}
	log.Info("Autosave worker shutdown complete", "final_flush", saved)
	return nil
}
