package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/catalog"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/config"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/database"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/event"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/globalevent"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/handler"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/logger"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/metrics"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/progress"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/quest"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/scheduler"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/server"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/storage"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/task"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/worker"
)

const (
	shutdownTimeout = 15 * time.Second

	poolWorkers   = 4
	poolQueueSize = 64
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logger.ProductionConfig()
	logCfg.Level = cfg.LogLevel
	logger.Init(logCfg)

	ctx := context.Background()

	backend, checker, err := buildStorage(ctx, cfg)
	if err != nil {
		return err
	}

	// The dead-letter file lives under DataDir regardless of storage mode.
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	// Event bus with retries; publish failures never reach the engine.
	bus := event.NewMemoryBus()
	publisher, err := event.NewResilientPublisher(bus, event.RetryMaxAttempts,
		event.RetryInitialDelaySeconds*time.Second,
		filepath.Join(cfg.DataDir, "dead_letter.jsonl"))
	if err != nil {
		return fmt.Errorf("failed to create publisher: %w", err)
	}

	collector := metrics.NewEventMetricsCollector()
	if err := collector.Register(bus); err != nil {
		return fmt.Errorf("failed to register event metrics: %w", err)
	}

	// Catalogs and initial definition load
	parser := catalog.NewParser(task.NewRegistry(), cfg.DefaultQuestPerm)
	questCatalog := catalog.NewQuestCatalog()
	eventCatalog := catalog.NewEventCatalog()

	questSections, err := backend.LoadQuestDefinitions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load quest definitions: %w", err)
	}
	eventSections, err := backend.LoadEventDefinitions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load event definitions: %w", err)
	}
	questCatalog.Replace(parser.ParseQuests(ctx, questSections))
	eventCatalog.Replace(parser.ParseEvents(ctx, eventSections))
	logger.Info("Definitions loaded", "quests", questCatalog.Len(), "events", eventCatalog.Len())

	store := progress.NewStore(backend, progress.DefaultCacheSize, progress.DefaultCacheTTL)

	// Global event engine, rehydrated before anything can observe multipliers
	eventService := globalevent.NewService(eventCatalog, backend, publisher, nil, globalevent.Options{
		SchedulerEnabled: cfg.SchedulerEnabled,
		TriggerInterval:  time.Duration(cfg.EventIntervalMinutes) * time.Minute,
	})
	if err := eventService.HydrateRuntime(ctx); err != nil {
		return fmt.Errorf("failed to hydrate event runtime: %w", err)
	}

	questService := quest.NewService(questCatalog, store, publisher, quest.Rules{
		DailyResetHours:  cfg.DailyResetHours,
		WeeklyResetDay:   cfg.ResetWeekday(),
		MonthlyResetDays: cfg.MonthlyResetDays,
		Location:         cfg.ResetLocation(),
		QuestsPerPlayer:  cfg.QuestsPerPlayer,
		XPMultiplier:     cfg.XPMultiplier,
		MoneyMultiplier:  cfg.MoneyMultiplier,
	}, quest.LogRewardSink{}, eventService, nil)

	// Background machinery: pool for sweep/tick jobs, autosave for persistence
	pool := worker.NewPool(poolWorkers, poolQueueSize)
	pool.Start()

	sched := scheduler.New(pool)
	sched.Schedule(time.Duration(cfg.EventTickSeconds)*time.Second, &worker.EventTickJob{Events: eventService})
	sched.Schedule(time.Minute, &worker.ResetSweepJob{Quests: questService, Store: store})

	var autosave *worker.AutosaveWorker
	if cfg.AutosaveSeconds > 0 {
		autosave = worker.NewAutosaveWorker(store, eventService, time.Duration(cfg.AutosaveSeconds)*time.Second)
		autosave.Start()
	}

	srv := server.NewServer(cfg.Port, cfg.APIKey, nil, server.Deps{
		Quests:  handler.NewQuestHandler(questService),
		Events:  handler.NewEventHandler(eventService, eventCatalog),
		Admin:   handler.NewAdminHandler(parser, questCatalog, eventCatalog, store, backend),
		Checker: checker,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}

	sched.Stop()
	pool.Stop()
	if autosave != nil {
		if err := autosave.Shutdown(shutdownCtx); err != nil {
			logger.Error("Autosave shutdown failed", "error", err)
		}
	}

	// Final flushes: profiles first, then the event runtime record
	if err := questService.Shutdown(shutdownCtx); err != nil {
		logger.Error("Quest engine shutdown failed", "error", err)
	}
	if err := eventService.Shutdown(shutdownCtx); err != nil {
		logger.Error("Event engine shutdown failed", "error", err)
	}
	if err := publisher.Shutdown(shutdownCtx); err != nil {
		logger.Error("Publisher shutdown failed", "error", err)
	}
	if err := backend.Close(shutdownCtx); err != nil {
		logger.Error("Storage close failed", "error", err)
	}

	logger.Info("Shutdown complete")
	return nil
}

// buildStorage picks the backend from config. The health checker is nil for
// backends that cannot meaningfully fail a readiness probe.
func buildStorage(ctx context.Context, cfg *config.Config) (storage.Storage, handler.HealthChecker, error) {
	switch cfg.StorageMode {
	case config.StorageModePostgres:
		pool, err := database.NewDefaultPool(cfg.GetDBConnString())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		pg, err := storage.NewPostgresStorage(ctx, pool)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg, nil
	case config.StorageModeMemory:
		return storage.NewMemoryStorage(), nil, nil
	default:
		fs, err := storage.NewFileStorage(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open data dir: %w", err)
		}
		return fs, nil, nil
	}
}
