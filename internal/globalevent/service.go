package globalevent

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/catalog"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/event"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/logger"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/metrics"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/storage"
)

// Options are the scheduler knobs for the event engine.
type Options struct {
	// SchedulerEnabled gates automatic random triggering from Tick.
	SchedulerEnabled bool
	// TriggerInterval is the minimum gap between automatic triggers.
	TriggerInterval time.Duration
}

// EffectSink applies and removes an event's per-player side effects (walk
// speed, potion effects). The game-engine adapter implements it; the numeric
// multipliers are handled inside the engine and not routed through the sink.
// A nil sink is allowed.
type EffectSink interface {
	Apply(ctx context.Context, ev *domain.GlobalEvent) error
	Remove(ctx context.Context, ev *domain.GlobalEvent) error
}

// Service is the global event engine: at most one event runs at a time, its
// window survives restarts through the persisted runtime record, and its
// numeric effects are exposed as recomputed-from-neutral multipliers.
type Service interface {
	StartEvent(ctx context.Context, eventID string, broadcast, restoring bool) error
	StopActiveEvent(ctx context.Context, broadcast bool) error
	TriggerRandomEvent(ctx context.Context) (string, error)
	Tick(ctx context.Context) error
	HydrateRuntime(ctx context.Context) error

	ActiveEvent() *domain.GlobalEvent
	Current() domain.Multipliers
	MoneyMultiplier() float64
	XPMultiplier() float64
	DropRateMultiplier() float64
	MiningSpeedMultiplier() float64
	Display() string

	PersistRuntime(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type service struct {
	events    *catalog.EventCatalog
	storage   storage.Storage
	publisher event.Bus
	effects   EffectSink
	opts      Options

	// mu guards active, runtime and multipliers as one unit.
	mu          sync.Mutex
	active      *domain.GlobalEvent
	runtime     *domain.EventRuntimeState
	multipliers domain.Multipliers

	nowFn func() time.Time
	rng   *rand.Rand
}

func NewService(
	events *catalog.EventCatalog,
	store storage.Storage,
	publisher event.Bus,
	effects EffectSink,
	opts Options,
) Service {
	return &service{
		events:      events,
		storage:     store,
		publisher:   publisher,
		effects:     effects,
		opts:        opts,
		runtime:     domain.NewEventRuntimeState(),
		multipliers: neutralMultipliers(),
		nowFn:       time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec
	}
}

func neutralMultipliers() domain.Multipliers {
	return domain.Multipliers{
		Money:       NeutralMultiplier,
		XP:          NeutralMultiplier,
		DropRate:    NeutralMultiplier,
		MiningSpeed: NeutralMultiplier,
	}
}

// StartEvent activates an event. A running event is fully stopped first so
// exactly one event is active afterwards. restoring keeps the persisted window
// instead of opening a new one and suppresses the started broadcast.
func (s *service) StartEvent(ctx context.Context, eventID string, broadcast, restoring bool) error {
	ev := s.events.Get(eventID)
	if ev == nil {
		return fmt.Errorf("%w: %s", domain.ErrEventNotFound, eventID)
	}
	if !ev.Enabled {
		return fmt.Errorf("%w: %s", domain.ErrEventDisabled, ev.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()

	if s.active != nil {
		s.stopLocked(ctx, broadcast)
	}

	if restoring && s.runtime.ActiveEventID == ev.ID && s.runtime.ActiveUntil.After(now) {
		// Resume the persisted window unchanged; trigger stamps stay as they
		// were when the event originally started.
	} else {
		s.runtime.ActiveEventID = ev.ID
		s.runtime.ActiveUntil = now.Add(ev.Duration())
		s.runtime.LastGlobalTrigger = now
		s.runtime.LastTriggerTimes[ev.ID] = now
	}

	s.applyEffectsLocked(ctx, ev)
	ev.Active = true
	s.active = ev
	s.persistLocked(ctx)

	if !restoring {
		metrics.GlobalEventsStarted.WithLabelValues(ev.ID).Inc()
	}
	metrics.GlobalEventActive.Set(1)

	if s.publisher != nil {
		silent := restoring || !broadcast
		s.publisher.Publish(ctx, event.NewGlobalEventStartedEvent(ev, s.runtime.ActiveUntil, silent))
	}

	log := logger.FromContext(ctx)
	if restoring {
		log.Info(LogMsgEventResumed, "event_id", ev.ID, "active_until", s.runtime.ActiveUntil)
	} else {
		log.Info(LogMsgEventStarted, "event_id", ev.ID,
			"duration_minutes", ev.DurationMinutes, "broadcast", broadcast)
	}
	return nil
}

// StopActiveEvent ends the running event and restores the neutral baseline.
// No-op when nothing is active.
func (s *service) StopActiveEvent(ctx context.Context, broadcast bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	s.stopLocked(ctx, broadcast)
	s.persistLocked(ctx)
	return nil
}

// TriggerRandomEvent starts a uniformly random enabled event with broadcast.
func (s *service) TriggerRandomEvent(ctx context.Context) (string, error) {
	enabled := s.events.Enabled()
	if len(enabled) == 0 {
		return "", fmt.Errorf("%w: %s", domain.ErrNoEventsLoaded, ErrMsgNoEnabledEvents)
	}

	s.mu.Lock()
	pick := enabled[s.rng.Intn(len(enabled))]
	s.mu.Unlock()

	if err := s.StartEvent(ctx, pick.ID, true, false); err != nil {
		return "", err
	}
	return pick.ID, nil
}

// Tick drives the state machine: stop an elapsed event, otherwise consider an
// automatic random trigger. Never starts a new event while one is active.
func (s *service) Tick(ctx context.Context) error {
	s.mu.Lock()
	now := s.nowFn()

	if s.active != nil {
		if !now.Before(s.runtime.ActiveUntil) {
			s.stopLocked(ctx, true)
			s.persistLocked(ctx)
		}
		s.mu.Unlock()
		return nil
	}

	due := s.opts.SchedulerEnabled &&
		(s.runtime.LastGlobalTrigger.IsZero() ||
			now.Sub(s.runtime.LastGlobalTrigger) >= s.opts.TriggerInterval)
	s.mu.Unlock()

	if !due {
		return nil
	}
	if _, err := s.TriggerRandomEvent(ctx); err != nil {
		// An empty catalog is a steady state, not a tick failure.
		logger.FromContext(ctx).Debug("Automatic event trigger skipped", "error", err)
	}
	return nil
}

// HydrateRuntime loads the persisted runtime record and resumes a still-open
// event window silently. A stale window is cleared and the cleared state
// persisted.
func (s *service) HydrateRuntime(ctx context.Context) error {
	persisted, err := s.storage.LoadEventRuntime(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgHydrateFailed, err)
	}
	if persisted == nil {
		return nil
	}

	s.mu.Lock()
	s.runtime = persisted.Clone()
	if s.runtime.LastTriggerTimes == nil {
		s.runtime.LastTriggerTimes = make(map[string]time.Time)
	}
	activeID := s.runtime.ActiveEventID
	stillOpen := activeID != "" && s.runtime.ActiveUntil.After(s.nowFn())
	s.mu.Unlock()

	if activeID == "" {
		return nil
	}

	if stillOpen {
		if err := s.StartEvent(ctx, activeID, false, true); err == nil {
			return nil
		}
		// Definition vanished or was disabled since the snapshot; fall
		// through and clear the pointer.
	}

	logger.FromContext(ctx).Info(LogMsgStaleRuntime, "event_id", activeID)
	s.mu.Lock()
	s.runtime.ActiveEventID = ""
	s.runtime.ActiveUntil = time.Time{}
	s.persistLocked(ctx)
	s.mu.Unlock()
	return nil
}

// ActiveEvent returns the running event, or nil.
func (s *service) ActiveEvent() *domain.GlobalEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Current returns the multipliers in force. Implements the quest engine's
// MultiplierSource.
func (s *service) Current() domain.Multipliers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.multipliers
}

func (s *service) MoneyMultiplier() float64       { return s.Current().Money }
func (s *service) XPMultiplier() float64          { return s.Current().XP }
func (s *service) DropRateMultiplier() float64    { return s.Current().DropRate }
func (s *service) MiningSpeedMultiplier() float64 { return s.Current().MiningSpeed }

// Display renders the banner line: the running event with minutes remaining,
// or the countdown to the next automatic trigger.
func (s *service) Display() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()

	if s.active != nil {
		remaining := s.runtime.ActiveUntil.Sub(now)
		minutes := int64(remaining.Minutes())
		if minutes < 0 {
			minutes = 0
		}
		return fmt.Sprintf(DisplayActiveFormat, s.active.Name, minutes)
	}

	if !s.opts.SchedulerEnabled {
		return DisplayIdle
	}
	next := s.opts.TriggerInterval
	if !s.runtime.LastGlobalTrigger.IsZero() {
		next = s.opts.TriggerInterval - now.Sub(s.runtime.LastGlobalTrigger)
	}
	minutes := int64(next.Minutes())
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf(DisplayUpcomingFormat, minutes)
}

// PersistRuntime forces a synchronous save of the runtime snapshot.
func (s *service) PersistRuntime(ctx context.Context) error {
	s.mu.Lock()
	snapshot := s.runtime.Clone()
	s.mu.Unlock()
	return s.storage.SaveEventRuntime(ctx, snapshot)
}

// Shutdown persists the runtime record so the window survives the restart.
func (s *service) Shutdown(ctx context.Context) error {
	return s.PersistRuntime(ctx)
}

// --- internals, caller holds s.mu ---

// applyEffectsLocked recomputes the multipliers from the neutral baseline and
// folds the event's effects in, last of a kind winning. Recomputing rather
// than accumulating keeps repeated application idempotent.
func (s *service) applyEffectsLocked(ctx context.Context, ev *domain.GlobalEvent) {
	mult := neutralMultipliers()
	for _, effect := range ev.Effects {
		switch effect.Type {
		case domain.EffectMoneyBoost:
			mult.Money = effect.Value
		case domain.EffectXPBoost:
			mult.XP = effect.Value
		case domain.EffectDropRate:
			mult.DropRate = effect.Value
		case domain.EffectMiningSpeed:
			mult.MiningSpeed = effect.Value
		}
	}
	s.multipliers = mult

	if s.effects != nil {
		if err := s.effects.Apply(ctx, ev); err != nil {
			logger.FromContext(ctx).Error("Failed to apply event effects",
				"event_id", ev.ID, "error", err)
		}
	}
}

func (s *service) stopLocked(ctx context.Context, broadcast bool) {
	ev := s.active
	if ev == nil {
		return
	}

	if s.effects != nil {
		if err := s.effects.Remove(ctx, ev); err != nil {
			logger.FromContext(ctx).Error("Failed to remove event effects",
				"event_id", ev.ID, "error", err)
		}
	}

	ev.Active = false
	s.active = nil
	s.multipliers = neutralMultipliers()
	s.runtime.ActiveEventID = ""
	s.runtime.ActiveUntil = time.Time{}
	metrics.GlobalEventActive.Set(0)

	if s.publisher != nil {
		s.publisher.Publish(ctx, event.NewGlobalEventEndedEvent(ev, !broadcast))
	}
	logger.FromContext(ctx).Info(LogMsgEventStopped, "event_id", ev.ID, "broadcast", broadcast)
}

// persistLocked saves the runtime snapshot. Storage faults are logged, never
// surfaced to the tick path.
func (s *service) persistLocked(ctx context.Context) {
	snapshot := s.runtime.Clone()
	if err := s.storage.SaveEventRuntime(ctx, snapshot); err != nil {
		logger.FromContext(ctx).Error(LogMsgRuntimeSaveFail, "error", err)
	}
}
