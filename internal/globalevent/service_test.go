package globalevent

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/catalog"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/event"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/storage"
)

type recordingBus struct {
	mu     sync.Mutex
	events []event.Event
}

func (b *recordingBus) Publish(_ context.Context, evt event.Event) error {
	b.mu.Lock()
	b.events = append(b.events, evt)
	b.mu.Unlock()
	return nil
}

func (b *recordingBus) Subscribe(event.Type, event.Handler) {}

func (b *recordingBus) payloads(t event.Type) []event.GlobalEventPayloadV1 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []event.GlobalEventPayloadV1
	for _, evt := range b.events {
		if evt.Type != t {
			continue
		}
		if p, ok := evt.Payload.(event.GlobalEventPayloadV1); ok {
			out = append(out, p)
		}
	}
	return out
}

type recordingSink struct {
	mu      sync.Mutex
	applied []string
	removed []string
}

func (s *recordingSink) Apply(_ context.Context, ev *domain.GlobalEvent) error {
	s.mu.Lock()
	s.applied = append(s.applied, ev.ID)
	s.mu.Unlock()
	return nil
}

func (s *recordingSink) Remove(_ context.Context, ev *domain.GlobalEvent) error {
	s.mu.Lock()
	s.removed = append(s.removed, ev.ID)
	s.mu.Unlock()
	return nil
}

func fixtureEvents() []*domain.GlobalEvent {
	return []*domain.GlobalEvent{
		{
			ID: "harvest", Name: "Harvest Festival", DurationMinutes: 10, Enabled: true,
			Effects: []domain.Effect{
				{Type: domain.EffectMoneyBoost, Value: 2},
				{Type: domain.EffectXPBoost, Value: 1.5},
				// Last effect of a kind wins.
				{Type: domain.EffectMoneyBoost, Value: 3},
			},
		},
		{
			ID: "gold_rush", Name: "Gold Rush", DurationMinutes: 5, Enabled: true,
			Effects: []domain.Effect{
				{Type: domain.EffectDropRate, Value: 2},
				{Type: domain.EffectMiningSpeed, Value: 1.25},
			},
		},
		{
			ID: "maintenance", Name: "Maintenance", DurationMinutes: 5, Enabled: false,
		},
	}
}

type fixture struct {
	svc     *service
	bus     *recordingBus
	sink    *recordingSink
	backend *storage.MemoryStorage
	now     time.Time
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	events := catalog.NewEventCatalog()
	events.Replace(fixtureEvents())

	bus := &recordingBus{}
	sink := &recordingSink{}
	backend := storage.NewMemoryStorage()

	svc := NewService(events, backend, bus, sink, opts).(*service)
	f := &fixture{svc: svc, bus: bus, sink: sink, backend: backend,
		now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc.nowFn = func() time.Time { return f.now }
	svc.rng = rand.New(rand.NewSource(1)) //nolint:gosec
	return f
}

func TestStartEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	require.NoError(t, f.svc.StartEvent(ctx, "HARVEST", true, false))

	active := f.svc.ActiveEvent()
	require.NotNil(t, active)
	assert.Equal(t, "harvest", active.ID)
	assert.True(t, active.Active)

	mult := f.svc.Current()
	assert.Equal(t, 3.0, mult.Money, "last money effect wins")
	assert.Equal(t, 1.5, mult.XP)
	assert.Equal(t, 1.0, mult.DropRate, "untouched kinds stay neutral")
	assert.Equal(t, 1.0, mult.MiningSpeed)

	started := f.bus.payloads(event.GlobalEventStarted)
	require.Len(t, started, 1)
	assert.Equal(t, "harvest", started[0].EventID)
	assert.False(t, started[0].Silent)
	assert.Equal(t, f.now.Add(10*time.Minute).UnixMilli(), started[0].EndsAt)

	// The window is persisted immediately.
	runtime, err := f.backend.LoadEventRuntime(ctx)
	require.NoError(t, err)
	require.NotNil(t, runtime)
	assert.Equal(t, "harvest", runtime.ActiveEventID)
	assert.Equal(t, f.now.Add(10*time.Minute), runtime.ActiveUntil)
	assert.Equal(t, f.now, runtime.LastTriggerTimes["harvest"])
}

func TestStartEvent_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	err := f.svc.StartEvent(ctx, "unknown", true, false)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)

	err = f.svc.StartEvent(ctx, "maintenance", true, false)
	assert.ErrorIs(t, err, domain.ErrEventDisabled)

	assert.Nil(t, f.svc.ActiveEvent())
}

func TestStartEvent_ReplacesActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	require.NoError(t, f.svc.StartEvent(ctx, "harvest", true, false))
	harvest := f.svc.ActiveEvent()

	require.NoError(t, f.svc.StartEvent(ctx, "gold_rush", true, false))

	active := f.svc.ActiveEvent()
	require.NotNil(t, active)
	assert.Equal(t, "gold_rush", active.ID)
	assert.False(t, harvest.Active, "old event fully stopped")

	// Old effects removed before new applied, never overlapping.
	assert.Equal(t, []string{"harvest", "gold_rush"}, f.sink.applied)
	assert.Equal(t, []string{"harvest"}, f.sink.removed)

	mult := f.svc.Current()
	assert.Equal(t, 1.0, mult.Money, "harvest boost gone")
	assert.Equal(t, 2.0, mult.DropRate)

	assert.Len(t, f.bus.payloads(event.GlobalEventEnded), 1)
}

func TestStopActiveEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	// No-op when idle.
	require.NoError(t, f.svc.StopActiveEvent(ctx, true))
	assert.Empty(t, f.bus.payloads(event.GlobalEventEnded))

	require.NoError(t, f.svc.StartEvent(ctx, "harvest", true, false))
	require.NoError(t, f.svc.StopActiveEvent(ctx, true))

	assert.Nil(t, f.svc.ActiveEvent())
	assert.Equal(t, neutralMultipliers(), f.svc.Current())

	ended := f.bus.payloads(event.GlobalEventEnded)
	require.Len(t, ended, 1)
	assert.False(t, ended[0].Silent)

	runtime, err := f.backend.LoadEventRuntime(ctx)
	require.NoError(t, err)
	require.NotNil(t, runtime)
	assert.Empty(t, runtime.ActiveEventID)
	assert.True(t, runtime.ActiveUntil.IsZero())
}

func TestTick_StopsElapsedEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	require.NoError(t, f.svc.StartEvent(ctx, "harvest", true, false))

	f.now = f.now.Add(9 * time.Minute)
	require.NoError(t, f.svc.Tick(ctx))
	assert.NotNil(t, f.svc.ActiveEvent(), "still inside the window")

	f.now = f.now.Add(2 * time.Minute)
	require.NoError(t, f.svc.Tick(ctx))
	assert.Nil(t, f.svc.ActiveEvent())
	assert.Equal(t, neutralMultipliers(), f.svc.Current())
}

func TestTick_AutoTrigger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{SchedulerEnabled: true, TriggerInterval: time.Hour})

	// Never triggered before: first tick starts something.
	require.NoError(t, f.svc.Tick(ctx))
	first := f.svc.ActiveEvent()
	require.NotNil(t, first)
	assert.True(t, first.Enabled, "disabled events are never picked")

	// While active, no replacement even past the interval.
	f.now = f.now.Add(2 * time.Minute)
	require.NoError(t, f.svc.Tick(ctx))
	assert.Equal(t, first.ID, f.svc.ActiveEvent().ID)

	// After the event ends, the interval gates the next trigger.
	f.now = f.now.Add(30 * time.Minute)
	require.NoError(t, f.svc.Tick(ctx)) // stops the elapsed event
	require.NoError(t, f.svc.Tick(ctx))
	assert.Nil(t, f.svc.ActiveEvent(), "interval not yet elapsed")

	f.now = f.now.Add(time.Hour)
	require.NoError(t, f.svc.Tick(ctx))
	assert.NotNil(t, f.svc.ActiveEvent())
}

func TestTick_SchedulerDisabled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{SchedulerEnabled: false, TriggerInterval: time.Minute})

	f.now = f.now.Add(24 * time.Hour)
	require.NoError(t, f.svc.Tick(ctx))
	assert.Nil(t, f.svc.ActiveEvent())
}

func TestHydrateRuntime_ResumesOpenWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	until := f.now.Add(5 * time.Minute)
	require.NoError(t, f.backend.SaveEventRuntime(ctx, &domain.EventRuntimeState{
		ActiveEventID:     "harvest",
		ActiveUntil:       until,
		LastGlobalTrigger: f.now.Add(-5 * time.Minute),
		LastTriggerTimes:  map[string]time.Time{"harvest": f.now.Add(-5 * time.Minute)},
	}))

	require.NoError(t, f.svc.HydrateRuntime(ctx))

	active := f.svc.ActiveEvent()
	require.NotNil(t, active)
	assert.Equal(t, "harvest", active.ID)
	assert.Equal(t, 3.0, f.svc.Current().Money, "effects reapplied")

	started := f.bus.payloads(event.GlobalEventStarted)
	require.Len(t, started, 1)
	assert.True(t, started[0].Silent, "resume does not re-broadcast")
	assert.Equal(t, until.UnixMilli(), started[0].EndsAt, "window not re-extended")
}

func TestHydrateRuntime_ClearsStaleWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	require.NoError(t, f.backend.SaveEventRuntime(ctx, &domain.EventRuntimeState{
		ActiveEventID: "harvest",
		ActiveUntil:   f.now.Add(-time.Minute),
	}))

	require.NoError(t, f.svc.HydrateRuntime(ctx))
	assert.Nil(t, f.svc.ActiveEvent())
	assert.Empty(t, f.bus.payloads(event.GlobalEventStarted))

	runtime, err := f.backend.LoadEventRuntime(ctx)
	require.NoError(t, err)
	require.NotNil(t, runtime)
	assert.Empty(t, runtime.ActiveEventID, "cleared state persisted")
}

func TestHydrateRuntime_NoRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	require.NoError(t, f.svc.HydrateRuntime(ctx))
	assert.Nil(t, f.svc.ActiveEvent())
}

func TestTriggerRandomEvent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	id, err := f.svc.TriggerRandomEvent(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "maintenance", id, "disabled events are excluded")
	assert.Equal(t, id, f.svc.ActiveEvent().ID)
}

func TestTriggerRandomEvent_EmptyCatalog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	f.svc.events = catalog.NewEventCatalog()

	_, err := f.svc.TriggerRandomEvent(ctx)
	assert.ErrorIs(t, err, domain.ErrNoEventsLoaded)
}

func TestEffectApplicationIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})

	require.NoError(t, f.svc.StartEvent(ctx, "harvest", true, false))
	first := f.svc.Current()

	// Re-applying for the same active event recomputes, never accumulates.
	f.svc.mu.Lock()
	f.svc.applyEffectsLocked(ctx, f.svc.active)
	f.svc.mu.Unlock()

	assert.Equal(t, first, f.svc.Current())
}

func TestDisplay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{SchedulerEnabled: true, TriggerInterval: 30 * time.Minute})

	assert.Equal(t, "Next event in 30 min", f.svc.Display())

	require.NoError(t, f.svc.StartEvent(ctx, "harvest", true, false))
	f.now = f.now.Add(3 * time.Minute)
	assert.Equal(t, "Harvest Festival - 7 min remaining", f.svc.Display())

	require.NoError(t, f.svc.StopActiveEvent(ctx, false))
	assert.Equal(t, "Next event in 27 min", f.svc.Display())
}
