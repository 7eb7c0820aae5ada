package quest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/catalog"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/event"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/progress"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/storage"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/task"
)

// recordingBus captures every published event for assertions.
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

func (b *recordingBus) reset() {
	b.mu.Lock()
	b.events = nil
	b.mu.Unlock()
}

func (b *recordingBus) byType(t event.Type) []event.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []event.Event
	for _, evt := range b.events {
		if evt.Type == t {
			out = append(out, evt)
		}
	}
	return out
}

// recordingSink captures granted rewards.
type recordingSink struct {
	mu      sync.Mutex
	rewards []domain.ClaimedReward
}

func (s *recordingSink) Grant(_ context.Context, _ string, _ *domain.Quest, reward domain.ClaimedReward) error {
	s.mu.Lock()
	s.rewards = append(s.rewards, reward)
	s.mu.Unlock()
	return nil
}

// staticMultipliers is a fixed MultiplierSource.
type staticMultipliers struct{ m domain.Multipliers }

func (s staticMultipliers) Current() domain.Multipliers { return s.m }

func neutralMultipliers() staticMultipliers {
	return staticMultipliers{domain.Multipliers{Money: 1, XP: 1, DropRate: 1, MiningSpeed: 1}}
}

func fixtureQuests() []*domain.Quest {
	return []*domain.Quest{
		{
			ID: "mine_iron", Category: domain.CategoryDaily, Title: "Iron Miner",
			TaskType: "MINE_ORES", Target: 5, Repeatable: true,
			Reward: domain.Reward{XP: 100, Money: 50},
			Task:   &task.MineOres{Material: "IRON_ORE"},
		},
		{
			ID: "mine_coal", Category: domain.CategoryDaily, Title: "Coal Miner",
			TaskType: "MINE_ORES", Target: 3, Repeatable: true,
			Task: &task.MineOres{Material: "COAL_ORE"},
		},
		{
			ID: "kill_zombies", Category: domain.CategoryWeekly, Title: "Zombie Slayer",
			TaskType: "KILL_MOBS", Target: 2, Repeatable: true,
			Reward: domain.Reward{XP: 200},
			Task:   &task.KillMobs{Entity: "ZOMBIE"},
		},
		{
			ID: "legendary", Category: domain.CategoryMonthly, Title: "Legendary Feat",
			TaskType: "KILL_MOBS", Target: 1, Repeatable: false,
			Task: &task.KillMobs{Entity: "ENDER_DRAGON"},
		},
		{
			ID: "vote_quest", Category: domain.CategoryDaily, Title: "Supporter",
			TaskType: "VOTE", Target: 2, Repeatable: true,
			Task: &task.ExternalSource{SourceKey: "VOTE"},
		},
	}
}

type fixture struct {
	svc   *service
	bus   *recordingBus
	sink  *recordingSink
	store *progress.Store
	now   time.Time
}

func newFixture(t *testing.T, rules Rules) *fixture {
	t.Helper()

	quests := catalog.NewQuestCatalog()
	quests.Replace(fixtureQuests())

	if rules.QuestsPerPlayer == 0 {
		rules.QuestsPerPlayer = 3
	}
	if rules.DailyResetHours == 0 {
		rules.DailyResetHours = 24
	}
	if rules.MonthlyResetDays == 0 {
		rules.MonthlyResetDays = 30
	}
	if rules.WeeklyResetDay == 0 {
		rules.WeeklyResetDay = time.Monday
	}

	bus := &recordingBus{}
	sink := &recordingSink{}
	store := progress.NewStore(storage.NewMemoryStorage(), 8, time.Minute)

	svc := NewService(quests, store, bus, rules, sink, neutralMultipliers(), nil).(*service)

	f := &fixture{svc: svc, bus: bus, sink: sink, store: store,
		now: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)} // a Tuesday
	svc.nowFn = func() time.Time { return f.now }
	return f
}

func TestAccept(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{})

	view, err := f.svc.Accept(ctx, "p1", "MINE_IRON") // case-insensitive lookup
	require.NoError(t, err)
	assert.Equal(t, "mine_iron", view.Quest.ID)
	assert.Equal(t, 0, view.State.Progress)
	assert.False(t, view.State.ExpiresAt.IsZero(), "daily quest gets an expiry")

	// Accepting a quest already held live is a no-op success: the current
	// state comes back untouched and nothing is re-announced.
	require.NoError(t, f.svc.OnAction(ctx, "p1", domain.BlockBreakAction("IRON_ORE", 2, nil)))
	again, err := f.svc.Accept(ctx, "p1", "mine_iron")
	require.NoError(t, err)
	assert.Equal(t, 2, again.State.Progress)
	assert.Same(t, view.State, again.State)

	// Unknown quests are rejected.
	_, err = f.svc.Accept(ctx, "p1", "nope")
	assert.ErrorIs(t, err, domain.ErrQuestNotFound)

	assert.Len(t, f.bus.byType(event.QuestAccepted), 1)
}

func TestAccept_NotBoundedByCategoryCap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{QuestsPerPlayer: 2})

	// The per-category cap governs automatic top-up, not explicit accepts: a
	// player can ask for every daily even with the cap at 2.
	_, err := f.svc.Accept(ctx, "p1", "mine_iron")
	require.NoError(t, err)
	_, err = f.svc.Accept(ctx, "p1", "mine_coal")
	require.NoError(t, err)
	_, err = f.svc.Accept(ctx, "p1", "vote_quest")
	require.NoError(t, err)

	quests, err := f.svc.GetActiveQuests(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, quests, 3)
}

func TestAccept_NonRepeatableOncePerLifetime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{})

	_, err := f.svc.Accept(ctx, "p1", "legendary")
	require.NoError(t, err)
	require.NoError(t, f.svc.OnAction(ctx, "p1", domain.MobKillAction("ENDER_DRAGON", nil)))

	_, err = f.svc.Claim(ctx, "p1", "legendary")
	require.NoError(t, err)

	// Remove the claimed state via a monthly reset, then try again.
	f.now = f.now.AddDate(0, 0, 31)
	require.NoError(t, f.svc.ProcessResets(ctx, "p1", true))

	_, err = f.svc.Accept(ctx, "p1", "legendary")
	assert.ErrorIs(t, err, domain.ErrQuestNotEligible)
}

func TestAccept_PermissionGate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{})
	f.svc.permits = func(playerID, permission string) bool { return false }

	quests := catalog.NewQuestCatalog()
	gated := fixtureQuests()
	gated[0].Permission = "quests.vip"
	quests.Replace(gated)
	f.svc.quests = quests

	_, err := f.svc.Accept(ctx, "p1", "mine_iron")
	assert.ErrorIs(t, err, domain.ErrQuestNotEligible)
}

func TestOnAction_ProgressAndCompletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{})

	_, err := f.svc.Accept(ctx, "p1", "mine_iron")
	require.NoError(t, err)

	// Non-matching material does nothing.
	require.NoError(t, f.svc.OnAction(ctx, "p1", domain.BlockBreakAction("DIRT", 1, nil)))
	view, err := f.svc.CheckProgress(ctx, "p1", "mine_iron")
	require.NoError(t, err)
	assert.Equal(t, 0, view.State.Progress)

	require.NoError(t, f.svc.OnAction(ctx, "p1", domain.BlockBreakAction("IRON_ORE", 3, nil)))
	view, err = f.svc.CheckProgress(ctx, "p1", "mine_iron")
	require.NoError(t, err)
	assert.Equal(t, 3, view.State.Progress)
	assert.False(t, view.State.Completed)

	// Overshoot clamps to target and completes exactly once.
	require.NoError(t, f.svc.OnAction(ctx, "p1", domain.BlockBreakAction("IRON_ORE", 10, nil)))
	view, err = f.svc.CheckProgress(ctx, "p1", "mine_iron")
	require.NoError(t, err)
	assert.Equal(t, 5, view.State.Progress)
	assert.True(t, view.State.Completed)
	assert.Equal(t, f.now, view.State.CompletedAt)

	// Further actions are no-ops for the completed state.
	require.NoError(t, f.svc.OnAction(ctx, "p1", domain.BlockBreakAction("IRON_ORE", 1, nil)))
	view, err = f.svc.CheckProgress(ctx, "p1", "mine_iron")
	require.NoError(t, err)
	assert.Equal(t, 5, view.State.Progress)

	assert.Len(t, f.bus.byType(event.QuestCompleted), 1, "completion fires once")

	// Completion landed in history.
	history, err := f.svc.GetHistory(ctx, "p1")
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, "mine_iron", history[0].QuestID)
	assert.Equal(t, domain.HistoryCompleted, history[0].Status)
}

func TestClaim(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{XPMultiplier: 2, MoneyMultiplier: 1})

	_, err := f.svc.Accept(ctx, "p1", "mine_iron")
	require.NoError(t, err)

	// Claiming before completion is rejected.
	_, err = f.svc.Claim(ctx, "p1", "mine_iron")
	assert.ErrorIs(t, err, domain.ErrQuestNotReady)

	require.NoError(t, f.svc.OnAction(ctx, "p1", domain.BlockBreakAction("IRON_ORE", 5, nil)))

	reward, err := f.svc.Claim(ctx, "p1", "mine_iron")
	require.NoError(t, err)
	assert.Equal(t, 200.0, reward.XP, "configured multiplier applies")
	assert.Equal(t, 50.0, reward.Money)
	require.Len(t, f.sink.rewards, 1)

	// Double claim is rejected and grants nothing more.
	_, err = f.svc.Claim(ctx, "p1", "mine_iron")
	assert.ErrorIs(t, err, domain.ErrQuestNotReady)
	assert.Len(t, f.sink.rewards, 1)

	history, err := f.svc.GetHistory(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.HistoryClaimed, history[0].Status)
}

func TestClaim_EventBoostsApply(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{})
	f.svc.multipliers = staticMultipliers{domain.Multipliers{Money: 3, XP: 2, DropRate: 1, MiningSpeed: 1}}

	_, err := f.svc.Accept(ctx, "p1", "mine_iron")
	require.NoError(t, err)
	require.NoError(t, f.svc.OnAction(ctx, "p1", domain.BlockBreakAction("IRON_ORE", 5, nil)))

	reward, err := f.svc.Claim(ctx, "p1", "mine_iron")
	require.NoError(t, err)
	assert.Equal(t, 200.0, reward.XP)
	assert.Equal(t, 150.0, reward.Money)
}

func TestRecordExternalProgress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{})

	_, err := f.svc.Accept(ctx, "p1", "vote_quest")
	require.NoError(t, err)

	require.NoError(t, f.svc.RecordExternalProgress(ctx, "p1", "vote", 1))
	require.NoError(t, f.svc.RecordExternalProgress(ctx, "p1", "VOTE", 1))

	view, err := f.svc.CheckProgress(ctx, "p1", "vote_quest")
	require.NoError(t, err)
	assert.True(t, view.State.Completed)
}

func TestExpiredStateSweep_IncompleteDroppedSilently(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{DailyResetHours: 24})

	_, err := f.svc.Accept(ctx, "p1", "mine_iron")
	require.NoError(t, err)
	require.NoError(t, f.svc.OnAction(ctx, "p1", domain.BlockBreakAction("IRON_ORE", 2, nil)))

	// Jump past the daily expiry without crossing a reset boundary check.
	f.now = f.now.Add(25 * time.Hour)

	_, err = f.svc.CheckProgress(ctx, "p1", "mine_iron")
	assert.ErrorIs(t, err, domain.ErrQuestNotFound, "expired state is swept")

	// An unfinished quest just runs out; only forfeited rewards are logged.
	history, err := f.svc.GetHistory(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestExpiredStateSweep_UnclaimedCompletionForfeited(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{DailyResetHours: 24})

	_, err := f.svc.Accept(ctx, "p1", "mine_iron")
	require.NoError(t, err)
	require.NoError(t, f.svc.OnAction(ctx, "p1", domain.BlockBreakAction("IRON_ORE", 5, nil)))

	f.now = f.now.Add(25 * time.Hour)

	_, err = f.svc.CheckProgress(ctx, "p1", "mine_iron")
	assert.ErrorIs(t, err, domain.ErrQuestNotFound)

	// Completed but never claimed: the sweep records the forfeit.
	history, err := f.svc.GetHistory(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.HistoryExpired, history[0].Status)
	assert.Equal(t, "Iron Miner", history[0].Title)
	assert.Equal(t, domain.HistoryCompleted, history[1].Status)
}

func TestProcessResets_Daily(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{DailyResetHours: 24, QuestsPerPlayer: 2})

	require.NoError(t, f.svc.HandlePlayerJoin(ctx, "p1"))
	quests, err := f.svc.GetActiveQuests(ctx, "p1")
	require.NoError(t, err)

	daily := 0
	for _, view := range quests {
		if view.Quest.Category == domain.CategoryDaily {
			daily++
		}
	}
	assert.Equal(t, 2, daily, "join assigns up to the cap")
	f.bus.reset()

	// Within the window nothing resets.
	f.now = f.now.Add(2 * time.Hour)
	require.NoError(t, f.svc.ProcessResets(ctx, "p1", true))
	assert.Empty(t, f.bus.byType(event.QuestsReset))

	profile, _ := f.store.Get("p1")
	lastDaily := profile.LastDailyReset

	f.now = f.now.Add(23 * time.Hour)
	require.NoError(t, f.svc.ProcessResets(ctx, "p1", true))

	profile, _ = f.store.Get("p1")
	assert.True(t, profile.LastDailyReset.After(lastDaily), "daily reset stamped")
	resets := f.bus.byType(event.QuestsReset)
	require.NotEmpty(t, resets)
}

func TestProcessResets_WeeklyOnlyOnResetDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{WeeklyResetDay: time.Monday, Location: time.UTC})

	require.NoError(t, f.svc.HandlePlayerJoin(ctx, "p1"))
	profile, _ := f.store.Get("p1")
	// Join on a Tuesday: weekly not due, no weekly stamp yet.
	assert.True(t, profile.LastWeeklyReset.IsZero())

	// Advance to the following Monday.
	f.now = time.Date(2026, 2, 16, 8, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, f.now.Weekday())
	require.NoError(t, f.svc.ProcessResets(ctx, "p1", true))

	profile, _ = f.store.Get("p1")
	firstStamp := profile.LastWeeklyReset
	assert.False(t, firstStamp.IsZero())

	// Later the same Monday: same local date, not due again.
	f.now = f.now.Add(6 * time.Hour)
	require.NoError(t, f.svc.ProcessResets(ctx, "p1", true))
	profile, _ = f.store.Get("p1")
	assert.Equal(t, firstStamp, profile.LastWeeklyReset)

	// Next Monday: due again.
	f.now = f.now.AddDate(0, 0, 7)
	require.NoError(t, f.svc.ProcessResets(ctx, "p1", true))
	profile, _ = f.store.Get("p1")
	assert.True(t, profile.LastWeeklyReset.After(firstStamp))
}

func TestProcessResets_ReplacesIncompleteSilently(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{DailyResetHours: 24, QuestsPerPlayer: 1})

	_, err := f.svc.Accept(ctx, "p1", "mine_iron")
	require.NoError(t, err)
	require.NoError(t, f.svc.OnAction(ctx, "p1", domain.BlockBreakAction("IRON_ORE", 2, nil)))

	f.now = f.now.Add(25 * time.Hour)
	require.NoError(t, f.svc.ProcessResets(ctx, "p1", true))

	// Unfinished work leaves no trace in history.
	history, err := f.svc.GetHistory(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, history)

	// A fresh daily assignment replaced the old one.
	quests, err := f.svc.GetActiveQuests(ctx, "p1")
	require.NoError(t, err)
	daily := 0
	for _, view := range quests {
		if view.Quest.Category == domain.CategoryDaily {
			daily++
			assert.Equal(t, 0, view.State.Progress)
		}
	}
	assert.Equal(t, 1, daily)
}

func TestProcessResets_ResetForfeitsUnclaimedCompletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{})

	_, err := f.svc.Accept(ctx, "p1", "legendary")
	require.NoError(t, err)
	require.NoError(t, f.svc.OnAction(ctx, "p1", domain.MobKillAction("ENDER_DRAGON", nil)))

	// The monthly category was never stamped, so the first reset call clears
	// it while the completed state is still far from its own expiry.
	require.NoError(t, f.svc.ProcessResets(ctx, "p1", false))

	_, err = f.svc.CheckProgress(ctx, "p1", "legendary")
	assert.ErrorIs(t, err, domain.ErrQuestNotFound)

	history, err := f.svc.GetHistory(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.HistoryExpired, history[0].Status, "unclaimed reward forfeited")
	assert.Equal(t, domain.HistoryCompleted, history[1].Status)
}

func TestHandlePlayerQuitPersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{})

	_, err := f.svc.Accept(ctx, "p1", "mine_iron")
	require.NoError(t, err)
	require.NoError(t, f.svc.OnAction(ctx, "p1", domain.BlockBreakAction("IRON_ORE", 2, nil)))
	require.NoError(t, f.svc.HandlePlayerQuit(ctx, "p1"))

	_, loaded := f.store.Get("p1")
	assert.False(t, loaded)

	// Progress survives the round trip.
	view, err := f.svc.CheckProgress(ctx, "p1", "mine_iron")
	require.NoError(t, err)
	assert.Equal(t, 2, view.State.Progress)
}

func TestGetActiveQuests_SortedAndLive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{QuestsPerPlayer: 3})

	_, err := f.svc.Accept(ctx, "p1", "kill_zombies")
	require.NoError(t, err)
	_, err = f.svc.Accept(ctx, "p1", "mine_iron")
	require.NoError(t, err)
	_, err = f.svc.Accept(ctx, "p1", "mine_coal")
	require.NoError(t, err)

	quests, err := f.svc.GetActiveQuests(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, quests, 3)
	assert.Equal(t, "mine_coal", quests[0].Quest.ID, "dailies sort before weeklies, ids tie-break")
	assert.Equal(t, "mine_iron", quests[1].Quest.ID)
	assert.Equal(t, "kill_zombies", quests[2].Quest.ID)
}

func TestHistoryCap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{})

	profile, err := f.store.Load(ctx, "p1")
	require.NoError(t, err)
	for i := 0; i < domain.HistoryCap+10; i++ {
		profile.AddHistory(domain.HistoryEntry{
			QuestID:   "q",
			Title:     "Q",
			Timestamp: f.now.Add(time.Duration(i) * time.Minute),
			Status:    domain.HistoryCompleted,
		})
	}

	history, err := f.svc.GetHistory(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, history, domain.HistoryCap)
	assert.True(t, history[0].Timestamp.After(history[len(history)-1].Timestamp),
		"most recent first")
}

// vetoProvider is a keyed eligibility hook that records the order it was
// consulted in.
type vetoProvider struct {
	label string
	allow bool
	calls *[]string
}

func (p *vetoProvider) CanAccept(string, *domain.Quest) bool {
	*p.calls = append(*p.calls, p.label)
	return p.allow
}

func TestEligibilityProviders_OrderAndShortCircuit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{})

	var calls []string
	f.svc.RegisterEligibilityProvider("party", &vetoProvider{label: "party", allow: true, calls: &calls})
	f.svc.RegisterEligibilityProvider("region", &vetoProvider{label: "region", allow: false, calls: &calls})
	f.svc.RegisterEligibilityProvider("season", &vetoProvider{label: "season", allow: true, calls: &calls})

	_, err := f.svc.Accept(ctx, "p1", "mine_iron")
	assert.ErrorIs(t, err, domain.ErrQuestNotEligible)
	assert.Equal(t, []string{"party", "region"}, calls, "first rejection short-circuits")

	calls = nil
	f.svc.UnregisterEligibilityProvider("region")
	_, err = f.svc.Accept(ctx, "p1", "mine_iron")
	require.NoError(t, err)
	assert.Equal(t, []string{"party", "season"}, calls, "registration order preserved")
}

func TestEligibilityProviders_ReregisterKeepsSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{})

	var calls []string
	f.svc.RegisterEligibilityProvider("party", &vetoProvider{label: "old", allow: true, calls: &calls})
	f.svc.RegisterEligibilityProvider("region", &vetoProvider{label: "region", allow: true, calls: &calls})
	f.svc.RegisterEligibilityProvider("party", &vetoProvider{label: "new", allow: false, calls: &calls})

	_, err := f.svc.Accept(ctx, "p1", "mine_iron")
	assert.ErrorIs(t, err, domain.ErrQuestNotEligible)
	assert.Equal(t, []string{"new"}, calls, "swapped provider runs in the original slot")
}

func TestEligibilityProviders_VetoBlocksAutomaticAssignment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{})

	var calls []string
	f.svc.RegisterEligibilityProvider("lockdown", &vetoProvider{label: "lockdown", allow: false, calls: &calls})

	require.NoError(t, f.svc.HandlePlayerJoin(ctx, "p1"))

	quests, err := f.svc.GetActiveQuests(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, quests, "vetoed players receive no automatic assignments")
	assert.NotEmpty(t, calls)
}

func countDailies(t *testing.T, ctx context.Context, f *fixture, playerID string) int {
	t.Helper()
	quests, err := f.svc.GetActiveQuests(ctx, playerID)
	require.NoError(t, err)
	daily := 0
	for _, view := range quests {
		if view.Quest.Category == domain.CategoryDaily {
			daily++
		}
	}
	return daily
}

func TestProcessResets_RefillsFreedSlotMidCycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{DailyResetHours: 24, QuestsPerPlayer: 2})

	require.NoError(t, f.svc.HandlePlayerJoin(ctx, "p1"))
	require.Equal(t, 2, countDailies(t, ctx, f, "p1"))

	// Shorten one daily so it runs out long before the category reset is due.
	profile, ok := f.store.Get("p1")
	require.True(t, ok)
	shortened := false
	for _, state := range profile.States {
		if state.Category == domain.CategoryDaily {
			state.ExpiresAt = f.now.Add(time.Hour)
			shortened = true
			break
		}
	}
	require.True(t, shortened)
	f.bus.reset()

	f.now = f.now.Add(2 * time.Hour)

	// Without the top-up flag the freed slot stays empty.
	require.NoError(t, f.svc.ProcessResets(ctx, "p1", false))
	assert.Equal(t, 1, countDailies(t, ctx, f, "p1"))

	// With it the sweep refills to the cap even though no reset fired.
	require.NoError(t, f.svc.ProcessResets(ctx, "p1", true))
	assert.Empty(t, f.bus.byType(event.QuestsReset))
	assert.Equal(t, 2, countDailies(t, ctx, f, "p1"))
}

func TestProcessResets_IdempotentBackToBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Rules{DailyResetHours: 24, QuestsPerPlayer: 2})

	require.NoError(t, f.svc.HandlePlayerJoin(ctx, "p1"))
	f.now = f.now.Add(25 * time.Hour)
	require.NoError(t, f.svc.ProcessResets(ctx, "p1", true))

	profile, ok := f.store.Get("p1")
	require.True(t, ok)
	stamp := profile.LastDailyReset
	historyLen := len(profile.History)

	before, err := f.svc.GetActiveQuests(ctx, "p1")
	require.NoError(t, err)
	f.bus.reset()

	// The second call with nothing due must change nothing.
	require.NoError(t, f.svc.ProcessResets(ctx, "p1", true))

	profile, _ = f.store.Get("p1")
	assert.Equal(t, stamp, profile.LastDailyReset)
	assert.Len(t, profile.History, historyLen)

	after, err := f.svc.GetActiveQuests(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Quest.ID, after[i].Quest.ID)
		assert.Equal(t, before[i].State.Progress, after[i].State.Progress)
	}

	assert.Empty(t, f.bus.byType(event.QuestsReset))
	assert.Empty(t, f.bus.byType(event.QuestAccepted))
}
