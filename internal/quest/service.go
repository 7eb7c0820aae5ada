package quest

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/catalog"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/event"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/logger"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/metrics"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/progress"
)

// Rules are the reset and assignment knobs the engine runs under.
type Rules struct {
	DailyResetHours  int // 0 means daily quests are always due
	WeeklyResetDay   time.Weekday
	MonthlyResetDays int
	Location         *time.Location
	QuestsPerPlayer  int
	XPMultiplier     float64
	MoneyMultiplier  float64
}

// RewardSink receives the payout when a player claims a completed quest.
// The game-engine adapter implements this; tests use a recording fake.
type RewardSink interface {
	Grant(ctx context.Context, playerID string, quest *domain.Quest, reward domain.ClaimedReward) error
}

// MultiplierSource exposes the reward multipliers currently in force from the
// global event engine.
type MultiplierSource interface {
	Current() domain.Multipliers
}

// PermissionChecker gates quest assignment on an external permission system.
// A nil checker allows everything.
type PermissionChecker func(playerID, permission string) bool

// EligibilityProvider lets an external system veto quest assignment for a
// player (party plugins, region locks, season passes). Providers are keyed so
// an integration can remove its own hook on teardown.
type EligibilityProvider interface {
	CanAccept(playerID string, quest *domain.Quest) bool
}

type registeredProvider struct {
	key      string
	provider EligibilityProvider
}

type Service interface {
	// Player lifecycle
	HandlePlayerJoin(ctx context.Context, playerID string) error
	HandlePlayerQuit(ctx context.Context, playerID string) error

	// Quest operations
	Accept(ctx context.Context, playerID, questID string) (*domain.QuestProgressView, error)
	Claim(ctx context.Context, playerID, questID string) (domain.ClaimedReward, error)
	CheckProgress(ctx context.Context, playerID, questID string) (*domain.QuestProgressView, error)
	GetActiveQuests(ctx context.Context, playerID string) ([]domain.QuestProgressView, error)
	GetHistory(ctx context.Context, playerID string) ([]domain.HistoryEntry, error)

	// Progress tracking (called by the action ingress and integrations)
	OnAction(ctx context.Context, playerID string, action domain.Action) error
	RecordExternalProgress(ctx context.Context, playerID, sourceKey string, amount int) error

	// Resets (called on join and by the scheduler)
	ProcessResets(ctx context.Context, playerID string, assignIfMissing bool) error

	// Eligibility vetoes (registered by integrations, evaluated in
	// registration order)
	RegisterEligibilityProvider(key string, provider EligibilityProvider)
	UnregisterEligibilityProvider(key string)

	// Lifecycle
	Shutdown(ctx context.Context) error
}

type service struct {
	quests      *catalog.QuestCatalog
	store       *progress.Store
	publisher   event.Bus
	rules       Rules
	rewards     RewardSink
	multipliers MultiplierSource
	permits     PermissionChecker
	providers   []registeredProvider

	// mu serializes profile mutation; all state transitions of a profile
	// happen under it.
	mu    sync.Mutex
	nowFn func() time.Time
	rng   *rand.Rand
	rngMu sync.Mutex
}

func NewService(
	quests *catalog.QuestCatalog,
	store *progress.Store,
	publisher event.Bus,
	rules Rules,
	rewards RewardSink,
	multipliers MultiplierSource,
	permits PermissionChecker,
) Service {
	if rules.QuestsPerPlayer < 1 {
		rules.QuestsPerPlayer = 1
	}
	if rules.XPMultiplier <= 0 {
		rules.XPMultiplier = 1
	}
	if rules.MoneyMultiplier <= 0 {
		rules.MoneyMultiplier = 1
	}
	if rules.Location == nil {
		rules.Location = time.UTC
	}
	return &service{
		quests:      quests,
		store:       store,
		publisher:   publisher,
		rules:       rules,
		rewards:     rewards,
		multipliers: multipliers,
		permits:     permits,
		nowFn:       time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec
	}
}

// HandlePlayerJoin loads the profile, applies any due resets and tops up
// missing assignments.
func (s *service) HandlePlayerJoin(ctx context.Context, playerID string) error {
	log := logger.FromContext(ctx)

	profile, err := s.store.Load(ctx, playerID)
	if err != nil {
		return err
	}
	metrics.ProfilesLoaded.Set(float64(len(s.store.LoadedIDs())))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runResetPipeline(ctx, profile, s.nowFn(), true)
	s.store.MarkDirty(playerID)

	log.Info("Player joined", "player_id", playerID,
		"active_quests", len(profile.States))
	return nil
}

// HandlePlayerQuit saves the profile and releases it to the unload cache.
func (s *service) HandlePlayerQuit(ctx context.Context, playerID string) error {
	if err := s.store.Unload(ctx, playerID); err != nil {
		return err
	}
	metrics.ProfilesLoaded.Set(float64(len(s.store.LoadedIDs())))
	return nil
}

// Accept assigns a quest to the player on request. The quest must exist, not
// be a finished non-repeatable, and pass the eligibility chain. Accepting a
// quest the player already holds live hands back the current state untouched.
func (s *service) Accept(ctx context.Context, playerID, questID string) (*domain.QuestProgressView, error) {
	quest := s.quests.Get(questID)
	if quest == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrQuestNotFound, questID)
	}

	profile, err := s.store.Load(ctx, playerID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()
	s.sweepExpired(ctx, profile, now)

	if state := profile.State(quest.ID); state != nil {
		return &domain.QuestProgressView{Quest: quest, State: state}, nil
	}
	if !quest.Repeatable && profile.HasCompleted(quest.ID) {
		return nil, fmt.Errorf("%w: %s is not repeatable", domain.ErrQuestNotEligible, quest.ID)
	}
	if !s.eligible(playerID, quest) {
		return nil, fmt.Errorf("%w: %s", domain.ErrQuestNotEligible, quest.ID)
	}

	state := s.assign(ctx, profile, quest, now)
	s.store.MarkDirty(playerID)

	return &domain.QuestProgressView{Quest: quest, State: state}, nil
}

// OnAction routes a gameplay action through every live quest state.
func (s *service) OnAction(ctx context.Context, playerID string, action domain.Action) error {
	profile, err := s.store.Load(ctx, playerID)
	if err != nil {
		return err
	}

	metrics.ActionsProcessed.WithLabelValues(string(action.Type)).Inc()

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()
	s.sweepExpired(ctx, profile, now)

	changed := false
	for _, state := range s.sortedStates(profile) {
		if state.Completed || state.Claimed {
			continue
		}
		quest := s.quests.Get(state.QuestID)
		if quest == nil || quest.Task == nil || !quest.Task.Matches(action) {
			continue
		}

		before := state.Progress
		after := state.Increment(quest.Task.ProgressAmount(action), now)
		if after == before {
			continue
		}
		changed = true

		if s.publisher != nil {
			s.publisher.Publish(ctx, event.NewQuestProgressEvent(playerID, quest.ID, after, state.Target))
		}

		if state.Completed {
			profile.AddHistory(domain.HistoryEntry{
				QuestID:   quest.ID,
				Title:     quest.Title,
				Timestamp: now,
				Status:    domain.HistoryCompleted,
			})
			metrics.QuestsCompleted.WithLabelValues(string(quest.Category)).Inc()
			if s.publisher != nil {
				s.publisher.Publish(ctx, event.NewQuestCompletedEvent(playerID, quest))
			}
			logger.FromContext(ctx).Info("Quest completed",
				"player_id", playerID, "quest_id", quest.ID)
		}
	}

	if changed {
		s.store.MarkDirty(playerID)
	}
	return nil
}

// RecordExternalProgress feeds progress from an out-of-game source (web
// shop, mini-game, API integration) into matching external-source quests.
func (s *service) RecordExternalProgress(ctx context.Context, playerID, sourceKey string, amount int) error {
	return s.OnAction(ctx, playerID, domain.ExternalAction(sourceKey, amount))
}

// Claim pays out a completed quest exactly once.
func (s *service) Claim(ctx context.Context, playerID, questID string) (domain.ClaimedReward, error) {
	quest := s.quests.Get(questID)
	if quest == nil {
		return domain.ClaimedReward{}, fmt.Errorf("%w: %s", domain.ErrQuestNotFound, questID)
	}

	profile, err := s.store.Load(ctx, playerID)
	if err != nil {
		return domain.ClaimedReward{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()

	state := profile.State(quest.ID)
	if state == nil {
		return domain.ClaimedReward{}, fmt.Errorf("%w: %s is not active", domain.ErrQuestNotFound, quest.ID)
	}
	if !state.Completed || state.Claimed {
		return domain.ClaimedReward{}, fmt.Errorf("%w: %s", domain.ErrQuestNotReady, quest.ID)
	}

	reward := quest.EffectiveReward(s.multiplierContext())
	if s.rewards != nil {
		if err := s.rewards.Grant(ctx, playerID, quest, reward); err != nil {
			return domain.ClaimedReward{}, fmt.Errorf("failed to grant reward: %w", err)
		}
	}

	state.Claimed = true
	profile.AddHistory(domain.HistoryEntry{
		QuestID:   quest.ID,
		Title:     quest.Title,
		Timestamp: now,
		Status:    domain.HistoryClaimed,
	})
	s.store.MarkDirty(playerID)
	metrics.QuestsClaimed.WithLabelValues(string(quest.Category)).Inc()

	if s.publisher != nil {
		s.publisher.Publish(ctx, event.NewQuestClaimedEvent(playerID, quest, reward))
	}
	logger.FromContext(ctx).Info("Quest reward claimed",
		"player_id", playerID, "quest_id", quest.ID, "xp", reward.XP, "money", reward.Money)
	return reward, nil
}

// CheckProgress returns the live view of one quest.
func (s *service) CheckProgress(ctx context.Context, playerID, questID string) (*domain.QuestProgressView, error) {
	quest := s.quests.Get(questID)
	if quest == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrQuestNotFound, questID)
	}

	profile, err := s.store.Load(ctx, playerID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepExpired(ctx, profile, s.nowFn())

	state := profile.State(quest.ID)
	if state == nil {
		return nil, fmt.Errorf("%w: %s is not active", domain.ErrQuestNotFound, quest.ID)
	}
	return &domain.QuestProgressView{Quest: quest, State: state}, nil
}

// GetActiveQuests returns every live assignment, sorted by category then id.
func (s *service) GetActiveQuests(ctx context.Context, playerID string) ([]domain.QuestProgressView, error) {
	profile, err := s.store.Load(ctx, playerID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepExpired(ctx, profile, s.nowFn())

	views := make([]domain.QuestProgressView, 0, len(profile.States))
	for _, state := range s.sortedStates(profile) {
		quest := s.quests.Get(state.QuestID)
		if quest == nil {
			// Definition removed by a reload; the state survives until reset.
			continue
		}
		views = append(views, domain.QuestProgressView{Quest: quest, State: state})
	}
	return views, nil
}

// GetHistory returns the history log, most recent first.
func (s *service) GetHistory(ctx context.Context, playerID string) ([]domain.HistoryEntry, error) {
	profile, err := s.store.Load(ctx, playerID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]domain.HistoryEntry, len(profile.History))
	copy(entries, profile.History)
	return entries, nil
}

// ProcessResets runs the reset pipeline for one player: expiry sweep, due
// category resets, and, when assignIfMissing is set, a top-up of every
// category back to the cap. The top-up also covers categories that did not
// reset, so a slot freed by a mid-cycle expiry refills on the next sweep.
func (s *service) ProcessResets(ctx context.Context, playerID string, assignIfMissing bool) error {
	profile, err := s.store.Load(ctx, playerID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runResetPipeline(ctx, profile, s.nowFn(), assignIfMissing) {
		s.store.MarkDirty(playerID)
	}
	return nil
}

// RegisterEligibilityProvider hooks an external veto into the eligibility
// chain. Registering an existing key swaps the provider in place, keeping its
// slot in the evaluation order.
func (s *service) RegisterEligibilityProvider(key string, provider EligibilityProvider) {
	if provider == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.providers {
		if entry.key == key {
			s.providers[i].provider = provider
			return
		}
	}
	s.providers = append(s.providers, registeredProvider{key: key, provider: provider})
}

// UnregisterEligibilityProvider removes a previously registered veto; unknown
// keys are a no-op.
func (s *service) UnregisterEligibilityProvider(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.providers {
		if entry.key == key {
			s.providers = append(s.providers[:i], s.providers[i+1:]...)
			return
		}
	}
}

// Shutdown flushes every loaded profile.
func (s *service) Shutdown(ctx context.Context) error {
	return s.store.SaveAll(ctx)
}

// --- internals ---

func (s *service) permitted(playerID string, quest *domain.Quest) bool {
	if s.permits == nil || quest.Permission == "" {
		return true
	}
	return s.permits(playerID, quest.Permission)
}

// eligible runs the permission gate, then every registered provider in
// registration order. The first rejection wins.
func (s *service) eligible(playerID string, quest *domain.Quest) bool {
	if !s.permitted(playerID, quest) {
		return false
	}
	for _, entry := range s.providers {
		if !entry.provider.CanAccept(playerID, quest) {
			return false
		}
	}
	return true
}

// runResetPipeline is the three-phase sweep shared by join, the scheduler and
// the explicit resets endpoint. Returns true when anything changed.
func (s *service) runResetPipeline(ctx context.Context, profile *domain.PlayerQuestProfile, now time.Time, assignIfMissing bool) bool {
	changed := s.sweepExpired(ctx, profile, now) > 0
	if s.applyDueResets(ctx, profile, now, assignIfMissing) {
		changed = true
	}
	if assignIfMissing {
		for _, category := range domain.Categories {
			if s.assignMissing(ctx, profile, category, now) > 0 {
				changed = true
			}
		}
	}
	return changed
}

func (s *service) multiplierContext() domain.MultiplierContext {
	mult := domain.MultiplierContext{XP: s.rules.XPMultiplier, Money: s.rules.MoneyMultiplier}
	if s.multipliers != nil {
		boosts := s.multipliers.Current()
		mult.XP *= boosts.XP
		mult.Money *= boosts.Money
	}
	return mult
}

// sortedStates returns the profile's states in a stable order so event
// emission and view building do not depend on map iteration.
func (s *service) sortedStates(profile *domain.PlayerQuestProfile) []*domain.PlayerQuestState {
	states := make([]*domain.PlayerQuestState, 0, len(profile.States))
	for _, state := range profile.States {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		if states[i].Category != states[j].Category {
			return states[i].Category.Ordinal() < states[j].Category.Ordinal()
		}
		return states[i].QuestID < states[j].QuestID
	})
	return states
}

// sweepExpired drops run-out states. A completed-but-unclaimed state means
// the player forfeited the reward, so it leaves an EXPIRED history entry;
// uncompleted states vanish silently and claimed ones already wrote their
// CLAIMED entry.
func (s *service) sweepExpired(ctx context.Context, profile *domain.PlayerQuestProfile, now time.Time) int {
	removed := 0
	for _, state := range s.sortedStates(profile) {
		if !state.IsExpired(now) {
			continue
		}
		profile.RemoveState(state.QuestID)
		removed++
		metrics.QuestsExpired.WithLabelValues(string(state.Category)).Inc()

		if state.Completed && !state.Claimed {
			profile.AddHistory(domain.HistoryEntry{
				QuestID:   state.QuestID,
				Title:     s.questTitle(state.QuestID),
				Timestamp: now,
				Status:    domain.HistoryExpired,
			})
		}
	}
	if removed > 0 {
		logger.FromContext(ctx).Debug("Expired quest states removed",
			"player_id", profile.PlayerID, "count", removed)
	}
	return removed
}

func (s *service) questTitle(questID string) string {
	if quest := s.quests.Get(questID); quest != nil {
		return quest.Title
	}
	return questID
}

// applyDueResets runs every category whose cadence has elapsed. Returns true
// when anything changed.
func (s *service) applyDueResets(ctx context.Context, profile *domain.PlayerQuestProfile, now time.Time, assignIfMissing bool) bool {
	changed := false
	for _, category := range domain.Categories {
		if !s.resetDue(category, profile.LastReset(category), now) {
			continue
		}
		s.performReset(ctx, profile, category, now, assignIfMissing)
		changed = true
	}
	return changed
}

// resetDue implements the per-cadence due rules:
//
//	daily   -> configured hours elapsed since the last reset; 0 hours means
//	           every check is due
//	weekly  -> today is the reset weekday AND the last reset was on a
//	           different local date
//	monthly -> configured days elapsed since the last reset
func (s *service) resetDue(category domain.Category, lastReset, now time.Time) bool {
	switch category {
	case domain.CategoryDaily:
		if s.rules.DailyResetHours <= 0 {
			return true
		}
		if lastReset.IsZero() {
			return true
		}
		return now.Sub(lastReset) >= time.Duration(s.rules.DailyResetHours)*time.Hour

	case domain.CategoryWeekly:
		local := now.In(s.rules.Location)
		if local.Weekday() != s.rules.WeeklyResetDay {
			return false
		}
		if lastReset.IsZero() {
			return true
		}
		return !sameLocalDate(local, lastReset.In(s.rules.Location))

	default:
		if lastReset.IsZero() {
			return true
		}
		return now.Sub(lastReset) >= time.Duration(s.rules.MonthlyResetDays)*24*time.Hour
	}
}

func sameLocalDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// performReset clears the category's states, stamps the reset and, when
// assignIfMissing is set, hands out a fresh batch. Completed-but-unclaimed
// states are forfeits and go to history as EXPIRED.
func (s *service) performReset(ctx context.Context, profile *domain.PlayerQuestProfile, category domain.Category, now time.Time, assignIfMissing bool) {
	expired := 0
	for _, state := range s.sortedStates(profile) {
		if state.Category != category {
			continue
		}
		profile.RemoveState(state.QuestID)
		if state.Completed && !state.Claimed {
			profile.AddHistory(domain.HistoryEntry{
				QuestID:   state.QuestID,
				Title:     s.questTitle(state.QuestID),
				Timestamp: now,
				Status:    domain.HistoryExpired,
			})
			expired++
		}
	}

	profile.SetLastReset(category, now)
	assigned := 0
	if assignIfMissing {
		assigned = s.assignMissing(ctx, profile, category, now)
	}
	metrics.QuestResets.WithLabelValues(string(category)).Inc()

	if s.publisher != nil {
		s.publisher.Publish(ctx, event.NewQuestsResetEvent(profile.PlayerID, category, assigned, expired))
	}
	logger.FromContext(ctx).Info("Quest category reset",
		"player_id", profile.PlayerID, "category", category,
		"assigned", assigned, "expired", expired)
}

// assignMissing tops the category up to the per-player cap from the eligible
// pool, in random order.
func (s *service) assignMissing(ctx context.Context, profile *domain.PlayerQuestProfile, category domain.Category, now time.Time) int {
	live := profile.LiveCount(category, now)
	if live >= s.rules.QuestsPerPlayer {
		return 0
	}

	var candidates []*domain.Quest
	for _, quest := range s.quests.ByCategory(category) {
		if profile.State(quest.ID) != nil {
			continue
		}
		if !quest.Repeatable && profile.HasCompleted(quest.ID) {
			continue
		}
		if !s.eligible(profile.PlayerID, quest) {
			continue
		}
		candidates = append(candidates, quest)
	}

	s.rngMu.Lock()
	s.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	s.rngMu.Unlock()

	assigned := 0
	for _, quest := range candidates {
		if live+assigned >= s.rules.QuestsPerPlayer {
			break
		}
		s.assign(ctx, profile, quest, now)
		assigned++
	}
	return assigned
}

// assign creates the live state and announces it.
func (s *service) assign(ctx context.Context, profile *domain.PlayerQuestProfile, quest *domain.Quest, now time.Time) *domain.PlayerQuestState {
	var expiresAt time.Time
	if quest.Category != domain.CategoryDaily || s.rules.DailyResetHours > 0 {
		expiresAt = domain.ExpiryFor(quest.Category, now,
			s.rules.DailyResetHours, s.rules.MonthlyResetDays,
			s.rules.WeeklyResetDay, s.rules.Location)
	}
	// With always-due dailies (0 hours) the reset cycle replaces them, so the
	// state itself never expires.

	state := domain.NewQuestState(quest.ID, quest.Category, quest.Target, expiresAt, now)
	profile.PutState(state)
	metrics.QuestsAccepted.WithLabelValues(string(quest.Category)).Inc()

	if s.publisher != nil {
		s.publisher.Publish(ctx, event.NewQuestAcceptedEvent(profile.PlayerID, quest, expiresAt))
	}
	return state
}
