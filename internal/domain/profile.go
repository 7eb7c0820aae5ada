package domain

import (
	"fmt"
	"strings"
	"time"
)

// HistoryStatus is the terminal disposition recorded for a quest state.
type HistoryStatus string

const (
	HistoryCompleted HistoryStatus = "COMPLETED"
	HistoryClaimed   HistoryStatus = "CLAIMED"
	HistoryExpired   HistoryStatus = "EXPIRED"
)

// HistoryCap bounds the per-profile history log; oldest entries are evicted.
const HistoryCap = 60

// HistoryEntry is one line of a profile's quest history, most recent first.
type HistoryEntry struct {
	QuestID   string        `json:"quest_id"`
	Title     string        `json:"title"`
	Timestamp time.Time     `json:"timestamp"`
	Status    HistoryStatus `json:"status"`
}

// Line renders the entry in the persisted "questId|title|epochMs|status" form.
func (e HistoryEntry) Line() string {
	return fmt.Sprintf("%s|%s|%d|%s", e.QuestID, e.Title, e.Timestamp.UnixMilli(), e.Status)
}

// ParseHistoryLine parses the persisted line form back into an entry.
func ParseHistoryLine(line string) (HistoryEntry, bool) {
	parts := strings.SplitN(line, "|", 4)
	if len(parts) != 4 {
		return HistoryEntry{}, false
	}
	var ms int64
	if _, err := fmt.Sscanf(parts[2], "%d", &ms); err != nil {
		return HistoryEntry{}, false
	}
	return HistoryEntry{
		QuestID:   parts[0],
		Title:     parts[1],
		Timestamp: time.UnixMilli(ms),
		Status:    HistoryStatus(parts[3]),
	}, true
}

// PlayerQuestProfile is the per-player container of quest states, history and
// reset timestamps. It is owned by the progress store and only mutated on the
// tick goroutine.
type PlayerQuestProfile struct {
	PlayerID string
	// States is keyed by lowercase quest id; lookups go through State/PutState
	// so keys stay case-insensitive.
	States  map[string]*PlayerQuestState
	History []HistoryEntry

	LastDailyReset   time.Time
	LastWeeklyReset  time.Time
	LastMonthlyReset time.Time

	// completedIDs tracks every quest id the player ever finished, so the
	// non-repeatable check does not re-parse history text.
	completedIDs map[string]struct{}
}

// NewProfile creates an empty profile for a player.
func NewProfile(playerID string) *PlayerQuestProfile {
	return &PlayerQuestProfile{
		PlayerID:     playerID,
		States:       make(map[string]*PlayerQuestState),
		completedIDs: make(map[string]struct{}),
	}
}

// State returns the live state for a quest id, case-insensitively.
func (p *PlayerQuestProfile) State(questID string) *PlayerQuestState {
	return p.States[strings.ToLower(questID)]
}

// PutState stores a state under its lowercase quest id.
func (p *PlayerQuestProfile) PutState(state *PlayerQuestState) {
	p.States[strings.ToLower(state.QuestID)] = state
}

// RemoveState drops a state by quest id and reports whether it existed.
func (p *PlayerQuestProfile) RemoveState(questID string) bool {
	key := strings.ToLower(questID)
	if _, ok := p.States[key]; !ok {
		return false
	}
	delete(p.States, key)
	return true
}

// AddHistory prepends an entry and evicts the oldest past the cap. Entries
// with COMPLETED or CLAIMED status also mark the quest as ever-completed.
func (p *PlayerQuestProfile) AddHistory(entry HistoryEntry) {
	if entry.QuestID == "" {
		return
	}
	p.History = append([]HistoryEntry{entry}, p.History...)
	if len(p.History) > HistoryCap {
		p.History = p.History[:HistoryCap]
	}
	if entry.Status == HistoryCompleted || entry.Status == HistoryClaimed {
		p.markCompleted(entry.QuestID)
	}
}

// HasCompleted reports whether the player has ever completed the quest.
func (p *PlayerQuestProfile) HasCompleted(questID string) bool {
	_, ok := p.completedIDs[strings.ToLower(questID)]
	return ok
}

func (p *PlayerQuestProfile) markCompleted(questID string) {
	if p.completedIDs == nil {
		p.completedIDs = make(map[string]struct{})
	}
	p.completedIDs[strings.ToLower(questID)] = struct{}{}
}

// RebuildCompletedSet derives the ever-completed set from history. Storage
// backends call this after hydrating a profile.
func (p *PlayerQuestProfile) RebuildCompletedSet() {
	p.completedIDs = make(map[string]struct{})
	for _, entry := range p.History {
		if entry.Status == HistoryCompleted || entry.Status == HistoryClaimed {
			p.markCompleted(entry.QuestID)
		}
	}
}

// LastReset returns the recorded reset timestamp for a category.
func (p *PlayerQuestProfile) LastReset(category Category) time.Time {
	switch category {
	case CategoryDaily:
		return p.LastDailyReset
	case CategoryWeekly:
		return p.LastWeeklyReset
	default:
		return p.LastMonthlyReset
	}
}

// SetLastReset stamps the reset timestamp for a category.
func (p *PlayerQuestProfile) SetLastReset(category Category, t time.Time) {
	switch category {
	case CategoryDaily:
		p.LastDailyReset = t
	case CategoryWeekly:
		p.LastWeeklyReset = t
	default:
		p.LastMonthlyReset = t
	}
}

// LiveCount counts non-expired states of a category.
func (p *PlayerQuestProfile) LiveCount(category Category, now time.Time) int {
	count := 0
	for _, state := range p.States {
		if state.Category == category && !state.IsExpired(now) {
			count++
		}
	}
	return count
}
