package storage

import (
	"time"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
)

// Persisted records. Timestamps are epoch milliseconds on the wire; zero
// means unset.

type questStateRecord struct {
	Category    string `json:"category"`
	Progress    int    `json:"progress"`
	Target      int    `json:"target"`
	Completed   bool   `json:"completed"`
	Claimed     bool   `json:"claimed"`
	AssignedAt  int64  `json:"assigned_at"`
	CompletedAt int64  `json:"completed_at,omitempty"`
	ExpiresAt   int64  `json:"expires_at,omitempty"`
	LastResetAt int64  `json:"last_reset_at,omitempty"`
}

type lastResetRecord struct {
	Daily   int64 `json:"daily,omitempty"`
	Weekly  int64 `json:"weekly,omitempty"`
	Monthly int64 `json:"monthly,omitempty"`
}

type profileRecord struct {
	Quests    map[string]questStateRecord `json:"quests"`
	History   []string                    `json:"history"`
	LastReset lastResetRecord             `json:"last_reset"`
}

type eventRuntimeRecord struct {
	ActiveEventID     string           `json:"active_event_id,omitempty"`
	ActiveUntil       int64            `json:"active_until,omitempty"`
	LastGlobalTrigger int64            `json:"last_global_trigger,omitempty"`
	LastTriggerTimes  map[string]int64 `json:"last_trigger_times,omitempty"`
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func encodeProfile(profile *domain.PlayerQuestProfile) profileRecord {
	record := profileRecord{
		Quests:  make(map[string]questStateRecord, len(profile.States)),
		History: make([]string, 0, len(profile.History)),
		LastReset: lastResetRecord{
			Daily:   toMillis(profile.LastDailyReset),
			Weekly:  toMillis(profile.LastWeeklyReset),
			Monthly: toMillis(profile.LastMonthlyReset),
		},
	}
	for id, state := range profile.States {
		record.Quests[id] = questStateRecord{
			Category:    string(state.Category),
			Progress:    state.Progress,
			Target:      state.Target,
			Completed:   state.Completed,
			Claimed:     state.Claimed,
			AssignedAt:  toMillis(state.AssignedAt),
			CompletedAt: toMillis(state.CompletedAt),
			ExpiresAt:   toMillis(state.ExpiresAt),
			LastResetAt: toMillis(state.LastResetAt),
		}
	}
	for _, entry := range profile.History {
		record.History = append(record.History, entry.Line())
	}
	return record
}

func decodeProfile(playerID string, record profileRecord) *domain.PlayerQuestProfile {
	profile := domain.NewProfile(playerID)
	profile.LastDailyReset = fromMillis(record.LastReset.Daily)
	profile.LastWeeklyReset = fromMillis(record.LastReset.Weekly)
	profile.LastMonthlyReset = fromMillis(record.LastReset.Monthly)

	for id, sr := range record.Quests {
		category, ok := domain.ParseCategory(sr.Category)
		if !ok {
			continue
		}
		profile.PutState(&domain.PlayerQuestState{
			QuestID:     id,
			Category:    category,
			Progress:    sr.Progress,
			Target:      sr.Target,
			Completed:   sr.Completed,
			Claimed:     sr.Claimed,
			AssignedAt:  fromMillis(sr.AssignedAt),
			CompletedAt: fromMillis(sr.CompletedAt),
			ExpiresAt:   fromMillis(sr.ExpiresAt),
			LastResetAt: fromMillis(sr.LastResetAt),
		})
	}

	// Malformed lines are dropped rather than failing the whole profile.
	for _, line := range record.History {
		if entry, ok := domain.ParseHistoryLine(line); ok {
			profile.History = append(profile.History, entry)
		}
	}
	profile.RebuildCompletedSet()
	return profile
}

func encodeEventRuntime(state *domain.EventRuntimeState) eventRuntimeRecord {
	record := eventRuntimeRecord{
		ActiveEventID:     state.ActiveEventID,
		ActiveUntil:       toMillis(state.ActiveUntil),
		LastGlobalTrigger: toMillis(state.LastGlobalTrigger),
	}
	if len(state.LastTriggerTimes) > 0 {
		record.LastTriggerTimes = make(map[string]int64, len(state.LastTriggerTimes))
		for id, t := range state.LastTriggerTimes {
			record.LastTriggerTimes[id] = toMillis(t)
		}
	}
	return record
}

func decodeEventRuntime(record eventRuntimeRecord) *domain.EventRuntimeState {
	state := domain.NewEventRuntimeState()
	state.ActiveEventID = record.ActiveEventID
	state.ActiveUntil = fromMillis(record.ActiveUntil)
	state.LastGlobalTrigger = fromMillis(record.LastGlobalTrigger)
	for id, ms := range record.LastTriggerTimes {
		state.LastTriggerTimes[id] = fromMillis(ms)
	}
	return state
}
