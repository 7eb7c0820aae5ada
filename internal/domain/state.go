package domain

import "time"

// PlayerQuestState is a player's live progress on one assigned quest.
// Invariants:
//
//	Completed => Progress >= Target
//	Claimed   => Completed
//	once Completed or Claimed, Increment is a no-op
type PlayerQuestState struct {
	QuestID     string    `json:"quest_id"`
	Category    Category  `json:"category"`
	Progress    int       `json:"progress"`
	Target      int       `json:"target"`
	Completed   bool      `json:"completed"`
	Claimed     bool      `json:"claimed"`
	AssignedAt  time.Time `json:"assigned_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
	LastResetAt time.Time `json:"last_reset_at,omitzero"`
}

// NewQuestState creates a fresh state for an assignment at now.
func NewQuestState(questID string, category Category, target int, expiresAt, now time.Time) *PlayerQuestState {
	if target < 1 {
		target = 1
	}
	return &PlayerQuestState{
		QuestID:     questID,
		Category:    category,
		Target:      target,
		AssignedAt:  now,
		ExpiresAt:   expiresAt,
		LastResetAt: now,
	}
}

// Increment advances progress by amount, clamped to target. Crossing the
// target flips Completed exactly once and stamps CompletedAt. Returns the
// new progress value.
func (s *PlayerQuestState) Increment(amount int, now time.Time) int {
	if s.Completed || s.Claimed {
		return s.Progress
	}
	if amount < 0 {
		amount = 0
	}
	s.Progress += amount
	if s.Progress > s.Target {
		s.Progress = s.Target
	}
	if s.Progress >= s.Target {
		s.Completed = true
		s.CompletedAt = now
	}
	return s.Progress
}

// IsExpired reports whether the state has passed its expiry. A zero ExpiresAt
// means the state never expires on its own.
func (s *PlayerQuestState) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Remaining is the progress still needed to complete.
func (s *PlayerQuestState) Remaining() int {
	if r := s.Target - s.Progress; r > 0 {
		return r
	}
	return 0
}

// ProgressPercent is min(100, progress*100/target).
func (s *PlayerQuestState) ProgressPercent() float64 {
	pct := float64(s.Progress) * 100 / float64(s.Target)
	if pct > 100 {
		return 100
	}
	return pct
}
