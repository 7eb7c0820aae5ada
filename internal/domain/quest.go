package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category is the reset cadence of a quest.
type Category string

const (
	CategoryDaily   Category = "DAILY"
	CategoryWeekly  Category = "WEEKLY"
	CategoryMonthly Category = "MONTHLY"
)

// Categories lists all cadences in display order.
var Categories = []Category{CategoryDaily, CategoryWeekly, CategoryMonthly}

// ParseCategory resolves a raw string to a Category.
func ParseCategory(raw string) (Category, bool) {
	switch Category(strings.ToUpper(strings.TrimSpace(raw))) {
	case CategoryDaily:
		return CategoryDaily, true
	case CategoryWeekly:
		return CategoryWeekly, true
	case CategoryMonthly:
		return CategoryMonthly, true
	default:
		return "", false
	}
}

// Ordinal is used for stable sorting of quest lists by cadence.
func (c Category) Ordinal() int {
	switch c {
	case CategoryDaily:
		return 0
	case CategoryWeekly:
		return 1
	case CategoryMonthly:
		return 2
	default:
		return 3
	}
}

// ItemSpec describes a reward item as "MATERIAL:amount".
type ItemSpec struct {
	Material string `json:"material"`
	Amount   int    `json:"amount"`
}

// String renders the spec in its "MATERIAL:amount" wire form.
func (i ItemSpec) String() string {
	return fmt.Sprintf("%s:%d", i.Material, i.Amount)
}

// Reward is the payout attached to a quest definition.
type Reward struct {
	XP    float64    `json:"xp"`
	Money float64    `json:"money"`
	Items []ItemSpec `json:"items,omitempty"`
}

// Quest is an immutable quest definition. Instances are built by the catalog
// parser and never mutated after load; a reload swaps the whole catalog.
type Quest struct {
	ID          string
	Category    Category
	Title       string
	Description string
	TaskType    string
	Target      int
	Reward      Reward
	Repeatable  bool
	Permission  string
	Task        Matcher
}

// Matcher is the objective predicate bound to a quest. Implementations are
// pure functions over an action and hold no shared state.
type Matcher interface {
	// Matches reports whether the action counts toward the objective.
	Matches(action Action) bool
	// ProgressAmount returns the progress delta for a matching action (>= 1).
	ProgressAmount(action Action) int
}

// QuestProgressView pairs a definition with a player's live state for callers
// that render or report progress.
type QuestProgressView struct {
	Quest *Quest
	State *PlayerQuestState
}

// MultiplierContext carries the reward multipliers in force when a claim is
// applied: configured global multipliers folded with the active event boosts.
type MultiplierContext struct {
	XP    float64
	Money float64
}

// ClaimedReward is the payout actually granted for a claim, after the
// multiplier context has been applied. Items are never scaled.
type ClaimedReward struct {
	XP    float64
	Money float64
	Items []ItemSpec
}

// EffectiveReward scales the quest reward by the multiplier context.
func (q *Quest) EffectiveReward(mult MultiplierContext) ClaimedReward {
	return ClaimedReward{
		XP:    q.Reward.XP * mult.XP,
		Money: q.Reward.Money * mult.Money,
		Items: q.Reward.Items,
	}
}

// ExpiryFor computes when a freshly assigned state of this quest's category
// runs out, per cadence rules:
//
//	daily   -> now + dailyHours
//	monthly -> now + monthlyDays
//	weekly  -> next strictly-future occurrence of resetDay at local midnight
//	           ("today" rolls a full week ahead)
func ExpiryFor(category Category, now time.Time, dailyHours, monthlyDays int, weeklyResetDay time.Weekday, loc *time.Location) time.Time {
	switch category {
	case CategoryDaily:
		return now.Add(time.Duration(dailyHours) * time.Hour)
	case CategoryMonthly:
		return now.AddDate(0, 0, monthlyDays)
	default:
		local := now.In(loc)
		daysUntil := (int(weeklyResetDay) - int(local.Weekday()) + 7) % 7
		if daysUntil == 0 {
			daysUntil = 7
		}
		next := local.AddDate(0, 0, daysUntil)
		return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, loc)
	}
}
