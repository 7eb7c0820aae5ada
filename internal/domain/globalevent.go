package domain

import (
	"strings"
	"time"
)

// EffectType is the kind of gameplay modifier a global event applies.
type EffectType string

const (
	EffectWalkSpeed   EffectType = "WALK_SPEED_MULTIPLIER"
	EffectMiningSpeed EffectType = "MINING_SPEED_MODIFIER"
	EffectMoneyBoost  EffectType = "MONEY_BOOST"
	EffectXPBoost     EffectType = "XP_BOOST"
	EffectDropRate    EffectType = "DROP_RATE_MULTIPLIER"
	EffectPotion      EffectType = "POTION_EFFECT"
)

// ParseEffectType resolves a raw string to an EffectType.
func ParseEffectType(raw string) (EffectType, bool) {
	switch EffectType(strings.ToUpper(strings.TrimSpace(raw))) {
	case EffectWalkSpeed:
		return EffectWalkSpeed, true
	case EffectMiningSpeed:
		return EffectMiningSpeed, true
	case EffectMoneyBoost:
		return EffectMoneyBoost, true
	case EffectXPBoost:
		return EffectXPBoost, true
	case EffectDropRate:
		return EffectDropRate, true
	case EffectPotion:
		return EffectPotion, true
	default:
		return "", false
	}
}

// Effect is one typed modifier on an event. Value is a multiplier for the
// numeric kinds; Potion and Amplifier only apply to POTION_EFFECT.
type Effect struct {
	Type      EffectType `json:"type"`
	Value     float64    `json:"value"`
	Potion    string     `json:"potion,omitempty"`
	Amplifier int        `json:"amplifier,omitempty"`
}

// GlobalEvent is a server-wide, time-boxed modifier definition. Enabled is
// definition-controlled; Active is runtime-controlled and true only while the
// event is the currently running one.
type GlobalEvent struct {
	ID              string
	Name            string
	Description     string
	DurationMinutes int
	Effects         []Effect
	Enabled         bool
	Active          bool
}

// Duration is the event window length.
func (e *GlobalEvent) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}

// EventRuntimeState is the single persisted record that makes the active
// event window durable across restarts.
type EventRuntimeState struct {
	ActiveEventID     string               `json:"active_event_id"`
	ActiveUntil       time.Time            `json:"active_until,omitzero"`
	LastGlobalTrigger time.Time            `json:"last_global_trigger,omitzero"`
	LastTriggerTimes  map[string]time.Time `json:"last_trigger_times,omitempty"`
}

// NewEventRuntimeState returns an empty runtime record.
func NewEventRuntimeState() *EventRuntimeState {
	return &EventRuntimeState{LastTriggerTimes: make(map[string]time.Time)}
}

// Clone deep-copies the record so persistence never races the engine copy.
func (s *EventRuntimeState) Clone() *EventRuntimeState {
	copied := &EventRuntimeState{
		ActiveEventID:     s.ActiveEventID,
		ActiveUntil:       s.ActiveUntil,
		LastGlobalTrigger: s.LastGlobalTrigger,
		LastTriggerTimes:  make(map[string]time.Time, len(s.LastTriggerTimes)),
	}
	for id, t := range s.LastTriggerTimes {
		copied.LastTriggerTimes[id] = t
	}
	return copied
}

// Multipliers is the numeric effect state read by reward paths and external
// collaborators. Recomputed as a pure function of the active event's effects.
type Multipliers struct {
	Money       float64
	XP          float64
	DropRate    float64
	MiningSpeed float64
}
