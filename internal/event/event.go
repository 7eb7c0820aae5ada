package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if e.Metadata == nil {
		return nil
	}
	if m, ok := e.Metadata.(map[string]interface{}); ok {
		return m[key]
	}
	return nil
}

// Common event types
const (
	QuestAccepted  Type = Type(domain.EventTypeQuestAccepted)
	QuestProgress  Type = Type(domain.EventTypeQuestProgress)
	QuestCompleted Type = Type(domain.EventTypeQuestCompleted)
	QuestClaimed   Type = Type(domain.EventTypeQuestClaimed)
	QuestsReset    Type = Type(domain.EventTypeQuestsReset)

	GlobalEventStarted Type = Type(domain.EventTypeGlobalEventStart)
	GlobalEventEnded   Type = Type(domain.EventTypeGlobalEventEnd)
)

// Typed event payloads for type safety

// QuestAcceptedPayloadV1 is the typed payload for quest accepted events
type QuestAcceptedPayloadV1 struct {
	PlayerID  string `json:"player_id"`
	QuestID   string `json:"quest_id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Target    int    `json:"target"`
	ExpiresAt int64  `json:"expires_at,omitempty"` // epoch ms, 0 means never
	Timestamp int64  `json:"timestamp"`
}

// QuestProgressPayloadV1 is the typed payload for quest progress events
type QuestProgressPayloadV1 struct {
	PlayerID  string `json:"player_id"`
	QuestID   string `json:"quest_id"`
	Progress  int    `json:"progress"`
	Target    int    `json:"target"`
	Timestamp int64  `json:"timestamp"`
}

// QuestCompletedPayloadV1 is the typed payload for quest completed events
type QuestCompletedPayloadV1 struct {
	PlayerID  string `json:"player_id"`
	QuestID   string `json:"quest_id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Timestamp int64  `json:"timestamp"`
}

// QuestClaimedPayloadV1 is the typed payload for quest reward claim events
type QuestClaimedPayloadV1 struct {
	PlayerID  string   `json:"player_id"`
	QuestID   string   `json:"quest_id"`
	Title     string   `json:"title"`
	XP        float64  `json:"xp"`
	Money     float64  `json:"money"`
	Items     []string `json:"items,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

// QuestsResetPayloadV1 is the typed payload for per-category reset events
type QuestsResetPayloadV1 struct {
	PlayerID  string `json:"player_id"`
	Category  string `json:"category"`
	Assigned  int    `json:"assigned"`
	Expired   int    `json:"expired"`
	Timestamp int64  `json:"timestamp"`
}

// GlobalEventPayloadV1 is the typed payload for global event lifecycle events
type GlobalEventPayloadV1 struct {
	EventID   string `json:"event_id"`
	Name      string `json:"name"`
	EndsAt    int64  `json:"ends_at,omitempty"` // epoch ms, only set on start
	Silent    bool   `json:"silent"`            // true when resuming persisted state
	Timestamp int64  `json:"timestamp"`
}

// Type-safe event constructors

// NewQuestAcceptedEvent creates a new quest accepted event
func NewQuestAcceptedEvent(playerID string, quest *domain.Quest, expiresAt time.Time) Event {
	var expiresMs int64
	if !expiresAt.IsZero() {
		expiresMs = expiresAt.UnixMilli()
	}
	return Event{
		Version: EventSchemaVersion,
		Type:    QuestAccepted,
		Payload: QuestAcceptedPayloadV1{
			PlayerID:  playerID,
			QuestID:   quest.ID,
			Title:     quest.Title,
			Category:  string(quest.Category),
			Target:    quest.Target,
			ExpiresAt: expiresMs,
			Timestamp: time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewQuestProgressEvent creates a new quest progress event
func NewQuestProgressEvent(playerID, questID string, progress, target int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    QuestProgress,
		Payload: QuestProgressPayloadV1{
			PlayerID:  playerID,
			QuestID:   questID,
			Progress:  progress,
			Target:    target,
			Timestamp: time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewQuestCompletedEvent creates a new quest completed event
func NewQuestCompletedEvent(playerID string, quest *domain.Quest) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    QuestCompleted,
		Payload: QuestCompletedPayloadV1{
			PlayerID:  playerID,
			QuestID:   quest.ID,
			Title:     quest.Title,
			Category:  string(quest.Category),
			Timestamp: time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewQuestClaimedEvent creates a new quest claimed event
func NewQuestClaimedEvent(playerID string, quest *domain.Quest, reward domain.ClaimedReward) Event {
	items := make([]string, 0, len(reward.Items))
	for _, item := range reward.Items {
		items = append(items, fmt.Sprintf("%s:%d", item.Material, item.Amount))
	}
	return Event{
		Version: EventSchemaVersion,
		Type:    QuestClaimed,
		Payload: QuestClaimedPayloadV1{
			PlayerID:  playerID,
			QuestID:   quest.ID,
			Title:     quest.Title,
			XP:        reward.XP,
			Money:     reward.Money,
			Items:     items,
			Timestamp: time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewQuestsResetEvent creates a new per-category reset event
func NewQuestsResetEvent(playerID string, category domain.Category, assigned, expired int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    QuestsReset,
		Payload: QuestsResetPayloadV1{
			PlayerID:  playerID,
			Category:  string(category),
			Assigned:  assigned,
			Expired:   expired,
			Timestamp: time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewGlobalEventStartedEvent creates a new global event started event.
// silent marks a resumed event, so subscribers skip the broadcast.
func NewGlobalEventStartedEvent(ev *domain.GlobalEvent, endsAt time.Time, silent bool) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    GlobalEventStarted,
		Payload: GlobalEventPayloadV1{
			EventID:   ev.ID,
			Name:      ev.Name,
			EndsAt:    endsAt.UnixMilli(),
			Silent:    silent,
			Timestamp: time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewGlobalEventEndedEvent creates a new global event ended event
func NewGlobalEventEndedEvent(ev *domain.GlobalEvent, silent bool) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    GlobalEventEnded,
		Payload: GlobalEventPayloadV1{
			EventID:   ev.ID,
			Name:      ev.Name,
			Silent:    silent,
			Timestamp: time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	// Handlers execute synchronously. Slow consumers should hand off to
	// their own goroutines.
	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
