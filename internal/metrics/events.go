package metrics

import (
	"context"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/event"
)

// EventMetricsCollector subscribes to bus events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all event types the collector counts
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.QuestAccepted,
		event.QuestProgress,
		event.QuestCompleted,
		event.QuestClaimed,
		event.QuestsReset,
		event.GlobalEventStarted,
		event.GlobalEventEnded,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent counts every published event by type
func (e *EventMetricsCollector) HandleEvent(_ context.Context, evt event.Event) error {
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()
	return nil
}
