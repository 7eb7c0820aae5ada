package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
)

// EventCatalog is the id -> definition lookup table for global events.
type EventCatalog struct {
	mu     sync.RWMutex
	events map[string]*domain.GlobalEvent
}

// NewEventCatalog returns an empty catalog.
func NewEventCatalog() *EventCatalog {
	return &EventCatalog{events: make(map[string]*domain.GlobalEvent)}
}

// Replace swaps the entire catalog contents in one step.
func (c *EventCatalog) Replace(events []*domain.GlobalEvent) {
	next := make(map[string]*domain.GlobalEvent, len(events))
	for _, event := range events {
		if event != nil {
			next[strings.ToLower(event.ID)] = event
		}
	}
	c.mu.Lock()
	c.events = next
	c.mu.Unlock()
}

// Get looks up an event by id, case-insensitively.
func (c *EventCatalog) Get(eventID string) *domain.GlobalEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.events[strings.ToLower(eventID)]
}

// All returns every event sorted by name, case-insensitively.
func (c *EventCatalog) All() []*domain.GlobalEvent {
	c.mu.RLock()
	list := make([]*domain.GlobalEvent, 0, len(c.events))
	for _, event := range c.events {
		list = append(list, event)
	}
	c.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
	})
	return list
}

// Enabled returns the events whose definitions allow them to run.
func (c *EventCatalog) Enabled() []*domain.GlobalEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var list []*domain.GlobalEvent
	for _, event := range c.events {
		if event.Enabled {
			list = append(list, event)
		}
	}
	return list
}

// Len reports the number of loaded events.
func (c *EventCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}
