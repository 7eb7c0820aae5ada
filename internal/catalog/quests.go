// Package catalog holds the immutable-after-load quest and event definition
// sets. Reloads swap the whole lookup table atomically; readers never observe
// a partially loaded catalog.
package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
)

// QuestCatalog is the id -> definition lookup table for quests.
type QuestCatalog struct {
	mu     sync.RWMutex
	quests map[string]*domain.Quest
}

// NewQuestCatalog returns an empty catalog.
func NewQuestCatalog() *QuestCatalog {
	return &QuestCatalog{quests: make(map[string]*domain.Quest)}
}

// Replace swaps the entire catalog contents in one step.
func (c *QuestCatalog) Replace(quests []*domain.Quest) {
	next := make(map[string]*domain.Quest, len(quests))
	for _, quest := range quests {
		if quest != nil {
			next[strings.ToLower(quest.ID)] = quest
		}
	}
	c.mu.Lock()
	c.quests = next
	c.mu.Unlock()
}

// Get looks up a quest by id, case-insensitively.
func (c *QuestCatalog) Get(questID string) *domain.Quest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.quests[strings.ToLower(questID)]
}

// All returns every quest sorted by category then title.
func (c *QuestCatalog) All() []*domain.Quest {
	c.mu.RLock()
	list := make([]*domain.Quest, 0, len(c.quests))
	for _, quest := range c.quests {
		list = append(list, quest)
	}
	c.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].Category != list[j].Category {
			return list[i].Category.Ordinal() < list[j].Category.Ordinal()
		}
		return list[i].Title < list[j].Title
	})
	return list
}

// ByCategory returns the quests of one cadence, in no particular order.
func (c *QuestCatalog) ByCategory(category domain.Category) []*domain.Quest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var list []*domain.Quest
	for _, quest := range c.quests {
		if quest.Category == category {
			list = append(list, quest)
		}
	}
	return list
}

// Len reports the number of loaded quests.
func (c *QuestCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.quests)
}
