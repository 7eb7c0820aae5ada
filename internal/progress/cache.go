package progress

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
)

// CacheSchemaVersion is the current version of the cache schema
// Increment this when the cached data structure changes to auto-invalidate old entries
const CacheSchemaVersion = "1.0"

// cachedProfileEntry wraps a profile with version metadata for cache invalidation
type cachedProfileEntry struct {
	Version  string
	Profile  *domain.PlayerQuestProfile
	CachedAt time.Time
}

// profileCache holds recently unloaded profiles so a player who reconnects
// within the TTL skips the storage round trip. Entries are already saved
// before they land here; eviction loses nothing.
type profileCache struct {
	lru *expirable.LRU[string, *cachedProfileEntry]
}

func newProfileCache(size int, ttl time.Duration) *profileCache {
	return &profileCache{
		lru: expirable.NewLRU[string, *cachedProfileEntry](size, nil, ttl),
	}
}

// Get retrieves a profile from the cache, invalidating version mismatches.
func (c *profileCache) Get(playerID string) (*domain.PlayerQuestProfile, bool) {
	entry, found := c.lru.Get(playerID)
	if !found {
		return nil, false
	}

	if entry.Version != CacheSchemaVersion {
		c.lru.Remove(playerID)
		return nil, false
	}

	return entry.Profile, true
}

// Set stores a profile in the cache with current schema version.
func (c *profileCache) Set(playerID string, profile *domain.PlayerQuestProfile) {
	c.lru.Add(playerID, &cachedProfileEntry{
		Version:  CacheSchemaVersion,
		Profile:  profile,
		CachedAt: time.Now(),
	})
}

// Invalidate removes a profile from the cache.
func (c *profileCache) Invalidate(playerID string) {
	c.lru.Remove(playerID)
}

// Clear removes all entries from the cache.
func (c *profileCache) Clear() {
	c.lru.Purge()
}
