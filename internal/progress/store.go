package progress

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/logger"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/storage"
)

const (
	// DefaultCacheSize bounds the recently-unloaded profile cache
	DefaultCacheSize = 512

	// DefaultCacheTTL is how long an unloaded profile stays reusable
	DefaultCacheTTL = 10 * time.Minute
)

// Store owns the loaded player profiles. The engine reads and mutates
// profiles through it; the autosave worker flushes dirty ones in the
// background. Profiles move through three tiers: loaded map, unload cache,
// storage backend.
type Store struct {
	backend storage.Storage
	cache   *profileCache

	mu     sync.RWMutex
	loaded map[string]*domain.PlayerQuestProfile
	dirty  map[string]struct{}
}

// NewStore creates a store over a storage backend.
func NewStore(backend storage.Storage, cacheSize int, cacheTTL time.Duration) *Store {
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Store{
		backend: backend,
		cache:   newProfileCache(cacheSize, cacheTTL),
		loaded:  make(map[string]*domain.PlayerQuestProfile),
		dirty:   make(map[string]struct{}),
	}
}

// Load returns the player's profile, pulling it into the loaded map if
// needed. Unknown players start from an empty profile.
func (s *Store) Load(ctx context.Context, playerID string) (*domain.PlayerQuestProfile, error) {
	s.mu.RLock()
	profile, ok := s.loaded[playerID]
	s.mu.RUnlock()
	if ok {
		return profile, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-check: another goroutine may have loaded it while we waited.
	if profile, ok := s.loaded[playerID]; ok {
		return profile, nil
	}

	if cached, ok := s.cache.Get(playerID); ok {
		s.cache.Invalidate(playerID)
		s.loaded[playerID] = cached
		return cached, nil
	}

	profile, err := s.backend.LoadProfile(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		profile = domain.NewProfile(playerID)
	}
	s.loaded[playerID] = profile
	return profile, nil
}

// Get returns a profile only if it is currently loaded.
func (s *Store) Get(playerID string) (*domain.PlayerQuestProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.loaded[playerID]
	return profile, ok
}

// MarkDirty flags a loaded profile for the next flush.
func (s *Store) MarkDirty(playerID string) {
	s.mu.Lock()
	if _, ok := s.loaded[playerID]; ok {
		s.dirty[playerID] = struct{}{}
	}
	s.mu.Unlock()
}

// Unload saves a profile and moves it to the unload cache. Called when a
// player disconnects.
func (s *Store) Unload(ctx context.Context, playerID string) error {
	s.mu.Lock()
	profile, ok := s.loaded[playerID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.loaded, playerID)
	delete(s.dirty, playerID)
	s.mu.Unlock()

	if err := s.backend.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("failed to save profile on unload: %w", err)
	}
	s.cache.Set(playerID, profile)
	return nil
}

// FlushDirty saves every dirty profile and returns how many were written.
// A failed save re-marks the profile so the next flush retries it.
func (s *Store) FlushDirty(ctx context.Context) (int, error) {
	s.mu.Lock()
	batch := make([]*domain.PlayerQuestProfile, 0, len(s.dirty))
	for playerID := range s.dirty {
		if profile, ok := s.loaded[playerID]; ok {
			batch = append(batch, profile)
		}
	}
	s.dirty = make(map[string]struct{})
	s.mu.Unlock()

	log := logger.FromContext(ctx)
	saved := 0
	var firstErr error
	for _, profile := range batch {
		if err := s.backend.SaveProfile(ctx, profile); err != nil {
			log.Error("Failed to flush profile", "player_id", profile.PlayerID, "error", err)
			s.MarkDirty(profile.PlayerID)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		saved++
	}
	return saved, firstErr
}

// SaveAll saves every loaded profile regardless of dirtiness. Used on
// shutdown so nothing in memory is lost.
func (s *Store) SaveAll(ctx context.Context) error {
	s.mu.RLock()
	batch := make([]*domain.PlayerQuestProfile, 0, len(s.loaded))
	for _, profile := range s.loaded {
		batch = append(batch, profile)
	}
	s.mu.RUnlock()

	var firstErr error
	for _, profile := range batch {
		if err := s.backend.SaveProfile(ctx, profile); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to save profile %s: %w", profile.PlayerID, err)
		}
	}

	s.mu.Lock()
	s.dirty = make(map[string]struct{})
	s.mu.Unlock()
	return firstErr
}

// LoadedIDs returns the ids of all loaded profiles, sorted for stable output.
func (s *Store) LoadedIDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.loaded))
	for playerID := range s.loaded {
		ids = append(ids, playerID)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// DirtyCount reports how many profiles await a flush.
func (s *Store) DirtyCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dirty)
}
