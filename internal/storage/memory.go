package storage

import (
	"context"
	"sync"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
)

// MemoryStorage keeps everything in process memory. Used in tests and when
// STORAGE_MODE=memory; nothing survives a restart.
type MemoryStorage struct {
	mu       sync.RWMutex
	profiles map[string]profileRecord
	quests   map[string]map[string]any
	events   map[string]map[string]any
	runtime  *eventRuntimeRecord
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		profiles: make(map[string]profileRecord),
		quests:   make(map[string]map[string]any),
		events:   make(map[string]map[string]any),
	}
}

// SeedDefinitions replaces the raw definition documents. Tests use this to
// load fixtures without touching the filesystem.
func (s *MemoryStorage) SeedDefinitions(quests, events map[string]map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quests = quests
	s.events = events
}

func (s *MemoryStorage) LoadProfile(_ context.Context, playerID string) (*domain.PlayerQuestProfile, error) {
	s.mu.RLock()
	record, ok := s.profiles[playerID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decodeProfile(playerID, record), nil
}

func (s *MemoryStorage) SaveProfile(_ context.Context, profile *domain.PlayerQuestProfile) error {
	// Encoding snapshots the profile, so later engine mutations don't leak in.
	record := encodeProfile(profile)
	s.mu.Lock()
	s.profiles[profile.PlayerID] = record
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) LoadQuestDefinitions(_ context.Context) (map[string]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quests, nil
}

func (s *MemoryStorage) LoadEventDefinitions(_ context.Context) (map[string]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events, nil
}

func (s *MemoryStorage) LoadEventRuntime(_ context.Context) (*domain.EventRuntimeState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.runtime == nil {
		return nil, nil
	}
	return decodeEventRuntime(*s.runtime), nil
}

func (s *MemoryStorage) SaveEventRuntime(_ context.Context, state *domain.EventRuntimeState) error {
	record := encodeEventRuntime(state)
	s.mu.Lock()
	s.runtime = &record
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Close(_ context.Context) error {
	return nil
}
