package storage

import (
	"context"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
)

// Storage persists player quest profiles, the global event runtime record and
// the raw definition documents. Backends are synchronous; callers that need
// async writes go through the autosave worker.
//
// LoadProfile returns (nil, nil) for an unknown player: first contact always
// starts from an empty profile.
type Storage interface {
	LoadProfile(ctx context.Context, playerID string) (*domain.PlayerQuestProfile, error)
	SaveProfile(ctx context.Context, profile *domain.PlayerQuestProfile) error

	// LoadQuestDefinitions and LoadEventDefinitions return raw definition
	// sections keyed by id, ready for the catalog parser.
	LoadQuestDefinitions(ctx context.Context) (map[string]map[string]any, error)
	LoadEventDefinitions(ctx context.Context) (map[string]map[string]any, error)

	// LoadEventRuntime returns (nil, nil) when no runtime record exists yet.
	LoadEventRuntime(ctx context.Context) (*domain.EventRuntimeState, error)
	SaveEventRuntime(ctx context.Context, state *domain.EventRuntimeState) error

	Close(ctx context.Context) error
}
