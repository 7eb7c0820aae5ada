package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/storage"
)

func TestStore_LoadCreatesEmptyProfile(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryStorage(), 8, time.Minute)

	profile, err := store.Load(ctx, "fresh")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "fresh", profile.PlayerID)
	assert.Empty(t, profile.States)

	// Second load returns the same instance, not a new one.
	again, err := store.Load(ctx, "fresh")
	require.NoError(t, err)
	assert.Same(t, profile, again)
}

func TestStore_UnloadSavesAndCaches(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStorage()
	store := NewStore(backend, 8, time.Minute)

	profile, err := store.Load(ctx, "p1")
	require.NoError(t, err)
	now := time.Now()
	profile.PutState(domain.NewQuestState("q1", domain.CategoryDaily, 5, time.Time{}, now))

	require.NoError(t, store.Unload(ctx, "p1"))
	_, loaded := store.Get("p1")
	assert.False(t, loaded, "profile should leave the loaded map")

	// Persisted copy exists.
	persisted, err := backend.LoadProfile(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.NotNil(t, persisted.State("q1"))

	// Re-load within TTL hits the cache and returns the same instance.
	again, err := store.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Same(t, profile, again)
}

func TestStore_FlushDirty(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStorage()
	store := NewStore(backend, 8, time.Minute)

	profile, err := store.Load(ctx, "p1")
	require.NoError(t, err)
	profile.PutState(domain.NewQuestState("q1", domain.CategoryDaily, 5, time.Time{}, time.Now()))
	store.MarkDirty("p1")

	_, err = store.Load(ctx, "p2") // loaded but clean
	require.NoError(t, err)

	assert.Equal(t, 1, store.DirtyCount())
	saved, err := store.FlushDirty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	assert.Equal(t, 0, store.DirtyCount())

	persisted, err := backend.LoadProfile(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, persisted)
}

type failingSaveStorage struct {
	*storage.MemoryStorage
	mu    sync.Mutex
	fails int
}

func (f *failingSaveStorage) SaveProfile(ctx context.Context, profile *domain.PlayerQuestProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails > 0 {
		f.fails--
		return errors.New("backend unavailable")
	}
	return f.MemoryStorage.SaveProfile(ctx, profile)
}

func TestStore_FlushDirtyRetriesFailedSaves(t *testing.T) {
	ctx := context.Background()
	backend := &failingSaveStorage{MemoryStorage: storage.NewMemoryStorage(), fails: 1}
	store := NewStore(backend, 8, time.Minute)

	_, err := store.Load(ctx, "p1")
	require.NoError(t, err)
	store.MarkDirty("p1")

	saved, err := store.FlushDirty(ctx)
	assert.Error(t, err)
	assert.Equal(t, 0, saved)
	assert.Equal(t, 1, store.DirtyCount(), "failed save should re-mark the profile")

	saved, err = store.FlushDirty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, saved)
}

func TestStore_SaveAll(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryStorage()
	store := NewStore(backend, 8, time.Minute)

	for _, id := range []string{"a", "b", "c"} {
		_, err := store.Load(ctx, id)
		require.NoError(t, err)
	}

	require.NoError(t, store.SaveAll(ctx))
	for _, id := range []string{"a", "b", "c"} {
		persisted, err := backend.LoadProfile(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, persisted, "profile %s should be persisted", id)
	}
	assert.Equal(t, []string{"a", "b", "c"}, store.LoadedIDs())
}

func TestStore_ConcurrentLoadSingleInstance(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryStorage(), 8, time.Minute)

	const goroutines = 16
	profiles := make([]*domain.PlayerQuestProfile, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			p, err := store.Load(ctx, "same")
			require.NoError(t, err)
			profiles[i] = p
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, profiles[0], profiles[i], "all loads must return one instance")
	}
}
