package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/database/schema"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
)

// PostgresStorage persists profiles and the runtime record as JSONB rows.
// Definitions live in their own tables so an operator can edit quests with
// plain SQL and reload without a deploy.
type PostgresStorage struct {
	db *pgxpool.Pool
}

// NewPostgresStorage wraps an existing pool and applies the schema.
func NewPostgresStorage(ctx context.Context, db *pgxpool.Pool) (*PostgresStorage, error) {
	if _, err := db.Exec(ctx, schema.SchemaSQL); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &PostgresStorage{db: db}, nil
}

func (s *PostgresStorage) LoadProfile(ctx context.Context, playerID string) (*domain.PlayerQuestProfile, error) {
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT data FROM quest_profiles WHERE player_id = $1`, playerID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", playerID, err)
	}

	var record profileRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", playerID, err)
	}
	return decodeProfile(playerID, record), nil
}

func (s *PostgresStorage) SaveProfile(ctx context.Context, profile *domain.PlayerQuestProfile) error {
	data, err := json.Marshal(encodeProfile(profile))
	if err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", profile.PlayerID, err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO quest_profiles (player_id, data, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (player_id) DO UPDATE SET data = $2, updated_at = NOW()`,
		profile.PlayerID, data)
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", profile.PlayerID, err)
	}
	return nil
}

func (s *PostgresStorage) LoadQuestDefinitions(ctx context.Context) (map[string]map[string]any, error) {
	return s.loadDefinitions(ctx, `SELECT quest_id, data FROM quest_definitions`)
}

func (s *PostgresStorage) LoadEventDefinitions(ctx context.Context) (map[string]map[string]any, error) {
	return s.loadDefinitions(ctx, `SELECT event_id, data FROM event_definitions`)
}

func (s *PostgresStorage) loadDefinitions(ctx context.Context, query string) (map[string]map[string]any, error) {
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load definitions: %w", err)
	}
	defer rows.Close()

	sections := make(map[string]map[string]any)
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan definition row: %w", err)
		}
		var section map[string]any
		if err := json.Unmarshal(data, &section); err != nil {
			return nil, fmt.Errorf("failed to decode definition %s: %w", id, err)
		}
		sections[id] = section
	}
	return sections, rows.Err()
}

// UpsertQuestDefinition stores a raw quest definition document. The admin
// reload endpoint uses this to seed the table from a file drop.
func (s *PostgresStorage) UpsertQuestDefinition(ctx context.Context, questID string, section map[string]any) error {
	return s.upsertDefinition(ctx,
		`INSERT INTO quest_definitions (quest_id, data) VALUES ($1, $2)
		 ON CONFLICT (quest_id) DO UPDATE SET data = $2`, questID, section)
}

// UpsertEventDefinition stores a raw event definition document.
func (s *PostgresStorage) UpsertEventDefinition(ctx context.Context, eventID string, section map[string]any) error {
	return s.upsertDefinition(ctx,
		`INSERT INTO event_definitions (event_id, data) VALUES ($1, $2)
		 ON CONFLICT (event_id) DO UPDATE SET data = $2`, eventID, section)
}

func (s *PostgresStorage) upsertDefinition(ctx context.Context, query, id string, section map[string]any) error {
	data, err := json.Marshal(section)
	if err != nil {
		return fmt.Errorf("failed to encode definition %s: %w", id, err)
	}
	if _, err := s.db.Exec(ctx, query, id, data); err != nil {
		return fmt.Errorf("failed to upsert definition %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStorage) LoadEventRuntime(ctx context.Context) (*domain.EventRuntimeState, error) {
	var data []byte
	err := s.db.QueryRow(ctx, `SELECT data FROM event_runtime WHERE singleton`).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load event runtime: %w", err)
	}

	var record eventRuntimeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode event runtime: %w", err)
	}
	return decodeEventRuntime(record), nil
}

func (s *PostgresStorage) SaveEventRuntime(ctx context.Context, state *domain.EventRuntimeState) error {
	data, err := json.Marshal(encodeEventRuntime(state))
	if err != nil {
		return fmt.Errorf("failed to encode event runtime: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO event_runtime (singleton, data, updated_at)
		 VALUES (TRUE, $1, NOW())
		 ON CONFLICT (singleton) DO UPDATE SET data = $1, updated_at = NOW()`,
		data)
	if err != nil {
		return fmt.Errorf("failed to save event runtime: %w", err)
	}
	return nil
}

// CheckHealth reports whether the database is reachable. The readiness probe
// uses it.
func (s *PostgresStorage) CheckHealth(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStorage) Close(_ context.Context) error {
	s.db.Close()
	return nil
}
