package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/config"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
)

const (
	fileRuntimeName  = "event_runtime.json"
	filePermissions  = 0644
	dirPermissions   = 0755
	profileExtension = ".json"
)

// FileStorage persists everything as JSON files under a data directory:
//
//	<dir>/quests.json            quest definitions
//	<dir>/events.json            event definitions
//	<dir>/event_runtime.json     active event runtime record
//	<dir>/playerdata/<id>.json   one profile per player
//
// Writes go through a temp file and rename so a crash never leaves a
// half-written profile behind.
type FileStorage struct {
	dir string
}

// NewFileStorage creates the backend and its directory layout.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Join(dir, config.ProfilesDirName), dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (s *FileStorage) profilePath(playerID string) string {
	return filepath.Join(s.dir, config.ProfilesDirName, sanitizeID(playerID)+profileExtension)
}

// sanitizeID keeps player ids filesystem-safe. IDs are UUIDs or plain names
// in practice; anything else is flattened.
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}

func (s *FileStorage) LoadProfile(_ context.Context, playerID string) (*domain.PlayerQuestProfile, error) {
	data, err := os.ReadFile(s.profilePath(playerID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", playerID, err)
	}

	var record profileRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", playerID, err)
	}
	return decodeProfile(playerID, record), nil
}

func (s *FileStorage) SaveProfile(_ context.Context, profile *domain.PlayerQuestProfile) error {
	return s.writeJSON(s.profilePath(profile.PlayerID), encodeProfile(profile))
}

func (s *FileStorage) LoadQuestDefinitions(_ context.Context) (map[string]map[string]any, error) {
	return s.loadDefinitions(config.FileQuestDefinitions)
}

func (s *FileStorage) LoadEventDefinitions(_ context.Context) (map[string]map[string]any, error) {
	return s.loadDefinitions(config.FileEventDefinitions)
}

func (s *FileStorage) loadDefinitions(name string) (map[string]map[string]any, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	var sections map[string]map[string]any
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return sections, nil
}

func (s *FileStorage) LoadEventRuntime(_ context.Context) (*domain.EventRuntimeState, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, fileRuntimeName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read event runtime: %w", err)
	}

	var record eventRuntimeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode event runtime: %w", err)
	}
	return decodeEventRuntime(record), nil
}

func (s *FileStorage) SaveEventRuntime(_ context.Context, state *domain.EventRuntimeState) error {
	return s.writeJSON(filepath.Join(s.dir, fileRuntimeName), encodeEventRuntime(state))
}

func (s *FileStorage) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, filePermissions); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *FileStorage) Close(_ context.Context) error {
	return nil
}
