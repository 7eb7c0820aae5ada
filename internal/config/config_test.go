package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageModeFile, cfg.StorageMode)
	assert.Equal(t, 24, cfg.DailyResetHours)
	assert.Equal(t, "MONDAY", cfg.WeeklyResetDay)
	assert.Equal(t, 30, cfg.MonthlyResetDays)
	assert.Equal(t, 3, cfg.QuestsPerPlayer)
	assert.Equal(t, 1.0, cfg.XPMultiplier)
	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, time.Monday, cfg.ResetWeekday())
	assert.Equal(t, time.UTC, cfg.ResetLocation())
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "PORT", "not-a-number"},
		{"bad storage mode", "STORAGE_MODE", "redis"},
		{"bad weekday", "QUEST_WEEKLY_RESET_DAY", "SOMEDAY"},
		{"bad timezone", "QUEST_RESET_TIMEZONE", "Mars/Olympus"},
		{"negative daily hours", "QUEST_DAILY_RESET_HOURS", "-1"},
		{"zero monthly days", "QUEST_MONTHLY_RESET_DAYS", "0"},
		{"zero quest cap", "QUESTS_PER_PLAYER", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("API_KEY", "test-key")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("QUEST_DAILY_RESET_HOURS", "0")
	t.Setenv("QUEST_WEEKLY_RESET_DAY", "friday")
	t.Setenv("QUEST_RESET_TIMEZONE", "Europe/Berlin")
	t.Setenv("QUEST_XP_MULTIPLIER", "2.5")
	t.Setenv("EVENT_SCHEDULER_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.DailyResetHours)
	assert.Equal(t, time.Friday, cfg.ResetWeekday())
	assert.Equal(t, "Europe/Berlin", cfg.ResetLocation().String())
	assert.Equal(t, 2.5, cfg.XPMultiplier)
	assert.False(t, cfg.SchedulerEnabled)
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday(" Wednesday ")
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, day)

	_, err = ParseWeekday("")
	assert.Error(t, err)
}

func TestValidateEnv(t *testing.T) {
	t.Setenv("ENV_SCHEMA_VERSION", ExpectedEnvSchemaVersion)
	t.Setenv("API_KEY", "test-key")
	t.Setenv("STORAGE_MODE", "file")

	require.NoError(t, ValidateEnv())

	t.Setenv("STORAGE_MODE", "postgres")
	t.Setenv("DB_USER", "")
	assert.Error(t, ValidateEnv())
}
