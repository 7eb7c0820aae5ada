package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port     int
	LogLevel string
	APIKey   string // API key for authentication

	// Storage
	StorageMode     string // "memory", "file" or "postgres"
	DataDir         string // definition files and file-backed profiles
	AutosaveSeconds int    // 0 disables the autosave worker
	DBUser          string
	DBPassword      string
	DBHost          string
	DBPort          string
	DBName          string

	// Quest reset rules
	DailyResetHours  int    // 0 means daily quests are always due for reset
	WeeklyResetDay   string // weekday name, e.g. "MONDAY"
	MonthlyResetDays int
	ResetTimezone    string // IANA zone used for weekly local-date comparisons
	QuestsPerPlayer  int    // per-category cap handed out by assignment
	DefaultQuestPerm string // permission applied to quests without their own

	// Reward multipliers applied on claim, before event boosts
	XPMultiplier    float64
	MoneyMultiplier float64

	// Global event scheduler
	SchedulerEnabled     bool
	EventIntervalMinutes int
	EventTickSeconds     int
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		APIKey:           getEnv("API_KEY", ""),
		StorageMode:      strings.ToLower(getEnv("STORAGE_MODE", "file")),
		DataDir:          getEnv("DATA_DIR", "data"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", "postgres"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBName:           getEnv("DB_NAME", "avertoxquest"),
		WeeklyResetDay:   strings.ToUpper(getEnv("QUEST_WEEKLY_RESET_DAY", "MONDAY")),
		ResetTimezone:    getEnv("QUEST_RESET_TIMEZONE", "UTC"),
		DefaultQuestPerm: getEnv("QUEST_DEFAULT_PERMISSION", ""),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.AutosaveSeconds, err = getEnvInt("AUTOSAVE_SECONDS", 300); err != nil {
		return nil, err
	}
	if cfg.DailyResetHours, err = getEnvInt("QUEST_DAILY_RESET_HOURS", 24); err != nil {
		return nil, err
	}
	if cfg.MonthlyResetDays, err = getEnvInt("QUEST_MONTHLY_RESET_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.QuestsPerPlayer, err = getEnvInt("QUESTS_PER_PLAYER", 3); err != nil {
		return nil, err
	}
	if cfg.EventIntervalMinutes, err = getEnvInt("EVENT_INTERVAL_MINUTES", 120); err != nil {
		return nil, err
	}
	if cfg.EventTickSeconds, err = getEnvInt("EVENT_TICK_SECONDS", 30); err != nil {
		return nil, err
	}
	if cfg.XPMultiplier, err = getEnvFloat("QUEST_XP_MULTIPLIER", 1.0); err != nil {
		return nil, err
	}
	if cfg.MoneyMultiplier, err = getEnvFloat("QUEST_MONEY_MULTIPLIER", 1.0); err != nil {
		return nil, err
	}
	cfg.SchedulerEnabled, err = getEnvBool("EVENT_SCHEDULER_ENABLED", true)
	if err != nil {
		return nil, err
	}

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageMode {
	case StorageModeMemory, StorageModeFile, StorageModePostgres:
	default:
		return fmt.Errorf("invalid STORAGE_MODE value: %q", c.StorageMode)
	}
	if _, err := ParseWeekday(c.WeeklyResetDay); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.ResetTimezone); err != nil {
		return fmt.Errorf("invalid QUEST_RESET_TIMEZONE value: %w", err)
	}
	if c.DailyResetHours < 0 {
		return fmt.Errorf("QUEST_DAILY_RESET_HOURS must not be negative")
	}
	if c.MonthlyResetDays < 1 {
		return fmt.Errorf("QUEST_MONTHLY_RESET_DAYS must be at least 1")
	}
	if c.QuestsPerPlayer < 1 {
		return fmt.Errorf("QUESTS_PER_PLAYER must be at least 1")
	}
	if c.EventTickSeconds < 1 {
		return fmt.Errorf("EVENT_TICK_SECONDS must be at least 1")
	}
	return nil
}

// ParseWeekday maps a weekday name to time.Weekday, case-insensitively.
func ParseWeekday(name string) (time.Weekday, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "SUNDAY":
		return time.Sunday, nil
	case "MONDAY":
		return time.Monday, nil
	case "TUESDAY":
		return time.Tuesday, nil
	case "WEDNESDAY":
		return time.Wednesday, nil
	case "THURSDAY":
		return time.Thursday, nil
	case "FRIDAY":
		return time.Friday, nil
	case "SATURDAY":
		return time.Saturday, nil
	default:
		return time.Sunday, fmt.Errorf("invalid weekday value: %q", name)
	}
}

// ResetWeekday returns the configured weekly reset day. Load validates the
// value, so the fallback is only hit on a zero-value Config.
func (c *Config) ResetWeekday() time.Weekday {
	day, err := ParseWeekday(c.WeeklyResetDay)
	if err != nil {
		return time.Monday
	}
	return day
}

// ResetLocation returns the IANA location for weekly local-date comparisons.
func (c *Config) ResetLocation() *time.Location {
	loc, err := time.LoadLocation(c.ResetTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return value, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return value, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return value, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
