package schema

// SchemaSQL contains the full database schema initialization script
const SchemaSQL = `
-- Player Quest Profiles
-- One JSONB document per player: live states, history log, reset stamps.
CREATE TABLE IF NOT EXISTS quest_profiles (
    player_id VARCHAR(64) PRIMARY KEY,
    data JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Quest Definitions
-- Raw definition documents, parsed into the catalog on load/reload.
CREATE TABLE IF NOT EXISTS quest_definitions (
    quest_id VARCHAR(64) PRIMARY KEY,
    data JSONB NOT NULL
);

-- Global Event Definitions
CREATE TABLE IF NOT EXISTS event_definitions (
    event_id VARCHAR(64) PRIMARY KEY,
    data JSONB NOT NULL
);

-- Global Event Runtime
-- Single row holding the active event window and trigger timestamps.
CREATE TABLE IF NOT EXISTS event_runtime (
    singleton BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
    data JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_quest_profiles_updated_at ON quest_profiles (updated_at);
`
