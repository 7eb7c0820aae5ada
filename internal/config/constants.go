package config

const (
	// Storage modes
	StorageModeMemory   = "memory"
	StorageModeFile     = "file"
	StorageModePostgres = "postgres"

	// Definition file names, resolved under DataDir
	FileQuestDefinitions = "quests.json"
	FileEventDefinitions = "events.json"
	ProfilesDirName      = "playerdata"
)
