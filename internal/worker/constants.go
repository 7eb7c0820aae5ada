package worker

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

// LogMsgWorkerJobFailed is logged when a worker fails to process a job
const LogMsgWorkerJobFailed = "Worker job failed"

// ============================================================================
// Log Messages - Autosave Worker
// ============================================================================

// Log messages for autosave worker operations
const (
	LogMsgAutosaveStarted   = "Autosave worker started"
	LogMsgAutosaveCompleted = "Autosave completed"
	LogMsgAutosaveFailed    = "Autosave failed"
	LogMsgAutosaveSkipped   = "Autosave skipped, previous run still in flight"
)

// ============================================================================
// Log Messages - Scheduled Jobs
// ============================================================================

// Log messages for reset sweep and event tick jobs
const (
	LogMsgResetSweepFailed = "Reset sweep failed for player"
	LogMsgEventTickFailed  = "Event tick failed"
)

// ============================================================================
// Test Configuration
// ============================================================================

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount           = 2
	TestQueueSize             = 10
	TestExpectedJobCount      = 2
	TestWorkerProcessWaitTime = 100 // milliseconds
)
