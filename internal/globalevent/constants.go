package globalevent

// Neutral multiplier baseline. Effects fold on top of this; stopping the
// active event restores it.
const NeutralMultiplier = 1.0

// Display templates for the current-or-upcoming banner.
const (
	DisplayActiveFormat   = "%s - %d min remaining"
	DisplayUpcomingFormat = "Next event in %d min"
	DisplayIdle           = "No event scheduled"
)

// Error message constants
const (
	ErrMsgStartFailed     = "failed to start event"
	ErrMsgStopFailed      = "failed to stop event"
	ErrMsgHydrateFailed   = "failed to hydrate event runtime"
	ErrMsgNoEnabledEvents = "no enabled events to choose from"
)

// Log message constants
const (
	LogMsgEventStarted    = "Global event started"
	LogMsgEventResumed    = "Global event resumed from persisted state"
	LogMsgEventStopped    = "Global event stopped"
	LogMsgStaleRuntime    = "Persisted event window already elapsed, clearing"
	LogMsgRuntimeSaveFail = "Failed to persist event runtime"
)
