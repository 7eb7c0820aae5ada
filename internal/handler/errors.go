package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query and path parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgMissingPathParam  = "Missing %s path parameter"

	// Quest operation error messages
	ErrMsgJoinFailed        = "Failed to load player profile"
	ErrMsgQuitFailed        = "Failed to save player profile"
	ErrMsgAcceptFailed      = "Failed to accept quest"
	ErrMsgClaimFailed       = "Failed to claim quest reward"
	ErrMsgGetQuestsFailed   = "Failed to retrieve quests"
	ErrMsgGetProgressFailed = "Failed to retrieve quest progress"
	ErrMsgGetHistoryFailed  = "Failed to retrieve quest history"
	ErrMsgActionFailed      = "Failed to process action"
	ErrMsgResetsFailed      = "Failed to process resets"

	// Global event error messages
	ErrMsgStartEventFailed = "Failed to start event"
	ErrMsgStopEventFailed  = "Failed to stop event"
	ErrMsgListEventsFailed = "Failed to list events"

	// Admin error messages
	ErrMsgReloadFailed = "Failed to reload definitions"
	ErrMsgFlushFailed  = "Failed to flush profiles"
)

// User-facing domain error messages
const (
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgQuestNotFoundError  = "Quest not found"
	ErrMsgNotEligibleError    = "Quest cannot be accepted"
	ErrMsgNotReadyError       = "Quest is not ready to claim"
	ErrMsgEventNotFoundError  = "Event not found"
	ErrMsgEventDisabledError  = "Event is disabled"
	ErrMsgNoEventsError       = "No events are available"
	ErrMsgProfileMissingError = "Player profile is not loaded"
)

// Success messages for API responses
const (
	MsgPlayerJoinedSuccess  = "Player profile loaded"
	MsgPlayerQuitSuccess    = "Player profile saved"
	MsgQuestAcceptedSuccess = "Quest accepted"
	MsgRewardClaimedSuccess = "Quest reward claimed"
	MsgActionProcessed      = "Action processed"
	MsgResetsProcessed      = "Resets processed"
	MsgEventStartedSuccess  = "Event started"
	MsgEventStoppedSuccess  = "Event stopped"
	MsgNoActiveEvent        = "No event is currently active"
	MsgReloadSuccess        = "Definitions reloaded successfully"
	MsgFlushSuccess         = "Profiles flushed successfully"
)
