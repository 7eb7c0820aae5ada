package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Business metric names
const (
	MetricNameQuestsAccepted   = "quests_accepted_total"
	MetricNameQuestsCompleted  = "quests_completed_total"
	MetricNameQuestsClaimed    = "quests_claimed_total"
	MetricNameQuestsExpired    = "quests_expired_total"
	MetricNameQuestResets      = "quest_resets_total"
	MetricNameActionsProcessed = "quest_actions_processed_total"
	MetricNameProfilesLoaded   = "quest_profiles_loaded"
	MetricNameProfilesFlushed  = "quest_profiles_flushed_total"
	MetricNameGlobalEventsRun  = "global_events_started_total"
	MetricNameGlobalEventLive  = "global_event_active"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Business metric help text
const (
	HelpTextQuestsAccepted   = "Total number of quests accepted by players"
	HelpTextQuestsCompleted  = "Total number of quests completed"
	HelpTextQuestsClaimed    = "Total number of quest rewards claimed"
	HelpTextQuestsExpired    = "Total number of quest states expired"
	HelpTextQuestResets      = "Total number of per-category quest resets"
	HelpTextActionsProcessed = "Total number of player actions routed through quest matching"
	HelpTextProfilesLoaded   = "Current number of loaded player quest profiles"
	HelpTextProfilesFlushed  = "Total number of profiles written by the autosave worker"
	HelpTextGlobalEventsRun  = "Total number of global events started"
	HelpTextGlobalEventLive  = "Whether a global event is currently active (0 or 1)"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelType     = "type"
	LabelCategory = "category"
	LabelQuest    = "quest"
	LabelEvent    = "event"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
