package domain

// Notification event types published on the in-process bus whenever visible
// quest or event state changes. Presentation layers subscribe to these.
const (
	EventTypeQuestAccepted    = "quest.accepted"
	EventTypeQuestProgress    = "quest.progress"
	EventTypeQuestCompleted   = "quest.completed"
	EventTypeQuestClaimed     = "quest.claimed"
	EventTypeQuestsReset      = "quest.reset"
	EventTypeGlobalEventStart = "globalevent.started"
	EventTypeGlobalEventEnd   = "globalevent.ended"
)
