package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgQuestNotFound    = "quest not found"
	ErrMsgQuestNotEligible = "quest not eligible"
	ErrMsgQuestNotReady    = "quest not completed or already claimed"

	ErrMsgEventNotFound  = "event not found"
	ErrMsgEventDisabled  = "event is disabled"
	ErrMsgNoEventsLoaded = "no enabled events loaded"

	ErrMsgProfileNotLoaded = "profile not loaded"

	ErrMsgDefinitionInvalid = "invalid definition"
)

// Common domain errors.
// Wrap these with fmt.Errorf("%w: %s", domain.ErrXxx, details) for context.
var (
	ErrQuestNotFound    = errors.New(ErrMsgQuestNotFound)
	ErrQuestNotEligible = errors.New(ErrMsgQuestNotEligible)
	ErrQuestNotReady    = errors.New(ErrMsgQuestNotReady)

	ErrEventNotFound  = errors.New(ErrMsgEventNotFound)
	ErrEventDisabled  = errors.New(ErrMsgEventDisabled)
	ErrNoEventsLoaded = errors.New(ErrMsgNoEventsLoaded)

	ErrProfileNotLoaded = errors.New(ErrMsgProfileNotLoaded)

	ErrDefinitionInvalid = errors.New(ErrMsgDefinitionInvalid)
)
