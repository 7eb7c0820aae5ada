package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := acquireBuffer()
	defer releaseBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already sent; log and give up on the body
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP
// responses. Precondition failures stay 4xx so clients can distinguish them
// from genuine faults.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrQuestNotFound):
		return http.StatusNotFound, ErrMsgQuestNotFoundError
	case errors.Is(err, domain.ErrQuestNotEligible):
		return http.StatusConflict, ErrMsgNotEligibleError
	case errors.Is(err, domain.ErrQuestNotReady):
		return http.StatusConflict, ErrMsgNotReadyError
	case errors.Is(err, domain.ErrEventNotFound):
		return http.StatusNotFound, ErrMsgEventNotFoundError
	case errors.Is(err, domain.ErrEventDisabled):
		return http.StatusConflict, ErrMsgEventDisabledError
	case errors.Is(err, domain.ErrNoEventsLoaded):
		return http.StatusConflict, ErrMsgNoEventsError
	case errors.Is(err, domain.ErrProfileNotLoaded):
		return http.StatusNotFound, ErrMsgProfileMissingError
	case errors.Is(err, domain.ErrDefinitionInvalid):
		return http.StatusBadRequest, ErrMsgInvalidRequestSummary
	}

	// Short messages from wrapped errors are safe enough to surface
	errMsg := err.Error()
	if errMsg != "" && len(errMsg) < 200 {
		return http.StatusInternalServerError, errMsg
	}
	return http.StatusInternalServerError, ErrMsgGenericServerError
}

// respondServiceError logs the error and writes the mapped client response
func respondServiceError(w http.ResponseWriter, opName string, err error) {
	status, message := mapServiceErrorToUserMessage(err)
	if status >= http.StatusInternalServerError {
		slog.Error(opName+" failed", "error", err)
	}
	respondError(w, status, message)
}
