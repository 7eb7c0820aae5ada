package handler

import (
	"net/http"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/catalog"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/globalevent"
)

// EventHandler exposes the global event engine over HTTP.
type EventHandler struct {
	eventService globalevent.Service
	events       *catalog.EventCatalog
}

func NewEventHandler(eventService globalevent.Service, events *catalog.EventCatalog) *EventHandler {
	return &EventHandler{eventService: eventService, events: events}
}

// EventView is the wire form of one event definition.
type EventView struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description,omitempty"`
	DurationMinutes int          `json:"duration_minutes"`
	Enabled         bool         `json:"enabled"`
	Active          bool         `json:"active"`
	Effects         []EffectView `json:"effects,omitempty"`
}

// EffectView is the wire form of one effect.
type EffectView struct {
	Type      string  `json:"type"`
	Value     float64 `json:"value,omitempty"`
	Potion    string  `json:"potion,omitempty"`
	Amplifier int     `json:"amplifier,omitempty"`
}

// EventsResponse lists every known event plus the active one.
type EventsResponse struct {
	ActiveEventID string      `json:"active_event_id,omitempty"`
	Events        []EventView `json:"events"`
}

// MultipliersResponse reports the multipliers currently in force.
type MultipliersResponse struct {
	Money       float64 `json:"money"`
	XP          float64 `json:"xp"`
	DropRate    float64 `json:"drop_rate"`
	MiningSpeed float64 `json:"mining_speed"`
}

// DisplayResponse carries the banner line for presentation layers.
type DisplayResponse struct {
	Display string `json:"display"`
}

// TriggerResponse reports which event a random trigger started.
type TriggerResponse struct {
	Message string `json:"message"`
	EventID string `json:"event_id"`
}

func eventView(ev *domain.GlobalEvent) EventView {
	out := EventView{
		ID:              ev.ID,
		Name:            ev.Name,
		Description:     ev.Description,
		DurationMinutes: ev.DurationMinutes,
		Enabled:         ev.Enabled,
		Active:          ev.Active,
	}
	for _, effect := range ev.Effects {
		out.Effects = append(out.Effects, EffectView{
			Type:      string(effect.Type),
			Value:     effect.Value,
			Potion:    effect.Potion,
			Amplifier: effect.Amplifier,
		})
	}
	return out
}

// HandleListEvents lists every loaded event definition.
// GET /api/v1/events
func (h *EventHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	resp := EventsResponse{Events: make([]EventView, 0, h.events.Len())}
	if active := h.eventService.ActiveEvent(); active != nil {
		resp.ActiveEventID = active.ID
	}
	for _, ev := range h.events.All() {
		resp.Events = append(resp.Events, eventView(ev))
	}
	respondJSON(w, http.StatusOK, resp)
}

// HandleGetActiveEvent returns the running event, if any.
// GET /api/v1/events/active
func (h *EventHandler) HandleGetActiveEvent(w http.ResponseWriter, r *http.Request) {
	active := h.eventService.ActiveEvent()
	if active == nil {
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgNoActiveEvent})
		return
	}
	respondJSON(w, http.StatusOK, eventView(active))
}

// HandleGetMultipliers reports the multipliers currently in force.
// GET /api/v1/events/multipliers
func (h *EventHandler) HandleGetMultipliers(w http.ResponseWriter, r *http.Request) {
	mult := h.eventService.Current()
	respondJSON(w, http.StatusOK, MultipliersResponse{
		Money:       mult.Money,
		XP:          mult.XP,
		DropRate:    mult.DropRate,
		MiningSpeed: mult.MiningSpeed,
	})
}

// HandleGetDisplay returns the banner line.
// GET /api/v1/events/display
func (h *EventHandler) HandleGetDisplay(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, DisplayResponse{Display: h.eventService.Display()})
}

// HandleStartEvent starts a specific event with broadcast.
// POST /api/v1/admin/events/{eventID}/start
func (h *EventHandler) HandleStartEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := GetPathParam(r, w, "eventID")
	if !ok {
		return
	}

	if err := h.eventService.StartEvent(r.Context(), eventID, true, false); err != nil {
		respondServiceError(w, ErrMsgStartEventFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgEventStartedSuccess})
}

// HandleStopEvent stops the running event. No-op success when idle.
// POST /api/v1/admin/events/stop
func (h *EventHandler) HandleStopEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.eventService.StopActiveEvent(r.Context(), true); err != nil {
		respondServiceError(w, ErrMsgStopEventFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgEventStoppedSuccess})
}

// HandleTriggerRandomEvent starts a uniformly random enabled event.
// POST /api/v1/admin/events/trigger
func (h *EventHandler) HandleTriggerRandomEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := h.eventService.TriggerRandomEvent(r.Context())
	if err != nil {
		respondServiceError(w, ErrMsgStartEventFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, TriggerResponse{
		Message: MsgEventStartedSuccess,
		EventID: eventID,
	})
}
