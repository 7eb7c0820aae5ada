package handler

import (
	"net/http"
	"strings"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/domain"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/logger"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/quest"
)

// QuestHandler exposes the quest engine over HTTP. The game-engine adapter
// calls these endpoints from its join/quit/action hooks.
type QuestHandler struct {
	questService quest.Service
}

func NewQuestHandler(questService quest.Service) *QuestHandler {
	return &QuestHandler{questService: questService}
}

// QuestStateView is the wire form of one assigned quest. Timestamps are
// epoch milliseconds, zero when unset.
type QuestStateView struct {
	QuestID     string           `json:"quest_id"`
	Category    string           `json:"category"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Progress    int              `json:"progress"`
	Target      int              `json:"target"`
	Percent     float64          `json:"percent"`
	Completed   bool             `json:"completed"`
	Claimed     bool             `json:"claimed"`
	AssignedAt  int64            `json:"assigned_at"`
	CompletedAt int64            `json:"completed_at,omitempty"`
	ExpiresAt   int64            `json:"expires_at,omitempty"`
	Reward      *QuestRewardView `json:"reward,omitempty"`
}

// QuestRewardView is the wire form of a quest's reward spec.
type QuestRewardView struct {
	XP    float64  `json:"xp,omitempty"`
	Money float64  `json:"money,omitempty"`
	Items []string `json:"items,omitempty"`
}

// HistoryEntryView is the wire form of one history line.
type HistoryEntryView struct {
	QuestID   string `json:"quest_id"`
	Title     string `json:"title"`
	Timestamp int64  `json:"timestamp"`
	Status    string `json:"status"`
}

// ActiveQuestsResponse lists a player's live assignments.
type ActiveQuestsResponse struct {
	PlayerID string           `json:"player_id"`
	Quests   []QuestStateView `json:"quests"`
}

// HistoryResponse lists a player's quest history, most recent first.
type HistoryResponse struct {
	PlayerID string             `json:"player_id"`
	History  []HistoryEntryView `json:"history"`
}

// ClaimResponse reports the granted payout after multipliers.
type ClaimResponse struct {
	Message string   `json:"message"`
	XP      float64  `json:"xp"`
	Money   float64  `json:"money"`
	Items   []string `json:"items,omitempty"`
}

// ActionRequest is the body of the action ingress endpoint.
type ActionRequest struct {
	Type        string           `json:"type" validate:"required,actiontype"`
	Material    string           `json:"material,omitempty"`
	Entity      string           `json:"entity,omitempty"`
	Amount      int              `json:"amount,omitempty" validate:"omitempty,min=1"`
	ExternalKey string           `json:"external_key,omitempty"`
	Position    *domain.Position `json:"position,omitempty"`
}

// ExternalProgressRequest feeds progress from an out-of-game integration.
type ExternalProgressRequest struct {
	SourceKey string `json:"source_key" validate:"required"`
	Amount    int    `json:"amount" validate:"required,min=1"`
}

func questStateView(view domain.QuestProgressView) QuestStateView {
	out := QuestStateView{
		QuestID:     view.Quest.ID,
		Category:    string(view.Quest.Category),
		Title:       view.Quest.Title,
		Description: view.Quest.Description,
		Progress:    view.State.Progress,
		Target:      view.State.Target,
		Percent:     view.State.ProgressPercent(),
		Completed:   view.State.Completed,
		Claimed:     view.State.Claimed,
		AssignedAt:  view.State.AssignedAt.UnixMilli(),
	}
	if !view.State.CompletedAt.IsZero() {
		out.CompletedAt = view.State.CompletedAt.UnixMilli()
	}
	if !view.State.ExpiresAt.IsZero() {
		out.ExpiresAt = view.State.ExpiresAt.UnixMilli()
	}
	reward := view.Quest.Reward
	if reward.XP > 0 || reward.Money > 0 || len(reward.Items) > 0 {
		rv := &QuestRewardView{XP: reward.XP, Money: reward.Money}
		for _, item := range reward.Items {
			rv.Items = append(rv.Items, item.String())
		}
		out.Reward = rv
	}
	return out
}

// HandlePlayerJoin loads the profile, applies due resets and tops up quests.
// POST /api/v1/players/{playerID}/join
func (h *QuestHandler) HandlePlayerJoin(w http.ResponseWriter, r *http.Request) {
	playerID, ok := GetPathParam(r, w, "playerID")
	if !ok {
		return
	}

	if err := h.questService.HandlePlayerJoin(r.Context(), playerID); err != nil {
		respondServiceError(w, ErrMsgJoinFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgPlayerJoinedSuccess})
}

// HandlePlayerQuit saves and releases the profile.
// POST /api/v1/players/{playerID}/quit
func (h *QuestHandler) HandlePlayerQuit(w http.ResponseWriter, r *http.Request) {
	playerID, ok := GetPathParam(r, w, "playerID")
	if !ok {
		return
	}

	if err := h.questService.HandlePlayerQuit(r.Context(), playerID); err != nil {
		respondServiceError(w, ErrMsgQuitFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgPlayerQuitSuccess})
}

// HandleAccept assigns a quest on explicit request.
// POST /api/v1/players/{playerID}/quests/{questID}/accept
func (h *QuestHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	playerID, ok := GetPathParam(r, w, "playerID")
	if !ok {
		return
	}
	questID, ok := GetPathParam(r, w, "questID")
	if !ok {
		return
	}

	view, err := h.questService.Accept(r.Context(), playerID, questID)
	if err != nil {
		respondServiceError(w, ErrMsgAcceptFailed, err)
		return
	}
	respondJSON(w, http.StatusCreated, DataResponse{
		Message: MsgQuestAcceptedSuccess,
		Data:    questStateView(*view),
	})
}

// HandleClaim pays out a completed quest.
// POST /api/v1/players/{playerID}/quests/{questID}/claim
func (h *QuestHandler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	playerID, ok := GetPathParam(r, w, "playerID")
	if !ok {
		return
	}
	questID, ok := GetPathParam(r, w, "questID")
	if !ok {
		return
	}

	reward, err := h.questService.Claim(r.Context(), playerID, questID)
	if err != nil {
		respondServiceError(w, ErrMsgClaimFailed, err)
		return
	}

	resp := ClaimResponse{
		Message: MsgRewardClaimedSuccess,
		XP:      reward.XP,
		Money:   reward.Money,
	}
	for _, item := range reward.Items {
		resp.Items = append(resp.Items, item.String())
	}
	respondJSON(w, http.StatusOK, resp)
}

// HandleGetProgress returns the live view of one quest.
// GET /api/v1/players/{playerID}/quests/{questID}
func (h *QuestHandler) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	playerID, ok := GetPathParam(r, w, "playerID")
	if !ok {
		return
	}
	questID, ok := GetPathParam(r, w, "questID")
	if !ok {
		return
	}

	view, err := h.questService.CheckProgress(r.Context(), playerID, questID)
	if err != nil {
		respondServiceError(w, ErrMsgGetProgressFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, questStateView(*view))
}

// HandleGetActiveQuests lists every live assignment.
// GET /api/v1/players/{playerID}/quests
func (h *QuestHandler) HandleGetActiveQuests(w http.ResponseWriter, r *http.Request) {
	playerID, ok := GetPathParam(r, w, "playerID")
	if !ok {
		return
	}

	views, err := h.questService.GetActiveQuests(r.Context(), playerID)
	if err != nil {
		respondServiceError(w, ErrMsgGetQuestsFailed, err)
		return
	}

	resp := ActiveQuestsResponse{PlayerID: playerID, Quests: make([]QuestStateView, 0, len(views))}
	for _, view := range views {
		resp.Quests = append(resp.Quests, questStateView(view))
	}
	respondJSON(w, http.StatusOK, resp)
}

// HandleGetHistory returns the history log, most recent first.
// GET /api/v1/players/{playerID}/history
func (h *QuestHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	playerID, ok := GetPathParam(r, w, "playerID")
	if !ok {
		return
	}

	entries, err := h.questService.GetHistory(r.Context(), playerID)
	if err != nil {
		respondServiceError(w, ErrMsgGetHistoryFailed, err)
		return
	}

	resp := HistoryResponse{PlayerID: playerID, History: make([]HistoryEntryView, 0, len(entries))}
	for _, entry := range entries {
		resp.History = append(resp.History, HistoryEntryView{
			QuestID:   entry.QuestID,
			Title:     entry.Title,
			Timestamp: entry.Timestamp.UnixMilli(),
			Status:    string(entry.Status),
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

// HandleAction routes one gameplay action through the player's quests.
// POST /api/v1/players/{playerID}/actions
func (h *QuestHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	playerID, ok := GetPathParam(r, w, "playerID")
	if !ok {
		return
	}

	var req ActionRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Process action"); err != nil {
		return
	}

	action := domain.Action{
		Type:        domain.ActionType(strings.ToLower(req.Type)),
		Material:    req.Material,
		Entity:      req.Entity,
		Amount:      req.Amount,
		ExternalKey: req.ExternalKey,
		Position:    req.Position,
	}
	if action.Amount < 1 {
		action.Amount = 1
	}

	if err := h.questService.OnAction(r.Context(), playerID, action); err != nil {
		respondServiceError(w, ErrMsgActionFailed, err)
		return
	}

	logger.FromContext(r.Context()).Debug("Action ingested",
		"player_id", playerID, "type", action.Type)
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgActionProcessed})
}

// HandleExternalProgress feeds progress from an external integration.
// POST /api/v1/players/{playerID}/progress
func (h *QuestHandler) HandleExternalProgress(w http.ResponseWriter, r *http.Request) {
	playerID, ok := GetPathParam(r, w, "playerID")
	if !ok {
		return
	}

	var req ExternalProgressRequest
	if err := DecodeAndValidateRequest(r, w, &req, "External progress"); err != nil {
		return
	}

	if err := h.questService.RecordExternalProgress(r.Context(), playerID, req.SourceKey, req.Amount); err != nil {
		respondServiceError(w, ErrMsgActionFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgActionProcessed})
}

// HandleProcessResets applies due category resets for one player.
// POST /api/v1/players/{playerID}/resets
func (h *QuestHandler) HandleProcessResets(w http.ResponseWriter, r *http.Request) {
	playerID, ok := GetPathParam(r, w, "playerID")
	if !ok {
		return
	}

	if err := h.questService.ProcessResets(r.Context(), playerID, true); err != nil {
		respondServiceError(w, ErrMsgResetsFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgResetsProcessed})
}
