package handler

import (
	"net/http"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/catalog"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/logger"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/progress"
	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/storage"
)

// AdminHandler covers operational endpoints: definition reload and profile
// store introspection.
type AdminHandler struct {
	parser  *catalog.Parser
	quests  *catalog.QuestCatalog
	events  *catalog.EventCatalog
	store   *progress.Store
	backend storage.Storage
}

func NewAdminHandler(
	parser *catalog.Parser,
	quests *catalog.QuestCatalog,
	events *catalog.EventCatalog,
	store *progress.Store,
	backend storage.Storage,
) *AdminHandler {
	return &AdminHandler{
		parser:  parser,
		quests:  quests,
		events:  events,
		store:   store,
		backend: backend,
	}
}

// ReloadResponse reports how many definitions each catalog now holds.
type ReloadResponse struct {
	Message string `json:"message"`
	Quests  int    `json:"quests"`
	Events  int    `json:"events"`
}

// StoreStatsResponse reports the profile store's live state.
type StoreStatsResponse struct {
	LoadedProfiles []string `json:"loaded_profiles"`
	DirtyProfiles  int      `json:"dirty_profiles"`
}

// FlushResponse reports a manual flush result.
type FlushResponse struct {
	Message string `json:"message"`
	Saved   int    `json:"saved"`
}

// HandleReloadDefinitions re-reads both definition documents and atomically
// swaps the catalogs. Live quest states for removed quests survive until
// their category's next reset.
// POST /api/v1/admin/reload
func (h *AdminHandler) HandleReloadDefinitions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	questSections, err := h.backend.LoadQuestDefinitions(ctx)
	if err != nil {
		log.Error("Failed to load quest definitions", "error", err)
		respondError(w, http.StatusInternalServerError, ErrMsgReloadFailed)
		return
	}
	eventSections, err := h.backend.LoadEventDefinitions(ctx)
	if err != nil {
		log.Error("Failed to load event definitions", "error", err)
		respondError(w, http.StatusInternalServerError, ErrMsgReloadFailed)
		return
	}

	h.quests.Replace(h.parser.ParseQuests(ctx, questSections))
	h.events.Replace(h.parser.ParseEvents(ctx, eventSections))

	log.Info("Definitions reloaded", "quests", h.quests.Len(), "events", h.events.Len())
	respondJSON(w, http.StatusOK, ReloadResponse{
		Message: MsgReloadSuccess,
		Quests:  h.quests.Len(),
		Events:  h.events.Len(),
	})
}

// HandleGetStoreStats reports loaded and dirty profile counts.
// GET /api/v1/admin/profiles/stats
func (h *AdminHandler) HandleGetStoreStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, StoreStatsResponse{
		LoadedProfiles: h.store.LoadedIDs(),
		DirtyProfiles:  h.store.DirtyCount(),
	})
}

// HandleFlushProfiles forces a synchronous flush of all dirty profiles.
// POST /api/v1/admin/profiles/flush
func (h *AdminHandler) HandleFlushProfiles(w http.ResponseWriter, r *http.Request) {
	saved, err := h.store.FlushDirty(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("Manual flush failed", "saved", saved, "error", err)
		respondError(w, http.StatusInternalServerError, ErrMsgFlushFailed)
		return
	}
	respondJSON(w, http.StatusOK, FlushResponse{Message: MsgFlushSuccess, Saved: saved})
}
