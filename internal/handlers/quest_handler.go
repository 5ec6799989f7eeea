package handlers

import (
	"encoding/json"
	"net/http"

	"questbuddy/internal/models"
	"questbuddy/internal/service"
)

// QuestHandler handles quest HTTP requests
type QuestHandler struct {
	quests *service.QuestService
}

// NewQuestHandler creates a new quest handler
func NewQuestHandler(quests *service.QuestService) *QuestHandler {
	return &QuestHandler{quests: quests}
}

// List returns the quests visible to the current session
func (h *QuestHandler) List(w http.ResponseWriter, r *http.Request) {
	quests, err := h.quests.ListForSession(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"quests":  quests,
	})
}

// Create adds a quest for the signed-in parent
func (h *QuestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft models.QuestDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if draft.Title == "" {
		respondWithError(w, http.StatusBadRequest, "Title is required", "", nil)
		return
	}

	quest, err := h.quests.Create(r.Context(), draft)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"quest":   quest,
	})
}

// Complete marks a quest done for the signed-in child
func (h *QuestHandler) Complete(w http.ResponseWriter, r *http.Request) {
	quest, leveledUp, err := h.quests.Complete(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"quest":     quest,
		"leveledUp": leveledUp,
	})
}

// Verify confirms a completed quest
func (h *QuestHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if err := h.quests.Verify(r.Context(), r.PathValue("id")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Delete removes a quest owned by the signed-in parent
func (h *QuestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.quests.Remove(r.Context(), r.PathValue("id")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Cleanup removes quests whose creators no longer exist
func (h *QuestHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	removed, err := h.quests.CleanupOrphaned(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"removed": removed,
	})
}
