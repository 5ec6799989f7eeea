package handlers

import (
	"encoding/json"
	"net/http"

	"questbuddy/internal/models"
	"questbuddy/internal/service"
)

// RewardHandler handles reward HTTP requests
type RewardHandler struct {
	rewards *service.RewardService
}

// NewRewardHandler creates a new reward handler
func NewRewardHandler(rewards *service.RewardService) *RewardHandler {
	return &RewardHandler{rewards: rewards}
}

// List returns the rewards visible to the current session
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewards.ListForSession(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"rewards": rewards,
	})
}

// Create adds a reward for the signed-in parent
func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft models.RewardDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if draft.Title == "" {
		respondWithError(w, http.StatusBadRequest, "Title is required", "", nil)
		return
	}

	reward, err := h.rewards.Create(r.Context(), draft)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"reward":  reward,
	})
}

// Redeem spends a child's points on a reward. The childId field is only
// needed in a parent session; a child session always spends as itself.
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChildID string `json:"childId"`
	}
	if r.Body != nil {
		// Body is optional for child sessions.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.rewards.Redeem(r.Context(), r.PathValue("id"), req.ChildID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Deactivate retires a reward
func (h *RewardHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.rewards.Deactivate(r.Context(), r.PathValue("id")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
