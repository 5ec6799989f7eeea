package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"questbuddy/internal/service"
)

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondWithJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   userMsg,
	})
}

// respondWithServiceError maps service sentinels onto HTTP statuses so
// handlers don't repeat the switch.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidAccessCode):
		respondWithError(w, http.StatusUnauthorized, err.Error(), "", nil)
	case errors.Is(err, service.ErrNotLoggedIn),
		errors.Is(err, service.ErrNotParentSession),
		errors.Is(err, service.ErrNotChildSession):
		respondWithError(w, http.StatusForbidden, err.Error(), "", nil)
	case errors.Is(err, service.ErrQuestNotFound),
		errors.Is(err, service.ErrRewardNotFound),
		errors.Is(err, service.ErrChildNotFound):
		respondWithError(w, http.StatusNotFound, err.Error(), "", nil)
	case errors.Is(err, service.ErrQuestAlreadyComplete),
		errors.Is(err, service.ErrInsufficientFunds):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Unhandled service error", err)
	}
}
