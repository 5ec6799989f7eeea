package handlers

import (
	"net/http"

	"questbuddy/internal/service"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	notifications *service.NotificationService
	sessions      *service.SessionService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *service.NotificationService, sessions *service.SessionService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, sessions: sessions}
}

// List returns the notifications addressed to the signed-in account
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	account := h.sessions.ActiveAccount()
	if account == nil {
		respondWithServiceError(w, service.ErrNotLoggedIn)
		return
	}

	notifications, err := h.notifications.ListFor(r.Context(), account.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load notifications", "", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"notifications": notifications,
	})
}

// MarkRead flags a notification as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		respondWithError(w, http.StatusNotFound, "Notification not found", "", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
