package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"questbuddy/internal/models"
	"questbuddy/internal/repository"
	"questbuddy/internal/security"
	"questbuddy/internal/service"
)

// AuthHandler handles session-related HTTP requests
type AuthHandler struct {
	sessions      *service.SessionService
	email         *service.EmailService
	tokenSecret   string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions *service.SessionService, email *service.EmailService, tokenSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{
		sessions:      sessions,
		email:         email,
		tokenSecret:   tokenSecret,
		tokenDuration: tokenDuration,
	}
}

func (h *AuthHandler) sessionResponse(account *models.Account) map[string]interface{} {
	resp := map[string]interface{}{
		"success": true,
		"account": account,
	}
	token, err := security.NewDeviceToken(h.tokenSecret, account.ID, string(account.Role), h.tokenDuration)
	if err != nil {
		log.Printf("Failed to issue device token: %v", err)
	} else {
		resp["token"] = token
	}
	return resp
}

// Login signs in with email and password
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	account, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.sessionResponse(account))
}

// Register creates a parent account and signs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var draft repository.AccountDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if draft.Email == "" || draft.Secret == "" {
		respondWithError(w, http.StatusBadRequest, "Email and password are required", "", nil)
		return
	}

	account, err := h.sessions.Register(r.Context(), draft)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if h.email != nil {
		if err := h.email.SendWelcomeEmail(r.Context(), account.Email, account.Name); err != nil {
			log.Printf("Failed to send welcome email: %v", err)
		}
	}
	respondWithJSON(w, http.StatusCreated, h.sessionResponse(account))
}

// ChildLogin signs a child in by access code
func (h *AuthHandler) ChildLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessCode string `json:"accessCode"`
		Avatar     string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	account, err := h.sessions.LoginAsChild(r.Context(), req.AccessCode, req.Avatar)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.sessionResponse(account))
}

// Logout ends the current session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Logout failed", "", err)
		return
	}
	account := h.sessions.ActiveAccount()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"state":   h.sessions.State().String(),
		"account": account,
	})
}

// Session reports the current session state
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"state":   h.sessions.State().String(),
		"account": h.sessions.ActiveAccount(),
		"child":   h.sessions.ActiveChild(),
	})
}

// UpdateAccount replaces the signed-in account record
func (h *AuthHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var account models.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	if err := h.sessions.UpdateAccount(r.Context(), &account); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"account": h.sessions.ActiveAccount(),
	})
}

// AddChild adds a child to the parent's roster
func (h *AuthHandler) AddChild(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Name is required", "", nil)
		return
	}

	child, err := h.sessions.AddChild(r.Context(), req.Name, req.Avatar)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"child":   child,
	})
}

// RemoveChild drops a child from the roster
func (h *AuthHandler) RemoveChild(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.RemoveChild(r.Context(), r.PathValue("id")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// RegenerateAccessCode replaces a child's access code
func (h *AuthHandler) RegenerateAccessCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.sessions.RegenerateAccessCode(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"accessCode": code,
	})
}

// SelectChild switches the active child profile in a parent session
func (h *AuthHandler) SelectChild(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SelectChild(r.Context(), r.PathValue("id")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"child":   h.sessions.ActiveChild(),
	})
}
