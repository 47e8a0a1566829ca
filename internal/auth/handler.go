package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayush/vision-assist/internal/models"
)

// Handler holds account-related HTTP handlers.
type Handler struct {
	manager *Manager
	cache   *CachedValidator
}

func NewHandler(manager *Manager, cache *CachedValidator) *Handler {
	return &Handler{manager: manager, cache: cache}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Register creates a new account and returns its API key.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		http.Error(w, `{"error":"username, email, and password are required"}`, http.StatusBadRequest)
		return
	}

	key, err := h.manager.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			http.Error(w, `{"error":"username or email already exists"}`, http.StatusConflict)
			return
		}
		http.Error(w, `{"error":"registration failed"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "user created successfully",
		"api_key": key,
	})
}

// Login authenticates a user and returns the identity plus the existing key.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, `{"error":"username and password are required"}`, http.StatusBadRequest)
		return
	}

	user, err := h.manager.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidCredential) {
			http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
			return
		}
		http.Error(w, `{"error":"login failed"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"api_key":  user.APIKey,
		"username": user.Username,
		"email":    user.Email,
	})
}

// UpdateAccount changes email and/or password after re-authentication.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, `{"error":"username and password are required"}`, http.StatusBadRequest)
		return
	}

	key, err := h.manager.Update(r.Context(), req.Username, req.Password, Changes{
		Email:       req.Email,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthorized):
			http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
		case errors.Is(err, ErrEmailInUse):
			http.Error(w, `{"error":"email already in use by another account"}`, http.StatusConflict)
		case errors.Is(err, errNoChanges):
			http.Error(w, `{"error":"no valid fields to update"}`, http.StatusBadRequest)
		default:
			http.Error(w, `{"error":"update failed"}`, http.StatusInternalServerError)
		}
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(r.Context(), key)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user information updated successfully"})
}

// DeleteAccount removes the account irreversibly after re-authentication.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, `{"error":"username and password are required"}`, http.StatusBadRequest)
		return
	}

	key, err := h.manager.Delete(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
			return
		}
		http.Error(w, `{"error":"delete failed"}`, http.StatusInternalServerError)
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(r.Context(), key)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user account deleted successfully"})
}
