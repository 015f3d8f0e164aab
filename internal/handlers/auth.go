package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tokeley/researchlog/internal/auth"
	"github.com/tokeley/researchlog/internal/metrics"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Auth *auth.Service
}

type loginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ==========================
// Login (admin accounts only)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := decodeJSON(r, &input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	token, user, err := h.Auth.Login(r.Context(), strings.TrimSpace(input.Username), input.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		metrics.IncLogin("invalid")
		JSONError(w, "invalid credentials", http.StatusBadRequest)
		return
	case errors.Is(err, auth.ErrForbidden):
		metrics.IncLogin("forbidden")
		JSONError(w, "access denied", http.StatusForbidden)
		return
	case err != nil:
		metrics.IncLogin("error")
		internalError(w, r, "login failed", err)
		return
	}

	metrics.IncLogin("success")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
