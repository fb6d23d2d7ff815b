package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/workshop/internal/security/auth"
	"github.com/aryan0dhankhar/workshop/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
	secure      bool
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler. secure sets the cookie Secure
// flag and is on in production.
func NewAuthHandler(authService *service.AuthService, secure bool, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		authService: authService,
		secure:      secure,
		logger:      logger,
	}
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		status := statusFor(err)
		switch status {
		case http.StatusUnauthorized:
			writeJSON(w, status, map[string]string{"error": "Invalid credentials"})
		case http.StatusBadRequest:
			writeJSON(w, status, map[string]string{"error": err.Error()})
		default:
			h.logger.Error("login failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}
		return
	}

	http.SetCookie(w, auth.SessionCookie(token, h.secure))
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearSessionCookie(h.secure))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Session handles GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.Session(auth.TokenFromRequest(r))
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}
