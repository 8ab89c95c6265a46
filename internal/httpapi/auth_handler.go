package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/auth"
	"github.com/IbrahimKhdeir/farm-moitoring/internal/models"
)

// AuthProvider is the account surface the handler needs.
type AuthProvider interface {
	TokenValidator
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, userID int64) (*models.User, error)
}

// AuthHandler serves registration, login and profile lookup.
type AuthHandler struct {
	auth   AuthProvider
	logger *zap.Logger
}

// NewAuthHandler creates the handler.
func NewAuthHandler(auth AuthProvider, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		failure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" || !strings.Contains(req.Email, "@") {
		failure(w, http.StatusBadRequest, "username, email and password are required")
		return
	}
	if len(req.Password) < 6 {
		failure(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.logger.Error("Registration failed", zap.String("email", req.Email), zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	success(w, user, "User registered")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		failure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrInvalidPassword) {
			failure(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.Error("Login failed", zap.String("email", req.Email), zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	success(w, map[string]string{"token": token}, "Login successful")
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Profile(r.Context(), userIDFrom(r))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			failure(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("Profile lookup failed", zap.Error(err))
		failure(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	success(w, user, "User profile")
}
