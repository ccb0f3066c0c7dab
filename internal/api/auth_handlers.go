package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/orientis/orientis/internal/auth"
	"github.com/orientis/orientis/internal/user"
)

// AuthHandlers holds dependencies for authentication HTTP handlers.
type AuthHandlers struct {
	users      user.Repository
	jwtService *auth.JWTService
	logger     *slog.Logger
}

// NewAuthHandlers creates a new AuthHandlers instance.
func NewAuthHandlers(users user.Repository, jwtService *auth.JWTService, logger *slog.Logger) *AuthHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandlers{
		users:      users,
		jwtService: jwtService,
		logger:     logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	User         *user.User `json:"user"`
}

// Register handles POST /auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}

	hash, err := user.HashPassword(req.Password)
	if err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	u := &user.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         user.RoleUser,
	}
	if err := h.users.Insert(r.Context(), u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			WriteError(w, r.Context(), http.StatusConflict, ErrCodeEmailTaken, "Email already registered")
			return
		}
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	h.logger.Info("user registered", slog.String("user_id", u.ID))
	h.writeTokens(w, r, u)
}

// Login handles POST /auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Invalid credentials")
			return
		}
		h.logger.Error("user lookup failed", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Login failed")
		return
	}
	if err := u.CheckPassword(req.Password); err != nil {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Invalid credentials")
		return
	}

	h.writeTokens(w, r, u)
}

// Refresh handles POST /auth/refresh. It exchanges a refresh token for a new
// token pair.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}

	claims, err := h.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Invalid or expired refresh token")
		return
	}
	if claims.Type != auth.TokenTypeRefresh {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Refresh token required")
		return
	}

	u, err := h.users.GetByID(r.Context(), claims.Subject)
	if err != nil {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Unknown user")
		return
	}

	h.writeTokens(w, r, u)
}

// Me handles GET /me. Requires authentication.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	u, err := h.users.GetByID(r.Context(), claims.Subject)
	if err != nil {
		WriteError(w, r.Context(), http.StatusNotFound, ErrCodeNotFound, "User not found")
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

func (h *AuthHandlers) writeTokens(w http.ResponseWriter, r *http.Request, u *user.User) {
	access, err := h.jwtService.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		h.logger.Error("failed to generate access token", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Token generation failed")
		return
	}
	refresh, err := h.jwtService.GenerateRefreshToken(u.ID)
	if err != nil {
		h.logger.Error("failed to generate refresh token", slog.String("error", err.Error()))
		WriteError(w, r.Context(), http.StatusInternalServerError, ErrCodeInternal, "Token generation failed")
		return
	}

	WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         u,
	})
}
