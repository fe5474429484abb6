package handler

import (
	"log/slog"
	"net/http"
	"time"

	"vault/internal/domain"
	"vault/internal/domain/models"
	"vault/internal/domain/services"
	"vault/internal/httputil"
)

// RefreshCookieName is the cookie that carries the refresh token
const RefreshCookieName = "refresh_token"

const refreshCookiePath = "/api/v1/auth"

// CookieConfig controls the refresh cookie attributes
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

// AuthHandler handles registration, login and profile requests
type AuthHandler struct {
	authService services.AuthService
	cookies     CookieConfig
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService services.AuthService, cookies CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		logger:      logger,
	}
}

// SessionResponse is returned by register and login
type SessionResponse struct {
	User   *models.User      `json:"user"`
	Tokens *models.TokenPair `json:"tokens"`
}

// Register creates an account
// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	user, tokens, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	h.setRefreshCookie(w, tokens.RefreshToken)
	httputil.RespondJSON(w, http.StatusCreated, SessionResponse{User: user, Tokens: tokens})
}

// Login exchanges credentials for a token pair
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	user, tokens, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	h.setRefreshCookie(w, tokens.RefreshToken)
	httputil.RespondJSON(w, http.StatusOK, SessionResponse{User: user, Tokens: tokens})
}

// Logout clears the refresh cookie. Tokens are stateless and stay valid until expiry.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.RespondJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

// Refresh issues a new pair from a refresh token in the body or the cookie
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req services.RefreshRequest
	if r.ContentLength != 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			handleParseError(w, err)
			return
		}
	}
	if req.RefreshToken == "" {
		if cookie, err := r.Cookie(RefreshCookieName); err == nil {
			req.RefreshToken = cookie.Value
		}
	}
	if req.RefreshToken == "" {
		handleError(w, domain.ErrUnauthorized)
		return
	}

	tokens, err := h.authService.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		handleError(w, err)
		return
	}

	h.setRefreshCookie(w, tokens.RefreshToken)
	httputil.RespondJSON(w, http.StatusOK, tokens)
}

// Me returns the authenticated user
// GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, httputil.GetUser(r))
}

// UpdateMe changes username and/or settings
// PATCH /api/v1/auth/me
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProfileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), httputil.GetUser(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

// ChangePassword replaces the password
// POST /api/v1/auth/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req services.ChangePasswordRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleParseError(w, err)
		return
	}

	if err := h.authService.ChangePassword(r.Context(), httputil.GetUser(r), &req); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		MaxAge:   int(h.cookies.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
