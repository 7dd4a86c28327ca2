// File: internal/handlers/auth_handlers.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/iyunix/go-agentdesk/internal/domain"
	"github.com/iyunix/go-agentdesk/internal/dtos"
	"github.com/iyunix/go-agentdesk/internal/middleware"
	"github.com/iyunix/go-agentdesk/internal/repository/user"
	"github.com/iyunix/go-agentdesk/internal/services/user_services"
)

// Authenticator is the account API the auth handlers need.
type Authenticator interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
}

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	Auth         Authenticator
	TokenTTL     time.Duration
	SecureCookie bool
	Logger       Logger
}

func NewAuthHandler(auth Authenticator, tokenTTL time.Duration, secureCookie bool, logger Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, TokenTTL: tokenTTL, SecureCookie: secureCookie, Logger: logger}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.CredentialsRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}
	req = req.Normalized()

	u, err := h.Auth.Register(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, dtos.FromDomain(*u))
	case errors.Is(err, user.ErrUsernameTaken):
		writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, user_services.ErrMissingCredentials), errors.Is(err, user_services.ErrValidation):
		writeError(w, err.Error(), http.StatusBadRequest)
	default:
		h.Logger.Error("registration failed", "error", err)
		writeError(w, "Registration failed", http.StatusInternalServerError)
	}
}

// Login issues a JWT both in the body and as the auth cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.CredentialsRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}
	req = req.Normalized()

	u, token, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, user_services.ErrMissingCredentials):
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, user_services.ErrInvalidCredentials):
		writeError(w, err.Error(), http.StatusUnauthorized)
		return
	default:
		h.Logger.Error("login failed", "error", err)
		writeError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	middleware.SetAuthCookie(w, token, h.TokenTTL, h.SecureCookie)
	writeJSON(w, http.StatusOK, dtos.NewLoginResponse(*u, token, time.Now(), h.TokenTTL))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
