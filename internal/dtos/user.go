// File: internal/dtos/user.go
package dtos

import (
	"strings"
	"time"

	"github.com/iyunix/go-agentdesk/internal/domain"
)

// UserResponseDTO defines what fields to expose in user API responses.
// The password hash is never included.
type UserResponseDTO struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

// CredentialsRequestDTO is the payload for both register and login.
type CredentialsRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Normalized trims the username; the password is taken as typed.
func (dto CredentialsRequestDTO) Normalized() CredentialsRequestDTO {
	dto.Username = strings.TrimSpace(dto.Username)
	return dto
}

// UserLoginResponseDTO represents the login response.
type UserLoginResponseDTO struct {
	User      UserResponseDTO `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt string          `json:"expires_at"`
}

// FromDomain maps a domain.User to UserResponseDTO for public API responses.
func FromDomain(user domain.User) UserResponseDTO {
	return UserResponseDTO{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewLoginResponse bundles the user with a token that expires after ttl.
func NewLoginResponse(user domain.User, token string, now time.Time, ttl time.Duration) UserLoginResponseDTO {
	return UserLoginResponseDTO{
		User:      FromDomain(user),
		Token:     token,
		ExpiresAt: now.Add(ttl).UTC().Format(time.RFC3339),
	}
}

// ErrorResponse is the body of every non-2xx API reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
