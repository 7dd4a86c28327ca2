// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iyunix/go-agentdesk/internal/auth"
	"github.com/iyunix/go-agentdesk/internal/domain"
	"github.com/iyunix/go-agentdesk/internal/repository/user"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation wraps a rejected username or password.
	ErrValidation = errors.New("validation failed")
)

type AuthService struct {
	userRepo     user.UserRepository
	jwtSecretKey string
	tokenTTL     time.Duration
	logger       Logger
}

func NewAuthService(userRepo user.UserRepository, jwtSecretKey string, tokenTTL time.Duration, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		tokenTTL:     tokenTTL,
		logger:       logger,
	}
}

// Register creates an account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	u := &domain.User{Username: username}
	if err := u.IsValid(); err != nil {
		s.logger.Warn("registration validation failed", "username", maskUsername(username), "error", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := u.HashPassword(password); err != nil {
		s.logger.Warn("registration password rejected", "username", maskUsername(username), "error", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	created, err := s.userRepo.Create(ctx, u)
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			s.logger.Warn("registration failed - username already exists", "username", maskUsername(username))
			return nil, err
		}
		s.logger.Error("user creation failed", "error", err, "username", maskUsername(username))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered successfully", "username", maskUsername(username), "user_id", created.ID)
	return created, nil
}

// Login authenticates a user and returns a JWT token
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	if username == "" || password == "" {
		s.logger.Warn("login attempt with empty credentials",
			"has_username", username != "",
			"has_password", password != "")
		return nil, "", ErrMissingCredentials
	}

	u, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		s.logger.Warn("login failed - user not found", "username", maskUsername(username))
		return nil, "", ErrInvalidCredentials
	}
	if err := u.ValidatePassword(password); err != nil {
		s.logger.Warn("login failed - invalid password", "username", maskUsername(username), "user_id", u.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(u.Username, []byte(s.jwtSecretKey), s.tokenTTL)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", u.ID)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("login successful", "username", maskUsername(username), "user_id", u.ID)
	return u, token, nil
}

// ValidateJWTToken returns the username carried by a valid token.
func (s *AuthService) ValidateJWTToken(tokenString string) (string, error) {
	username, err := auth.ValidateToken(tokenString, []byte(s.jwtSecretKey))
	if err != nil {
		s.logger.Debug("JWT token validation failed", "error", err)
		return "", fmt.Errorf("invalid token: %w", err)
	}
	return username, nil
}

// Usernames lists every registered account.
func (s *AuthService) Usernames(ctx context.Context) ([]string, error) {
	return s.userRepo.ListUsernames(ctx)
}
