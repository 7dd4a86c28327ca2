package user

import (
	"context"

	"github.com/iyunix/go-agentdesk/internal/domain"
)

// UserRepository handles user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsernames(ctx context.Context) ([]string, error)
}
