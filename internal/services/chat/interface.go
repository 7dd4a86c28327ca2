// File: internal/services/chat/interface.go
package chat

import (
	"context"

	"github.com/iyunix/go-agentdesk/internal/domain"
)

// ConversationStore is the part of the conversation repository a session
// writes through.
type ConversationStore interface {
	Get(ctx context.Context, username, id string) (domain.Conversation, error)
	Create(ctx context.Context, username, title string) (domain.Conversation, error)
	Append(ctx context.Context, username, id string, msg domain.Message) (domain.Conversation, error)
	Active(ctx context.Context, username string) string
	SetActive(ctx context.Context, username, id string) error
}
