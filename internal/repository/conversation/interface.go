package conversation

import (
	"context"
	"time"

	"github.com/iyunix/go-agentdesk/internal/domain"
)

// ConversationRepository handles per-user conversation and trash state.
type ConversationRepository interface {
	List(ctx context.Context, username string) []domain.Conversation
	Get(ctx context.Context, username, id string) (domain.Conversation, error)
	Count(ctx context.Context, username string) int
	Create(ctx context.Context, username, title string) (domain.Conversation, error)
	Append(ctx context.Context, username, id string, msg domain.Message) (domain.Conversation, error)
	Rename(ctx context.Context, username, id, title string) (domain.Conversation, error)
	Delete(ctx context.Context, username, id string) error

	Trash(ctx context.Context, username string) []domain.TrashEntry
	Restore(ctx context.Context, username, trashID string) (domain.Conversation, error)
	PermanentlyDelete(ctx context.Context, username, trashID string) error
	ClearTrash(ctx context.Context, username string) (int, error)
	PurgeTrash(ctx context.Context, username string, olderThan time.Time) (int, error)

	Active(ctx context.Context, username string) string
	SetActive(ctx context.Context, username, id string) error

	SyncStatus(username, id string) SyncStatus
	Dirty(username string) []string
	Flush(ctx context.Context, username string) bool
}

// Logger is the logging interface used by the conversation store.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// SyncStatus reports whether a record's latest state reached the backend.
type SyncStatus string

const (
	Synced SyncStatus = "synced"
	Dirty  SyncStatus = "dirty"
)
