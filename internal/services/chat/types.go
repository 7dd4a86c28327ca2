// File: internal/services/chat/types.go
package chat

import "github.com/iyunix/go-agentdesk/internal/domain"

// Logger defines the logging interface used across chat services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// State is where a session is in its send cycle.
type State string

const (
	StateIdle          State = "idle"
	StateSending       State = "sending"
	StateIdleWithError State = "idle_with_error"
)

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	Username       string `json:"username"`
	State          State  `json:"state"`
	ConversationID string `json:"conversationId"`
	LastError      string `json:"lastError,omitempty"`
	// ExternalConversationID is the id the responder reported last.
	ExternalConversationID string `json:"externalConversationId,omitempty"`
}

// SendResult describes one completed send cycle. A responder failure is
// not an error: the reply is an error-tagged assistant message.
type SendResult struct {
	Conversation domain.Conversation `json:"conversation"`
	User         domain.Message      `json:"user"`
	Reply        domain.Message      `json:"reply"`
	Created      bool                `json:"created"`
	Failed       bool                `json:"failed"`
	// Discarded is set when the conversation was deleted while the reply
	// was pending; Reply was not stored and Conversation is the last
	// state before deletion.
	Discarded bool `json:"discarded,omitempty"`
}
