// File: internal/services/ai/interface.go
package ai

import "context"

// Reply is what a responder returns for one user message.
type Reply struct {
	Response       string
	ConversationID string
}

// Responder answers a single user message on behalf of userID.
type Responder interface {
	SendMessage(ctx context.Context, text, userID string) (*Reply, error)
}

// Logger defines the logging interface used by responders.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
