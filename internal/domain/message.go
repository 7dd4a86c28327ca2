// File: internal/domain/message.go
package domain

import (
	"errors"
	"strings"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

var ErrInvalidRole = errors.New("message role must be user or assistant")
var ErrEmptyText = errors.New("message text cannot be empty")

// Message represents a single message within a conversation.
type Message struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsError   bool      `json:"isError,omitempty"` // assistant message standing in for a failed reply
}

// NewMessage stamps a message with now.
func NewMessage(role Role, text string, now time.Time) Message {
	return Message{Role: role, Text: text, Timestamp: now.UTC()}
}

// Validate rejects whitespace-only text and unknown roles.
func (m Message) Validate() error {
	if m.Role != RoleUser && m.Role != RoleAssistant {
		return ErrInvalidRole
	}
	if strings.TrimSpace(m.Text) == "" {
		return ErrEmptyText
	}
	return nil
}
