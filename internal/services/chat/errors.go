// File: internal/services/chat/errors.go
package chat

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeBusy       ErrorType = "BUSY"
	ErrTypeCapacity   ErrorType = "CAPACITY"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeStorage    ErrorType = "STORAGE"
)

var (
	ErrEmptyMessage   = errors.New("message cannot be empty")
	ErrSendInProgress = errors.New("a message is already being sent, wait for the reply")
)

type ChatError struct {
	Type           ErrorType
	Operation      string
	Message        string
	Username       string
	ConversationID string
	Cause          error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error { return e.Cause }

func NewValidationError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg, Cause: cause}
}

func NewBusyError(username string) *ChatError {
	return &ChatError{
		Type:      ErrTypeBusy,
		Operation: "send",
		Message:   "send rejected",
		Username:  username,
		Cause:     ErrSendInProgress,
	}
}
