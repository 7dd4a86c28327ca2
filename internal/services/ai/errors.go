// File: internal/services/ai/errors.go
package ai

import (
	"context"
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeConfig    ErrorType = "CONFIG"
	ErrTypeNetwork   ErrorType = "NETWORK"
	ErrTypeProvider  ErrorType = "PROVIDER"
	ErrTypeRateLimit ErrorType = "RATE_LIMIT"
	ErrTypeResponse  ErrorType = "RESPONSE"
	ErrTypeTimeout   ErrorType = "TIMEOUT"
)

type AIError struct {
	Type      ErrorType
	Code      int
	Message   string
	Operation string
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error { return e.Cause }

// Retryable reports whether another attempt could succeed.
func (e *AIError) Retryable() bool {
	switch e.Type {
	case ErrTypeNetwork, ErrTypeRateLimit:
		return true
	case ErrTypeProvider:
		return e.Code == 0 || e.Code >= 500
	}
	return false
}

func NewConfigError(msg string) *AIError {
	return &AIError{Type: ErrTypeConfig, Message: msg, Operation: "config"}
}

func NewProviderError(operation, msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}

func NewResponseError(operation, msg string) *AIError {
	return &AIError{Type: ErrTypeResponse, Operation: operation, Message: msg}
}

// classify maps a transport error onto an AIError.
func classify(operation string, err error) *AIError {
	var aiErr *AIError
	if errors.As(err, &aiErr) {
		return aiErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &AIError{Type: ErrTypeTimeout, Operation: operation, Message: "responder timed out", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &AIError{Type: ErrTypeTimeout, Operation: operation, Message: "request canceled", Cause: err}
	}
	return &AIError{Type: ErrTypeNetwork, Operation: operation, Message: "request failed", Cause: err}
}
