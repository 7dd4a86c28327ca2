// File: internal/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/iyunix/go-agentdesk/internal/dtos"
	"github.com/iyunix/go-agentdesk/internal/middleware"
	"github.com/iyunix/go-agentdesk/internal/repository/conversation"
	"github.com/iyunix/go-agentdesk/internal/services/chat"
)

// Logger is the logging interface used by handlers.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

const maxBodyBytes = 1 << 20

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, dtos.ErrorResponse{Error: message})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// requireUsername returns the authenticated username or writes a 401.
func requireUsername(w http.ResponseWriter, r *http.Request) (string, bool) {
	username, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
	}
	return username, ok
}

// clientErrors are the failures shown to the user verbatim, with their status.
var clientErrors = []struct {
	err    error
	status int
}{
	{chat.ErrSendInProgress, http.StatusTooManyRequests},
	{conversation.ErrConversationNotFound, http.StatusNotFound},
	{conversation.ErrTrashEntryNotFound, http.StatusNotFound},
	{chat.ErrEmptyMessage, http.StatusBadRequest},
	{conversation.ErrEmptyMessage, http.StatusBadRequest},
	{conversation.ErrEmptyTitle, http.StatusBadRequest},
	{conversation.ErrInvalidMessage, http.StatusBadRequest},
	{conversation.ErrStorageUnavailable, http.StatusServiceUnavailable},
}

// writeServiceError maps store and session failures onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, logger Logger, operation string, err error) {
	var capErr *conversation.CapacityError
	if errors.As(err, &capErr) {
		writeError(w, capErr.Error(), http.StatusConflict)
		return
	}
	for _, ce := range clientErrors {
		if errors.Is(err, ce.err) {
			writeError(w, ce.err.Error(), ce.status)
			return
		}
	}
	logger.Error("request failed", "operation", operation, "error", err)
	writeError(w, "Internal server error", http.StatusInternalServerError)
}
