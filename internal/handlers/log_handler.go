package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iyunix/go-agentdesk/internal/middleware"
)

// FrontendLogPayload defines the structure for logs coming from the browser.
type FrontendLogPayload struct {
	Level   string `json:"level"`             // debug, info, warn, error
	Message string `json:"message"`           // The main log message
	Context any    `json:"context,omitempty"` // Optional extra data (e.g., stack trace)
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFrontendEvent records a client-side log line through slog.
func LogFrontendEvent(w http.ResponseWriter, r *http.Request) {
	var payload FrontendLogPayload
	if err := decodeJSON(w, r, &payload); err != nil || payload.Message == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	attrs := []slog.Attr{
		slog.String("message", payload.Message),
		slog.Any("context", payload.Context),
	}
	if username, ok := middleware.UsernameFromContext(r.Context()); ok {
		attrs = append(attrs, slog.String("username", username))
	}
	slog.LogAttrs(r.Context(), slogLevel(payload.Level), "CLIENT_LOG", attrs...)

	w.WriteHeader(http.StatusNoContent)
}
