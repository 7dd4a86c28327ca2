// File: internal/handlers/chat_handler.go
package handlers

import (
	"net/http"

	"github.com/iyunix/go-agentdesk/internal/services/chat"
)

type ChatHandler struct {
	Sessions *chat.Manager
	Logger   Logger
}

func NewChatHandler(sessions *chat.Manager, logger Logger) *ChatHandler {
	return &ChatHandler{Sessions: sessions, Logger: logger}
}

// SendMessage runs one send cycle. A responder failure still answers 200:
// the reply is an error-tagged message in the transcript.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := h.Sessions.Session(username).Send(r.Context(), req.Message)
	if err != nil {
		writeServiceError(w, h.Logger, "send", err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

// State reports the caller's session state.
func (h *ChatHandler) State(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Sessions.Session(username).Snapshot())
}
