// File: internal/handlers/trash_handler.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-agentdesk/internal/repository/conversation"
)

type TrashHandler struct {
	Store  conversation.ConversationRepository
	Logger Logger
}

func NewTrashHandler(store conversation.ConversationRepository, logger Logger) *TrashHandler {
	return &TrashHandler{Store: store, Logger: logger}
}

// List returns trash entries, most recently deleted first.
func (h *TrashHandler) List(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"trash": h.Store.Trash(r.Context(), username)})
}

func (h *TrashHandler) Restore(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}
	conv, err := h.Store.Restore(r.Context(), username, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.Logger, "restore", err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// Delete removes one trash entry for good.
func (h *TrashHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}
	if err := h.Store.PermanentlyDelete(r.Context(), username, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, h.Logger, "purge", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TrashHandler) Clear(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}
	removed, err := h.Store.ClearTrash(r.Context(), username)
	if err != nil {
		writeServiceError(w, h.Logger, "clear trash", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
