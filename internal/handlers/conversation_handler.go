// File: internal/handlers/conversation_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-agentdesk/internal/domain"
	"github.com/iyunix/go-agentdesk/internal/repository/conversation"
	"github.com/iyunix/go-agentdesk/internal/services/search"
)

type ConversationHandler struct {
	Store  conversation.ConversationRepository
	Logger Logger
}

func NewConversationHandler(store conversation.ConversationRepository, logger Logger) *ConversationHandler {
	return &ConversationHandler{Store: store, Logger: logger}
}

// conversationView is a conversation plus its search tag and sync flag.
type conversationView struct {
	domain.Conversation
	Match search.MatchKind        `json:"match,omitempty"`
	Sync  conversation.SyncStatus `json:"sync"`
}

func (h *ConversationHandler) view(username string, c domain.Conversation, match search.MatchKind) conversationView {
	return conversationView{Conversation: c, Match: match, Sync: h.Store.SyncStatus(username, c.ID)}
}

// List returns conversations newest first, filtered when ?q= is set.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}

	results := search.Filter(h.Store.List(r.Context(), username), r.URL.Query().Get("q"))
	out := make([]conversationView, 0, len(results))
	for _, res := range results {
		out = append(out, h.view(username, res.Conversation, res.Match))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"conversations": out,
		"count":         h.Store.Count(r.Context(), username),
		"limit":         conversationLimit(h.Store),
	})
}

func conversationLimit(store conversation.ConversationRepository) int {
	if s, ok := store.(interface{ MaxConversations() int }); ok {
		return s.MaxConversations()
	}
	return conversation.DefaultMaxConversations
}

func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}
	var req struct {
		Title  string `json:"title"`
		Select bool   `json:"select"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	conv, err := h.Store.Create(r.Context(), username, req.Title)
	if err != nil {
		writeServiceError(w, h.Logger, "create", err)
		return
	}
	if req.Select {
		if err := h.Store.SetActive(r.Context(), username, conv.ID); err != nil {
			writeServiceError(w, h.Logger, "select", err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, h.view(username, conv, search.MatchNone))
}

func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}
	conv, err := h.Store.Get(r.Context(), username, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.Logger, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(username, conv, search.MatchNone))
}

func (h *ConversationHandler) Rename(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	conv, err := h.Store.Rename(r.Context(), username, mux.Vars(r)["id"], req.Title)
	if err != nil {
		writeServiceError(w, h.Logger, "rename", err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(username, conv, search.MatchNone))
}

// Delete moves a conversation to the trash.
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), username, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, h.Logger, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ConversationHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": h.Store.Active(r.Context(), username)})
}

func (h *ConversationHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := h.Store.SetActive(r.Context(), username, req.ID); err != nil {
		writeServiceError(w, h.Logger, "select", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": h.Store.Active(r.Context(), username)})
}

type messageMatch struct {
	Index int           `json:"index"`
	Spans []search.Span `json:"spans"`
}

// Matches lists the messages containing ?q= with highlight spans. With
// ?from=<position>&step=next|prev it also moves the match cursor, wrapping
// at both ends.
func (h *ConversationHandler) Matches(w http.ResponseWriter, r *http.Request) {
	username, ok := requireUsername(w, r)
	if !ok {
		return
	}
	conv, err := h.Store.Get(r.Context(), username, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.Logger, "matches", err)
		return
	}

	query := r.URL.Query().Get("q")
	nav := search.NavigatorFor(conv.Messages, query)
	if from := r.URL.Query().Get("from"); from != "" {
		pos, err := strconv.Atoi(from)
		if err != nil || pos < 0 {
			writeError(w, "from must be a non-negative integer", http.StatusBadRequest)
			return
		}
		nav.Seek(pos)
	}
	switch r.URL.Query().Get("step") {
	case "next":
		nav.Next()
	case "prev":
		nav.Prev()
	case "":
	default:
		writeError(w, "step must be next or prev", http.StatusBadRequest)
		return
	}

	matches := make([]messageMatch, 0, nav.Len())
	for _, idx := range nav.Indices() {
		matches = append(matches, messageMatch{Index: idx, Spans: search.Highlight(conv.Messages[idx].Text, query)})
	}

	resp := map[string]interface{}{
		"query":    query,
		"matches":  matches,
		"position": nav.Position(),
	}
	if current, ok := nav.Current(); ok {
		resp["current"] = current
	}
	writeJSON(w, http.StatusOK, resp)
}
