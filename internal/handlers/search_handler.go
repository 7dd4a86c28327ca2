// File: internal/handlers/search_handler.go
package handlers

import (
	"net/http"

	"github.com/iyunix/go-agentdesk/internal/services/search"
)

// Highlight marks literal, case-insensitive occurrences of query in text.
func Highlight(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text  string `json:"text"`
		Query string `json:"query"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"spans":    search.Highlight(req.Text, req.Query),
		"segments": search.Segments(req.Text, req.Query),
	})
}
