package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MikeSquared-Agency/resortinfo/internal/conversation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

type logResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details"`
}

// logConversation handles POST /api/log-conversation
func (s *Server) logConversation(w http.ResponseWriter, r *http.Request) {
	var rec conversation.Record
	if err := decodeBody(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	res := s.convos.LogConversation(r.Context(), rec)
	if !res.Success {
		writeJSON(w, http.StatusInternalServerError, logResponse{
			Success: false,
			Message: "Failed to log conversation",
			Details: res.Error,
		})
		return
	}

	writeJSON(w, http.StatusOK, logResponse{
		Success: true,
		Message: "Conversation logged successfully",
		Details: res,
	})
}

// recentConversations handles GET /api/conversations
func (s *Server) recentConversations(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "conversation history not configured")
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := s.history.RecentConversations(r.Context(), limit)
	if err != nil {
		s.writeQueryError(w, r, err)
		return
	}
	if entries == nil {
		entries = []conversation.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversations": entries,
		"count":         len(entries),
	})
}

// conversationByID handles GET /api/conversations/{id}
func (s *Server) conversationByID(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "conversation history not configured")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	entry, err := s.history.ConversationByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, conversation.ErrEntryNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		s.writeQueryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
