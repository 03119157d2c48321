package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/interfaces"
)

// SessionHandler serves conversation session endpoints.
type SessionHandler struct {
	conversation interfaces.ConversationService
	logger       arbor.ILogger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(conversation interfaces.ConversationService, logger arbor.ILogger) *SessionHandler {
	return &SessionHandler{
		conversation: conversation,
		logger:       logger,
	}
}

// CreateSessionHandler handles POST /api/sessions
func (h *SessionHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var body struct {
		UserID string `json:"user_id"`
	}
	if r.Body != nil {
		// An empty body is fine; the user id is optional.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	if body.UserID == "" {
		body.UserID = "anonymous"
	}

	session, err := h.conversation.CreateSession(r.Context(), body.UserID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create session")
		WriteError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	WriteJSON(w, http.StatusCreated, session)
}

// SessionRoutesHandler dispatches /api/sessions/{id} and its subresources:
//
//	GET    /api/sessions/{id}/stats
//	GET    /api/sessions/{id}/conversations/{conversation_id}/history
//	DELETE /api/sessions/{id}
func (h *SessionHandler) SessionRoutesHandler(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		WriteError(w, http.StatusBadRequest, "Session id is required")
		return
	}
	sessionID := parts[0]

	switch {
	case len(parts) == 1:
		h.deleteSession(w, r, sessionID)
	case len(parts) == 2 && parts[1] == "stats":
		h.sessionStats(w, r, sessionID)
	case len(parts) == 4 && parts[1] == "conversations" && parts[3] == "history":
		h.conversationHistory(w, r, sessionID, parts[2])
	default:
		WriteError(w, http.StatusNotFound, "Unknown session endpoint")
	}
}

func (h *SessionHandler) deleteSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	if _, err := h.conversation.GetSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, interfaces.ErrSessionNotFound) {
			WriteError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error().Err(err).Msg("Failed to load session")
		WriteError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	if err := h.conversation.DeleteSession(r.Context(), sessionID); err != nil {
		h.logger.Error().Err(err).Msg("Failed to delete session")
		WriteError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":     "success",
		"session_id": sessionID,
	})
}

func (h *SessionHandler) sessionStats(w http.ResponseWriter, r *http.Request, sessionID string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	stats, err := h.conversation.SessionStats(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, interfaces.ErrSessionNotFound) {
			WriteError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error().Err(err).Msg("Failed to load session stats")
		WriteError(w, http.StatusInternalServerError, "Failed to load session stats")
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

func (h *SessionHandler) conversationHistory(w http.ResponseWriter, r *http.Request, sessionID, conversationID string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	history, err := h.conversation.GetHistory(r.Context(), sessionID, conversationID, limit)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrSessionNotFound):
			WriteError(w, http.StatusNotFound, "Session not found")
		case errors.Is(err, interfaces.ErrConversationNotFound):
			WriteError(w, http.StatusNotFound, "Conversation not found")
		default:
			h.logger.Error().Err(err).Msg("Failed to load history")
			WriteError(w, http.StatusInternalServerError, "Failed to load history")
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session_id":      sessionID,
		"conversation_id": conversationID,
		"messages":        history,
		"count":           len(history),
	})
}
