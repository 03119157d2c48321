package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/models"
	"github.com/ternarybob/verdict/internal/services/conversation"
	"github.com/ternarybob/verdict/internal/storage/memory"
)

func newSessionHandler(t *testing.T) (*SessionHandler, *conversation.Service) {
	t.Helper()
	logger := arbor.NewLogger()
	manager := memory.NewManager(logger)
	svc := conversation.NewService(manager.SessionStorage(), nil, logger)
	return NewSessionHandler(svc, logger), svc
}

func TestCreateSessionHandler(t *testing.T) {
	h, _ := newSessionHandler(t)

	req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader(`{"user_id": "trader-1"}`))
	rec := httptest.NewRecorder()
	h.CreateSessionHandler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var session models.ConversationSession
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if session.SessionID == "" {
		t.Error("session_id missing from response")
	}
	if session.UserID != "trader-1" {
		t.Errorf("user_id = %q, want trader-1", session.UserID)
	}
}

func TestCreateSessionHandler_EmptyBodyDefaultsUser(t *testing.T) {
	h, _ := newSessionHandler(t)

	req := httptest.NewRequest("POST", "/api/sessions", nil)
	rec := httptest.NewRecorder()
	h.CreateSessionHandler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var session models.ConversationSession
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if session.UserID != "anonymous" {
		t.Errorf("user_id = %q, want anonymous", session.UserID)
	}
}

func TestCreateSessionHandler_MethodNotAllowed(t *testing.T) {
	h, _ := newSessionHandler(t)

	req := httptest.NewRequest("GET", "/api/sessions", nil)
	rec := httptest.NewRecorder()
	h.CreateSessionHandler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestSessionRoutes_StatsAndHistory(t *testing.T) {
	h, svc := newSessionHandler(t)
	ctx := t.Context()

	session, err := svc.CreateSession(ctx, "trader-1")
	if err != nil {
		t.Fatal(err)
	}
	conv, err := svc.GetOrCreateConversation(ctx, session.SessionID, "BTC", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddMessage(ctx, session.SessionID, conv.ConversationID, models.RoleUser, "what about BTC", nil); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/api/sessions/"+session.SessionID+"/stats", nil)
	rec := httptest.NewRecorder()
	h.SessionRoutesHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var stats models.SessionStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalConversations != 1 || stats.TotalMessages != 1 {
		t.Errorf("stats = %d conversations / %d messages, want 1/1", stats.TotalConversations, stats.TotalMessages)
	}

	req = httptest.NewRequest("GET", "/api/sessions/"+session.SessionID+"/conversations/"+conv.ConversationID+"/history", nil)
	rec = httptest.NewRecorder()
	h.SessionRoutesHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var history struct {
		Messages []models.ConversationMessage `json:"messages"`
		Count    int                          `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&history); err != nil {
		t.Fatal(err)
	}
	if history.Count != 1 || history.Messages[0].Content != "what about BTC" {
		t.Errorf("unexpected history payload: %+v", history)
	}
}

func TestSessionRoutes_NotFound(t *testing.T) {
	h, _ := newSessionHandler(t)

	req := httptest.NewRequest("GET", "/api/sessions/nope/stats", nil)
	rec := httptest.NewRecorder()
	h.SessionRoutesHandler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSessionRoutes_Delete(t *testing.T) {
	h, svc := newSessionHandler(t)
	ctx := t.Context()

	session, err := svc.CreateSession(ctx, "trader-1")
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("DELETE", "/api/sessions/"+session.SessionID, nil)
	rec := httptest.NewRecorder()
	h.SessionRoutesHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	if _, err := svc.GetSession(ctx, session.SessionID); err == nil {
		t.Error("session still retrievable after delete")
	}
}
