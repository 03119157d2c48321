package memory

import (
	"context"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/models"
)

func TestManager_SessionCopyIsolation(t *testing.T) {
	manager := NewManager(arbor.NewLogger()).SessionStorage()
	ctx := context.Background()

	session := &models.ConversationSession{
		SessionID:    "s1",
		UserID:       "user-1",
		CreatedAt:    time.Now().UTC(),
		LastAccessed: time.Now().UTC(),
	}
	conv := session.GetOrCreateConversation("c1", "BTC")
	conv.Messages = append(conv.Messages, models.ConversationMessage{
		ID: "m1", Role: models.RoleUser, Content: "first",
	})

	if err := manager.SaveSession(ctx, session, time.Hour); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	// Mutating the caller's copy after save must not leak into storage.
	conv.Messages = append(conv.Messages, models.ConversationMessage{
		ID: "m2", Role: models.RoleAssistant, Content: "second",
	})

	stored, err := manager.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if got := len(stored.Conversations["c1"].Messages); got != 1 {
		t.Fatalf("Expected 1 stored message, got %d", got)
	}

	// Mutating a read result must not leak into storage either.
	stored.Conversations["c1"].Messages[0].Content = "tampered"

	again, err := manager.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if again.Conversations["c1"].Messages[0].Content != "first" {
		t.Errorf("Stored message mutated through a read copy: %q", again.Conversations["c1"].Messages[0].Content)
	}
}

func TestManager_SessionExpiry(t *testing.T) {
	manager := NewManager(arbor.NewLogger()).SessionStorage()
	ctx := context.Background()

	session := &models.ConversationSession{SessionID: "stale", UserID: "user-1"}
	if err := manager.SaveSession(ctx, session, -time.Second); err != nil {
		t.Fatal(err)
	}
	if _, err := manager.GetSession(ctx, "stale"); err == nil {
		t.Error("Expected expired session to be unretrievable")
	}
}
