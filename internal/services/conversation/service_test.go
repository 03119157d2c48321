package conversation

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/verdict/internal/common"
	"github.com/ternarybob/verdict/internal/interfaces"
	"github.com/ternarybob/verdict/internal/models"
	"github.com/ternarybob/verdict/internal/storage/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	manager := memory.NewManager(arbor.NewLogger())
	return NewService(manager.SessionStorage(), nil, arbor.NewLogger())
}

func TestService_SessionLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, session.SessionID)

	got, err := svc.GetSession(ctx, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
}

func TestService_GetSession_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, interfaces.ErrSessionNotFound)
}

func TestService_DeleteSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	_, err = svc.GetOrCreateConversation(ctx, session.SessionID, "BTC", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, session.SessionID))

	_, err = svc.GetSession(ctx, session.SessionID)
	assert.ErrorIs(t, err, interfaces.ErrSessionNotFound)
}

func TestService_AppendOrdering(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	conv, err := svc.GetOrCreateConversation(ctx, session.SessionID, "BTC", "")
	require.NoError(t, err)

	turns := []struct {
		role    models.MessageRole
		content string
	}{
		{models.RoleUser, "what is the outlook"},
		{models.RoleAssistant, "bullish"},
		{models.RoleUser, "and short term"},
	}
	for _, turn := range turns {
		_, err := svc.AddMessage(ctx, session.SessionID, conv.ConversationID, turn.role, turn.content, nil)
		require.NoError(t, err)
	}

	history, err := svc.GetHistory(ctx, session.SessionID, conv.ConversationID, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, turn := range turns {
		assert.Equal(t, turn.role, history[i].Role)
		assert.Equal(t, turn.content, history[i].Content)
	}
}

func TestService_AddMessage_ConversationNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)

	_, err = svc.AddMessage(ctx, session.SessionID, "missing", models.RoleUser, "hello", nil)
	assert.ErrorIs(t, err, interfaces.ErrConversationNotFound)
}

func TestService_AddMessage_SessionNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AddMessage(context.Background(), "missing", "conv", models.RoleUser, "hello", nil)
	assert.ErrorIs(t, err, interfaces.ErrSessionNotFound)
}

func TestService_UpdateContextAndStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	conv, err := svc.GetOrCreateConversation(ctx, session.SessionID, "ETH", "")
	require.NoError(t, err)

	err = svc.UpdateContext(ctx, session.SessionID, conv.ConversationID, "bearish", 0.64, "sell")
	require.NoError(t, err)

	stats, err := svc.SessionStats(ctx, session.SessionID)
	require.NoError(t, err)
	require.Len(t, stats.Conversations, 1)
	assert.Equal(t, "bearish", stats.Conversations[0].LastOutlook)
	assert.Equal(t, 0.64, stats.Conversations[0].LastConfidence)
}

func TestService_ContextInjection(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	conv, err := svc.GetOrCreateConversation(ctx, session.SessionID, "BTC", "")
	require.NoError(t, err)

	// Empty conversation renders nothing
	text, err := svc.ContextInjection(ctx, session.SessionID, conv.ConversationID)
	require.NoError(t, err)
	assert.Empty(t, text)

	_, err = svc.AddMessage(ctx, session.SessionID, conv.ConversationID, models.RoleUser, "outlook please", nil)
	require.NoError(t, err)
	err = svc.UpdateContext(ctx, session.SessionID, conv.ConversationID, "bullish", 0.7, "buy")
	require.NoError(t, err)

	text, err = svc.ContextInjection(ctx, session.SessionID, conv.ConversationID)
	require.NoError(t, err)
	assert.Contains(t, text, "Previous analysis for BTC: outlook=bullish, action=buy, confidence=0.70")
	assert.Contains(t, text, "user: outlook please")

	// Identical state renders identically
	again, err := svc.ContextInjection(ctx, session.SessionID, conv.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, text, again)
}

func TestService_ContextInjection_WindowAndTruncation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	conv, err := svc.GetOrCreateConversation(ctx, session.SessionID, "BTC", "")
	require.NoError(t, err)

	long := strings.Repeat("x", 400)
	for i := 0; i < 8; i++ {
		content := "turn"
		if i == 7 {
			content = long
		}
		_, err := svc.AddMessage(ctx, session.SessionID, conv.ConversationID, models.RoleUser, content, nil)
		require.NoError(t, err)
	}

	text, err := svc.ContextInjection(ctx, session.SessionID, conv.ConversationID)
	require.NoError(t, err)

	// Only the five most recent messages appear
	assert.Equal(t, 5, strings.Count(text, "user: "))
	// Long content is truncated
	assert.NotContains(t, text, long)
	assert.Contains(t, text, strings.Repeat("x", 160))
}

func TestService_GetHistory_ConfiguredDefaultLimit(t *testing.T) {
	manager := memory.NewManager(arbor.NewLogger())
	svc := NewService(manager.SessionStorage(), &common.ConversationConfig{HistoryLimit: 2}, arbor.NewLogger())
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	conv, err := svc.GetOrCreateConversation(ctx, session.SessionID, "BTC", "")
	require.NoError(t, err)

	for _, content := range []string{"one", "two", "three"} {
		_, err := svc.AddMessage(ctx, session.SessionID, conv.ConversationID, models.RoleUser, content, nil)
		require.NoError(t, err)
	}

	// limit <= 0 falls back to the configured window
	history, err := svc.GetHistory(ctx, session.SessionID, conv.ConversationID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "two", history[0].Content)
	assert.Equal(t, "three", history[1].Content)
}

func TestService_ContextInjection_MultiByteTruncation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1")
	require.NoError(t, err)
	conv, err := svc.GetOrCreateConversation(ctx, session.SessionID, "BTC", "")
	require.NoError(t, err)

	long := strings.Repeat("é", 400)
	_, err = svc.AddMessage(ctx, session.SessionID, conv.ConversationID, models.RoleUser, long, nil)
	require.NoError(t, err)

	text, err := svc.ContextInjection(ctx, session.SessionID, conv.ConversationID)
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(text), "truncation must not split a multi-byte rune")
	assert.Contains(t, text, strings.Repeat("é", 160))
	assert.NotContains(t, text, strings.Repeat("é", 161))
}

func TestService_ExpireSessions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	stale, err := svc.CreateSession(ctx, "user-stale")
	require.NoError(t, err)
	fresh, err := svc.CreateSession(ctx, "user-fresh")
	require.NoError(t, err)

	// Age the stale session past the cutoff
	session, err := svc.GetSession(ctx, stale.SessionID)
	require.NoError(t, err)
	session.LastAccessed = time.Now().Add(-8 * 24 * time.Hour)
	require.NoError(t, svc.storage.SaveSession(ctx, session, DefaultSessionTTL))

	removed, err := svc.ExpireSessions(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = svc.GetSession(ctx, stale.SessionID)
	assert.ErrorIs(t, err, interfaces.ErrSessionNotFound)
	_, err = svc.GetSession(ctx, fresh.SessionID)
	assert.NoError(t, err)
}
