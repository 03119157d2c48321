package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/verdict/internal/models"
)

// ConversationService owns all mutation of conversation state. Other
// components read and write sessions only through this interface; mutations
// to a given session are serialized so concurrent requests cannot interleave
// conflicting message appends.
type ConversationService interface {
	// CreateSession creates and persists a new session for a user.
	CreateSession(ctx context.Context, userID string) (*models.ConversationSession, error)

	// GetSession retrieves a session by id. Returns ErrSessionNotFound when
	// absent or expired.
	GetSession(ctx context.Context, sessionID string) (*models.ConversationSession, error)

	// GetOrCreateConversation returns the conversation with the given id
	// inside a session, minting a fresh id when conversationID is empty.
	// Fails with ErrSessionNotFound when the session does not exist.
	GetOrCreateConversation(ctx context.Context, sessionID, assetSymbol, conversationID string) (*models.ConversationContext, error)

	// AddMessage appends a message to a conversation. Fails with
	// ErrSessionNotFound / ErrConversationNotFound when either is absent;
	// callers must create first.
	AddMessage(ctx context.Context, sessionID, conversationID string, role models.MessageRole, content string, metadata map[string]interface{}) (*models.ConversationMessage, error)

	// UpdateContext overwrites the conversation's previous outlook,
	// confidence and action, and bumps last_updated.
	UpdateContext(ctx context.Context, sessionID, conversationID, outlook string, confidence float64, action string) error

	// GetHistory returns up to limit most recent messages in append order.
	GetHistory(ctx context.Context, sessionID, conversationID string, limit int) ([]models.ConversationMessage, error)

	// ContextInjection renders prior history into a text block for query
	// enrichment. Returns an empty string when the conversation has no
	// messages; the rendering is stable for identical state.
	ContextInjection(ctx context.Context, sessionID, conversationID string) (string, error)

	// DeleteSession removes a single session and all its conversations.
	DeleteSession(ctx context.Context, sessionID string) error

	// ExpireSessions removes sessions idle longer than maxAge and returns
	// the number removed. A single deletion failure is logged, not fatal.
	ExpireSessions(ctx context.Context, maxAge time.Duration) (int, error)

	// SessionStats summarizes a session for reporting.
	SessionStats(ctx context.Context, sessionID string) (*models.SessionStats, error)
}
