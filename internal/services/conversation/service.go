// Package conversation owns the lifecycle of sessions, conversations and
// messages. Every mutation rewrites the whole session object to the backing
// store with a fresh TTL; mutations to one session are serialized so
// concurrent appends cannot interleave.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/common"
	"github.com/ternarybob/verdict/internal/interfaces"
	"github.com/ternarybob/verdict/internal/models"
)

// DefaultSessionTTL is the session lifetime without activity.
const DefaultSessionTTL = 7 * 24 * time.Hour

const (
	defaultHistoryLimit      = 50
	defaultInjectionMessages = 5
	injectionContentLimit    = 160
)

// Service implements interfaces.ConversationService over a SessionStorage
// backend.
type Service struct {
	storage           interfaces.SessionStorage
	ttl               time.Duration
	injectionMessages int
	historyLimit      int
	logger            arbor.ILogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a new conversation service.
func NewService(storage interfaces.SessionStorage, config *common.ConversationConfig, logger arbor.ILogger) *Service {
	ttl := DefaultSessionTTL
	injection := defaultInjectionMessages
	history := defaultHistoryLimit
	if config != nil {
		if config.SessionTTLDays > 0 {
			ttl = time.Duration(config.SessionTTLDays) * 24 * time.Hour
		}
		if config.InjectionMessages > 0 {
			injection = config.InjectionMessages
		}
		if config.HistoryLimit > 0 {
			history = config.HistoryLimit
		}
	}
	return &Service{
		storage:           storage,
		ttl:               ttl,
		injectionMessages: injection,
		historyLimit:      history,
		logger:            logger,
		locks:             make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the mutex serializing mutations for one session.
func (s *Service) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

// CreateSession creates and persists a new session for a user.
func (s *Service) CreateSession(ctx context.Context, userID string) (*models.ConversationSession, error) {
	now := time.Now().UTC()
	session := &models.ConversationSession{
		SessionID:     common.NewSessionID(),
		UserID:        userID,
		CreatedAt:     now,
		LastAccessed:  now,
		Conversations: make(map[string]*models.ConversationContext),
	}

	if err := s.storage.SaveSession(ctx, session, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info().
		Str("session_id", session.SessionID).
		Str("user_id", userID).
		Msg("Created conversation session")

	return session, nil
}

// GetSession retrieves a session by id.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*models.ConversationSession, error) {
	return s.storage.GetSession(ctx, sessionID)
}

// GetOrCreateConversation returns the conversation with the given id inside
// a session, minting a fresh id when conversationID is empty.
func (s *Service) GetOrCreateConversation(ctx context.Context, sessionID, assetSymbol, conversationID string) (*models.ConversationContext, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if conversationID == "" {
		conversationID = common.NewConversationID()
	}

	conv := session.GetOrCreateConversation(conversationID, assetSymbol)
	session.Touch()

	if err := s.storage.SaveSession(ctx, session, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	return conv, nil
}

// AddMessage appends a message to a conversation and writes the session
// through to the store.
func (s *Service) AddMessage(ctx context.Context, sessionID, conversationID string, role models.MessageRole, content string, metadata map[string]interface{}) (*models.ConversationMessage, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid message role: %s", role)
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	conv, ok := session.Conversations[conversationID]
	if !ok {
		return nil, interfaces.ErrConversationNotFound
	}

	message := models.ConversationMessage{
		ID:        common.NewMessageID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
	conv.Messages = append(conv.Messages, message)
	conv.LastUpdated = message.Timestamp
	session.Touch()

	if err := s.storage.SaveSession(ctx, session, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Debug().
		Str("conversation_id", conversationID).
		Str("role", string(role)).
		Msg("Added conversation message")

	return &message, nil
}

// UpdateContext records the latest analysis outcome on the conversation for
// injection into the next turn.
func (s *Service) UpdateContext(ctx context.Context, sessionID, conversationID, outlook string, confidence float64, action string) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	conv, ok := session.Conversations[conversationID]
	if !ok {
		return interfaces.ErrConversationNotFound
	}

	conv.PreviousOutlook = outlook
	conv.PreviousConfidence = confidence
	conv.PreviousAction = action
	conv.LastUpdated = time.Now().UTC()
	session.Touch()

	if err := s.storage.SaveSession(ctx, session, s.ttl); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Debug().
		Str("conversation_id", conversationID).
		Str("outlook", outlook).
		Msg("Updated conversation context")

	return nil
}

// GetHistory returns up to limit most recent messages in append order.
func (s *Service) GetHistory(ctx context.Context, sessionID, conversationID string, limit int) ([]models.ConversationMessage, error) {
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	conv, ok := session.Conversations[conversationID]
	if !ok {
		return nil, interfaces.ErrConversationNotFound
	}

	if limit <= 0 {
		limit = s.historyLimit
	}
	messages := conv.Messages
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	result := make([]models.ConversationMessage, len(messages))
	copy(result, messages)
	return result, nil
}

// ContextInjection renders prior conversation state into a text block for
// the specialists' prompts. The rendering depends only on the stored state
// so identical histories produce identical text.
func (s *Service) ContextInjection(ctx context.Context, sessionID, conversationID string) (string, error) {
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}

	conv, ok := session.Conversations[conversationID]
	if !ok {
		return "", interfaces.ErrConversationNotFound
	}

	if len(conv.Messages) == 0 {
		return "", nil
	}

	var b strings.Builder
	if conv.PreviousOutlook != "" {
		fmt.Fprintf(&b, "Previous analysis for %s: outlook=%s, action=%s, confidence=%.2f\n",
			conv.AssetSymbol, conv.PreviousOutlook, conv.PreviousAction, conv.PreviousConfidence)
	}

	b.WriteString("Recent conversation:\n")
	messages := conv.Messages
	if len(messages) > s.injectionMessages {
		messages = messages[len(messages)-s.injectionMessages:]
	}
	for _, msg := range messages {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, truncateRunes(msg.Content, injectionContentLimit))
	}

	return b.String(), nil
}

// truncateRunes cuts text to at most limit runes, never splitting a
// multi-byte character.
func truncateRunes(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// DeleteSession removes a single session and all its conversations.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.storage.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.logger.Info().Str("session_id", sessionID).Msg("Deleted conversation session")
	return nil
}

// ExpireSessions removes sessions idle longer than maxAge. A deletion
// failure is logged and skipped, not fatal.
func (s *Service) ExpireSessions(ctx context.Context, maxAge time.Duration) (int, error) {
	sessions, err := s.storage.ListSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, session := range sessions {
		if !session.LastAccessed.Before(cutoff) {
			continue
		}
		if err := s.storage.DeleteSession(ctx, session.SessionID); err != nil {
			s.logger.Warn().Err(err).
				Str("session_id", session.SessionID).
				Msg("Failed to delete expired session")
			continue
		}
		removed++
	}

	s.logger.Info().Int("count", removed).Msg("Cleaned up expired sessions")
	return removed, nil
}

// SessionStats summarizes a session for reporting.
func (s *Service) SessionStats(ctx context.Context, sessionID string) (*models.SessionStats, error) {
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	stats := &models.SessionStats{
		SessionID:          session.SessionID,
		UserID:             session.UserID,
		TotalConversations: len(session.Conversations),
		TotalMessages:      session.MessageCount(),
		CreatedAt:          session.CreatedAt,
		LastAccessed:       session.LastAccessed,
	}
	for _, conv := range session.Conversations {
		stats.Conversations = append(stats.Conversations, models.ConversationStats{
			ConversationID: conv.ConversationID,
			AssetSymbol:    conv.AssetSymbol,
			MessageCount:   len(conv.Messages),
			LastOutlook:    conv.PreviousOutlook,
			LastConfidence: conv.PreviousConfidence,
		})
	}
	return stats, nil
}

// Ensure Service implements the ConversationService interface
var _ interfaces.ConversationService = (*Service)(nil)
